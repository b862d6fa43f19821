package client

import (
	"context"
	"errors"
	"testing"
	"time"

	"boardclient/internal/auth"
	"boardclient/internal/localstore"
	"boardclient/internal/models"
	"boardclient/internal/repository"
	"boardclient/internal/service"
	"boardclient/internal/session"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockProvider struct {
	mock.Mock
}

func (m *mockProvider) SignIn(ctx context.Context, email, password string) (*auth.Session, error) {
	args := m.Called(ctx, email, password)
	if s, ok := args.Get(0).(*auth.Session); ok {
		return s, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockProvider) SignUp(ctx context.Context, email, password string) error {
	return m.Called(ctx, email, password).Error(0)
}

func (m *mockProvider) SignOut(ctx context.Context, token string) error {
	return m.Called(ctx, token).Error(0)
}

func (m *mockProvider) Verify(token string) (string, error) {
	args := m.Called(token)
	return args.String(0), args.Error(1)
}

type fixture struct {
	board    *Board
	kv       *localstore.MemoryKV
	store    *repository.MemoryStore
	provider *mockProvider
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	kv := localstore.NewMemoryKV()
	store := repository.NewMemoryStore()
	provider := &mockProvider{}
	board := NewBoard(session.NewStore(kv), provider, store.Posts(), store.Comments())
	return &fixture{board: board, kv: kv, store: store, provider: provider}
}

func (f *fixture) login(t *testing.T, userID string) {
	t.Helper()
	f.provider.On("SignIn", mock.Anything, userID+"@example.com", "hunter22").
		Return(&auth.Session{UserID: userID, AccessToken: "tok-" + userID}, nil).Once()
	_, err := f.board.Login(context.Background(), userID+"@example.com", "hunter22")
	require.NoError(t, err)
}

func (f *fixture) logout(t *testing.T, userID string) {
	t.Helper()
	f.provider.On("SignOut", mock.Anything, "tok-"+userID).Return(nil).Once()
	require.NoError(t, f.board.Logout(context.Background()))
}

func TestLogin_StoresSessionUser(t *testing.T) {
	f := newFixture(t)
	f.login(t, "A")

	v, ok, err := f.kv.Get(context.Background(), "user")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "A", v)
	f.provider.AssertExpectations(t)
}

func TestLogin_FailureLeavesSession(t *testing.T) {
	f := newFixture(t)
	f.provider.On("SignIn", mock.Anything, "a@example.com", "bad").
		Return(nil, models.NewUnauthorizedError("Invalid login credentials"))

	_, err := f.board.Login(context.Background(), "a@example.com", "bad")
	assert.True(t, models.HasCode(err, models.CodeUnauthorized))
	_, ok := f.board.CurrentUser(context.Background())
	assert.False(t, ok)
}

func TestScenario_CreateVoteLogout(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	f.login(t, "A")
	post, err := f.board.CreatePost(ctx, "X", "body", "http://img/x.png")
	require.NoError(t, err)
	assert.Equal(t, "A", post.UserID)
	require.Len(t, f.board.Home().Posts, 1)
	assert.Equal(t, 0, f.board.Home().Posts[0].Upvotes)
	f.logout(t, "A")

	f.login(t, "B")
	n, err := f.board.Upvote(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	n, err = f.board.Upvote(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, n)
	v, _, _ := f.kv.Get(ctx, "upvote_B_"+post.ID)
	assert.Equal(t, "1", v)
	f.logout(t, "B")

	f.login(t, "A")
	n, err = f.board.Upvote(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	v, _, _ = f.kv.Get(ctx, "upvote_A_"+post.ID)
	assert.Equal(t, "-1", v)
	assert.Equal(t, 1, f.board.Home().Posts[0].Upvotes, "home view re-fetched")
}

func TestLogout_SweepsOnlyOwnMarkers(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	require.NoError(t, f.kv.Set(ctx, "upvote_B_p1", "-1"))
	require.NoError(t, f.kv.Set(ctx, "upvote_AB_p1", "-1"))

	f.login(t, "A")
	require.NoError(t, f.kv.Set(ctx, "upvote_A_p1", "-1"))
	require.NoError(t, f.kv.Set(ctx, "upvote_A_p2", "1"))
	f.logout(t, "A")

	keys, err := f.kv.KeysWithPrefix(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"upvote_AB_p1", "upvote_B_p1"}, keys)
}

func TestLogout_SignOutFailureKeepsState(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.login(t, "A")
	require.NoError(t, f.kv.Set(ctx, "upvote_A_p1", "-1"))

	f.provider.On("SignOut", mock.Anything, "tok-A").Return(errors.New("network down")).Once()
	assert.Error(t, f.board.Logout(ctx))

	id, ok := f.board.CurrentUser(ctx)
	assert.True(t, ok)
	assert.Equal(t, "A", id)
	_, ok, _ = f.kv.Get(ctx, "upvote_A_p1")
	assert.True(t, ok)
}

func TestAnonymousUpvoteUsesSharedMarker(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	p := &models.Post{Title: "t", Content: "c", ImageURL: "i", UserID: "A"}
	require.NoError(t, f.store.Posts().Create(ctx, p))

	_, err := f.board.Upvote(ctx, p.ID)
	require.NoError(t, err)
	v, ok, _ := f.kv.Get(ctx, "upvote_null_"+p.ID)
	assert.True(t, ok)
	assert.Equal(t, "-1", v)
}

func TestCreatePost_RequiresSession(t *testing.T) {
	f := newFixture(t)
	_, err := f.board.CreatePost(context.Background(), "t", "c", "i")
	assert.True(t, models.HasCode(err, models.CodeValidation))
}

func TestHome_SortAndSearch(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, title := range []string{"Hello World", "say hello", "other"} {
		p := &models.Post{Title: title, Content: "c", ImageURL: "i", UserID: "A", CreatedAt: base.Add(time.Duration(i) * time.Minute)}
		require.NoError(t, f.store.Posts().Create(ctx, p))
		require.NoError(t, f.store.Posts().SetUpvotes(ctx, p.ID, 10-i*i))
	}

	require.NoError(t, f.board.RefreshHome(ctx))
	assert.Equal(t, "other", f.board.Home().Posts[0].Title)

	require.NoError(t, f.board.SetSort(ctx, "upvotes"))
	assert.Equal(t, service.SortUpvotes, f.board.Home().Sort)
	assert.Equal(t, "Hello World", f.board.Home().Posts[0].Title)

	require.NoError(t, f.board.SetSearch(ctx, "HELLO"))
	assert.Len(t, f.board.Home().Posts, 2)

	assert.Error(t, f.board.SetSort(ctx, "title"))
	assert.Equal(t, service.SortUpvotes, f.board.Home().Sort)
}

func TestCommentDraft(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.login(t, "A")
	p, err := f.board.CreatePost(ctx, "t", "c", "i")
	require.NoError(t, err)

	f.board.SetCommentDraft(p.ID, "   ")
	_, err = f.board.SubmitCommentDraft(ctx, p.ID)
	assert.True(t, models.HasCode(err, models.CodeValidation))
	assert.Equal(t, "   ", f.board.Home().Drafts[p.ID], "blank draft is kept")
	stored, _ := f.store.Comments().ListByPost(ctx, p.ID)
	assert.Empty(t, stored)

	f.board.SetCommentDraft(p.ID, "nice")
	c, err := f.board.SubmitCommentDraft(ctx, p.ID)
	require.NoError(t, err)
	require.NotNil(t, c.UserID)
	assert.Equal(t, "A", *c.UserID)
	_, kept := f.board.Home().Drafts[p.ID]
	assert.False(t, kept)
}

func TestDetailView_CommentsAndOwnership(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.login(t, "A")
	p, err := f.board.CreatePost(ctx, "t", "c", "i")
	require.NoError(t, err)

	require.NoError(t, f.board.OpenPost(ctx, p.ID))
	view, ok := f.board.Post(ctx)
	require.True(t, ok)
	assert.True(t, view.CanEdit)

	c, err := f.board.AddComment(ctx, p.ID, "first")
	require.NoError(t, err)
	view, _ = f.board.Post(ctx)
	require.Len(t, view.Comments, 1)
	assert.Equal(t, "Anonymous: first", view.Comments[0].Content)

	applied, err := f.board.EditComment(ctx, c.ID, "edited")
	require.NoError(t, err)
	assert.True(t, applied)
	view, _ = f.board.Post(ctx)
	assert.Equal(t, "Anonymous: edited", view.Comments[0].Content)

	applied, err = f.board.EditPost(ctx, p.ID, "new body")
	require.NoError(t, err)
	assert.True(t, applied)
	view, _ = f.board.Post(ctx)
	assert.Equal(t, "new body", view.Post.Content)

	f.logout(t, "A")
	f.login(t, "B")

	view, _ = f.board.Post(ctx)
	assert.False(t, view.CanEdit)

	applied, err = f.board.EditPost(ctx, p.ID, "hijack")
	require.NoError(t, err)
	assert.False(t, applied)
	applied, err = f.board.DeleteComment(ctx, c.ID)
	require.NoError(t, err)
	assert.False(t, applied)
	applied, err = f.board.DeletePost(ctx, p.ID)
	require.NoError(t, err)
	assert.False(t, applied)

	stored, err := f.store.Posts().GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "new body", stored.Content)
}

func TestViews_ReturnCopies(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.login(t, "A")
	p, err := f.board.CreatePost(ctx, "t", "c", "i")
	require.NoError(t, err)
	_, err = f.board.AddComment(ctx, p.ID, "first")
	require.NoError(t, err)
	require.NoError(t, f.board.OpenPost(ctx, p.ID))

	view, ok := f.board.Post(ctx)
	require.True(t, ok)
	require.Len(t, view.Comments, 1)
	view.Post.Content = "tampered"
	view.Post.UserID = "B"
	view.Comments[0].Content = "tampered"
	*view.Comments[0].UserID = "B"

	home := f.board.Home()
	require.Len(t, home.Posts, 1)
	home.Posts[0].Title = "tampered"

	again, _ := f.board.Post(ctx)
	assert.Equal(t, "c", again.Post.Content)
	assert.True(t, again.CanEdit)
	assert.Equal(t, "Anonymous: first", again.Comments[0].Content)
	assert.Equal(t, "A", *again.Comments[0].UserID)
	assert.Equal(t, "t", f.board.Home().Posts[0].Title)
}

func TestDeletePost_OwnerReturnsHome(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.login(t, "A")
	p, err := f.board.CreatePost(ctx, "t", "c", "i")
	require.NoError(t, err)
	_, err = f.board.AddComment(ctx, p.ID, "c1")
	require.NoError(t, err)
	require.NoError(t, f.board.OpenPost(ctx, p.ID))

	applied, err := f.board.DeletePost(ctx, p.ID)
	require.NoError(t, err)
	assert.True(t, applied)

	_, open := f.board.Post(ctx)
	assert.False(t, open)
	assert.Empty(t, f.board.Home().Posts)
	comments, _ := f.store.Comments().ListByPost(ctx, p.ID)
	assert.Empty(t, comments)
}

func TestRefreshPost_NothingOpen(t *testing.T) {
	f := newFixture(t)
	err := f.board.RefreshPost(context.Background())
	assert.True(t, models.HasCode(err, models.CodeValidation))
}

func TestRegister_DelegatesToProvider(t *testing.T) {
	f := newFixture(t)
	f.provider.On("SignUp", mock.Anything, "new@example.com", "hunter22").Return(nil).Once()
	require.NoError(t, f.board.Register(context.Background(), "new@example.com", "hunter22"))
	_, ok := f.board.CurrentUser(context.Background())
	assert.False(t, ok)
	f.provider.AssertExpectations(t)
}
