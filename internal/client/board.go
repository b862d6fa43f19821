// Package client holds the board's view state and routes user actions
// through the session, the engines and the backend store.
package client

import (
	"context"
	"log/slog"
	"sync"

	"boardclient/internal/auth"
	"boardclient/internal/middleware"
	"boardclient/internal/models"
	"boardclient/internal/repository"
	"boardclient/internal/service"
	"boardclient/internal/session"
)

// HomeView is the post listing with its current sort and search.
type HomeView struct {
	Sort   service.SortKey   `json:"sort"`
	Search string            `json:"search"`
	Posts  []*models.Post    `json:"posts"`
	Drafts map[string]string `json:"drafts"`
}

// PostView is the open post with its display comments.
type PostView struct {
	Post     *models.Post      `json:"post"`
	Comments []*models.Comment `json:"comments"`
	// CanEdit tells a UI whether to offer edit and delete for the post.
	CanEdit bool `json:"can_edit"`
}

// Board is the client shell. Every successful mutation is followed by a
// full re-fetch of the affected views. Methods are safe for concurrent use;
// actions are serialized.
type Board struct {
	mu sync.Mutex

	session   *session.Store
	auth      auth.Provider
	votes     *service.VoteEngine
	queries   *service.QueryEngine
	mutations *service.MutationEngine

	token string

	sort   service.SortKey
	search string
	posts  []*models.Post
	drafts map[string]string

	openPostID string
	post       *models.Post
	comments   []*models.Comment
}

// NewBoard wires a Board over the given store and provider.
func NewBoard(
	sess *session.Store,
	provider auth.Provider,
	posts repository.PostRepository,
	comments repository.CommentRepository,
) *Board {
	return &Board{
		session:   sess,
		auth:      provider,
		votes:     service.NewVoteEngine(posts, sess),
		queries:   service.NewQueryEngine(posts, comments),
		mutations: service.NewMutationEngine(posts, comments),
		sort:      service.SortCreatedTime,
		posts:     make([]*models.Post, 0),
		drafts:    make(map[string]string),
	}
}

// CurrentUser returns the signed-in user id.
func (b *Board) CurrentUser(ctx context.Context) (string, bool) {
	return b.session.CurrentUser(ctx)
}

// Register creates an account. It does not sign the user in.
func (b *Board) Register(ctx context.Context, email, password string) error {
	return b.auth.SignUp(ctx, email, password)
}

// Login signs in and records the user in the session.
func (b *Board) Login(ctx context.Context, email, password string) (*auth.Session, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	sess, err := b.auth.SignIn(ctx, email, password)
	if err != nil {
		return nil, err
	}
	if err := b.session.SetCurrentUser(ctx, sess.UserID); err != nil {
		return nil, models.NewInternalError(err)
	}
	b.token = sess.AccessToken
	middleware.Logger.InfoContext(middleware.WithUserID(ctx, sess.UserID), "user signed in")
	return sess, nil
}

// Logout signs out with the provider and, only if that succeeds, removes
// the user's vote markers and the session entry.
func (b *Board) Logout(ctx context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if err := b.auth.SignOut(ctx, b.token); err != nil {
		return err
	}
	if err := b.session.ClearCurrentUser(ctx); err != nil {
		return models.NewInternalError(err)
	}
	b.token = ""
	return nil
}

// SetSort changes the listing order and re-fetches the home view.
func (b *Board) SetSort(ctx context.Context, raw string) error {
	key, err := service.ParseSortKey(raw)
	if err != nil {
		return err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.sort = key
	return b.refreshHome(ctx)
}

// SetSearch changes the title filter and re-fetches the home view.
func (b *Board) SetSearch(ctx context.Context, term string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.search = term
	return b.refreshHome(ctx)
}

// RefreshHome re-fetches the post listing.
func (b *Board) RefreshHome(ctx context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.refreshHome(ctx)
}

// Home returns a snapshot of the home view.
func (b *Board) Home() HomeView {
	b.mu.Lock()
	defer b.mu.Unlock()
	drafts := make(map[string]string, len(b.drafts))
	for k, v := range b.drafts {
		drafts[k] = v
	}
	return HomeView{
		Sort:   b.sort,
		Search: b.search,
		Posts:  copyPosts(b.posts),
		Drafts: drafts,
	}
}

// SetCommentDraft stores unsent comment text for a post on the home view.
func (b *Board) SetCommentDraft(postID, text string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.drafts[postID] = text
}

// SubmitCommentDraft posts the draft for postID as the signed-in user. The
// draft is cleared only after the insert succeeds.
func (b *Board) SubmitCommentDraft(ctx context.Context, postID string) (*models.Comment, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	comment, err := b.mutations.CreateComment(ctx, postID, b.drafts[postID], b.sessionUserPtr(ctx))
	if err != nil {
		return nil, err
	}
	delete(b.drafts, postID)
	if err := b.refreshAfter(ctx, postID); err != nil {
		return comment, err
	}
	return comment, nil
}

// OpenPost makes postID the detail view and fetches it.
func (b *Board) OpenPost(ctx context.Context, postID string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.openPostID = postID
	return b.refreshPost(ctx)
}

// RefreshPost re-fetches the open post and its comments.
func (b *Board) RefreshPost(ctx context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.refreshPost(ctx)
}

// Post returns a snapshot of the detail view, if a post is open and loaded.
func (b *Board) Post(ctx context.Context) (PostView, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.post == nil {
		return PostView{}, false
	}
	userID, _ := b.session.CurrentUser(ctx)
	post := *b.post
	return PostView{
		Post:     &post,
		Comments: copyComments(b.comments),
		CanEdit:  service.CanMutate(b.post.OwnedBy(), userID),
	}, true
}

// Snapshots hand out copies so callers cannot reach the cached view state.
func copyPosts(posts []*models.Post) []*models.Post {
	out := make([]*models.Post, len(posts))
	for i, p := range posts {
		cp := *p
		out[i] = &cp
	}
	return out
}

func copyComments(comments []*models.Comment) []*models.Comment {
	out := make([]*models.Comment, len(comments))
	for i, c := range comments {
		cp := *c
		if c.UserID != nil {
			owner := *c.UserID
			cp.UserID = &owner
		}
		out[i] = &cp
	}
	return out
}

// Upvote toggles the session user's vote on postID. Anonymous voters share
// one marker per post on this client.
func (b *Board) Upvote(ctx context.Context, postID string) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	userID, _ := b.session.CurrentUser(ctx)
	count, err := b.votes.ToggleUpvote(ctx, postID, userID)
	if err != nil {
		return 0, err
	}
	return count, b.refreshAfter(ctx, postID)
}

// CreatePost publishes a post owned by the session user and returns to the
// home view.
func (b *Board) CreatePost(ctx context.Context, title, content, imageURL string) (*models.Post, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	userID, _ := b.session.CurrentUser(ctx)
	post, err := b.mutations.CreatePost(ctx, service.CreatePostInput{
		Title:    title,
		Content:  content,
		ImageURL: imageURL,
		UserID:   userID,
	})
	if err != nil {
		return nil, err
	}
	b.closePost()
	return post, b.refreshHome(ctx)
}

// DeletePost deletes postID and returns to the home view. The action is
// only offered to the post's owner; the underlying delete takes no owner.
func (b *Board) DeletePost(ctx context.Context, postID string) (bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	post, err := b.queries.GetPost(ctx, postID)
	if err != nil {
		return false, err
	}
	userID, _ := b.session.CurrentUser(ctx)
	if !service.CanMutate(post.OwnedBy(), userID) {
		middleware.Logger.DebugContext(ctx, "delete not offered to non-owner", slog.String("post_id", postID))
		return false, nil
	}
	if err := b.mutations.DeletePost(ctx, postID); err != nil {
		return false, err
	}
	delete(b.drafts, postID)
	if b.openPostID == postID {
		b.closePost()
	}
	return true, b.refreshHome(ctx)
}

// EditPost replaces the post's content if the session user owns it.
func (b *Board) EditPost(ctx context.Context, postID, content string) (bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	userID, _ := b.session.CurrentUser(ctx)
	applied, err := b.mutations.EditPost(ctx, postID, content, userID)
	if err != nil || !applied {
		return applied, err
	}
	return true, b.refreshAfter(ctx, postID)
}

// AddComment adds a comment to postID from the detail view.
func (b *Board) AddComment(ctx context.Context, postID, content string) (*models.Comment, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	comment, err := b.mutations.CreateComment(ctx, postID, content, b.sessionUserPtr(ctx))
	if err != nil {
		return nil, err
	}
	return comment, b.refreshAfter(ctx, postID)
}

// EditComment replaces a comment's content if the session user owns it.
func (b *Board) EditComment(ctx context.Context, commentID, content string) (bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	userID, _ := b.session.CurrentUser(ctx)
	applied, err := b.mutations.EditComment(ctx, commentID, content, userID)
	if err != nil || !applied {
		return applied, err
	}
	return true, b.refreshPostIfOpen(ctx)
}

// DeleteComment removes a comment if the session user owns it.
func (b *Board) DeleteComment(ctx context.Context, commentID string) (bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	userID, _ := b.session.CurrentUser(ctx)
	applied, err := b.mutations.DeleteComment(ctx, commentID, userID)
	if err != nil || !applied {
		return applied, err
	}
	return true, b.refreshPostIfOpen(ctx)
}

func (b *Board) sessionUserPtr(ctx context.Context) *string {
	if id, ok := b.session.CurrentUser(ctx); ok {
		return &id
	}
	return nil
}

func (b *Board) refreshHome(ctx context.Context) error {
	posts, err := b.queries.ListPosts(ctx, b.sort, b.search)
	if err != nil {
		return err
	}
	b.posts = posts
	return nil
}

func (b *Board) refreshPost(ctx context.Context) error {
	if b.openPostID == "" {
		return models.NewValidationError("no post is open")
	}
	post, err := b.queries.GetPost(ctx, b.openPostID)
	if err != nil {
		return err
	}
	comments, err := b.queries.ListComments(ctx, b.openPostID)
	if err != nil {
		return err
	}
	b.post = post
	b.comments = comments
	return nil
}

func (b *Board) refreshPostIfOpen(ctx context.Context) error {
	if b.openPostID == "" {
		return nil
	}
	return b.refreshPost(ctx)
}

// refreshAfter re-fetches the home listing and, when postID is the open
// post, the detail view.
func (b *Board) refreshAfter(ctx context.Context, postID string) error {
	if err := b.refreshHome(ctx); err != nil {
		return err
	}
	if b.openPostID == postID {
		return b.refreshPost(ctx)
	}
	return nil
}

func (b *Board) closePost() {
	b.openPostID = ""
	b.post = nil
	b.comments = nil
}
