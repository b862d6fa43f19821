package service

import (
	"context"
	"errors"
	"testing"

	"boardclient/internal/models"
	"boardclient/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// postRepoStub is a stub for repository.PostRepository that counts writes.
type postRepoStub struct {
	listFn          func(context.Context, repository.PostQuery) ([]*models.Post, error)
	getByIDFn       func(context.Context, string) (*models.Post, error)
	getUpvotesFn    func(context.Context, string) (int, error)
	createFn        func(context.Context, *models.Post) error
	setUpvotesFn    func(context.Context, string, int) error
	updateContentFn func(context.Context, string, string) error
	deleteFn        func(context.Context, string) error

	writes int
}

func (s *postRepoStub) List(ctx context.Context, q repository.PostQuery) ([]*models.Post, error) {
	return s.listFn(ctx, q)
}
func (s *postRepoStub) GetByID(ctx context.Context, id string) (*models.Post, error) {
	return s.getByIDFn(ctx, id)
}
func (s *postRepoStub) GetUpvotes(ctx context.Context, id string) (int, error) {
	return s.getUpvotesFn(ctx, id)
}
func (s *postRepoStub) Create(ctx context.Context, post *models.Post) error {
	s.writes++
	return s.createFn(ctx, post)
}
func (s *postRepoStub) SetUpvotes(ctx context.Context, id string, n int) error {
	s.writes++
	return s.setUpvotesFn(ctx, id, n)
}
func (s *postRepoStub) UpdateContent(ctx context.Context, id, content string) error {
	s.writes++
	return s.updateContentFn(ctx, id, content)
}
func (s *postRepoStub) Delete(ctx context.Context, id string) error {
	s.writes++
	return s.deleteFn(ctx, id)
}

func noopPostRepo() *postRepoStub {
	return &postRepoStub{
		listFn:          func(_ context.Context, _ repository.PostQuery) ([]*models.Post, error) { return nil, nil },
		getByIDFn:       func(_ context.Context, id string) (*models.Post, error) { return &models.Post{ID: id}, nil },
		getUpvotesFn:    func(_ context.Context, _ string) (int, error) { return 0, nil },
		createFn:        func(_ context.Context, _ *models.Post) error { return nil },
		setUpvotesFn:    func(_ context.Context, _ string, _ int) error { return nil },
		updateContentFn: func(_ context.Context, _, _ string) error { return nil },
		deleteFn:        func(_ context.Context, _ string) error { return nil },
	}
}

// commentRepoStub is a stub for repository.CommentRepository that counts writes.
type commentRepoStub struct {
	listByPostFn    func(context.Context, string) ([]*models.Comment, error)
	getByIDFn       func(context.Context, string) (*models.Comment, error)
	createFn        func(context.Context, *models.Comment) error
	updateContentFn func(context.Context, string, string) error
	deleteFn        func(context.Context, string) error

	writes int
}

func (s *commentRepoStub) ListByPost(ctx context.Context, postID string) ([]*models.Comment, error) {
	return s.listByPostFn(ctx, postID)
}
func (s *commentRepoStub) GetByID(ctx context.Context, id string) (*models.Comment, error) {
	return s.getByIDFn(ctx, id)
}
func (s *commentRepoStub) Create(ctx context.Context, c *models.Comment) error {
	s.writes++
	return s.createFn(ctx, c)
}
func (s *commentRepoStub) UpdateContent(ctx context.Context, id, content string) error {
	s.writes++
	return s.updateContentFn(ctx, id, content)
}
func (s *commentRepoStub) Delete(ctx context.Context, id string) error {
	s.writes++
	return s.deleteFn(ctx, id)
}

func noopCommentRepo() *commentRepoStub {
	return &commentRepoStub{
		listByPostFn:    func(_ context.Context, _ string) ([]*models.Comment, error) { return nil, nil },
		getByIDFn:       func(_ context.Context, id string) (*models.Comment, error) { return &models.Comment{ID: id}, nil },
		createFn:        func(_ context.Context, _ *models.Comment) error { return nil },
		updateContentFn: func(_ context.Context, _, _ string) error { return nil },
		deleteFn:        func(_ context.Context, _ string) error { return nil },
	}
}

// markerStub is an in-memory MarkerStore keyed like the session store.
type markerStub struct {
	values  map[string]int
	failSet bool
}

func newMarkerStub() *markerStub {
	return &markerStub{values: make(map[string]int)}
}

func (m *markerStub) NextDelta(_ context.Context, userID, postID string) int {
	if d, ok := m.values[userID+"/"+postID]; ok {
		return d
	}
	return 1
}

func (m *markerStub) SetNextDelta(_ context.Context, userID, postID string, delta int) error {
	if m.failSet {
		return errors.New("storage full")
	}
	m.values[userID+"/"+postID] = delta
	return nil
}

func assertValidationError(t *testing.T, err error) {
	t.Helper()
	require.Error(t, err)
	var appErr *models.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, models.CodeValidation, appErr.Code)
}

func strPtr(s string) *string { return &s }
