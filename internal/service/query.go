package service

import (
	"context"
	"strings"

	"boardclient/internal/models"
	"boardclient/internal/repository"
)

// SortKey selects the post listing order. Listings are always descending.
type SortKey string

// Sort keys accepted from callers.
const (
	SortCreatedTime SortKey = "created_time"
	SortUpvotes     SortKey = "upvotes"
)

// AnonymousPrefix is prepended to comment content for display.
const AnonymousPrefix = "Anonymous: "

// ParseSortKey maps a caller-supplied sort value to a SortKey. Empty means
// newest first; "created_at" is accepted as an alias of "created_time".
func ParseSortKey(raw string) (SortKey, error) {
	switch strings.TrimSpace(raw) {
	case "", string(SortCreatedTime), "created_at":
		return SortCreatedTime, nil
	case string(SortUpvotes):
		return SortUpvotes, nil
	default:
		return "", models.NewValidationError("unsupported sort key: " + raw)
	}
}

func (k SortKey) field() repository.SortField {
	if k == SortUpvotes {
		return repository.SortByUpvotes
	}
	return repository.SortByCreatedAt
}

// QueryEngine reads posts and comments for display.
type QueryEngine struct {
	posts    repository.PostRepository
	comments repository.CommentRepository
}

// NewQueryEngine creates a QueryEngine.
func NewQueryEngine(posts repository.PostRepository, comments repository.CommentRepository) *QueryEngine {
	return &QueryEngine{posts: posts, comments: comments}
}

// ListPosts returns every post ordered by key, descending. A non-empty term
// keeps only posts whose title contains it, ignoring case.
func (q *QueryEngine) ListPosts(ctx context.Context, key SortKey, term string) ([]*models.Post, error) {
	return q.posts.List(ctx, repository.PostQuery{
		SortBy:        key.field(),
		TitleContains: term,
	})
}

// GetPost returns one post.
func (q *QueryEngine) GetPost(ctx context.Context, postID string) (*models.Post, error) {
	return q.posts.GetByID(ctx, postID)
}

// ListComments returns display copies of the post's comments, oldest first,
// each prefixed with AnonymousPrefix. Stored content is not changed.
func (q *QueryEngine) ListComments(ctx context.Context, postID string) ([]*models.Comment, error) {
	stored, err := q.comments.ListByPost(ctx, postID)
	if err != nil {
		return nil, err
	}
	out := make([]*models.Comment, len(stored))
	for i, c := range stored {
		view := *c
		view.Content = AnonymousPrefix + c.Content
		out[i] = &view
	}
	return out, nil
}
