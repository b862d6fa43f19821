package service

import (
	"context"
	"log/slog"

	"boardclient/internal/middleware"
	"boardclient/internal/models"
	"boardclient/internal/observability"
	"boardclient/internal/repository"
	"boardclient/internal/validation"

	"go.opentelemetry.io/otel/attribute"
)

// MutationEngine writes posts and comments. Edits and comment deletes are
// gated by CanMutate; post deletion is not.
type MutationEngine struct {
	posts    repository.PostRepository
	comments repository.CommentRepository
}

// CreatePostInput carries the fields of a new post. All are required.
type CreatePostInput struct {
	Title    string
	Content  string
	ImageURL string
	UserID   string
}

// NewMutationEngine creates a MutationEngine.
func NewMutationEngine(posts repository.PostRepository, comments repository.CommentRepository) *MutationEngine {
	return &MutationEngine{posts: posts, comments: comments}
}

// CreatePost inserts a post with zero upvotes owned by in.UserID.
func (m *MutationEngine) CreatePost(ctx context.Context, in CreatePostInput) (*models.Post, error) {
	span, ctx := observability.NewSpan(ctx, "mutation.create_post")
	defer span.End()

	if err := validation.RequireFields(
		"title", in.Title,
		"content", in.Content,
		"image url", in.ImageURL,
		"user id", in.UserID,
	); err != nil {
		return nil, models.NewValidationError(err.Error())
	}

	post := &models.Post{
		Title:    in.Title,
		Content:  in.Content,
		ImageURL: in.ImageURL,
		UserID:   in.UserID,
	}
	if err := m.posts.Create(ctx, post); err != nil {
		span.SetError(err)
		return nil, err
	}
	span.AddAttributes(attribute.String("post.id", post.ID))
	return post, nil
}

// DeletePost removes the post and its comments. Any caller may delete any
// post.
func (m *MutationEngine) DeletePost(ctx context.Context, postID string) error {
	span, ctx := observability.NewSpan(ctx, "mutation.delete_post", attribute.String("post.id", postID))
	defer span.End()

	err := m.posts.Delete(ctx, postID)
	span.SetError(err)
	return err
}

// EditPost replaces the post's content when actingUserID owns it. It
// reports whether the write was issued.
func (m *MutationEngine) EditPost(ctx context.Context, postID, newContent, actingUserID string) (bool, error) {
	if validation.IsBlank(newContent) {
		return false, models.NewValidationError("content is required")
	}
	span, ctx := observability.NewSpan(ctx, "mutation.edit_post", attribute.String("post.id", postID))
	defer span.End()

	post, err := m.posts.GetByID(ctx, postID)
	if err != nil {
		span.SetError(err)
		return false, err
	}
	if !CanMutate(post.OwnedBy(), actingUserID) {
		suppressed(ctx, span, "edit_post", postID)
		return false, nil
	}
	if err := m.posts.UpdateContent(ctx, postID, newContent); err != nil {
		span.SetError(err)
		return false, err
	}
	span.AddAttributes(attribute.Bool("ownership.applied", true))
	return true, nil
}

// CreateComment inserts a comment on postID. userID is recorded as owner
// only when non-nil.
func (m *MutationEngine) CreateComment(ctx context.Context, postID, content string, userID *string) (*models.Comment, error) {
	if validation.IsBlank(content) {
		return nil, models.NewValidationError("comment content is required")
	}
	span, ctx := observability.NewSpan(ctx, "mutation.create_comment", attribute.String("post.id", postID))
	defer span.End()

	comment := &models.Comment{
		PostID:  postID,
		Content: content,
		UserID:  userID,
	}
	if err := m.comments.Create(ctx, comment); err != nil {
		span.SetError(err)
		return nil, err
	}
	return comment, nil
}

// DeleteComment removes the comment when actingUserID owns it.
func (m *MutationEngine) DeleteComment(ctx context.Context, commentID, actingUserID string) (bool, error) {
	span, ctx := observability.NewSpan(ctx, "mutation.delete_comment", attribute.String("comment.id", commentID))
	defer span.End()

	comment, err := m.comments.GetByID(ctx, commentID)
	if err != nil {
		span.SetError(err)
		return false, err
	}
	if !CanMutate(comment.UserID, actingUserID) {
		suppressed(ctx, span, "delete_comment", commentID)
		return false, nil
	}
	if err := m.comments.Delete(ctx, commentID); err != nil {
		span.SetError(err)
		return false, err
	}
	span.AddAttributes(attribute.Bool("ownership.applied", true))
	return true, nil
}

// EditComment replaces the comment's content when actingUserID owns it.
func (m *MutationEngine) EditComment(ctx context.Context, commentID, newContent, actingUserID string) (bool, error) {
	if validation.IsBlank(newContent) {
		return false, models.NewValidationError("content is required")
	}
	span, ctx := observability.NewSpan(ctx, "mutation.edit_comment", attribute.String("comment.id", commentID))
	defer span.End()

	comment, err := m.comments.GetByID(ctx, commentID)
	if err != nil {
		span.SetError(err)
		return false, err
	}
	if !CanMutate(comment.UserID, actingUserID) {
		suppressed(ctx, span, "edit_comment", commentID)
		return false, nil
	}
	if err := m.comments.UpdateContent(ctx, commentID, newContent); err != nil {
		span.SetError(err)
		return false, err
	}
	span.AddAttributes(attribute.Bool("ownership.applied", true))
	return true, nil
}

func suppressed(ctx context.Context, span *observability.Span, operation, id string) {
	span.AddAttributes(attribute.Bool("ownership.applied", false))
	observability.RecordSuppressed(operation)
	middleware.Logger.DebugContext(ctx, "mutation suppressed by ownership gate",
		slog.String("operation", operation),
		slog.String("id", id),
	)
}
