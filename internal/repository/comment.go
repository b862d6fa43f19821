package repository

import (
	"context"

	"boardclient/internal/models"
	"boardclient/internal/observability"

	"gorm.io/gorm"
)

// CommentRepository defines the backend store operations on comments.
type CommentRepository interface {
	// ListByPost returns every comment on the post, oldest first.
	ListByPost(ctx context.Context, postID string) ([]*models.Comment, error)
	GetByID(ctx context.Context, id string) (*models.Comment, error)
	Create(ctx context.Context, comment *models.Comment) error
	UpdateContent(ctx context.Context, id, content string) error
	Delete(ctx context.Context, id string) error
}

type commentRepository struct {
	db     *gorm.DB
	logger *observability.StoreLogger
}

// NewCommentRepository creates a gorm-backed CommentRepository
func NewCommentRepository(db *gorm.DB) CommentRepository {
	return &commentRepository{db: db, logger: observability.NewStoreLogger("comments")}
}

func (r *commentRepository) ListByPost(ctx context.Context, postID string) ([]*models.Comment, error) {
	comments := make([]*models.Comment, 0)
	err := r.db.WithContext(ctx).Where("post_id = ?", postID).Order("created_at ASC").Find(&comments).Error
	if err != nil {
		r.logger.LogError(ctx, err, "select")
		return nil, models.NewStoreError("select", err)
	}
	r.logger.LogRead(ctx, map[string]interface{}{"post_id": postID, "count": len(comments)})
	return comments, nil
}

func (r *commentRepository) GetByID(ctx context.Context, id string) (*models.Comment, error) {
	var comment models.Comment
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&comment).Error; err != nil {
		return nil, storeErr(ctx, r.logger, "select", "Comment", id, err)
	}
	return &comment, nil
}

func (r *commentRepository) Create(ctx context.Context, comment *models.Comment) error {
	if err := r.db.WithContext(ctx).Create(comment).Error; err != nil {
		r.logger.LogError(ctx, err, "insert")
		return models.NewStoreError("insert", err)
	}
	r.logger.LogCreate(ctx, map[string]interface{}{"id": comment.ID, "post_id": comment.PostID})
	return nil
}

func (r *commentRepository) UpdateContent(ctx context.Context, id, content string) error {
	result := r.db.WithContext(ctx).Model(&models.Comment{}).Where("id = ?", id).Update("content", content)
	if result.Error != nil {
		r.logger.LogError(ctx, result.Error, "update")
		return models.NewStoreError("update", result.Error)
	}
	if result.RowsAffected == 0 {
		return models.NewNotFoundError("Comment", id)
	}
	r.logger.LogUpdate(ctx, map[string]interface{}{"id": id})
	return nil
}

func (r *commentRepository) Delete(ctx context.Context, id string) error {
	if err := r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Comment{}).Error; err != nil {
		r.logger.LogError(ctx, err, "delete")
		return models.NewStoreError("delete", err)
	}
	r.logger.LogDelete(ctx, map[string]interface{}{"id": id})
	return nil
}
