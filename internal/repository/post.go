package repository

import (
	"context"

	"boardclient/internal/models"
	"boardclient/internal/observability"

	"gorm.io/gorm"
)

// PostRepository defines the backend store operations on posts.
type PostRepository interface {
	List(ctx context.Context, q PostQuery) ([]*models.Post, error)
	GetByID(ctx context.Context, id string) (*models.Post, error)
	// GetUpvotes reads the current count directly from the store.
	GetUpvotes(ctx context.Context, id string) (int, error)
	Create(ctx context.Context, post *models.Post) error
	// SetUpvotes overwrites the count. No concurrency token is checked.
	SetUpvotes(ctx context.Context, id string, upvotes int) error
	UpdateContent(ctx context.Context, id, content string) error
	// Delete removes the post and its comments. Deleting a missing post is
	// not an error.
	Delete(ctx context.Context, id string) error
}

type postRepository struct {
	db     *gorm.DB
	logger *observability.StoreLogger
}

// NewPostRepository creates a gorm-backed PostRepository
func NewPostRepository(db *gorm.DB) PostRepository {
	return &postRepository{db: db, logger: observability.NewStoreLogger("posts")}
}

func (r *postRepository) List(ctx context.Context, q PostQuery) ([]*models.Post, error) {
	posts := make([]*models.Post, 0)
	query := r.db.WithContext(ctx).Model(&models.Post{})
	// SQLite's LOWER and LIKE fold ASCII only, so other dialects match in Go.
	matchInGo := false
	if q.TitleContains != "" {
		if r.db.Dialector.Name() == "postgres" {
			query = query.Where(`title ILIKE ? ESCAPE '\'`, containsPattern(q.TitleContains))
		} else {
			matchInGo = true
		}
	}
	if err := query.Order(q.orderClause()).Find(&posts).Error; err != nil {
		r.logger.LogError(ctx, err, "select")
		return nil, models.NewStoreError("select", err)
	}
	if matchInGo {
		matched := posts[:0]
		for _, p := range posts {
			if titleMatches(p.Title, q.TitleContains) {
				matched = append(matched, p)
			}
		}
		posts = matched
	}
	r.logger.LogRead(ctx, map[string]interface{}{
		"sort":  string(q.SortBy),
		"term":  q.TitleContains,
		"count": len(posts),
	})
	return posts, nil
}

func (r *postRepository) GetByID(ctx context.Context, id string) (*models.Post, error) {
	var post models.Post
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&post).Error; err != nil {
		return nil, storeErr(ctx, r.logger, "select", "Post", id, err)
	}
	r.logger.LogRead(ctx, map[string]interface{}{"id": id})
	return &post, nil
}

func (r *postRepository) GetUpvotes(ctx context.Context, id string) (int, error) {
	var row struct {
		Upvotes *int
	}
	err := r.db.WithContext(ctx).
		Model(&models.Post{}).
		Select("upvotes").
		Where("id = ?", id).
		Take(&row).Error
	if err != nil {
		return 0, storeErr(ctx, r.logger, "select", "Post", id, err)
	}
	if row.Upvotes == nil {
		return 0, nil
	}
	return *row.Upvotes, nil
}

func (r *postRepository) Create(ctx context.Context, post *models.Post) error {
	post.Upvotes = 0
	if err := r.db.WithContext(ctx).Create(post).Error; err != nil {
		r.logger.LogError(ctx, err, "insert")
		return models.NewStoreError("insert", err)
	}
	r.logger.LogCreate(ctx, map[string]interface{}{"id": post.ID, "user_id": post.UserID})
	return nil
}

func (r *postRepository) SetUpvotes(ctx context.Context, id string, upvotes int) error {
	return r.updateColumn(ctx, id, "upvotes", upvotes)
}

func (r *postRepository) UpdateContent(ctx context.Context, id, content string) error {
	return r.updateColumn(ctx, id, "content", content)
}

func (r *postRepository) updateColumn(ctx context.Context, id, column string, value interface{}) error {
	result := r.db.WithContext(ctx).Model(&models.Post{}).Where("id = ?", id).Update(column, value)
	if result.Error != nil {
		r.logger.LogError(ctx, result.Error, "update")
		return models.NewStoreError("update", result.Error)
	}
	if result.RowsAffected == 0 {
		return models.NewNotFoundError("Post", id)
	}
	r.logger.LogUpdate(ctx, map[string]interface{}{"id": id, "column": column})
	return nil
}

func (r *postRepository) Delete(ctx context.Context, id string) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("post_id = ?", id).Delete(&models.Comment{}).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", id).Delete(&models.Post{}).Error
	})
	if err != nil {
		r.logger.LogError(ctx, err, "delete")
		return models.NewStoreError("delete", err)
	}
	r.logger.LogDelete(ctx, map[string]interface{}{"id": id})
	return nil
}
