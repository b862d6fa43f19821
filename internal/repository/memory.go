package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"boardclient/internal/models"

	"github.com/google/uuid"
)

// MemoryStore holds posts and comments in process memory. Its Posts and
// Comments views share state so deleting a post drops its comments.
type MemoryStore struct {
	mu       sync.RWMutex
	posts    map[string]models.Post
	comments map[string]models.Comment
	now      func() time.Time
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		posts:    make(map[string]models.Post),
		comments: make(map[string]models.Comment),
		now:      time.Now,
	}
}

// Posts returns a PostRepository over the store.
func (m *MemoryStore) Posts() PostRepository { return memoryPosts{m} }

// Comments returns a CommentRepository over the store.
func (m *MemoryStore) Comments() CommentRepository { return memoryComments{m} }

type memoryPosts struct{ m *MemoryStore }

func (r memoryPosts) List(_ context.Context, q PostQuery) ([]*models.Post, error) {
	r.m.mu.RLock()
	defer r.m.mu.RUnlock()

	posts := make([]*models.Post, 0, len(r.m.posts))
	for _, p := range r.m.posts {
		if q.TitleContains != "" && !titleMatches(p.Title, q.TitleContains) {
			continue
		}
		cp := p
		posts = append(posts, &cp)
	}
	sort.SliceStable(posts, func(i, j int) bool {
		if q.SortBy == SortByUpvotes && posts[i].Upvotes != posts[j].Upvotes {
			return posts[i].Upvotes > posts[j].Upvotes
		}
		return posts[i].CreatedAt.After(posts[j].CreatedAt)
	})
	return posts, nil
}

func (r memoryPosts) GetByID(_ context.Context, id string) (*models.Post, error) {
	r.m.mu.RLock()
	defer r.m.mu.RUnlock()
	p, ok := r.m.posts[id]
	if !ok {
		return nil, models.NewNotFoundError("Post", id)
	}
	return &p, nil
}

func (r memoryPosts) GetUpvotes(ctx context.Context, id string) (int, error) {
	p, err := r.GetByID(ctx, id)
	if err != nil {
		return 0, err
	}
	return p.Upvotes, nil
}

func (r memoryPosts) Create(_ context.Context, post *models.Post) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if post.ID == "" {
		post.ID = uuid.NewString()
	}
	if post.CreatedAt.IsZero() {
		post.CreatedAt = r.m.now()
	}
	post.Upvotes = 0
	r.m.posts[post.ID] = *post
	return nil
}

func (r memoryPosts) SetUpvotes(_ context.Context, id string, upvotes int) error {
	return r.update(id, func(p *models.Post) { p.Upvotes = upvotes })
}

func (r memoryPosts) UpdateContent(_ context.Context, id, content string) error {
	return r.update(id, func(p *models.Post) { p.Content = content })
}

func (r memoryPosts) update(id string, fn func(*models.Post)) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	p, ok := r.m.posts[id]
	if !ok {
		return models.NewNotFoundError("Post", id)
	}
	fn(&p)
	r.m.posts[id] = p
	return nil
}

func (r memoryPosts) Delete(_ context.Context, id string) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	delete(r.m.posts, id)
	for cid, c := range r.m.comments {
		if c.PostID == id {
			delete(r.m.comments, cid)
		}
	}
	return nil
}

type memoryComments struct{ m *MemoryStore }

func (r memoryComments) ListByPost(_ context.Context, postID string) ([]*models.Comment, error) {
	r.m.mu.RLock()
	defer r.m.mu.RUnlock()
	comments := make([]*models.Comment, 0)
	for _, c := range r.m.comments {
		if c.PostID == postID {
			cp := c
			comments = append(comments, &cp)
		}
	}
	sort.SliceStable(comments, func(i, j int) bool {
		return comments[i].CreatedAt.Before(comments[j].CreatedAt)
	})
	return comments, nil
}

func (r memoryComments) GetByID(_ context.Context, id string) (*models.Comment, error) {
	r.m.mu.RLock()
	defer r.m.mu.RUnlock()
	c, ok := r.m.comments[id]
	if !ok {
		return nil, models.NewNotFoundError("Comment", id)
	}
	return &c, nil
}

func (r memoryComments) Create(_ context.Context, comment *models.Comment) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if comment.ID == "" {
		comment.ID = uuid.NewString()
	}
	if comment.CreatedAt.IsZero() {
		comment.CreatedAt = r.m.now()
	}
	r.m.comments[comment.ID] = *comment
	return nil
}

func (r memoryComments) UpdateContent(_ context.Context, id, content string) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	c, ok := r.m.comments[id]
	if !ok {
		return models.NewNotFoundError("Comment", id)
	}
	c.Content = content
	r.m.comments[id] = c
	return nil
}

func (r memoryComments) Delete(_ context.Context, id string) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	delete(r.m.comments, id)
	return nil
}
