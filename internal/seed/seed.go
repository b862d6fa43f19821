// Package seed fills a board database with demo accounts, posts, comments
// and votes.
package seed

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"boardclient/internal/auth"
	"boardclient/internal/localstore"
	"boardclient/internal/middleware"
	"boardclient/internal/models"
	"boardclient/internal/repository"
	"boardclient/internal/service"
	"boardclient/internal/session"
	"boardclient/internal/validation"

	"github.com/brianvoe/gofakeit/v6"
	"gorm.io/gorm"
)

// DefaultPassword is the password every seeded account gets.
const DefaultPassword = "password123"

// Options configuration for the seeder
type Options struct {
	NumUsers           int
	NumPosts           int
	MaxCommentsPerPost int
	// Seed makes runs reproducible; zero uses the clock.
	Seed int64
}

// Result summarizes what a run created.
type Result struct {
	Users    []string
	Posts    []*models.Post
	Comments int
	Votes    int
}

// Seeder writes demo data through the same paths the board uses.
type Seeder struct {
	db        *gorm.DB
	provider  auth.Provider
	posts     repository.PostRepository
	mutations *service.MutationEngine
}

// NewSeeder creates a Seeder over a migrated database.
func NewSeeder(db *gorm.DB, provider auth.Provider) *Seeder {
	posts := repository.NewPostRepository(db)
	comments := repository.NewCommentRepository(db)
	return &Seeder{
		db:        db,
		provider:  provider,
		posts:     posts,
		mutations: service.NewMutationEngine(posts, comments),
	}
}

// ClearAll removes every comment, post and account.
func (s *Seeder) ClearAll(ctx context.Context) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, model := range []interface{}{&models.Comment{}, &models.Post{}, &models.User{}} {
			if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(model).Error; err != nil {
				return fmt.Errorf("clear %T: %w", model, err)
			}
		}
		return nil
	})
}

// Run creates opts.NumUsers accounts, opts.NumPosts posts spread across
// them, a few comments per post, and toggles votes from random accounts.
func (s *Seeder) Run(ctx context.Context, opts Options) (*Result, error) {
	if opts.NumUsers <= 0 {
		return nil, models.NewValidationError("at least one user is required")
	}
	seed := opts.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	faker := gofakeit.New(seed)
	res := &Result{}

	for i := 0; i < opts.NumUsers; i++ {
		email := validation.NormalizeEmail(fmt.Sprintf("%d.%s", i, faker.Email()))
		if err := s.provider.SignUp(ctx, email, DefaultPassword); err != nil {
			return nil, fmt.Errorf("seed user %s: %w", email, err)
		}
		var user models.User
		if err := s.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
			return nil, err
		}
		res.Users = append(res.Users, user.ID)
	}

	// Voters keep their markers in a throwaway store.
	votes := service.NewVoteEngine(s.posts, session.NewStore(localstore.NewMemoryKV()))

	for i := 0; i < opts.NumPosts; i++ {
		author := res.Users[faker.Number(0, len(res.Users)-1)]
		post, err := s.mutations.CreatePost(ctx, service.CreatePostInput{
			Title:    faker.Sentence(5),
			Content:  faker.Paragraph(1, 3, 8, "\n"),
			ImageURL: fmt.Sprintf("https://picsum.photos/seed/%s/800/800", faker.UUID()),
			UserID:   author,
		})
		if err != nil {
			return nil, err
		}
		res.Posts = append(res.Posts, post)

		for c := faker.Number(0, opts.MaxCommentsPerPost); c > 0; c-- {
			commenter := res.Users[faker.Number(0, len(res.Users)-1)]
			if _, err := s.mutations.CreateComment(ctx, post.ID, faker.Sentence(8), &commenter); err != nil {
				return nil, err
			}
			res.Comments++
		}

		for _, voter := range res.Users {
			if !faker.Bool() {
				continue
			}
			if _, err := votes.ToggleUpvote(ctx, post.ID, voter); err != nil {
				return nil, err
			}
			res.Votes++
		}
	}

	middleware.Logger.InfoContext(ctx, "seed complete",
		slog.Int("users", len(res.Users)),
		slog.Int("posts", len(res.Posts)),
		slog.Int("comments", res.Comments),
		slog.Int("votes", res.Votes),
	)
	return res, nil
}
