package seed

import (
	"context"
	"testing"

	"boardclient/internal/auth"
	"boardclient/internal/database"
	"boardclient/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newSeeder(t *testing.T) (*Seeder, *gorm.DB, *auth.LocalProvider) {
	t.Helper()
	db, err := database.OpenSQLite(":memory:")
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	provider := auth.NewLocalProvider(db, "test-secret-key-that-is-long-enough-123")
	return NewSeeder(db, provider), db, provider
}

func TestRun_CreatesData(t *testing.T) {
	ctx := context.Background()
	s, db, provider := newSeeder(t)

	res, err := s.Run(ctx, Options{NumUsers: 3, NumPosts: 4, MaxCommentsPerPost: 2, Seed: 42})
	require.NoError(t, err)
	assert.Len(t, res.Users, 3)
	assert.Len(t, res.Posts, 4)

	var posts []models.Post
	require.NoError(t, db.Find(&posts).Error)
	require.Len(t, posts, 4)
	total := 0
	for _, p := range posts {
		assert.GreaterOrEqual(t, p.Upvotes, 0)
		assert.Contains(t, res.Users, p.UserID)
		total += p.Upvotes
	}
	// Each voter toggles at most once per post, so every toggle is +1.
	assert.Equal(t, res.Votes, total)

	var comments int64
	require.NoError(t, db.Model(&models.Comment{}).Count(&comments).Error)
	assert.Equal(t, int64(res.Comments), comments)

	var user models.User
	require.NoError(t, db.First(&user).Error)
	_, err = provider.SignIn(ctx, user.Email, DefaultPassword)
	assert.NoError(t, err)
}

func TestRun_RequiresUsers(t *testing.T) {
	s, _, _ := newSeeder(t)
	_, err := s.Run(context.Background(), Options{NumPosts: 1})
	assert.True(t, models.HasCode(err, models.CodeValidation))
}

func TestClearAll(t *testing.T) {
	ctx := context.Background()
	s, db, _ := newSeeder(t)
	_, err := s.Run(ctx, Options{NumUsers: 2, NumPosts: 2, MaxCommentsPerPost: 1, Seed: 7})
	require.NoError(t, err)

	require.NoError(t, s.ClearAll(ctx))
	for _, model := range []interface{}{&models.Comment{}, &models.Post{}, &models.User{}} {
		var n int64
		require.NoError(t, db.Model(model).Count(&n).Error)
		assert.Zero(t, n)
	}
}
