// Package auth is the credential provider the board signs users in with.
package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"boardclient/internal/models"
	"boardclient/internal/validation"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const (
	issuer     = "boardclient"
	defaultTTL = 7 * 24 * time.Hour
)

// Session is the result of a successful sign-in.
type Session struct {
	AccessToken string    `json:"access_token"`
	UserID      string    `json:"user_id"`
	ExpiresAt   time.Time `json:"expires_at"`
}

// Provider checks credentials and issues opaque user identifiers.
type Provider interface {
	SignIn(ctx context.Context, email, password string) (*Session, error)
	SignUp(ctx context.Context, email, password string) error
	// SignOut invalidates token. An empty token is a no-op.
	SignOut(ctx context.Context, token string) error
	// Verify returns the user id a live token was issued to.
	Verify(token string) (string, error)
}

// LocalProvider keeps accounts in the users table and issues HS256 tokens.
// Revoked token ids are held in memory until they expire.
type LocalProvider struct {
	db     *gorm.DB
	secret []byte
	ttl    time.Duration
	now    func() time.Time

	mu      sync.Mutex
	revoked map[string]time.Time
}

// NewLocalProvider creates a LocalProvider. The users table must already be
// migrated.
func NewLocalProvider(db *gorm.DB, secret string) *LocalProvider {
	return &LocalProvider{
		db:      db,
		secret:  []byte(secret),
		ttl:     defaultTTL,
		now:     time.Now,
		revoked: make(map[string]time.Time),
	}
}

// SignUp registers a new account.
func (p *LocalProvider) SignUp(ctx context.Context, email, password string) error {
	email = validation.NormalizeEmail(email)
	if err := validation.ValidateEmail(email); err != nil {
		return models.NewValidationError(err.Error())
	}
	if err := validation.ValidatePassword(password); err != nil {
		return models.NewValidationError(err.Error())
	}

	var count int64
	if err := p.db.WithContext(ctx).Model(&models.User{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return models.NewStoreError("select", err)
	}
	if count > 0 {
		return models.NewValidationError("User already registered")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return models.NewInternalError(err)
	}
	user := &models.User{Email: email, PasswordHash: string(hash)}
	if err := p.db.WithContext(ctx).Create(user).Error; err != nil {
		return models.NewStoreError("insert", err)
	}
	return nil
}

// SignIn checks the credentials and issues a session.
func (p *LocalProvider) SignIn(ctx context.Context, email, password string) (*Session, error) {
	var user models.User
	err := p.db.WithContext(ctx).Where("email = ?", validation.NormalizeEmail(email)).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, models.NewUnauthorizedError("Invalid login credentials")
	}
	if err != nil {
		return nil, models.NewStoreError("select", err)
	}
	if cmpErr := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); cmpErr != nil {
		return nil, models.NewUnauthorizedError("Invalid login credentials")
	}

	now := p.now()
	expires := now.Add(p.ttl)
	claims := jwt.RegisteredClaims{
		Subject:   user.ID,
		Issuer:    issuer,
		IssuedAt:  jwt.NewNumericDate(now),
		NotBefore: jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(expires),
		ID:        uuid.NewString(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(p.secret)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return &Session{AccessToken: token, UserID: user.ID, ExpiresAt: expires}, nil
}

// SignOut revokes token until it would have expired anyway.
func (p *LocalProvider) SignOut(_ context.Context, token string) error {
	if strings.TrimSpace(token) == "" {
		return nil
	}
	claims, err := p.parse(token)
	if err != nil {
		return models.NewUnauthorizedError("Invalid or expired token")
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	p.pruneLocked()
	p.revoked[claims.ID] = claims.ExpiresAt.Time
	return nil
}

// Verify returns the subject of a live, unrevoked token.
func (p *LocalProvider) Verify(token string) (string, error) {
	claims, err := p.parse(token)
	if err != nil {
		return "", models.NewUnauthorizedError("Invalid or expired token")
	}
	p.mu.Lock()
	_, revoked := p.revoked[claims.ID]
	p.mu.Unlock()
	if revoked {
		return "", models.NewUnauthorizedError("Token has been revoked")
	}
	return claims.Subject, nil
}

func (p *LocalProvider) parse(token string) (*jwt.RegisteredClaims, error) {
	claims := &jwt.RegisteredClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return p.secret, nil
	},
		jwt.WithIssuer(issuer),
		jwt.WithTimeFunc(p.now),
	)
	if err != nil || !parsed.Valid {
		return nil, fmt.Errorf("invalid token: %w", err)
	}
	if claims.ID == "" || claims.Subject == "" || claims.ExpiresAt == nil {
		return nil, errors.New("token missing required claims")
	}
	return claims, nil
}

func (p *LocalProvider) pruneLocked() {
	now := p.now()
	for id, exp := range p.revoked {
		if now.After(exp) {
			delete(p.revoked, id)
		}
	}
}
