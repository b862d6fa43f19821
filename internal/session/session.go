// Package session keeps the current user and per-user vote markers in the
// client-local durable store.
package session

import (
	"context"
	"fmt"
	"log/slog"

	"boardclient/internal/localstore"
	"boardclient/internal/middleware"
)

const (
	// UserKey holds the id of the signed-in user.
	UserKey = "user"

	// AnonymousUserID stands in for the user id when nobody is signed in, so
	// anonymous votes on one client share a marker per post.
	AnonymousUserID = "null"

	markerPrefixFormat = "upvote_%s_"
)

// MarkerKey returns the vote marker key for userID on postID.
func MarkerKey(userID, postID string) string {
	return markerPrefix(userID) + postID
}

func markerPrefix(userID string) string {
	if userID == "" {
		userID = AnonymousUserID
	}
	return fmt.Sprintf(markerPrefixFormat, userID)
}

// Store reads and writes session state through a localstore.KV.
type Store struct {
	kv localstore.KV
}

// NewStore creates a Store over kv.
func NewStore(kv localstore.KV) *Store {
	return &Store{kv: kv}
}

// CurrentUser returns the signed-in user id. A storage failure reads as
// signed out.
func (s *Store) CurrentUser(ctx context.Context) (string, bool) {
	id, ok, err := s.kv.Get(ctx, UserKey)
	if err != nil {
		middleware.Logger.WarnContext(ctx, "failed to read session user", slog.String("error", err.Error()))
		return "", false
	}
	if !ok || id == "" {
		return "", false
	}
	return id, true
}

// SetCurrentUser records id as the signed-in user.
func (s *Store) SetCurrentUser(ctx context.Context, id string) error {
	return s.kv.Set(ctx, UserKey, id)
}

// ClearCurrentUser removes the signed-in user's vote markers and then the
// user entry. Markers of other users are left alone as long as no user id is
// another id followed by "_"; the sweep is a plain prefix match, which UUID
// ids satisfy.
func (s *Store) ClearCurrentUser(ctx context.Context) error {
	id, ok := s.CurrentUser(ctx)
	if ok {
		keys, err := s.kv.KeysWithPrefix(ctx, markerPrefix(id))
		if err != nil {
			return fmt.Errorf("list vote markers: %w", err)
		}
		for _, k := range keys {
			if err := s.kv.Remove(ctx, k); err != nil {
				return fmt.Errorf("remove vote marker %s: %w", k, err)
			}
		}
	}
	return s.kv.Remove(ctx, UserKey)
}

// NextDelta returns the delta the next toggle by userID on postID applies.
// Only a stored "-1" yields -1; absent or unreadable markers yield +1.
func (s *Store) NextDelta(ctx context.Context, userID, postID string) int {
	v, ok, err := s.kv.Get(ctx, MarkerKey(userID, postID))
	if err != nil {
		middleware.Logger.WarnContext(ctx, "failed to read vote marker",
			slog.String("post_id", postID),
			slog.String("error", err.Error()),
		)
		return 1
	}
	if ok && v == "-1" {
		return -1
	}
	return 1
}

// SetNextDelta persists the delta the next toggle will apply.
func (s *Store) SetNextDelta(ctx context.Context, userID, postID string, delta int) error {
	value := "1"
	if delta < 0 {
		value = "-1"
	}
	return s.kv.Set(ctx, MarkerKey(userID, postID), value)
}
