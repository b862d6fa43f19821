package service

import (
	"context"
	"log/slog"

	"boardclient/internal/middleware"
	"boardclient/internal/observability"
	"boardclient/internal/repository"

	"go.opentelemetry.io/otel/attribute"
)

// MarkerStore persists the next vote delta per user and post.
type MarkerStore interface {
	NextDelta(ctx context.Context, userID, postID string) int
	SetNextDelta(ctx context.Context, userID, postID string, delta int) error
}

// VoteEngine toggles a user's upvote on a post. The count is read fresh,
// adjusted by the user's marker and written back without a concurrency
// check, so concurrent toggles from different clients can lose updates.
type VoteEngine struct {
	posts   repository.PostRepository
	markers MarkerStore
}

// NewVoteEngine creates a VoteEngine.
func NewVoteEngine(posts repository.PostRepository, markers MarkerStore) *VoteEngine {
	return &VoteEngine{posts: posts, markers: markers}
}

// ToggleUpvote applies the user's next delta to the post and flips the
// marker. It returns the count that was written. On any store failure the
// marker is left unchanged.
func (e *VoteEngine) ToggleUpvote(ctx context.Context, postID, userID string) (int, error) {
	span, ctx := observability.NewSpan(ctx, "vote.toggle", attribute.String("post.id", postID))
	defer span.End()

	current, err := e.posts.GetUpvotes(ctx, postID)
	if err != nil {
		span.SetError(err)
		return 0, err
	}

	delta := e.markers.NextDelta(ctx, userID, postID)
	newCount := current + delta
	span.AddAttributes(attribute.Int("vote.delta", delta), attribute.Int("vote.count", newCount))

	if err := e.posts.SetUpvotes(ctx, postID, newCount); err != nil {
		span.SetError(err)
		return 0, err
	}
	observability.RecordVote(delta)

	if err := e.markers.SetNextDelta(ctx, userID, postID, -delta); err != nil {
		// The count is already written; the next toggle repeats this delta.
		middleware.Logger.WarnContext(ctx, "failed to persist vote marker",
			slog.String("post_id", postID),
			slog.Int("applied_delta", delta),
			slog.String("error", err.Error()),
		)
	}
	return newCount, nil
}
