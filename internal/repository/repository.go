// Package repository provides the backend store adapters for posts and
// comments.
package repository

import (
	"context"
	"errors"
	"strings"

	"boardclient/internal/models"
	"boardclient/internal/observability"

	"gorm.io/gorm"
)

// SortField names the column posts are ordered by, always descending.
type SortField string

// Supported post orderings.
const (
	SortByCreatedAt SortField = "created_at"
	SortByUpvotes   SortField = "upvotes"
)

// PostQuery filters and orders a post listing.
type PostQuery struct {
	SortBy SortField
	// TitleContains restricts the listing to titles containing the term,
	// case-insensitively. Empty means no filter.
	TitleContains string
}

func (q PostQuery) orderClause() string {
	if q.SortBy == SortByUpvotes {
		return "upvotes DESC, created_at DESC"
	}
	return "created_at DESC"
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func containsPattern(term string) string {
	return "%" + likeEscaper.Replace(term) + "%"
}

// titleMatches reports whether title contains term, ignoring case.
func titleMatches(title, term string) bool {
	return strings.Contains(strings.ToLower(title), strings.ToLower(term))
}

// storeErr maps a gorm error to the application taxonomy. A missing row is
// NOT_FOUND and is not logged as a store failure.
func storeErr(ctx context.Context, logger *observability.StoreLogger, operation, resource, id string, err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.NewNotFoundError(resource, id)
	}
	logger.LogError(ctx, err, operation)
	return models.NewStoreError(operation, err)
}
