// Package models contains data structures for the board's domain models.
package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Post represents a post row in the backend store.
type Post struct {
	ID       string `gorm:"primaryKey;type:varchar(36)" json:"id"`
	Title    string `gorm:"not null" json:"title"`
	Content  string `gorm:"type:text;not null" json:"content"`
	ImageURL string `gorm:"column:image_url" json:"image_url"`
	UserID   string `gorm:"not null;index" json:"user_id"`
	// Upvotes is written only by the vote toggle path.
	Upvotes   int       `gorm:"not null;default:0" json:"upvotes"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`
}

// BeforeCreate assigns the store-side identifier.
func (p *Post) BeforeCreate(_ *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	return nil
}

// OwnedBy reports the recorded owner, if any.
func (p *Post) OwnedBy() *string {
	if p.UserID == "" {
		return nil
	}
	owner := p.UserID
	return &owner
}
