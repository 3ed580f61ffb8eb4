package models

import (
	"time"

	"github.com/google/uuid"
)

// Note is a user-owned note. OwnerID is set at creation and never changes.
// IsDeleted marks a soft-deleted note: the row stays in storage but every
// query the service exposes filters it out.
type Note struct {
	ID         uuid.UUID `json:"id"`
	OwnerID    int64     `json:"owner_id"`
	Title      string    `json:"title"`
	Content    string    `json:"content"`
	Tags       []string  `json:"tags"`
	ImageURL   string    `json:"image_url,omitempty"`
	IsPublic   bool      `json:"is_public"`
	IsArchived bool      `json:"is_archived"`
	IsFavorite bool      `json:"is_favorite"`
	IsDeleted  bool      `json:"-"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}
