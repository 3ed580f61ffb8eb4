package storage

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/krabbel/backend/internal/models"
)

// ErrNotFound indicates a record does not exist.
var ErrNotFound = errors.New("record not found")

// ErrAlreadyExists indicates a uniqueness conflict.
var ErrAlreadyExists = errors.New("record already exists")

// UserStore captures user persistence operations needed by the auth core.
type UserStore interface {
	CreateUser(ctx context.Context, user models.User) (models.User, error)
	FindByUsername(ctx context.Context, username string) (models.User, error)
	ExistsByUsername(ctx context.Context, username string) (bool, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	UpdateLastLogin(ctx context.Context, username string) error
}

// NoteStore captures note persistence. Every query excludes soft-deleted
// rows; SoftDeleteNote is the only way a note leaves the visible set.
type NoteStore interface {
	CreateNote(ctx context.Context, note models.Note) (models.Note, error)
	FindNoteByID(ctx context.Context, id uuid.UUID) (models.Note, error)
	FindNotesByOwner(ctx context.Context, ownerID int64) ([]models.Note, error)
	FindPublicNotes(ctx context.Context) ([]models.Note, error)
	SearchNotes(ctx context.Context, ownerID int64, keyword string) ([]models.Note, error)
	UpdateNote(ctx context.Context, note models.Note) (models.Note, error)
	SoftDeleteNote(ctx context.Context, id uuid.UUID) error
}
