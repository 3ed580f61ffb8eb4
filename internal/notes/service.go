package notes

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/krabbel/backend/internal/auth"
	"github.com/krabbel/backend/internal/models"
	"github.com/krabbel/backend/internal/models/dto"
	"github.com/krabbel/backend/internal/storage"
)

// Service implements note operations on top of a NoteStore. Every mutating
// operation and every non-public read fetches the note first and runs it
// through the ownership guard; a note the store does not return (missing or
// soft-deleted) is storage.ErrNotFound before any ownership question arises.
type Service struct {
	store storage.NoteStore
	now   func() time.Time
}

// NewService constructs the note service.
func NewService(store storage.NoteStore) *Service {
	return &Service{store: store, now: time.Now}
}

// List returns the caller's visible notes, newest-updated first.
func (s *Service) List(ctx context.Context, ident auth.Identity) ([]models.Note, error) {
	return s.store.FindNotesByOwner(ctx, ident.UserID)
}

// ListPublic returns all public notes. No identity is required.
func (s *Service) ListPublic(ctx context.Context) ([]models.Note, error) {
	return s.store.FindPublicNotes(ctx)
}

// Search matches the keyword case-insensitively against the caller's note
// titles and contents.
func (s *Service) Search(ctx context.Context, ident auth.Identity, keyword string) ([]models.Note, error) {
	return s.store.SearchNotes(ctx, ident.UserID, keyword)
}

// Create persists a new note owned by the caller.
func (s *Service) Create(ctx context.Context, ident auth.Identity, req dto.NoteRequest) (models.Note, error) {
	now := s.now()
	note := models.Note{
		ID:         uuid.New(),
		OwnerID:    ident.UserID,
		Title:      req.Title,
		Content:    req.Content,
		Tags:       req.Tags,
		ImageURL:   req.ImageURL,
		IsPublic:   req.IsPublic,
		IsFavorite: req.IsFavorite,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	created, err := s.store.CreateNote(ctx, note)
	if err != nil {
		return models.Note{}, fmt.Errorf("create note: %w", err)
	}
	return created, nil
}

// Get returns a single note. The owner always sees it; anyone may read it
// if it is public.
func (s *Service) Get(ctx context.Context, ident *auth.Identity, id uuid.UUID) (models.Note, error) {
	note, err := s.store.FindNoteByID(ctx, id)
	if err != nil {
		return models.Note{}, err
	}
	if err := authorize(ident, note, true); err != nil {
		return models.Note{}, err
	}
	return note, nil
}

// Update replaces the mutable fields of an owned note.
func (s *Service) Update(ctx context.Context, ident auth.Identity, id uuid.UUID, req dto.NoteRequest) (models.Note, error) {
	note, err := s.store.FindNoteByID(ctx, id)
	if err != nil {
		return models.Note{}, err
	}
	if err := authorize(&ident, note, false); err != nil {
		return models.Note{}, err
	}

	note.Title = req.Title
	note.Content = req.Content
	note.Tags = req.Tags
	note.ImageURL = req.ImageURL
	note.IsPublic = req.IsPublic
	note.IsFavorite = req.IsFavorite
	note.UpdatedAt = s.now()

	updated, err := s.store.UpdateNote(ctx, note)
	if err != nil {
		return models.Note{}, fmt.Errorf("update note: %w", err)
	}
	return updated, nil
}

// Delete soft-deletes an owned note. The row stays in storage but leaves
// every visible query.
func (s *Service) Delete(ctx context.Context, ident auth.Identity, id uuid.UUID) error {
	note, err := s.store.FindNoteByID(ctx, id)
	if err != nil {
		return err
	}
	if err := authorize(&ident, note, false); err != nil {
		return err
	}
	if err := s.store.SoftDeleteNote(ctx, note.ID); err != nil {
		return fmt.Errorf("delete note: %w", err)
	}
	return nil
}

// Archive marks an owned note as archived.
func (s *Service) Archive(ctx context.Context, ident auth.Identity, id uuid.UUID) (models.Note, error) {
	note, err := s.store.FindNoteByID(ctx, id)
	if err != nil {
		return models.Note{}, err
	}
	if err := authorize(&ident, note, false); err != nil {
		return models.Note{}, err
	}

	note.IsArchived = true
	note.UpdatedAt = s.now()
	updated, err := s.store.UpdateNote(ctx, note)
	if err != nil {
		return models.Note{}, fmt.Errorf("archive note: %w", err)
	}
	return updated, nil
}
