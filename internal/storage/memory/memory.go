// Package memory provides in-memory implementations of the storage
// interfaces, used as collaborator fakes in tests.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/krabbel/backend/internal/models"
	"github.com/krabbel/backend/internal/storage"
)

var (
	_ storage.UserStore = (*Store)(nil)
	_ storage.NoteStore = (*Store)(nil)
)

// Store keeps users and notes in maps guarded by a single mutex.
type Store struct {
	mu     sync.Mutex
	nextID int64
	users  map[string]models.User // keyed by username
	notes  map[uuid.UUID]models.Note
}

// NewStore returns an empty in-memory store.
func NewStore() *Store {
	return &Store{
		users: make(map[string]models.User),
		notes: make(map[uuid.UUID]models.Note),
	}
}

func (s *Store) CreateUser(_ context.Context, user models.User) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[user.Username]; ok {
		return models.User{}, storage.ErrAlreadyExists
	}
	for _, existing := range s.users {
		if user.Email != "" && existing.Email == user.Email {
			return models.User{}, storage.ErrAlreadyExists
		}
	}
	s.nextID++
	user.ID = s.nextID
	user.CreatedAt = time.Now()
	s.users[user.Username] = user
	return user, nil
}

func (s *Store) FindByUsername(_ context.Context, username string) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[username]
	if !ok {
		return models.User{}, storage.ErrNotFound
	}
	return user, nil
}

func (s *Store) ExistsByUsername(_ context.Context, username string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.users[username]
	return ok, nil
}

func (s *Store) ExistsByEmail(_ context.Context, email string) (bool, error) {
	if email == "" {
		return false, nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, user := range s.users {
		if user.Email == email {
			return true, nil
		}
	}
	return false, nil
}

func (s *Store) UpdateLastLogin(_ context.Context, username string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[username]
	if !ok {
		return storage.ErrNotFound
	}
	now := time.Now()
	user.LastLogin = &now
	s.users[username] = user
	return nil
}

// DeleteUser removes a user entirely. Not part of the storage interfaces;
// tests use it to simulate tokens whose subject no longer exists.
func (s *Store) DeleteUser(username string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.users, username)
}

func (s *Store) CreateNote(_ context.Context, note models.Note) (models.Note, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notes[note.ID] = note
	return note, nil
}

func (s *Store) FindNoteByID(_ context.Context, id uuid.UUID) (models.Note, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	note, ok := s.notes[id]
	if !ok || note.IsDeleted {
		return models.Note{}, storage.ErrNotFound
	}
	return note, nil
}

func (s *Store) FindNotesByOwner(_ context.Context, ownerID int64) ([]models.Note, error) {
	return s.filter(func(n models.Note) bool { return n.OwnerID == ownerID }), nil
}

func (s *Store) FindPublicNotes(_ context.Context) ([]models.Note, error) {
	return s.filter(func(n models.Note) bool { return n.IsPublic }), nil
}

func (s *Store) SearchNotes(_ context.Context, ownerID int64, keyword string) ([]models.Note, error) {
	keyword = strings.ToLower(keyword)
	return s.filter(func(n models.Note) bool {
		if n.OwnerID != ownerID {
			return false
		}
		return strings.Contains(strings.ToLower(n.Title), keyword) ||
			strings.Contains(strings.ToLower(n.Content), keyword)
	}), nil
}

func (s *Store) UpdateNote(_ context.Context, note models.Note) (models.Note, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.notes[note.ID]
	if !ok || existing.IsDeleted {
		return models.Note{}, storage.ErrNotFound
	}
	s.notes[note.ID] = note
	return note, nil
}

func (s *Store) SoftDeleteNote(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	note, ok := s.notes[id]
	if !ok || note.IsDeleted {
		return storage.ErrNotFound
	}
	note.IsDeleted = true
	s.notes[id] = note
	return nil
}

// RawNote returns a note even if soft-deleted, bypassing visibility rules.
// Tests use it to assert that soft-deleted rows are retained.
func (s *Store) RawNote(id uuid.UUID) (models.Note, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	note, ok := s.notes[id]
	return note, ok
}

func (s *Store) filter(keep func(models.Note) bool) []models.Note {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Note
	for _, note := range s.notes {
		if note.IsDeleted {
			continue
		}
		if keep(note) {
			out = append(out, note)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UpdatedAt.After(out[j].UpdatedAt) })
	return out
}
