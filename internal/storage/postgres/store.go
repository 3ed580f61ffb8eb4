package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"github.com/krabbel/backend/internal/models"
	"github.com/krabbel/backend/internal/storage"
	"github.com/krabbel/backend/internal/storage/postgres/migrations"
)

// Ensure Store satisfies the storage interfaces at compile time.
var (
	_ storage.UserStore = (*Store)(nil)
	_ storage.NoteStore = (*Store)(nil)
)

// uniqueViolation is the Postgres error code for a unique constraint breach.
const uniqueViolation = "23505"

// Store provides Postgres-backed persistence for users and notes.
type Store struct {
	pool *pgxpool.Pool
}

// NewStore connects to the database, applies pending migrations, and
// returns a ready store.
func NewStore(ctx context.Context, databaseURL string) (*Store, error) {
	if err := migrate(ctx, databaseURL); err != nil {
		return nil, err
	}

	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	return &Store{pool: pool}, nil
}

// Close releases database resources.
func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// migrate runs the embedded goose migrations over a short-lived stdlib
// connection; the pgx pool is opened afterwards for query traffic.
func migrate(ctx context.Context, databaseURL string) error {
	db, err := sql.Open("pgx", databaseURL)
	if err != nil {
		return fmt.Errorf("open migration connection: %w", err)
	}
	defer db.Close()

	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect("pgx"); err != nil {
		return fmt.Errorf("set goose dialect: %w", err)
	}
	if err := goose.UpContext(ctx, db, "."); err != nil {
		return fmt.Errorf("apply migrations: %w", err)
	}
	return nil
}

// CreateUser inserts a new user row. A username or email collision maps to
// storage.ErrAlreadyExists.
func (s *Store) CreateUser(ctx context.Context, user models.User) (models.User, error) {
	const query = `
	INSERT INTO users (username, email, password_hash, role)
	VALUES ($1, $2, $3, $4)
	RETURNING id, username, email, password_hash, role, last_login, created_at;
	`
	row := s.pool.QueryRow(ctx, query, user.Username, user.Email, user.PasswordHash, user.Role)
	created, err := scanUser(row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return models.User{}, storage.ErrAlreadyExists
		}
		return models.User{}, err
	}
	return created, nil
}

// FindByUsername fetches a user by username.
func (s *Store) FindByUsername(ctx context.Context, username string) (models.User, error) {
	const query = `
	SELECT id, username, email, password_hash, role, last_login, created_at
	FROM users
	WHERE username = $1;
	`
	return scanUser(s.pool.QueryRow(ctx, query, username))
}

// ExistsByUsername reports whether a user with the username exists.
func (s *Store) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	return s.exists(ctx, `SELECT EXISTS (SELECT 1 FROM users WHERE username = $1);`, username)
}

// ExistsByEmail reports whether a user with the email exists.
func (s *Store) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	return s.exists(ctx, `SELECT EXISTS (SELECT 1 FROM users WHERE email = $1 AND email <> '');`, email)
}

func (s *Store) exists(ctx context.Context, query string, arg any) (bool, error) {
	var exists bool
	if err := s.pool.QueryRow(ctx, query, arg).Scan(&exists); err != nil {
		return false, fmt.Errorf("existence check: %w", err)
	}
	return exists, nil
}

// UpdateLastLogin stamps the user's last_login with the database clock.
// Concurrent logins for the same user race harmlessly; last write wins.
func (s *Store) UpdateLastLogin(ctx context.Context, username string) error {
	tag, err := s.pool.Exec(ctx, `UPDATE users SET last_login = NOW() WHERE username = $1;`, username)
	if err != nil {
		return fmt.Errorf("update last_login: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return storage.ErrNotFound
	}
	return nil
}

func scanUser(row pgx.Row) (models.User, error) {
	var user models.User
	err := row.Scan(&user.ID, &user.Username, &user.Email, &user.PasswordHash, &user.Role, &user.LastLogin, &user.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.User{}, storage.ErrNotFound
		}
		return models.User{}, err
	}
	return user, nil
}

const noteColumns = `id, owner_id, title, content, tags, image_url, is_public, is_archived, is_favorite, is_deleted, created_at, updated_at`

// CreateNote inserts a new note row.
func (s *Store) CreateNote(ctx context.Context, note models.Note) (models.Note, error) {
	const query = `
	INSERT INTO notes (id, owner_id, title, content, tags, image_url, is_public, is_favorite, created_at, updated_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	RETURNING ` + noteColumns + `;`
	row := s.pool.QueryRow(ctx, query,
		note.ID, note.OwnerID, note.Title, note.Content, tagsOrEmpty(note.Tags),
		note.ImageURL, note.IsPublic, note.IsFavorite, note.CreatedAt, note.UpdatedAt)
	return scanNote(row)
}

// FindNoteByID fetches a note by ID. Soft-deleted notes are not found.
func (s *Store) FindNoteByID(ctx context.Context, id uuid.UUID) (models.Note, error) {
	const query = `SELECT ` + noteColumns + ` FROM notes WHERE id = $1 AND NOT is_deleted;`
	return scanNote(s.pool.QueryRow(ctx, query, id))
}

// FindNotesByOwner lists a user's visible notes, newest-updated first.
func (s *Store) FindNotesByOwner(ctx context.Context, ownerID int64) ([]models.Note, error) {
	const query = `SELECT ` + noteColumns + ` FROM notes
	WHERE owner_id = $1 AND NOT is_deleted
	ORDER BY updated_at DESC;`
	return s.queryNotes(ctx, query, ownerID)
}

// FindPublicNotes lists all visible public notes, newest-updated first.
func (s *Store) FindPublicNotes(ctx context.Context) ([]models.Note, error) {
	const query = `SELECT ` + noteColumns + ` FROM notes
	WHERE is_public AND NOT is_deleted
	ORDER BY updated_at DESC;`
	return s.queryNotes(ctx, query)
}

// SearchNotes matches the keyword case-insensitively against the owner's
// note titles and contents.
func (s *Store) SearchNotes(ctx context.Context, ownerID int64, keyword string) ([]models.Note, error) {
	const query = `SELECT ` + noteColumns + ` FROM notes
	WHERE owner_id = $1 AND NOT is_deleted
	  AND (title ILIKE '%' || $2 || '%' OR content ILIKE '%' || $2 || '%')
	ORDER BY updated_at DESC;`
	return s.queryNotes(ctx, query, ownerID, keyword)
}

// UpdateNote persists the mutable fields of a note.
func (s *Store) UpdateNote(ctx context.Context, note models.Note) (models.Note, error) {
	const query = `
	UPDATE notes
	SET title = $2, content = $3, tags = $4, image_url = $5,
	    is_public = $6, is_archived = $7, is_favorite = $8, updated_at = $9
	WHERE id = $1 AND NOT is_deleted
	RETURNING ` + noteColumns + `;`
	row := s.pool.QueryRow(ctx, query,
		note.ID, note.Title, note.Content, tagsOrEmpty(note.Tags), note.ImageURL,
		note.IsPublic, note.IsArchived, note.IsFavorite, note.UpdatedAt)
	return scanNote(row)
}

// SoftDeleteNote flags a note as deleted without removing the row.
func (s *Store) SoftDeleteNote(ctx context.Context, id uuid.UUID) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE notes SET is_deleted = TRUE, updated_at = NOW() WHERE id = $1 AND NOT is_deleted;`, id)
	if err != nil {
		return fmt.Errorf("soft delete note: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return storage.ErrNotFound
	}
	return nil
}

func (s *Store) queryNotes(ctx context.Context, query string, args ...any) ([]models.Note, error) {
	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query notes: %w", err)
	}
	defer rows.Close()

	var out []models.Note
	for rows.Next() {
		note, err := scanNote(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, note)
	}
	return out, rows.Err()
}

func scanNote(row pgx.Row) (models.Note, error) {
	var note models.Note
	err := row.Scan(&note.ID, &note.OwnerID, &note.Title, &note.Content, &note.Tags,
		&note.ImageURL, &note.IsPublic, &note.IsArchived, &note.IsFavorite,
		&note.IsDeleted, &note.CreatedAt, &note.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Note{}, storage.ErrNotFound
		}
		return models.Note{}, err
	}
	return note, nil
}

func tagsOrEmpty(tags []string) []string {
	if tags == nil {
		return []string{}
	}
	return tags
}
