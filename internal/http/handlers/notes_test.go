package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/krabbel/backend/internal/auth"
	"github.com/krabbel/backend/internal/models"
	"github.com/krabbel/backend/internal/models/dto"
	"github.com/krabbel/backend/internal/notes"
	"github.com/krabbel/backend/internal/storage/memory"
)

// withIdentity injects a resolved identity the way the auth middleware would.
func withIdentity(mux *http.ServeMux, ident *auth.Identity) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if ident != nil {
			r = r.WithContext(auth.WithIdentity(r.Context(), *ident))
		}
		mux.ServeHTTP(w, r)
	})
}

func newNotesMux(t *testing.T) (*http.ServeMux, *notes.Service) {
	t.Helper()
	svc := notes.NewService(memory.NewStore())
	mux := http.NewServeMux()
	NewNotesHandler(svc).Register(mux)
	return mux, svc
}

func TestNotesHandler_UnauthenticatedRejected(t *testing.T) {
	t.Parallel()
	mux, _ := newNotesMux(t)
	h := withIdentity(mux, nil)

	id := uuid.New()
	for _, route := range []struct {
		method, path, body string
	}{
		{http.MethodGet, "/api/notes", ""},
		{http.MethodPost, "/api/notes", `{"title":"t","content":"c"}`},
		{http.MethodGet, "/api/notes/search?q=x", ""},
		{http.MethodPut, "/api/notes/" + id.String(), `{"title":"t","content":"c"}`},
		{http.MethodDelete, "/api/notes/" + id.String(), ""},
		{http.MethodPost, "/api/notes/" + id.String() + "/archive", ""},
	} {
		req := httptest.NewRequest(route.method, route.path, strings.NewReader(route.body))
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code, "%s %s", route.method, route.path)
	}
}

func TestNotesHandler_CreateValidation(t *testing.T) {
	t.Parallel()
	mux, _ := newNotesMux(t)
	ident := auth.Identity{UserID: 1, Username: "alice", Role: models.RoleUser}
	h := withIdentity(mux, &ident)

	for name, body := range map[string]string{
		"invalid JSON":    `{"title"`,
		"missing title":   `{"content":"c"}`,
		"missing content": `{"title":"t"}`,
		"blank title":     `{"title":"  ","content":"c"}`,
	} {
		req := httptest.NewRequest(http.MethodPost, "/api/notes", strings.NewReader(body))
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code, name)
	}
}

func TestNotesHandler_BadIDLooksLikeMissingNote(t *testing.T) {
	t.Parallel()
	mux, svc := newNotesMux(t)
	ident := auth.Identity{UserID: 1, Username: "alice", Role: models.RoleUser}
	h := withIdentity(mux, &ident)

	other := auth.Identity{UserID: 2, Username: "bob", Role: models.RoleUser}
	note, err := svc.Create(context.Background(), other, dto.NoteRequest{Title: "bob's", Content: "private"})
	require.NoError(t, err)

	// A malformed ID, a random ID, and another user's note all read the same.
	for name, path := range map[string]string{
		"malformed id": "/api/notes/not-a-uuid",
		"unknown id":   "/api/notes/" + uuid.NewString(),
		"foreign note": "/api/notes/" + note.ID.String(),
	} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusNotFound, rec.Code, name)
		assert.Contains(t, rec.Body.String(), "note not found", name)
	}
}
