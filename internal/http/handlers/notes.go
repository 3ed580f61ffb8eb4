package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/krabbel/backend/internal/auth"
	"github.com/krabbel/backend/internal/http/respond"
	"github.com/krabbel/backend/internal/models/dto"
	"github.com/krabbel/backend/internal/notes"
	"github.com/krabbel/backend/internal/storage"
)

// NotesHandler owns the note CRUD endpoints. Every route except the public
// listing requires an identity in the request context; the handler, not the
// auth middleware, is what rejects unauthenticated callers.
type NotesHandler struct {
	notes *notes.Service
}

// NewNotesHandler constructs the handler.
func NewNotesHandler(svc *notes.Service) *NotesHandler {
	return &NotesHandler{notes: svc}
}

// Register attaches note routes to the mux.
func (h *NotesHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/notes", h.handleList)
	mux.HandleFunc("POST /api/notes", h.handleCreate)
	mux.HandleFunc("GET /api/notes/public", h.handlePublic)
	mux.HandleFunc("GET /api/notes/search", h.handleSearch)
	mux.HandleFunc("GET /api/notes/{id}", h.handleGet)
	mux.HandleFunc("PUT /api/notes/{id}", h.handleUpdate)
	mux.HandleFunc("DELETE /api/notes/{id}", h.handleDelete)
	mux.HandleFunc("POST /api/notes/{id}/archive", h.handleArchive)
}

func (h *NotesHandler) handleList(w http.ResponseWriter, r *http.Request) {
	ident, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		respond.Unauthorized(w)
		return
	}
	list, err := h.notes.List(r.Context(), ident)
	if err != nil {
		log.Printf("list notes for %s: %v", ident.Username, err)
		respond.Error(w, http.StatusInternalServerError, "failed to list notes")
		return
	}
	respond.JSON(w, http.StatusOK, "notes", list)
}

func (h *NotesHandler) handlePublic(w http.ResponseWriter, r *http.Request) {
	list, err := h.notes.ListPublic(r.Context())
	if err != nil {
		log.Printf("list public notes: %v", err)
		respond.Error(w, http.StatusInternalServerError, "failed to list notes")
		return
	}
	respond.JSON(w, http.StatusOK, "public notes", list)
}

func (h *NotesHandler) handleSearch(w http.ResponseWriter, r *http.Request) {
	ident, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		respond.Unauthorized(w)
		return
	}
	keyword := strings.TrimSpace(r.URL.Query().Get("q"))
	if keyword == "" {
		respond.Error(w, http.StatusBadRequest, "query parameter q is required")
		return
	}
	list, err := h.notes.Search(r.Context(), ident, keyword)
	if err != nil {
		log.Printf("search notes for %s: %v", ident.Username, err)
		respond.Error(w, http.StatusInternalServerError, "failed to search notes")
		return
	}
	respond.JSON(w, http.StatusOK, "search results", list)
}

func (h *NotesHandler) handleCreate(w http.ResponseWriter, r *http.Request) {
	ident, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		respond.Unauthorized(w)
		return
	}
	req, ok := decodeNoteRequest(w, r)
	if !ok {
		return
	}
	note, err := h.notes.Create(r.Context(), ident, req)
	if err != nil {
		log.Printf("create note for %s: %v", ident.Username, err)
		respond.Error(w, http.StatusInternalServerError, "failed to create note")
		return
	}
	respond.JSON(w, http.StatusCreated, "note created", note)
}

func (h *NotesHandler) handleGet(w http.ResponseWriter, r *http.Request) {
	id, ok := notePathID(w, r)
	if !ok {
		return
	}
	var ident *auth.Identity
	if resolved, ok := auth.IdentityFromContext(r.Context()); ok {
		ident = &resolved
	}
	note, err := h.notes.Get(r.Context(), ident, id)
	if err != nil {
		h.respondNoteError(w, "get", err)
		return
	}
	respond.JSON(w, http.StatusOK, "note", note)
}

func (h *NotesHandler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	ident, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		respond.Unauthorized(w)
		return
	}
	id, ok := notePathID(w, r)
	if !ok {
		return
	}
	req, ok := decodeNoteRequest(w, r)
	if !ok {
		return
	}
	note, err := h.notes.Update(r.Context(), ident, id, req)
	if err != nil {
		h.respondNoteError(w, "update", err)
		return
	}
	respond.JSON(w, http.StatusOK, "note updated", note)
}

func (h *NotesHandler) handleDelete(w http.ResponseWriter, r *http.Request) {
	ident, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		respond.Unauthorized(w)
		return
	}
	id, ok := notePathID(w, r)
	if !ok {
		return
	}
	if err := h.notes.Delete(r.Context(), ident, id); err != nil {
		h.respondNoteError(w, "delete", err)
		return
	}
	respond.JSON(w, http.StatusOK, "note deleted", nil)
}

func (h *NotesHandler) handleArchive(w http.ResponseWriter, r *http.Request) {
	ident, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		respond.Unauthorized(w)
		return
	}
	id, ok := notePathID(w, r)
	if !ok {
		return
	}
	note, err := h.notes.Archive(r.Context(), ident, id)
	if err != nil {
		h.respondNoteError(w, "archive", err)
		return
	}
	respond.JSON(w, http.StatusOK, "note archived", note)
}

// respondNoteError maps service errors to responses. ErrForbidden and
// ErrNotFound share the same 404 on purpose.
func (h *NotesHandler) respondNoteError(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, storage.ErrNotFound), errors.Is(err, notes.ErrForbidden):
		respond.NotFound(w)
	default:
		log.Printf("%s note: %v", op, err)
		respond.Error(w, http.StatusInternalServerError, "failed to "+op+" note")
	}
}

func notePathID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		respond.NotFound(w)
		return uuid.UUID{}, false
	}
	return id, true
}

func decodeNoteRequest(w http.ResponseWriter, r *http.Request) (dto.NoteRequest, bool) {
	var req dto.NoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, http.StatusBadRequest, "invalid JSON payload")
		return dto.NoteRequest{}, false
	}
	if strings.TrimSpace(req.Title) == "" || strings.TrimSpace(req.Content) == "" {
		respond.Error(w, http.StatusBadRequest, "title and content are required")
		return dto.NoteRequest{}, false
	}
	return req, true
}
