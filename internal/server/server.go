package server

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/krabbel/backend/internal/auth"
	"github.com/krabbel/backend/internal/config"
	"github.com/krabbel/backend/internal/http/handlers"
	"github.com/krabbel/backend/internal/middleware"
	"github.com/krabbel/backend/internal/notes"
	"github.com/krabbel/backend/internal/storage"
)

// Server wraps an http.Server with configured routes.
type Server struct {
	inner *http.Server
}

// Stores bundles the persistence collaborators the server needs.
type Stores interface {
	storage.UserStore
	storage.NoteStore
}

// New wires up middleware, routes, and returns a ready server.
func New(cfg config.Config, store Stores) *Server {
	return &Server{inner: &http.Server{
		Addr:              cfg.HTTPAddress(),
		Handler:           Handler(cfg, store),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}}
}

// Handler assembles the full request pipeline: CORS, request logging, the
// identity filter, then the routed handlers.
func Handler(cfg config.Config, store Stores) http.Handler {
	tokens := auth.NewTokenManager(cfg.JWTSecret, cfg.JWTIssuer, cfg.JWTTTL())
	authSvc := auth.NewService(store, tokens)
	noteSvc := notes.NewService(store)

	mux := http.NewServeMux()
	handlers.NewRootHandler().Register(mux)
	handlers.NewHealthHandler(time.Now()).Register(mux)
	handlers.NewAuthHandler(authSvc).Register(mux)
	handlers.NewNotesHandler(noteSvc).Register(mux)

	chain := middleware.Authenticate(authSvc, skipAuth, mux)
	return middleware.CORS(cfg.CORSOrigins, middleware.Logging(chain))
}

// skipAuth is the allow-list: requests it matches bypass token
// verification entirely. Everything else goes through the identity filter
// (which still never rejects on its own).
func skipAuth(r *http.Request) bool {
	if r.Method == http.MethodOptions {
		return true
	}
	path := r.URL.Path
	switch path {
	case "/", "/status":
		return true
	}
	return strings.HasPrefix(path, "/api/auth/") || strings.HasPrefix(path, "/api/health/")
}

// Start begins serving HTTP traffic.
func (s *Server) Start() error {
	return s.inner.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.inner.Shutdown(ctx)
}
