package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/krabbel/backend/internal/auth"
	"github.com/krabbel/backend/internal/http/respond"
	"github.com/krabbel/backend/internal/models/dto"
)

// AuthHandler owns the login and register endpoints.
type AuthHandler struct {
	auth *auth.Service
}

// NewAuthHandler constructs the handler.
func NewAuthHandler(authSvc *auth.Service) *AuthHandler {
	return &AuthHandler{auth: authSvc}
}

// Register attaches auth routes to the mux.
func (h *AuthHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("/api/auth/register", h.handleRegister)
	mux.HandleFunc("/api/auth/login", h.handleLogin)
}

func (h *AuthHandler) handleRegister(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req dto.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, http.StatusBadRequest, "invalid JSON payload")
		return
	}
	username := strings.TrimSpace(req.Username)
	email := strings.TrimSpace(req.Email)
	if err := validateCredentials(username, req.Password); err != nil {
		respond.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	token, user, err := h.auth.Register(r.Context(), username, req.Password, email)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrUsernameTaken), errors.Is(err, auth.ErrEmailTaken):
			respond.Error(w, http.StatusConflict, err.Error())
		default:
			log.Printf("register %s: %v", username, err)
			respond.Error(w, http.StatusInternalServerError, "failed to create user")
		}
		return
	}

	respond.JSON(w, http.StatusCreated, "user created successfully", dto.AuthResponse{
		Token:    token,
		Username: user.Username,
		Role:     string(user.Role),
	})
}

func (h *AuthHandler) handleLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req dto.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, http.StatusBadRequest, "invalid JSON payload")
		return
	}
	username := strings.TrimSpace(req.Username)
	if username == "" || req.Password == "" {
		respond.Error(w, http.StatusBadRequest, "username and password are required")
		return
	}

	token, user, err := h.auth.Login(r.Context(), username, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			// Same response whether the username is unknown or the
			// password is wrong.
			respond.Error(w, http.StatusUnauthorized, "invalid credentials")
			return
		}
		log.Printf("login %s: %v", username, err)
		respond.Error(w, http.StatusInternalServerError, "failed to log in")
		return
	}

	respond.JSON(w, http.StatusOK, "login successful", dto.AuthResponse{
		Token:    token,
		Username: user.Username,
		Role:     string(user.Role),
	})
}

func validateCredentials(username, password string) error {
	if username == "" {
		return errors.New("username is required")
	}
	if password == "" || !utf8.ValidString(password) {
		return errors.New("password is required")
	}
	return nil
}
