package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/krabbel/backend/internal/auth"
	"github.com/krabbel/backend/internal/models"
	"github.com/krabbel/backend/internal/storage/memory"
)

type capturedIdentity struct {
	ident auth.Identity
	ok    bool
}

func runFilter(t *testing.T, svc *auth.Service, skip SkipFunc, req *http.Request) (capturedIdentity, *httptest.ResponseRecorder) {
	t.Helper()
	var captured capturedIdentity
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured.ident, captured.ok = auth.IdentityFromContext(r.Context())
		w.WriteHeader(http.StatusTeapot)
	})
	rec := httptest.NewRecorder()
	Authenticate(svc, skip, next).ServeHTTP(rec, req)
	return captured, rec
}

func newAuthService(t *testing.T) (*auth.Service, string) {
	t.Helper()
	store := memory.NewStore()
	tokens := auth.NewTokenManager("filter-secret", "krabbel-test", time.Hour)
	svc := auth.NewService(store, tokens)
	token, _, err := svc.Register(context.Background(), "alice", "password1", "")
	require.NoError(t, err)
	return svc, token
}

func TestAuthenticate_ValidToken(t *testing.T) {
	t.Parallel()
	svc, token := newAuthService(t)

	req := httptest.NewRequest(http.MethodGet, "/api/notes", nil)
	req.Header.Set("Authorization", "Bearer "+token)

	captured, rec := runFilter(t, svc, nil, req)
	require.True(t, captured.ok)
	assert.Equal(t, "alice", captured.ident.Username)
	assert.Equal(t, http.StatusTeapot, rec.Code)
}

func TestAuthenticate_NoHeaderPassesThrough(t *testing.T) {
	t.Parallel()
	svc, _ := newAuthService(t)

	req := httptest.NewRequest(http.MethodGet, "/api/notes", nil)
	captured, rec := runFilter(t, svc, nil, req)

	assert.False(t, captured.ok)
	// The filter itself never rejects; the handler ran.
	assert.Equal(t, http.StatusTeapot, rec.Code)
}

func TestAuthenticate_InvalidTokensSwallowed(t *testing.T) {
	t.Parallel()
	svc, _ := newAuthService(t)

	expired := auth.NewTokenManager("filter-secret", "krabbel-test", -time.Minute)
	expiredToken, err := expired.Generate(testAlice())
	require.NoError(t, err)

	forged := auth.NewTokenManager("other-secret", "krabbel-test", time.Hour)
	forgedToken, err := forged.Generate(testAlice())
	require.NoError(t, err)

	for name, header := range map[string]string{
		"malformed":     "Bearer not-a-jwt",
		"wrong scheme":  "Basic dXNlcjpwdw==",
		"expired":       "Bearer " + expiredToken,
		"bad signature": "Bearer " + forgedToken,
	} {
		req := httptest.NewRequest(http.MethodGet, "/api/notes", nil)
		req.Header.Set("Authorization", header)
		captured, rec := runFilter(t, svc, nil, req)
		assert.False(t, captured.ok, name)
		assert.Equal(t, http.StatusTeapot, rec.Code, name)
	}
}

func TestAuthenticate_SkipPredicate(t *testing.T) {
	t.Parallel()
	svc, token := newAuthService(t)

	skip := func(r *http.Request) bool { return r.URL.Path == "/api/auth/login" }

	// Skipped requests never reach token verification, even with a valid token.
	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	captured, _ := runFilter(t, svc, skip, req)
	assert.False(t, captured.ok)

	req = httptest.NewRequest(http.MethodGet, "/api/notes", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	captured, _ = runFilter(t, svc, skip, req)
	assert.True(t, captured.ok)
}

func testAlice() models.User {
	return models.User{ID: 1, Username: "alice", Role: models.RoleUser}
}
