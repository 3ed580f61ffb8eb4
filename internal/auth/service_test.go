package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/krabbel/backend/internal/models"
	"github.com/krabbel/backend/internal/storage/memory"
)

func newTestService(t *testing.T) (*Service, *memory.Store) {
	t.Helper()
	store := memory.NewStore()
	tokens := NewTokenManager("test-secret", "krabbel-test", time.Hour)
	return NewService(store, tokens), store
}

func TestService_RegisterAndLogin(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc, _ := newTestService(t)

	token, user, err := svc.Register(ctx, "alice", "pw1", "a@x.com")
	require.NoError(t, err)
	assert.Equal(t, "alice", user.Username)
	assert.Equal(t, models.RoleUser, user.Role)
	assert.NotEmpty(t, token)
	assert.NotEqual(t, "pw1", user.PasswordHash)

	// Same username, different email.
	_, _, err = svc.Register(ctx, "alice", "pw2", "b@x.com")
	assert.ErrorIs(t, err, ErrUsernameTaken)

	loginToken, loggedIn, err := svc.Login(ctx, "alice", "pw1")
	require.NoError(t, err)
	assert.Equal(t, user.ID, loggedIn.ID)

	ident, err := svc.ResolveToken(ctx, loginToken)
	require.NoError(t, err)
	assert.Equal(t, "alice", ident.Username)
	assert.Equal(t, user.ID, ident.UserID)

	_, _, err = svc.Login(ctx, "alice", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestService_Login_UnknownUserIndistinguishable(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc, _ := newTestService(t)

	_, _, err := svc.Register(ctx, "bob", "password1", "")
	require.NoError(t, err)

	_, _, errUnknown := svc.Login(ctx, "nobody", "password1")
	_, _, errWrongPw := svc.Login(ctx, "bob", "password2")

	assert.ErrorIs(t, errUnknown, ErrInvalidCredentials)
	assert.ErrorIs(t, errWrongPw, ErrInvalidCredentials)
	assert.Equal(t, errUnknown.Error(), errWrongPw.Error())
}

func TestService_Login_RecordsLastLogin(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc, store := newTestService(t)

	_, _, err := svc.Register(ctx, "carol", "password1", "")
	require.NoError(t, err)

	before, err := store.FindByUsername(ctx, "carol")
	require.NoError(t, err)
	assert.Nil(t, before.LastLogin)

	_, _, err = svc.Login(ctx, "carol", "password1")
	require.NoError(t, err)

	after, err := store.FindByUsername(ctx, "carol")
	require.NoError(t, err)
	require.NotNil(t, after.LastLogin)
	assert.WithinDuration(t, time.Now(), *after.LastLogin, time.Minute)
}

func TestService_Register_EmailConflictIsAtomic(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc, store := newTestService(t)

	_, _, err := svc.Register(ctx, "dave", "password1", "dave@x.com")
	require.NoError(t, err)

	_, _, err = svc.Register(ctx, "erin", "password1", "dave@x.com")
	assert.ErrorIs(t, err, ErrEmailTaken)

	// The failed attempt must not have left a row behind.
	exists, err := store.ExistsByUsername(ctx, "erin")
	require.NoError(t, err)
	assert.False(t, exists)

	// Retrying the same username with a free email succeeds.
	_, _, err = svc.Register(ctx, "erin", "password1", "erin@x.com")
	assert.NoError(t, err)
}

func TestService_ResolveToken_SubjectMustExist(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc, store := newTestService(t)

	token, _, err := svc.Register(ctx, "ghost", "password1", "")
	require.NoError(t, err)

	_, err = svc.ResolveToken(ctx, token)
	require.NoError(t, err)

	store.DeleteUser("ghost")
	_, err = svc.ResolveToken(ctx, token)
	assert.Error(t, err)
}

func TestService_ResolveToken_VerificationFailures(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc, _ := newTestService(t)

	_, err := svc.ResolveToken(ctx, "garbage")
	assert.ErrorIs(t, err, ErrTokenMalformed)

	expired := NewTokenManager("test-secret", "krabbel-test", -time.Minute)
	token, err := expired.Generate(models.User{Username: "alice", Role: models.RoleUser})
	require.NoError(t, err)
	_, err = svc.ResolveToken(ctx, token)
	assert.ErrorIs(t, err, ErrTokenExpired)

	other := NewTokenManager("other-secret", "krabbel-test", time.Hour)
	token, err = other.Generate(models.User{Username: "alice", Role: models.RoleUser})
	require.NoError(t, err)
	_, err = svc.ResolveToken(ctx, token)
	assert.ErrorIs(t, err, ErrTokenSignatureInvalid)
}
