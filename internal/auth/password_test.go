package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashAndCheckPassword(t *testing.T) {
	t.Parallel()

	digest, err := HashPassword("correct horse battery staple")
	require.NoError(t, err)
	require.NotEmpty(t, digest)
	assert.NotContains(t, digest, "correct horse")

	assert.True(t, CheckPassword("correct horse battery staple", digest))
	assert.False(t, CheckPassword("wrong password", digest))
}

func TestCheckPassword_MalformedDigest(t *testing.T) {
	t.Parallel()

	for _, digest := range []string{"", "not-a-bcrypt-digest", "$2a$xx$garbage"} {
		assert.False(t, CheckPassword("anything", digest))
	}
}

func TestHashPassword_UniqueSalts(t *testing.T) {
	t.Parallel()

	a, err := HashPassword("same password")
	require.NoError(t, err)
	b, err := HashPassword("same password")
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}
