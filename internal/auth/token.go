package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/krabbel/backend/internal/models"
)

// Claims carries the identity encoded in an issued token: the username as
// subject plus the user's role.
type Claims struct {
	jwt.RegisteredClaims
	Role models.Role `json:"role"`
}

// TokenManager issues and verifies signed JWTs. The signing secret is
// process-wide, loaded once at startup.
type TokenManager struct {
	secret []byte
	issuer string
	ttl    time.Duration
}

// NewTokenManager creates a manager with the provided secret, issuer, and lifetime.
func NewTokenManager(secret, issuer string, ttl time.Duration) *TokenManager {
	return &TokenManager{
		secret: []byte(secret),
		issuer: issuer,
		ttl:    ttl,
	}
}

// Generate issues a signed HS256 token for the user, valid for the
// configured TTL.
func (t *TokenManager) Generate(user models.User) (string, error) {
	now := time.Now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    t.issuer,
			Subject:   user.Username,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(t.ttl)),
		},
		Role: user.Role,
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(t.secret)
}

// Parse verifies the token string and returns its claims. Failures map to
// exactly one of ErrTokenMalformed, ErrTokenSignatureInvalid, or
// ErrTokenExpired; no partially trusted claims are ever returned.
func (t *TokenManager) Parse(tokenString string) (Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (any, error) {
		return t.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenSignatureInvalid):
			return Claims{}, ErrTokenSignatureInvalid
		case errors.Is(err, jwt.ErrTokenExpired):
			return Claims{}, ErrTokenExpired
		default:
			return Claims{}, ErrTokenMalformed
		}
	}
	if !token.Valid || claims.Subject == "" {
		return Claims{}, ErrTokenMalformed
	}
	return *claims, nil
}

// TTL returns the lifetime applied to issued tokens.
func (t *TokenManager) TTL() time.Duration { return t.ttl }
