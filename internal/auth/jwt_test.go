package auth

import (
	"testing"
	"time"

	"github.com/lestrrat-go/jwx/v2/jwa"
	"github.com/lestrrat-go/jwx/v2/jwt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/bson"
)

func newTestJWT(t *testing.T, secret, issuer string, expiry time.Duration) *JWTService {
	t.Helper()
	s, err := NewJWTService([]byte(secret), issuer, expiry)
	require.NoError(t, err)
	return s
}

func TestJWTService_RoundTrip(t *testing.T) {
	s := newTestJWT(t, "test-secret-key", "test-issuer", time.Hour)
	userID := bson.NewObjectID()

	token, err := s.GenerateToken(t.Context(), userID)
	require.NoError(t, err)

	claims, err := s.ValidateToken(t.Context(), token)
	require.NoError(t, err)
	assert.Equal(t, userID, claims.UserID)
	assert.NotEmpty(t, claims.TokenID)
	assert.WithinDuration(t, time.Now().Add(time.Hour), claims.ExpiresAt, 5*time.Second)
}

func TestJWTService_TokenIDsAreUnique(t *testing.T) {
	s := newTestJWT(t, "test-secret-key", "test-issuer", time.Hour)
	userID := bson.NewObjectID()

	a, err := s.GenerateToken(t.Context(), userID)
	require.NoError(t, err)
	b, err := s.GenerateToken(t.Context(), userID)
	require.NoError(t, err)

	ca, err := s.ValidateToken(t.Context(), a)
	require.NoError(t, err)
	cb, err := s.ValidateToken(t.Context(), b)
	require.NoError(t, err)
	assert.NotEqual(t, ca.TokenID, cb.TokenID)
}

func TestNewJWTService_EmptyKey(t *testing.T) {
	_, err := NewJWTService(nil, "test-issuer", time.Hour)
	assert.Error(t, err)
}

func TestJWTService_ValidateToken_Rejects(t *testing.T) {
	s := newTestJWT(t, "secret-1", "issuer-a", time.Hour)

	otherKey := newTestJWT(t, "secret-2", "issuer-a", time.Hour)
	otherIssuer := newTestJWT(t, "secret-1", "issuer-b", time.Hour)

	forged := func() string {
		key := s.signingKey
		tok, err := jwt.NewBuilder().
			Issuer("issuer-a").
			Audience([]string{"some-other-api"}).
			Subject(bson.NewObjectID().Hex()).
			Expiration(time.Now().Add(time.Hour)).
			Build()
		require.NoError(t, err)
		signed, err := jwt.Sign(tok, jwt.WithKey(jwa.HS256, key))
		require.NoError(t, err)
		return string(signed)
	}
	badSubject := func() string {
		tok, err := jwt.NewBuilder().
			Issuer("issuer-a").
			Audience([]string{tokenAudience}).
			Subject("not-an-object-id").
			Expiration(time.Now().Add(time.Hour)).
			Build()
		require.NoError(t, err)
		signed, err := jwt.Sign(tok, jwt.WithKey(jwa.HS256, s.signingKey))
		require.NoError(t, err)
		return string(signed)
	}
	mint := func(from *JWTService) string {
		tok, err := from.GenerateToken(t.Context(), bson.NewObjectID())
		require.NoError(t, err)
		return tok
	}

	tests := []struct {
		name  string
		token string
	}{
		{"garbage", "invalid-token"},
		{"wrong secret", mint(otherKey)},
		{"wrong issuer", mint(otherIssuer)},
		{"wrong audience", forged()},
		{"subject not an object id", badSubject()},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.ValidateToken(t.Context(), tt.token)
			assert.ErrorIs(t, err, ErrTokenInvalid)
		})
	}
}

func TestJWTService_ValidateToken_Expired(t *testing.T) {
	s := newTestJWT(t, "test-secret-key", "test-issuer", time.Hour)

	token, err := s.GenerateToken(t.Context(), bson.NewObjectID())
	require.NoError(t, err)

	s.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	_, err = s.ValidateToken(t.Context(), token)
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestJWTService_ValidateToken_WithinSkew(t *testing.T) {
	s := newTestJWT(t, "test-secret-key", "test-issuer", time.Minute)

	token, err := s.GenerateToken(t.Context(), bson.NewObjectID())
	require.NoError(t, err)

	s.now = func() time.Time { return time.Now().Add(time.Minute + clockSkew/2) }
	_, err = s.ValidateToken(t.Context(), token)
	assert.NoError(t, err)
}
