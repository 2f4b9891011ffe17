package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lestrrat-go/jwx/v2/jwa"
	"github.com/lestrrat-go/jwx/v2/jwk"
	"github.com/lestrrat-go/jwx/v2/jwt"
	"go.mongodb.org/mongo-driver/v2/bson"
)

// Access tokens are only accepted by the admin API.
const tokenAudience = "janseva-admin-api"

// clockSkew tolerated on exp/iat between API replicas.
const clockSkew = 30 * time.Second

var (
	ErrTokenExpired = errors.New("token expired")
	ErrTokenInvalid = errors.New("token invalid")
)

// JWTService issues and verifies HS256 access tokens. A token names the
// user only; role and permissions are resolved on every request.
type JWTService struct {
	signingKey jwk.Key
	issuer     string
	expiry     time.Duration
	now        func() time.Time
}

type TokenClaims struct {
	UserID    bson.ObjectID
	TokenID   string
	ExpiresAt time.Time
}

func NewJWTService(signingKey []byte, issuer string, expiry time.Duration) (*JWTService, error) {
	if len(signingKey) == 0 {
		return nil, errors.New("jwt signing key is empty")
	}
	key, err := jwk.FromRaw(signingKey)
	if err != nil {
		return nil, fmt.Errorf("failed to create JWK: %w", err)
	}
	if err := key.Set(jwk.AlgorithmKey, jwa.HS256); err != nil {
		return nil, fmt.Errorf("failed to set algorithm: %w", err)
	}

	return &JWTService{
		signingKey: key,
		issuer:     issuer,
		expiry:     expiry,
		now:        time.Now,
	}, nil
}

func (s *JWTService) Expiry() time.Duration {
	return s.expiry
}

func (s *JWTService) GenerateToken(ctx context.Context, userID bson.ObjectID) (string, error) {
	now := s.now()

	token, err := jwt.NewBuilder().
		JwtID(uuid.NewString()).
		Issuer(s.issuer).
		Audience([]string{tokenAudience}).
		Subject(userID.Hex()).
		IssuedAt(now).
		Expiration(now.Add(s.expiry)).
		Build()
	if err != nil {
		return "", fmt.Errorf("failed to build token: %w", err)
	}

	signed, err := jwt.Sign(token, jwt.WithKey(jwa.HS256, s.signingKey))
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return string(signed), nil
}

// ValidateToken verifies signature, issuer, audience and lifetime. Failures
// wrap ErrTokenExpired or ErrTokenInvalid.
func (s *JWTService) ValidateToken(ctx context.Context, tokenString string) (*TokenClaims, error) {
	token, err := jwt.Parse([]byte(tokenString),
		jwt.WithKey(jwa.HS256, s.signingKey),
		jwt.WithIssuer(s.issuer),
		jwt.WithAudience(tokenAudience),
		jwt.WithAcceptableSkew(clockSkew),
		jwt.WithClock(jwt.ClockFunc(s.now)),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired()) {
			return nil, fmt.Errorf("%w: %v", ErrTokenExpired, err)
		}
		return nil, fmt.Errorf("%w: %v", ErrTokenInvalid, err)
	}

	userID, err := bson.ObjectIDFromHex(token.Subject())
	if err != nil {
		return nil, fmt.Errorf("%w: subject is not a user id", ErrTokenInvalid)
	}

	return &TokenClaims{
		UserID:    userID,
		TokenID:   token.JwtID(),
		ExpiresAt: token.Expiration(),
	}, nil
}
