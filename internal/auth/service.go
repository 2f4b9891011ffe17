package auth

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/janseva/constituency-admin/internal/config"
	"github.com/janseva/constituency-admin/internal/logging"
	"github.com/janseva/constituency-admin/internal/rbac"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/v2/bson"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrRefreshInvalid     = errors.New("invalid or expired refresh token")
)

// bcrypt hash of a random string, compared against when the email is
// unknown so both paths cost the same
const dummyHash = "$2a$10$7EqJtq98hPqEX7fNZaFWoOhi5BWX4Z2VxIsmcsJhqV6rZF4zJTn9y"

type CredentialStore interface {
	FindByEmail(ctx context.Context, email string) (*rbac.User, error)
}

type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
	ExpiresIn    int64  `json:"expiresIn"`
}

// AuthService handles password login and rotating refresh tokens.
type AuthService struct {
	store         *redisStore
	jwt           *JWTService
	users         CredentialStore
	refreshExpiry time.Duration
}

func NewAuthService(redisClient *redis.Client, jwtSvc *JWTService, users CredentialStore, cfg config.AuthConfig) *AuthService {
	return &AuthService{
		store:         newRedisStore(redisClient),
		jwt:           jwtSvc,
		users:         users,
		refreshExpiry: cfg.RefreshExpiry,
	}
}

func (s *AuthService) Login(ctx context.Context, email, password string) (*TokenPair, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, rbac.ErrNotFound) {
			_, _ = CheckPassword(dummyHash, password)
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("loading user: %w", err)
	}

	ok, err := CheckPassword(user.PasswordHash, password)
	if err != nil {
		return nil, fmt.Errorf("checking password: %w", err)
	}
	if !ok {
		logging.Info("login rejected", "user_id", user.ID.Hex())
		return nil, ErrInvalidCredentials
	}

	pair, err := s.issueTokenPair(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	logging.Info("user logged in", "user_id", user.ID.Hex())
	return pair, nil
}

// rotates refresh token and returns new pair
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	hash := hashString(refreshToken)

	userIDStr, err := s.store.takeRefreshToken(ctx, hash)
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrRefreshInvalid
		}
		return nil, fmt.Errorf("retrieving refresh token: %w", err)
	}

	userID, err := bson.ObjectIDFromHex(userIDStr)
	if err != nil {
		return nil, fmt.Errorf("invalid user ID in refresh token: %w", err)
	}

	pair, err := s.issueTokenPair(ctx, userID)
	if err != nil {
		return nil, err
	}

	logging.Info("refresh token rotated", "user_id", userIDStr)
	return pair, nil
}

// logs out user
func (s *AuthService) Logout(ctx context.Context, refreshToken string) error {
	hash := hashString(refreshToken)

	userIDStr, err := s.store.getRefreshToken(ctx, hash)
	if err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("looking up refresh token: %w", err)
	}

	if err := s.store.deleteRefreshToken(ctx, hash, userIDStr); err != nil {
		return fmt.Errorf("deleting refresh token: %w", err)
	}

	if userIDStr != "" {
		logging.Info("user logged out", "user_id", userIDStr)
	}
	return nil
}

// RevokeAll ends every session of the user, e.g. after a role change.
func (s *AuthService) RevokeAll(ctx context.Context, userID bson.ObjectID) error {
	n, err := s.store.revokeUser(ctx, userID.Hex())
	if err != nil {
		return fmt.Errorf("revoking refresh tokens: %w", err)
	}
	logging.Info("refresh tokens revoked", "user_id", userID.Hex(), "count", n)
	return nil
}

// generates a JWT access token and a random refresh token
func (s *AuthService) issueTokenPair(ctx context.Context, userID bson.ObjectID) (*TokenPair, error) {
	accessToken, err := s.jwt.GenerateToken(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("generating access token: %w", err)
	}

	rawRefresh, err := generateRefreshToken()
	if err != nil {
		return nil, fmt.Errorf("generating refresh token: %w", err)
	}

	hash := hashString(rawRefresh)
	if err := s.store.storeRefreshToken(ctx, hash, userID.Hex(), s.refreshExpiry); err != nil {
		return nil, fmt.Errorf("storing refresh token: %w", err)
	}

	return &TokenPair{
		AccessToken:  accessToken,
		RefreshToken: rawRefresh,
		ExpiresIn:    int64(s.jwt.Expiry().Seconds()),
	}, nil
}

// returns 32 random bytes as a hex string (64 chars).
func generateRefreshToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

func hashString(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])
}
