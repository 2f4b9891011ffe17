package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

type redisStore struct {
	client *redis.Client
}

func newRedisStore(client *redis.Client) *redisStore {
	return &redisStore{client: client}
}

func (r *redisStore) storeRefreshToken(ctx context.Context, hash, userID string, ttl time.Duration) error {
	pipe := r.client.TxPipeline()
	pipe.Set(ctx, refreshTokenKey(hash), userID, ttl)
	pipe.SAdd(ctx, userTokensKey(userID), hash)
	pipe.Expire(ctx, userTokensKey(userID), ttl)
	_, err := pipe.Exec(ctx)
	return err
}

func (r *redisStore) getRefreshToken(ctx context.Context, hash string) (string, error) {
	return r.client.Get(ctx, refreshTokenKey(hash)).Result()
}

// takeRefreshToken reads and deletes in one step so a token can be rotated once.
func (r *redisStore) takeRefreshToken(ctx context.Context, hash string) (string, error) {
	userID, err := r.client.GetDel(ctx, refreshTokenKey(hash)).Result()
	if err != nil {
		return "", err
	}
	r.client.SRem(ctx, userTokensKey(userID), hash)
	return userID, nil
}

func (r *redisStore) deleteRefreshToken(ctx context.Context, hash, userID string) error {
	pipe := r.client.TxPipeline()
	pipe.Del(ctx, refreshTokenKey(hash))
	if userID != "" {
		pipe.SRem(ctx, userTokensKey(userID), hash)
	}
	_, err := pipe.Exec(ctx)
	return err
}

// revokeUser drops every refresh token issued to userID.
func (r *redisStore) revokeUser(ctx context.Context, userID string) (int, error) {
	hashes, err := r.client.SMembers(ctx, userTokensKey(userID)).Result()
	if err != nil {
		return 0, err
	}
	keys := make([]string, 0, len(hashes)+1)
	for _, h := range hashes {
		keys = append(keys, refreshTokenKey(h))
	}
	keys = append(keys, userTokensKey(userID))
	if err := r.client.Del(ctx, keys...).Err(); err != nil {
		return 0, err
	}
	return len(hashes), nil
}

func refreshTokenKey(hash string) string {
	return fmt.Sprintf("refresh:token:%s", hash)
}

func userTokensKey(userID string) string {
	return fmt.Sprintf("refresh:user:%s", userID)
}
