package cache

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	jwthelp "github.com/Skotchmaster/storefront/pkg/jwt"
)

func refreshKey(userID string) string {
	return "refresh_token:" + userID
}

// RefreshTokens keeps one refresh token per user, stored as a sha256 digest.
type RefreshTokens struct {
	rdb redis.Cmdable
}

func NewRefreshTokens(rdb redis.Cmdable) *RefreshTokens {
	return &RefreshTokens{rdb: rdb}
}

func (s *RefreshTokens) Save(ctx context.Context, userID, token string, ttl time.Duration) error {
	if err := s.rdb.Set(ctx, refreshKey(userID), jwthelp.Sha256Hex(token), ttl).Err(); err != nil {
		return fmt.Errorf("refresh store set: %w", err)
	}
	return nil
}

func (s *RefreshTokens) Matches(ctx context.Context, userID, token string) (bool, error) {
	stored, err := s.rdb.Get(ctx, refreshKey(userID)).Result()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("refresh store get: %w", err)
	}
	want := jwthelp.Sha256Hex(token)
	return subtle.ConstantTimeCompare([]byte(stored), []byte(want)) == 1, nil
}

func (s *RefreshTokens) Delete(ctx context.Context, userID string) error {
	if err := s.rdb.Del(ctx, refreshKey(userID)).Err(); err != nil {
		return fmt.Errorf("refresh store delete: %w", err)
	}
	return nil
}
