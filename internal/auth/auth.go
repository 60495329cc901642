package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/Yashchoudhary3/flight-app/config"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

var ErrInvalidToken = errors.New("invalid or expired session")

// Claims identify the requester. Session issuance happens outside this
// service; we only resolve a bearer token into claims.
type Claims struct {
	UserID uuid.UUID `json:"user_id"`
	Role   string    `json:"role"`
}

type Verifier interface {
	Verify(ctx context.Context, token string) (*Claims, error)
}

// RedisVerifier resolves session tokens against records written by the
// auth service.
type RedisVerifier struct {
	client *redis.Client
}

func NewRedisVerifier(cfg config.RedisConfig) *RedisVerifier {
	return &RedisVerifier{
		client: redis.NewClient(&redis.Options{Addr: cfg.Addr, Password: cfg.Password, DB: cfg.DB}),
	}
}

func (v *RedisVerifier) Verify(ctx context.Context, token string) (*Claims, error) {
	data, err := v.client.Get(ctx, sessionKey(token)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, ErrInvalidToken
		}
		return nil, fmt.Errorf("lookup session: %w", err)
	}

	var claims Claims
	if err := json.Unmarshal(data, &claims); err != nil {
		return nil, fmt.Errorf("decode session: %w", err)
	}
	return &claims, nil
}

func sessionKey(token string) string {
	return "session:" + token
}

var _ Verifier = (*RedisVerifier)(nil)
