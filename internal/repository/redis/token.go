package redis

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/Rrens/chat-client/internal/domain"
)

// TokenStore keeps the bearer token in Redis so that several client
// processes on one machine share a session
type TokenStore struct {
	client *Client
}

// NewTokenStore creates a new Redis backed token store
func NewTokenStore(client *Client) *TokenStore {
	return &TokenStore{client: client}
}

func (s *TokenStore) Load(ctx context.Context) (string, error) {
	token, err := s.client.rdb.Get(ctx, s.client.key(domain.TokenKey)).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to load token: %w", err)
	}
	return token, nil
}

func (s *TokenStore) Save(ctx context.Context, token string) error {
	if err := s.client.rdb.Set(ctx, s.client.key(domain.TokenKey), token, 0).Err(); err != nil {
		return fmt.Errorf("failed to save token: %w", err)
	}
	return nil
}

func (s *TokenStore) Clear(ctx context.Context) error {
	if err := s.client.rdb.Del(ctx, s.client.key(domain.TokenKey)).Err(); err != nil {
		return fmt.Errorf("failed to clear token: %w", err)
	}
	return nil
}
