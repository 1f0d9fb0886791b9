package memory

import (
	"context"
	"sync"
)

// TokenStore keeps the token for the lifetime of the process only
type TokenStore struct {
	mu    sync.RWMutex
	token string
}

func NewTokenStore(token string) *TokenStore {
	return &TokenStore{token: token}
}

func (s *TokenStore) Load(context.Context) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token, nil
}

func (s *TokenStore) Save(_ context.Context, token string) error {
	s.mu.Lock()
	s.token = token
	s.mu.Unlock()
	return nil
}

func (s *TokenStore) Clear(context.Context) error {
	return s.Save(context.Background(), "")
}
