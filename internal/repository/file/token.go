package file

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/Rrens/chat-client/internal/domain"
)

const fileName = "credentials.json"

// TokenStore persists the token as a small JSON document keyed by
// domain.TokenKey inside the client's config directory
type TokenStore struct {
	mu   sync.Mutex
	path string
}

// NewTokenStore creates the directory if needed
func NewTokenStore(dir string) (*TokenStore, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("failed to create storage directory: %w", err)
	}
	return &TokenStore{path: filepath.Join(dir, fileName)}, nil
}

// Path returns the credentials file location
func (s *TokenStore) Path() string {
	return s.path
}

func (s *TokenStore) Load(context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	values, err := s.read()
	if err != nil {
		return "", err
	}
	return values[domain.TokenKey], nil
}

func (s *TokenStore) Save(_ context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	values, err := s.read()
	if err != nil {
		return err
	}
	values[domain.TokenKey] = token
	return s.write(values)
}

func (s *TokenStore) Clear(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	values, err := s.read()
	if err != nil {
		return err
	}
	if _, ok := values[domain.TokenKey]; !ok {
		return nil
	}
	delete(values, domain.TokenKey)
	return s.write(values)
}

func (s *TokenStore) read() (map[string]string, error) {
	values := map[string]string{}

	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return values, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read credentials: %w", err)
	}
	if len(data) == 0 {
		return values, nil
	}

	if err := json.Unmarshal(data, &values); err != nil {
		return nil, fmt.Errorf("failed to parse credentials: %w", err)
	}
	return values, nil
}

// write replaces the file atomically so a crash never leaves half a token
func (s *TokenStore) write(values map[string]string) error {
	data, err := json.Marshal(values)
	if err != nil {
		return fmt.Errorf("failed to marshal credentials: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), fileName+".*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write credentials: %w", err)
	}
	if err := tmp.Chmod(0o600); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to set permissions: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write credentials: %w", err)
	}

	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("failed to replace credentials: %w", err)
	}
	return nil
}
