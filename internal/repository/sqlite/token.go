package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Rrens/chat-client/internal/domain"
)

// TokenStore keeps the token as a row of the client_state table
type TokenStore struct {
	db *DB
}

// NewTokenStore creates a new SQLite backed token store
func NewTokenStore(db *DB) *TokenStore {
	return &TokenStore{db: db}
}

func (s *TokenStore) Load(ctx context.Context) (string, error) {
	var token string
	err := s.db.QueryRowContext(ctx,
		`SELECT value FROM client_state WHERE key = ?`, domain.TokenKey,
	).Scan(&token)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to load token: %w", err)
	}
	return token, nil
}

func (s *TokenStore) Save(ctx context.Context, token string) error {
	query := `
		INSERT INTO client_state (key, value, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
	`
	if _, err := s.db.ExecContext(ctx, query, domain.TokenKey, token, time.Now().Unix()); err != nil {
		return fmt.Errorf("failed to save token: %w", err)
	}
	return nil
}

func (s *TokenStore) Clear(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM client_state WHERE key = ?`, domain.TokenKey); err != nil {
		return fmt.Errorf("failed to clear token: %w", err)
	}
	return nil
}
