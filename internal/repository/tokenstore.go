package repository

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/Rrens/chat-client/internal/config"
	"github.com/Rrens/chat-client/internal/domain"
	"github.com/Rrens/chat-client/internal/repository/file"
	"github.com/Rrens/chat-client/internal/repository/memory"
	"github.com/Rrens/chat-client/internal/repository/redis"
	"github.com/Rrens/chat-client/internal/repository/sqlite"
	"github.com/Rrens/chat-client/internal/security"
)

// NewTokenStore opens the token storage selected by cfg.Driver. The returned
// close function releases the underlying connection and is never nil.
func NewTokenStore(ctx context.Context, cfg config.StorageConfig) (domain.TokenStore, func() error, error) {
	var (
		store   domain.TokenStore
		closeFn = func() error { return nil }
	)

	switch cfg.Driver {
	case config.StorageFile, "":
		fs, err := file.NewTokenStore(cfg.Path)
		if err != nil {
			return nil, nil, err
		}
		store = fs
	case config.StorageSQLite:
		db, err := sqlite.Open(ctx, cfg.Path)
		if err != nil {
			return nil, nil, err
		}
		store = sqlite.NewTokenStore(db)
		closeFn = db.Close
	case config.StorageRedis:
		client, err := redis.NewClient(ctx, cfg.Redis)
		if err != nil {
			return nil, nil, err
		}
		store = redis.NewTokenStore(client)
		closeFn = client.Close
	case config.StorageMemory:
		store = memory.NewTokenStore("")
	default:
		return nil, nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
	}

	if cfg.EncryptionKey != "" {
		enc, err := security.NewEncryptorFromPassphrase(cfg.EncryptionKey)
		if err != nil {
			closeFn()
			return nil, nil, err
		}
		store = NewEncryptedTokenStore(store, enc)
	}

	log.Debug().
		Str("driver", cfg.Driver).
		Bool("encrypted", cfg.EncryptionKey != "").
		Msg("token store ready")

	return store, closeFn, nil
}

// EncryptedTokenStore seals the token before handing it to the wrapped store
type EncryptedTokenStore struct {
	next domain.TokenStore
	enc  *security.Encryptor
}

func NewEncryptedTokenStore(next domain.TokenStore, enc *security.Encryptor) *EncryptedTokenStore {
	return &EncryptedTokenStore{next: next, enc: enc}
}

// Load treats a token that cannot be decrypted as absent, e.g. after the
// key was rotated, so the user is simply asked to log in again.
func (s *EncryptedTokenStore) Load(ctx context.Context) (string, error) {
	sealed, err := s.next.Load(ctx)
	if err != nil || sealed == "" {
		return "", err
	}

	token, err := s.enc.DecryptString(sealed)
	if err != nil {
		log.Warn().Err(err).Msg("stored token could not be decrypted, ignoring it")
		return "", nil
	}
	return token, nil
}

func (s *EncryptedTokenStore) Save(ctx context.Context, token string) error {
	sealed, err := s.enc.EncryptString(token)
	if err != nil {
		return fmt.Errorf("failed to encrypt token: %w", err)
	}
	return s.next.Save(ctx, sealed)
}

func (s *EncryptedTokenStore) Clear(ctx context.Context) error {
	return s.next.Clear(ctx)
}
