package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Rrens/chat-client/internal/config"
	"github.com/Rrens/chat-client/internal/repository/memory"
	"github.com/Rrens/chat-client/internal/security"
)

func TestNewTokenStore_Drivers(t *testing.T) {
	ctx := context.Background()

	for _, driver := range []string{config.StorageFile, config.StorageSQLite, config.StorageMemory} {
		t.Run(driver, func(t *testing.T) {
			store, closeFn, err := NewTokenStore(ctx, config.StorageConfig{Driver: driver, Path: t.TempDir()})
			require.NoError(t, err)
			defer closeFn()

			require.NoError(t, store.Save(ctx, "tok123"))
			token, err := store.Load(ctx)
			require.NoError(t, err)
			assert.Equal(t, "tok123", token)

			require.NoError(t, store.Clear(ctx))
			token, err = store.Load(ctx)
			require.NoError(t, err)
			assert.Empty(t, token)
		})
	}
}

func TestNewTokenStore_UnknownDriver(t *testing.T) {
	_, _, err := NewTokenStore(context.Background(), config.StorageConfig{Driver: "etcd"})
	assert.Error(t, err)
}

func TestEncryptedTokenStore(t *testing.T) {
	ctx := context.Background()
	inner := memory.NewTokenStore("")
	enc, err := security.NewEncryptorFromPassphrase("secret")
	require.NoError(t, err)

	store := NewEncryptedTokenStore(inner, enc)
	require.NoError(t, store.Save(ctx, "tok123"))

	raw, _ := inner.Load(ctx)
	assert.NotEqual(t, "tok123", raw, "token is stored sealed")

	token, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, "tok123", token)

	// a rotated key reads as logged out
	otherEnc, _ := security.NewEncryptorFromPassphrase("rotated")
	token, err = NewEncryptedTokenStore(inner, otherEnc).Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, token)

	require.NoError(t, store.Clear(ctx))
	raw, _ = inner.Load(ctx)
	assert.Empty(t, raw)
}
