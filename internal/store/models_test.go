package store

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFetchModels_Cached(t *testing.T) {
	e := newEnv(t, true)
	ctx := context.Background()

	models := e.stores.Models.FetchModels(ctx)
	require.Len(t, models, 2)

	again := e.stores.Models.FetchModels(ctx)
	assert.Equal(t, models, again)
	assert.Equal(t, 1, e.countRequests("GET /api/models"), "second fetch served from cache")

	e.stores.Models.Invalidate()
	e.stores.Models.FetchModels(ctx)
	assert.Equal(t, 2, e.countRequests("GET /api/models"))
}

func TestFetchModels_FailureKeepsList(t *testing.T) {
	e := newEnv(t, true)
	ctx := context.Background()
	s := NewModelStore(e.client, testModel, time.Nanosecond)

	require.Len(t, s.FetchModels(ctx), 2)

	time.Sleep(time.Millisecond)
	e.srv.FailOn(http.MethodGet, "models", http.StatusInternalServerError, "boom")
	assert.Len(t, s.FetchModels(ctx), 2)
	assert.Len(t, s.Models(), 2)
}

func TestSelectModel(t *testing.T) {
	e := newEnv(t, true)
	s := e.stores.Models

	assert.Equal(t, testModel, s.SelectedModel())

	// nothing loaded yet, anything goes
	require.NoError(t, s.SelectModel("custom-model"))
	assert.Equal(t, "custom-model", s.SelectedModel())

	s.FetchModels(context.Background())
	require.NoError(t, s.SelectModel("gemini-1.5-flash"))
	assert.Equal(t, "gemini-1.5-flash", s.SelectedModel())

	err := s.SelectModel("gpt-unknown")
	assert.ErrorIs(t, err, ErrUnknownModel)
	assert.Equal(t, "gemini-1.5-flash", s.SelectedModel())
}

func TestModelStore_Reset(t *testing.T) {
	e := newEnv(t, true)
	ctx := context.Background()
	s := e.stores.Models

	require.Len(t, s.FetchModels(ctx), 2)
	require.NoError(t, s.SelectModel("gemini-1.5-flash"))

	s.Reset()

	assert.Empty(t, s.Models())
	assert.Equal(t, testModel, s.SelectedModel())

	s.FetchModels(ctx)
	assert.Equal(t, 2, e.countRequests("GET /api/models"), "reset drops the cached catalogue")
}
