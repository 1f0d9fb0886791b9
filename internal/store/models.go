package store

import (
	"context"
	"fmt"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/rs/zerolog/log"

	"github.com/Rrens/chat-client/internal/domain"
)

const modelsCacheKey = "models"

// ModelAPI is the part of the HTTP client the model store uses
type ModelAPI interface {
	ListModels(ctx context.Context) ([]domain.Model, error)
}

// ModelStore holds the model catalogue and the model new conversations use
type ModelStore struct {
	api          ModelAPI
	defaultModel string
	cache        *cache.Cache
	models       *Observable[[]domain.Model]
	selected     *Observable[string]
}

func NewModelStore(client ModelAPI, defaultModel string, ttl time.Duration) *ModelStore {
	if ttl <= 0 {
		ttl = cache.NoExpiration
	}
	return &ModelStore{
		api:          client,
		defaultModel: defaultModel,
		cache:        cache.New(ttl, 10*time.Minute),
		models:       NewObservable([]domain.Model{}),
		selected:     NewObservable(defaultModel),
	}
}

func (s *ModelStore) Models() []domain.Model {
	return s.models.Get()
}

func (s *ModelStore) SelectedModel() string {
	return s.selected.Get()
}

func (s *ModelStore) SubscribeModels(fn func([]domain.Model)) func() {
	return s.models.Subscribe(fn)
}

func (s *ModelStore) SubscribeSelected(fn func(string)) func() {
	return s.selected.Subscribe(fn)
}

// FetchModels returns the catalogue, from cache while it is fresh. Failures
// are logged and leave the held list in place.
func (s *ModelStore) FetchModels(ctx context.Context) []domain.Model {
	if cached, ok := s.cache.Get(modelsCacheKey); ok {
		models := cached.([]domain.Model)
		s.models.Set(models)
		return models
	}

	models, err := s.api.ListModels(ctx)
	if err != nil {
		log.Error().Err(err).Msg("failed to fetch models")
		return s.models.Get()
	}
	if models == nil {
		models = []domain.Model{}
	}

	s.cache.Set(modelsCacheKey, models, cache.DefaultExpiration)
	s.models.Set(models)
	return models
}

// Invalidate forces the next FetchModels to hit the backend
func (s *ModelStore) Invalidate() {
	s.cache.Delete(modelsCacheKey)
}

// Reset drops the catalogue and the selection of the previous session
func (s *ModelStore) Reset() {
	s.Invalidate()
	s.models.Set([]domain.Model{})
	s.selected.Set(s.defaultModel)
}

// SelectModel sets the model by its model_id. Once the catalogue is loaded
// only listed models are accepted.
func (s *ModelStore) SelectModel(modelID string) error {
	models := s.models.Get()
	if len(models) > 0 {
		found := false
		for _, m := range models {
			if m.ModelID == modelID {
				found = true
				break
			}
		}
		if !found {
			return fmt.Errorf("%w: %s", ErrUnknownModel, modelID)
		}
	}

	s.selected.Set(modelID)
	return nil
}
