// Package store holds the client-side state of the application: the session,
// the conversations, the model catalogue, the knowledge base and projects.
// Every store goes through the api.Client for transport.
package store

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/Rrens/chat-client/internal/api"
)

type Options struct {
	DefaultModel   string
	SearchLimit    int
	ModelsCacheTTL time.Duration
	Opener         Opener
	// Now stamps provisional messages; defaults to time.Now
	Now func() time.Time
}

// Stores is the container views receive. It replaces module level singletons.
type Stores struct {
	Auth      *AuthStore
	Chat      *ChatStore
	Models    *ModelStore
	Knowledge *KnowledgeStore
	Projects  *ProjectStore
}

// New wires every store to client. When the session ends, by logout or by
// a 401 anywhere, the per-user stores are emptied.
func New(client *api.Client, opts Options) *Stores {
	s := &Stores{
		Auth:      NewAuthStore(client, opts.Now),
		Chat:      NewChatStore(client, opts.DefaultModel, opts.Now),
		Models:    NewModelStore(client, opts.DefaultModel, opts.ModelsCacheTTL),
		Knowledge: NewKnowledgeStore(client, opts.Opener, opts.SearchLimit),
		Projects:  NewProjectStore(client),
	}

	var authenticated atomic.Bool
	s.Auth.state.Listen(func(st AuthState) {
		was := authenticated.Swap(st.Authenticated)
		if was && !st.Authenticated {
			s.Chat.Reset()
			s.Knowledge.Reset()
			s.Projects.Reset()
			s.Models.Reset()
		}
	})
	return s
}

// Bootstrap restores the session and loads every list concurrently. List
// loads degrade silently, so the only error is ErrNotAuthenticated.
func (s *Stores) Bootstrap(ctx context.Context) error {
	if !s.Auth.CheckAuth(ctx) {
		return ErrNotAuthenticated
	}

	start := time.Now()
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.Chat.FetchChats(ctx)
		return nil
	})
	g.Go(func() error {
		s.Models.FetchModels(ctx)
		return nil
	})
	g.Go(func() error {
		s.Knowledge.FetchDocuments(ctx)
		return nil
	})
	g.Go(func() error {
		s.Projects.FetchProjects(ctx)
		return nil
	})
	if err := g.Wait(); err != nil {
		return err
	}

	log.Debug().Dur("duration", time.Since(start)).Msg("stores loaded")
	return nil
}
