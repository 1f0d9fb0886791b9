package store

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/Rrens/chat-client/internal/api"
	"github.com/Rrens/chat-client/internal/domain"
	"github.com/Rrens/chat-client/internal/security"
)

// AuthAPI is the part of the HTTP client the auth store uses
type AuthAPI interface {
	Login(ctx context.Context, email, password string) (*domain.Token, error)
	Register(ctx context.Context, input domain.UserCreate) (*domain.User, error)
	Me(ctx context.Context) (*domain.User, error)
	Tokens() domain.TokenStore
	OnUnauthorized(fn func())
}

// AuthState is the session as views see it
type AuthState struct {
	User          *domain.User
	Authenticated bool
	Loading       bool
}

// AuthStore owns the session. It is the only writer of the persisted token
// apart from the client's 401 handling.
type AuthStore struct {
	api    AuthAPI
	tokens domain.TokenStore
	state  *Observable[AuthState]
	now    func() time.Time
}

func NewAuthStore(client AuthAPI, now func() time.Time) *AuthStore {
	if now == nil {
		now = time.Now
	}
	s := &AuthStore{
		api:    client,
		tokens: client.Tokens(),
		state:  NewObservable(AuthState{Loading: true}),
		now:    now,
	}

	// the client already cleared the token
	client.OnUnauthorized(func() {
		log.Info().Msg("session expired, logging out")
		s.state.Set(AuthState{})
	})
	return s
}

func (s *AuthStore) State() AuthState {
	return s.state.Get()
}

func (s *AuthStore) Subscribe(fn func(AuthState)) func() {
	return s.state.Subscribe(fn)
}

// CheckAuth restores the session from the persisted token. It never fails:
// any problem leaves the store unauthenticated with the token removed.
func (s *AuthStore) CheckAuth(ctx context.Context) bool {
	s.state.Update(func(st AuthState) AuthState {
		st.Loading = true
		return st
	})

	token, err := s.tokens.Load(ctx)
	if err != nil {
		log.Error().Err(err).Msg("failed to read stored token")
		s.reset(ctx)
		return false
	}
	if token == "" {
		s.state.Set(AuthState{})
		return false
	}

	if info, err := security.InspectToken(token); err == nil && info.Expired(s.now()) {
		log.Info().Time("expired_at", info.ExpiresAt).Msg("stored token expired")
		s.reset(ctx)
		return false
	}

	user, err := s.api.Me(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("failed to restore session")
		s.reset(ctx)
		return false
	}

	s.state.Set(AuthState{User: user, Authenticated: true})
	return true
}

// Login exchanges the credentials for a token, persists it and loads the
// profile. Failures are reported in the result, never as a Go error.
func (s *AuthStore) Login(ctx context.Context, email, password string) domain.AuthResult {
	if err := domain.Validate(domain.UserLogin{Email: email, Password: password}); err != nil {
		return domain.AuthResult{Error: api.UserMessage(err, "Login failed")}
	}

	token, err := s.api.Login(ctx, email, password)
	if err != nil {
		log.Warn().Err(err).Str("email", email).Msg("login failed")
		return domain.AuthResult{Error: api.UserMessage(err, "Login failed")}
	}
	if token.AccessToken == "" {
		return domain.AuthResult{Error: "Login failed"}
	}

	if err := s.tokens.Save(ctx, token.AccessToken); err != nil {
		log.Error().Err(err).Msg("failed to persist token")
		return domain.AuthResult{Error: "Login failed"}
	}

	user, err := s.api.Me(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("failed to load profile after login")
		s.reset(ctx)
		return domain.AuthResult{Error: api.UserMessage(err, "Login failed")}
	}

	s.state.Set(AuthState{User: user, Authenticated: true})
	log.Info().Str("user_id", user.ID.String()).Msg("logged in")
	return domain.AuthResult{Success: true, User: user}
}

// Register creates an account. It does not log the user in.
func (s *AuthStore) Register(ctx context.Context, username, email, password string) domain.AuthResult {
	input := domain.UserCreate{Username: username, Email: email, Password: password}
	if err := domain.Validate(input); err != nil {
		return domain.AuthResult{Error: api.UserMessage(err, "Registration failed")}
	}

	user, err := s.api.Register(ctx, input)
	if err != nil {
		log.Warn().Err(err).Str("email", email).Msg("registration failed")
		return domain.AuthResult{Error: api.UserMessage(err, "Registration failed")}
	}
	return domain.AuthResult{Success: true, User: user}
}

// Logout drops the token and the session unconditionally
func (s *AuthStore) Logout(ctx context.Context) {
	s.reset(ctx)
	log.Info().Msg("logged out")
}

func (s *AuthStore) reset(ctx context.Context) {
	if err := s.tokens.Clear(context.WithoutCancel(ctx)); err != nil {
		log.Error().Err(err).Msg("failed to clear stored token")
	}
	s.state.Set(AuthState{})
}
