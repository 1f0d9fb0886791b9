package fakeapi

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"

	"github.com/Rrens/chat-client/internal/api/response"
	"github.com/Rrens/chat-client/internal/domain"
)

type contextKey string

const userIDKey contextKey = "userID"

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()

		next.ServeHTTP(ww, r)

		log.Debug().
			Str("request_id", middleware.GetReqID(r.Context())).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Dur("duration", time.Since(start)).
			Msg("fakeapi request")
	})
}

func (s *Server) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		s.requests = append(s.requests, r.Method+" "+r.URL.Path)
		hooks := append([]func(*http.Request){}, s.hooks...)
		s.mu.Unlock()

		for _, fn := range hooks {
			fn(r)
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) injectFailures(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		var hit *failure
		for i := range s.failures {
			f := s.failures[i]
			if f.method == r.Method && strings.HasPrefix(r.URL.Path, f.prefix) {
				hit = &f
				break
			}
		}
		s.mu.Unlock()

		if hit != nil {
			if hit.status == http.StatusUnauthorized {
				response.Unauthorized(w, hit.detail)
				return
			}
			response.Error(w, hit.status, hit.detail)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// authenticate accepts opaque tokens registered with AddToken and signed
// access tokens
func (s *Server) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			response.Unauthorized(w, "Not authenticated")
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
			response.Unauthorized(w, "Not authenticated")
			return
		}

		userID, ok := s.resolveToken(parts[1])
		if !ok {
			response.Unauthorized(w, "Could not validate credentials")
			return
		}

		ctx := context.WithValue(r.Context(), userIDKey, userID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (s *Server) resolveToken(token string) (domain.ID, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if id, ok := s.tokens[token]; ok {
		_, exists := s.users[id]
		return id, exists
	}

	claims, err := s.jwt.ValidateAccessToken(token)
	if err != nil {
		return "", false
	}
	id := domain.ID(claims.Subject)
	_, exists := s.users[id]
	return id, exists
}

func currentUser(ctx context.Context) domain.ID {
	id, _ := ctx.Value(userIDKey).(domain.ID)
	return id
}
