// Package fakeapi is an in-memory implementation of the chat backend's REST
// surface. It backs the client and store tests and the cmd/fakeapi dev
// server.
package fakeapi

import (
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/Rrens/chat-client/internal/domain"
	"github.com/Rrens/chat-client/internal/security"
)

const jwtSecret = "fakeapi-secret-key-with-32-chars"

type userRecord struct {
	domain.User
	passwordHash []byte
}

type chatRecord struct {
	owner domain.ID
	domain.ChatWithMessages
}

type documentRecord struct {
	owner domain.ID
	domain.Document
	content []byte
}

type projectRecord struct {
	owner domain.ID
	domain.ProjectWithFiles
}

type failure struct {
	method string
	prefix string
	status int
	detail string
}

// Server holds the backend state. All exported methods are safe for
// concurrent use by tests while requests are in flight.
type Server struct {
	jwt *security.JWTManager

	mu        sync.Mutex
	users     map[domain.ID]*userRecord
	tokens    map[string]domain.ID
	chats     map[domain.ID]*chatRecord
	documents map[domain.ID]*documentRecord
	projects  map[domain.ID]*projectRecord
	models    []domain.Model
	failures  []failure
	hooks     []func(*http.Request)
	requests  []string
}

// New creates an empty backend with the default model catalogue
func New() *Server {
	now := domain.Now()
	return &Server{
		jwt:       security.NewJWTManager(jwtSecret, time.Hour),
		users:     make(map[domain.ID]*userRecord),
		tokens:    make(map[string]domain.ID),
		chats:     make(map[domain.ID]*chatRecord),
		documents: make(map[domain.ID]*documentRecord),
		projects:  make(map[domain.ID]*projectRecord),
		models: []domain.Model{
			{ID: newID(), Name: "Gemini 1.5 Pro", Provider: "google", ModelID: "gemini-1.5-pro", CreatedAt: now},
			{ID: newID(), Name: "Gemini 1.5 Flash", Provider: "google", ModelID: "gemini-1.5-flash", CreatedAt: now},
		},
	}
}

// Handler returns the router; mount it with httptest.NewServer and point the
// client at <url>/api
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)

	r.Route("/api", func(r chi.Router) {
		r.Use(s.record)
		r.Use(s.injectFailures)

		r.Route("/auth", func(r chi.Router) {
			r.Post("/token", s.login)
			r.Post("/register", s.register)
			r.With(s.authenticate).Get("/me", s.me)
		})

		r.Group(func(r chi.Router) {
			r.Use(s.authenticate)

			r.Get("/models", s.listModels)

			r.Route("/chat", func(r chi.Router) {
				r.Get("/", s.listChats)
				r.Post("/", s.createChat)
				r.Get("/{chatID}", s.getChat)
				r.Delete("/{chatID}", s.deleteChat)
				r.Post("/{chatID}/messages", s.sendMessage)
			})

			r.Route("/knowledge", func(r chi.Router) {
				r.Get("/documents", s.listDocuments)
				r.Post("/documents", s.uploadDocument)
				r.Delete("/documents/{documentID}", s.deleteDocument)
				r.Get("/documents/{documentID}/download", s.downloadDocument)
				r.Post("/search", s.search)
			})

			r.Route("/project", func(r chi.Router) {
				r.Get("/", s.listProjects)
				r.Post("/", s.createProject)
				r.Get("/{projectID}", s.getProject)
				r.Put("/{projectID}", s.updateProject)
				r.Delete("/{projectID}", s.deleteProject)
				r.Post("/{projectID}/file", s.uploadProjectFile)
				r.Delete("/{projectID}/file/{fileID}", s.deleteProjectFile)
			})
		})
	})

	return r
}

// AddUser registers an account directly, bypassing validation
func (s *Server) AddUser(username, email, password string) domain.User {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		panic(err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addUserLocked(username, email, hash)
}

func (s *Server) addUserLocked(username, email string, hash []byte) domain.User {
	now := domain.Now()
	u := &userRecord{
		User: domain.User{
			ID:        newID(),
			Username:  username,
			Email:     email,
			IsActive:  true,
			CreatedAt: now,
			UpdatedAt: now,
		},
		passwordHash: hash,
	}
	s.users[u.ID] = u
	return u.User
}

// AddToken makes an opaque bearer token valid for the user
func (s *Server) AddToken(token string, userID domain.ID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokens[token] = userID
}

// IssueToken returns a signed access token for the user
func (s *Server) IssueToken(userID domain.ID) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[userID]
	if !ok {
		panic("fakeapi: unknown user " + userID.String())
	}

	token, err := s.jwt.GenerateAccessToken(u.ID.String(), u.Email)
	if err != nil {
		panic(err)
	}
	return token
}

// RevokeAll invalidates every session; the next authenticated call gets 401
func (s *Server) RevokeAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokens = make(map[string]domain.ID)
	s.jwt = security.NewJWTManager(uuid.NewString(), time.Hour)
}

// FailOn makes every request matching method and path prefix (relative to
// /api, e.g. "chat/") answer with status and detail until ClearFailures
func (s *Server) FailOn(method, pathPrefix string, status int, detail string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures = append(s.failures, failure{
		method: method,
		prefix: "/api/" + strings.TrimPrefix(pathPrefix, "/"),
		status: status,
		detail: detail,
	})
}

func (s *Server) ClearFailures() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures = nil
}

// OnRequest registers fn to run before each /api request is handled. fn may
// block to hold a response back.
func (s *Server) OnRequest(fn func(*http.Request)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.hooks = append(s.hooks, fn)
}

// Requests returns "METHOD /api/path" for every request seen so far
func (s *Server) Requests() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.requests...)
}

// ChatCount returns how many conversations the backend stores
func (s *Server) ChatCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.chats)
}

func newID() domain.ID {
	return domain.ID(uuid.NewString())
}
