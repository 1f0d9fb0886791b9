package store

import (
	"context"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/Rrens/chat-client/internal/api"
	"github.com/Rrens/chat-client/internal/domain"
	"github.com/Rrens/chat-client/internal/fakeapi"
	"github.com/Rrens/chat-client/internal/repository/memory"
)

const testModel = "gemini-1.5-pro"

type env struct {
	srv    *fakeapi.Server
	client *api.Client
	tokens *memory.TokenStore
	stores *Stores
	user   domain.User
}

// newEnv starts a fake backend with one user, alice@example.com/secret1.
// When loggedIn is set the session is already restored.
func newEnv(t *testing.T, loggedIn bool) *env {
	t.Helper()

	srv := fakeapi.New()
	user := srv.AddUser("alice", "alice@example.com", "secret1")
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)

	tokens := memory.NewTokenStore("")
	client, err := api.NewClient(ts.URL+"/api", tokens, api.WithTimeout(5*time.Second))
	require.NoError(t, err)

	e := &env{
		srv:    srv,
		client: client,
		tokens: tokens,
		user:   user,
		stores: New(client, Options{DefaultModel: testModel, SearchLimit: 5, ModelsCacheTTL: time.Minute}),
	}

	if loggedIn {
		require.NoError(t, tokens.Save(context.Background(), srv.IssueToken(user.ID)))
		require.True(t, e.stores.Auth.CheckAuth(context.Background()))
	}
	return e
}

func (e *env) countRequests(req string) int {
	n := 0
	for _, r := range e.srv.Requests() {
		if r == req {
			n++
		}
	}
	return n
}

// MockChatAPI mocks ChatAPI
type MockChatAPI struct {
	mock.Mock
}

func (m *MockChatAPI) ListChats(ctx context.Context) ([]domain.Chat, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Chat), args.Error(1)
}

func (m *MockChatAPI) CreateChat(ctx context.Context, input domain.ChatCreate) (*domain.ChatWithMessages, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ChatWithMessages), args.Error(1)
}

func (m *MockChatAPI) GetChat(ctx context.Context, id domain.ID) (*domain.ChatWithMessages, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ChatWithMessages), args.Error(1)
}

func (m *MockChatAPI) SendMessage(ctx context.Context, chatID domain.ID, input domain.MessageCreate) (*domain.ChatResponse, error) {
	args := m.Called(ctx, chatID, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ChatResponse), args.Error(1)
}

func (m *MockChatAPI) DeleteChat(ctx context.Context, id domain.ID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockOpener mocks Opener
type MockOpener struct {
	mock.Mock
}

func (m *MockOpener) Open(url string) error {
	args := m.Called(url)
	return args.Error(0)
}

type nopReader struct{}

func (nopReader) Read([]byte) (int, error) { return 0, io.EOF }
