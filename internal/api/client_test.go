package api

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Rrens/chat-client/internal/domain"
	"github.com/Rrens/chat-client/internal/fakeapi"
	"github.com/Rrens/chat-client/internal/repository/memory"
)

type fakeNavigator struct {
	mu        sync.Mutex
	location  string
	redirects []string
}

func (n *fakeNavigator) Location() string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.location
}

func (n *fakeNavigator) Redirect(path string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.location = path
	n.redirects = append(n.redirects, path)
}

func (n *fakeNavigator) Redirects() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.redirects...)
}

func newTestClient(t *testing.T, url, token string, opts ...Option) (*Client, *memory.TokenStore) {
	t.Helper()
	tokens := memory.NewTokenStore(token)
	c, err := NewClient(url, tokens, opts...)
	require.NoError(t, err)
	return c, tokens
}

func TestNewClient_InvalidBaseURL(t *testing.T) {
	tokens := memory.NewTokenStore("")

	_, err := NewClient("localhost:8000", tokens)
	assert.Error(t, err)

	_, err = NewClient("http://localhost:8000/api", nil)
	assert.Error(t, err)
}

// Login then fetch the profile: the stored token is attached afterwards.
func TestClient_AttachesBearerToken(t *testing.T) {
	var (
		mu   sync.Mutex
		auth []string
	)
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		auth = append(auth, r.Header.Get("Authorization"))
		mu.Unlock()

		switch r.URL.Path {
		case "/api/auth/token":
			assert.NoError(t, r.ParseForm())
			assert.Equal(t, "a@b.com", r.PostForm.Get("username"))
			assert.Equal(t, "secret1", r.PostForm.Get("password"))
			w.Write([]byte(`{"access_token":"tok123"}`))
		case "/api/auth/me":
			w.Write([]byte(`{"id":1,"username":"a"}`))
		default:
			http.NotFound(w, r)
		}
	}))
	defer ts.Close()

	ctx := context.Background()
	c, tokens := newTestClient(t, ts.URL+"/api", "")

	token, err := c.Login(ctx, "a@b.com", "secret1")
	require.NoError(t, err)
	assert.Equal(t, "tok123", token.AccessToken)
	require.NoError(t, tokens.Save(ctx, token.AccessToken))

	user, err := c.Me(ctx)
	require.NoError(t, err)
	assert.Equal(t, domain.ID("1"), user.ID)
	assert.Equal(t, "a", user.Username)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{"", "Bearer tok123"}, auth)
}

func TestClient_UnauthorizedClearsTokenAndRedirects(t *testing.T) {
	srv := fakeapi.New()
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	nav := &fakeNavigator{location: "/chat/42"}
	c, tokens := newTestClient(t, ts.URL+"/api", "expired", WithNavigator(nav))

	hookCalls := 0
	c.OnUnauthorized(func() { hookCalls++ })

	_, err := c.ListChats(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnauthorized))
	assert.Equal(t, KindUnauthorized, Classify(err))

	token, _ := tokens.Load(context.Background())
	assert.Empty(t, token, "token is cleared on 401")
	assert.Equal(t, []string{"/login"}, nav.Redirects())
	assert.Equal(t, 1, hookCalls)
}

func TestClient_UnauthorizedOnLoginViewDoesNotRedirect(t *testing.T) {
	srv := fakeapi.New()
	srv.AddUser("alice", "alice@example.com", "secret1")
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	nav := &fakeNavigator{location: "/login"}
	c, _ := newTestClient(t, ts.URL+"/api", "", WithNavigator(nav))

	_, err := c.Login(context.Background(), "alice@example.com", "wrong")
	require.Error(t, err)
	assert.Equal(t, "Incorrect email or password", UserMessage(err, "Login failed"))
	assert.Empty(t, nav.Redirects())
}

func TestClient_TimeoutIsTransportError(t *testing.T) {
	release := make(chan struct{})
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
	}))
	defer ts.Close()
	defer close(release)

	c, _ := newTestClient(t, ts.URL+"/api", "tok123", WithTimeout(50*time.Millisecond))

	_, err := c.ListChats(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrTransport))
	assert.Equal(t, KindTransport, Classify(err))
	assert.Equal(t, "fallback", UserMessage(err, "fallback"))
}

func TestClient_ConnectionRefusedIsTransportError(t *testing.T) {
	ts := httptest.NewServer(http.NotFoundHandler())
	url := ts.URL
	ts.Close()

	c, _ := newTestClient(t, url+"/api", "")
	_, err := c.ListModels(context.Background())
	assert.Equal(t, KindTransport, Classify(err))
}

func TestClient_ErrorDetail(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"detail":"Email already registered"}`))
	}))
	defer ts.Close()

	c, _ := newTestClient(t, ts.URL+"/api", "")
	_, err := c.Register(context.Background(), domain.UserCreate{Username: "a", Email: "a@b.com", Password: "secret1"})

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
	assert.Equal(t, "POST", apiErr.Method)
	assert.Equal(t, "auth/register", apiErr.Path)
	assert.Equal(t, KindValidation, Classify(err))
	assert.Equal(t, "Email already registered", UserMessage(err, "Registration failed"))
}

func TestClient_ServerErrorUsesFallback(t *testing.T) {
	srv := fakeapi.New()
	user := srv.AddUser("alice", "alice@example.com", "secret1")
	srv.AddToken("tok123", user.ID)
	srv.FailOn(http.MethodGet, "models", http.StatusInternalServerError, "database exploded")
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	c, _ := newTestClient(t, ts.URL+"/api", "tok123")
	_, err := c.ListModels(context.Background())
	assert.Equal(t, KindUnexpected, Classify(err))
	assert.Equal(t, "Failed to load models", UserMessage(err, "Failed to load models"))
}

func TestClient_ChatRoundTrip(t *testing.T) {
	srv := fakeapi.New()
	user := srv.AddUser("alice", "alice@example.com", "secret1")
	srv.AddToken("tok123", user.ID)
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	ctx := context.Background()
	c, _ := newTestClient(t, ts.URL+"/api", "tok123")

	created, err := c.CreateChat(ctx, domain.ChatCreate{Title: domain.DefaultChatTitle, Model: "gemini-1.5-pro"})
	require.NoError(t, err)
	assert.Empty(t, created.Messages)

	reply, err := c.SendMessage(ctx, created.ID, domain.MessageCreate{Role: domain.RoleUser, Content: "hi"})
	require.NoError(t, err)
	assert.Equal(t, fakeapi.ReplyPrefix+"hi", reply.Content)

	detail, err := c.GetChat(ctx, created.ID)
	require.NoError(t, err)
	require.Len(t, detail.Messages, 2)
	assert.Equal(t, domain.RoleUser, detail.Messages[0].Role)
	assert.Equal(t, "hi", detail.Title)

	chats, err := c.ListChats(ctx)
	require.NoError(t, err)
	require.Len(t, chats, 1)

	require.NoError(t, c.DeleteChat(ctx, created.ID))
	_, err = c.GetChat(ctx, created.ID)
	assert.Equal(t, KindValidation, Classify(err))
	assert.Equal(t, "Chat not found", UserMessage(err, ""))
}

func TestClient_Documents(t *testing.T) {
	srv := fakeapi.New()
	user := srv.AddUser("alice", "alice@example.com", "secret1")
	srv.AddToken("tok123", user.ID)
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	ctx := context.Background()
	c, _ := newTestClient(t, ts.URL+"/api", "tok123")

	content := "Go has goroutines.\n\nRust has ownership."
	doc, err := c.UploadDocument(ctx, "Languages", "langs.txt", strings.NewReader(content))
	require.NoError(t, err)
	assert.Equal(t, "Languages", doc.Title)
	assert.Equal(t, "langs.txt", doc.Metadata.FileName)
	assert.Equal(t, "txt", doc.Metadata.FileType)
	assert.Equal(t, int64(len(content)), doc.Metadata.FileSize)

	results, err := c.SearchDocuments(ctx, domain.SearchQuery{Query: "goroutines", Limit: 5})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "Go has goroutines.", results[0].Chunk)
	assert.Equal(t, doc.ID, results[0].DocumentID)

	var buf bytes.Buffer
	n, err := c.DownloadDocument(ctx, doc.ID, &buf)
	require.NoError(t, err)
	assert.Equal(t, int64(len(content)), n)
	assert.Equal(t, content, buf.String())
	assert.Equal(t, ts.URL+"/api/knowledge/documents/"+doc.ID.String()+"/download", c.DocumentDownloadURL(doc.ID))

	require.NoError(t, c.DeleteDocument(ctx, doc.ID))
	docs, err := c.ListDocuments(ctx)
	require.NoError(t, err)
	assert.Empty(t, docs)
}

func TestClient_Projects(t *testing.T) {
	srv := fakeapi.New()
	user := srv.AddUser("alice", "alice@example.com", "secret1")
	srv.AddToken("tok123", user.ID)
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	ctx := context.Background()
	c, _ := newTestClient(t, ts.URL+"/api", "tok123")

	p, err := c.CreateProject(ctx, domain.ProjectCreate{Title: "Thesis"})
	require.NoError(t, err)

	instructions := "Answer in English"
	updated, err := c.UpdateProject(ctx, p.ID, domain.ProjectUpdate{Instructions: &instructions})
	require.NoError(t, err)
	assert.Equal(t, "Thesis", updated.Title)
	require.NotNil(t, updated.Instructions)
	assert.Equal(t, instructions, *updated.Instructions)

	f, err := c.UploadProjectFile(ctx, p.ID, "notes.md", strings.NewReader("# notes"))
	require.NoError(t, err)
	assert.Equal(t, p.ID, f.ProjectID)

	detail, err := c.GetProject(ctx, p.ID)
	require.NoError(t, err)
	require.Len(t, detail.Files, 1)

	require.NoError(t, c.DeleteProjectFile(ctx, p.ID, f.ID))
	require.NoError(t, c.DeleteProject(ctx, p.ID))

	projects, err := c.ListProjects(ctx)
	require.NoError(t, err)
	assert.Empty(t, projects)
}
