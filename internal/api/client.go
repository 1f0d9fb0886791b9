package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/Rrens/chat-client/internal/api/response"
	"github.com/Rrens/chat-client/internal/domain"
)

const (
	defaultTimeout   = 30 * time.Second
	defaultLoginPath = "/login"
	maxErrorBody     = 64 << 10
)

// Navigator is the view layer the client sends the user to the login view
// through when a session is torn down.
type Navigator interface {
	// Location returns the current view path
	Location() string
	Redirect(path string)
}

// Client is the single HTTP client every store goes through. It attaches the
// persisted bearer token to each request and tears the session down on 401.
type Client struct {
	baseURL   *url.URL
	http      *http.Client
	tokens    domain.TokenStore
	navigator Navigator
	loginPath string

	mu           sync.RWMutex
	unauthorized []func()
}

// Option configures a Client
type Option func(*Client)

// WithHTTPClient replaces the underlying http.Client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithTimeout sets the timeout applied to every call
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.http.Timeout = d }
}

// WithNavigator sets the view layer used for the login redirect
func WithNavigator(n Navigator) Option {
	return func(c *Client) { c.navigator = n }
}

// WithLoginPath overrides the login view path
func WithLoginPath(path string) Option {
	return func(c *Client) { c.loginPath = path }
}

// NewClient creates a client bound to baseURL, e.g. http://localhost:8000/api
func NewClient(baseURL string, tokens domain.TokenStore, opts ...Option) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid base URL: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid base URL %q: scheme and host are required", baseURL)
	}
	if tokens == nil {
		return nil, errors.New("token store is required")
	}

	c := &Client{
		baseURL:   u,
		http:      &http.Client{Timeout: defaultTimeout},
		tokens:    tokens,
		loginPath: defaultLoginPath,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Tokens returns the durable token storage the client reads from
func (c *Client) Tokens() domain.TokenStore {
	return c.tokens
}

// OnUnauthorized registers fn to run after a 401 cleared the token
func (c *Client) OnUnauthorized(fn func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.unauthorized = append(c.unauthorized, fn)
}

// URL returns the absolute URL of an endpoint path
func (c *Client) URL(elem ...string) string {
	return c.baseURL.JoinPath(elem...).String()
}

// do sends the request and returns the response for 2xx statuses. Any other
// status is turned into an *APIError and the body is closed.
func (c *Client) do(ctx context.Context, method string, path []string, body io.Reader, contentType string) (*http.Response, error) {
	endpoint := strings.Join(path, "/")

	req, err := http.NewRequestWithContext(ctx, method, c.URL(path...), body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	token, err := c.tokens.Load(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("failed to load token, sending request unauthenticated")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		log.Debug().Err(err).Str("method", method).Str("path", endpoint).Msg("request failed")
		return nil, fmt.Errorf("%s %s: %w: %w", method, endpoint, ErrTransport, err)
	}

	log.Debug().
		Str("method", method).
		Str("path", endpoint).
		Int("status", resp.StatusCode).
		Dur("duration", time.Since(start)).
		Msg("api request")

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return resp, nil
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		c.handleUnauthorized(ctx)
	}

	data, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	return nil, &APIError{
		StatusCode: resp.StatusCode,
		Method:     method,
		Path:       endpoint,
		Detail:     response.Detail(data),
	}
}

func (c *Client) handleUnauthorized(ctx context.Context) {
	if err := c.tokens.Clear(context.WithoutCancel(ctx)); err != nil {
		log.Error().Err(err).Msg("failed to clear token after 401")
	}

	if c.navigator != nil && !strings.Contains(c.navigator.Location(), c.loginPath) {
		c.navigator.Redirect(c.loginPath)
	}

	c.mu.RLock()
	hooks := append([]func(){}, c.unauthorized...)
	c.mu.RUnlock()

	for _, fn := range hooks {
		fn()
	}
}

func (c *Client) doJSON(ctx context.Context, method string, path []string, in, out any) error {
	var body io.Reader
	contentType := ""
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		body = bytes.NewReader(data)
		contentType = "application/json"
	}

	resp, err := c.do(ctx, method, path, body, contentType)
	if err != nil {
		return err
	}
	return decode(resp, out)
}

func (c *Client) doForm(ctx context.Context, path []string, values url.Values, out any) error {
	resp, err := c.do(ctx, http.MethodPost, path, strings.NewReader(values.Encode()), "application/x-www-form-urlencoded")
	if err != nil {
		return err
	}
	return decode(resp, out)
}

// filePart is a file field of a multipart upload
type filePart struct {
	field    string
	filename string
	content  io.Reader
}

func (c *Client) doMultipart(ctx context.Context, path []string, fields map[string]string, file filePart, out any) error {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	for name, value := range fields {
		if err := mw.WriteField(name, value); err != nil {
			return fmt.Errorf("failed to write form field %s: %w", name, err)
		}
	}

	part, err := mw.CreateFormFile(file.field, file.filename)
	if err != nil {
		return fmt.Errorf("failed to create form file: %w", err)
	}
	if _, err := io.Copy(part, file.content); err != nil {
		return fmt.Errorf("failed to read upload: %w", err)
	}
	if err := mw.Close(); err != nil {
		return fmt.Errorf("failed to finish multipart body: %w", err)
	}

	resp, err := c.do(ctx, http.MethodPost, path, &buf, mw.FormDataContentType())
	if err != nil {
		return err
	}
	return decode(resp, out)
}

func decode(resp *http.Response, out any) error {
	defer resp.Body.Close()

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
