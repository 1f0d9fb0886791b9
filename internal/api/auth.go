package api

import (
	"context"
	"net/http"
	"net/url"

	"github.com/Rrens/chat-client/internal/domain"
)

// Login exchanges credentials for a bearer token. The backend reads the
// email from the username field of its password form.
func (c *Client) Login(ctx context.Context, email, password string) (*domain.Token, error) {
	form := url.Values{}
	form.Set("username", email)
	form.Set("password", password)

	var token domain.Token
	if err := c.doForm(ctx, []string{"auth", "token"}, form, &token); err != nil {
		return nil, err
	}
	return &token, nil
}

// Register creates an account without logging in
func (c *Client) Register(ctx context.Context, input domain.UserCreate) (*domain.User, error) {
	var user domain.User
	if err := c.doJSON(ctx, http.MethodPost, []string{"auth", "register"}, input, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// Me returns the profile of the token's owner
func (c *Client) Me(ctx context.Context) (*domain.User, error) {
	var user domain.User
	if err := c.doJSON(ctx, http.MethodGet, []string{"auth", "me"}, nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}
