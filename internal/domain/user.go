package domain

import "context"

// User represents the authenticated account as returned by auth/me
type User struct {
	ID        ID        `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	IsActive  bool      `json:"is_active"`
	IsAdmin   bool      `json:"is_admin"`
	CreatedAt Timestamp `json:"created_at"`
	UpdatedAt Timestamp `json:"updated_at"`
}

// UserCreate represents registration data
type UserCreate struct {
	Username string `json:"username" validate:"required,max=255"`
	Email    string `json:"email" validate:"required,email,max=255"`
	Password string `json:"password" validate:"required,min=6,max=72"`
}

// UserLogin represents login credentials. The backend expects the email in
// the username field of its OAuth2 password form.
type UserLogin struct {
	Email    string `validate:"required,email"`
	Password string `validate:"required"`
}

// Token is the response of the token exchange
type Token struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type,omitempty"`
}

// AuthResult is returned by login and register; it never carries a Go error
// so that callers can show Error directly.
type AuthResult struct {
	Success bool
	Error   string
	User    *User
}

// TokenKey is the fixed key the bearer token is persisted under
const TokenKey = "token"

// TokenStore persists the bearer token in durable client storage
type TokenStore interface {
	// Load returns the stored token or "" when none is stored
	Load(ctx context.Context) (string, error)
	Save(ctx context.Context, token string) error
	Clear(ctx context.Context) error
}
