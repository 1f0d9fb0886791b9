package fakeapi

import (
	"net/http"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/Rrens/chat-client/internal/api/response"
	"github.com/Rrens/chat-client/internal/domain"
)

// login implements the OAuth2 password form: the email travels as username
func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		response.BadRequest(w, "invalid form body")
		return
	}
	email := r.PostForm.Get("username")
	password := r.PostForm.Get("password")

	s.mu.Lock()
	var user *userRecord
	for _, u := range s.users {
		if strings.EqualFold(u.Email, email) {
			user = u
			break
		}
	}
	s.mu.Unlock()

	if user == nil || bcrypt.CompareHashAndPassword(user.passwordHash, []byte(password)) != nil {
		response.Unauthorized(w, "Incorrect email or password")
		return
	}
	if !user.IsActive {
		response.BadRequest(w, "Inactive user")
		return
	}

	response.OK(w, domain.Token{
		AccessToken: s.IssueToken(user.ID),
		TokenType:   "bearer",
	})
}

func (s *Server) register(w http.ResponseWriter, r *http.Request) {
	var input domain.UserCreate
	if !decodeAndValidate(w, r, &input) {
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.MinCost)
	if err != nil {
		response.InternalError(w, "failed to hash password")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.users {
		if strings.EqualFold(u.Email, input.Email) {
			response.BadRequest(w, "Email already registered")
			return
		}
		if u.Username == input.Username {
			response.BadRequest(w, "Username already taken")
			return
		}
	}

	response.OK(w, s.addUserLocked(input.Username, input.Email, hash))
}

func (s *Server) me(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	u := s.users[currentUser(r.Context())]
	s.mu.Unlock()

	response.OK(w, u.User)
}
