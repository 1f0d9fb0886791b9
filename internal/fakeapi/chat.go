package fakeapi

import (
	"net/http"
	"sort"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/Rrens/chat-client/internal/api/response"
	"github.com/Rrens/chat-client/internal/domain"
)

const titleLength = 50

// ReplyPrefix starts every assistant reply; the fake model echoes the prompt
const ReplyPrefix = "You said: "

func (s *Server) listChats(w http.ResponseWriter, r *http.Request) {
	owner := currentUser(r.Context())

	s.mu.Lock()
	chats := make([]domain.Chat, 0, len(s.chats))
	for _, c := range s.chats {
		if c.owner == owner {
			chats = append(chats, c.Chat)
		}
	}
	s.mu.Unlock()

	sort.SliceStable(chats, func(i, j int) bool {
		return chats[i].UpdatedAt.After(chats[j].UpdatedAt.Time)
	})
	response.OK(w, chats)
}

func (s *Server) createChat(w http.ResponseWriter, r *http.Request) {
	var input domain.ChatCreate
	if !decodeAndValidate(w, r, &input) {
		return
	}

	now := domain.Now()
	c := &chatRecord{
		owner: currentUser(r.Context()),
		ChatWithMessages: domain.ChatWithMessages{
			Chat: domain.Chat{
				ID:           newID(),
				Title:        input.Title,
				Model:        input.Model,
				SystemPrompt: input.SystemPrompt,
				CreatedAt:    now,
				UpdatedAt:    now,
			},
			Messages: []domain.Message{},
		},
	}

	s.mu.Lock()
	s.chats[c.ID] = c
	s.mu.Unlock()

	response.OK(w, c.ChatWithMessages)
}

// chat returns the caller's conversation or writes 404. Callers hold s.mu.
func (s *Server) chat(w http.ResponseWriter, r *http.Request) *chatRecord {
	c, ok := s.chats[domain.ID(chi.URLParam(r, "chatID"))]
	if !ok || c.owner != currentUser(r.Context()) {
		response.NotFound(w, "Chat not found")
		return nil
	}
	return c
}

func (s *Server) getChat(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c := s.chat(w, r)
	if c == nil {
		return
	}
	detail := c.ChatWithMessages
	detail.Messages = append([]domain.Message{}, c.Messages...)
	response.OK(w, detail)
}

func (s *Server) deleteChat(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c := s.chat(w, r)
	if c == nil {
		return
	}
	delete(s.chats, c.ID)
	response.Message(w, "Chat deleted successfully")
}

func (s *Server) sendMessage(w http.ResponseWriter, r *http.Request) {
	var input domain.MessageCreate
	if !decodeAndValidate(w, r, &input) {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	c := s.chat(w, r)
	if c == nil {
		return
	}

	now := domain.Now()
	c.Messages = append(c.Messages, domain.Message{
		ID:        newID(),
		Role:      input.Role,
		Content:   input.Content,
		CreatedAt: now,
	})

	reply := domain.ChatResponse{
		ID:        newID(),
		Content:   ReplyPrefix + input.Content,
		CreatedAt: now,
		Metadata:  map[string]any{"model": c.Model},
	}
	c.Messages = append(c.Messages, domain.Message{
		ID:        reply.ID,
		Role:      domain.RoleAssistant,
		Content:   reply.Content,
		CreatedAt: reply.CreatedAt,
		Metadata:  reply.Metadata,
	})

	if c.Title == domain.DefaultChatTitle {
		c.Title = summarize(input.Content)
	}
	c.UpdatedAt = now

	response.OK(w, reply)
}

func summarize(content string) string {
	title := strings.Join(strings.Fields(content), " ")
	if r := []rune(title); len(r) > titleLength {
		title = string(r[:titleLength]) + "..."
	}
	if title == "" {
		return domain.DefaultChatTitle
	}
	return title
}
