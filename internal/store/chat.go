package store

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/Rrens/chat-client/internal/domain"
)

// ChatAPI is the part of the HTTP client the chat store uses
type ChatAPI interface {
	ListChats(ctx context.Context) ([]domain.Chat, error)
	CreateChat(ctx context.Context, input domain.ChatCreate) (*domain.ChatWithMessages, error)
	GetChat(ctx context.Context, id domain.ID) (*domain.ChatWithMessages, error)
	SendMessage(ctx context.Context, chatID domain.ID, input domain.MessageCreate) (*domain.ChatResponse, error)
	DeleteChat(ctx context.Context, id domain.ID) error
}

// ChatStore holds the conversation list and the current conversation.
//
// Each slot carries a generation counter. Operations that replace a slot
// bump it when they start; a response whose generation is no longer current
// was superseded and is dropped instead of overwriting newer state. A send
// reply is keyed by conversation id instead: it is applied as long as the
// same conversation is current.
type ChatStore struct {
	api          ChatAPI
	defaultModel string
	now          func() time.Time

	chats   *Observable[[]domain.Chat]
	current *Observable[domain.Conversation]

	mu      sync.Mutex
	listGen uint64
	convGen uint64
	// a send is in flight; survives a failed load clearing IsLoading
	sending bool
}

func NewChatStore(client ChatAPI, defaultModel string, now func() time.Time) *ChatStore {
	if now == nil {
		now = time.Now
	}
	return &ChatStore{
		api:          client,
		defaultModel: defaultModel,
		now:          now,
		chats:        NewObservable([]domain.Chat{}),
		current:      NewObservable(domain.Conversation{}),
	}
}

func (s *ChatStore) Chats() []domain.Chat {
	return s.chats.Get()
}

func (s *ChatStore) Current() domain.Conversation {
	return s.current.Get()
}

// RequireCurrent returns the current conversation or ErrNoConversation
func (s *ChatStore) RequireCurrent() (domain.Conversation, error) {
	conv := s.current.Get()
	if conv.IsZero() {
		return conv, ErrNoConversation
	}
	return conv, nil
}

func (s *ChatStore) SubscribeChats(fn func([]domain.Chat)) func() {
	return s.chats.Subscribe(fn)
}

func (s *ChatStore) SubscribeCurrent(fn func(domain.Conversation)) func() {
	return s.current.Subscribe(fn)
}

// FetchChats replaces the list with the server's. On failure the held list
// is kept and an empty list is returned.
func (s *ChatStore) FetchChats(ctx context.Context) []domain.Chat {
	s.mu.Lock()
	s.listGen++
	gen := s.listGen
	s.mu.Unlock()

	chats, err := s.api.ListChats(ctx)
	if err != nil {
		log.Error().Err(err).Msg("failed to fetch chats")
		return []domain.Chat{}
	}
	if chats == nil {
		chats = []domain.Chat{}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if gen != s.listGen {
		log.Debug().Msg("discarding stale chat list")
		return chats
	}
	s.chats.Set(chats)
	return chats
}

// CreateChat creates an empty conversation, puts it at the head of the list
// and makes it current. An empty model selects the configured default.
func (s *ChatStore) CreateChat(ctx context.Context, model string, systemPrompt *string) (*domain.Conversation, error) {
	if model == "" {
		model = s.defaultModel
	}
	input := domain.ChatCreate{
		Title:        domain.DefaultChatTitle,
		Model:        model,
		SystemPrompt: systemPrompt,
	}
	if err := domain.Validate(input); err != nil {
		return nil, err
	}

	gen := s.startLoading()

	chat, err := s.api.CreateChat(ctx, input)
	if err != nil {
		s.stopLoading(gen)
		return nil, err
	}
	conv := conversationFrom(chat)

	s.mu.Lock()
	defer s.mu.Unlock()

	s.listGen++
	s.chats.Update(func(list []domain.Chat) []domain.Chat {
		next := make([]domain.Chat, 0, len(list)+1)
		next = append(next, chat.Chat)
		for _, c := range list {
			if c.ID != chat.ID {
				next = append(next, c)
			}
		}
		return next
	})

	if gen == s.convGen {
		s.current.Set(conv)
	} else {
		log.Debug().Str("chat_id", chat.ID.String()).Msg("created chat superseded before it became current")
	}
	return &conv, nil
}

// FetchChat replaces the current conversation with the server's copy
func (s *ChatStore) FetchChat(ctx context.Context, id domain.ID) (*domain.Conversation, error) {
	gen := s.startLoading()

	chat, err := s.api.GetChat(ctx, id)
	if err != nil {
		s.stopLoading(gen)
		return nil, err
	}
	conv := conversationFrom(chat)

	s.mu.Lock()
	defer s.mu.Unlock()

	if gen != s.convGen {
		log.Debug().Str("chat_id", id.String()).Msg("discarding stale conversation")
		return &conv, nil
	}
	s.current.Set(conv)
	return &conv, nil
}

// SendMessage appends a provisional user message, posts it and appends the
// assistant's reply. It is a no-op without a current conversation. On
// failure the provisional message stays in place marked as failed.
func (s *ChatStore) SendMessage(ctx context.Context, content string) (*domain.Message, error) {
	if strings.TrimSpace(content) == "" {
		return nil, ErrEmptyMessage
	}

	s.mu.Lock()
	conv := s.current.Get()
	if conv.IsZero() {
		s.mu.Unlock()
		return nil, nil
	}
	if conv.IsLoading || s.sending {
		s.mu.Unlock()
		return nil, ErrBusy
	}

	s.sending = true
	now := s.now()
	provisional := domain.Message{
		ID:        domain.ProvisionalID(now),
		Role:      domain.RoleUser,
		Content:   content,
		CreatedAt: domain.Timestamp{Time: now},
		Status:    domain.StatusPending,
	}

	conv.Messages = appendMessage(conv.Messages, provisional)
	conv.IsLoading = true
	conv.Phase = domain.PhaseLoading
	s.current.Set(conv)
	s.mu.Unlock()

	reply, err := s.api.SendMessage(ctx, conv.ID, domain.MessageCreate{Role: domain.RoleUser, Content: content})

	s.mu.Lock()
	defer s.mu.Unlock()
	s.sending = false

	var msg domain.Message
	if err == nil {
		msg = reply.Message()
	}

	latest := s.current.Get()
	if latest.ID != conv.ID {
		log.Debug().Str("chat_id", conv.ID.String()).Msg("conversation changed while sending, dropping reply")
		if err != nil {
			return nil, err
		}
		return &msg, nil
	}

	latest.Messages = resolveSend(latest.Messages, provisional, msg, err == nil)
	latest.IsLoading = false
	latest.Phase = domain.PhaseReady
	s.current.Set(latest)

	if err != nil {
		return nil, err
	}
	return &msg, nil
}

// resolveSend settles the provisional message of a send in messages and
// appends the reply. When the conversation was reloaded in the meantime the
// provisional message is gone; the exchange is appended unless the reload
// already carries the reply.
func resolveSend(messages []domain.Message, provisional, reply domain.Message, ok bool) []domain.Message {
	status := domain.StatusConfirmed
	if !ok {
		status = domain.StatusFailed
	}

	next := make([]domain.Message, 0, len(messages)+2)
	found := false
	for _, m := range messages {
		if m.ID == provisional.ID {
			m.Status = status
			found = true
		}
		if ok && m.ID == reply.ID {
			return messages
		}
		next = append(next, m)
	}

	if !ok {
		return next
	}
	if !found {
		provisional.Status = domain.StatusConfirmed
		next = append(next, provisional)
	}
	return append(next, reply)
}

// DeleteChat deletes remotely, then drops the entry from the list. If it was
// the current conversation the current slot is reset.
func (s *ChatStore) DeleteChat(ctx context.Context, id domain.ID) error {
	if err := s.api.DeleteChat(ctx, id); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.listGen++
	s.chats.Update(func(list []domain.Chat) []domain.Chat {
		next := make([]domain.Chat, 0, len(list))
		for _, c := range list {
			if c.ID != id {
				next = append(next, c)
			}
		}
		return next
	})

	if s.current.Get().ID == id {
		s.convGen++
		s.current.Set(domain.Conversation{})
	}
	return nil
}

// Reset empties both slots and supersedes any request in flight
func (s *ChatStore) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.listGen++
	s.convGen++
	s.chats.Set([]domain.Chat{})
	s.current.Set(domain.Conversation{})
}

func (s *ChatStore) startLoading() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.convGen++
	s.current.Update(func(c domain.Conversation) domain.Conversation {
		c.IsLoading = true
		c.Phase = domain.PhaseLoading
		return c
	})
	return s.convGen
}

// stopLoading returns the slot to ready, or idle if nothing was ever loaded
func (s *ChatStore) stopLoading(gen uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if gen != s.convGen {
		return
	}
	s.current.Update(func(c domain.Conversation) domain.Conversation {
		c.IsLoading = false
		if c.IsZero() {
			c.Phase = domain.PhaseIdle
		} else {
			c.Phase = domain.PhaseReady
		}
		return c
	})
}

func conversationFrom(chat *domain.ChatWithMessages) domain.Conversation {
	messages := make([]domain.Message, 0, len(chat.Messages))
	for _, m := range chat.Messages {
		m.Status = domain.StatusConfirmed
		messages = append(messages, m)
	}
	return domain.Conversation{
		ID:       chat.ID,
		Title:    chat.Title,
		Model:    chat.Model,
		Messages: messages,
		Phase:    domain.PhaseReady,
	}
}

func appendMessage(messages []domain.Message, m domain.Message) []domain.Message {
	next := make([]domain.Message, 0, len(messages)+1)
	next = append(next, messages...)
	return append(next, m)
}
