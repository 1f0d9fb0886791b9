package api

import (
	"context"
	"net/http"

	"github.com/Rrens/chat-client/internal/domain"
)

func (c *Client) ListChats(ctx context.Context) ([]domain.Chat, error) {
	var chats []domain.Chat
	if err := c.doJSON(ctx, http.MethodGet, []string{"chat"}, nil, &chats); err != nil {
		return nil, err
	}
	return chats, nil
}

func (c *Client) CreateChat(ctx context.Context, input domain.ChatCreate) (*domain.ChatWithMessages, error) {
	var chat domain.ChatWithMessages
	if err := c.doJSON(ctx, http.MethodPost, []string{"chat"}, input, &chat); err != nil {
		return nil, err
	}
	return &chat, nil
}

// GetChat returns a conversation including its messages
func (c *Client) GetChat(ctx context.Context, id domain.ID) (*domain.ChatWithMessages, error) {
	var chat domain.ChatWithMessages
	if err := c.doJSON(ctx, http.MethodGet, []string{"chat", id.String()}, nil, &chat); err != nil {
		return nil, err
	}
	return &chat, nil
}

// SendMessage posts a message and returns the assistant reply
func (c *Client) SendMessage(ctx context.Context, chatID domain.ID, input domain.MessageCreate) (*domain.ChatResponse, error) {
	var reply domain.ChatResponse
	if err := c.doJSON(ctx, http.MethodPost, []string{"chat", chatID.String(), "messages"}, input, &reply); err != nil {
		return nil, err
	}
	return &reply, nil
}

func (c *Client) DeleteChat(ctx context.Context, id domain.ID) error {
	return c.doJSON(ctx, http.MethodDelete, []string{"chat", id.String()}, nil, nil)
}

func (c *Client) ListModels(ctx context.Context) ([]domain.Model, error) {
	var models []domain.Model
	if err := c.doJSON(ctx, http.MethodGet, []string{"models"}, nil, &models); err != nil {
		return nil, err
	}
	return models, nil
}
