package store

import "errors"

var (
	// ErrNoConversation is returned when an action needs a current conversation
	ErrNoConversation = errors.New("no conversation selected")

	// ErrEmptyMessage is returned by SendMessage for blank content
	ErrEmptyMessage = errors.New("message is empty")

	// ErrBusy is returned when a send is attempted while the current
	// conversation is still loading
	ErrBusy = errors.New("conversation is busy")

	// ErrNotAuthenticated is returned by Bootstrap when no valid session exists
	ErrNotAuthenticated = errors.New("not authenticated")

	// ErrUnknownModel is returned by SelectModel for ids the backend does not list
	ErrUnknownModel = errors.New("unknown model")
)
