package docModel

import "context"

// ChatTurn is one question/answer exchange persisted as conversation history.
type ChatTurn struct {
	Question string   `json:"question,omitempty"`
	Answer   string   `json:"answer,omitempty"`
	Sources  []Source `json:"sources,omitempty"`
}

// MessageStore keeps per-conversation history for the hosting layer.
type MessageStore interface {
	ValidateChatId(ctx context.Context, id string) bool
	InitNewChat(ctx context.Context, id string) error
	TrySaveChat(ctx context.Context, id string, turn ChatTurn) error
	GetMessageHistory(ctx context.Context, chatId string) ([]string, error)
}
