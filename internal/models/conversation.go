package models

import "time"

// Conversation is a two-party chat identified by its derived name.
// The name is stable regardless of which participant opened it.
type Conversation struct {
	Name      string    `db:"name" json:"name"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// ConversationSummary is the API view returned by the conversation list.
type ConversationSummary struct {
	Name        string          `json:"name"`
	OtherUser   *AccountSummary `json:"other_user,omitempty"`
	LastMessage *MessageView    `json:"last_message,omitempty"`
}
