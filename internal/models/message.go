package models

import (
	"database/sql"
	"time"
)

// MaxMessageLength bounds chat message content, in runes.
const MaxMessageLength = 512

// Message is one chat message. Immutable after creation except for the
// read flag, which only transitions false to true.
type Message struct {
	ID           string         `db:"id" json:"id"`
	Seq          int64          `db:"seq" json:"-"`
	Conversation string         `db:"conversation_name" json:"conversation"`
	FromAccount  string         `db:"from_account" json:"from_account"`
	ToAccount    string         `db:"to_account" json:"to_account"`
	Content      string         `db:"content" json:"content"`
	StatementID  sql.NullString `db:"statement_id" json:"-"`
	Read         bool           `db:"read" json:"read"`
	CreatedAt    time.Time      `db:"created_at" json:"timestamp"`
}

// MessageView is the serialized form pushed over websockets and REST.
type MessageView struct {
	ID           string            `json:"id"`
	Conversation string            `json:"conversation"`
	FromUser     AccountSummary    `json:"from_user"`
	ToUser       AccountSummary    `json:"to_user"`
	Content      string            `json:"content"`
	Timestamp    time.Time         `json:"timestamp"`
	Read         bool              `json:"read"`
	Statement    *StatementSummary `json:"statement,omitempty"`
}

// ChatEvent is the envelope broadcast on a conversation topic.
type ChatEvent struct {
	Type    string       `json:"type"`
	Name    string       `json:"name,omitempty"`
	User    string       `json:"user,omitempty"`
	Message *MessageView `json:"message,omitempty"`
	Error   string       `json:"error,omitempty"`
}

// SnapshotEvent is the connect-time backlog pushed to a conversation session.
// Messages is always present on the wire, even when empty.
type SnapshotEvent struct {
	Type     string        `json:"type"`
	Messages []MessageView `json:"messages"`
	HasMore  bool          `json:"has_more"`
}

// NotificationEvent is the envelope published on an account's private topic.
type NotificationEvent struct {
	Type        string       `json:"type"`
	Name        string       `json:"name,omitempty"`
	Message     *MessageView `json:"message,omitempty"`
	UnreadCount *int         `json:"unread_count,omitempty"`
}
