package repositories

import (
	"context"
	"database/sql"
	"errors"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"market-chat-service/internal/models"
)

var (
	ErrMessageNotFound = errors.New("message not found")
	ErrEmptyContent    = errors.New("message content is empty")
	ErrContentTooLong  = errors.New("message content exceeds length bound")
)

// MessageRepository defines interactions with the append-only message log.
type MessageRepository interface {
	Append(ctx context.Context, conversationName, fromID, toID, content string, statementID *string) (models.Message, error)
	Recent(ctx context.Context, conversationName string, limit int) ([]models.Message, error)
	History(ctx context.Context, conversationName string, limit, offset int) ([]models.Message, error)
	Count(ctx context.Context, conversationName string) (int, error)
	CountUnread(ctx context.Context, accountID string) (int, error)
	MarkRead(ctx context.Context, conversationName, readerID string) error
	LastMessage(ctx context.Context, conversationName string) (models.Message, error)
}

// MessageRepo is a sqlx-backed repository.
type MessageRepo struct {
	db *sqlx.DB
}

// NewMessageRepo constructs MessageRepo.
func NewMessageRepo(db *sqlx.DB) *MessageRepo {
	return &MessageRepo{db: db}
}

// Append stores a message with a random id and a server timestamp that never
// goes backwards within the conversation. The insert must complete before the
// caller broadcasts anything.
func (r *MessageRepo) Append(ctx context.Context, conversationName, fromID, toID, content string, statementID *string) (models.Message, error) {
	if content == "" {
		return models.Message{}, ErrEmptyContent
	}
	if utf8.RuneCountInString(content) > models.MaxMessageLength {
		return models.Message{}, ErrContentTooLong
	}

	query := `INSERT INTO messages (id, conversation_name, from_account, to_account, content, statement_id, created_at)
        VALUES ($1, $2, $3, $4, $5, $6, GREATEST(
            NOW(),
            COALESCE((SELECT MAX(created_at) FROM messages WHERE conversation_name=$2), NOW())
        ))
        RETURNING id, seq, conversation_name, from_account, to_account, content, statement_id, read, created_at`

	var msg models.Message
	err := r.db.QueryRowxContext(ctx, query,
		uuid.NewString(), conversationName, fromID, toID, content, statementID).
		StructScan(&msg)
	return msg, err
}

// Recent returns the newest messages in a conversation, newest first.
func (r *MessageRepo) Recent(ctx context.Context, conversationName string, limit int) ([]models.Message, error) {
	return r.History(ctx, conversationName, limit, 0)
}

// History returns a page of messages, newest first. Pure read; no cursor
// state. The seq tie-breaker keeps insertion order when the monotone clamp
// assigns equal timestamps.
func (r *MessageRepo) History(ctx context.Context, conversationName string, limit, offset int) ([]models.Message, error) {
	query := `SELECT id, seq, conversation_name, from_account, to_account, content, statement_id, read, created_at
        FROM messages
        WHERE conversation_name=$1
        ORDER BY created_at DESC, seq DESC
        LIMIT $2 OFFSET $3`
	var msgs []models.Message
	err := r.db.SelectContext(ctx, &msgs, query, conversationName, limit, offset)
	return msgs, err
}

// Count returns the total number of messages in a conversation.
func (r *MessageRepo) Count(ctx context.Context, conversationName string) (int, error) {
	var count int
	err := r.db.GetContext(ctx, &count,
		`SELECT COUNT(*) FROM messages WHERE conversation_name=$1`, conversationName)
	return count, err
}

// CountUnread counts unread messages addressed to the account across all conversations.
func (r *MessageRepo) CountUnread(ctx context.Context, accountID string) (int, error) {
	var count int
	err := r.db.GetContext(ctx, &count,
		`SELECT COUNT(*) FROM messages WHERE to_account=$1 AND read = FALSE`, accountID)
	return count, err
}

// MarkRead flips the read flag on all messages in the conversation addressed
// to the reader. The transition is monotone, so repeating it is a no-op.
func (r *MessageRepo) MarkRead(ctx context.Context, conversationName, readerID string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE messages SET read = TRUE WHERE conversation_name=$1 AND to_account=$2 AND read = FALSE`,
		conversationName, readerID)
	return err
}

// LastMessage returns the newest message of a conversation.
func (r *MessageRepo) LastMessage(ctx context.Context, conversationName string) (models.Message, error) {
	var msg models.Message
	err := r.db.GetContext(ctx, &msg,
		`SELECT id, seq, conversation_name, from_account, to_account, content, statement_id, read, created_at
         FROM messages WHERE conversation_name=$1 ORDER BY created_at DESC, seq DESC LIMIT 1`,
		conversationName)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Message{}, ErrMessageNotFound
	}
	return msg, err
}
