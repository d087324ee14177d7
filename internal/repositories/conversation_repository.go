package repositories

import (
	"context"
	"database/sql"
	"errors"
	"sort"
	"strings"

	"github.com/jmoiron/sqlx"

	"market-chat-service/internal/models"
)

var (
	ErrConversationNotFound = errors.New("conversation not found")
	ErrInvalidParticipants  = errors.New("invalid conversation participants")
)

// ConversationSeparator joins the two participant ids into the conversation name.
const ConversationSeparator = "__"

// ConversationKey derives the stable conversation name for two accounts.
// The ids are sorted before joining, so both call orders yield the same key.
func ConversationKey(a, b string) (string, error) {
	if a == "" || b == "" || a == b {
		return "", ErrInvalidParticipants
	}
	if strings.Contains(a, ConversationSeparator) || strings.Contains(b, ConversationSeparator) {
		return "", ErrInvalidParticipants
	}
	participants := []string{a, b}
	sort.Strings(participants)
	return participants[0] + ConversationSeparator + participants[1], nil
}

// SplitConversationKey returns the two participant ids encoded in a name.
func SplitConversationKey(name string) (string, string, error) {
	parts := strings.Split(name, ConversationSeparator)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" || parts[0] == parts[1] {
		return "", "", ErrInvalidParticipants
	}
	return parts[0], parts[1], nil
}

// OtherParticipant resolves the peer account id for one side of a conversation.
func OtherParticipant(name, accountID string) (string, error) {
	first, second, err := SplitConversationKey(name)
	if err != nil {
		return "", err
	}
	switch accountID {
	case first:
		return second, nil
	case second:
		return first, nil
	}
	return "", ErrInvalidParticipants
}

// ConversationRepository abstracts conversation persistence.
type ConversationRepository interface {
	GetOrCreate(ctx context.Context, accountA, accountB string) (models.Conversation, error)
	GetByName(ctx context.Context, name string) (models.Conversation, error)
	ListForAccount(ctx context.Context, accountID string) ([]models.Conversation, error)
}

// ConversationRepo is a sqlx implementation of ConversationRepository.
type ConversationRepo struct {
	db *sqlx.DB
}

// NewConversationRepo constructs a ConversationRepo.
func NewConversationRepo(db *sqlx.DB) *ConversationRepo {
	return &ConversationRepo{db: db}
}

// GetOrCreate lazily creates the conversation for a participant pair.
// The derived name is the primary key, so concurrent callers converge
// on one row without any id-generation race.
func (r *ConversationRepo) GetOrCreate(ctx context.Context, accountA, accountB string) (models.Conversation, error) {
	name, err := ConversationKey(accountA, accountB)
	if err != nil {
		return models.Conversation{}, err
	}

	if _, err := r.db.ExecContext(ctx,
		`INSERT INTO conversations (name) VALUES ($1) ON CONFLICT (name) DO NOTHING`, name); err != nil {
		return models.Conversation{}, err
	}

	var conv models.Conversation
	if err := r.db.GetContext(ctx, &conv,
		`SELECT name, created_at FROM conversations WHERE name=$1`, name); err != nil {
		return models.Conversation{}, err
	}
	return conv, nil
}

// GetByName fetches a conversation by its derived name.
func (r *ConversationRepo) GetByName(ctx context.Context, name string) (models.Conversation, error) {
	var conv models.Conversation
	err := r.db.GetContext(ctx, &conv, `SELECT name, created_at FROM conversations WHERE name=$1`, name)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Conversation{}, ErrConversationNotFound
	}
	return conv, err
}

// ListForAccount returns conversations the account has exchanged messages in,
// most recent activity first.
func (r *ConversationRepo) ListForAccount(ctx context.Context, accountID string) ([]models.Conversation, error) {
	query := `SELECT c.name, c.created_at FROM conversations c
        WHERE EXISTS (
            SELECT 1 FROM messages m
            WHERE m.conversation_name = c.name
            AND (m.from_account=$1 OR m.to_account=$1)
        )
        ORDER BY (
            SELECT MAX(m.created_at) FROM messages m WHERE m.conversation_name = c.name
        ) DESC`
	var convs []models.Conversation
	err := r.db.SelectContext(ctx, &convs, query, accountID)
	return convs, err
}
