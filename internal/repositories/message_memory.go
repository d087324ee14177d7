package repositories

import (
	"context"
	"sort"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"market-chat-service/internal/models"
)

// MemoryMessageRepo is an in-process MessageRepository for single-node runs
// and tests. It carries the same contract as the sqlx repository: content
// validation, per-conversation timestamp clamping, newest-first ordering with
// insertion order preserved among equal timestamps, and a monotone read flag.
type MemoryMessageRepo struct {
	mu   sync.RWMutex
	msgs map[string][]models.Message
	seq  int64
	now  func() time.Time
}

// NewMemoryMessageRepo constructs an empty MemoryMessageRepo.
func NewMemoryMessageRepo() *MemoryMessageRepo {
	return &MemoryMessageRepo{
		msgs: make(map[string][]models.Message),
		now:  time.Now,
	}
}

var _ MessageRepository = (*MemoryMessageRepo)(nil)

// Append stores a message. The assigned timestamp never goes below the
// conversation's current maximum, so per-conversation order is monotone even
// when the clock steps backwards.
func (r *MemoryMessageRepo) Append(ctx context.Context, conversationName, fromID, toID, content string, statementID *string) (models.Message, error) {
	if content == "" {
		return models.Message{}, ErrEmptyContent
	}
	if utf8.RuneCountInString(content) > models.MaxMessageLength {
		return models.Message{}, ErrContentTooLong
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	ts := r.now()
	if existing := r.msgs[conversationName]; len(existing) > 0 {
		if last := existing[len(existing)-1].CreatedAt; ts.Before(last) {
			ts = last
		}
	}

	r.seq++
	msg := models.Message{
		ID:           uuid.NewString(),
		Seq:          r.seq,
		Conversation: conversationName,
		FromAccount:  fromID,
		ToAccount:    toID,
		Content:      content,
		CreatedAt:    ts,
	}
	if statementID != nil {
		msg.StatementID.String = *statementID
		msg.StatementID.Valid = true
	}

	r.msgs[conversationName] = append(r.msgs[conversationName], msg)
	return msg, nil
}

// Recent returns the newest messages in a conversation, newest first.
func (r *MemoryMessageRepo) Recent(ctx context.Context, conversationName string, limit int) ([]models.Message, error) {
	return r.History(ctx, conversationName, limit, 0)
}

// History returns a page of messages, newest first.
func (r *MemoryMessageRepo) History(ctx context.Context, conversationName string, limit, offset int) ([]models.Message, error) {
	r.mu.RLock()
	msgs := append([]models.Message(nil), r.msgs[conversationName]...)
	r.mu.RUnlock()

	sort.SliceStable(msgs, func(i, j int) bool {
		if !msgs[i].CreatedAt.Equal(msgs[j].CreatedAt) {
			return msgs[i].CreatedAt.After(msgs[j].CreatedAt)
		}
		return msgs[i].Seq > msgs[j].Seq
	})

	if offset >= len(msgs) {
		return []models.Message{}, nil
	}
	msgs = msgs[offset:]
	if limit < len(msgs) {
		msgs = msgs[:limit]
	}
	return msgs, nil
}

// Count returns the total number of messages in a conversation.
func (r *MemoryMessageRepo) Count(ctx context.Context, conversationName string) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.msgs[conversationName]), nil
}

// CountUnread counts unread messages addressed to the account across all
// conversations.
func (r *MemoryMessageRepo) CountUnread(ctx context.Context, accountID string) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	count := 0
	for _, msgs := range r.msgs {
		for _, msg := range msgs {
			if msg.ToAccount == accountID && !msg.Read {
				count++
			}
		}
	}
	return count, nil
}

// MarkRead flips the read flag on all messages in the conversation addressed
// to the reader. The flag only moves false to true, so repeating is a no-op.
func (r *MemoryMessageRepo) MarkRead(ctx context.Context, conversationName, readerID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	msgs := r.msgs[conversationName]
	for i := range msgs {
		if msgs[i].ToAccount == readerID {
			msgs[i].Read = true
		}
	}
	return nil
}

// LastMessage returns the newest message of a conversation.
func (r *MemoryMessageRepo) LastMessage(ctx context.Context, conversationName string) (models.Message, error) {
	msgs, err := r.Recent(ctx, conversationName, 1)
	if err != nil {
		return models.Message{}, err
	}
	if len(msgs) == 0 {
		return models.Message{}, ErrMessageNotFound
	}
	return msgs[0], nil
}
