package presence

import "context"

// Tracker records which accounts are currently connected to a conversation
// channel. Join and Leave are idempotent set operations; applying either twice
// is the same as applying it once. Implementations must be safe for concurrent
// use from many sessions, possibly across processes.
type Tracker interface {
	Join(ctx context.Context, conversationName, accountID string) error
	Leave(ctx context.Context, conversationName, accountID string) error
	Online(ctx context.Context, conversationName string) ([]string, error)
}
