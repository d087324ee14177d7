package presence

import (
	"context"
	"sort"
	"sync"
)

// MemoryTracker is an in-process Tracker for single-node deployments and tests.
type MemoryTracker struct {
	mu     sync.RWMutex
	online map[string]map[string]struct{}
}

// NewMemoryTracker constructs an empty MemoryTracker.
func NewMemoryTracker() *MemoryTracker {
	return &MemoryTracker{online: make(map[string]map[string]struct{})}
}

var _ Tracker = (*MemoryTracker)(nil)

// Join adds the account to the conversation's online set.
func (t *MemoryTracker) Join(ctx context.Context, conversationName, accountID string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, ok := t.online[conversationName]; !ok {
		t.online[conversationName] = make(map[string]struct{})
	}
	t.online[conversationName][accountID] = struct{}{}
	return nil
}

// Leave removes the account from the conversation's online set.
func (t *MemoryTracker) Leave(ctx context.Context, conversationName, accountID string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if members, ok := t.online[conversationName]; ok {
		delete(members, accountID)
		if len(members) == 0 {
			delete(t.online, conversationName)
		}
	}
	return nil
}

// Online lists the accounts currently in the conversation's online set.
func (t *MemoryTracker) Online(ctx context.Context, conversationName string) ([]string, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	members := make([]string, 0, len(t.online[conversationName]))
	for id := range t.online[conversationName] {
		members = append(members, id)
	}
	sort.Strings(members)
	return members, nil
}
