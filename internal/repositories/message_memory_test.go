package repositories

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func seedMessage(t *testing.T, repo *MemoryMessageRepo, conversation, from, to, content string) {
	t.Helper()
	_, err := repo.Append(context.Background(), conversation, from, to, content, nil)
	require.NoError(t, err)
}

func TestAppendRejectsInvalidContent(t *testing.T) {
	repo := NewMemoryMessageRepo()
	ctx := context.Background()

	_, err := repo.Append(ctx, "a__b", "a", "b", "", nil)
	require.ErrorIs(t, err, ErrEmptyContent)

	long := make([]rune, 513)
	for i := range long {
		long[i] = 'x'
	}
	_, err = repo.Append(ctx, "a__b", "a", "b", string(long), nil)
	require.ErrorIs(t, err, ErrContentTooLong)

	count, err := repo.Count(ctx, "a__b")
	require.NoError(t, err)
	require.Zero(t, count)
}

func TestMarkReadIsIdempotent(t *testing.T) {
	repo := NewMemoryMessageRepo()
	ctx := context.Background()

	seedMessage(t, repo, "a__b", "a", "b", "one")
	seedMessage(t, repo, "a__b", "a", "b", "two")
	seedMessage(t, repo, "b__c", "c", "b", "elsewhere")

	before, err := repo.CountUnread(ctx, "b")
	require.NoError(t, err)
	require.Equal(t, 3, before)

	require.NoError(t, repo.MarkRead(ctx, "a__b", "b"))
	afterFirst, err := repo.CountUnread(ctx, "b")
	require.NoError(t, err)
	require.Equal(t, 1, afterFirst)

	require.NoError(t, repo.MarkRead(ctx, "a__b", "b"))
	afterSecond, err := repo.CountUnread(ctx, "b")
	require.NoError(t, err)
	require.Equal(t, afterFirst, afterSecond)
}

func TestMarkReadOnlyTouchesMessagesAddressedToReader(t *testing.T) {
	repo := NewMemoryMessageRepo()
	ctx := context.Background()

	seedMessage(t, repo, "a__b", "a", "b", "to b")
	seedMessage(t, repo, "a__b", "b", "a", "to a")

	require.NoError(t, repo.MarkRead(ctx, "a__b", "b"))

	unreadA, err := repo.CountUnread(ctx, "a")
	require.NoError(t, err)
	require.Equal(t, 1, unreadA)
}

func TestAppendClampsTimestampToConversationMax(t *testing.T) {
	repo := NewMemoryMessageRepo()
	ctx := context.Background()

	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	clock := base
	repo.now = func() time.Time { return clock }

	first, err := repo.Append(ctx, "a__b", "a", "b", "one", nil)
	require.NoError(t, err)
	require.Equal(t, base, first.CreatedAt)

	// Clock steps backwards; the assigned timestamp must not.
	clock = base.Add(-time.Hour)
	second, err := repo.Append(ctx, "a__b", "a", "b", "two", nil)
	require.NoError(t, err)
	require.False(t, second.CreatedAt.Before(first.CreatedAt))

	// A different conversation is unaffected by the clamp.
	other, err := repo.Append(ctx, "a__c", "a", "c", "three", nil)
	require.NoError(t, err)
	require.Equal(t, clock, other.CreatedAt)
}

func TestSequentialAppendsStayOrderedOnEqualTimestamps(t *testing.T) {
	repo := NewMemoryMessageRepo()
	ctx := context.Background()

	frozen := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	repo.now = func() time.Time { return frozen }

	first, err := repo.Append(ctx, "a__b", "a", "b", "one", nil)
	require.NoError(t, err)
	second, err := repo.Append(ctx, "a__b", "b", "a", "two", nil)
	require.NoError(t, err)
	require.Equal(t, first.CreatedAt, second.CreatedAt)

	recent, err := repo.Recent(ctx, "a__b", 10)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	require.Equal(t, second.ID, recent[0].ID)
	require.Equal(t, first.ID, recent[1].ID)

	last, err := repo.LastMessage(ctx, "a__b")
	require.NoError(t, err)
	require.Equal(t, second.ID, last.ID)
}

func TestHistoryPagesNewestFirst(t *testing.T) {
	repo := NewMemoryMessageRepo()
	ctx := context.Background()

	contents := []string{"one", "two", "three", "four"}
	for _, c := range contents {
		seedMessage(t, repo, "a__b", "a", "b", c)
	}

	page, err := repo.History(ctx, "a__b", 2, 1)
	require.NoError(t, err)
	require.Len(t, page, 2)
	require.Equal(t, "three", page[0].Content)
	require.Equal(t, "two", page[1].Content)

	empty, err := repo.History(ctx, "a__b", 2, 10)
	require.NoError(t, err)
	require.Empty(t, empty)
}

func TestLastMessageOnEmptyConversation(t *testing.T) {
	repo := NewMemoryMessageRepo()

	_, err := repo.LastMessage(context.Background(), "a__b")
	require.ErrorIs(t, err, ErrMessageNotFound)
}
