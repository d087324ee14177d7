package repositories

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestConversationKeyIsOrderIndependent(t *testing.T) {
	key1, err := ConversationKey("alice", "bob")
	require.NoError(t, err)

	key2, err := ConversationKey("bob", "alice")
	require.NoError(t, err)

	require.Equal(t, key1, key2)
	require.Equal(t, "alice__bob", key1)
}

func TestConversationKeyRejectsInvalidParticipants(t *testing.T) {
	cases := []struct {
		name string
		a, b string
	}{
		{"empty first", "", "bob"},
		{"empty second", "alice", ""},
		{"both empty", "", ""},
		{"equal ids", "alice", "alice"},
		{"separator in id", "ali__ce", "bob"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ConversationKey(tc.a, tc.b)
			require.ErrorIs(t, err, ErrInvalidParticipants)
		})
	}
}

func TestSplitConversationKey(t *testing.T) {
	first, second, err := SplitConversationKey("alice__bob")
	require.NoError(t, err)
	require.Equal(t, "alice", first)
	require.Equal(t, "bob", second)

	_, _, err = SplitConversationKey("alice")
	require.ErrorIs(t, err, ErrInvalidParticipants)

	_, _, err = SplitConversationKey("alice__alice")
	require.ErrorIs(t, err, ErrInvalidParticipants)
}

func TestOtherParticipant(t *testing.T) {
	peer, err := OtherParticipant("alice__bob", "alice")
	require.NoError(t, err)
	require.Equal(t, "bob", peer)

	peer, err = OtherParticipant("alice__bob", "bob")
	require.NoError(t, err)
	require.Equal(t, "alice", peer)

	_, err = OtherParticipant("alice__bob", "carol")
	require.ErrorIs(t, err, ErrInvalidParticipants)
}
