package runtime

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"chat-relay/domain"
)

func testMessage(sender, recipient, content string) domain.Message {
	return domain.Message{
		ID:          uuid.New(),
		SenderID:    sender,
		RecipientID: recipient,
		Content:     content,
		CreatedAt:   time.Now().UTC(),
	}
}

func TestHistoryCache_Miss_Then_Hit(t *testing.T) {
	req := require.New(t)
	cache := NewHistoryCache()

	// Given an empty cache
	_, ok := cache.Get("alice")
	req.False(ok)

	// When a history is stored
	history := []domain.Message{testMessage("alice", "bob", "hello")}
	cache.Put("alice", history)

	// Then it is returned as-is
	cached, ok := cache.Get("alice")
	req.True(ok)
	req.Equal(history, cached)
}

func TestHistoryCache_Put_Overwrites(t *testing.T) {
	req := require.New(t)
	cache := NewHistoryCache()
	cache.Put("alice", []domain.Message{testMessage("alice", "bob", "old")})

	// When a fresh history is stored for the same user
	fresh := []domain.Message{testMessage("bob", "alice", "new")}
	cache.Put("alice", fresh)

	// Then last write wins
	cached, ok := cache.Get("alice")
	req.True(ok)
	req.Equal(fresh, cached)
}

func TestHistoryCache_Append_Only_Existing_Entries(t *testing.T) {
	req := require.New(t)
	cache := NewHistoryCache()
	cache.Put("alice", nil)

	msg := testMessage("bob", "alice", "hi")

	// When appending for a cached and an uncached user
	cache.Append("alice", msg)
	cache.Append("bob", msg)

	// Then only the cached user's history grows
	cached, ok := cache.Get("alice")
	req.True(ok)
	req.Equal([]domain.Message{msg}, cached)

	_, ok = cache.Get("bob")
	req.False(ok)
}

func TestHistoryCache_Empty_History_Is_A_Hit(t *testing.T) {
	req := require.New(t)
	cache := NewHistoryCache()

	// Given a user whose fetched history was empty
	cache.Put("alice", []domain.Message{})

	// Then a later join must not refetch
	_, ok := cache.Get("alice")
	req.True(ok)
}
