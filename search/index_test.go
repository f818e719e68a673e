package search

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"chat-relay/domain"
)

func newTestIndex(t *testing.T) *Index {
	t.Helper()
	index, err := Open(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { _ = index.Close() })
	return index
}

func indexed(t *testing.T, index *Index, sender, recipient, content string, at time.Time) domain.Message {
	t.Helper()
	msg := domain.Message{
		ID:          uuid.New(),
		SenderID:    sender,
		RecipientID: recipient,
		Content:     content,
		CreatedAt:   at,
	}
	require.NoError(t, index.Index(msg))
	return msg
}

func TestIndex_Search_Matches_Content(t *testing.T) {
	req := require.New(t)
	index := newTestIndex(t)
	now := time.Now().UTC()

	sent := indexed(t, index, "alice", "bob", "let's grab coffee tomorrow", now)
	indexed(t, index, "alice", "bob", "totally unrelated", now.Add(time.Second))

	// When searching one of alice's words
	results, err := index.Search(context.Background(), "alice", "coffee", 10)

	// Then only the matching message comes back, fields intact
	req.NoError(err)
	req.Len(results, 1)
	req.Equal(sent.ID, results[0].ID)
	req.Equal("alice", results[0].SenderID)
	req.Equal("bob", results[0].RecipientID)
	req.Equal(sent.Content, results[0].Content)
	req.WithinDuration(now, results[0].CreatedAt, time.Millisecond)
}

func TestIndex_Search_Scoped_To_Participant(t *testing.T) {
	req := require.New(t)
	index := newTestIndex(t)
	now := time.Now().UTC()

	indexed(t, index, "alice", "bob", "coffee with bob", now)
	indexed(t, index, "clara", "dave", "coffee with dave", now.Add(time.Second))

	// When bob searches, other conversations stay invisible
	results, err := index.Search(context.Background(), "bob", "coffee", 10)
	req.NoError(err)
	req.Len(results, 1)
	req.Equal("bob", results[0].RecipientID)
}

func TestIndex_Search_Finds_Both_Directions(t *testing.T) {
	req := require.New(t)
	index := newTestIndex(t)
	now := time.Now().UTC()

	indexed(t, index, "alice", "bob", "coffee sent by alice", now)
	indexed(t, index, "bob", "alice", "coffee sent by bob", now.Add(time.Second))

	results, err := index.Search(context.Background(), "alice", "coffee", 10)
	req.NoError(err)
	req.Len(results, 2)

	// Ascending by creation time regardless of score
	req.Equal("coffee sent by alice", results[0].Content)
	req.Equal("coffee sent by bob", results[1].Content)
}

func TestIndex_Search_Honors_Limit(t *testing.T) {
	req := require.New(t)
	index := newTestIndex(t)
	now := time.Now().UTC()

	for i := 0; i < 5; i++ {
		indexed(t, index, "alice", "bob", "coffee again", now.Add(time.Duration(i)*time.Second))
	}

	results, err := index.Search(context.Background(), "alice", "coffee", 3)
	req.NoError(err)
	req.Len(results, 3)
}

func TestIndex_Reindex_Same_Id_Upserts(t *testing.T) {
	req := require.New(t)
	index := newTestIndex(t)
	now := time.Now().UTC()

	msg := indexed(t, index, "alice", "bob", "coffee draft", now)
	msg.Content = "coffee final"
	req.NoError(index.Index(msg))

	results, err := index.Search(context.Background(), "alice", "coffee", 10)
	req.NoError(err)
	req.Len(results, 1)
	req.Equal("coffee final", results[0].Content)
}
