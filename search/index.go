// Package search maintains a bluge full-text index over persisted messages.
// The index is a derived view: the badger store stays authoritative, and a
// lost index entry only narrows search results.
package search

import (
	"context"
	"sort"
	"time"

	"github.com/blugelabs/bluge"
	"github.com/google/uuid"

	"chat-relay/domain"
)

type Index struct {
	writer *bluge.Writer
}

// Open creates or reopens the index at path.
func Open(path string) (*Index, error) {
	writer, err := bluge.OpenWriter(bluge.DefaultConfig(path))
	if err != nil {
		return nil, err
	}
	return &Index{writer: writer}, nil
}

func (i *Index) Close() error {
	return i.writer.Close()
}

// Index upserts one message. Participants are indexed as exact keywords so
// search can be scoped to a user; content is analyzed for full-text match.
func (i *Index) Index(msg domain.Message) error {
	doc := bluge.NewDocument(msg.ID.String())
	doc.AddField(bluge.NewKeywordField("sender_id", msg.SenderID).StoreValue())
	doc.AddField(bluge.NewKeywordField("recipient_id", msg.RecipientID).StoreValue())
	doc.AddField(bluge.NewTextField("content", msg.Content).StoreValue())
	doc.AddField(bluge.NewStoredOnlyField("created_at", []byte(msg.CreatedAt.UTC().Format(time.RFC3339Nano))))
	return i.writer.Update(doc.ID(), doc)
}

// Search returns up to limit messages matching the query where the user is
// sender or recipient, ascending by creation time.
func (i *Index) Search(ctx context.Context, userID, query string, limit int) ([]domain.Message, error) {
	reader, err := i.writer.Reader()
	if err != nil {
		return nil, err
	}
	defer func() { _ = reader.Close() }()

	participant := bluge.NewBooleanQuery()
	participant.AddShould(bluge.NewTermQuery(userID).SetField("sender_id"))
	participant.AddShould(bluge.NewTermQuery(userID).SetField("recipient_id"))
	participant.SetMinShould(1)

	q := bluge.NewBooleanQuery()
	q.AddMust(bluge.NewMatchQuery(query).SetField("content"))
	q.AddMust(participant)

	iter, err := reader.Search(ctx, bluge.NewTopNSearch(limit, q))
	if err != nil {
		return nil, err
	}

	var messages []domain.Message
	match, err := iter.Next()
	for err == nil && match != nil {
		var msg domain.Message
		visitErr := match.VisitStoredFields(func(field string, value []byte) bool {
			switch field {
			case "_id":
				msg.ID, _ = uuid.Parse(string(value))
			case "sender_id":
				msg.SenderID = string(value)
			case "recipient_id":
				msg.RecipientID = string(value)
			case "content":
				msg.Content = string(value)
			case "created_at":
				msg.CreatedAt, _ = time.Parse(time.RFC3339Nano, string(value))
			}
			return true
		})
		if visitErr != nil {
			return nil, visitErr
		}
		messages = append(messages, msg)
		match, err = iter.Next()
	}
	if err != nil {
		return nil, err
	}

	sort.Slice(messages, func(a, b int) bool {
		return messages[a].CreatedAt.Before(messages[b].CreatedAt)
	})
	return messages, nil
}
