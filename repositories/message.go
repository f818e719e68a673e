package repositories

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"

	"chat-relay/domain"
)

// MessageRepository persists chat messages in BadgerDB.
//
// Each message is written once per participant under the key
// "msg:{user_id}:{timestamp_padded}:{uuid}" to:
//  1. Ensure chronological sorting using 19-digit zero padding
//     (lexicographical order equals time order on a forward scan).
//  2. Prevent data loss by using the UUID as a collision disconnector if
//     two messages arrive at the same nanosecond.
//
// The double write trades disk for read simplicity: fetching a user's
// history is a single prefix scan, no secondary index.
type MessageRepository struct {
	db  *badger.DB
	log *slog.Logger
}

func NewMessageRepository(db *badger.DB, log *slog.Logger) *MessageRepository {
	return &MessageRepository{db: db, log: log}
}

// Append durably stores a new message and returns it with its assigned id
// and creation time (UTC).
func (m *MessageRepository) Append(ctx context.Context, senderID, recipientID, content string) (domain.Message, error) {
	if err := ctx.Err(); err != nil {
		return domain.Message{}, err
	}

	msg := domain.Message{
		ID:          uuid.New(),
		SenderID:    senderID,
		RecipientID: recipientID,
		Content:     content,
		CreatedAt:   time.Now().UTC(),
	}

	value, err := json.Marshal(msg)
	if err != nil {
		return domain.Message{}, fmt.Errorf("marshal failed: %w", err)
	}

	err = m.db.Update(func(txn *badger.Txn) error {
		if err := txn.Set(messageKey(senderID, msg), value); err != nil {
			return err
		}
		if senderID == recipientID {
			return nil
		}
		return txn.Set(messageKey(recipientID, msg), value)
	})
	if err != nil {
		return domain.Message{}, err
	}
	return msg, nil
}

// ListByParticipant retrieves every message where the user is sender or
// recipient using a prefix scan. Thanks to the padded timestamp in the key,
// messages come out naturally sorted ascending by creation time.
func (m *MessageRepository) ListByParticipant(ctx context.Context, userID string) ([]domain.Message, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var raw [][]byte
	err := m.db.View(func(txn *badger.Txn) error {
		prefix := []byte(fmt.Sprintf("msg:%s:", userID))
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			err := it.Item().Value(func(value []byte) error {
				buf := make([]byte, len(value))
				copy(buf, value)
				raw = append(raw, buf)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	messages := make([]domain.Message, 0, len(raw))
	for _, b := range raw {
		var msg domain.Message
		if err = json.Unmarshal(b, &msg); err != nil {
			return nil, err
		}
		messages = append(messages, msg)
	}
	return messages, nil
}

func messageKey(userID string, msg domain.Message) []byte {
	return []byte(fmt.Sprintf("msg:%s:%019d:%s", userID, msg.CreatedAt.UnixNano(), msg.ID))
}
