// Package domain contains core concepts of the relay.
// This file defines Message records and related rules.
// Messages are immutable once persisted.
package domain

import (
	"time"

	"github.com/google/uuid"
)

// Message represents an immutable chat message between two users.
// Ordering key is CreatedAt ascending. CreatedAt is assigned by the
// persistence gateway, in UTC.
type Message struct {
	ID          uuid.UUID `json:"id"`
	SenderID    string    `json:"sender_id"`
	RecipientID string    `json:"recipient_id"`
	Content     string    `json:"content"`
	CreatedAt   time.Time `json:"created_at"`
}
