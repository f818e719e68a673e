// Package event defines the tagged variants exchanged with the transport.
// One type per wire event, with required fields enforced at the boundary.
// The relay never sees an untyped payload.
package event

import "encoding/json"

// Join is sent once per connection to enter the chat ("join_chat").
// The user id arrives already authenticated; the relay does not check it.
type Join struct {
	UserID string `json:"userId" validate:"required"`
}

// SendMessage carries a direct message intent ("send_message").
type SendMessage struct {
	SenderID    string `json:"senderId" validate:"required"`
	RecipientID string `json:"recipientId" validate:"required"`
	Message     string `json:"message" validate:"required"`
}

// LoadMessages requests the full history for a user ("load_messages").
type LoadMessages struct {
	UserID string `json:"userId" validate:"required"`
}

// InitiateCall starts call signaling towards a target ("initiateCall").
// Signal is opaque offer data, passed through without interpretation.
type InitiateCall struct {
	TargetID   string          `json:"targetId" validate:"required"`
	Signal     json.RawMessage `json:"signalData" validate:"required"`
	SenderID   string          `json:"senderId" validate:"required"`
	SenderName string          `json:"senderName"`
}

// AnswerCall accepts a call ("answerCall"). To is the original caller.
type AnswerCall struct {
	To          string          `json:"to" validate:"required"`
	MediaType   string          `json:"mediaType"`
	MediaStatus bool            `json:"mediaStatus"`
	Signal      json.RawMessage `json:"signal"`
}

// TerminateCall ends a call for the given target ("terminateCall").
type TerminateCall struct {
	TargetID string `json:"targetId" validate:"required"`
}

// ChangeMediaStatus announces a mute/camera toggle ("changeMediaStatus").
type ChangeMediaStatus struct {
	MediaType string `json:"mediaType" validate:"required"`
	IsActive  bool   `json:"isActive"`
}

// InCallMessage is the in-call text channel ("sendMessage").
type InCallMessage struct {
	TargetID   string `json:"targetId" validate:"required"`
	Message    string `json:"message" validate:"required"`
	SenderName string `json:"senderName"`
}

// SearchMessages queries the full-text index ("search_messages").
type SearchMessages struct {
	UserID string `json:"userId" validate:"required"`
	Query  string `json:"query" validate:"required"`
}
