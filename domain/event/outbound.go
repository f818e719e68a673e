package event

import (
	"encoding/json"
	"time"

	"chat-relay/domain"
)

// Outbound is implemented by every event the relay emits towards a sink.
// EventName returns the wire name used in the transport envelope.
type Outbound interface {
	EventName() string
}

// Handshake echoes the connection handle back to a fresh connection.
type Handshake struct {
	SocketID domain.ConnectionID `json:"socketId"`
}

func (Handshake) EventName() string { return "socketId" }

// ChatHistory delivers the ordered history to a joining user.
type ChatHistory struct {
	Messages []domain.Message `json:"messages"`
}

func (ChatHistory) EventName() string { return "chat_history" }

// LoadedMessages answers an explicit load_messages request.
type LoadedMessages struct {
	Messages []domain.Message `json:"messages"`
}

func (LoadedMessages) EventName() string { return "load_messages" }

// ActiveUsers is the presence broadcast. Duplicates are expected when a
// user is connected from several devices.
type ActiveUsers struct {
	Users []string `json:"users"`
}

func (ActiveUsers) EventName() string { return "active_users" }

// MessageReceived is the direct delivery of one chat message.
type MessageReceived struct {
	SenderID  string    `json:"senderId"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"createdAt"`
}

func (MessageReceived) EventName() string { return "receive_message" }

// IncomingCall carries the opaque offer signal to the callee.
type IncomingCall struct {
	Signal json.RawMessage `json:"signal"`
	From   string          `json:"from"`
	Name   string          `json:"name"`
}

func (IncomingCall) EventName() string { return "incomingCall" }

// CallAnswered relays the answer payload back to the original caller.
type CallAnswered struct {
	To          string          `json:"to"`
	MediaType   string          `json:"mediaType"`
	MediaStatus bool            `json:"mediaStatus"`
	Signal      json.RawMessage `json:"signal"`
}

func (CallAnswered) EventName() string { return "callAnswered" }

// CallTerminated notifies the target that the peer hung up.
type CallTerminated struct{}

func (CallTerminated) EventName() string { return "callTerminated" }

// MediaStatusChanged announces a peer's mute/camera toggle.
type MediaStatusChanged struct {
	MediaType string `json:"mediaType"`
	IsActive  bool   `json:"isActive"`
}

func (MediaStatusChanged) EventName() string { return "mediaStatusChanged" }

// InCallMessageReceived is the in-call text channel delivery.
type InCallMessageReceived struct {
	Message    string `json:"message"`
	SenderName string `json:"senderName"`
}

func (InCallMessageReceived) EventName() string { return "receiveMessage" }

// SearchResults answers a search_messages request.
type SearchResults struct {
	Messages []domain.Message `json:"messages"`
}

func (SearchResults) EventName() string { return "search_results" }
