//go:generate go run go.uber.org/mock/mockgen -source=contract.go -destination=../mocks/mock_contract.go -package=mocks
package contract

import (
	"context"
	"reflect"

	"chat-relay/domain"
	"chat-relay/domain/event"
)

// EventSink is one side of a live connection: everything the relay emits
// for that connection goes through Consume. Implementations must not block
// the relay; buffering and drop policy belong to the sink.
type EventSink interface {
	Consume(ctx context.Context, e event.Outbound) error
}

// Registry tracks which connection belongs to which user identity.
type Registry interface {
	Register(conn domain.ConnectionID, userID string, sink EventSink)
	Unregister(conn domain.ConnectionID)
	OnlineUsers() []string
	// FindSink returns the sink of the first registered connection for the
	// identity, by registration order. Only that connection receives direct
	// messages; a known limitation carried over from the source system.
	FindSink(userID string) (EventSink, bool)
	Sinks(except ...domain.ConnectionID) []EventSink
	Len() int
}

// HistoryCache memoizes the ordered history per user so repeated joins
// avoid a persistence round trip.
type HistoryCache interface {
	Get(userID string) ([]domain.Message, bool)
	Put(userID string, messages []domain.Message)
	// Append adds a freshly persisted message to an existing entry and is a
	// no-op for users that were never cached.
	Append(userID string, msg domain.Message)
}

// MessageRepository is the persistence gateway for chat messages.
type MessageRepository interface {
	Append(ctx context.Context, senderID, recipientID, content string) (domain.Message, error)
	// ListByParticipant returns every message where the user is sender or
	// recipient, ascending by creation time.
	ListByParticipant(ctx context.Context, userID string) ([]domain.Message, error)
}

// MessageIndex is the full-text search collaborator.
type MessageIndex interface {
	Index(msg domain.Message) error
	Search(ctx context.Context, userID, query string, limit int) ([]domain.Message, error)
}

// Worker doesn't protect itself
// Can be silly, focused
type Worker interface {
	Run(ctx context.Context) error
}

type Supervisor interface {
	Add(worker ...Worker) Supervisor
	Run(ctx context.Context)
	Start(ctx context.Context, worker Worker)
	Stop()
}

// GetWorkerName uses reflection to retrieve the type name of the worker.
// Used for logging and supervision, avoiding manual naming in the Worker
// interface.
func GetWorkerName(w Worker) string {
	if w == nil {
		return "NilWorker"
	}
	t := reflect.TypeOf(w)
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t.Name()
}
