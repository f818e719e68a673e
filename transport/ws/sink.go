package ws

import (
	"context"

	"chat-relay/domain/event"
)

// Sink is the relay-facing side of one WebSocket connection. Events land in
// a buffered channel drained by the connection's writer goroutine.
type Sink struct {
	Events chan event.Outbound
}

func NewSink(bufferSize int) *Sink {
	return &Sink{Events: make(chan event.Outbound, bufferSize)}
}

// Consume is called by the relay. A full buffer drops the event instead of
// blocking delivery to everyone else; best-effort is the contract here.
func (s *Sink) Consume(ctx context.Context, e event.Outbound) error {
	select {
	case s.Events <- e:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	default:
		return nil
	}
}
