package workers

import (
	"context"
	"log/slog"

	"chat-relay/contract"
	"chat-relay/domain"
)

// IndexerWorker drains the index queue into the search index, keeping
// indexing I/O off the relay's send path.
type IndexerWorker struct {
	index contract.MessageIndex
	queue <-chan domain.Message
	log   *slog.Logger
}

func NewIndexerWorker(index contract.MessageIndex, queue <-chan domain.Message, log *slog.Logger) *IndexerWorker {
	return &IndexerWorker{index: index, queue: queue, log: log}
}

func (w *IndexerWorker) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			w.log.Debug("Stopping worker")
			return ctx.Err()
		case msg, ok := <-w.queue:
			if !ok {
				return nil
			}
			if err := w.index.Index(msg); err != nil {
				w.log.Error("Failed to index message", "message_id", msg.ID, "error", err)
			}
		}
	}
}
