package workers

import (
	"context"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"chat-relay/domain"
)

type recordingIndex struct {
	mu      sync.Mutex
	indexed []domain.Message
}

func (r *recordingIndex) Index(msg domain.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.indexed = append(r.indexed, msg)
	return nil
}

func (r *recordingIndex) Search(_ context.Context, _, _ string, _ int) ([]domain.Message, error) {
	return nil, nil
}

func (r *recordingIndex) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.indexed)
}

func TestIndexerWorker_Drains_Queue(t *testing.T) {
	req := require.New(t)
	index := &recordingIndex{}
	queue := make(chan domain.Message, 2)
	worker := NewIndexerWorker(index, queue, slog.Default())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = worker.Run(ctx) }()

	queue <- domain.Message{Content: "one"}
	queue <- domain.Message{Content: "two"}

	req.Eventually(func() bool { return index.count() == 2 }, 2*time.Second, 10*time.Millisecond)
}

func TestIndexerWorker_Stops_On_Closed_Queue(t *testing.T) {
	req := require.New(t)
	queue := make(chan domain.Message)
	worker := NewIndexerWorker(&recordingIndex{}, queue, slog.Default())

	done := make(chan error, 1)
	go func() { done <- worker.Run(context.Background()) }()
	close(queue)

	select {
	case err := <-done:
		req.NoError(err)
	case <-time.After(2 * time.Second):
		t.Fatal("worker did not stop on closed queue")
	}
}

func TestIndexerWorker_Stops_On_Cancellation(t *testing.T) {
	req := require.New(t)
	worker := NewIndexerWorker(&recordingIndex{}, make(chan domain.Message), slog.Default())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- worker.Run(ctx) }()
	cancel()

	select {
	case err := <-done:
		req.ErrorIs(err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("worker did not stop on cancellation")
	}
}
