package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Netflix/go-env"
	"github.com/dgraph-io/badger/v4"
	"github.com/joho/godotenv"
	"github.com/mama165/sdk-go/logs"

	"chat-relay/contract"
	"chat-relay/domain"
	"chat-relay/internal"
	"chat-relay/moderation"
	"chat-relay/repositories"
	"chat-relay/runtime"
	"chat-relay/runtime/workers"
	"chat-relay/search"
	"chat-relay/transport/ws"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Fatal error: %v\n", err)
		os.Exit(1)
	}
}

// run initializes all components, manages the server lifecycle, and
// centralizes error reporting, so every defer (database close, index
// close) executes before the process exits.
func run() error {
	// 1. Configuration & Logger
	_ = godotenv.Load()
	var config Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	log := logs.GetLoggerFromString(config.LogLevel)

	// 2. Database (BadgerDB)
	db, err := badger.Open(badger.DefaultOptions(config.BadgerFilepath).
		WithLoggingLevel(badger.WARNING))
	if err != nil {
		return fmt.Errorf("database opening failed: %w", err)
	}
	defer func() {
		log.Info("Closing BadgerDB...")
		_ = db.Close()
	}()

	// 3. Optional collaborators: search index and moderator
	var index contract.MessageIndex
	var indexQueue chan domain.Message
	if config.BlugeFilepath != "" {
		blugeIndex, err := search.Open(config.BlugeFilepath)
		if err != nil {
			return fmt.Errorf("failed to open search index: %w", err)
		}
		defer func() { _ = blugeIndex.Close() }()
		index = blugeIndex
		indexQueue = make(chan domain.Message, config.IndexBufferSize)
	}

	var moderator *moderation.Moderator
	if config.CensoredDir != "" {
		replacement, err := CharacterRune(config.CharReplacement)
		if err != nil {
			return err
		}
		words, err := moderation.LoadWords(os.DirFS(config.CensoredDir), ".")
		if err != nil {
			return fmt.Errorf("failed to load censored words: %w", err)
		}
		log.Info(fmt.Sprintf("%d censored words loaded", len(words.Words)),
			"languages", words.Languages)
		moderator, err = moderation.NewModerator(words.Words, replacement)
		if err != nil {
			return err
		}
	}

	// 4. Core wiring
	registry := runtime.NewRegistry()
	cache := runtime.NewHistoryCache()
	messageRepository := repositories.NewMessageRepository(db, log)
	relay := runtime.NewRelay(log, registry, cache, messageRepository,
		moderator, index, indexQueue, config.SearchLimit)

	// 5. Supervised workers
	sup := workers.NewSupervisor(log, config.RestartInterval)
	sup.Add(workers.NewHeartbeatWorker(log, registry, config.HeartbeatInterval))
	if index != nil {
		sup.Add(workers.NewIndexerWorker(index, indexQueue, log))
	}

	// 6. Context & Signals
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go sup.Run(ctx)

	// 7. HTTP server: WebSocket endpoint plus a trivial liveness route
	wsServer := ws.NewServer(log, relay, config.AllowedOrigin,
		config.ConnectionBufferSize, config.WriteTimeout)

	mux := http.NewServeMux()
	mux.Handle("/ws", wsServer)
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "chat relay running")
	})

	if config.DebugPort > 0 {
		internal.StartDebugServer(db, config.DebugPort, "/inspect", nil, func() map[string]any {
			return map[string]any{
				"connections": registry.Len(),
				"time":        time.Now().UTC().Format(time.RFC822),
			}
		})
		log.Info("Debug inspector started", "port", config.DebugPort)
	}

	address := fmt.Sprintf("%s:%d", config.Host, config.Port)
	server := &http.Server{Addr: address, Handler: mux}

	errChan := make(chan error, 1)
	go func() {
		log.Info("Starting WebSocket server", "address", address, "at", time.Now().UTC())
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- fmt.Errorf("http server error: %w", err)
		}
	}()

	// 8. Wait for Stop or Error
	select {
	case <-ctx.Done():
		log.Info("Shutting down gracefully...")
	case err := <-errChan:
		return err
	}

	// 9. Final Cleanup
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = server.Shutdown(shutdownCtx)
	sup.Stop()
	log.Info("Program stopped cleanly")

	return nil
}
