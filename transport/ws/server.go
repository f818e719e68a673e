// Package ws owns the WebSocket edge: it upgrades connections, decodes
// tagged envelopes into typed events, hands them to the relay, and writes
// outbound events back. The relay never sees a raw frame.
package ws

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"chat-relay/domain"
	"chat-relay/domain/event"
	"chat-relay/runtime"
)

type Server struct {
	log          *slog.Logger
	relay        *runtime.Relay
	validate     *validator.Validate
	upgrader     websocket.Upgrader
	bufferSize   int
	writeTimeout time.Duration
}

// NewServer builds the WebSocket handler. allowedOrigin restricts the
// handshake when non-empty; bufferSize is the per-connection outbound
// buffer (a full buffer drops events rather than stalling the relay).
func NewServer(log *slog.Logger, relay *runtime.Relay, allowedOrigin string,
	bufferSize int, writeTimeout time.Duration) *Server {
	return &Server{
		log:      log,
		relay:    relay,
		validate: validator.New(),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return allowedOrigin == "" || origin == "" || origin == allowedOrigin
			},
		},
		bufferSize:   bufferSize,
		writeTimeout: writeTimeout,
	}
}

// ServeHTTP runs one connection: handshake echo, then a read loop until the
// client goes away. Disconnect is always signaled to the relay, whether the
// close was clean or not.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warn("Upgrade failed", "remote", r.RemoteAddr, "error", err)
		return
	}
	defer func() { _ = conn.Close() }()

	connID := domain.ConnectionID(uuid.NewString())
	sink := NewSink(s.bufferSize)
	s.log.Info("Socket connected", "connection_id", connID)

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	go s.writeLoop(ctx, cancel, conn, sink)

	_ = sink.Consume(ctx, event.Handshake{SocketID: connID})

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			break
		}
		var env Envelope
		if err := json.Unmarshal(data, &env); err != nil {
			s.log.Warn("Malformed envelope ignored", "connection_id", connID, "error", err)
			continue
		}
		s.dispatch(ctx, connID, sink, env)
	}

	s.log.Info("Socket disconnected", "connection_id", connID)
	cancel()
	s.relay.HandleDisconnect(context.Background(), connID)
}

// writeLoop is the single writer for the connection, gorilla requires one.
func (s *Server) writeLoop(ctx context.Context, cancel context.CancelFunc,
	conn *websocket.Conn, sink *Sink) {
	for {
		select {
		case <-ctx.Done():
			return
		case e := <-sink.Events:
			env, err := encode(e.EventName(), e)
			if err != nil {
				s.log.Error("Failed to encode outbound event", "event", e.EventName(), "error", err)
				continue
			}
			_ = conn.SetWriteDeadline(time.Now().Add(s.writeTimeout))
			if err := conn.WriteJSON(env); err != nil {
				s.log.Debug("Write failed, closing connection", "error", err)
				cancel()
				return
			}
		}
	}
}

func (s *Server) dispatch(ctx context.Context, connID domain.ConnectionID, sink *Sink, env Envelope) {
	switch env.Event {
	case "join_chat":
		if cmd, err := decode[event.Join](s.validate, env.Data); err == nil {
			s.relay.HandleJoin(ctx, connID, sink, cmd)
		} else {
			s.reject(env.Event, connID, err)
		}
	case "send_message":
		if cmd, err := decode[event.SendMessage](s.validate, env.Data); err == nil {
			s.relay.HandleSend(ctx, cmd)
		} else {
			s.reject(env.Event, connID, err)
		}
	case "load_messages":
		if cmd, err := decode[event.LoadMessages](s.validate, env.Data); err == nil {
			s.relay.HandleLoadMessages(ctx, sink, cmd)
		} else {
			s.reject(env.Event, connID, err)
		}
	case "initiateCall":
		if cmd, err := decode[event.InitiateCall](s.validate, env.Data); err == nil {
			s.relay.HandleInitiateCall(ctx, cmd)
		} else {
			s.reject(env.Event, connID, err)
		}
	case "answerCall":
		if cmd, err := decode[event.AnswerCall](s.validate, env.Data); err == nil {
			s.relay.HandleAnswerCall(ctx, connID, cmd)
		} else {
			s.reject(env.Event, connID, err)
		}
	case "terminateCall":
		if cmd, err := decode[event.TerminateCall](s.validate, env.Data); err == nil {
			s.relay.HandleTerminateCall(ctx, cmd)
		} else {
			s.reject(env.Event, connID, err)
		}
	case "changeMediaStatus":
		if cmd, err := decode[event.ChangeMediaStatus](s.validate, env.Data); err == nil {
			s.relay.HandleChangeMediaStatus(ctx, connID, cmd)
		} else {
			s.reject(env.Event, connID, err)
		}
	case "sendMessage":
		if cmd, err := decode[event.InCallMessage](s.validate, env.Data); err == nil {
			s.relay.HandleInCallMessage(ctx, cmd)
		} else {
			s.reject(env.Event, connID, err)
		}
	case "search_messages":
		if cmd, err := decode[event.SearchMessages](s.validate, env.Data); err == nil {
			s.relay.HandleSearch(ctx, sink, cmd)
		} else {
			s.reject(env.Event, connID, err)
		}
	default:
		s.log.Warn("Unknown event ignored", "event", env.Event, "connection_id", connID)
	}
}

func (s *Server) reject(eventName string, connID domain.ConnectionID, err error) {
	s.log.Warn("Rejected malformed payload", "event", eventName, "connection_id", connID, "error", err)
}
