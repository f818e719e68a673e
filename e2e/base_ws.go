package e2e

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http/httptest"
	"net/url"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/suite"

	"chat-relay/repositories"
	"chat-relay/runtime"
	"chat-relay/transport/ws"
)

// BaseWsSuite wires a full relay (WebSocket edge, registry, cache, badger
// store) and gives scenarios typed helpers over raw frames. RELAY_ADDR
// points the suite at an external deployment instead.
type BaseWsSuite struct {
	suite.Suite
	Config Config

	db     *badger.DB
	server *httptest.Server
}

func (s *BaseWsSuite) SetupSuite() {
	cfg, err := LoadConfig()
	s.Require().NoError(err)
	s.Config = cfg

	if s.Config.RelayAddr != "" {
		return
	}

	log := slog.Default()
	s.db, err = badger.Open(badger.DefaultOptions(s.T().TempDir()).
		WithLoggingLevel(badger.ERROR))
	s.Require().NoError(err)

	registry := runtime.NewRegistry()
	cache := runtime.NewHistoryCache()
	store := repositories.NewMessageRepository(s.db, log)
	relay := runtime.NewRelay(log, registry, cache, store, nil, nil, nil, 10)

	s.server = httptest.NewServer(ws.NewServer(log, relay, "", s.Config.BufferSize, time.Second))
	s.Config.RelayAddr = strings.TrimPrefix(s.server.URL, "http://")
}

func (s *BaseWsSuite) TearDownSuite() {
	if s.server != nil {
		s.server.Close()
	}
	if s.db != nil {
		_ = s.db.Close()
	}
}

// Dial opens one client connection; callers own its lifecycle.
func (s *BaseWsSuite) Dial() *WsClient {
	target := url.URL{Scheme: "ws", Host: s.Config.RelayAddr, Path: "/ws"}
	conn, resp, err := websocket.DefaultDialer.Dial(target.String(), nil)
	if resp != nil {
		defer func() { _ = resp.Body.Close() }()
	}
	s.Require().NoError(err)
	return &WsClient{suite: s, conn: conn}
}

// WsClient wraps one connection with envelope-level send and receive.
type WsClient struct {
	suite *BaseWsSuite
	conn  *websocket.Conn
}

func (c *WsClient) Close() {
	_ = c.conn.Close()
}

func (c *WsClient) Emit(event string, payload any) {
	data, err := json.Marshal(payload)
	c.suite.Require().NoError(err)
	c.suite.Require().NoError(c.conn.WriteJSON(ws.Envelope{Event: event, Data: data}))
}

// WaitFor reads frames until one carries the wanted event name, discarding
// everything else (presence broadcasts interleave freely with replies).
func (c *WsClient) WaitFor(event string) json.RawMessage {
	deadline := time.Now().Add(c.suite.Config.ReadTimeout)
	for {
		c.suite.Require().NoError(c.conn.SetReadDeadline(deadline))
		_, data, err := c.conn.ReadMessage()
		c.suite.Require().NoError(err, "waiting for %q", event)

		var env ws.Envelope
		c.suite.Require().NoError(json.Unmarshal(data, &env))
		if env.Event == event {
			return env.Data
		}
	}
}

// WaitForInto decodes the matching frame's payload into out.
func (c *WsClient) WaitForInto(event string, out any) {
	data := c.WaitFor(event)
	c.suite.Require().NoError(json.Unmarshal(data, out),
		fmt.Sprintf("decoding %q payload", event))
}
