package runtime

import (
	"context"
	"fmt"
	"log/slog"

	"chat-relay/contract"
	"chat-relay/domain"
	"chat-relay/domain/event"
	"chat-relay/moderation"
)

// Relay receives typed inbound events from the transport, updates the
// registry and cache, calls the persistence gateway, and forwards derived
// events to the right sinks. Call signaling is a pure pass-through: no
// session state is kept, a terminate or answer for a nonexistent call is
// simply relayed and the recipient ignores it.
type Relay struct {
	log         *slog.Logger
	registry    contract.Registry
	cache       contract.HistoryCache
	store       contract.MessageRepository
	moderator   *moderation.Moderator
	index       contract.MessageIndex
	indexQueue  chan<- domain.Message
	searchLimit int
}

// NewRelay wires the relay. moderator may be nil (content passes through
// untouched); index and indexQueue may be nil (search disabled).
func NewRelay(log *slog.Logger, registry contract.Registry, cache contract.HistoryCache,
	store contract.MessageRepository, moderator *moderation.Moderator,
	index contract.MessageIndex, indexQueue chan<- domain.Message, searchLimit int) *Relay {
	return &Relay{
		log:         log,
		registry:    registry,
		cache:       cache,
		store:       store,
		moderator:   moderator,
		index:       index,
		indexQueue:  indexQueue,
		searchLimit: searchLimit,
	}
}

// HandleJoin registers presence for the connection and delivers the user's
// history, from cache when possible. On a persistence failure nothing is
// emitted and the connection stays unregistered, as in the source system.
func (r *Relay) HandleJoin(ctx context.Context, conn domain.ConnectionID,
	sink contract.EventSink, cmd event.Join) {
	history, ok := r.cache.Get(cmd.UserID)
	if !ok {
		var err error
		history, err = r.store.ListByParticipant(ctx, cmd.UserID)
		if err != nil {
			r.log.Error("Error joining chat", "user_id", cmd.UserID, "error", err)
			return
		}
		r.cache.Put(cmd.UserID, history)
	}

	if err := sink.Consume(ctx, event.ChatHistory{Messages: history}); err != nil {
		r.log.Debug("History delivery failed", "user_id", cmd.UserID, "error", err)
	}

	r.registry.Register(conn, cmd.UserID, sink)
	r.broadcastPresence(ctx)
}

// HandleSend persists the message, keeps cached histories in sync, and
// delivers it to the recipient's first connection if online. Offline
// recipients are a silent drop: fire and forget, no queue, no retry.
func (r *Relay) HandleSend(ctx context.Context, cmd event.SendMessage) {
	content := cmd.Message
	if r.moderator != nil {
		lang := moderation.DetectLanguage(content)
		content = r.moderator.Censor(content)
		r.log.Debug("Message moderated", "lang", lang, "sender_id", cmd.SenderID)
	}

	msg, err := r.store.Append(ctx, cmd.SenderID, cmd.RecipientID, content)
	if err != nil {
		r.log.Error("Error creating message", "sender_id", cmd.SenderID, "error", err)
		return
	}

	r.cache.Append(cmd.SenderID, msg)
	r.cache.Append(cmd.RecipientID, msg)
	r.enqueueIndex(msg)

	sink, online := r.registry.FindSink(cmd.RecipientID)
	if !online {
		return
	}
	err = sink.Consume(ctx, event.MessageReceived{
		SenderID:  msg.SenderID,
		Message:   msg.Content,
		CreatedAt: msg.CreatedAt,
	})
	if err != nil {
		r.log.Debug("Message delivery failed", "recipient_id", cmd.RecipientID, "error", err)
	}
}

// HandleDisconnect drops the connection's presence entry and broadcasts the
// updated online set. Unknown connections still trigger the broadcast, as
// in the source system.
func (r *Relay) HandleDisconnect(ctx context.Context, conn domain.ConnectionID) {
	r.registry.Unregister(conn)
	r.broadcastPresence(ctx)
}

// HandleLoadMessages answers an explicit history request straight from the
// persistence gateway, bypassing the cache.
func (r *Relay) HandleLoadMessages(ctx context.Context, sink contract.EventSink, cmd event.LoadMessages) {
	messages, err := r.store.ListByParticipant(ctx, cmd.UserID)
	if err != nil {
		r.log.Error("Error loading messages", "user_id", cmd.UserID, "error", err)
		return
	}
	if err = sink.Consume(ctx, event.LoadedMessages{Messages: messages}); err != nil {
		r.log.Debug("History delivery failed", "user_id", cmd.UserID, "error", err)
	}
}

// HandleInitiateCall relays the opaque offer signal to the target.
func (r *Relay) HandleInitiateCall(ctx context.Context, cmd event.InitiateCall) {
	r.deliverTo(ctx, cmd.TargetID, event.IncomingCall{
		Signal: cmd.Signal,
		From:   cmd.SenderID,
		Name:   cmd.SenderName,
	})
}

// HandleAnswerCall broadcasts the answerer's media status to everyone else
// and relays the answer payload back to the original caller.
func (r *Relay) HandleAnswerCall(ctx context.Context, conn domain.ConnectionID, cmd event.AnswerCall) {
	r.broadcast(ctx, event.MediaStatusChanged{
		MediaType: cmd.MediaType,
		IsActive:  cmd.MediaStatus,
	}, conn)
	r.deliverTo(ctx, cmd.To, event.CallAnswered{
		To:          cmd.To,
		MediaType:   cmd.MediaType,
		MediaStatus: cmd.MediaStatus,
		Signal:      cmd.Signal,
	})
}

// HandleTerminateCall notifies the target that the peer hung up.
func (r *Relay) HandleTerminateCall(ctx context.Context, cmd event.TerminateCall) {
	r.deliverTo(ctx, cmd.TargetID, event.CallTerminated{})
}

// HandleChangeMediaStatus broadcasts a mute/camera toggle to all except the
// sender.
func (r *Relay) HandleChangeMediaStatus(ctx context.Context, conn domain.ConnectionID, cmd event.ChangeMediaStatus) {
	r.broadcast(ctx, event.MediaStatusChanged{
		MediaType: cmd.MediaType,
		IsActive:  cmd.IsActive,
	}, conn)
}

// HandleInCallMessage delivers the in-call text channel to the target.
func (r *Relay) HandleInCallMessage(ctx context.Context, cmd event.InCallMessage) {
	r.deliverTo(ctx, cmd.TargetID, event.InCallMessageReceived{
		Message:    cmd.Message,
		SenderName: cmd.SenderName,
	})
}

// HandleSearch answers a full-text query scoped to the requesting user.
func (r *Relay) HandleSearch(ctx context.Context, sink contract.EventSink, cmd event.SearchMessages) {
	if r.index == nil {
		r.log.Debug("Search requested but no index configured", "user_id", cmd.UserID)
		return
	}
	messages, err := r.index.Search(ctx, cmd.UserID, cmd.Query, r.searchLimit)
	if err != nil {
		r.log.Error("Error searching messages", "user_id", cmd.UserID, "error", err)
		return
	}
	if err = sink.Consume(ctx, event.SearchResults{Messages: messages}); err != nil {
		r.log.Debug("Search delivery failed", "user_id", cmd.UserID, "error", err)
	}
}

func (r *Relay) broadcastPresence(ctx context.Context) {
	r.broadcast(ctx, event.ActiveUsers{Users: r.registry.OnlineUsers()})
}

func (r *Relay) broadcast(ctx context.Context, e event.Outbound, except ...domain.ConnectionID) {
	for _, sink := range r.registry.Sinks(except...) {
		if err := sink.Consume(ctx, e); err != nil {
			r.log.Debug(fmt.Sprintf("Broadcast of %s dropped for one sink", e.EventName()), "error", err)
		}
	}
}

func (r *Relay) deliverTo(ctx context.Context, userID string, e event.Outbound) {
	sink, online := r.registry.FindSink(userID)
	if !online {
		r.log.Debug(fmt.Sprintf("Target offline, %s dropped", e.EventName()), "target_id", userID)
		return
	}
	if err := sink.Consume(ctx, e); err != nil {
		r.log.Debug(fmt.Sprintf("Delivery of %s failed", e.EventName()), "target_id", userID, "error", err)
	}
}

// enqueueIndex hands the message to the indexer worker without ever
// blocking the send path. The store stays authoritative; a dropped index
// entry only narrows search results.
func (r *Relay) enqueueIndex(msg domain.Message) {
	if r.indexQueue == nil {
		return
	}
	select {
	case r.indexQueue <- msg:
	default:
		r.log.Warn("Index queue full, message not indexed", "message_id", msg.ID)
	}
}
