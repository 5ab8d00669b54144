// Package runtime owns the relay engine and its backing registries. The
// relay is the only writer: every inbound event is applied by a single run
// loop, which linearizes session, directory and viewing-field mutation.
package runtime

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/abadojack/whatlanggo"
	"github.com/google/uuid"
	"github.com/samber/lo"

	"care-chat/contract"
	"care-chat/domain"
	"care-chat/domain/event"
	"care-chat/moderation"
)

// connectCommand and disconnectCommand are transport-originated and carry
// the delivery sink, so they live here rather than in domain. disconnect
// carries its sink so a superseded socket's teardown can be told apart from
// the live replacement's.
type connectCommand struct {
	userID string
	role   domain.Role
	sink   contract.EventSink
}

type disconnectCommand struct {
	userID string
	sink   contract.EventSink
}

func (c connectCommand) Sender() string    { return c.userID }
func (c disconnectCommand) Sender() string { return c.userID }

type Relay struct {
	log         *slog.Logger
	doctorID    string
	connections *Connections
	sessions    *Sessions
	patients    *Directory
	moderator   *moderation.Moderator
	commands    chan domain.Command
	sinks       []contract.EventSink
}

// NewRelay wires the engine. moderator may be nil, in which case message
// bodies pass through untouched.
func NewRelay(log *slog.Logger, doctorID string, store contract.HistoryStore,
	moderator *moderation.Moderator, bufferSize int) *Relay {
	return &Relay{
		log:         log,
		doctorID:    doctorID,
		connections: NewConnections(),
		sessions:    NewSessions(store),
		patients:    NewDirectory(doctorID),
		moderator:   moderator,
		commands:    make(chan domain.Command, bufferSize),
	}
}

// Add registers permanent sinks fed with every broadcast event, such as the
// search indexer.
func (r *Relay) Add(sinks ...contract.EventSink) {
	r.sinks = append(r.sinks, sinks...)
}

func (r *Relay) Connect(userID string, role domain.Role, sink contract.EventSink) {
	r.Dispatch(connectCommand{userID: userID, role: role, sink: sink})
}

func (r *Relay) Disconnect(userID string, sink contract.EventSink) {
	r.Dispatch(disconnectCommand{userID: userID, sink: sink})
}

// Dispatch submits a command to the run loop. Non-blocking: when the
// channel is full the command is dropped with a warning, never stalling a
// transport goroutine.
func (r *Relay) Dispatch(cmd domain.Command) {
	select {
	case r.commands <- cmd:
	default:
		r.log.Warn("Command channel full, dropping command", "sender", cmd.Sender())
	}
}

// Run consumes commands until the context is canceled. Each handler runs to
// completion; a malformed or unknown-session command is dropped wholesale.
func (r *Relay) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			r.log.Debug("Stopping relay loop")
			return ctx.Err()
		case cmd, ok := <-r.commands:
			if !ok {
				return nil
			}
			r.apply(ctx, cmd)
		}
	}
}

func (r *Relay) apply(ctx context.Context, cmd domain.Command) {
	switch c := cmd.(type) {
	case connectCommand:
		r.handleConnect(ctx, c)
	case disconnectCommand:
		r.handleDisconnect(ctx, c)
	case domain.JoinChatCommand:
		r.handleJoinChat(ctx, c)
	case domain.PostMessageCommand:
		r.handlePostMessage(ctx, c)
	case domain.ViewingChatCommand:
		r.handleViewingChat(ctx, c)
	case domain.TypingCommand:
		r.handleTyping(ctx, c)
	case domain.MarkAsReadCommand:
		r.handleMarkAsRead(ctx, c)
	default:
		r.log.Warn("Unknown command type", "sender", cmd.Sender())
	}
}

func (r *Relay) handleConnect(ctx context.Context, cmd connectCommand) {
	r.connections.Register(cmd.userID, cmd.role, cmd.sink)
	r.log.Info("User connected", "user_id", cmd.userID, "role", cmd.role)

	switch cmd.role {
	case domain.RoleDoctor:
		// Initial sync, then resume broadcasts for every existing session.
		r.emit(ctx, cmd.userID, event.PatientsList{Patients: r.patients.All()})
		for _, chatID := range r.sessions.IDs() {
			r.sessions.Join(chatID, cmd.userID)
		}
	case domain.RolePatient:
		summary := r.patients.Ensure(cmd.userID)
		r.emitToDoctor(ctx, event.NewPatient{Patient: summary})
	}
}

func (r *Relay) handleDisconnect(ctx context.Context, cmd disconnectCommand) {
	conn, ok := r.connections.Lookup(cmd.userID)
	if !ok {
		return
	}
	// On reconnect the replaced socket's teardown may be processed after
	// the replacement registered. Only the currently registered sink may
	// unregister, leave rooms or flip presence.
	if conn.Sink != cmd.sink {
		r.log.Debug("Stale disconnect ignored", "user_id", cmd.userID)
		return
	}
	r.connections.Unregister(cmd.userID)
	r.sessions.Leave(cmd.userID)
	r.log.Info("User disconnected", "user_id", cmd.userID)

	if conn.Role != domain.RolePatient {
		return
	}
	if summary, known := r.patients.SetOffline(cmd.userID); known {
		r.emitToDoctor(ctx, event.PatientUpdated{Patient: summary})
	}
}

func (r *Relay) handleJoinChat(ctx context.Context, cmd domain.JoinChatCommand) {
	// The wire doctorId is ignored: there is a single fixed counterpart.
	session := r.sessions.GetOrCreate(cmd.PatientID, r.doctorID)
	r.sessions.Join(session.ID, cmd.UserID)

	history, err := r.sessions.History(session.ID)
	if err != nil {
		r.log.Error("Failed to load history", "chat_id", session.ID, "error", err)
		return
	}
	r.emit(ctx, cmd.UserID, event.PreviousMessages{ChatID: session.ID, Messages: history})
	r.log.Info(fmt.Sprintf("User %s joined chat %s", cmd.UserID, session.ID))
}

func (r *Relay) handlePostMessage(ctx context.Context, cmd domain.PostMessageCommand) {
	if !r.sessions.Exists(cmd.ChatID) {
		r.log.Warn("Message for unknown session dropped", "chat_id", cmd.ChatID, "sender", cmd.UserID)
		return
	}

	role := domain.RolePatient
	if conn, ok := r.connections.Lookup(cmd.UserID); ok {
		role = conn.Role
	}

	text := cmd.Text
	if r.moderator != nil {
		censored, found := r.moderator.Censor(text)
		if len(found) > 0 {
			lang := whatlanggo.Detect(text).Lang.Iso6391()
			r.log.Warn("Message censored",
				"chat_id", cmd.ChatID,
				"sender", cmd.UserID,
				"words", found,
				"lang", lang)
			text = censored
		}
	}

	timestamp := cmd.Timestamp
	if timestamp.IsZero() {
		timestamp = time.Now().UTC()
	}
	msg := domain.Message{
		ID:         uuid.NewString(),
		Text:       text,
		SenderID:   cmd.UserID,
		SenderRole: role,
		Timestamp:  timestamp,
	}
	if err := r.sessions.Append(cmd.ChatID, msg); err != nil {
		r.log.Error("Failed to append message", "chat_id", cmd.ChatID, "error", err)
		return
	}

	doctorIsViewing := r.connections.Viewing(r.doctorID) == cmd.ChatID
	summary, known := r.patients.RecordMessage(
		cmd.ChatID.PatientID(), text, role == domain.RolePatient, doctorIsViewing)
	if known {
		r.emitToDoctor(ctx, event.PatientUpdated{Patient: summary})
	}

	// Every member receives the message, the author included.
	r.broadcast(ctx, cmd.ChatID, event.MessagePosted{ChatID: cmd.ChatID, Message: msg})
}

func (r *Relay) handleViewingChat(ctx context.Context, cmd domain.ViewingChatCommand) {
	conn, ok := r.connections.Lookup(cmd.UserID)
	if !ok || conn.Role != domain.RoleDoctor {
		r.log.Debug("viewingChat from non-doctor dropped", "user_id", cmd.UserID)
		return
	}
	r.connections.SetViewing(cmd.UserID, cmd.ChatID)

	if summary, known := r.patients.ResetUnread(cmd.ChatID.PatientID()); known {
		r.emit(ctx, cmd.UserID, event.PatientUpdated{Patient: summary})
	}
}

func (r *Relay) handleTyping(ctx context.Context, cmd domain.TypingCommand) {
	// Pure forwarding, sender excluded, nothing retained. An unknown
	// session has no members, so this degrades to a no-op.
	r.broadcast(ctx, cmd.ChatID, event.Typing{
		ChatID:   cmd.ChatID,
		UserID:   cmd.UserID,
		IsTyping: cmd.IsTyping,
	}, cmd.UserID)
}

func (r *Relay) handleMarkAsRead(ctx context.Context, cmd domain.MarkAsReadCommand) {
	affected, err := r.sessions.MarkRead(cmd.ChatID, cmd.MessageIDs, cmd.UserID)
	if err != nil {
		r.log.Warn("markAsRead for unknown session dropped", "chat_id", cmd.ChatID, "error", err)
		return
	}
	r.log.Debug("Messages marked read", "chat_id", cmd.ChatID, "affected", len(affected))

	// The requested ids are echoed as-is; receivers tolerate already-read
	// entries.
	r.broadcast(ctx, cmd.ChatID, event.MessagesRead{
		ChatID:     cmd.ChatID,
		MessageIDs: cmd.MessageIDs,
		ReadBy:     cmd.UserID,
	}, cmd.UserID)
}

// emit delivers an event to one connection. Fire-and-forget: a slow or dead
// consumer is the sink's problem, never the loop's.
func (r *Relay) emit(ctx context.Context, userID string, evt event.DomainEvent) {
	conn, ok := r.connections.Lookup(userID)
	if !ok {
		return
	}
	if err := conn.Sink.Consume(ctx, evt); err != nil {
		r.log.Warn("Failed to deliver event", "user_id", userID, "event", evt.Name(), "error", err)
	}
}

func (r *Relay) emitToDoctor(ctx context.Context, evt event.DomainEvent) {
	r.emit(ctx, r.doctorID, evt)
}

// broadcast fans an event to every session member except the excluded ids,
// then to the permanent sinks.
func (r *Relay) broadcast(ctx context.Context, chatID domain.ChatID, evt event.DomainEvent, exclude ...string) {
	for _, userID := range r.sessions.Members(chatID) {
		if lo.Contains(exclude, userID) {
			continue
		}
		r.emit(ctx, userID, evt)
	}
	for _, sink := range r.sinks {
		if err := sink.Consume(ctx, evt); err != nil {
			r.log.Warn("Permanent sink rejected event", "event", evt.Name(), "error", err)
		}
	}
}
