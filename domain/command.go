package domain

import "time"

// Command is an inbound intent submitted by a connection. Every command is
// applied by the relay's single run loop, which is the serialization point
// for all registry mutation.
type Command interface {
	Sender() string
}

type JoinChatCommand struct {
	UserID    string
	PatientID string
	// DoctorID is accepted on the wire but ignored: the fixed doctor
	// identity is always used.
	DoctorID string
}

type PostMessageCommand struct {
	UserID    string
	ChatID    ChatID
	Text      string
	Timestamp time.Time
}

type ViewingChatCommand struct {
	UserID string
	ChatID ChatID
}

type TypingCommand struct {
	UserID   string
	ChatID   ChatID
	IsTyping bool
}

type MarkAsReadCommand struct {
	UserID     string
	ChatID     ChatID
	MessageIDs []string
}

func (c JoinChatCommand) Sender() string    { return c.UserID }
func (c PostMessageCommand) Sender() string { return c.UserID }
func (c ViewingChatCommand) Sender() string { return c.UserID }
func (c TypingCommand) Sender() string      { return c.UserID }
func (c MarkAsReadCommand) Sender() string  { return c.UserID }
