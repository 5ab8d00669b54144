// Package event defines the outbound events the relay emits to connected
// clients. Event names and payload shapes are wire-visible.
package event

import "care-chat/domain"

// DomainEvent is anything the relay can push to a connection. Name is the
// event field of the wire envelope.
type DomainEvent interface {
	Name() string
}

// PatientsList is sent once to a doctor connection right after connect.
type PatientsList struct {
	Patients []domain.PatientSummary
}

// NewPatient notifies the doctor that a patient connected for the first time.
type NewPatient struct {
	Patient domain.PatientSummary
}

// PreviousMessages carries the full session history, sent to the joining
// connection only.
type PreviousMessages struct {
	ChatID   domain.ChatID    `json:"chatId"`
	Messages []domain.Message `json:"messages"`
}

// MessagePosted is broadcast to every session member, including the author.
// Clients dedup by message id.
type MessagePosted struct {
	ChatID  domain.ChatID  `json:"chatId"`
	Message domain.Message `json:"message"`
}

// PatientUpdated carries a refreshed summary to the doctor connection.
type PatientUpdated struct {
	Patient domain.PatientSummary
}

// Typing is forwarded to every other session member. Nothing is retained.
type Typing struct {
	ChatID   domain.ChatID `json:"chatId"`
	UserID   string        `json:"userId"`
	IsTyping bool          `json:"isTyping"`
}

// MessagesRead notifies the other session members of a read receipt.
type MessagesRead struct {
	ChatID     domain.ChatID `json:"chatId"`
	MessageIDs []string      `json:"messageIds"`
	ReadBy     string        `json:"readBy"`
}

func (PatientsList) Name() string     { return "patientsList" }
func (NewPatient) Name() string       { return "newPatient" }
func (PreviousMessages) Name() string { return "previousMessages" }
func (MessagePosted) Name() string    { return "message" }
func (PatientUpdated) Name() string   { return "patientUpdated" }
func (Typing) Name() string           { return "typing" }
func (MessagesRead) Name() string     { return "messagesRead" }
