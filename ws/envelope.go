package ws

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"

	"care-chat/domain"
	"care-chat/domain/event"
	"care-chat/errors"
)

var validate = validator.New()

// Envelope is the wire frame: a socket event name plus its payload.
type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

type joinChatPayload struct {
	PatientID string `json:"patientId" validate:"required"`
	DoctorID  string `json:"doctorId"`
}

type messagePayload struct {
	Text      string `json:"text" validate:"required"`
	ChatID    string `json:"chatId" validate:"required"`
	Timestamp string `json:"timestamp"`
}

type viewingChatPayload struct {
	ChatID string `json:"chatId" validate:"required"`
}

type typingPayload struct {
	ChatID   string `json:"chatId" validate:"required"`
	IsTyping bool   `json:"isTyping"`
}

type markAsReadPayload struct {
	ChatID     string   `json:"chatId" validate:"required"`
	MessageIDs []string `json:"messageIds" validate:"required"`
}

// DecodeCommand turns one inbound frame into a relay command. A frame with
// an unknown event name or a payload failing validation is a protocol
// violation: the caller logs and drops it, the connection lives on.
func DecodeCommand(userID string, raw []byte) (domain.Command, error) {
	var envelope Envelope
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return nil, fmt.Errorf("%w: %v", errors.ErrMalformedPayload, err)
	}

	switch envelope.Event {
	case "joinChat":
		var p joinChatPayload
		if err := decodePayload(envelope.Data, &p); err != nil {
			return nil, err
		}
		return domain.JoinChatCommand{UserID: userID, PatientID: p.PatientID, DoctorID: p.DoctorID}, nil

	case "message":
		var p messagePayload
		if err := decodePayload(envelope.Data, &p); err != nil {
			return nil, err
		}
		return domain.PostMessageCommand{
			UserID:    userID,
			ChatID:    domain.ChatID(p.ChatID),
			Text:      p.Text,
			Timestamp: parseTimestamp(p.Timestamp),
		}, nil

	case "viewingChat":
		var p viewingChatPayload
		if err := decodePayload(envelope.Data, &p); err != nil {
			return nil, err
		}
		return domain.ViewingChatCommand{UserID: userID, ChatID: domain.ChatID(p.ChatID)}, nil

	case "typing":
		var p typingPayload
		if err := decodePayload(envelope.Data, &p); err != nil {
			return nil, err
		}
		return domain.TypingCommand{UserID: userID, ChatID: domain.ChatID(p.ChatID), IsTyping: p.IsTyping}, nil

	case "markAsRead":
		var p markAsReadPayload
		if err := decodePayload(envelope.Data, &p); err != nil {
			return nil, err
		}
		return domain.MarkAsReadCommand{UserID: userID, ChatID: domain.ChatID(p.ChatID), MessageIDs: p.MessageIDs}, nil

	default:
		return nil, fmt.Errorf("%w: %q", errors.ErrUnknownEvent, envelope.Event)
	}
}

func decodePayload(data json.RawMessage, payload any) error {
	if err := json.Unmarshal(data, payload); err != nil {
		return fmt.Errorf("%w: %v", errors.ErrMalformedPayload, err)
	}
	if err := validate.Struct(payload); err != nil {
		return fmt.Errorf("%w: %v", errors.ErrMalformedPayload, err)
	}
	return nil
}

// parseTimestamp accepts an optional RFC3339 client timestamp. Anything
// else yields the zero time and the relay assigns its own.
func parseTimestamp(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}
	}
	return t
}

// EncodeEvent builds the outbound frame. Summary-carrying events are sent
// as the bare summary (or list), matching what existing clients expect.
func EncodeEvent(evt event.DomainEvent) ([]byte, error) {
	data, err := json.Marshal(wirePayload(evt))
	if err != nil {
		return nil, err
	}
	return json.Marshal(Envelope{Event: evt.Name(), Data: data})
}

func wirePayload(evt event.DomainEvent) any {
	switch e := evt.(type) {
	case event.PatientsList:
		return e.Patients
	case event.NewPatient:
		return e.Patient
	case event.PatientUpdated:
		return e.Patient
	default:
		return evt
	}
}
