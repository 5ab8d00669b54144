// Package domain contains core concepts of the patient/doctor chat.
// This file defines Message and related rules.
// A Message is immutable once appended, except for its read flag.
package domain

import "time"

// Message is one chat entry, owned by exactly one session.
type Message struct {
	ID         string    `json:"id"`
	Text       string    `json:"text"`
	SenderID   string    `json:"senderId"`
	SenderRole Role      `json:"senderType"`
	Timestamp  time.Time `json:"timestamp"`
	Read       bool      `json:"isRead"`
}
