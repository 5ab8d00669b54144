package runtime

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"care-chat/domain"
	"care-chat/domain/event"
)

type nopSink struct{}

func (nopSink) Consume(_ context.Context, _ event.DomainEvent) error { return nil }

func TestConnections_Register_And_Lookup(t *testing.T) {
	req := require.New(t)
	connections := NewConnections()

	// Given no connection exists
	_, ok := connections.Lookup("alice")
	req.False(ok)

	// When a patient registers
	connections.Register("alice", domain.RolePatient, nopSink{})

	// Then the entry is addressable
	conn, ok := connections.Lookup("alice")
	req.True(ok)
	req.Equal("alice", conn.UserID)
	req.Equal(domain.RolePatient, conn.Role)
}

func TestConnections_Reconnect_LastWriterWins(t *testing.T) {
	req := require.New(t)
	connections := NewConnections()
	first := nopSink{}
	second := nopSink{}

	connections.Register("alice", domain.RolePatient, first)
	connections.Register("alice", domain.RolePatient, second)

	conn, ok := connections.Lookup("alice")
	req.True(ok)
	req.Equal(second, conn.Sink)
}

func TestConnections_DoctorReconnect_DoesNotMigrateViewing(t *testing.T) {
	req := require.New(t)
	connections := NewConnections()

	// Given a doctor viewing a chat
	connections.Register("main_doctor", domain.RoleDoctor, nopSink{})
	connections.SetViewing("main_doctor", "alice-main_doctor")
	req.Equal(domain.ChatID("alice-main_doctor"), connections.Viewing("main_doctor"))

	// When the doctor reconnects
	connections.Register("main_doctor", domain.RoleDoctor, nopSink{})

	// Then the fresh connection starts with no session in view
	req.Equal(domain.ChatID(""), connections.Viewing("main_doctor"))
}

func TestConnections_Unregister_Idempotent(t *testing.T) {
	req := require.New(t)
	connections := NewConnections()

	connections.Register("alice", domain.RolePatient, nopSink{})
	connections.Unregister("alice")
	connections.Unregister("alice")

	_, ok := connections.Lookup("alice")
	req.False(ok)
	req.Equal(domain.ChatID(""), connections.Viewing("alice"))
}
