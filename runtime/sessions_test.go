package runtime

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"care-chat/domain"
	"care-chat/errors"
	"care-chat/repositories"
)

func TestSessions_GetOrCreate_Idempotent(t *testing.T) {
	req := require.New(t)
	sessions := NewSessions(repositories.NewMemoryHistory())

	first := sessions.GetOrCreate("alice", "main_doctor")
	second := sessions.GetOrCreate("alice", "main_doctor")

	// The same pair resolves to the same identifier and the same record
	req.Equal(domain.ChatID("alice-main_doctor"), first.ID)
	req.Same(first, second)
	req.True(sessions.Exists(first.ID))
}

func TestSessions_Append_UnknownSession(t *testing.T) {
	req := require.New(t)
	sessions := NewSessions(repositories.NewMemoryHistory())

	// Append does not auto-create: join is the only creation trigger
	err := sessions.Append("ghost-main_doctor", domain.Message{ID: uuid.NewString()})
	req.ErrorIs(err, errors.ErrSessionNotFound)
}

func TestSessions_History_PreservesAppendOrder(t *testing.T) {
	req := require.New(t)
	sessions := NewSessions(repositories.NewMemoryHistory())
	session := sessions.GetOrCreate("alice", "main_doctor")

	at := time.Now().UTC()
	for i, text := range []string{"first", "second", "third"} {
		err := sessions.Append(session.ID, domain.Message{
			ID:        uuid.NewString(),
			Text:      text,
			SenderID:  "alice",
			Timestamp: at.Add(time.Duration(i) * time.Second),
		})
		req.NoError(err)
	}

	history, err := sessions.History(session.ID)
	req.NoError(err)
	req.Len(history, 3)
	req.Equal("first", history[0].Text)
	req.Equal("second", history[1].Text)
	req.Equal("third", history[2].Text)
}

func TestSessions_Membership(t *testing.T) {
	req := require.New(t)
	sessions := NewSessions(repositories.NewMemoryHistory())
	session := sessions.GetOrCreate("alice", "main_doctor")

	// When two connections join and one leaves
	sessions.Join(session.ID, "alice")
	sessions.Join(session.ID, "main_doctor")
	sessions.Leave("alice")

	// Then only the other remains, and the session itself survives
	req.Equal([]string{"main_doctor"}, sessions.Members(session.ID))
	req.True(sessions.Exists(session.ID))
}

func TestSessions_Join_UnknownSession_NoOp(t *testing.T) {
	req := require.New(t)
	sessions := NewSessions(repositories.NewMemoryHistory())

	sessions.Join("ghost-main_doctor", "alice")
	req.Nil(sessions.Members("ghost-main_doctor"))
}

func TestSessions_MarkRead_ExcludesSender(t *testing.T) {
	req := require.New(t)
	sessions := NewSessions(repositories.NewMemoryHistory())
	session := sessions.GetOrCreate("alice", "main_doctor")

	fromAlice := domain.Message{ID: uuid.NewString(), SenderID: "alice"}
	fromDoctor := domain.Message{ID: uuid.NewString(), SenderID: "main_doctor"}
	req.NoError(sessions.Append(session.ID, fromAlice))
	req.NoError(sessions.Append(session.ID, fromDoctor))

	// When the doctor marks both as read
	affected, err := sessions.MarkRead(session.ID, []string{fromAlice.ID, fromDoctor.ID}, "main_doctor")
	req.NoError(err)

	// Then only the patient's message is affected
	req.Equal([]string{fromAlice.ID}, affected)

	// And re-invoking is idempotent
	affected, err = sessions.MarkRead(session.ID, []string{fromAlice.ID, fromDoctor.ID}, "main_doctor")
	req.NoError(err)
	req.Empty(affected)
}

func TestSessions_MarkRead_UnknownSession(t *testing.T) {
	req := require.New(t)
	sessions := NewSessions(repositories.NewMemoryHistory())

	_, err := sessions.MarkRead("ghost-main_doctor", []string{"m1"}, "alice")
	req.ErrorIs(err, errors.ErrSessionNotFound)
}
