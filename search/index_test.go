package search

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/blugelabs/bluge"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"care-chat/domain"
	"care-chat/domain/event"
)

func newTestIndexer(t *testing.T) *Indexer {
	t.Helper()
	writer, err := bluge.OpenWriter(bluge.DefaultConfig(t.TempDir()))
	require.NoError(t, err)
	t.Cleanup(func() { _ = writer.Close() })
	return NewIndexer(writer, slog.Default())
}

func posted(chatID, sender, text string) event.MessagePosted {
	return event.MessagePosted{
		ChatID: domain.ChatID(chatID),
		Message: domain.Message{
			ID:        uuid.NewString(),
			Text:      text,
			SenderID:  sender,
			Timestamp: time.Now().UTC(),
		},
	}
}

func TestIndexer_Search_FindsByTerms(t *testing.T) {
	req := require.New(t)
	indexer := newTestIndexer(t)
	ctx := context.Background()

	req.NoError(indexer.Consume(ctx, posted("alice-main_doctor", "alice", "headache since monday")))
	req.NoError(indexer.Consume(ctx, posted("alice-main_doctor", "main_doctor", "take some rest")))

	hits, err := indexer.Search(ctx, "", "headache", 10)
	req.NoError(err)
	req.Len(hits, 1)
	req.Equal("alice", hits[0].Sender)
	req.Equal("headache since monday", hits[0].Text)
}

func TestIndexer_Search_RestrictsToChat(t *testing.T) {
	req := require.New(t)
	indexer := newTestIndexer(t)
	ctx := context.Background()

	req.NoError(indexer.Consume(ctx, posted("alice-main_doctor", "alice", "fever again")))
	req.NoError(indexer.Consume(ctx, posted("bob-main_doctor", "bob", "fever as well")))

	hits, err := indexer.Search(ctx, "bob-main_doctor", "fever", 10)
	req.NoError(err)
	req.Len(hits, 1)
	req.Equal("bob-main_doctor", hits[0].ChatID)
}

func TestIndexer_Consume_IgnoresOtherEvents(t *testing.T) {
	req := require.New(t)
	indexer := newTestIndexer(t)
	ctx := context.Background()

	req.NoError(indexer.Consume(ctx, event.Typing{ChatID: "alice-main_doctor", UserID: "alice", IsTyping: true}))

	hits, err := indexer.Search(ctx, "", "alice", 10)
	req.NoError(err)
	req.Empty(hits)
}
