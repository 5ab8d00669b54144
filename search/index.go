// Package search maintains a full-text index over relayed messages. The
// Indexer is a permanent relay sink: it observes every broadcast and
// indexes message events, ignoring the rest.
package search

import (
	"context"
	"log/slog"

	"github.com/blugelabs/bluge"

	"care-chat/domain/event"
)

type Indexer struct {
	writer *bluge.Writer
	log    *slog.Logger
}

func NewIndexer(writer *bluge.Writer, log *slog.Logger) *Indexer {
	return &Indexer{writer: writer, log: log}
}

// Consume indexes MessagePosted events. Indexing failures are logged and
// swallowed: search is an auxiliary view, never a reason to disturb the
// relay.
func (i *Indexer) Consume(_ context.Context, e event.DomainEvent) error {
	posted, ok := e.(event.MessagePosted)
	if !ok {
		return nil
	}

	msg := posted.Message
	doc := bluge.NewDocument(msg.ID).
		AddField(bluge.NewKeywordField("chatId", string(posted.ChatID)).StoreValue()).
		AddField(bluge.NewTextField("text", msg.Text).StoreValue()).
		AddField(bluge.NewKeywordField("sender", msg.SenderID).StoreValue()).
		AddField(bluge.NewDateTimeField("timestamp", msg.Timestamp))

	if err := i.writer.Update(doc.ID(), doc); err != nil {
		i.log.Error("Failed to index message", "message_id", msg.ID, "error", err)
	}
	return nil
}

// Hit is one search result, rebuilt from stored fields.
type Hit struct {
	MessageID string `json:"messageId"`
	ChatID    string `json:"chatId"`
	Sender    string `json:"senderId"`
	Text      string `json:"text"`
}

// Search runs a match query over message bodies, optionally restricted to
// one chat.
func (i *Indexer) Search(ctx context.Context, chatID, terms string, limit int) ([]Hit, error) {
	reader, err := i.writer.Reader()
	if err != nil {
		return nil, err
	}
	defer reader.Close()

	query := bluge.NewBooleanQuery().
		AddMust(bluge.NewMatchQuery(terms).SetField("text"))
	if chatID != "" {
		query.AddMust(bluge.NewTermQuery(chatID).SetField("chatId"))
	}

	iterator, err := reader.Search(ctx, bluge.NewTopNSearch(limit, query))
	if err != nil {
		return nil, err
	}

	var hits []Hit
	for {
		match, err := iterator.Next()
		if err != nil {
			return nil, err
		}
		if match == nil {
			return hits, nil
		}

		var hit Hit
		err = match.VisitStoredFields(func(field string, value []byte) bool {
			switch field {
			case "_id":
				hit.MessageID = string(value)
			case "chatId":
				hit.ChatID = string(value)
			case "sender":
				hit.Sender = string(value)
			case "text":
				hit.Text = string(value)
			}
			return true
		})
		if err != nil {
			return nil, err
		}
		hits = append(hits, hit)
	}
}
