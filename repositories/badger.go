package repositories

import (
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/dgraph-io/badger/v4"

	"care-chat/domain"
)

// BadgerHistory is the persistent HistoryStore variant. Protocol semantics
// are identical to MemoryHistory; only durability changes.
type BadgerHistory struct {
	db  *badger.DB
	log *slog.Logger
}

func NewBadgerHistory(db *badger.DB, log *slog.Logger) *BadgerHistory {
	return &BadgerHistory{db: db, log: log}
}

// messageKey builds "msg:{chatId}:{seq_padded}:{id}". The sequence is
// assigned at append time, so key order is insertion order regardless of the
// client-supplied timestamp kept in the value.
func messageKey(chatID domain.ChatID, seq uint64, id string) []byte {
	return []byte(fmt.Sprintf("msg:%s:%019d:%s", chatID, seq, id))
}

func chatPrefix(chatID domain.ChatID) []byte {
	return []byte(fmt.Sprintf("msg:%s:", chatID))
}

func counterKey(chatID domain.ChatID) []byte {
	return []byte(fmt.Sprintf("cnt:%s", chatID))
}

// nextSeq bumps the per-chat counter inside the append transaction, which
// keeps the sequence gap-free and strictly increasing.
func nextSeq(txn *badger.Txn, chatID domain.ChatID) (uint64, error) {
	var seq uint64
	item, err := txn.Get(counterKey(chatID))
	switch {
	case errors.Is(err, badger.ErrKeyNotFound):
	case err != nil:
		return 0, err
	default:
		err = item.Value(func(value []byte) error {
			seq = binary.BigEndian.Uint64(value)
			return nil
		})
		if err != nil {
			return 0, err
		}
	}

	seq++
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], seq)
	if err := txn.Set(counterKey(chatID), buf[:]); err != nil {
		return 0, err
	}
	return seq, nil
}

func (b *BadgerHistory) Append(chatID domain.ChatID, msg domain.Message) error {
	bytes, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	return b.db.Update(func(txn *badger.Txn) error {
		seq, err := nextSeq(txn, chatID)
		if err != nil {
			return err
		}
		return txn.Set(messageKey(chatID, seq, msg.ID), bytes)
	})
}

// History scans the chat prefix in key order, which is append order thanks
// to the padded sequence in the key.
func (b *BadgerHistory) History(chatID domain.ChatID) ([]domain.Message, error) {
	var messages []domain.Message
	err := b.db.View(func(txn *badger.Txn) error {
		prefix := chatPrefix(chatID)
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			err := it.Item().Value(func(value []byte) error {
				var msg domain.Message
				if err := json.Unmarshal(value, &msg); err != nil {
					return err
				}
				messages = append(messages, msg)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	return messages, err
}

// MarkRead rewrites the affected entries in place. The key embeds the
// original sequence, so flipping the flag never reorders history.
func (b *BadgerHistory) MarkRead(chatID domain.ChatID, messageIDs []string, excludeSenderID string) ([]string, error) {
	wanted := make(map[string]struct{}, len(messageIDs))
	for _, id := range messageIDs {
		wanted[id] = struct{}{}
	}

	var affected []string
	err := b.db.Update(func(txn *badger.Txn) error {
		prefix := chatPrefix(chatID)
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			item := it.Item()
			var msg domain.Message
			err := item.Value(func(value []byte) error {
				return json.Unmarshal(value, &msg)
			})
			if err != nil {
				return err
			}
			if _, ok := wanted[msg.ID]; !ok {
				continue
			}
			if msg.SenderID == excludeSenderID || msg.Read {
				continue
			}
			msg.Read = true
			bytes, err := json.Marshal(msg)
			if err != nil {
				return err
			}
			if err := txn.Set(item.KeyCopy(nil), bytes); err != nil {
				return err
			}
			affected = append(affected, msg.ID)
		}
		return nil
	})
	return affected, err
}
