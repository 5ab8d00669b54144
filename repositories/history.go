//go:generate go run go.uber.org/mock/mockgen -source=history.go -destination=../mocks/mock_history.go -package=mocks
package repositories

import (
	"sync"

	"care-chat/domain"
)

// MemoryHistory keeps session history for the process lifetime. This is the
// reference store: history is never truncated and is lost on restart.
type MemoryHistory struct {
	mu       sync.RWMutex
	messages map[domain.ChatID][]domain.Message
}

func NewMemoryHistory() *MemoryHistory {
	return &MemoryHistory{messages: make(map[domain.ChatID][]domain.Message)}
}

func (m *MemoryHistory) Append(chatID domain.ChatID, msg domain.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.messages[chatID] = append(m.messages[chatID], msg)
	return nil
}

// History returns the session messages in append order. The slice is a copy:
// callers never see later appends or hold a reference into the store.
func (m *MemoryHistory) History(chatID domain.ChatID) ([]domain.Message, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	stored := m.messages[chatID]
	out := make([]domain.Message, len(stored))
	copy(out, stored)
	return out, nil
}

// MarkRead flips read flags false->true for the listed ids, skipping the
// excluded sender's own messages. Ids already read or unknown are skipped,
// which makes re-invocation idempotent.
func (m *MemoryHistory) MarkRead(chatID domain.ChatID, messageIDs []string, excludeSenderID string) ([]string, error) {
	wanted := make(map[string]struct{}, len(messageIDs))
	for _, id := range messageIDs {
		wanted[id] = struct{}{}
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	var affected []string
	stored := m.messages[chatID]
	for i := range stored {
		if _, ok := wanted[stored[i].ID]; !ok {
			continue
		}
		if stored[i].SenderID == excludeSenderID || stored[i].Read {
			continue
		}
		stored[i].Read = true
		affected = append(affected, stored[i].ID)
	}
	return affected, nil
}
