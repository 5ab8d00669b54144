package runtime

import (
	"sync"

	"care-chat/contract"
	"care-chat/domain"
	"care-chat/errors"
)

type Set map[string]struct{}

// Session is the persistent record of one patient/doctor conversation.
// Message history lives in the HistoryStore; the registry owns identity and
// membership.
type Session struct {
	ID        domain.ChatID
	PatientID string
	DoctorID  string
}

// Sessions is the session registry. Sessions are created lazily on first
// join and persist for the process lifetime; membership is connection-scoped
// and distinct from presence.
type Sessions struct {
	mu      sync.RWMutex
	store   contract.HistoryStore
	records map[domain.ChatID]*Session
	members map[domain.ChatID]Set
}

func NewSessions(store contract.HistoryStore) *Sessions {
	return &Sessions{
		store:   store,
		records: make(map[domain.ChatID]*Session),
		members: make(map[domain.ChatID]Set),
	}
}

// GetOrCreate derives the session identifier and creates the session with
// empty history and membership if it does not exist yet. Idempotent: the
// same pair always resolves to the same record.
func (s *Sessions) GetOrCreate(patientID, doctorID string) *Session {
	chatID := domain.DeriveChatID(patientID, doctorID)

	s.mu.Lock()
	defer s.mu.Unlock()
	if session, ok := s.records[chatID]; ok {
		return session
	}
	session := &Session{ID: chatID, PatientID: patientID, DoctorID: doctorID}
	s.records[chatID] = session
	s.members[chatID] = make(Set)
	return session
}

func (s *Sessions) Exists(chatID domain.ChatID) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.records[chatID]
	return ok
}

// IDs returns every known session identifier. Used to re-join a
// reconnecting doctor to all existing rooms.
func (s *Sessions) IDs() []domain.ChatID {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := make([]domain.ChatID, 0, len(s.records))
	for id := range s.records {
		ids = append(ids, id)
	}
	return ids
}

// Join adds a connection to the session's broadcast membership.
func (s *Sessions) Join(chatID domain.ChatID, userID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.members[chatID]; !ok {
		return
	}
	s.members[chatID][userID] = struct{}{}
}

// Leave drops the connection from every session's membership. Called on
// disconnect; the sessions themselves are untouched.
func (s *Sessions) Leave(userID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, members := range s.members {
		delete(members, userID)
	}
}

// Members returns the user ids currently joined to the session.
func (s *Sessions) Members(chatID domain.ChatID) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	members, ok := s.members[chatID]
	if !ok {
		return nil
	}
	ids := make([]string, 0, len(members))
	for id := range members {
		ids = append(ids, id)
	}
	return ids
}

// Append stores a message in the session history. It does not auto-create:
// join is the only creation trigger observable by clients, so an unknown
// session is a caller error.
func (s *Sessions) Append(chatID domain.ChatID, msg domain.Message) error {
	if !s.Exists(chatID) {
		return errors.ErrSessionNotFound
	}
	return s.store.Append(chatID, msg)
}

// History returns the session messages in append order.
func (s *Sessions) History(chatID domain.ChatID) ([]domain.Message, error) {
	return s.store.History(chatID)
}

// MarkRead delegates to the store and returns the ids actually affected.
func (s *Sessions) MarkRead(chatID domain.ChatID, messageIDs []string, excludeSenderID string) ([]string, error) {
	if !s.Exists(chatID) {
		return nil, errors.ErrSessionNotFound
	}
	return s.store.MarkRead(chatID, messageIDs, excludeSenderID)
}
