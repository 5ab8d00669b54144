package domain

// PatientSummary is the doctor-facing aggregate of one patient's
// conversation: preview, unread counter and presence. Summaries are created
// on first connect and never deleted; a disconnected patient is marked
// offline instead.
type PatientSummary struct {
	ID          string `json:"id"`
	ChatID      ChatID `json:"chatId"`
	LastMessage string `json:"lastMessage"`
	UnreadCount int    `json:"unreadCount"`
	Online      bool   `json:"isOnline"`
}
