package runtime

import (
	"sync"

	"care-chat/domain"
)

// Directory is the patient directory: the doctor-facing aggregate view of
// every patient ever seen by this process. Entries are never deleted; a
// disconnected patient is marked offline instead.
type Directory struct {
	mu        sync.RWMutex
	doctorID  string
	summaries map[string]*domain.PatientSummary
	order     []string
}

func NewDirectory(doctorID string) *Directory {
	return &Directory{
		doctorID:  doctorID,
		summaries: make(map[string]*domain.PatientSummary),
	}
}

// Ensure creates the summary on first sight, or flips an existing one back
// online: a reconnecting patient is online even if a summary pre-exists.
func (d *Directory) Ensure(patientID string) domain.PatientSummary {
	d.mu.Lock()
	defer d.mu.Unlock()
	if summary, ok := d.summaries[patientID]; ok {
		summary.Online = true
		return *summary
	}
	summary := &domain.PatientSummary{
		ID:     patientID,
		ChatID: domain.DeriveChatID(patientID, d.doctorID),
		Online: true,
	}
	d.summaries[patientID] = summary
	d.order = append(d.order, patientID)
	return *summary
}

// RecordMessage refreshes the preview and bumps the unread counter iff the
// message came from the patient while the doctor is not viewing the
// session. Returns false for an unknown patient.
func (d *Directory) RecordMessage(patientID, text string, fromPatient, doctorIsViewing bool) (domain.PatientSummary, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	summary, ok := d.summaries[patientID]
	if !ok {
		return domain.PatientSummary{}, false
	}
	summary.LastMessage = text
	if fromPatient && !doctorIsViewing {
		summary.UnreadCount++
	}
	return *summary, true
}

// ResetUnread zeroes the counter. Only an explicit viewingChat does this.
func (d *Directory) ResetUnread(patientID string) (domain.PatientSummary, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	summary, ok := d.summaries[patientID]
	if !ok {
		return domain.PatientSummary{}, false
	}
	summary.UnreadCount = 0
	return *summary, true
}

// SetOffline marks the patient offline; no-op for unknown patients.
func (d *Directory) SetOffline(patientID string) (domain.PatientSummary, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	summary, ok := d.summaries[patientID]
	if !ok {
		return domain.PatientSummary{}, false
	}
	summary.Online = false
	return *summary, true
}

// All returns the summaries in insertion order, for the initial doctor sync.
func (d *Directory) All() []domain.PatientSummary {
	d.mu.RLock()
	defer d.mu.RUnlock()
	out := make([]domain.PatientSummary, 0, len(d.order))
	for _, id := range d.order {
		out = append(out, *d.summaries[id])
	}
	return out
}
