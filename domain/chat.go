package domain

import "strings"

// ChatID identifies one patient/doctor conversation. It is derived, never
// stored: the same (patient, doctor) pair always yields the same ChatID.
// The "<patientId>-<doctorId>" format is wire-visible and must not change
// while existing clients depend on it.
type ChatID string

func DeriveChatID(patientID, doctorID string) ChatID {
	return ChatID(patientID + "-" + doctorID)
}

// PatientID extracts the patient part of a chat identifier.
func (c ChatID) PatientID() string {
	id, _, _ := strings.Cut(string(c), "-")
	return id
}
