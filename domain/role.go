package domain

// Role is the connection-time user type. Identities are caller-supplied,
// trust-on-connect: there is no authentication layer in front of this.
type Role string

const (
	RolePatient Role = "patient"
	RoleDoctor  Role = "doctor"
)

// ParseRole maps the userType query parameter to a Role.
// Anything that is not explicitly the doctor is a patient.
func ParseRole(s string) Role {
	if s == string(RoleDoctor) {
		return RoleDoctor
	}
	return RolePatient
}
