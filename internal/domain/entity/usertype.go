// Package entity contains the core business objects of the project.
package entity

// UserType represents the role recorded on a user's profile.
type UserType string

const (
	// UserTypePatient indicates a patient account.
	UserTypePatient UserType = "patient"
	// UserTypeDoctor indicates a doctor account.
	UserTypeDoctor UserType = "doctor"
	// UserTypeAdmin indicates an administrator account.
	UserTypeAdmin UserType = "admin"
)

// String returns the string representation of the UserType.
func (t UserType) String() string {
	return string(t)
}

// IsValid checks if the UserType is a known value. Profiles carrying any
// other value are treated as malformed by consumers, never as a crash.
func (t UserType) IsValid() bool {
	switch t {
	case UserTypePatient, UserTypeDoctor, UserTypeAdmin:
		return true
	default:
		return false
	}
}
