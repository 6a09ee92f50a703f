// Package session owns the authenticated-identity lifecycle for the client:
// who is signed in, what their profile says, and the reconciliation of both
// against the backend's auth-event stream.
package session

import (
	"telecare/internal/backend/client"
)

// ProfileStatus distinguishes "not fetched yet" from "confirmed absent".
type ProfileStatus int

const (
	// ProfileNotLoaded means no fetch has completed for the current user.
	ProfileNotLoaded ProfileStatus = iota
	// ProfileMissing means a fetch completed and found no row.
	ProfileMissing
	// ProfileLoaded means Profile holds the current row.
	ProfileLoaded
)

func (s ProfileStatus) String() string {
	switch s {
	case ProfileNotLoaded:
		return "not_loaded"
	case ProfileMissing:
		return "missing"
	case ProfileLoaded:
		return "loaded"
	default:
		return "unknown"
	}
}

// ProfileState is the tagged profile value held alongside the user.
type ProfileState struct {
	Status  ProfileStatus
	Profile *client.Profile
}

// Snapshot is one observable state of the manager. Profile is meaningful only
// while User is set; consumers must treat ProfileNotLoaded as "not yet
// known", not "user has no role".
type Snapshot struct {
	User    *client.User
	Profile ProfileState
	Loading bool
}

// SignedIn reports whether a user is present in the snapshot.
func (s Snapshot) SignedIn() bool {
	return s.User != nil
}
