// Package navigation maps session state to the top-level screen the app
// should show. Route is a pure function, safe to re-evaluate on every state
// change without duplicate navigation side effects.
package navigation

import (
	"telecare/internal/domain/entity"
	"telecare/internal/session"
)

// Screen is a top-level destination.
type Screen string

const (
	// ScreenOnboarding is the signed-out entry point.
	ScreenOnboarding Screen = "onboarding"
	// ScreenDashboard is the patient home.
	ScreenDashboard Screen = "dashboard"
	// ScreenDoctorDashboard is the doctor home.
	ScreenDoctorDashboard Screen = "doctor_dashboard"
	// ScreenAdminDashboard is the admin home.
	ScreenAdminDashboard Screen = "admin_dashboard"
	// ScreenCurrent means stay where you are; the role is not known yet and
	// redirecting now would flash the wrong screen.
	ScreenCurrent Screen = "current"
)

// Route decides the reachable screen from the manager's snapshot.
//
// No user means Onboarding. A user whose profile has not been fetched yet
// stays put. A loaded profile routes by role, and anything unrecognized
// (including a missing row) falls back to Onboarding rather than crashing.
func Route(snap session.Snapshot) Screen {
	if snap.User == nil {
		return ScreenOnboarding
	}

	switch snap.Profile.Status {
	case session.ProfileNotLoaded:
		return ScreenCurrent
	case session.ProfileMissing:
		return ScreenOnboarding
	case session.ProfileLoaded:
	default:
		return ScreenCurrent
	}

	switch entity.UserType(snap.Profile.Profile.UserType) {
	case entity.UserTypeAdmin:
		return ScreenAdminDashboard
	case entity.UserTypeDoctor:
		return ScreenDoctorDashboard
	case entity.UserTypePatient:
		return ScreenDashboard
	default:
		return ScreenOnboarding
	}
}
