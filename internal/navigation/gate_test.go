package navigation

import (
	"testing"

	"telecare/internal/backend/client"
	"telecare/internal/session"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func snapshotFor(user *client.User, status session.ProfileStatus, userType string) session.Snapshot {
	snap := session.Snapshot{User: user, Profile: session.ProfileState{Status: status}}
	if status == session.ProfileLoaded {
		var id uuid.UUID
		if user != nil {
			id = user.ID
		}
		snap.Profile.Profile = &client.Profile{UserID: id, FullName: "Test User", UserType: userType}
	}
	return snap
}

func TestRoute(t *testing.T) {
	user := &client.User{ID: uuid.New(), Email: "user@example.com"}

	tests := []struct {
		name string
		snap session.Snapshot
		want Screen
	}{
		{
			name: "no user routes to onboarding",
			snap: snapshotFor(nil, session.ProfileNotLoaded, ""),
			want: ScreenOnboarding,
		},
		{
			name: "profile not loaded stays on current screen",
			snap: snapshotFor(user, session.ProfileNotLoaded, ""),
			want: ScreenCurrent,
		},
		{
			name: "missing profile falls back to onboarding",
			snap: snapshotFor(user, session.ProfileMissing, ""),
			want: ScreenOnboarding,
		},
		{
			name: "patient routes to dashboard",
			snap: snapshotFor(user, session.ProfileLoaded, "patient"),
			want: ScreenDashboard,
		},
		{
			name: "doctor routes to doctor dashboard",
			snap: snapshotFor(user, session.ProfileLoaded, "doctor"),
			want: ScreenDoctorDashboard,
		},
		{
			name: "admin routes to admin dashboard",
			snap: snapshotFor(user, session.ProfileLoaded, "admin"),
			want: ScreenAdminDashboard,
		},
		{
			name: "unrecognized role falls back to onboarding",
			snap: snapshotFor(user, session.ProfileLoaded, "bogus"),
			want: ScreenOnboarding,
		},
		{
			name: "empty role falls back to onboarding",
			snap: snapshotFor(user, session.ProfileLoaded, ""),
			want: ScreenOnboarding,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Route(tt.snap))
		})
	}
}

func TestRouteIsIdempotent(t *testing.T) {
	user := &client.User{ID: uuid.New(), Email: "doc@example.com"}
	snap := snapshotFor(user, session.ProfileLoaded, "doctor")

	first := Route(snap)
	second := Route(snap)

	assert.Equal(t, first, second)
	assert.Equal(t, ScreenDoctorDashboard, first)
}
