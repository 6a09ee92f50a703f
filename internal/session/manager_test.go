package session_test

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"telecare/internal/backend/client"
	"telecare/internal/errors"
	"telecare/internal/session"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestManager(t *testing.T) (*session.Manager, *fakeAuth, *fakeProfiles) {
	t.Helper()

	auth := newFakeAuth()
	profiles := newFakeProfiles(func() uuid.UUID {
		if s := auth.Session(); s != nil {
			return s.User.ID
		}
		return uuid.Nil
	})
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	mgr := session.NewManager(auth, profiles, logger)
	t.Cleanup(mgr.Close)

	return mgr, auth, profiles
}

func waitForProfileStatus(t *testing.T, mgr *session.Manager, want session.ProfileStatus) {
	t.Helper()
	require.Eventually(t, func() bool {
		return mgr.Snapshot().Profile.Status == want
	}, time.Second, 5*time.Millisecond)
}

func TestManager_StartWithoutSessionIsAnonymous(t *testing.T) {
	mgr, _, _ := newTestManager(t)

	assert.True(t, mgr.Snapshot().Loading)

	mgr.Start()

	snap := mgr.Snapshot()
	assert.False(t, snap.Loading)
	assert.Nil(t, snap.User)
	assert.Equal(t, session.ProfileNotLoaded, snap.Profile.Status)
}

func TestManager_ProfileNeverPresentWithoutUser(t *testing.T) {
	mgr, auth, profiles := newTestManager(t)

	var mu sync.Mutex
	var violations int
	unsubscribe := mgr.Subscribe(func(snap session.Snapshot) {
		if snap.Profile.Status == session.ProfileLoaded && snap.User == nil {
			mu.Lock()
			violations++
			mu.Unlock()
		}
	})
	defer unsubscribe()

	mgr.Start()

	_, err := mgr.SignIn(context.Background(), "amy@example.com", "secret")
	require.NoError(t, err)
	waitForProfileStatus(t, mgr, session.ProfileMissing)

	_, err = profiles.InsertProfile(context.Background(), client.ProfileAttributes{
		FullName: "Amy Wong", UserType: "patient",
	})
	require.NoError(t, err)
	require.NoError(t, mgr.RefreshProfile(context.Background()))

	require.NoError(t, mgr.SignOut(context.Background()))
	snap := mgr.Snapshot()
	assert.Nil(t, snap.User)
	<-auth.signOutCalls

	_, err = mgr.SignIn(context.Background(), "amy@example.com", "secret")
	require.NoError(t, err)
	require.NoError(t, mgr.SignOut(context.Background()))
	<-auth.signOutCalls

	mu.Lock()
	defer mu.Unlock()
	assert.Zero(t, violations)
}

func TestManager_SignOutClearsStateWhenRemoteFails(t *testing.T) {
	mgr, auth, _ := newTestManager(t)
	mgr.Start()

	_, err := mgr.SignIn(context.Background(), "bob@example.com", "secret")
	require.NoError(t, err)
	require.NotNil(t, mgr.Snapshot().User)

	auth.signOutErr = errors.New("network unreachable")

	require.NoError(t, mgr.SignOut(context.Background()))

	snap := mgr.Snapshot()
	assert.Nil(t, snap.User)
	assert.NotEqual(t, session.ProfileLoaded, snap.Profile.Status)

	select {
	case <-auth.signOutCalls:
	case <-time.After(time.Second):
		t.Fatal("remote sign-out was never attempted")
	}
}

func TestManager_StaleProfileFetchIsDiscarded(t *testing.T) {
	mgr, auth, profiles := newTestManager(t)

	profiles.blockSelect = make(chan struct{})
	profiles.selectStarted = make(chan struct{}, 4)
	profiles.selectDone = make(chan struct{}, 4)
	profiles.row = &client.Profile{FullName: "Stale Row", UserType: "doctor"}

	mgr.Start()

	// backend reports a session; the profile fetch for it starts and hangs
	sess := auth.newSession("slow@example.com")
	profiles.row.UserID = sess.User.ID
	auth.emit(client.AuthEvent{Type: client.EventSignedIn, Session: sess})
	<-profiles.selectStarted

	// the user signs out while that fetch is still in flight
	auth.emit(client.AuthEvent{Type: client.EventSignedOut})
	require.Nil(t, mgr.Snapshot().User)

	// the fetch now resolves with the old user's row
	profiles.blockSelect <- struct{}{}
	<-profiles.selectDone

	assert.Never(t, func() bool {
		snap := mgr.Snapshot()
		return snap.User != nil || snap.Profile.Status == session.ProfileLoaded
	}, 100*time.Millisecond, 10*time.Millisecond)
}

func TestManager_SignUpCreatesProfile(t *testing.T) {
	mgr, auth, _ := newTestManager(t)
	auth.signUpSession = true
	mgr.Start()

	user, err := mgr.SignUp(context.Background(), "jane@example.com", "secret", client.ProfileAttributes{
		FullName: "Jane Doe",
		UserType: "patient",
	})
	require.NoError(t, err)
	require.NotNil(t, user)

	waitForProfileStatus(t, mgr, session.ProfileLoaded)
	snap := mgr.Snapshot()
	require.NotNil(t, snap.User)
	assert.Equal(t, "Jane Doe", snap.Profile.Profile.FullName)
	assert.Equal(t, "patient", snap.Profile.Profile.UserType)
}

func TestManager_SignUpRollsBackOnProfileInsertFailure(t *testing.T) {
	mgr, auth, profiles := newTestManager(t)
	auth.signUpSession = true
	profiles.insertErr = errors.New("insert rejected")
	mgr.Start()

	_, err := mgr.SignUp(context.Background(), "jane@example.com", "secret", client.ProfileAttributes{
		FullName: "Jane Doe",
		UserType: "patient",
	})
	require.Error(t, err)

	assert.Equal(t, 1, auth.deleteCalls)
	require.Eventually(t, func() bool {
		return mgr.Snapshot().User == nil
	}, time.Second, 5*time.Millisecond)
	assert.Nil(t, auth.Session())
}

func TestManager_SignUpWithoutSessionDefersProfileCreation(t *testing.T) {
	mgr, auth, _ := newTestManager(t)
	auth.signUpSession = false
	mgr.Start()

	user, err := mgr.SignUp(context.Background(), "late@example.com", "secret", client.ProfileAttributes{
		FullName: "Late Larry",
		UserType: "doctor",
	})
	require.NoError(t, err)
	require.NotNil(t, user)

	// no session was issued, so nothing is signed in yet
	assert.Nil(t, mgr.Snapshot().User)

	// the first sign-in finds no profile row and creates it from the
	// attributes remembered at sign-up time
	_, err = mgr.SignIn(context.Background(), "late@example.com", "secret")
	require.NoError(t, err)

	waitForProfileStatus(t, mgr, session.ProfileLoaded)
	snap := mgr.Snapshot()
	assert.Equal(t, "Late Larry", snap.Profile.Profile.FullName)
	assert.Equal(t, "doctor", snap.Profile.Profile.UserType)
}

func TestManager_AdminGateSignsNonAdminBackOut(t *testing.T) {
	mgr, auth, profiles := newTestManager(t)
	mgr.Start()

	// seed a patient profile for whoever signs in next
	_, err := mgr.SignIn(context.Background(), "pat@example.com", "secret")
	require.NoError(t, err)
	_, err = profiles.InsertProfile(context.Background(), client.ProfileAttributes{
		FullName: "Pat Patient", UserType: "patient",
	})
	require.NoError(t, err)
	require.NoError(t, mgr.SignOut(context.Background()))
	<-auth.signOutCalls

	_, err = mgr.SignInAsAdmin(context.Background(), "pat@example.com", "secret")
	require.ErrorIs(t, err, session.ErrAccessDenied)

	require.Eventually(t, func() bool {
		return mgr.Snapshot().User == nil
	}, time.Second, 5*time.Millisecond)
}

func TestManager_AdminGateAdmitsAdmin(t *testing.T) {
	mgr, auth, profiles := newTestManager(t)
	mgr.Start()

	_, err := mgr.SignIn(context.Background(), "root@example.com", "secret")
	require.NoError(t, err)
	_, err = profiles.InsertProfile(context.Background(), client.ProfileAttributes{
		FullName: "Root Admin", UserType: "admin",
	})
	require.NoError(t, err)
	require.NoError(t, mgr.SignOut(context.Background()))
	<-auth.signOutCalls

	user, err := mgr.SignInAsAdmin(context.Background(), "root@example.com", "secret")
	require.NoError(t, err)
	require.NotNil(t, user)
	assert.NotNil(t, mgr.Snapshot().User)
}

func TestManager_RefreshProfileKeepsPreviousOnFailure(t *testing.T) {
	mgr, _, profiles := newTestManager(t)
	mgr.Start()

	_, err := mgr.SignIn(context.Background(), "carl@example.com", "secret")
	require.NoError(t, err)
	_, err = profiles.InsertProfile(context.Background(), client.ProfileAttributes{
		FullName: "Carl Doctor", UserType: "doctor",
	})
	require.NoError(t, err)
	require.NoError(t, mgr.RefreshProfile(context.Background()))
	require.Equal(t, session.ProfileLoaded, mgr.Snapshot().Profile.Status)

	profiles.setSelectErr(errors.New("backend timeout"))

	err = mgr.RefreshProfile(context.Background())
	require.Error(t, err)

	// stale beats null
	snap := mgr.Snapshot()
	require.Equal(t, session.ProfileLoaded, snap.Profile.Status)
	assert.Equal(t, "Carl Doctor", snap.Profile.Profile.FullName)
}

func TestManager_RefreshProfileIsIdempotent(t *testing.T) {
	mgr, _, profiles := newTestManager(t)
	mgr.Start()

	_, err := mgr.SignIn(context.Background(), "dana@example.com", "secret")
	require.NoError(t, err)
	_, err = profiles.InsertProfile(context.Background(), client.ProfileAttributes{
		FullName: "Dana", UserType: "patient",
	})
	require.NoError(t, err)

	require.NoError(t, mgr.RefreshProfile(context.Background()))
	first := mgr.Snapshot().Profile.Profile

	require.NoError(t, mgr.RefreshProfile(context.Background()))
	second := mgr.Snapshot().Profile.Profile

	assert.Equal(t, first.FullName, second.FullName)
	assert.Equal(t, first.UserType, second.UserType)
	assert.Equal(t, first.UserID, second.UserID)
}

func TestManager_RefreshProfileRequiresUser(t *testing.T) {
	mgr, _, _ := newTestManager(t)
	mgr.Start()

	err := mgr.RefreshProfile(context.Background())
	require.ErrorIs(t, err, session.ErrNotSignedIn)
}

func TestManager_SignUpEditRefreshScenario(t *testing.T) {
	mgr, auth, _ := newTestManager(t)
	auth.signUpSession = true
	mgr.Start()

	_, err := mgr.SignUp(context.Background(), "jane@example.com", "secret", client.ProfileAttributes{
		FullName: "Jane Doe",
		UserType: "patient",
	})
	require.NoError(t, err)
	waitForProfileStatus(t, mgr, session.ProfileLoaded)
	require.Equal(t, "Jane Doe", mgr.Snapshot().Profile.Profile.FullName)

	newName := "Jane R. Doe"
	require.NoError(t, mgr.UpdateProfile(context.Background(), client.ProfileChanges{FullName: &newName}))
	require.NoError(t, mgr.RefreshProfile(context.Background()))

	assert.Equal(t, "Jane R. Doe", mgr.Snapshot().Profile.Profile.FullName)
}
