package session

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"telecare/internal/backend/client"
	"telecare/internal/domain/entity"
	"telecare/internal/errors"

	"github.com/google/uuid"
)

// Sentinel errors returned by manager operations.
var (
	ErrNotSignedIn  = errors.New("session: not signed in")
	ErrAccessDenied = errors.New("session: admin access required")
)

const remoteSignOutTimeout = 10 * time.Second

// Manager is the single source of truth for "who is signed in and what is
// their role". It reconciles its snapshot against the backend's auth-event
// stream and guards against stale profile fetches overwriting newer state.
type Manager struct {
	auth     client.AuthAPI
	profiles client.ProfileAPI
	logger   *slog.Logger

	mu    sync.Mutex
	snap  Snapshot
	epoch uint64 // bumped whenever the current user changes
	seq   uint64 // bumped on every applied profile write
	// profile attributes from sign-ups that got no session (confirmation
	// pending), applied at the first sign-in that finds no profile row
	pending map[string]client.ProfileAttributes
	unsub   func()
	subs    map[int]func(Snapshot)
	nextSub int
}

// NewManager builds a manager around the backend boundary. Call Start to
// begin consuming auth events.
func NewManager(auth client.AuthAPI, profiles client.ProfileAPI, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}

	return &Manager{
		auth:     auth,
		profiles: profiles,
		logger:   logger,
		snap:     Snapshot{Loading: true},
		pending:  make(map[string]client.ProfileAttributes),
		subs:     make(map[int]func(Snapshot)),
	}
}

// Start subscribes to the auth-event stream and reconciles the initial
// state from any session the client already holds.
func (m *Manager) Start() {
	m.mu.Lock()
	if m.unsub == nil {
		m.unsub = m.auth.Subscribe(m.handleAuthEvent)
	}
	m.mu.Unlock()

	if sess := m.auth.Session(); sess != nil {
		epoch := m.setUser(&sess.User)
		go m.fetchProfile(context.Background(), sess.User.ID, epoch)
		return
	}
	m.setAnonymous()
}

// Close releases the auth-event subscription. The manager keeps its last
// snapshot but stops reconciling.
func (m *Manager) Close() {
	m.mu.Lock()
	unsub := m.unsub
	m.unsub = nil
	m.mu.Unlock()

	if unsub != nil {
		unsub()
	}
}

// Snapshot returns the current state.
func (m *Manager) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snap
}

// Subscribe registers a callback invoked after every state change. The
// returned func removes the subscription.
func (m *Manager) Subscribe(fn func(Snapshot)) (unsubscribe func()) {
	m.mu.Lock()
	id := m.nextSub
	m.nextSub++
	m.subs[id] = fn
	m.mu.Unlock()

	return func() {
		m.mu.Lock()
		delete(m.subs, id)
		m.mu.Unlock()
	}
}

func (m *Manager) handleAuthEvent(ev client.AuthEvent) {
	switch ev.Type {
	case client.EventSignedIn:
		if ev.Session == nil {
			return
		}
		epoch := m.setUser(&ev.Session.User)
		go m.fetchProfile(context.Background(), ev.Session.User.ID, epoch)
	case client.EventSignedOut:
		m.setAnonymous()
	case client.EventTokenRefreshed:
		// identity unchanged, nothing to reconcile
	}
}

// SignUp creates an identity and, when a session is issued immediately,
// inserts the profile row. A failed insert rolls the identity back. When no
// session is issued (confirmation pending), the attributes are kept and the
// profile is created at the first sign-in that finds none.
func (m *Manager) SignUp(ctx context.Context, email, password string, attrs client.ProfileAttributes) (*client.User, error) {
	result, err := m.auth.SignUp(ctx, email, password)
	if err != nil {
		return nil, errors.Wrap(err, "sign up")
	}

	if result.Session == nil {
		m.mu.Lock()
		m.pending[email] = attrs
		m.mu.Unlock()
		return &result.User, nil
	}

	profile, err := m.profiles.InsertProfile(ctx, attrs)
	if err != nil {
		if delErr := m.auth.DeleteUser(ctx); delErr != nil {
			m.logger.Error("compensating identity deletion failed",
				slog.String("email", email),
				slog.Any("error", delErr))
		}
		return nil, errors.Wrap(err, "create profile")
	}
	m.applyProfile(profile)

	return &result.User, nil
}

// SignIn authenticates with a password and loads the profile before
// returning. A sign-up left without a profile row gets one here from the
// attributes remembered at sign-up time.
func (m *Manager) SignIn(ctx context.Context, email, password string) (*client.User, error) {
	sess, err := m.auth.SignInWithPassword(ctx, email, password)
	if err != nil {
		return nil, errors.Wrap(err, "sign in")
	}

	m.ensureProfile(ctx, email, sess.User.ID)

	return &sess.User, nil
}

// SignInAsAdmin authenticates and verifies the profile role is admin. A
// non-admin account is signed back out and gets ErrAccessDenied. This is a
// convenience gate for the admin surface, not a security boundary.
func (m *Manager) SignInAsAdmin(ctx context.Context, email, password string) (*client.User, error) {
	user, err := m.SignIn(ctx, email, password)
	if err != nil {
		return nil, err
	}

	snap := m.Snapshot()
	isAdmin := snap.Profile.Status == ProfileLoaded &&
		entity.UserType(snap.Profile.Profile.UserType) == entity.UserTypeAdmin
	if !isAdmin {
		if err := m.SignOut(ctx); err != nil {
			m.logger.Warn("sign-out after failed admin gate", slog.Any("error", err))
		}
		return nil, ErrAccessDenied
	}

	return user, nil
}

// SignOut clears the local state synchronously and revokes the remote
// session in the background. It always succeeds from the caller's
// perspective; a failed remote call never leaves the state signed in.
func (m *Manager) SignOut(_ context.Context) error {
	m.setAnonymous()

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), remoteSignOutTimeout)
		defer cancel()
		if err := m.auth.SignOut(ctx); err != nil {
			m.logger.Warn("remote sign-out failed", slog.Any("error", err))
		}
	}()

	return nil
}

// DeleteAccount removes the identity and everything attached to it, then
// clears the local state.
func (m *Manager) DeleteAccount(ctx context.Context) error {
	if m.Snapshot().User == nil {
		return ErrNotSignedIn
	}

	if err := m.auth.DeleteUser(ctx); err != nil {
		return errors.Wrap(err, "delete account")
	}
	m.setAnonymous()

	return nil
}

// RefreshProfile re-reads the current user's profile. On failure the
// previous value stays in place; a confirmed-absent row becomes
// ProfileMissing. Safe to call repeatedly.
func (m *Manager) RefreshProfile(ctx context.Context) error {
	m.mu.Lock()
	user := m.snap.User
	epoch := m.epoch
	m.mu.Unlock()

	if user == nil {
		return ErrNotSignedIn
	}

	return m.fetchProfile(ctx, user.ID, epoch)
}

// UpdateProfile applies a partial edit and refreshes the local copy from the
// returned row.
func (m *Manager) UpdateProfile(ctx context.Context, changes client.ProfileChanges) error {
	if m.Snapshot().User == nil {
		return ErrNotSignedIn
	}

	profile, err := m.profiles.UpdateProfile(ctx, changes)
	if err != nil {
		return errors.Wrap(err, "update profile")
	}
	m.applyProfile(profile)

	return nil
}

// fetchProfile reads the profile and applies the result unless a newer auth
// event or profile write superseded the fetch while it was in flight.
func (m *Manager) fetchProfile(ctx context.Context, userID uuid.UUID, epoch uint64) error {
	m.mu.Lock()
	startSeq := m.seq
	m.mu.Unlock()

	profile, err := m.profiles.SelectProfile(ctx)

	m.mu.Lock()
	stale := m.epoch != epoch || m.seq != startSeq ||
		m.snap.User == nil || m.snap.User.ID != userID
	if stale {
		m.mu.Unlock()
		m.logger.Debug("discarding stale profile fetch", slog.String("user_id", userID.String()))
		return nil
	}

	switch {
	case err == nil:
		m.seq++
		m.snap.Profile = ProfileState{Status: ProfileLoaded, Profile: profile}
	case errors.Is(err, client.ErrProfileNotFound):
		m.seq++
		m.snap.Profile = ProfileState{Status: ProfileMissing}
		err = nil
	default:
		// keep whatever we had; stale beats null
		m.mu.Unlock()
		m.logger.Warn("profile fetch failed", slog.Any("error", err))
		return errors.Wrap(err, "fetch profile")
	}
	snap := m.snap
	subs := m.subscribers()
	m.mu.Unlock()

	m.notify(snap, subs)

	return nil
}

// ensureProfile loads the profile after a sign-in, creating it from pending
// sign-up attributes when the row does not exist yet. Fetch failures are
// logged, not surfaced; a missing profile is an expected transient state.
func (m *Manager) ensureProfile(ctx context.Context, email string, userID uuid.UUID) {
	profile, err := m.profiles.SelectProfile(ctx)
	switch {
	case err == nil:
		m.applyProfile(profile)
		return
	case errors.Is(err, client.ErrProfileNotFound):
	default:
		m.logger.Warn("profile fetch after sign-in failed", slog.Any("error", err))
		return
	}

	m.mu.Lock()
	attrs, ok := m.pending[email]
	m.mu.Unlock()
	if !ok {
		m.markProfileMissing(userID)
		return
	}

	inserted, err := m.profiles.InsertProfile(ctx, attrs)
	if err != nil {
		m.logger.Warn("deferred profile creation failed",
			slog.String("email", email),
			slog.Any("error", err))
		m.markProfileMissing(userID)
		return
	}

	m.mu.Lock()
	delete(m.pending, email)
	m.mu.Unlock()
	m.applyProfile(inserted)
}

// setUser records a signed-in identity. The profile resets to NotLoaded when
// the identity actually changed.
func (m *Manager) setUser(user *client.User) (epoch uint64) {
	m.mu.Lock()
	if m.snap.User == nil || m.snap.User.ID != user.ID {
		m.epoch++
		m.snap.Profile = ProfileState{Status: ProfileNotLoaded}
	}
	m.snap.User = user
	m.snap.Loading = false
	epoch = m.epoch
	snap := m.snap
	subs := m.subscribers()
	m.mu.Unlock()

	m.notify(snap, subs)

	return epoch
}

func (m *Manager) setAnonymous() {
	m.mu.Lock()
	m.epoch++
	m.snap = Snapshot{}
	snap := m.snap
	subs := m.subscribers()
	m.mu.Unlock()

	m.notify(snap, subs)
}

// applyProfile stores a profile row, provided it belongs to the current
// user.
func (m *Manager) applyProfile(profile *client.Profile) {
	m.mu.Lock()
	if m.snap.User == nil || m.snap.User.ID != profile.UserID {
		m.mu.Unlock()
		return
	}
	m.seq++
	m.snap.Profile = ProfileState{Status: ProfileLoaded, Profile: profile}
	snap := m.snap
	subs := m.subscribers()
	m.mu.Unlock()

	m.notify(snap, subs)
}

func (m *Manager) markProfileMissing(userID uuid.UUID) {
	m.mu.Lock()
	if m.snap.User == nil || m.snap.User.ID != userID {
		m.mu.Unlock()
		return
	}
	m.seq++
	m.snap.Profile = ProfileState{Status: ProfileMissing}
	snap := m.snap
	subs := m.subscribers()
	m.mu.Unlock()

	m.notify(snap, subs)
}

// subscribers must be called with mu held.
func (m *Manager) subscribers() []func(Snapshot) {
	fns := make([]func(Snapshot), 0, len(m.subs))
	for _, fn := range m.subs {
		fns = append(fns, fn)
	}
	return fns
}

func (m *Manager) notify(snap Snapshot, subs []func(Snapshot)) {
	for _, fn := range subs {
		fn(snap)
	}
}
