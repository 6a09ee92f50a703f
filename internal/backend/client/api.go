package client

import "context"

// AuthEventType labels auth state transitions emitted by the backend client.
type AuthEventType string

const (
	EventSignedIn       AuthEventType = "SIGNED_IN"
	EventSignedOut      AuthEventType = "SIGNED_OUT"
	EventTokenRefreshed AuthEventType = "TOKEN_REFRESHED"
)

// AuthEvent is delivered to subscribers whenever the session changes.
// Session is nil for EventSignedOut.
type AuthEvent struct {
	Type    AuthEventType
	Session *Session
}

// AuthAPI is the identity side of the backend: account creation, password
// sign-in, token refresh, and the auth-event stream.
type AuthAPI interface {
	// SignUp creates an identity. The result carries a session only when the
	// backend confirms accounts immediately.
	SignUp(ctx context.Context, email, password string) (*SignUpResult, error)

	// SignInWithPassword exchanges credentials for a session.
	SignInWithPassword(ctx context.Context, email, password string) (*Session, error)

	// SignOut revokes the current session on the backend.
	SignOut(ctx context.Context) error

	// Session returns the locally held session, or nil when signed out.
	Session() *Session

	// RefreshSession exchanges the held refresh token for a new access token.
	RefreshSession(ctx context.Context) (*Session, error)

	// DeleteUser removes the current identity and everything attached to it.
	DeleteUser(ctx context.Context) error

	// Subscribe registers a callback for auth events. The returned func
	// removes the subscription.
	Subscribe(fn func(AuthEvent)) (unsubscribe func())
}

// ProfileAPI is the profiles-table side of the backend, scoped to the
// authenticated user.
type ProfileAPI interface {
	// SelectProfile fetches the caller's profile row. Returns
	// ErrProfileNotFound when no row exists.
	SelectProfile(ctx context.Context) (*Profile, error)

	// InsertProfile creates the caller's profile row.
	InsertProfile(ctx context.Context, attrs ProfileAttributes) (*Profile, error)

	// UpdateProfile applies a partial update to the caller's profile row.
	UpdateProfile(ctx context.Context, changes ProfileChanges) (*Profile, error)
}
