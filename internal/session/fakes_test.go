package session_test

import (
	"context"
	"sync"
	"time"

	"telecare/internal/backend/client"

	"github.com/google/uuid"
)

// fakeAuth is a controllable AuthAPI. Tests configure outcomes and emit
// events; every remote call is recorded.
type fakeAuth struct {
	mu      sync.Mutex
	session *client.Session
	subs    map[int]func(client.AuthEvent)
	nextID  int

	signUpSession bool // issue a session on sign-up (auto-confirm)
	signUpErr     error
	signInErr     error
	signOutErr    error
	deleteErr     error

	signOutCalls chan struct{}
	deleteCalls  int
}

func newFakeAuth() *fakeAuth {
	return &fakeAuth{
		subs:         make(map[int]func(client.AuthEvent)),
		signOutCalls: make(chan struct{}, 8),
	}
}

func (f *fakeAuth) emit(ev client.AuthEvent) {
	f.mu.Lock()
	fns := make([]func(client.AuthEvent), 0, len(f.subs))
	for _, fn := range f.subs {
		fns = append(fns, fn)
	}
	f.mu.Unlock()
	for _, fn := range fns {
		fn(ev)
	}
}

func (f *fakeAuth) newSession(email string) *client.Session {
	now := time.Now()
	return &client.Session{
		AccessToken:  "access-" + email,
		RefreshToken: "refresh-" + email,
		ExpiresAt:    now.Add(time.Hour),
		User:         client.User{ID: uuid.New(), Email: email, CreatedAt: now, UpdatedAt: now},
	}
}

func (f *fakeAuth) SignUp(_ context.Context, email, _ string) (*client.SignUpResult, error) {
	if f.signUpErr != nil {
		return nil, f.signUpErr
	}

	sess := f.newSession(email)
	if !f.signUpSession {
		return &client.SignUpResult{User: sess.User}, nil
	}

	f.mu.Lock()
	f.session = sess
	f.mu.Unlock()
	f.emit(client.AuthEvent{Type: client.EventSignedIn, Session: sess})

	return &client.SignUpResult{User: sess.User, Session: sess}, nil
}

func (f *fakeAuth) SignInWithPassword(_ context.Context, email, _ string) (*client.Session, error) {
	if f.signInErr != nil {
		return nil, f.signInErr
	}

	sess := f.newSession(email)
	f.mu.Lock()
	f.session = sess
	f.mu.Unlock()
	f.emit(client.AuthEvent{Type: client.EventSignedIn, Session: sess})

	return sess, nil
}

func (f *fakeAuth) SignOut(_ context.Context) error {
	f.mu.Lock()
	f.session = nil
	f.mu.Unlock()
	f.emit(client.AuthEvent{Type: client.EventSignedOut})
	f.signOutCalls <- struct{}{}
	return f.signOutErr
}

func (f *fakeAuth) Session() *client.Session {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.session
}

func (f *fakeAuth) RefreshSession(_ context.Context) (*client.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.session == nil {
		return nil, client.ErrNoSession
	}
	return f.session, nil
}

func (f *fakeAuth) DeleteUser(_ context.Context) error {
	f.mu.Lock()
	f.deleteCalls++
	err := f.deleteErr
	if err == nil {
		f.session = nil
	}
	f.mu.Unlock()
	if err != nil {
		return err
	}
	f.emit(client.AuthEvent{Type: client.EventSignedOut})
	return nil
}

func (f *fakeAuth) Subscribe(fn func(client.AuthEvent)) func() {
	f.mu.Lock()
	defer f.mu.Unlock()
	id := f.nextID
	f.nextID++
	f.subs[id] = fn
	return func() {
		f.mu.Lock()
		defer f.mu.Unlock()
		delete(f.subs, id)
	}
}

// fakeProfiles is a controllable ProfileAPI backed by a single row. A test
// can block SelectProfile to stage in-flight fetches.
type fakeProfiles struct {
	mu  sync.Mutex
	row *client.Profile

	selectErr error
	insertErr error
	updateErr error

	blockSelect   chan struct{} // when set, SelectProfile waits for a receive
	selectStarted chan struct{} // signaled when a select begins
	selectDone    chan struct{} // signaled when a select returns

	ownerID func() uuid.UUID // id the next insert is attributed to
}

func (f *fakeProfiles) setSelectErr(err error) {
	f.mu.Lock()
	f.selectErr = err
	f.mu.Unlock()
}

func newFakeProfiles(owner func() uuid.UUID) *fakeProfiles {
	return &fakeProfiles{ownerID: owner}
}

func (f *fakeProfiles) SelectProfile(_ context.Context) (*client.Profile, error) {
	if f.selectStarted != nil {
		f.selectStarted <- struct{}{}
	}
	if f.blockSelect != nil {
		<-f.blockSelect
	}
	if f.selectDone != nil {
		defer func() { f.selectDone <- struct{}{} }()
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.selectErr != nil {
		return nil, f.selectErr
	}
	if f.row == nil {
		return nil, client.ErrProfileNotFound
	}
	copied := *f.row
	return &copied, nil
}

func (f *fakeProfiles) InsertProfile(_ context.Context, attrs client.ProfileAttributes) (*client.Profile, error) {
	if f.insertErr != nil {
		return nil, f.insertErr
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	now := time.Now()
	f.row = &client.Profile{
		UserID:        f.ownerID(),
		FullName:      attrs.FullName,
		UserType:      attrs.UserType,
		ContactNumber: attrs.ContactNumber,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	copied := *f.row
	return &copied, nil
}

func (f *fakeProfiles) UpdateProfile(_ context.Context, changes client.ProfileChanges) (*client.Profile, error) {
	if f.updateErr != nil {
		return nil, f.updateErr
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.row == nil {
		return nil, client.ErrProfileNotFound
	}
	if changes.FullName != nil {
		f.row.FullName = *changes.FullName
	}
	if changes.UserType != nil {
		f.row.UserType = *changes.UserType
	}
	if changes.ContactNumber != nil {
		f.row.ContactNumber = *changes.ContactNumber
	}
	f.row.UpdatedAt = time.Now()
	copied := *f.row
	return &copied, nil
}
