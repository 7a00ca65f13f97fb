// Package session owns the client-side authentication state machine: who is
// logged in, what their profile looks like, and whether they hold the admin
// role. It is the single writer of the process-wide session/profile pair;
// every other component receives state through Snapshot or Subscribe.
package session

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/ludolist/backend/internal/auth"
	"github.com/ludolist/backend/internal/logging"
	"github.com/ludolist/backend/internal/models"
	"github.com/ludolist/backend/internal/repositories"
)

// State enumerates the lifecycle phases of the session machine.
type State int

const (
	StateUninitialized State = iota
	StateAuthenticating
	StateAuthenticated
	StateAnonymous
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateAuthenticating:
		return "authenticating"
	case StateAuthenticated:
		return "authenticated"
	case StateAnonymous:
		return "anonymous"
	}
	return "unknown"
}

// AuthService is the external authentication collaborator the manager drives.
type AuthService interface {
	SignIn(ctx context.Context, email, password string) (models.Session, error)
	SignUp(ctx context.Context, email, password string, fields auth.SignUpFields) (auth.SignUpResult, error)
	SignOut(ctx context.Context, refreshToken string) error
	Restore(ctx context.Context, refreshToken string) (models.Session, error)
	Events() <-chan auth.SessionEvent
}

// ProfileStore resolves the application-level profile for a session's user.
type ProfileStore interface {
	FindByID(ctx context.Context, id string) (models.Profile, error)
}

// Snapshot is an immutable view of the manager's state handed to readers.
// Stale marks a profile that could not be re-fetched on the last refresh.
type Snapshot struct {
	State   State
	Profile *models.Profile
	Stale   bool
}

// SignUpOutcome reports how a successful registration concluded.
type SignUpOutcome struct {
	PendingConfirmation bool
	Username            string
}

// Options tunes optional manager behavior.
type Options struct {
	TokenCache        TokenCache
	Logger            *slog.Logger
	RefreshRetries    int
	RefreshRetryDelay time.Duration
}

// Manager is the single source of truth for the authenticated principal.
type Manager struct {
	auth     AuthService
	profiles ProfileStore
	cache    TokenCache
	logger   *slog.Logger

	refreshRetries    int
	refreshRetryDelay time.Duration

	mu      sync.Mutex
	state   State
	profile *models.Profile
	session *models.Session
	stale   bool
	lastSeq uint64
	subs    map[int]chan Snapshot
	nextSub int
}

// NewManager constructs a Manager in the uninitialized state.
func NewManager(authService AuthService, profiles ProfileStore, opts Options) *Manager {
	if authService == nil {
		panic("session: auth service must not be nil")
	}
	if profiles == nil {
		panic("session: profile store must not be nil")
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	cache := opts.TokenCache
	if cache == nil {
		cache = NewMemoryTokenCache()
	}
	retries := opts.RefreshRetries
	if retries <= 0 {
		retries = 3
	}
	delay := opts.RefreshRetryDelay
	if delay <= 0 {
		delay = 250 * time.Millisecond
	}
	return &Manager{
		auth:              authService,
		profiles:          profiles,
		cache:             cache,
		logger:            logger,
		refreshRetries:    retries,
		refreshRetryDelay: delay,
		state:             StateUninitialized,
		subs:              make(map[int]chan Snapshot),
	}
}

// Start restores a persisted session, transitioning through authenticating to
// either authenticated or anonymous. It must be called once before Login or
// SignUp.
func (m *Manager) Start(ctx context.Context) {
	m.setAuthenticating()

	token, err := m.cache.Load()
	if err != nil || token == "" {
		m.setAnonymous()
		return
	}

	session, err := m.auth.Restore(ctx, token)
	if err != nil {
		m.logger.Info("persisted session could not be restored", "error", err)
		_ = m.cache.Clear()
		m.setAnonymous()
		return
	}

	m.adoptSession(ctx, session)
}

// Run consumes the auth service's session-change stream until ctx is
// canceled. Events are applied one at a time in arrival order; an event whose
// sequence number is not newer than the last applied one is discarded, so the
// most recently received session always wins.
func (m *Manager) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-m.auth.Events():
			if !ok {
				return
			}
			m.apply(ctx, event)
		}
	}
}

func (m *Manager) apply(ctx context.Context, event auth.SessionEvent) {
	m.mu.Lock()
	if event.Seq <= m.lastSeq {
		m.mu.Unlock()
		m.logger.Debug("discarding stale session event", "seq", event.Seq, "last", m.lastSeq)
		return
	}
	m.lastSeq = event.Seq
	m.mu.Unlock()

	if event.Session == nil {
		m.setAnonymous()
		return
	}

	profile, err := m.profiles.FindByID(ctx, event.Session.UserID)

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.lastSeq != event.Seq {
		// A newer event landed while the profile fetch was in flight.
		return
	}
	if err != nil {
		// Session without a profile is not fully initialized.
		m.logger.Warn("profile missing for session, treating as anonymous", "userId", event.Session.UserID, "error", err)
		m.toAnonymousLocked()
		return
	}
	session := *event.Session
	m.session = &session
	m.profile = &profile
	m.stale = false
	m.state = StateAuthenticated
	m.notifyLocked()
}

// Login authenticates with the provided credentials. Failures carry an
// auth.Error kind for user-facing display; the machine returns to anonymous.
func (m *Manager) Login(ctx context.Context, email, password string) error {
	m.setAuthenticating()

	session, err := m.auth.SignIn(ctx, email, password)
	if err != nil {
		m.setAnonymous()
		return err
	}

	m.adoptSession(ctx, session)
	return nil
}

// SignUp registers a new account, deriving a best-effort unique username from
// the display name. When the backend requires email confirmation the machine
// stays anonymous and the outcome says a confirmation step is pending.
func (m *Manager) SignUp(ctx context.Context, email, password, firstName, lastName string) (SignUpOutcome, error) {
	username := deriveUsername(firstName, email)

	m.setAuthenticating()

	result, err := m.auth.SignUp(ctx, email, password, auth.SignUpFields{
		FirstName: firstName,
		LastName:  lastName,
		Username:  username,
	})
	if err != nil {
		m.setAnonymous()
		return SignUpOutcome{}, err
	}

	if result.RequiresConfirmation {
		m.setAnonymous()
		return SignUpOutcome{PendingConfirmation: true, Username: username}, nil
	}

	m.adoptSession(ctx, *result.Session)
	return SignUpOutcome{Username: username}, nil
}

// Logout clears the local session unconditionally. Backend failures are
// swallowed: local state is authoritative for sign-out.
func (m *Manager) Logout(ctx context.Context) {
	m.mu.Lock()
	var token string
	if m.session != nil {
		token = m.session.RefreshToken
	}
	m.mu.Unlock()

	if err := m.auth.SignOut(ctx, token); err != nil {
		m.logger.Warn("sign-out call failed, clearing local session anyway", "error", err)
	}
	if err := m.cache.Clear(); err != nil {
		m.logger.Warn("clearing persisted session failed", "error", err)
	}

	m.setAnonymous()
}

// RefreshProfile re-fetches the current profile with a bounded retry. A
// persistent failure marks the snapshot stale instead of surfacing an error,
// so the UI keeps the previous profile but can indicate it may be outdated.
func (m *Manager) RefreshProfile(ctx context.Context) {
	m.mu.Lock()
	if m.state != StateAuthenticated || m.session == nil {
		m.mu.Unlock()
		return
	}
	userID := m.session.UserID
	m.mu.Unlock()

	ctx, span := logging.StartSpan(ctx, "session.refresh_profile")
	defer span.End()

	var lastErr error
	for attempt := 0; attempt < m.refreshRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				lastErr = ctx.Err()
			case <-time.After(m.refreshRetryDelay):
			}
			if lastErr != nil {
				break
			}
		}

		profile, err := m.profiles.FindByID(ctx, userID)
		if err == nil {
			m.mu.Lock()
			if m.state == StateAuthenticated && m.session != nil && m.session.UserID == userID {
				m.profile = &profile
				m.stale = false
				m.notifyLocked()
			}
			m.mu.Unlock()
			return
		}
		lastErr = err
		if errors.Is(err, repositories.ErrNotFound) {
			break
		}
	}

	m.logger.Warn("profile refresh failed, keeping stale profile", "userId", userID, "error", lastErr)
	m.mu.Lock()
	if m.state == StateAuthenticated {
		m.stale = true
		m.notifyLocked()
	}
	m.mu.Unlock()
}

// IsAdmin reports whether the current profile carries the admin role. It is
// false whenever no profile is loaded.
func (m *Manager) IsAdmin() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.profile != nil && m.profile.IsAdmin()
}

// CurrentUserID returns the authenticated user's identifier, or empty when
// anonymous. List and rating operations take this as their acting identity.
func (m *Manager) CurrentUserID() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state != StateAuthenticated || m.session == nil {
		return ""
	}
	return m.session.UserID
}

// Snapshot returns the current state for readers that do not subscribe.
func (m *Manager) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snapshotLocked()
}

// Subscribe registers a listener for state transitions. The returned cancel
// function releases the subscription. Slow consumers miss intermediate
// transitions rather than blocking the manager; Snapshot always has the
// latest state.
func (m *Manager) Subscribe() (<-chan Snapshot, func()) {
	m.mu.Lock()
	defer m.mu.Unlock()

	id := m.nextSub
	m.nextSub++
	ch := make(chan Snapshot, 8)
	m.subs[id] = ch

	cancel := func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		if sub, ok := m.subs[id]; ok {
			delete(m.subs, id)
			close(sub)
		}
	}
	return ch, cancel
}

// adoptSession completes a login/signup/restore by fetching the profile and
// entering the authenticated state. A missing profile sends the machine back
// to anonymous: the session is not fully initialized without one.
func (m *Manager) adoptSession(ctx context.Context, session models.Session) {
	if err := m.cache.Save(session.RefreshToken); err != nil {
		m.logger.Warn("persisting session failed", "error", err)
	}

	profile, err := m.profiles.FindByID(ctx, session.UserID)
	if err != nil {
		m.logger.Warn("profile missing for session, treating as anonymous", "userId", session.UserID, "error", err)
		m.setAnonymous()
		return
	}

	m.mu.Lock()
	m.session = &session
	m.profile = &profile
	m.stale = false
	m.state = StateAuthenticated
	m.notifyLocked()
	m.mu.Unlock()
}

func (m *Manager) setAuthenticating() {
	m.mu.Lock()
	m.state = StateAuthenticating
	m.notifyLocked()
	m.mu.Unlock()
}

func (m *Manager) setAnonymous() {
	m.mu.Lock()
	m.toAnonymousLocked()
	m.mu.Unlock()
}

func (m *Manager) toAnonymousLocked() {
	m.state = StateAnonymous
	m.session = nil
	m.profile = nil
	m.stale = false
	m.notifyLocked()
}

func (m *Manager) snapshotLocked() Snapshot {
	snapshot := Snapshot{State: m.state, Stale: m.stale}
	if m.profile != nil {
		profile := *m.profile
		snapshot.Profile = &profile
	}
	return snapshot
}

func (m *Manager) notifyLocked() {
	snapshot := m.snapshotLocked()
	for _, sub := range m.subs {
		select {
		case sub <- snapshot:
		default:
		}
	}
}
