package session

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"

	"novelhub/internal/backend"
	"novelhub/internal/models"
	"novelhub/internal/notify"
	"novelhub/internal/resilience"
	"novelhub/internal/service"
)

// Event names follow the backend auth client's.
type Event string

const (
	EventSignedIn       Event = "SIGNED_IN"
	EventSignedOut      Event = "SIGNED_OUT"
	EventTokenRefreshed Event = "TOKEN_REFRESHED"
	EventUserUpdated    Event = "USER_UPDATED"
)

const (
	DefaultKey = "auth_tokens"

	// tokens expiring sooner than this are refreshed before use
	refreshThreshold = time.Minute

	defaultRestoreDelay    = 2 * time.Second
	defaultRestoreAttempts = 3
)

// State is a snapshot of the signed-in user.
type State struct {
	User                   *backend.User
	Profile                *models.UserProfile
	NeedsProfileCompletion bool
}

func (s State) LoggedIn() bool { return s.User != nil }

type Options struct {
	Store     Store
	Key       string
	JWTSecret string
	Timeout   time.Duration

	RestoreDelay    time.Duration
	RestoreAttempts int

	Notifier notify.Notifier
	Logger   *slog.Logger
}

// Manager is the process-wide session cache. All reads go through the
// RWMutex; listeners are called outside it.
type Manager struct {
	auth     backend.AuthAPI
	profiles service.ProfileService
	opts     Options
	now      func() time.Time

	mu      sync.RWMutex
	session *backend.Session
	state   State

	lmu       sync.Mutex
	listeners map[int]func(Event, State)
	nextID    int
}

func NewManager(auth backend.AuthAPI, profiles service.ProfileService, opts Options) *Manager {
	if opts.Store == nil {
		opts.Store = NewMemoryStore()
	}
	if opts.Key == "" {
		opts.Key = DefaultKey
	}
	if opts.Timeout <= 0 {
		opts.Timeout = resilience.DefaultTimeout
	}
	if opts.RestoreDelay <= 0 {
		opts.RestoreDelay = defaultRestoreDelay
	}
	if opts.RestoreAttempts <= 0 {
		opts.RestoreAttempts = defaultRestoreAttempts
	}
	if opts.Notifier == nil {
		opts.Notifier = notify.Discard{}
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &Manager{
		auth:      auth,
		profiles:  profiles,
		opts:      opts,
		now:       time.Now,
		listeners: make(map[int]func(Event, State)),
	}
}

func (m *Manager) State() State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state
}

// OnAuthStateChange registers fn and returns the function that removes it.
func (m *Manager) OnAuthStateChange(fn func(Event, State)) func() {
	m.lmu.Lock()
	defer m.lmu.Unlock()
	id := m.nextID
	m.nextID++
	m.listeners[id] = fn
	return func() {
		m.lmu.Lock()
		defer m.lmu.Unlock()
		delete(m.listeners, id)
	}
}

func (m *Manager) emit(ev Event) {
	state := m.State()
	m.lmu.Lock()
	fns := make([]func(Event, State), 0, len(m.listeners))
	for _, fn := range m.listeners {
		fns = append(fns, fn)
	}
	m.lmu.Unlock()
	for _, fn := range fns {
		fn(ev, state)
	}
}

// Initialize resumes the stored session, if any. Restoring is retried with a
// 2s*attempt backoff; a rejected token signs the user out quietly.
func (m *Manager) Initialize(ctx context.Context) error {
	stored, err := m.opts.Store.Load(ctx, m.opts.Key)
	if errors.Is(err, ErrNoSession) {
		return nil
	}
	if err != nil {
		return err
	}

	policy := resilience.Policy{
		Operation: "Checking session",
		Timeout:   m.opts.Timeout,
		Attempts:  m.opts.RestoreAttempts,
		Delay:     m.opts.RestoreDelay,
		OnRetry: func(op string, attempt int, err error, wait time.Duration) {
			m.opts.Logger.Warn("session restore failed, retrying", "attempt", attempt, "wait", wait, "error", err)
		},
	}
	sess, err := resilience.FetchWithRetry(ctx, policy, func(ctx context.Context) (*backend.Session, error) {
		s, err := m.restore(ctx, stored)
		if errors.Is(err, backend.ErrUnauthorized) {
			return nil, resilience.Permanent(err)
		}
		return s, err
	})
	if errors.Is(err, backend.ErrUnauthorized) {
		m.opts.Logger.Info("stored session rejected, signing out")
		return m.opts.Store.Delete(ctx, m.opts.Key)
	}
	if err != nil {
		return err
	}
	return m.establish(ctx, sess, EventSignedIn)
}

func (m *Manager) restore(ctx context.Context, stored *backend.Session) (*backend.Session, error) {
	if m.expiresSoon(stored) {
		return m.auth.RefreshSession(ctx, stored.RefreshToken)
	}
	user, err := m.auth.GetUser(ctx, stored.AccessToken)
	if err != nil {
		return nil, err
	}
	s := *stored
	s.User = *user
	return &s, nil
}

func (m *Manager) expiresSoon(s *backend.Session) bool {
	return s.Expiry().Sub(m.now()) < refreshThreshold
}

// establish stores a new session and loads the profile behind it.
func (m *Manager) establish(ctx context.Context, sess *backend.Session, ev Event) error {
	if err := m.opts.Store.Save(ctx, m.opts.Key, sess); err != nil {
		m.opts.Logger.Warn("session not persisted", "error", err)
	}

	m.mu.Lock()
	m.session = sess
	user := sess.User
	m.state = State{User: &user}
	m.mu.Unlock()

	if err := m.RefreshProfile(ctx); err != nil {
		m.opts.Logger.Warn("profile not loaded", "user_id", user.ID, "error", err)
	}
	m.emit(ev)
	return nil
}

func (m *Manager) Login(ctx context.Context, email, password string) error {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return &service.ValidationError{Field: "email", Message: "Email and password are required"}
	}
	sess, err := resilience.WithTimeout(ctx, m.opts.Timeout, "Login", func(ctx context.Context) (*backend.Session, error) {
		return m.auth.SignInWithPassword(ctx, email, password)
	})
	if err != nil {
		m.opts.Notifier.Error(ctx, err)
		return err
	}
	if err := m.establish(ctx, sess, EventSignedIn); err != nil {
		return err
	}
	m.opts.Notifier.Success(ctx, "Login successful!")
	return nil
}

// Register signs up and, when the backend returns a session right away,
// signs in. confirm is true when e-mail confirmation is still pending.
func (m *Manager) Register(ctx context.Context, email, password string) (confirm bool, err error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return false, &service.ValidationError{Field: "email", Message: "Email and password are required"}
	}
	type result struct {
		user *backend.User
		sess *backend.Session
	}
	res, err := resilience.WithTimeout(ctx, m.opts.Timeout, "Registration", func(ctx context.Context) (result, error) {
		u, s, err := m.auth.SignUp(ctx, email, password)
		return result{u, s}, err
	})
	if err != nil {
		m.opts.Notifier.Error(ctx, err)
		return false, err
	}
	if res.sess == nil {
		m.opts.Notifier.Success(ctx, "Registration successful!")
		return true, nil
	}
	if err := m.establish(ctx, res.sess, EventSignedIn); err != nil {
		return false, err
	}
	m.opts.Notifier.Success(ctx, "Registration successful!")
	return false, nil
}

// Logout always clears the local session; a failed remote sign-out is
// still reported.
func (m *Manager) Logout(ctx context.Context) error {
	m.mu.Lock()
	sess := m.session
	m.session = nil
	m.state = State{}
	m.mu.Unlock()

	var err error
	if sess != nil {
		_, err = resilience.WithTimeout(ctx, m.opts.Timeout, "Logout", func(ctx context.Context) (struct{}, error) {
			return struct{}{}, m.auth.SignOut(ctx, sess.AccessToken)
		})
	}
	if derr := m.opts.Store.Delete(ctx, m.opts.Key); derr != nil && err == nil {
		err = derr
	}
	m.emit(EventSignedOut)

	if err != nil {
		m.opts.Notifier.Error(ctx, err)
		return err
	}
	m.opts.Notifier.Success(ctx, "Logged out successfully")
	return nil
}

// EnsureFresh returns the current session, refreshing it first when it is
// about to expire.
func (m *Manager) EnsureFresh(ctx context.Context) (*backend.Session, error) {
	m.mu.RLock()
	sess := m.session
	m.mu.RUnlock()
	if sess == nil {
		return nil, service.ErrLoginRequired
	}
	if !m.expiresSoon(sess) {
		return sess, nil
	}

	fresh, err := resilience.WithTimeout(ctx, m.opts.Timeout, "Refreshing session", func(ctx context.Context) (*backend.Session, error) {
		return m.auth.RefreshSession(ctx, sess.RefreshToken)
	})
	if err != nil {
		return nil, err
	}
	if fresh.User.ID == "" {
		fresh.User = sess.User
	}
	if err := m.opts.Store.Save(ctx, m.opts.Key, fresh); err != nil {
		m.opts.Logger.Warn("refreshed session not persisted", "error", err)
	}
	m.mu.Lock()
	m.session = fresh
	m.mu.Unlock()
	m.emit(EventTokenRefreshed)
	return fresh, nil
}

// Context attaches the caller's credentials when signed in.
func (m *Manager) Context(ctx context.Context) (context.Context, error) {
	if !m.State().LoggedIn() {
		return ctx, nil
	}
	sess, err := m.EnsureFresh(ctx)
	if err != nil {
		return ctx, err
	}
	creds := backend.Credentials{AccessToken: sess.AccessToken, UserID: sess.User.ID, Role: defaultRole}
	if claims, err := ParseClaims(sess.AccessToken, []byte(m.opts.JWTSecret)); err == nil {
		creds = claims.Credentials(sess.AccessToken)
	}
	return backend.WithCredentials(ctx, creds), nil
}

// UserID is "" when signed out.
func (m *Manager) UserID() string {
	st := m.State()
	if st.User == nil {
		return ""
	}
	return st.User.ID
}

// RefreshProfile reloads the profile row of the signed-in user.
func (m *Manager) RefreshProfile(ctx context.Context) error {
	st := m.State()
	if st.User == nil || m.profiles == nil {
		return nil
	}
	cctx, err := m.Context(ctx)
	if err != nil {
		return err
	}

	needs, err := m.profiles.NeedsCompletion(cctx, st.User.ID)
	if err != nil {
		return err
	}
	var profile *models.UserProfile
	if !needs {
		if profile, err = m.profiles.Get(cctx, st.User.ID); err != nil {
			return err
		}
	}

	m.mu.Lock()
	if m.state.User != nil && m.state.User.ID == st.User.ID {
		m.state.Profile = profile
		m.state.NeedsProfileCompletion = needs
	}
	m.mu.Unlock()
	return nil
}

func (m *Manager) CompleteProfile(ctx context.Context, in service.ProfileInput, picture *service.Upload) (*models.UserProfile, error) {
	st := m.State()
	if st.User == nil {
		return nil, &service.ValidationError{Field: "user", Message: "No user found"}
	}
	cctx, err := m.Context(ctx)
	if err != nil {
		return nil, err
	}
	profile, err := m.profiles.CompleteProfile(cctx, st.User.ID, st.User.Email, in, picture)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	m.state.Profile = profile
	m.state.NeedsProfileCompletion = !profile.IsComplete()
	m.mu.Unlock()
	m.emit(EventUserUpdated)
	return profile, nil
}
