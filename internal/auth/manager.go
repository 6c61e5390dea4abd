package auth

import (
	"context"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/yashraj-ghemud/royal-state/internal/apperr"
	"github.com/yashraj-ghemud/royal-state/internal/models"
)

// RoleStore is the slice of the document store the session layer needs.
type RoleStore interface {
	Get(ctx context.Context, uid string) (models.Role, bool, error)
	Put(ctx context.Context, uid string, rec models.RoleRecord) error
}

// Snapshot is what observers receive. Loading stays true until the first
// resolution completes; consumers must not gate on role before that.
type Snapshot struct {
	Session *models.Session
	Loading bool
}

// Manager holds the current session. It is built once at the application
// root and handed to everything that needs identity; there is no package
// level singleton.
type Manager struct {
	provider    Provider
	roles       RoleStore
	state       *stateFile
	adminEmail  string
	adminSecret string
	log         *zap.SugaredLogger

	mu        sync.Mutex
	current   *models.Session
	loading   bool
	observers map[int]func(Snapshot)
	nextObs   int
}

func NewManager(provider Provider, roles RoleStore, statePath, adminEmail, adminSecret string, log *zap.SugaredLogger) *Manager {
	return &Manager{
		provider:    provider,
		roles:       roles,
		state:       newStateFile(statePath),
		adminEmail:  adminEmail,
		adminSecret: adminSecret,
		log:         log,
		loading:     true,
		observers:   map[int]func(Snapshot){},
	}
}

// Observe registers fn and fires it once immediately with the current state.
// The returned func unregisters it.
func (m *Manager) Observe(fn func(Snapshot)) func() {
	m.mu.Lock()
	id := m.nextObs
	m.nextObs++
	m.observers[id] = fn
	snap := m.snapshotLocked()
	m.mu.Unlock()

	fn(snap)
	return func() {
		m.mu.Lock()
		delete(m.observers, id)
		m.mu.Unlock()
	}
}

// Start performs the initial resolution: restore the sentinel admin, restore
// a still-valid saved token, or settle on no session. Loading flips false
// exactly once, here.
func (m *Manager) Start(ctx context.Context) {
	st, err := m.state.Load()
	if err != nil {
		m.log.Warnw("session state unreadable", "err", err)
	}

	switch {
	case st != nil && st.IsAdmin:
		if !m.sentinelEnabled() {
			// stale admin flag with no sentinel configured anymore
			_ = m.state.Clear()
			break
		}
		m.set(&models.Session{UID: models.AdminLocalUID, Email: m.adminEmail, Role: models.RoleAdmin})
		return
	case st != nil && st.IDToken != "":
		uid, email, expires, err := tokenClaims(st.IDToken)
		if err != nil || uid == "" || (!expires.IsZero() && time.Now().After(expires)) {
			_ = m.state.Clear()
			break
		}
		role := m.resolveRole(ctx, uid)
		m.set(&models.Session{UID: uid, Email: email, Role: role})
		return
	}
	m.set(nil)
}

// sentinelEnabled reports whether a sentinel admin pair is configured. An
// empty email or secret disables the sentinel entirely; an empty comparison
// would otherwise mint admin sessions for blank credentials.
func (m *Manager) sentinelEnabled() bool {
	return m.adminEmail != "" && m.adminSecret != ""
}

// Login resolves a session for the given credentials. The sentinel pair is
// checked first, before any provider traffic, on every attempt.
func (m *Manager) Login(ctx context.Context, email, secret string) (*models.Session, error) {
	if m.sentinelEnabled() && email == m.adminEmail && secret == m.adminSecret {
		if err := m.state.Save(persistedState{IsAdmin: true}); err != nil {
			m.log.Warnw("persisting admin session failed", "err", err)
		}
		sess := &models.Session{UID: models.AdminLocalUID, Email: m.adminEmail, Role: models.RoleAdmin}
		m.set(sess)
		return sess, nil
	}

	ps, err := m.provider.SignIn(ctx, email, secret)
	if err != nil {
		return nil, err
	}
	role := m.resolveRole(ctx, ps.UID)
	if err := m.state.Save(persistedState{IDToken: ps.IDToken}); err != nil {
		m.log.Warnw("persisting session failed", "err", err)
	}
	sess := &models.Session{UID: ps.UID, Email: ps.Email, Role: role}
	m.set(sess)
	return sess, nil
}

// Signup creates a customer account. The role is fixed here, server-side of
// the form: no caller input can produce anything but customer.
func (m *Manager) Signup(ctx context.Context, email, secret string) (*models.Session, error) {
	if !strings.Contains(email, "@") {
		return nil, &apperr.AuthError{Kind: apperr.AuthInvalidInput, Message: "Invalid email address."}
	}
	if len(secret) < 6 {
		return nil, &apperr.AuthError{Kind: apperr.AuthInvalidInput, Message: "Password must be at least 6 characters"}
	}

	ps, err := m.provider.SignUp(ctx, email, secret)
	if err != nil {
		return nil, err
	}
	rec := models.RoleRecord{Email: email, Role: models.RoleCustomer, CreatedAt: time.Now().UTC()}
	if err := m.roles.Put(ctx, ps.UID, rec); err != nil {
		return nil, &apperr.AuthError{Kind: apperr.AuthOther, Message: "Something went wrong. Please try again.", Err: err}
	}
	if err := m.state.Save(persistedState{IDToken: ps.IDToken}); err != nil {
		m.log.Warnw("persisting session failed", "err", err)
	}
	sess := &models.Session{UID: ps.UID, Email: ps.Email, Role: models.RoleCustomer}
	m.set(sess)
	return sess, nil
}

// Logout destroys the current session. The provider is only contacted for
// sessions it actually issued.
func (m *Manager) Logout(ctx context.Context) {
	m.mu.Lock()
	cur := m.current
	m.mu.Unlock()

	if err := m.state.Clear(); err != nil {
		m.log.Warnw("clearing session state failed", "err", err)
	}
	if cur != nil && !cur.IsSentinel() {
		if err := m.provider.SignOut(ctx); err != nil {
			m.log.Warnw("provider sign-out failed", "err", err)
		}
	}
	m.set(nil)
}

// Current returns the session snapshot without registering an observer.
func (m *Manager) Current() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snapshotLocked()
}

func (m *Manager) resolveRole(ctx context.Context, uid string) models.Role {
	if uid == models.AdminLocalUID {
		return models.RoleAdmin
	}
	role, found, err := m.roles.Get(ctx, uid)
	if err != nil {
		m.log.Warnw("role lookup failed, defaulting to customer", "uid", uid, "err", err)
		return models.RoleCustomer
	}
	if !found {
		return models.RoleCustomer
	}
	return role
}

func (m *Manager) set(sess *models.Session) {
	m.mu.Lock()
	m.current = sess
	m.loading = false
	snap := m.snapshotLocked()
	fns := make([]func(Snapshot), 0, len(m.observers))
	for _, fn := range m.observers {
		fns = append(fns, fn)
	}
	m.mu.Unlock()

	for _, fn := range fns {
		fn(snap)
	}
}

func (m *Manager) snapshotLocked() Snapshot {
	return Snapshot{Session: m.current, Loading: m.loading}
}
