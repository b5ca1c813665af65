package session

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/doodlesbykumbi/storefront-admin/pkg/catalog"
	"github.com/doodlesbykumbi/storefront-admin/pkg/metrics"
	"github.com/doodlesbykumbi/storefront-admin/pkg/state"
)

// DefaultTTL is the lifetime of a session when none is configured.
const DefaultTTL = time.Hour

// API is the remote surface a Workspace talks to.
type API interface {
	state.AuthAPI
	state.ProductAPI
}

// Workspace is the live state of one session.
type Workspace struct {
	ID       string
	Auth     *state.AuthStore
	Products *state.ProductStore
}

// Manager issues, resolves and destroys sessions.
type Manager struct {
	store  Store
	codec  *CookieCodec
	api    API
	ttl    atomic.Int64
	logger *zap.Logger
	now    func() time.Time

	mu         sync.Mutex
	workspaces map[string]*entry
}

type entry struct {
	ws        *Workspace
	expiresAt time.Time
}

// Option configures a Manager.
type Option func(*Manager)

// WithTTL sets the session lifetime.
func WithTTL(ttl time.Duration) Option {
	return func(m *Manager) {
		m.SetTTL(ttl)
	}
}

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) Option {
	return func(m *Manager) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// NewManager creates a Manager.
func NewManager(store Store, codec *CookieCodec, api API, opts ...Option) *Manager {
	m := &Manager{
		store:      store,
		codec:      codec,
		api:        api,
		logger:     zap.NewNop(),
		now:        time.Now,
		workspaces: map[string]*entry{},
	}
	m.ttl.Store(int64(DefaultTTL))
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// SetTTL changes the lifetime of sessions opened or refreshed from now on.
// Non-positive values are ignored.
func (m *Manager) SetTTL(ttl time.Duration) {
	if ttl > 0 {
		m.ttl.Store(int64(ttl))
	}
}

// TTL returns the session lifetime.
func (m *Manager) TTL() time.Duration {
	return time.Duration(m.ttl.Load())
}

// SetSecureCookies changes whether session cookies carry the Secure flag.
func (m *Manager) SetSecureCookies(secure bool) {
	m.codec.SetSecure(secure)
}

func (m *Manager) newWorkspace(id string) *Workspace {
	return &Workspace{
		ID:       id,
		Auth:     state.NewAuthStore(m.api),
		Products: state.NewProductStore(m.api),
	}
}

// Login authenticates against the remote API and opens a session. On
// failure the returned error is the one reported by the remote side.
func (m *Manager) Login(ctx context.Context, creds catalog.Credentials) (*Workspace, *http.Cookie, error) {
	m.sweep(ctx)

	id := uuid.NewString()
	ws := m.newWorkspace(id)
	if creds.ExpiresInMins == 0 {
		creds.ExpiresInMins = int(m.TTL() / time.Minute)
	}
	result, err := ws.Auth.Login(ctx, creds)
	if err != nil {
		return nil, nil, err
	}

	now := m.now()
	user := result.User
	sess := &Session{
		ID:           id,
		Token:        result.AccessToken,
		RefreshToken: result.RefreshToken,
		User:         &user,
		CreatedAt:    now,
		ExpiresAt:    now.Add(m.TTL()),
	}
	if err := m.store.Save(ctx, sess); err != nil {
		return nil, nil, fmt.Errorf("failed to save session: %w", err)
	}
	cookie, err := m.codec.Encode(sess)
	if err != nil {
		return nil, nil, err
	}

	m.mu.Lock()
	m.workspaces[id] = &entry{ws: ws, expiresAt: sess.ExpiresAt}
	m.publish()
	m.mu.Unlock()

	m.logger.Info("session opened", zap.String("session", id), zap.String("user", user.Username))
	return ws, cookie, nil
}

// Resolve returns the workspace named by the request cookie. A session
// known to the store but not to this process is rehydrated.
func (m *Manager) Resolve(r *http.Request) (*Workspace, error) {
	id, err := m.codec.Decode(r)
	if err != nil {
		return nil, err
	}
	now := m.now()

	m.mu.Lock()
	if e, ok := m.workspaces[id]; ok {
		if e.expiresAt.After(now) {
			m.mu.Unlock()
			return e.ws, nil
		}
		delete(m.workspaces, id)
		m.publish()
	}
	m.mu.Unlock()

	sess, err := m.store.Load(r.Context(), id)
	if err != nil {
		if errors.Is(err, ErrExpired) {
			_ = m.store.Delete(r.Context(), id)
		}
		return nil, err
	}

	ws := m.newWorkspace(id)
	ws.Auth.Restore(sess.Token, sess.RefreshToken, sess.User)

	m.mu.Lock()
	defer m.mu.Unlock()
	if e, ok := m.workspaces[id]; ok {
		return e.ws, nil
	}
	m.workspaces[id] = &entry{ws: ws, expiresAt: sess.ExpiresAt}
	m.publish()
	m.logger.Debug("session restored", zap.String("session", id))
	return ws, nil
}

// Refresh swaps the remote tokens of ws for fresh ones and persists them.
func (m *Manager) Refresh(ctx context.Context, ws *Workspace) error {
	if _, err := ws.Auth.RefreshSession(ctx, int(m.TTL()/time.Minute)); err != nil {
		return err
	}

	sess, err := m.store.Load(ctx, ws.ID)
	if err != nil {
		return err
	}
	snap := ws.Auth.Snapshot()
	sess.Token = snap.Token
	sess.RefreshToken = snap.RefreshToken
	return m.store.Save(ctx, sess)
}

// Logout destroys the session and its workspace.
func (m *Manager) Logout(ctx context.Context, id string) error {
	m.mu.Lock()
	if e, ok := m.workspaces[id]; ok {
		e.ws.Auth.Logout()
		delete(m.workspaces, id)
		m.publish()
	}
	m.mu.Unlock()

	if err := m.store.Delete(ctx, id); err != nil && !errors.Is(err, ErrNotFound) {
		return err
	}
	m.logger.Info("session closed", zap.String("session", id))
	return nil
}

// ClearCookie returns the cookie that logs the browser out.
func (m *Manager) ClearCookie() *http.Cookie {
	return m.codec.Clear()
}

// Active returns the number of live workspaces.
func (m *Manager) Active() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.workspaces)
}

// sweep drops expired workspaces and stored sessions. It runs on login
// rather than on a timer.
func (m *Manager) sweep(ctx context.Context) {
	now := m.now()

	m.mu.Lock()
	for id, e := range m.workspaces {
		if !e.expiresAt.After(now) {
			delete(m.workspaces, id)
		}
	}
	m.publish()
	m.mu.Unlock()

	n, err := m.store.DeleteExpired(ctx, now)
	if err != nil {
		m.logger.Warn("failed to delete expired sessions", zap.Error(err))
		return
	}
	if n > 0 {
		m.logger.Debug("deleted expired sessions", zap.Int64("count", n))
	}
}

// publish must be called with mu held.
func (m *Manager) publish() {
	metrics.SetActiveSessions(len(m.workspaces))
}
