package session_test

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/doodlesbykumbi/storefront-admin/pkg/catalog"
	"github.com/doodlesbykumbi/storefront-admin/pkg/catalog/catalogtest"
	"github.com/doodlesbykumbi/storefront-admin/pkg/session"
	"github.com/doodlesbykumbi/storefront-admin/pkg/session/memory"
)

func newManager(t *testing.T) (*session.Manager, *memory.Store, *session.CookieCodec) {
	t.Helper()
	api := catalogtest.NewAPI(catalogtest.SampleProducts(5))
	t.Cleanup(api.Close)

	store := memory.New()
	codec := session.NewCookieCodec(signingKey, false)
	client := catalog.NewClient(catalog.Config{BaseURL: api.URL})
	return session.NewManager(store, codec, client, session.WithTTL(30*time.Minute)), store, codec
}

func demoCredentials() catalog.Credentials {
	return catalog.Credentials{Username: catalogtest.DemoUsername, Password: catalogtest.DemoPassword}
}

func TestManager_Login(t *testing.T) {
	m, store, _ := newManager(t)

	ws, cookie, err := m.Login(context.Background(), demoCredentials())
	require.NoError(t, err)
	require.NotNil(t, cookie)

	auth := ws.Auth.Snapshot()
	assert.True(t, auth.IsAuthenticated)
	assert.Equal(t, "Emily", auth.User.FirstName)
	assert.Equal(t, 1, m.Active())

	stored, err := store.Load(context.Background(), ws.ID)
	require.NoError(t, err)
	assert.Equal(t, auth.Token, stored.Token)
	assert.WithinDuration(t, time.Now().Add(30*time.Minute), stored.ExpiresAt, time.Minute)

	resolved, err := m.Resolve(requestWith(cookie))
	require.NoError(t, err)
	assert.Same(t, ws, resolved)
}

func TestManager_LoginRejected(t *testing.T) {
	m, store, _ := newManager(t)

	_, _, err := m.Login(context.Background(), catalog.Credentials{Username: "emilys", Password: "wrong"})
	require.Error(t, err)
	assert.Equal(t, "Invalid credentials", err.Error())
	assert.Equal(t, 0, m.Active())
	assert.Equal(t, 0, store.Len())
}

func TestManager_ResolveRehydrates(t *testing.T) {
	m, store, codec := newManager(t)
	ws, cookie, err := m.Login(context.Background(), demoCredentials())
	require.NoError(t, err)

	// A second process sharing the store has no workspace yet.
	other := session.NewManager(store, codec, nil)
	restored, err := other.Resolve(requestWith(cookie))
	require.NoError(t, err)
	assert.NotSame(t, ws, restored)
	assert.Equal(t, ws.ID, restored.ID)

	snap := restored.Auth.Snapshot()
	assert.True(t, snap.IsAuthenticated)
	assert.Equal(t, ws.Auth.Token(), snap.Token)
	assert.Equal(t, "emilys", snap.User.Username)
	assert.True(t, restored.Products.Empty())
}

func TestManager_ResolveExpiredSession(t *testing.T) {
	m, store, codec := newManager(t)
	ctx := context.Background()

	stale := &session.Session{
		ID:        "stale",
		Token:     "access-1",
		CreatedAt: time.Now().Add(-2 * time.Hour),
		ExpiresAt: time.Now().Add(-time.Hour),
	}
	require.NoError(t, store.Save(ctx, stale))

	// The cookie outlives the stored session.
	cookie, err := codec.Encode(&session.Session{ID: "stale", ExpiresAt: time.Now().Add(time.Hour)})
	require.NoError(t, err)

	_, err = m.Resolve(requestWith(cookie))
	assert.ErrorIs(t, err, session.ErrExpired)
	assert.Equal(t, 0, store.Len())
}

func TestManager_ResolveWithoutCookie(t *testing.T) {
	m, _, _ := newManager(t)
	_, err := m.Resolve(requestWith(nil))
	assert.ErrorIs(t, err, session.ErrNotFound)
}

func TestManager_Refresh(t *testing.T) {
	m, store, _ := newManager(t)
	ctx := context.Background()
	ws, _, err := m.Login(ctx, demoCredentials())
	require.NoError(t, err)
	before := ws.Auth.Token()

	require.NoError(t, m.Refresh(ctx, ws))

	after := ws.Auth.Token()
	assert.NotEqual(t, before, after)
	stored, err := store.Load(ctx, ws.ID)
	require.NoError(t, err)
	assert.Equal(t, after, stored.Token)
}

func TestManager_Logout(t *testing.T) {
	m, store, _ := newManager(t)
	ctx := context.Background()
	ws, cookie, err := m.Login(ctx, demoCredentials())
	require.NoError(t, err)

	require.NoError(t, m.Logout(ctx, ws.ID))
	assert.Equal(t, 0, m.Active())
	assert.Equal(t, 0, store.Len())
	assert.False(t, ws.Auth.Snapshot().IsAuthenticated)

	_, err = m.Resolve(requestWith(cookie))
	assert.ErrorIs(t, err, session.ErrNotFound)

	// Logging out twice is harmless.
	require.NoError(t, m.Logout(ctx, ws.ID))

	cleared := m.ClearCookie()
	assert.Equal(t, session.CookieName, cleared.Name)
	assert.Equal(t, http.SameSiteLaxMode, cleared.SameSite)
}

func TestManager_LoginSweepsExpired(t *testing.T) {
	m, store, _ := newManager(t)
	ctx := context.Background()
	require.NoError(t, store.Save(ctx, &session.Session{ID: "old", ExpiresAt: time.Now().Add(-time.Minute)}))

	_, _, err := m.Login(ctx, demoCredentials())
	require.NoError(t, err)
	assert.Equal(t, 1, store.Len())
}

func TestSessionExpired(t *testing.T) {
	now := time.Now()
	s := &session.Session{ExpiresAt: now}
	assert.True(t, s.Expired(now))
	assert.False(t, s.Expired(now.Add(-time.Second)))
}

func TestManager_SettingsApplyToNextLogin(t *testing.T) {
	m, store, _ := newManager(t)
	assert.Equal(t, 30*time.Minute, m.TTL())

	m.SetTTL(5 * time.Minute)
	m.SetSecureCookies(true)
	m.SetTTL(0)
	assert.Equal(t, 5*time.Minute, m.TTL())

	ws, cookie, err := m.Login(context.Background(), demoCredentials())
	require.NoError(t, err)
	assert.True(t, cookie.Secure)
	assert.WithinDuration(t, time.Now().Add(5*time.Minute), cookie.Expires, time.Minute)

	stored, err := store.Load(context.Background(), ws.ID)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(5*time.Minute), stored.ExpiresAt, time.Minute)
}
