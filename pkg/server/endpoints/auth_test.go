package endpoints

import (
	"net/http"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/doodlesbykumbi/storefront-admin/pkg/catalog/catalogtest"
	"github.com/doodlesbykumbi/storefront-admin/pkg/session"
)

func TestLoginPage(t *testing.T) {
	env := newTestEnv(t, 3)

	rec := env.do("GET", "/login", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Demo credentials:")
	assert.Contains(t, rec.Body.String(), "Sign In")
}

func TestLoginPage_RedirectsWhenSignedIn(t *testing.T) {
	env := newTestEnv(t, 3)
	cookie := env.login(t)

	rec := env.do("GET", "/login", nil, cookie)
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/", rec.Header().Get("Location"))
}

func TestLogin(t *testing.T) {
	tests := []struct {
		name       string
		form       url.Values
		wantStatus int
		wantBody   []string
		wantAudit  string
	}{
		{
			name:       "missing password",
			form:       url.Values{"username": {"emilys"}},
			wantStatus: http.StatusBadRequest,
			wantBody:   []string{"Please fill in all fields", `value="emilys"`},
		},
		{
			name:       "wrong password",
			form:       url.Values{"username": {"emilys"}, "password": {"nope"}},
			wantStatus: http.StatusUnauthorized,
			wantBody:   []string{"Invalid credentials", `class="alert"`},
			wantAudit:  "emilys failed to log in: Invalid credentials",
		},
		{
			name:       "demo account",
			form:       url.Values{"username": {catalogtest.DemoUsername}, "password": {catalogtest.DemoPassword}},
			wantStatus: http.StatusSeeOther,
			wantAudit:  "emilys logged in",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t, 3)

			rec := env.do("POST", "/login", tt.form)
			assert.Equal(t, tt.wantStatus, rec.Code)
			for _, want := range tt.wantBody {
				assert.Contains(t, rec.Body.String(), want)
			}
			if tt.wantAudit != "" {
				assert.Contains(t, env.audit.String(), tt.wantAudit)
			}

			if tt.wantStatus == http.StatusSeeOther {
				assert.Equal(t, "/", rec.Header().Get("Location"))
				assert.NotNil(t, cookieNamed(rec, session.CookieName))
				assert.NotNil(t, cookieNamed(rec, flashCookieName))
				assert.Equal(t, 1, env.srv.Sessions.Active())
			} else {
				assert.Nil(t, cookieNamed(rec, session.CookieName))
			}
		})
	}
}

func TestLogin_FlashShownOnce(t *testing.T) {
	env := newTestEnv(t, 3)

	rec := env.do("POST", "/login", url.Values{
		"username": {catalogtest.DemoUsername},
		"password": {catalogtest.DemoPassword},
	})
	require.Equal(t, http.StatusSeeOther, rec.Code)
	sessionCookie := cookieNamed(rec, session.CookieName)
	flash := cookieNamed(rec, flashCookieName)

	rec = env.do("GET", "/", nil, sessionCookie, flash)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Login successful!")

	cleared := cookieNamed(rec, flashCookieName)
	require.NotNil(t, cleared)
	assert.Equal(t, -1, cleared.MaxAge)

	rec = env.do("GET", "/", nil, sessionCookie)
	assert.NotContains(t, rec.Body.String(), "Login successful!")
}

func TestLogout(t *testing.T) {
	env := newTestEnv(t, 3)
	cookie := env.login(t)

	rec := env.do("POST", "/logout", nil, cookie)
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/login", rec.Header().Get("Location"))
	assert.Equal(t, 0, env.srv.Sessions.Active())
	assert.Contains(t, env.audit.String(), "emilys logged out")

	cleared := cookieNamed(rec, session.CookieName)
	require.NotNil(t, cleared)
	assert.Equal(t, -1, cleared.MaxAge)

	rec = env.do("GET", "/", nil, cookie)
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/login", rec.Header().Get("Location"))
}

func TestLogout_WithoutSession(t *testing.T) {
	env := newTestEnv(t, 3)

	rec := env.do("POST", "/logout", nil)
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Empty(t, env.audit.String())
}

func TestSessionRefresh(t *testing.T) {
	env := newTestEnv(t, 3)
	cookie := env.login(t)

	rec := env.do("POST", "/session/refresh", nil, cookie)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"refreshed"}`, rec.Body.String())

	env.api.FailNext("/auth/refresh", http.StatusForbidden)
	rec = env.do("POST", "/session/refresh", nil, cookie)
	assert.Equal(t, http.StatusBadGateway, rec.Code)
}

func TestLogin_UsesReloadedSettings(t *testing.T) {
	env := newTestEnv(t, 3)

	before := env.login(t)
	assert.False(t, before.Secure)
	assert.WithinDuration(t, time.Now().Add(session.DefaultTTL), before.Expires, time.Minute)

	next := *env.srv.Config()
	next.SecureCookies = true
	next.SessionTTLMinutes = 5
	next.RequestTimeoutSeconds = 3
	next.APIRateLimit = 0
	env.srv.SetConfig(&next)

	after := env.login(t)
	assert.True(t, after.Secure)
	assert.WithinDuration(t, time.Now().Add(5*time.Minute), after.Expires, time.Minute)
	assert.Equal(t, 3*time.Second, env.srv.Catalog.Timeout())
	assert.Equal(t, 5*time.Minute, env.srv.Sessions.TTL())
}
