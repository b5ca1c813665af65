package session_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/doodlesbykumbi/storefront-admin/pkg/session"
)

var signingKey = []byte("0123456789abcdef0123456789abcdef")

func requestWith(c *http.Cookie) *http.Request {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	if c != nil {
		r.AddCookie(c)
	}
	return r
}

func TestCookieCodec_RoundTrip(t *testing.T) {
	codec := session.NewCookieCodec(signingKey, true)
	sess := &session.Session{ID: "sid-1", ExpiresAt: time.Now().Add(time.Hour)}

	cookie, err := codec.Encode(sess)
	require.NoError(t, err)
	assert.Equal(t, session.CookieName, cookie.Name)
	assert.True(t, cookie.HttpOnly)
	assert.True(t, cookie.Secure)
	assert.Equal(t, "/", cookie.Path)

	id, err := codec.Decode(requestWith(cookie))
	require.NoError(t, err)
	assert.Equal(t, "sid-1", id)
}

func TestCookieCodec_Decode(t *testing.T) {
	codec := session.NewCookieCodec(signingKey, false)
	live := &session.Session{ID: "sid-1", ExpiresAt: time.Now().Add(time.Hour)}

	foreign, err := session.NewCookieCodec([]byte("another key another key another!"), false).Encode(live)
	require.NoError(t, err)

	expired, err := codec.Encode(&session.Session{ID: "sid-1", ExpiresAt: time.Now().Add(-time.Minute)})
	require.NoError(t, err)

	none := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{
		"sid": "sid-1",
		"iss": "storefront-admin",
		"exp": time.Now().Add(time.Hour).Unix(),
	})
	unsigned, err := none.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	tests := []struct {
		name   string
		cookie *http.Cookie
		want   error
	}{
		{name: "missing cookie", cookie: nil, want: session.ErrNotFound},
		{name: "garbage", cookie: &http.Cookie{Name: session.CookieName, Value: "not-a-jwt"}, want: session.ErrNotFound},
		{name: "signed with another key", cookie: foreign, want: session.ErrNotFound},
		{name: "unsigned", cookie: &http.Cookie{Name: session.CookieName, Value: unsigned}, want: session.ErrNotFound},
		{name: "expired", cookie: expired, want: session.ErrExpired},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := codec.Decode(requestWith(tt.cookie))
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestCookieCodec_Clear(t *testing.T) {
	c := session.NewCookieCodec(signingKey, false).Clear()
	assert.Equal(t, session.CookieName, c.Name)
	assert.Empty(t, c.Value)
	assert.Less(t, c.MaxAge, 0)
}

func TestCookieCodec_SetSecure(t *testing.T) {
	codec := session.NewCookieCodec(signingKey, false)
	sess := &session.Session{ID: "sid-1", ExpiresAt: time.Now().Add(time.Hour)}

	before, err := codec.Encode(sess)
	require.NoError(t, err)
	assert.False(t, before.Secure)

	codec.SetSecure(true)
	after, err := codec.Encode(sess)
	require.NoError(t, err)
	assert.True(t, after.Secure)
	assert.True(t, codec.Clear().Secure)
}
