package session

import (
	"errors"
	"fmt"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	// CookieName is the name of the session cookie.
	CookieName = "storefront_session"

	// SigningPurpose is the data key derivation label of the cookie key.
	SigningPurpose = "storefront/session-cookie"

	issuer = "storefront-admin"
)

type claims struct {
	SessionID string `json:"sid"`
	jwt.RegisteredClaims
}

// CookieCodec signs session ids into cookies and reads them back.
type CookieCodec struct {
	key    []byte
	secure atomic.Bool
	now    func() time.Time
}

// NewCookieCodec creates a codec signing with key (HS256).
func NewCookieCodec(key []byte, secure bool) *CookieCodec {
	c := &CookieCodec{key: key, now: time.Now}
	c.secure.Store(secure)
	return c
}

// SetSecure changes whether cookies issued from now on carry the Secure flag.
func (c *CookieCodec) SetSecure(secure bool) {
	c.secure.Store(secure)
}

// Encode returns the cookie for s.
func (c *CookieCodec) Encode(s *Session) (*http.Cookie, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, &claims{
		SessionID: s.ID,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			IssuedAt:  jwt.NewNumericDate(c.now()),
			ExpiresAt: jwt.NewNumericDate(s.ExpiresAt),
		},
	})
	signed, err := token.SignedString(c.key)
	if err != nil {
		return nil, fmt.Errorf("failed to sign session cookie: %w", err)
	}

	return &http.Cookie{
		Name:     CookieName,
		Value:    signed,
		Path:     "/",
		Expires:  s.ExpiresAt,
		HttpOnly: true,
		Secure:   c.secure.Load(),
		SameSite: http.SameSiteLaxMode,
	}, nil
}

// Decode returns the session id named by the request cookie. A missing or
// tampered cookie yields ErrNotFound; an expired one ErrExpired.
func (c *CookieCodec) Decode(r *http.Request) (string, error) {
	cookie, err := r.Cookie(CookieName)
	if err != nil {
		return "", ErrNotFound
	}

	parsed := &claims{}
	_, err = jwt.ParseWithClaims(cookie.Value, parsed, func(t *jwt.Token) (interface{}, error) {
		return c.key, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(c.now),
	)
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return "", ErrExpired
	case err != nil:
		return "", ErrNotFound
	case parsed.SessionID == "":
		return "", ErrNotFound
	}
	return parsed.SessionID, nil
}

// Clear returns a cookie that removes the session cookie from the browser.
func (c *CookieCodec) Clear() *http.Cookie {
	return &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
		HttpOnly: true,
		Secure:   c.secure.Load(),
		SameSite: http.SameSiteLaxMode,
	}
}
