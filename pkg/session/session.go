// Package session gates the admin views behind a login.
//
// A Session is the persisted half: the remote tokens and the operator
// profile, keyed by an opaque id. The browser only ever holds a signed
// cookie naming that id. The Manager pairs each live session with a
// Workspace, the in-process state containers (identity and catalog mirror)
// the views read from.
package session

import (
	"context"
	"errors"
	"time"

	"github.com/doodlesbykumbi/storefront-admin/pkg/catalog"
)

var (
	ErrNotFound = errors.New("session not found")
	ErrExpired  = errors.New("session expired")
)

// Session is the persisted state of one login.
type Session struct {
	ID           string
	Token        string
	RefreshToken string
	User         *catalog.User
	CreatedAt    time.Time
	ExpiresAt    time.Time
}

// Expired reports whether the session is past its expiry at now.
func (s *Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.After(now)
}

// Store persists sessions.
type Store interface {
	// Save creates or replaces a session.
	Save(ctx context.Context, s *Session) error
	// Load returns ErrNotFound for an unknown id and ErrExpired for a
	// session past its expiry.
	Load(ctx context.Context, id string) (*Session, error)
	Delete(ctx context.Context, id string) error
	// DeleteExpired removes every session that expired before now and
	// returns how many were removed.
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}
