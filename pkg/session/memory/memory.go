// Package memory keeps sessions in process memory. Sessions do not survive
// a restart.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/doodlesbykumbi/storefront-admin/pkg/session"
)

var _ session.Store = (*Store)(nil)

// Store is an in-memory session.Store.
type Store struct {
	mu       sync.RWMutex
	sessions map[string]session.Session
	now      func() time.Time
}

// New creates an empty Store.
func New() *Store {
	return &Store{sessions: map[string]session.Session{}, now: time.Now}
}

func (s *Store) Save(ctx context.Context, sess *session.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[sess.ID] = copySession(sess)
	return nil
}

func (s *Store) Load(ctx context.Context, id string) (*session.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, ok := s.sessions[id]
	if !ok {
		return nil, session.ErrNotFound
	}
	if sess.Expired(s.now()) {
		return nil, session.ErrExpired
	}
	out := copySession(&sess)
	return &out, nil
}

func (s *Store) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[id]; !ok {
		return session.ErrNotFound
	}
	delete(s.sessions, id)
	return nil
}

func (s *Store) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var n int64
	for id, sess := range s.sessions {
		if sess.Expired(now) {
			delete(s.sessions, id)
			n++
		}
	}
	return n, nil
}

// Len returns the number of held sessions, expired or not.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

func copySession(sess *session.Session) session.Session {
	out := *sess
	if sess.User != nil {
		user := *sess.User
		out.User = &user
	}
	return out
}
