package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/doodlesbykumbi/storefront-admin/pkg/catalog"
	"github.com/doodlesbykumbi/storefront-admin/pkg/session"
)

func TestStore(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	s := New()
	s.now = func() time.Time { return now }

	live := &session.Session{
		ID:        "live",
		Token:     "access",
		User:      &catalog.User{Username: "emilys"},
		CreatedAt: now,
		ExpiresAt: now.Add(time.Hour),
	}
	stale := &session.Session{ID: "stale", CreatedAt: now.Add(-2 * time.Hour), ExpiresAt: now.Add(-time.Hour)}
	require.NoError(t, s.Save(ctx, live))
	require.NoError(t, s.Save(ctx, stale))

	got, err := s.Load(ctx, "live")
	require.NoError(t, err)
	assert.Equal(t, "access", got.Token)
	assert.Equal(t, "emilys", got.User.Username)

	got.User.Username = "mutated"
	again, err := s.Load(ctx, "live")
	require.NoError(t, err)
	assert.Equal(t, "emilys", again.User.Username)

	_, err = s.Load(ctx, "stale")
	assert.ErrorIs(t, err, session.ErrExpired)

	_, err = s.Load(ctx, "missing")
	assert.ErrorIs(t, err, session.ErrNotFound)

	n, err := s.DeleteExpired(ctx, now)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	assert.Equal(t, 1, s.Len())

	require.NoError(t, s.Delete(ctx, "live"))
	assert.ErrorIs(t, s.Delete(ctx, "live"), session.ErrNotFound)
	assert.Equal(t, 0, s.Len())
}
