// Package gorm stores sessions in Postgres through GORM.
//
// The remote tokens are sealed with the data key before they are written;
// the session id is the associated data, so a token row copied under another
// id does not open.
package gorm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/doodlesbykumbi/storefront-admin/pkg/catalog"
	"github.com/doodlesbykumbi/storefront-admin/pkg/cipher"
	"github.com/doodlesbykumbi/storefront-admin/pkg/session"
)

var _ session.Store = (*Store)(nil)

// StoredSession is a row of the sessions table.
type StoredSession struct {
	ID           string `gorm:"primaryKey"`
	Token        []byte
	RefreshToken []byte
	Profile      string
	CreatedAt    time.Time
	ExpiresAt    time.Time
}

func (StoredSession) TableName() string {
	return "sessions"
}

// Store implements session.Store on a sessions table.
type Store struct {
	db     *gorm.DB
	sealer cipher.Sealer
	now    func() time.Time
}

// New creates a Store.
func New(db *gorm.DB, sealer cipher.Sealer) *Store {
	return &Store{db: db, sealer: sealer, now: time.Now}
}

func (s *Store) Save(ctx context.Context, sess *session.Session) error {
	aad := []byte(sess.ID)
	token, err := s.sealer.Seal(aad, []byte(sess.Token))
	if err != nil {
		return err
	}
	refresh, err := s.sealer.Seal(aad, []byte(sess.RefreshToken))
	if err != nil {
		return err
	}
	profile := ""
	if sess.User != nil {
		raw, err := json.Marshal(sess.User)
		if err != nil {
			return err
		}
		profile = string(raw)
	}

	row := StoredSession{
		ID:           sess.ID,
		Token:        token,
		RefreshToken: refresh,
		Profile:      profile,
		CreatedAt:    sess.CreatedAt,
		ExpiresAt:    sess.ExpiresAt,
	}
	return s.db.WithContext(ctx).
		Clauses(clause.OnConflict{UpdateAll: true}).
		Create(&row).Error
}

func (s *Store) Load(ctx context.Context, id string) (*session.Session, error) {
	var row StoredSession
	tx := s.db.WithContext(ctx).Where("id = ?", id).First(&row)
	if tx.Error != nil {
		if errors.Is(tx.Error, gorm.ErrRecordNotFound) {
			return nil, session.ErrNotFound
		}
		return nil, tx.Error
	}

	sess := &session.Session{
		ID:        row.ID,
		CreatedAt: row.CreatedAt,
		ExpiresAt: row.ExpiresAt,
	}
	if sess.Expired(s.now()) {
		return nil, session.ErrExpired
	}

	aad := []byte(row.ID)
	token, err := s.sealer.Open(aad, row.Token)
	if err != nil {
		return nil, fmt.Errorf("failed to open session token: %w", err)
	}
	refresh, err := s.sealer.Open(aad, row.RefreshToken)
	if err != nil {
		return nil, fmt.Errorf("failed to open refresh token: %w", err)
	}
	sess.Token = string(token)
	sess.RefreshToken = string(refresh)

	if row.Profile != "" {
		var user catalog.User
		if err := json.Unmarshal([]byte(row.Profile), &user); err != nil {
			return nil, fmt.Errorf("bad stored profile: %w", err)
		}
		sess.User = &user
	}
	return sess, nil
}

func (s *Store) Delete(ctx context.Context, id string) error {
	tx := s.db.WithContext(ctx).Where("id = ?", id).Delete(&StoredSession{})
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return session.ErrNotFound
	}
	return nil
}

func (s *Store) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	tx := s.db.WithContext(ctx).Where("expires_at <= ?", now).Delete(&StoredSession{})
	return tx.RowsAffected, tx.Error
}

// CheckConnectivity verifies the database answers.
func (s *Store) CheckConnectivity(ctx context.Context) error {
	return s.db.WithContext(ctx).Exec("SELECT 1").Error
}
