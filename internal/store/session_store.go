package store

import (
	"context"

	"panel/internal/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type SessionStore struct{ db *gorm.DB }

func (s *Store) Sessions() *SessionStore { return &SessionStore{s.DB} }

func (ss *SessionStore) Create(ctx context.Context, s *domain.Session) error {
	if s.Itag == uuid.Nil {
		s.Itag = uuid.New()
	}
	return ss.db.WithContext(ctx).Create(s).Error
}

func (ss *SessionStore) GetByToken(ctx context.Context, token string) (*domain.Session, error) {
	var s domain.Session
	if err := ss.db.WithContext(ctx).First(&s, "token = ?", token).Error; err != nil {
		return nil, err
	}
	return &s, nil
}

func (ss *SessionStore) Activate(ctx context.Context, token string) error {
	return ss.db.WithContext(ctx).
		Model(&domain.Session{}).
		Where("token = ?", token).
		Update("state", domain.SessionActive).Error
}

// DeleteByToken is idempotent; a zero count is not an error.
func (ss *SessionStore) DeleteByToken(ctx context.Context, token string) (int64, error) {
	tx := ss.db.WithContext(ctx).
		Where("token = ?", token).
		Delete(&domain.Session{})
	return tx.RowsAffected, tx.Error
}

func (ss *SessionStore) DeleteAllForUser(ctx context.Context, userID string) error {
	return ss.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Delete(&domain.Session{}).Error
}

func (ss *SessionStore) CountForUser(ctx context.Context, userID string) (int64, error) {
	var n int64
	err := ss.db.WithContext(ctx).
		Model(&domain.Session{}).
		Where("user_id = ?", userID).
		Count(&n).Error
	return n, err
}
