package store

import (
	"context"

	"panel/internal/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type MfaStore struct{ db *gorm.DB }

func (s *Store) Mfa() *MfaStore { return &MfaStore{s.DB} }

func (ms *MfaStore) Create(ctx context.Context, m *domain.MfaRecord) error {
	if m.Itag == uuid.Nil {
		m.Itag = uuid.New()
	}
	return ms.db.WithContext(ctx).Create(m).Error
}

func (ms *MfaStore) GetByUser(ctx context.Context, userID string) (*domain.MfaRecord, error) {
	var m domain.MfaRecord
	if err := ms.db.WithContext(ctx).First(&m, "user_id = ?", userID).Error; err != nil {
		return nil, err
	}
	return &m, nil
}

func (ms *MfaStore) UpdateSecret(ctx context.Context, userID, secret string) error {
	return ms.db.WithContext(ctx).
		Model(&domain.MfaRecord{}).
		Where("user_id = ?", userID).
		Update("mfa_secret", secret).Error
}

func (ms *MfaStore) SetVerified(ctx context.Context, userID string, verified bool) error {
	return ms.db.WithContext(ctx).
		Model(&domain.MfaRecord{}).
		Where("user_id = ?", userID).
		Update("mfa_verified", verified).Error
}
