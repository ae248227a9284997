package store

import (
	"context"

	"panel/internal/domain"

	"gorm.io/gorm"
)

type PartnerStore struct{ db *gorm.DB }

func (s *Store) Partners() *PartnerStore { return &PartnerStore{s.DB} }

func (ps *PartnerStore) List(ctx context.Context) ([]domain.Partner, error) {
	var partners []domain.Partner
	err := ps.db.WithContext(ctx).Find(&partners).Error
	return partners, err
}

func (ps *PartnerStore) ListTypes(ctx context.Context) ([]domain.PartnerType, error) {
	var types []domain.PartnerType
	err := ps.db.WithContext(ctx).Find(&types).Error
	return types, err
}

func (ps *PartnerStore) Get(ctx context.Context, id string) (*domain.Partner, error) {
	var p domain.Partner
	if err := ps.db.WithContext(ctx).First(&p, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func (ps *PartnerStore) Exists(ctx context.Context, id string) (bool, error) {
	var n int64
	err := ps.db.WithContext(ctx).
		Model(&domain.Partner{}).
		Where("id = ?", id).
		Count(&n).Error
	return n > 0, err
}

func (ps *PartnerStore) TypeExists(ctx context.Context, id string) (bool, error) {
	var n int64
	err := ps.db.WithContext(ctx).
		Model(&domain.PartnerType{}).
		Where("id = ?", id).
		Count(&n).Error
	return n > 0, err
}

func (ps *PartnerStore) Create(ctx context.Context, p *domain.Partner) error {
	return ps.db.WithContext(ctx).Create(p).Error
}

func (ps *PartnerStore) Delete(ctx context.Context, id string) error {
	return ps.db.WithContext(ctx).
		Where("id = ?", id).
		Delete(&domain.Partner{}).Error
}
