package store

import (
	"context"

	"panel/internal/domain"

	"gorm.io/gorm"
)

type UserStore struct{ db *gorm.DB }

func (s *Store) Users() *UserStore { return &UserStore{s.DB} }

func (us *UserStore) Get(ctx context.Context, userID string) (*domain.User, error) {
	var u domain.User
	if err := us.db.WithContext(ctx).First(&u, "user_id = ?", userID).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

func (us *UserStore) Exists(ctx context.Context, userID string) (bool, error) {
	var n int64
	err := us.db.WithContext(ctx).
		Model(&domain.User{}).
		Where("user_id = ?", userID).
		Count(&n).Error
	return n > 0, err
}
