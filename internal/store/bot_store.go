package store

import (
	"context"

	"panel/internal/domain"

	"gorm.io/gorm"
)

type BotStore struct{ db *gorm.DB }

func (s *Store) Bots() *BotStore { return &BotStore{s.DB} }

func (bs *BotStore) Get(ctx context.Context, botID string) (*domain.Bot, error) {
	var b domain.Bot
	if err := bs.db.WithContext(ctx).First(&b, "bot_id = ?", botID).Error; err != nil {
		return nil, err
	}
	return &b, nil
}

// Queue returns bots awaiting review, oldest first.
func (bs *BotStore) Queue(ctx context.Context) ([]domain.Bot, error) {
	var bots []domain.Bot
	err := bs.db.WithContext(ctx).
		Where("type = ? OR type = ?", domain.BotTypePending, domain.BotTypeClaimed).
		Order("created_at").
		Find(&bots).Error
	return bots, err
}

// Search matches a query against bot id, client id and the short
// description, oldest first.
func (bs *BotStore) Search(ctx context.Context, query string) ([]domain.Bot, error) {
	var bots []domain.Bot
	err := bs.db.WithContext(ctx).
		Where("bot_id = ? OR client_id = ? OR short LIKE ?", query, query, "%"+query+"%").
		Order("created_at").
		Find(&bots).Error
	return bots, err
}

func (bs *BotStore) SetClaimed(ctx context.Context, botID, staffID string) error {
	return bs.db.WithContext(ctx).
		Model(&domain.Bot{}).
		Where("bot_id = ?", botID).
		Updates(map[string]any{"type": domain.BotTypeClaimed, "claimed_by": staffID}).Error
}

func (bs *BotStore) Unclaim(ctx context.Context, botID string) error {
	return bs.db.WithContext(ctx).
		Model(&domain.Bot{}).
		Where("bot_id = ?", botID).
		Updates(map[string]any{"type": domain.BotTypePending, "claimed_by": nil}).Error
}

// SetType moves a bot into a review outcome state and records the note.
func (bs *BotStore) SetType(ctx context.Context, botID, botType string, note string) error {
	updates := map[string]any{"type": botType, "claimed_by": nil}
	if note != "" {
		updates["approval_note"] = note
	}
	return bs.db.WithContext(ctx).
		Model(&domain.Bot{}).
		Where("bot_id = ?", botID).
		Updates(updates).Error
}

func (bs *BotStore) SetPremium(ctx context.Context, botID string, premium bool) error {
	return bs.db.WithContext(ctx).
		Model(&domain.Bot{}).
		Where("bot_id = ?", botID).
		Update("premium", premium).Error
}

func (bs *BotStore) ResetVotes(ctx context.Context, botID string) error {
	return bs.db.WithContext(ctx).
		Model(&domain.Bot{}).
		Where("bot_id = ?", botID).
		Update("votes", 0).Error
}

func (bs *BotStore) ResetAllVotes(ctx context.Context) error {
	return bs.db.WithContext(ctx).
		Model(&domain.Bot{}).
		Where("votes != 0").
		Update("votes", 0).Error
}
