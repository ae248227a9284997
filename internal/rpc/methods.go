package rpc

import (
	"context"
	"fmt"

	"panel/internal/domain"
	"panel/internal/store"
)

func botTargets() []TargetType { return []TargetType{TargetBot} }

func getBot(ctx context.Context, tx *store.Store, botID string) (*domain.Bot, error) {
	bot, err := tx.Bots().Get(ctx, botID)
	if err != nil {
		if store.IsNotFound(err) {
			return nil, fmt.Errorf("%w: bot %s", domain.ErrNotFound, botID)
		}
		return nil, err
	}
	return bot, nil
}

type Claim struct {
	BotID string `json:"bot_id"`
}

func (Claim) Name() string                  { return "Claim" }
func (Claim) Label() string                 { return "Claim Bot" }
func (Claim) Description() string           { return "Claim a bot in the queue for review" }
func (Claim) NeedsTier() domain.Tier        { return domain.TierStaff }
func (Claim) SupportedTargets() []TargetType { return botTargets() }
func (Claim) Fields() []Field               { return nil }

func (m *Claim) Handle(ctx context.Context, h Handle) (Result, error) {
	err := h.Store.WithTx(ctx, func(tx *store.Store) error {
		bot, err := getBot(ctx, tx, m.BotID)
		if err != nil {
			return err
		}
		if bot.Type != domain.BotTypePending {
			return fmt.Errorf("%w: bot is not pending review", domain.ErrValidation)
		}
		return tx.Bots().SetClaimed(ctx, m.BotID, h.UserID)
	})
	if err != nil {
		return Result{}, err
	}
	notify(ctx, h, fmt.Sprintf("<@%s> claimed bot <@%s>", h.UserID, m.BotID))
	return Result{}, nil
}

type Unclaim struct {
	BotID  string `json:"bot_id"`
	Reason string `json:"reason"`
}

func (Unclaim) Name() string                  { return "Unclaim" }
func (Unclaim) Label() string                 { return "Unclaim Bot" }
func (Unclaim) Description() string           { return "Release a claimed bot back into the queue" }
func (Unclaim) NeedsTier() domain.Tier        { return domain.TierStaff }
func (Unclaim) SupportedTargets() []TargetType { return botTargets() }
func (Unclaim) Fields() []Field               { return []Field{reasonField()} }

func (m *Unclaim) Handle(ctx context.Context, h Handle) (Result, error) {
	err := h.Store.WithTx(ctx, func(tx *store.Store) error {
		bot, err := getBot(ctx, tx, m.BotID)
		if err != nil {
			return err
		}
		if bot.Type != domain.BotTypeClaimed {
			return fmt.Errorf("%w: bot is not claimed", domain.ErrValidation)
		}
		return tx.Bots().Unclaim(ctx, m.BotID)
	})
	if err != nil {
		return Result{}, err
	}
	notify(ctx, h, fmt.Sprintf("<@%s> unclaimed bot <@%s>: %s", h.UserID, m.BotID, m.Reason))
	return Result{}, nil
}

type Approve struct {
	BotID  string `json:"bot_id"`
	Reason string `json:"reason"`
}

func (Approve) Name() string                  { return "Approve" }
func (Approve) Label() string                 { return "Approve Bot" }
func (Approve) Description() string           { return "Approve a claimed bot" }
func (Approve) NeedsTier() domain.Tier        { return domain.TierStaff }
func (Approve) SupportedTargets() []TargetType { return botTargets() }
func (Approve) Fields() []Field               { return []Field{reasonField()} }

func (m *Approve) Handle(ctx context.Context, h Handle) (Result, error) {
	var invite string
	err := h.Store.WithTx(ctx, func(tx *store.Store) error {
		bot, err := getBot(ctx, tx, m.BotID)
		if err != nil {
			return err
		}
		if bot.Type != domain.BotTypeClaimed {
			return fmt.Errorf("%w: only claimed bots can be approved", domain.ErrValidation)
		}
		invite = bot.Invite
		return tx.Bots().SetType(ctx, m.BotID, domain.BotTypeApproved, m.Reason)
	})
	if err != nil {
		return Result{}, err
	}
	notify(ctx, h, fmt.Sprintf("<@%s> approved bot <@%s>: %s", h.UserID, m.BotID, m.Reason))
	return Result{Content: invite}, nil
}

type Deny struct {
	BotID  string `json:"bot_id"`
	Reason string `json:"reason"`
}

func (Deny) Name() string                  { return "Deny" }
func (Deny) Label() string                 { return "Deny Bot" }
func (Deny) Description() string           { return "Deny a claimed bot" }
func (Deny) NeedsTier() domain.Tier        { return domain.TierStaff }
func (Deny) SupportedTargets() []TargetType { return botTargets() }
func (Deny) Fields() []Field               { return []Field{reasonField()} }

func (m *Deny) Handle(ctx context.Context, h Handle) (Result, error) {
	err := h.Store.WithTx(ctx, func(tx *store.Store) error {
		bot, err := getBot(ctx, tx, m.BotID)
		if err != nil {
			return err
		}
		if bot.Type != domain.BotTypeClaimed {
			return fmt.Errorf("%w: only claimed bots can be denied", domain.ErrValidation)
		}
		return tx.Bots().SetType(ctx, m.BotID, domain.BotTypeDenied, m.Reason)
	})
	if err != nil {
		return Result{}, err
	}
	notify(ctx, h, fmt.Sprintf("<@%s> denied bot <@%s>: %s", h.UserID, m.BotID, m.Reason))
	return Result{}, nil
}

type Unverify struct {
	BotID  string `json:"bot_id"`
	Reason string `json:"reason"`
}

func (Unverify) Name() string                  { return "Unverify" }
func (Unverify) Label() string                 { return "Unverify Bot" }
func (Unverify) Description() string           { return "Send an approved bot back into the review queue" }
func (Unverify) NeedsTier() domain.Tier        { return domain.TierHead }
func (Unverify) SupportedTargets() []TargetType { return botTargets() }
func (Unverify) Fields() []Field               { return []Field{reasonField()} }

func (m *Unverify) Handle(ctx context.Context, h Handle) (Result, error) {
	err := h.Store.WithTx(ctx, func(tx *store.Store) error {
		if _, err := getBot(ctx, tx, m.BotID); err != nil {
			return err
		}
		return tx.Bots().SetType(ctx, m.BotID, domain.BotTypePending, m.Reason)
	})
	if err != nil {
		return Result{}, err
	}
	notify(ctx, h, fmt.Sprintf("<@%s> unverified bot <@%s>: %s", h.UserID, m.BotID, m.Reason))
	return Result{}, nil
}

type PremiumAdd struct {
	BotID           string `json:"bot_id"`
	Reason          string `json:"reason"`
	TimePeriodHours int    `json:"time_period_hours"`
}

func (PremiumAdd) Name() string           { return "PremiumAdd" }
func (PremiumAdd) Label() string          { return "Add Premium" }
func (PremiumAdd) Description() string    { return "Grant premium to a bot for a time period" }
func (PremiumAdd) NeedsTier() domain.Tier { return domain.TierHead }
func (PremiumAdd) SupportedTargets() []TargetType { return botTargets() }
func (PremiumAdd) Fields() []Field {
	return []Field{
		{ID: "time_period_hours", Label: "Time Period (hours)", Type: "hour", Placeholder: "24", Required: true},
		reasonField(),
	}
}

func (m *PremiumAdd) Handle(ctx context.Context, h Handle) (Result, error) {
	if m.TimePeriodHours <= 0 {
		return Result{}, fmt.Errorf("%w: time period must be positive", domain.ErrValidation)
	}
	err := h.Store.WithTx(ctx, func(tx *store.Store) error {
		if _, err := getBot(ctx, tx, m.BotID); err != nil {
			return err
		}
		return tx.Bots().SetPremium(ctx, m.BotID, true)
	})
	if err != nil {
		return Result{}, err
	}
	notify(ctx, h, fmt.Sprintf("<@%s> granted premium to bot <@%s> for %d hours: %s",
		h.UserID, m.BotID, m.TimePeriodHours, m.Reason))
	return Result{}, nil
}

type PremiumRemove struct {
	BotID  string `json:"bot_id"`
	Reason string `json:"reason"`
}

func (PremiumRemove) Name() string                  { return "PremiumRemove" }
func (PremiumRemove) Label() string                 { return "Remove Premium" }
func (PremiumRemove) Description() string           { return "Revoke premium from a bot" }
func (PremiumRemove) NeedsTier() domain.Tier        { return domain.TierHead }
func (PremiumRemove) SupportedTargets() []TargetType { return botTargets() }
func (PremiumRemove) Fields() []Field               { return []Field{reasonField()} }

func (m *PremiumRemove) Handle(ctx context.Context, h Handle) (Result, error) {
	err := h.Store.WithTx(ctx, func(tx *store.Store) error {
		if _, err := getBot(ctx, tx, m.BotID); err != nil {
			return err
		}
		return tx.Bots().SetPremium(ctx, m.BotID, false)
	})
	if err != nil {
		return Result{}, err
	}
	notify(ctx, h, fmt.Sprintf("<@%s> revoked premium from bot <@%s>: %s", h.UserID, m.BotID, m.Reason))
	return Result{}, nil
}

type VoteReset struct {
	TargetID string `json:"target_id"`
	Reason   string `json:"reason"`
}

func (VoteReset) Name() string                  { return "VoteReset" }
func (VoteReset) Label() string                 { return "Reset Votes" }
func (VoteReset) Description() string           { return "Reset the vote count of one entity" }
func (VoteReset) NeedsTier() domain.Tier        { return domain.TierHead }
func (VoteReset) SupportedTargets() []TargetType { return botTargets() }
func (VoteReset) Fields() []Field               { return []Field{reasonField()} }

func (m *VoteReset) Handle(ctx context.Context, h Handle) (Result, error) {
	err := h.Store.WithTx(ctx, func(tx *store.Store) error {
		if _, err := getBot(ctx, tx, m.TargetID); err != nil {
			return err
		}
		return tx.Bots().ResetVotes(ctx, m.TargetID)
	})
	if err != nil {
		return Result{}, err
	}
	notify(ctx, h, fmt.Sprintf("<@%s> reset votes of <@%s>: %s", h.UserID, m.TargetID, m.Reason))
	return Result{}, nil
}

type VoteResetAll struct {
	Reason string `json:"reason"`
}

func (VoteResetAll) Name() string                  { return "VoteResetAll" }
func (VoteResetAll) Label() string                 { return "Reset All Votes" }
func (VoteResetAll) Description() string           { return "Reset the vote count of every entity" }
func (VoteResetAll) NeedsTier() domain.Tier        { return domain.TierHead }
func (VoteResetAll) SupportedTargets() []TargetType { return botTargets() }
func (VoteResetAll) Fields() []Field               { return []Field{reasonField()} }

func (m *VoteResetAll) Handle(ctx context.Context, h Handle) (Result, error) {
	if err := h.Store.Bots().ResetAllVotes(ctx); err != nil {
		return Result{}, err
	}
	notify(ctx, h, fmt.Sprintf("<@%s> reset all votes: %s", h.UserID, m.Reason))
	return Result{}, nil
}
