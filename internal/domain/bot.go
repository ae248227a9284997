package domain

import "time"

const (
	BotTypePending  = "pending"
	BotTypeClaimed  = "claimed"
	BotTypeApproved = "approved"
	BotTypeDenied   = "denied"
)

type Bot struct {
	BotID        string    `gorm:"column:bot_id;primaryKey" json:"bot_id"`
	ClientID     string    `gorm:"column:client_id" json:"client_id"`
	Type         string    `gorm:"not null;default:pending" json:"type"`
	Votes        int       `gorm:"not null;default:0" json:"votes"`
	Shards       int       `gorm:"not null;default:0" json:"shards"`
	Library      string    `json:"library"`
	InviteClicks int       `gorm:"not null;default:0" json:"invite_clicks"`
	Clicks       int       `gorm:"not null;default:0" json:"clicks"`
	Servers      int       `gorm:"not null;default:0" json:"servers"`
	ClaimedBy    *string   `json:"claimed_by"`
	ApprovalNote *string   `json:"approval_note"`
	Short        string    `json:"short"`
	Invite       string    `json:"invite"`
	Premium      bool      `gorm:"not null;default:false" json:"premium"`
	CreatedAt    time.Time `gorm:"not null" json:"created_at"`
}

func (Bot) TableName() string { return "bots" }
