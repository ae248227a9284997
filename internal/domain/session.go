package domain

import (
	"time"

	"github.com/google/uuid"
)

type SessionState string

const (
	SessionPending SessionState = "pending"
	SessionActive  SessionState = "active"
)

// Session is one link of a user's login chain. A user has at most one live
// chain: Login deletes all prior rows before inserting a fresh pending one.
type Session struct {
	Itag      uuid.UUID    `gorm:"type:uuid;uniqueIndex" json:"itag"`
	MfaRef    uuid.UUID    `gorm:"type:uuid;not null" json:"-"`
	UserID    string       `gorm:"index;not null" json:"user_id"`
	Token     string       `gorm:"uniqueIndex;not null" json:"-"`
	State     SessionState `gorm:"not null;default:pending" json:"state"`
	CreatedAt time.Time    `gorm:"not null" json:"created_at"`

	// Sessions die with their user.
	User *User `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
}

func (Session) TableName() string { return "staff_sessions" }
