package domain

import (
	"time"

	"github.com/google/uuid"
)

// MfaRecord holds a user's TOTP enrollment. The secret is regenerated on
// every enrollment request until the first successful verification.
type MfaRecord struct {
	Itag      uuid.UUID `gorm:"type:uuid;uniqueIndex" json:"itag"`
	UserID    string    `gorm:"primaryKey" json:"user_id"`
	Secret    string    `gorm:"column:mfa_secret;not null" json:"-"`
	Verified  bool      `gorm:"column:mfa_verified;not null;default:false" json:"verified"`
	CreatedAt time.Time `gorm:"not null" json:"created_at"`

	// Enrollment dies with its user.
	User *User `gorm:"belongsTo:User;foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
}

func (MfaRecord) TableName() string { return "staff_mfa" }
