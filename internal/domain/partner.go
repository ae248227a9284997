package domain

import (
	"time"

	"gorm.io/datatypes"
)

// Link is a single named URL attached to a partner.
type Link struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

type Partner struct {
	ID        string         `gorm:"primaryKey" json:"id"`
	Name      string         `gorm:"not null" json:"name"`
	ImageType string         `gorm:"not null" json:"image_type"`
	Short     string         `json:"short"`
	Links     datatypes.JSON `json:"links"`
	Type      string         `gorm:"not null" json:"type"`
	UserID    string         `gorm:"not null" json:"user_id"`
	CreatedAt time.Time      `gorm:"not null" json:"created_at"`
}

func (Partner) TableName() string { return "partners" }

type PartnerType struct {
	ID        string    `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"not null" json:"name"`
	Short     string    `json:"short"`
	Icon      string    `json:"icon"`
	CreatedAt time.Time `gorm:"not null" json:"created_at"`
}

func (PartnerType) TableName() string { return "partner_types" }
