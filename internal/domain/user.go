package domain

import "time"

// User is a staff panel user. Role flags are the source of truth for
// capability and tier derivation; they are never cached across requests.
type User struct {
	UserID    string    `gorm:"column:user_id;primaryKey" json:"user_id"`
	Username  string    `gorm:"not null" json:"username"`
	Staff     bool      `gorm:"not null;default:false" json:"staff"`
	Admin     bool      `gorm:"not null;default:false" json:"admin"`
	HeadAdmin bool      `gorm:"not null;default:false" json:"head_admin"`
	HeadDev   bool      `gorm:"not null;default:false" json:"head_dev"`
	Owner     bool      `gorm:"not null;default:false" json:"owner"`
	APIToken  string    `gorm:"column:api_token" json:"-"`
	CreatedAt time.Time `gorm:"not null" json:"created_at"`
}

func (User) TableName() string { return "users" }

// Head reports whether the user holds either head role.
func (u User) Head() bool { return u.HeadAdmin || u.HeadDev }
