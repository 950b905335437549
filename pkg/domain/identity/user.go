package identity

import (
	"time"
)

// User is a registered principal. Users are never deleted, only deactivated.
type User struct {
	ID             string     `json:"id" gorm:"primaryKey"`
	Email          string     `json:"email" gorm:"index"`
	Role           string     `json:"role"`
	MFAEnabled     bool       `json:"mfa_enabled"`
	TOTPSecret     string     `json:"-"`
	CredentialHash string     `json:"-"`
	Active         bool       `json:"active"`
	CreatedAt      time.Time  `json:"created_at"`
	LastLoginAt    *time.Time `json:"last_login_at"`
}

func (u User) TableName() string {
	return "public.users"
}

func (u User) IsActive() bool {
	return u.Active
}
