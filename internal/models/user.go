package models

import (
	"time"

	"gorm.io/gorm"
)

// Auth provider tags. Federated users carry a ProviderUserID and no
// local credentials; local users carry a Username and PasswordHash.
const (
	ProviderLocal  = "local"
	ProviderKakao  = "kakao"
	ProviderGoogle = "google"
)

// User is an identity record. Username and ProviderUserID are nullable
// pointer columns so the unique indexes only apply to rows that have them.
type User struct {
	ID             uint           `gorm:"primaryKey" json:"id"`
	Username       *string        `gorm:"size:50;uniqueIndex" json:"username,omitempty"`
	PasswordHash   *string        `gorm:"size:100" json:"-"`
	Nickname       string         `gorm:"size:50;not null" json:"nickname"`
	Email          *string        `gorm:"size:255" json:"email,omitempty"`
	Phone          *string        `gorm:"size:20" json:"phone,omitempty"`
	Location       *string        `gorm:"size:100" json:"location,omitempty"`
	ProfileImage   *string        `gorm:"type:text" json:"profile_image,omitempty"`
	Provider       string         `gorm:"size:20;not null;default:'local';uniqueIndex:idx_users_provider_uid" json:"provider"`
	ProviderUserID *string        `gorm:"size:100;uniqueIndex:idx_users_provider_uid" json:"-"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
	DeletedAt      gorm.DeletedAt `gorm:"index" json:"-"`
}

// LoginName is what goes into the token's username claim: the local
// username when there is one, otherwise the nickname.
func (u *User) LoginName() string {
	if u.Username != nil {
		return *u.Username
	}
	return u.Nickname
}
