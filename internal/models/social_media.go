package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	PlatformInstagram = "instagram"
	PlatformFacebook  = "facebook"
)

// SocialMediaConnection is one linked external account. The access token is
// stored AES-GCM encrypted; one row per (platform, account, user), upserted
// on reconnect.
type SocialMediaConnection struct {
	ID             uuid.UUID  `gorm:"type:uuid;primary_key" json:"id"`
	Platform       string     `gorm:"not null;uniqueIndex:idx_platform_account_user" json:"platform"`
	AccountID      string     `gorm:"not null;uniqueIndex:idx_platform_account_user" json:"account_id"`
	AccountName    string     `json:"account_name"`
	AccessToken    string     `gorm:"not null" json:"-"`
	TokenExpiresAt time.Time  `gorm:"not null" json:"token_expires_at"`
	IsActive       bool       `gorm:"not null" json:"is_active"`
	LastSyncedAt   *time.Time `json:"last_synced_at"`
	LastError      string     `json:"last_error"`
	UserID         uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:idx_platform_account_user" json:"-"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

func (conn *SocialMediaConnection) BeforeCreate(tx *gorm.DB) (err error) {
	if conn.ID == uuid.Nil {
		conn.ID = uuid.New()
	}
	return
}

// SocialMediaImport records an external post already copied into the gallery
// so repeat imports can skip it.
type SocialMediaImport struct {
	ID             uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	ConnectionID   uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_connection_post" json:"connection_id"`
	ExternalPostID string    `gorm:"not null;uniqueIndex:idx_connection_post" json:"external_post_id"`
	PhotoID        uuid.UUID `gorm:"type:uuid;not null" json:"photo_id"`
	CreatedAt      time.Time `json:"created_at"`
}

func (imp *SocialMediaImport) BeforeCreate(tx *gorm.DB) (err error) {
	if imp.ID == uuid.Nil {
		imp.ID = uuid.New()
	}
	return
}
