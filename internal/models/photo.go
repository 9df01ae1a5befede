package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	PhotoSourceUpload    = "upload"
	PhotoSourceInstagram = "instagram"
	PhotoSourceFacebook  = "facebook"
)

type PhotoAlbum struct {
	ID          uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	Title       string    `gorm:"not null" json:"title"`
	Description string    `json:"description"`
	CoverPath   string    `json:"cover_path"`
	Photos      []Photo   `gorm:"foreignKey:AlbumID" json:"photos,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}

func (album *PhotoAlbum) BeforeCreate(tx *gorm.DB) (err error) {
	if album.ID == uuid.Nil {
		album.ID = uuid.New()
	}
	return
}

// Photo is either an uploaded file (Path set) or an imported social post
// (ExternalURL set).
type Photo struct {
	ID          uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	AlbumID     uuid.UUID `gorm:"type:uuid;not null;index" json:"album_id"`
	Caption     string    `json:"caption"`
	Path        string    `json:"path"`
	ExternalURL string    `json:"external_url"`
	Source      string    `gorm:"not null;default:'upload'" json:"source"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}

func (photo *Photo) BeforeCreate(tx *gorm.DB) (err error) {
	if photo.ID == uuid.Nil {
		photo.ID = uuid.New()
	}
	return
}
