package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type NewsPost struct {
	ID          uuid.UUID  `gorm:"type:uuid;primary_key" json:"id"`
	Title       string     `gorm:"not null" json:"title"`
	Slug        string     `gorm:"uniqueIndex;not null" json:"slug"`
	Excerpt     string     `json:"excerpt"`
	Body        string     `gorm:"not null" json:"body"`
	CoverPath   string     `json:"cover_path"`
	Published   bool       `gorm:"not null;default:false" json:"published"`
	PublishedAt *time.Time `json:"published_at"`
	AuthorID    uuid.UUID  `gorm:"type:uuid;not null" json:"-"`
	Author      User       `json:"-"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}

func (post *NewsPost) BeforeCreate(tx *gorm.DB) (err error) {
	if post.ID == uuid.Nil {
		post.ID = uuid.New()
	}
	return
}
