package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Rsvp struct {
	ID        uuid.UUID  `gorm:"type:uuid;primary_key" json:"id"`
	EventID   uuid.UUID  `gorm:"type:uuid;not null;index" json:"event_id"`
	Event     Event      `json:"-"`
	Name      string     `gorm:"not null" json:"name"`
	Email     string     `gorm:"not null" json:"email"`
	Guests    int        `gorm:"not null;default:1" json:"guests"`
	UserID    *uuid.UUID `gorm:"type:uuid" json:"-"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

func (rsvp *Rsvp) BeforeCreate(tx *gorm.DB) (err error) {
	if rsvp.ID == uuid.Nil {
		rsvp.ID = uuid.New()
	}
	return
}
