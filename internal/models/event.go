package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Event struct {
	gorm.Model
	ID             uuid.UUID  `gorm:"type:uuid;primary_key" json:"id"`
	Title          string     `gorm:"not null" json:"title"`
	Description    string     `gorm:"not null" json:"description"`
	StartTime      time.Time  `gorm:"not null" json:"start_time"`
	EndTime        time.Time  `gorm:"not null" json:"end_time"`
	Location       string     `gorm:"not null" json:"location"`
	BannerPath     string     `json:"banner_path"`
	TicketPrice    int64      `gorm:"not null;default:0" json:"ticket_price"`
	TicketQuantity int        `gorm:"not null;default:0" json:"ticket_quantity"`
	TicketsSold    int        `gorm:"not null;default:0" json:"tickets_sold"`
	SalesStart     *time.Time `json:"sales_start"`
	SalesEnd       *time.Time `json:"sales_end"`
	StripePriceID  string     `json:"-"`
	User           User       `json:"-"`
	UserID         uuid.UUID  `json:"-"`
}

func (event *Event) BeforeCreate(tx *gorm.DB) (err error) {
	if event.ID == uuid.Nil {
		event.ID = uuid.New()
	}
	return
}

// TicketsAvailable is the remaining capacity at read time. The authoritative
// check is the conditional update that claims capacity during checkout.
func (event *Event) TicketsAvailable() int {
	return event.TicketQuantity - event.TicketsSold
}

// SalesOpen reports whether now falls inside the ticket sales window.
// A nil bound is open-ended.
func (event *Event) SalesOpen(now time.Time) bool {
	if event.SalesStart != nil && now.Before(*event.SalesStart) {
		return false
	}
	if event.SalesEnd != nil && now.After(*event.SalesEnd) {
		return false
	}
	return true
}
