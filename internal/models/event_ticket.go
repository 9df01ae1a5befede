package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	TicketPending   = "pending"
	TicketPaid      = "paid"
	TicketCancelled = "cancelled"
	TicketRefunded  = "refunded"
)

// EventTicket is one purchase of one or more tickets for an event. It is
// inserted in pending state when the checkout session is created and moved
// through paid/cancelled/refunded by the webhook reconciler. cancelled and
// refunded are terminal.
type EventTicket struct {
	ID                uuid.UUID    `gorm:"type:uuid;primary_key" json:"id"`
	EventID           uuid.UUID    `gorm:"type:uuid;not null;index" json:"event_id"`
	Event             Event        `json:"-"`
	BuyerName         string       `gorm:"not null" json:"buyer_name"`
	BuyerEmail        string       `gorm:"not null" json:"buyer_email"`
	BuyerPhone        string       `json:"buyer_phone"`
	Quantity          int          `gorm:"not null" json:"quantity"`
	UnitPrice         int64        `gorm:"not null" json:"unit_price"`
	TotalPrice        int64        `gorm:"not null" json:"total_price"`
	CheckoutSessionID string       `gorm:"index" json:"-"`
	PaymentIntentID   string       `gorm:"index" json:"-"`
	CustomerID        string       `json:"-"`
	Status            string       `gorm:"not null;default:'pending'" json:"status"`
	Codes             []TicketCode `gorm:"foreignKey:EventTicketID" json:"codes,omitempty"`
	CreatedAt         time.Time    `json:"created_at"`
	UpdatedAt         time.Time    `json:"updated_at"`
}

func (ticket *EventTicket) BeforeCreate(tx *gorm.DB) (err error) {
	if ticket.ID == uuid.Nil {
		ticket.ID = uuid.New()
	}
	return
}

// TicketCode is a single admission code. Uniqueness is enforced by the
// database, not by the generator.
type TicketCode struct {
	ID            uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	EventTicketID uuid.UUID `gorm:"type:uuid;not null;index" json:"-"`
	Code          string    `gorm:"uniqueIndex;not null" json:"code"`
	IsUsed        bool      `gorm:"not null;default:false" json:"is_used"`
	UsedAt        *time.Time `json:"used_at"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

func (code *TicketCode) BeforeCreate(tx *gorm.DB) (err error) {
	if code.ID == uuid.Nil {
		code.ID = uuid.New()
	}
	return
}
