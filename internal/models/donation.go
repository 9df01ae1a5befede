package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	DonationSucceeded = "succeeded"
	DonationPending   = "pending"
	DonationCancelled = "cancelled"
	DonationRefunded  = "refunded"
)

// Donation is one settled payment: a one-time gift or a single billing cycle
// of a recurring gift. Rows are created by the webhook reconciler, never by
// the checkout endpoint, and are never hard-deleted.
type Donation struct {
	ID                uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	PaymentIntentID   *string   `gorm:"index" json:"payment_intent_id"`
	SubscriptionID    *string   `gorm:"index" json:"subscription_id"`
	CheckoutSessionID string    `gorm:"index" json:"-"`
	Amount            int64     `gorm:"not null" json:"amount"`
	Currency          string    `gorm:"not null;default:'usd'" json:"currency"`
	Status            string    `gorm:"not null;default:'succeeded'" json:"status"`
	DonationType      string    `gorm:"not null" json:"donation_type"`
	IsRecurring       bool      `gorm:"not null;default:false" json:"is_recurring"`
	RecurringInterval string    `json:"recurring_interval"`
	DonorName         string    `gorm:"not null" json:"donor_name"`
	DonorEmail        string    `gorm:"not null" json:"donor_email"`
	DonorPhone        string    `json:"donor_phone"`
	IsAnonymous       bool      `gorm:"not null;default:false" json:"is_anonymous"`
	StudentName       string    `json:"student_name"`
	Campus            string    `json:"campus"`
	Message           string    `json:"message"`
	ProviderMetadata  string    `json:"-"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

func (donation *Donation) BeforeCreate(tx *gorm.DB) (err error) {
	if donation.ID == uuid.Nil {
		donation.ID = uuid.New()
	}
	return
}
