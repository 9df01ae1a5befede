package models

import "time"

// WebhookEvent marks a provider event id as processed so duplicate deliveries
// can be skipped. ProcessingError keeps events that were acknowledged without
// effect (missing metadata) visible instead of silently dropped.
type WebhookEvent struct {
	EventID         string    `gorm:"primaryKey;size:128;not null"`
	EventType       string    `gorm:"size:64;index"`
	ProcessingError string    `gorm:"type:text"`
	ProcessedAt     time.Time
	CreatedAt       time.Time
}
