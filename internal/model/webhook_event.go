package model

import "github.com/google/uuid"

// WebhookEvent is the raw inbound marketplace event, logged on receipt
// before any processing. It doubles as an idempotency/audit ledger: an
// event is stored even when its target product cannot be resolved, and
// rows are never deleted.
type WebhookEvent struct {
	BaseModel
	SellerID  uuid.UUID `gorm:"type:uuid;index;not null" json:"seller_id"`
	EventType string    `gorm:"type:varchar(100);not null" json:"event_type"`
	Payload   JSONMap   `gorm:"type:text" json:"payload"`
	Processed bool      `gorm:"default:false" json:"processed"`
}
