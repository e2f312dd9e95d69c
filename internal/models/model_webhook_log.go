package models

import (
	"time"

	"gorm.io/datatypes"
)

type WebhookLogStatus string

const (
	WebhookLogStatusReceived     WebhookLogStatus = "received"
	WebhookLogStatusHandled      WebhookLogStatus = "handled"
	WebhookLogStatusHandleFailed WebhookLogStatus = "handle_failed"
)

// WebhookLog records every webhook delivery, before and after processing.
type WebhookLog struct {
	ID                string           `gorm:"column:id;type:uuid;primary_key" json:"id"`
	ProviderID        string           `gorm:"column:provider_id;type:varchar(64);not null" json:"provider_id"`
	TraceID           string           `gorm:"column:trace_id;type:varchar(128)" json:"trace_id"`
	EventType         string           `gorm:"column:event_type;type:varchar(64);index" json:"event_type"`
	ProviderSessionID string           `gorm:"column:provider_session_id;type:varchar(128)" json:"provider_session_id"`
	TransactionID     *int64           `gorm:"column:transaction_id" json:"transaction_id"`
	Data              datatypes.JSON   `gorm:"column:data;type:jsonb" json:"data"`
	Result            *datatypes.JSON  `gorm:"column:result;type:jsonb" json:"result"`
	Status            WebhookLogStatus `gorm:"column:status;type:varchar(64);not null" json:"status"`
	CreatedAt         time.Time        `json:"created_at"`
	UpdatedAt         time.Time        `json:"updated_at"`
}

func (WebhookLog) TableName() string { return "webhook_log" }
