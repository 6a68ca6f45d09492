package models

import (
	"time"
)

type WebhookEvent struct {
	ID               uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Event            string    `gorm:"column:event;size:100;not null" json:"event"`
	GatewayPaymentID string    `gorm:"column:gateway_payment_id;size:100;index" json:"gateway_payment_id"`
	Payload          string    `gorm:"column:payload;type:longtext" json:"payload"`
	Status           int       `gorm:"column:status;default:0" json:"status"` // 0: received, 1: processed, 2: failed
	Error            string    `gorm:"column:error;type:text" json:"error"`
	CreatedAt        time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt        time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (WebhookEvent) TableName() string {
	return "webhook_events"
}

type ArchivedWebhookEvent struct {
	ID               uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Event            string    `gorm:"column:event;size:100;not null" json:"event"`
	GatewayPaymentID string    `gorm:"column:gateway_payment_id;size:100;index" json:"gateway_payment_id"`
	Payload          string    `gorm:"column:payload;type:longtext" json:"payload"`
	Status           int       `gorm:"column:status;default:0" json:"status"`
	Error            string    `gorm:"column:error;type:text" json:"error"`
	ReceivedAt       time.Time `gorm:"column:received_at" json:"received_at"`
	CreatedAt        time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

func (ArchivedWebhookEvent) TableName() string {
	return "archived_webhook_events"
}
