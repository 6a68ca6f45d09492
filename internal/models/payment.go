package models

import (
	"time"
)

// Payment states. Confirmed and cancelled are terminal; overdue may still
// transition to confirmed if the customer pays late, or to expired by the
// scheduler sweep.
const (
	PaymentStatusPending   = "pending"
	PaymentStatusConfirmed = "confirmed"
	PaymentStatusOverdue   = "overdue"
	PaymentStatusCancelled = "cancelled"
	PaymentStatusExpired   = "expired"
	PaymentStatusRefunded  = "refunded"
)

type Payment struct {
	ID           int        `gorm:"primaryKey;autoIncrement" json:"id"`
	GatewayID    string     `gorm:"column:gateway_id;size:100;not null;uniqueIndex" json:"gateway_id"`
	OwnerType    string     `gorm:"column:owner_type;size:20;not null" json:"owner_type"`
	OwnerID      int        `gorm:"column:owner_id;not null;index" json:"owner_id"`
	Amount       float64    `gorm:"column:amount;type:decimal(20,2);not null" json:"amount"`
	CreditAmount float64    `gorm:"column:credit_amount;type:decimal(20,2);not null" json:"credit_amount"`
	Status       string     `gorm:"column:status;size:20;default:pending;index" json:"status"`
	PixQrCode    string     `gorm:"column:pix_qr_code;type:longtext" json:"pix_qr_code"`
	PixCopyPaste string     `gorm:"column:pix_copy_paste;type:longtext" json:"pix_copy_paste"`
	DueDate      time.Time  `gorm:"column:due_date" json:"due_date"`
	ConfirmedAt  *time.Time `gorm:"column:confirmed_at" json:"confirmed_at"`
	RawPayload   string     `gorm:"column:raw_payload;type:longtext" json:"raw_payload"`
	RecursoID    *int       `gorm:"column:recurso_id" json:"recurso_id"`
	CreatedAt    time.Time  `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time  `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (Payment) TableName() string {
	return "payments"
}
