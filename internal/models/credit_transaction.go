package models

import (
	"time"
)

// Ledger entry types.
const (
	TrxTypePurchase = "purchase"
	TrxTypeUsage    = "usage"
	TrxTypeRefund   = "refund"
	TrxTypeTransfer = "transfer"
)

// Ledger entry states. A pending purchase row is the only row that is
// ever updated in place (pending -> confirmed, keyed by payment_id).
const (
	TrxStatusPending   = "pending"
	TrxStatusConfirmed = "confirmed"
)

type CreditTransaction struct {
	ID            int       `gorm:"primaryKey;autoIncrement" json:"id"`
	TrxNo         string    `gorm:"column:transaction_no;size:20;index" json:"transaction_no"`
	CreditID      int       `gorm:"column:credit_id;not null;index" json:"credit_id"`
	TrxType       string    `gorm:"column:transaction_type;size:20;not null" json:"transaction_type"`
	Amount        float64   `gorm:"column:amount;type:decimal(20,2);not null" json:"amount"` // signed: positive credit, negative debit
	BalanceBefore float64   `gorm:"column:balance_before;type:decimal(20,2);default:0.00" json:"balance_before"`
	BalanceAfter  float64   `gorm:"column:balance_after;type:decimal(20,2);default:0.00" json:"balance_after"`
	Status        string    `gorm:"column:status;size:20;default:confirmed" json:"status"`
	ServiceID     *int      `gorm:"column:service_id" json:"service_id"`
	PaymentID     *int      `gorm:"column:payment_id;index" json:"payment_id"`
	Description   string    `gorm:"column:description;type:text" json:"description"`
	Metadata      string    `gorm:"column:metadata;type:text" json:"metadata"`
	CreatedBy     string    `gorm:"column:created_by;size:100" json:"created_by"`
	CreatedAt     time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (CreditTransaction) TableName() string {
	return "credit_transactions"
}
