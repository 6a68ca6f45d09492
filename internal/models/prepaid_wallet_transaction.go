package models

import (
	"time"
)

const (
	PrepaidTrxCredit = "credit"
	PrepaidTrxDebit  = "debit"
)

type PrepaidWalletTransaction struct {
	ID             int       `gorm:"primaryKey;autoIncrement" json:"id"`
	CompanyID      int       `gorm:"column:company_id;not null;index" json:"company_id"`
	TrxType        string    `gorm:"column:type;size:10;not null" json:"type"`
	Amount         float64   `gorm:"column:amount;type:decimal(20,2);not null" json:"amount"`
	BalanceAfter   float64   `gorm:"column:balance_after;type:decimal(20,2);default:0.00" json:"balance_after"`
	ServiceOrderID *int      `gorm:"column:service_order_id" json:"service_order_id"`
	Description    string    `gorm:"column:description;type:text" json:"description"`
	CreatedAt      time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (PrepaidWalletTransaction) TableName() string {
	return "prepaid_wallet_transactions"
}
