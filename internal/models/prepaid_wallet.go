package models

import (
	"time"
)

// PrepaidWallet holds the materialized company balance. It is updated in the
// same transaction as every prepaid_wallet_transactions insert; the ledger
// fold is kept as the audit path only.
type PrepaidWallet struct {
	ID        int       `gorm:"primaryKey;autoIncrement" json:"id"`
	CompanyID int       `gorm:"column:company_id;not null;uniqueIndex" json:"company_id"`
	Balance   float64   `gorm:"column:balance;type:decimal(20,2);default:0.00" json:"balance"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (PrepaidWallet) TableName() string {
	return "prepaid_wallets"
}
