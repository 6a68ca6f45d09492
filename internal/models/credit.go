package models

import (
	"time"
)

// Owner types for a credit balance.
const (
	OwnerTypeClient  = "client"
	OwnerTypeCompany = "company"
)

type Credit struct {
	ID             int       `gorm:"primaryKey;autoIncrement" json:"id"`
	OwnerType      string    `gorm:"column:owner_type;size:20;not null;uniqueIndex:idx_credit_owner" json:"owner_type"`
	OwnerID        int       `gorm:"column:owner_id;not null;uniqueIndex:idx_credit_owner" json:"owner_id"`
	Balance        float64   `gorm:"column:balance;type:decimal(20,2);default:0.00" json:"balance"`
	TotalPurchased float64   `gorm:"column:total_purchased;type:decimal(20,2);default:0.00" json:"total_purchased"`
	TotalUsed      float64   `gorm:"column:total_used;type:decimal(20,2);default:0.00" json:"total_used"`
	CreatedAt      time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (Credit) TableName() string {
	return "credits"
}
