package models

import (
	"time"
)

type CreditPackage struct {
	ID        int       `gorm:"primaryKey;autoIncrement" json:"id"`
	Name      string    `gorm:"column:name;size:150;not null" json:"name"`
	Credits   float64   `gorm:"column:credits;type:decimal(20,2);not null" json:"credits"`
	Price     float64   `gorm:"column:price;type:decimal(20,2);not null" json:"price"`
	Status    int       `gorm:"column:status;default:1" json:"status"` // 0: disabled, 1: active
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (CreditPackage) TableName() string {
	return "credit_packages"
}
