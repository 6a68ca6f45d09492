package models

import (
	"time"
)

const (
	ServiceOrderPending   = "pending"
	ServiceOrderPaid      = "paid"
	ServiceOrderCancelled = "cancelled"
)

type ServiceOrder struct {
	ID        int       `gorm:"primaryKey;autoIncrement" json:"id"`
	CompanyID int       `gorm:"column:company_id;not null;index" json:"company_id"`
	ClientID  int       `gorm:"column:client_id;not null;index" json:"client_id"`
	ServiceID int       `gorm:"column:service_id;not null" json:"service_id"`
	Amount    float64   `gorm:"column:amount;type:decimal(20,2);not null" json:"amount"`
	Status    string    `gorm:"column:status;size:20;default:pending" json:"status"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (ServiceOrder) TableName() string {
	return "service_orders"
}
