package models

import (
	"time"
)

// Recurso states. The reconciler only ever moves awaiting_payment -> cancelled
// when the linked payment is cancelled; the rest of the dispute workflow lives
// in the main platform.
const (
	RecursoDraft           = "draft"
	RecursoAwaitingPayment = "awaiting_payment"
	RecursoSubmitted       = "submitted"
	RecursoCancelled       = "cancelled"
)

type Recurso struct {
	ID          int       `gorm:"primaryKey;autoIncrement" json:"id"`
	ClientID    int       `gorm:"column:client_id;not null;index" json:"client_id"`
	CompanyID   int       `gorm:"column:company_id;not null;index" json:"company_id"`
	CitationNo  string    `gorm:"column:citation_no;size:100" json:"citation_no"`
	Status      string    `gorm:"column:status;size:30;default:draft" json:"status"`
	Description string    `gorm:"column:description;type:text" json:"description"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (Recurso) TableName() string {
	return "recursos"
}
