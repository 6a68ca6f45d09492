package tasks

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

// Task Types
const (
	TypeRecursoCancel = "recurso-cancel"
	TypePaymentNotify = "payment-notify"
)

type RecursoCancelPayload struct {
	PaymentID int `json:"paymentId"`
	RecursoID int `json:"recursoId"`
}

type PaymentNotifyPayload struct {
	PaymentID int    `json:"paymentId"`
	Status    string `json:"status"`
}

// Task Creators

func NewRecursoCancelTask(payload RecursoCancelPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TypeRecursoCancel, data), nil
}

func NewPaymentNotifyTask(payload PaymentNotifyPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TypePaymentNotify, data), nil
}
