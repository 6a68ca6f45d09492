package tasks

import (
	"encoding/json"
	"testing"
)

func TestNewRecursoCancelTask(t *testing.T) {
	task, err := NewRecursoCancelTask(RecursoCancelPayload{PaymentID: 7, RecursoID: 12})
	if err != nil {
		t.Fatalf("NewRecursoCancelTask failed: %v", err)
	}
	if task.Type() != TypeRecursoCancel {
		t.Errorf("Expected type %s, got %s", TypeRecursoCancel, task.Type())
	}

	var payload RecursoCancelPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		t.Fatalf("payload unmarshal failed: %v", err)
	}
	if payload.PaymentID != 7 || payload.RecursoID != 12 {
		t.Errorf("Expected payload {7 12}, got %+v", payload)
	}
}

func TestNewPaymentNotifyTask(t *testing.T) {
	task, err := NewPaymentNotifyTask(PaymentNotifyPayload{PaymentID: 9, Status: "confirmed"})
	if err != nil {
		t.Fatalf("NewPaymentNotifyTask failed: %v", err)
	}
	if task.Type() != TypePaymentNotify {
		t.Errorf("Expected type %s, got %s", TypePaymentNotify, task.Type())
	}

	var payload PaymentNotifyPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		t.Fatalf("payload unmarshal failed: %v", err)
	}
	if payload.PaymentID != 9 || payload.Status != "confirmed" {
		t.Errorf("Expected payload {9 confirmed}, got %+v", payload)
	}
}
