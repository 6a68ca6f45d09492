package services

import (
	"testing"
	"time"

	"credits-service/internal/models"
)

func TestSweepOverduePayments(t *testing.T) {
	if testDB == nil {
		t.Skip("Database not configured")
	}
	defer cleanup()

	creditSvc := NewCreditService(testDB)
	svc := NewPaymentService(testDB, creditSvc, NewAsaasService(testDB))

	now := time.Now()
	payments := []models.Payment{
		{GatewayID: "pay_due", OwnerType: models.OwnerTypeClient, OwnerID: 401, Amount: 10, CreditAmount: 10,
			Status: models.PaymentStatusPending, DueDate: now.Add(-24 * time.Hour)},
		{GatewayID: "pay_fresh", OwnerType: models.OwnerTypeClient, OwnerID: 402, Amount: 10, CreditAmount: 10,
			Status: models.PaymentStatusPending, DueDate: now.Add(24 * time.Hour)},
		{GatewayID: "pay_old", OwnerType: models.OwnerTypeClient, OwnerID: 403, Amount: 10, CreditAmount: 10,
			Status: models.PaymentStatusOverdue, DueDate: now.Add(-40 * 24 * time.Hour)},
		{GatewayID: "pay_paid", OwnerType: models.OwnerTypeClient, OwnerID: 404, Amount: 10, CreditAmount: 10,
			Status: models.PaymentStatusConfirmed, DueDate: now.Add(-24 * time.Hour)},
	}
	for i := range payments {
		if err := testDB.Create(&payments[i]).Error; err != nil {
			t.Fatalf("seed payment failed: %v", err)
		}
	}

	if err := svc.SweepOverduePayments(); err != nil {
		t.Fatalf("SweepOverduePayments failed: %v", err)
	}

	expected := map[string]string{
		"pay_due":   models.PaymentStatusOverdue,
		"pay_fresh": models.PaymentStatusPending,
		"pay_old":   models.PaymentStatusExpired,
		"pay_paid":  models.PaymentStatusConfirmed,
	}
	for gatewayID, want := range expected {
		var payment models.Payment
		testDB.Where("gateway_id = ?", gatewayID).First(&payment)
		if payment.Status != want {
			t.Errorf("%s: expected %s, got %s", gatewayID, want, payment.Status)
		}
	}
}

func TestSaveAndListPackages(t *testing.T) {
	if testDB == nil {
		t.Skip("Database not configured")
	}
	defer cleanup()

	creditSvc := NewCreditService(testDB)
	svc := NewPaymentService(testDB, creditSvc, NewAsaasService(testDB))

	active, err := svc.SavePackage(SavePackageDTO{Name: "Starter", Credits: 10, Price: 49.90, Status: 1})
	if err != nil {
		t.Fatalf("SavePackage failed: %v", err)
	}
	if _, err := svc.SavePackage(SavePackageDTO{Name: "Legacy", Credits: 5, Price: 29.90, Status: 0}); err != nil {
		t.Fatalf("SavePackage failed: %v", err)
	}

	onlyActive, err := svc.ListPackages(true)
	if err != nil {
		t.Fatalf("ListPackages failed: %v", err)
	}
	if len(onlyActive) != 1 || onlyActive[0].ID != active.ID {
		t.Errorf("Expected only the active package, got %d", len(onlyActive))
	}

	all, err := svc.ListPackages(false)
	if err != nil {
		t.Fatalf("ListPackages failed: %v", err)
	}
	if len(all) != 2 {
		t.Errorf("Expected 2 packages, got %d", len(all))
	}

	// Update in place
	updated, err := svc.SavePackage(SavePackageDTO{ID: active.ID, Name: "Starter", Credits: 10, Price: 39.90, Status: 1})
	if err != nil {
		t.Fatalf("SavePackage update failed: %v", err)
	}
	if updated.Price != 39.90 {
		t.Errorf("Expected price 39.90, got %f", updated.Price)
	}
}
