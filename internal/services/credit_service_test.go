package services

import (
	"errors"
	"log"
	"math"
	"os"
	"testing"

	"credits-service/internal/models"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NOTE: These tests require a running MySQL instance.
// Set DATABASE_URL to run them; without it the DB tests skip and only the
// pure tests execute.

var testDB *gorm.DB

func setup() {
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		log.Println("Skipping DB tests: DATABASE_URL not set")
		return
	}

	var err error
	testDB, err = gorm.Open(mysql.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		log.Printf("Failed to connect to database: %v", err)
		return
	}

	// Migrate schemas
	testDB.AutoMigrate(
		&models.Credit{},
		&models.CreditTransaction{},
		&models.Payment{},
		&models.CreditPackage{},
		&models.PrepaidWallet{},
		&models.PrepaidWalletTransaction{},
		&models.ServiceOrder{},
		&models.Recurso{},
		&models.WebhookEvent{},
		&models.ArchivedWebhookEvent{},
	)
}

func cleanup() {
	if testDB != nil {
		testDB.Exec("DELETE FROM credit_transactions")
		testDB.Exec("DELETE FROM credits")
		testDB.Exec("DELETE FROM payments")
		testDB.Exec("DELETE FROM credit_packages")
		testDB.Exec("DELETE FROM prepaid_wallet_transactions")
		testDB.Exec("DELETE FROM prepaid_wallets")
		testDB.Exec("DELETE FROM service_orders")
		testDB.Exec("DELETE FROM recursos")
		testDB.Exec("DELETE FROM webhook_events")
		testDB.Exec("DELETE FROM archived_webhook_events")
	}
}

func TestSplitDebit(t *testing.T) {
	cases := []struct {
		name              string
		amount            float64
		companyBalance    float64
		useCompanyCredits bool
		wantCompany       float64
		wantClient        float64
	}{
		{"company covers all", 50, 100, true, 50, 0},
		{"company partially covers", 120, 100, true, 100, 20},
		{"company empty", 80, 0, true, 0, 80},
		{"company disabled", 80, 100, false, 0, 80},
		{"exact company balance", 100, 100, true, 100, 0},
		{"company absorbs whole debit", 35, 40, true, 35, 0},
	}

	for _, tc := range cases {
		companyShare, clientShare := SplitDebit(tc.amount, tc.companyBalance, tc.useCompanyCredits)
		if companyShare != tc.wantCompany || clientShare != tc.wantClient {
			t.Errorf("%s: got (%.2f, %.2f), want (%.2f, %.2f)",
				tc.name, companyShare, clientShare, tc.wantCompany, tc.wantClient)
		}
		if companyShare+clientShare != tc.amount {
			t.Errorf("%s: shares do not sum to amount", tc.name)
		}
	}
}

func TestGetOrCreateCredit(t *testing.T) {
	if testDB == nil {
		t.Skip("Database not configured")
	}
	defer cleanup()

	svc := NewCreditService(testDB)

	first, err := svc.GetOrCreateCredit(models.OwnerTypeClient, 101)
	if err != nil {
		t.Fatalf("GetOrCreateCredit failed: %v", err)
	}
	if first.Balance != 0 {
		t.Errorf("Expected zero balance on first access, got %f", first.Balance)
	}

	second, err := svc.GetOrCreateCredit(models.OwnerTypeClient, 101)
	if err != nil {
		t.Fatalf("GetOrCreateCredit failed on second call: %v", err)
	}
	if second.ID != first.ID {
		t.Errorf("Expected same credit row, got ids %d and %d", first.ID, second.ID)
	}

	if _, err := svc.GetOrCreateCredit("vendor", 101); !errors.Is(err, ErrInvalidOwner) {
		t.Errorf("Expected ErrInvalidOwner for unknown owner type, got %v", err)
	}
}

func TestValidateAndDebitCompanyFirst(t *testing.T) {
	if testDB == nil {
		t.Skip("Database not configured")
	}
	defer cleanup()

	svc := NewCreditService(testDB)

	svc.AddCredits(models.OwnerTypeCompany, 1, 100.00, nil, "test")
	svc.AddCredits(models.OwnerTypeClient, 102, 50.00, nil, "test")

	res, err := svc.ValidateAndDebit(DebitRequest{
		Amount:            120.00,
		ClientID:          102,
		CompanyID:         1,
		UseCompanyCredits: true,
		Description:       "Recurso fee",
	})
	if err != nil {
		t.Fatalf("ValidateAndDebit failed: %v", err)
	}

	if math.Abs(res.CompanyDebited-100.00) > 0.01 {
		t.Errorf("Expected CompanyDebited 100, got %f", res.CompanyDebited)
	}
	if math.Abs(res.ClientDebited-20.00) > 0.01 {
		t.Errorf("Expected ClientDebited 20, got %f", res.ClientDebited)
	}
	if math.Abs(res.CompanyBalance) > 0.01 {
		t.Errorf("Expected company balance 0, got %f", res.CompanyBalance)
	}
	if math.Abs(res.ClientBalance-30.00) > 0.01 {
		t.Errorf("Expected client balance 30, got %f", res.ClientBalance)
	}
}

func TestValidateAndDebitClientOnly(t *testing.T) {
	if testDB == nil {
		t.Skip("Database not configured")
	}
	defer cleanup()

	svc := NewCreditService(testDB)

	svc.AddCredits(models.OwnerTypeCompany, 1, 100.00, nil, "test")
	svc.AddCredits(models.OwnerTypeClient, 103, 80.00, nil, "test")

	res, err := svc.ValidateAndDebit(DebitRequest{
		Amount:            60.00,
		ClientID:          103,
		CompanyID:         1,
		UseCompanyCredits: false,
	})
	if err != nil {
		t.Fatalf("ValidateAndDebit failed: %v", err)
	}

	if res.CompanyDebited != 0 {
		t.Errorf("Expected CompanyDebited 0, got %f", res.CompanyDebited)
	}
	if math.Abs(res.ClientDebited-60.00) > 0.01 {
		t.Errorf("Expected ClientDebited 60, got %f", res.ClientDebited)
	}

	// Company balance untouched
	company, _ := svc.GetOrCreateCredit(models.OwnerTypeCompany, 1)
	if math.Abs(company.Balance-100.00) > 0.01 {
		t.Errorf("Expected company balance 100, got %f", company.Balance)
	}
}

func TestValidateAndDebitInsufficient(t *testing.T) {
	if testDB == nil {
		t.Skip("Database not configured")
	}
	defer cleanup()

	svc := NewCreditService(testDB)

	svc.AddCredits(models.OwnerTypeCompany, 1, 30.00, nil, "test")
	svc.AddCredits(models.OwnerTypeClient, 104, 20.00, nil, "test")

	_, err := svc.ValidateAndDebit(DebitRequest{
		Amount:            100.00,
		ClientID:          104,
		CompanyID:         1,
		UseCompanyCredits: true,
	})

	var insufficient *InsufficientCreditsError
	if !errors.As(err, &insufficient) {
		t.Fatalf("Expected InsufficientCreditsError, got %v", err)
	}
	if math.Abs(insufficient.Available-50.00) > 0.01 {
		t.Errorf("Expected Available 50, got %f", insufficient.Available)
	}

	// Both balances unchanged
	company, _ := svc.GetOrCreateCredit(models.OwnerTypeCompany, 1)
	client, _ := svc.GetOrCreateCredit(models.OwnerTypeClient, 104)
	if math.Abs(company.Balance-30.00) > 0.01 {
		t.Errorf("Expected company balance 30, got %f", company.Balance)
	}
	if math.Abs(client.Balance-20.00) > 0.01 {
		t.Errorf("Expected client balance 20, got %f", client.Balance)
	}
}

func TestValidateAndDebitClientOnlyInsufficient(t *testing.T) {
	if testDB == nil {
		t.Skip("Database not configured")
	}
	defer cleanup()

	svc := NewCreditService(testDB)

	// Company could cover the amount but is invisible with useCompanyCredits off
	svc.AddCredits(models.OwnerTypeCompany, 1, 500.00, nil, "test")
	svc.AddCredits(models.OwnerTypeClient, 107, 30.00, nil, "test")

	_, err := svc.ValidateAndDebit(DebitRequest{
		Amount:            50.00,
		ClientID:          107,
		CompanyID:         1,
		UseCompanyCredits: false,
	})

	var insufficient *InsufficientCreditsError
	if !errors.As(err, &insufficient) {
		t.Fatalf("Expected InsufficientCreditsError, got %v", err)
	}
	if math.Abs(insufficient.Required-50.00) > 0.01 {
		t.Errorf("Expected Required 50, got %f", insufficient.Required)
	}
	if math.Abs(insufficient.Available-30.00) > 0.01 {
		t.Errorf("Expected Available 30, got %f", insufficient.Available)
	}

	company, _ := svc.GetOrCreateCredit(models.OwnerTypeCompany, 1)
	client, _ := svc.GetOrCreateCredit(models.OwnerTypeClient, 107)
	if math.Abs(company.Balance-500.00) > 0.01 {
		t.Errorf("Expected company balance 500, got %f", company.Balance)
	}
	if math.Abs(client.Balance-30.00) > 0.01 {
		t.Errorf("Expected client balance 30, got %f", client.Balance)
	}
}

func TestAddCreditsConfirmsPendingRow(t *testing.T) {
	if testDB == nil {
		t.Skip("Database not configured")
	}
	defer cleanup()

	svc := NewCreditService(testDB)

	credit, err := svc.GetOrCreateCredit(models.OwnerTypeClient, 105)
	if err != nil {
		t.Fatalf("GetOrCreateCredit failed: %v", err)
	}

	paymentID := 9001
	_, err = svc.CreatePendingCreditTransaction(credit.ID, 40.00, &paymentID, "Pending purchase", "test")
	if err != nil {
		t.Fatalf("CreatePendingCreditTransaction failed: %v", err)
	}

	if _, err := svc.AddCredits(models.OwnerTypeClient, 105, 40.00, &paymentID, "webhook"); err != nil {
		t.Fatalf("AddCredits failed: %v", err)
	}

	// The pending row must be confirmed in place, not duplicated.
	var rows []models.CreditTransaction
	testDB.Where("credit_id = ? AND payment_id = ?", credit.ID, paymentID).Find(&rows)
	if len(rows) != 1 {
		t.Fatalf("Expected 1 ledger row for payment, got %d", len(rows))
	}
	if rows[0].Status != models.TrxStatusConfirmed {
		t.Errorf("Expected confirmed status, got %s", rows[0].Status)
	}
	if math.Abs(rows[0].BalanceAfter-40.00) > 0.01 {
		t.Errorf("Expected balance_after 40, got %f", rows[0].BalanceAfter)
	}
	if len(rows[0].TrxNo) != 7 {
		t.Errorf("Expected 7-char transaction no, got %q", rows[0].TrxNo)
	}
}

func TestLedgerSumMatchesBalance(t *testing.T) {
	if testDB == nil {
		t.Skip("Database not configured")
	}
	defer cleanup()

	svc := NewCreditService(testDB)

	svc.AddCredits(models.OwnerTypeClient, 106, 100.00, nil, "test")
	svc.ValidateAndDebit(DebitRequest{Amount: 35.00, ClientID: 106})
	svc.AddCredits(models.OwnerTypeClient, 106, 10.00, nil, "test")

	credit, _ := svc.GetOrCreateCredit(models.OwnerTypeClient, 106)
	sum, err := svc.LedgerSum(credit.ID)
	if err != nil {
		t.Fatalf("LedgerSum failed: %v", err)
	}

	if math.Abs(sum-credit.Balance) > 0.01 {
		t.Errorf("Ledger sum %f diverges from balance %f", sum, credit.Balance)
	}
	if math.Abs(credit.Balance-75.00) > 0.01 {
		t.Errorf("Expected balance 75, got %f", credit.Balance)
	}
}

func TestMain(m *testing.M) {
	setup()
	code := m.Run()
	os.Exit(code)
}
