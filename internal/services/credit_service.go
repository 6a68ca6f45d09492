package services

import (
	"errors"
	"fmt"
	"math"

	"credits-service/internal/models"
	"credits-service/pkg/common"

	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CreditService is the single authority for reading and mutating credit
// balances and recording the corresponding ledger entries. Every balance
// mutation runs inside one database transaction with the credit row locked,
// so concurrent debits can never both observe the same sufficient balance.
type CreditService struct {
	DB *gorm.DB
}

func NewCreditService(db *gorm.DB) *CreditService {
	return &CreditService{DB: db}
}

// GetOrCreateCredit returns the balance row for an owner, inserting a
// zero-balance row on first access. Concurrent first access is resolved by
// the unique index on (owner_type, owner_id), not by application logic.
func (s *CreditService) GetOrCreateCredit(ownerType string, ownerID int) (*models.Credit, error) {
	if ownerType != models.OwnerTypeClient && ownerType != models.OwnerTypeCompany {
		return nil, ErrInvalidOwner
	}

	var credit models.Credit
	err := s.DB.Where("owner_type = ? AND owner_id = ?", ownerType, ownerID).First(&credit).Error
	if err == nil {
		return &credit, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	fresh := models.Credit{OwnerType: ownerType, OwnerID: ownerID}
	if err := s.DB.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "owner_type"}, {Name: "owner_id"}},
		DoNothing: true,
	}).Create(&fresh).Error; err != nil {
		return nil, err
	}

	if err := s.DB.Where("owner_type = ? AND owner_id = ?", ownerType, ownerID).First(&credit).Error; err != nil {
		return nil, err
	}
	return &credit, nil
}

type AvailableBalance struct {
	Total          float64 `json:"total"`
	ClientBalance  float64 `json:"clientBalance"`
	CompanyBalance float64 `json:"companyBalance"`
}

// GetAvailableBalance computes the spendable total under the priority policy.
// When useCompanyCredits is false the company balance is invisible to the
// caller, even if it would cover the amount.
func (s *CreditService) GetAvailableBalance(clientID, companyID int, useCompanyCredits bool) (AvailableBalance, error) {
	clientCredit, err := s.GetOrCreateCredit(models.OwnerTypeClient, clientID)
	if err != nil {
		return AvailableBalance{}, err
	}

	result := AvailableBalance{
		ClientBalance: clientCredit.Balance,
		Total:         clientCredit.Balance,
	}

	if useCompanyCredits {
		companyCredit, err := s.GetOrCreateCredit(models.OwnerTypeCompany, companyID)
		if err != nil {
			return AvailableBalance{}, err
		}
		result.CompanyBalance = companyCredit.Balance
		result.Total = companyCredit.Balance + clientCredit.Balance
	}

	return result, nil
}

// SplitDebit applies the priority policy: company balance is drained first,
// up to min(amount, companyBalance); the remainder comes from the client.
// With useCompanyCredits=false the whole amount falls on the client.
func SplitDebit(amount, companyBalance float64, useCompanyCredits bool) (companyShare, clientShare float64) {
	if !useCompanyCredits {
		return 0, amount
	}
	companyShare = amount
	if companyBalance < companyShare {
		companyShare = companyBalance
	}
	if companyShare < 0 {
		companyShare = 0
	}
	return companyShare, amount - companyShare
}

type DebitRequest struct {
	Amount            float64
	ClientID          int
	CompanyID         int
	UseCompanyCredits bool
	ServiceID         *int
	Description       string
	CreatedBy         string
}

type DebitResult struct {
	CompanyDebited float64 `json:"companyDebited"`
	ClientDebited  float64 `json:"clientDebited"`
	ClientBalance  float64 `json:"clientBalance"`
	CompanyBalance float64 `json:"companyBalance"`
}

// ValidateAndDebit checks sufficiency and debits in one transaction. Credit
// rows are locked in a fixed order (company first, then client) so concurrent
// debits serialize per owner instead of deadlocking. Insufficient funds fail
// with InsufficientCreditsError and leave both balances untouched.
func (s *CreditService) ValidateAndDebit(req DebitRequest) (*DebitResult, error) {
	if req.Amount <= 0 {
		return nil, ErrInvalidAmount
	}

	// Ensure both rows exist before locking them.
	if _, err := s.GetOrCreateCredit(models.OwnerTypeClient, req.ClientID); err != nil {
		return nil, err
	}
	if req.UseCompanyCredits {
		if _, err := s.GetOrCreateCredit(models.OwnerTypeCompany, req.CompanyID); err != nil {
			return nil, err
		}
	}

	var result DebitResult
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		var companyCredit, clientCredit models.Credit

		if req.UseCompanyCredits {
			if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
				Where("owner_type = ? AND owner_id = ?", models.OwnerTypeCompany, req.CompanyID).
				First(&companyCredit).Error; err != nil {
				return err
			}
		}
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("owner_type = ? AND owner_id = ?", models.OwnerTypeClient, req.ClientID).
			First(&clientCredit).Error; err != nil {
			return err
		}

		available := clientCredit.Balance
		if req.UseCompanyCredits {
			available += companyCredit.Balance
		}
		if available < req.Amount {
			return &InsufficientCreditsError{Required: req.Amount, Available: available}
		}

		companyShare, clientShare := SplitDebit(req.Amount, companyCredit.Balance, req.UseCompanyCredits)

		if companyShare > 0 {
			if err := s.debitCredit(tx, &companyCredit, companyShare, req); err != nil {
				return err
			}
		}
		if clientShare > 0 {
			if err := s.debitCredit(tx, &clientCredit, clientShare, req); err != nil {
				return err
			}
		}

		result = DebitResult{
			CompanyDebited: companyShare,
			ClientDebited:  clientShare,
			ClientBalance:  clientCredit.Balance,
			CompanyBalance: companyCredit.Balance,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &result, nil
}

// debitCredit mutates one locked credit row and appends its usage ledger row.
func (s *CreditService) debitCredit(tx *gorm.DB, credit *models.Credit, share float64, req DebitRequest) error {
	before := credit.Balance
	credit.Balance -= share
	credit.TotalUsed += share

	if err := tx.Model(&models.Credit{}).Where("id = ?", credit.ID).Updates(map[string]interface{}{
		"balance":    gorm.Expr("balance - ?", share),
		"total_used": gorm.Expr("total_used + ?", share),
	}).Error; err != nil {
		return err
	}

	entry := models.CreditTransaction{
		TrxNo:         common.GenerateTrxNo(),
		CreditID:      credit.ID,
		TrxType:       models.TrxTypeUsage,
		Amount:        -share,
		BalanceBefore: before,
		BalanceAfter:  credit.Balance,
		Status:        models.TrxStatusConfirmed,
		ServiceID:     req.ServiceID,
		Description:   req.Description,
		CreatedBy:     req.CreatedBy,
	}
	return tx.Create(&entry).Error
}

// AddCredits increments the balance and total_purchased. When a pending
// purchase row already exists for paymentID on this credit, that row is
// transitioned to confirmed in place instead of inserting a duplicate, so
// the purchase appears in history before gateway confirmation without being
// double-counted afterwards.
func (s *CreditService) AddCredits(ownerType string, ownerID int, amount float64, paymentID *int, createdBy string) (*models.Credit, error) {
	if amount <= 0 {
		return nil, ErrInvalidAmount
	}

	credit, err := s.GetOrCreateCredit(ownerType, ownerID)
	if err != nil {
		return nil, err
	}

	err = s.DB.Transaction(func(tx *gorm.DB) error {
		return s.addCredits(tx, credit, amount, paymentID, createdBy)
	})
	if err != nil {
		return nil, err
	}
	return credit, nil
}

// addCredits is the in-transaction body of AddCredits, shared with the
// webhook reconciler so the payment transition and the credit land atomically.
func (s *CreditService) addCredits(tx *gorm.DB, credit *models.Credit, amount float64, paymentID *int, createdBy string) error {
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", credit.ID).First(credit).Error; err != nil {
		return err
	}

	before := credit.Balance
	credit.Balance += amount
	credit.TotalPurchased += amount

	if err := tx.Model(&models.Credit{}).Where("id = ?", credit.ID).Updates(map[string]interface{}{
		"balance":         gorm.Expr("balance + ?", amount),
		"total_purchased": gorm.Expr("total_purchased + ?", amount),
	}).Error; err != nil {
		return err
	}

	if paymentID != nil {
		var pending models.CreditTransaction
		err := tx.Where("credit_id = ? AND payment_id = ? AND transaction_type = ? AND status = ?",
			credit.ID, *paymentID, models.TrxTypePurchase, models.TrxStatusPending).
			First(&pending).Error
		if err == nil {
			return tx.Model(&models.CreditTransaction{}).Where("id = ?", pending.ID).Updates(map[string]interface{}{
				"status":         models.TrxStatusConfirmed,
				"amount":         amount,
				"balance_before": before,
				"balance_after":  credit.Balance,
				"description":    fmt.Sprintf("Credit purchase confirmed (%.2f credits)", amount),
			}).Error
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
	}

	entry := models.CreditTransaction{
		TrxNo:         common.GenerateTrxNo(),
		CreditID:      credit.ID,
		TrxType:       models.TrxTypePurchase,
		Amount:        amount,
		BalanceBefore: before,
		BalanceAfter:  credit.Balance,
		Status:        models.TrxStatusConfirmed,
		PaymentID:     paymentID,
		Description:   fmt.Sprintf("Credit purchase (%.2f credits)", amount),
		CreatedBy:     createdBy,
	}
	return tx.Create(&entry).Error
}

// CreatePendingCreditTransaction records a ledger row for history visibility
// before gateway confirmation. It has no balance effect: balance_after equals
// balance_before until AddCredits confirms it.
func (s *CreditService) CreatePendingCreditTransaction(creditID int, amount float64, paymentID *int, description, createdBy string) (*models.CreditTransaction, error) {
	var credit models.Credit
	if err := s.DB.First(&credit, creditID).Error; err != nil {
		return nil, err
	}

	entry := models.CreditTransaction{
		TrxNo:         common.GenerateTrxNo(),
		CreditID:      creditID,
		TrxType:       models.TrxTypePurchase,
		Amount:        amount,
		BalanceBefore: credit.Balance,
		BalanceAfter:  credit.Balance,
		Status:        models.TrxStatusPending,
		PaymentID:     paymentID,
		Description:   description,
		CreatedBy:     createdBy,
	}
	if err := s.DB.Create(&entry).Error; err != nil {
		return nil, err
	}
	return &entry, nil
}

// refundCredits reverses a previously confirmed purchase inside the caller's
// transaction, appending a refund ledger row.
func (s *CreditService) refundCredits(tx *gorm.DB, credit *models.Credit, amount float64, paymentID *int, description string) error {
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", credit.ID).First(credit).Error; err != nil {
		return err
	}

	before := credit.Balance
	credit.Balance -= amount

	if err := tx.Model(&models.Credit{}).Where("id = ?", credit.ID).
		UpdateColumn("balance", gorm.Expr("balance - ?", amount)).Error; err != nil {
		return err
	}

	entry := models.CreditTransaction{
		TrxNo:         common.GenerateTrxNo(),
		CreditID:      credit.ID,
		TrxType:       models.TrxTypeRefund,
		Amount:        -amount,
		BalanceBefore: before,
		BalanceAfter:  credit.Balance,
		Status:        models.TrxStatusConfirmed,
		PaymentID:     paymentID,
		Description:   description,
	}
	return tx.Create(&entry).Error
}

// LedgerSum folds the ledger for a credit. Audit path only: the materialized
// balance is authoritative, and the scheduler logs any divergence.
func (s *CreditService) LedgerSum(creditID int) (float64, error) {
	var sum float64
	err := s.DB.Model(&models.CreditTransaction{}).
		Where("credit_id = ? AND status = ?", creditID, models.TrxStatusConfirmed).
		Select("COALESCE(SUM(amount), 0)").Scan(&sum).Error
	return sum, err
}

type ListTransactionsDTO struct {
	OwnerType string
	OwnerID   int
	Page      int
	Limit     int
}

func (s *CreditService) ListTransactions(data ListTransactionsDTO) ([]models.CreditTransaction, int64, error) {
	credit, err := s.GetOrCreateCredit(data.OwnerType, data.OwnerID)
	if err != nil {
		return nil, 0, err
	}

	limit := data.Limit
	if limit <= 0 {
		limit = 50
	}
	page := data.Page
	if page < 1 {
		page = 1
	}
	offset := (page - 1) * limit

	query := s.DB.Model(&models.CreditTransaction{}).Where("credit_id = ?", credit.ID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var transactions []models.CreditTransaction
	if err := query.Order("created_at DESC").Limit(limit).Offset(offset).Find(&transactions).Error; err != nil {
		return nil, 0, err
	}

	return transactions, total, nil
}

// StartAuditScheduler compares each materialized balance against its ledger
// fold hourly. Divergence is logged, never auto-corrected.
func (s *CreditService) StartAuditScheduler() {
	runAudit := func() {
		var credits []models.Credit
		if err := s.DB.Find(&credits).Error; err != nil {
			log.Errorf("credit audit: listing credits failed: %v", err)
			return
		}
		for _, c := range credits {
			sum, err := s.LedgerSum(c.ID)
			if err != nil {
				log.Errorf("credit audit: fold failed for credit %d: %v", c.ID, err)
				continue
			}
			// Cent tolerance: decimal(20,2) values round-trip through float64.
			if math.Abs(sum-c.Balance) > 0.01 {
				log.WithFields(log.Fields{
					"creditId":  c.ID,
					"ownerType": c.OwnerType,
					"ownerId":   c.OwnerID,
					"balance":   c.Balance,
					"ledgerSum": sum,
				}).Warn("credit audit: materialized balance diverges from ledger")
			}
		}
	}
	startHourlyJob("credit ledger audit", runAudit)
}
