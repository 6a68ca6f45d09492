package services

import (
	"errors"
	"fmt"
	"math"

	"credits-service/internal/models"

	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// PrepaidWalletService handles company balances that pay for service orders
// directly, with no gateway round-trip. The wallet row is the materialized
// balance, updated in the same transaction as every ledger insert; folding
// the ledger is kept as the audit path.
type PrepaidWalletService struct {
	DB *gorm.DB
}

func NewPrepaidWalletService(db *gorm.DB) *PrepaidWalletService {
	return &PrepaidWalletService{DB: db}
}

func (s *PrepaidWalletService) GetOrCreateWallet(companyID int) (*models.PrepaidWallet, error) {
	var wallet models.PrepaidWallet
	err := s.DB.Where("company_id = ?", companyID).First(&wallet).Error
	if err == nil {
		return &wallet, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	fresh := models.PrepaidWallet{CompanyID: companyID}
	if err := s.DB.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "company_id"}},
		DoNothing: true,
	}).Create(&fresh).Error; err != nil {
		return nil, err
	}

	if err := s.DB.Where("company_id = ?", companyID).First(&wallet).Error; err != nil {
		return nil, err
	}
	return &wallet, nil
}

// GetBalance returns the materialized balance.
func (s *PrepaidWalletService) GetBalance(companyID int) (float64, error) {
	wallet, err := s.GetOrCreateWallet(companyID)
	if err != nil {
		return 0, err
	}
	return wallet.Balance, nil
}

// FoldBalance recomputes the balance from the full ledger
// (sum of credits minus sum of debits). Audit and reconciliation only;
// the wallet row is the hot read path.
func (s *PrepaidWalletService) FoldBalance(companyID int) (float64, error) {
	var balance float64
	err := s.DB.Model(&models.PrepaidWalletTransaction{}).
		Where("company_id = ?", companyID).
		Select("COALESCE(SUM(CASE WHEN type = ? THEN amount ELSE -amount END), 0)", models.PrepaidTrxCredit).
		Scan(&balance).Error
	return balance, err
}

// Credit funds the wallet and appends the ledger row atomically.
func (s *PrepaidWalletService) Credit(companyID int, amount float64, description string) (*models.PrepaidWalletTransaction, error) {
	if amount <= 0 {
		return nil, ErrInvalidAmount
	}

	if _, err := s.GetOrCreateWallet(companyID); err != nil {
		return nil, err
	}

	var entry models.PrepaidWalletTransaction
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		var wallet models.PrepaidWallet
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("company_id = ?", companyID).First(&wallet).Error; err != nil {
			return err
		}

		if err := tx.Model(&models.PrepaidWallet{}).Where("id = ?", wallet.ID).
			UpdateColumn("balance", gorm.Expr("balance + ?", amount)).Error; err != nil {
			return err
		}

		entry = models.PrepaidWalletTransaction{
			CompanyID:    companyID,
			TrxType:      models.PrepaidTrxCredit,
			Amount:       amount,
			BalanceAfter: wallet.Balance + amount,
			Description:  description,
		}
		return tx.Create(&entry).Error
	})
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

type PayServiceOrderDTO struct {
	CompanyID int
	ClientID  int
	ServiceID int
	Amount    float64
}

type PayServiceOrderResult struct {
	ServiceOrder    models.ServiceOrder             `json:"serviceOrder"`
	Transaction     models.PrepaidWalletTransaction `json:"transaction"`
	PreviousBalance float64                         `json:"previousBalance"`
	NewBalance      float64                         `json:"newBalance"`
}

// PayServiceOrder debits the wallet for a service order in one transaction:
// lock wallet, check sufficiency, create or reuse the order, append the debit
// row, decrement the balance. Either everything commits or nothing does.
func (s *PrepaidWalletService) PayServiceOrder(data PayServiceOrderDTO) (*PayServiceOrderResult, error) {
	if data.Amount <= 0 {
		return nil, ErrInvalidAmount
	}

	if _, err := s.GetOrCreateWallet(data.CompanyID); err != nil {
		return nil, err
	}

	var result PayServiceOrderResult
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		var wallet models.PrepaidWallet
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("company_id = ?", data.CompanyID).First(&wallet).Error; err != nil {
			return err
		}

		if wallet.Balance < data.Amount {
			return &InsufficientBalanceError{Required: data.Amount, Available: wallet.Balance}
		}

		// Reuse an unpaid order for the same service if one exists.
		var order models.ServiceOrder
		err := tx.Where("company_id = ? AND client_id = ? AND service_id = ? AND status = ?",
			data.CompanyID, data.ClientID, data.ServiceID, models.ServiceOrderPending).
			First(&order).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			order = models.ServiceOrder{
				CompanyID: data.CompanyID,
				ClientID:  data.ClientID,
				ServiceID: data.ServiceID,
				Amount:    data.Amount,
				Status:    models.ServiceOrderPaid,
			}
			if err := tx.Create(&order).Error; err != nil {
				return err
			}
		} else if err != nil {
			return err
		} else {
			if err := tx.Model(&models.ServiceOrder{}).Where("id = ?", order.ID).Updates(map[string]interface{}{
				"status": models.ServiceOrderPaid,
				"amount": data.Amount,
			}).Error; err != nil {
				return err
			}
			order.Status = models.ServiceOrderPaid
			order.Amount = data.Amount
		}

		newBalance := wallet.Balance - data.Amount
		entry := models.PrepaidWalletTransaction{
			CompanyID:      data.CompanyID,
			TrxType:        models.PrepaidTrxDebit,
			Amount:         data.Amount,
			BalanceAfter:   newBalance,
			ServiceOrderID: &order.ID,
			Description:    fmt.Sprintf("Service order %d", order.ID),
		}
		if err := tx.Create(&entry).Error; err != nil {
			return err
		}

		if err := tx.Model(&models.PrepaidWallet{}).Where("id = ?", wallet.ID).
			UpdateColumn("balance", gorm.Expr("balance - ?", data.Amount)).Error; err != nil {
			return err
		}

		result = PayServiceOrderResult{
			ServiceOrder:    order,
			Transaction:     entry,
			PreviousBalance: wallet.Balance,
			NewBalance:      newBalance,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

type ListPrepaidTransactionsDTO struct {
	CompanyID int
	Page      int
	Limit     int
}

func (s *PrepaidWalletService) ListTransactions(data ListPrepaidTransactionsDTO) ([]models.PrepaidWalletTransaction, int64, error) {
	limit := data.Limit
	if limit <= 0 {
		limit = 50
	}
	page := data.Page
	if page < 1 {
		page = 1
	}
	offset := (page - 1) * limit

	query := s.DB.Model(&models.PrepaidWalletTransaction{}).Where("company_id = ?", data.CompanyID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var transactions []models.PrepaidWalletTransaction
	if err := query.Order("created_at DESC").Limit(limit).Offset(offset).Find(&transactions).Error; err != nil {
		return nil, 0, err
	}

	return transactions, total, nil
}

// StartAuditScheduler compares each wallet's materialized balance against its
// ledger fold hourly. Divergence is logged, never auto-corrected.
func (s *PrepaidWalletService) StartAuditScheduler() {
	runAudit := func() {
		var wallets []models.PrepaidWallet
		if err := s.DB.Find(&wallets).Error; err != nil {
			log.Errorf("prepaid audit: listing wallets failed: %v", err)
			return
		}
		for _, w := range wallets {
			folded, err := s.FoldBalance(w.CompanyID)
			if err != nil {
				log.Errorf("prepaid audit: fold failed for company %d: %v", w.CompanyID, err)
				continue
			}
			// Cent tolerance: decimal(20,2) values round-trip through float64.
			if math.Abs(folded-w.Balance) > 0.01 {
				log.WithFields(log.Fields{
					"companyId":    w.CompanyID,
					"balance":      w.Balance,
					"ledgerFolded": folded,
				}).Warn("prepaid audit: materialized balance diverges from ledger")
			}
		}
	}
	startHourlyJob("prepaid wallet audit", runAudit)
}
