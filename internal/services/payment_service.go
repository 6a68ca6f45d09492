package services

import (
	"fmt"
	"time"

	"credits-service/internal/models"
	"credits-service/pkg/common"

	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// How long an overdue payment lingers before the sweep marks it expired.
const overdueExpiryWindow = 30 * 24 * time.Hour

// PaymentService owns the credit purchase flow: package lookup, gateway
// charge creation, the pending payment record and its pending ledger row.
type PaymentService struct {
	DB     *gorm.DB
	Credit *CreditService
	Asaas  *AsaasService
}

func NewPaymentService(db *gorm.DB, credit *CreditService, asaas *AsaasService) *PaymentService {
	return &PaymentService{DB: db, Credit: credit, Asaas: asaas}
}

type PurchaseCreditsDTO struct {
	PackageID   int
	OwnerType   string
	OwnerID     int
	CustomerRef string // Asaas customer id for the owner
	RecursoID   *int
	CreatedBy   string
}

type PurchaseCreditsResult struct {
	PaymentID    int       `json:"paymentId"`
	GatewayID    string    `json:"gatewayId"`
	PixQrCode    string    `json:"pixQrCode"`
	PixCopyPaste string    `json:"pixCopyPaste"`
	DueDate      time.Time `json:"dueDate"`
	Status       string    `json:"status"`
}

// PurchaseCredits creates the external charge and the internal pending
// records. The balance is only credited later, by the webhook reconciler.
func (s *PaymentService) PurchaseCredits(data PurchaseCreditsDTO) (*PurchaseCreditsResult, error) {
	var pkg models.CreditPackage
	if err := s.DB.Where("id = ? AND status = 1", data.PackageID).First(&pkg).Error; err != nil {
		return nil, ErrPackageNotFound
	}

	credit, err := s.Credit.GetOrCreateCredit(data.OwnerType, data.OwnerID)
	if err != nil {
		return nil, err
	}

	dueDate := time.Now().AddDate(0, 0, 3)
	charge, err := s.Asaas.CreateCharge(CreateChargeDTO{
		CustomerRef: data.CustomerRef,
		Amount:      pkg.Price,
		Description: fmt.Sprintf("%s (%.0f credits)", pkg.Name, pkg.Credits),
		Reference:   common.GenerateReference(),
		DueDate:     dueDate,
	})
	if err != nil {
		return nil, err
	}

	payment := models.Payment{
		GatewayID:    charge.ID,
		OwnerType:    data.OwnerType,
		OwnerID:      data.OwnerID,
		Amount:       pkg.Price,
		CreditAmount: pkg.Credits,
		Status:       models.PaymentStatusPending,
		PixQrCode:    charge.PixQrCode,
		PixCopyPaste: charge.PixCopyPaste,
		DueDate:      dueDate,
		RecursoID:    data.RecursoID,
	}
	if err := s.DB.Create(&payment).Error; err != nil {
		return nil, err
	}

	// History visibility before confirmation; no balance effect yet.
	_, err = s.Credit.CreatePendingCreditTransaction(
		credit.ID,
		pkg.Credits,
		&payment.ID,
		fmt.Sprintf("Credit purchase pending payment (%s)", pkg.Name),
		data.CreatedBy,
	)
	if err != nil {
		log.Errorf("pending ledger row for payment %d failed: %v", payment.ID, err)
	}

	return &PurchaseCreditsResult{
		PaymentID:    payment.ID,
		GatewayID:    payment.GatewayID,
		PixQrCode:    payment.PixQrCode,
		PixCopyPaste: payment.PixCopyPaste,
		DueDate:      payment.DueDate,
		Status:       payment.Status,
	}, nil
}

func (s *PaymentService) GetPayment(id int) (*models.Payment, error) {
	var payment models.Payment
	if err := s.DB.First(&payment, id).Error; err != nil {
		return nil, ErrPaymentNotFound
	}
	return &payment, nil
}

// SweepOverduePayments marks pending payments past their due date as overdue,
// and overdue payments past the expiry window as expired. Confirmed and
// cancelled payments are terminal and never touched.
func (s *PaymentService) SweepOverduePayments() error {
	now := time.Now()

	res := s.DB.Model(&models.Payment{}).
		Where("status = ? AND due_date < ?", models.PaymentStatusPending, now).
		Update("status", models.PaymentStatusOverdue)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected > 0 {
		log.Printf("Marked %d payments overdue", res.RowsAffected)
	}

	res = s.DB.Model(&models.Payment{}).
		Where("status = ? AND due_date < ?", models.PaymentStatusOverdue, now.Add(-overdueExpiryWindow)).
		Update("status", models.PaymentStatusExpired)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected > 0 {
		log.Printf("Expired %d overdue payments", res.RowsAffected)
	}

	return nil
}

// StartScheduler initializes the cron job for PaymentService.
func (s *PaymentService) StartScheduler() {
	startCronJob("payment overdue sweep", "*/10 * * * *", func() {
		if err := s.SweepOverduePayments(); err != nil {
			log.Errorf("Error in SweepOverduePayments: %v", err)
		}
	})
}

type SavePackageDTO struct {
	ID      int
	Name    string
	Credits float64
	Price   float64
	Status  int
}

func (s *PaymentService) SavePackage(data SavePackageDTO) (*models.CreditPackage, error) {
	var pkg models.CreditPackage
	if data.ID != 0 {
		if err := s.DB.First(&pkg, data.ID).Error; err != nil {
			return nil, ErrPackageNotFound
		}
	}

	pkg.Name = data.Name
	pkg.Credits = data.Credits
	pkg.Price = data.Price
	pkg.Status = data.Status

	if err := s.DB.Save(&pkg).Error; err != nil {
		return nil, err
	}
	return &pkg, nil
}

func (s *PaymentService) ListPackages(onlyActive bool) ([]models.CreditPackage, error) {
	var packages []models.CreditPackage
	query := s.DB.Order("price ASC")
	if onlyActive {
		query = query.Where("status = 1")
	}
	if err := query.Find(&packages).Error; err != nil {
		return nil, err
	}
	return packages, nil
}
