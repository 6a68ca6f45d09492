package consumers

import (
	"fmt"
	"os"

	"credits-service/internal/models"
	"credits-service/internal/services"
	"credits-service/internal/tasks"
	"credits-service/pkg/common"

	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

type PaymentProcessor struct {
	DB *gorm.DB
}

func NewPaymentProcessor(db *gorm.DB) *PaymentProcessor {
	return &PaymentProcessor{DB: db}
}

// ProcessRecursoCancel cancels the dispute linked to a cancelled payment.
func (p *PaymentProcessor) ProcessRecursoCancel(data tasks.RecursoCancelPayload) {
	if err := services.CancelRecurso(p.DB, data.RecursoID); err != nil {
		log.Errorf("recurso %d cancellation failed (payment %d): %v", data.RecursoID, data.PaymentID, err)
		return
	}
	log.Printf("Recurso %d cancelled following payment %d", data.RecursoID, data.PaymentID)
}

// ProcessNotify posts a payment-status notification to the platform callback
// URL. Best effort: a failed notification is logged, never retried here.
func (p *PaymentProcessor) ProcessNotify(data tasks.PaymentNotifyPayload) {
	callbackURL := os.Getenv("PLATFORM_CALLBACK_URL")
	if callbackURL == "" {
		return
	}

	var payment models.Payment
	if err := p.DB.First(&payment, data.PaymentID).Error; err != nil {
		log.Errorf("payment %d not found for notification: %v", data.PaymentID, err)
		return
	}

	payload := map[string]interface{}{
		"paymentId":    payment.ID,
		"gatewayId":    payment.GatewayID,
		"ownerType":    payment.OwnerType,
		"ownerId":      payment.OwnerID,
		"status":       data.Status,
		"creditAmount": payment.CreditAmount,
	}

	if _, err := common.Post(fmt.Sprintf("%s/payments/status", callbackURL), payload, nil); err != nil {
		log.Errorf("payment %d status notification failed: %v", payment.ID, err)
		return
	}
	log.Printf("Payment %d status %s notified", payment.ID, data.Status)
}
