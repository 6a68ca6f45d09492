package services

import (
	"fmt"
	"time"

	"credits-service/internal/models"
	"credits-service/internal/tasks"

	"github.com/hibiken/asynq"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Asaas webhook event names.
const (
	EventPaymentConfirmed = "PAYMENT_CONFIRMED"
	EventPaymentReceived  = "PAYMENT_RECEIVED"
	EventPaymentOverdue   = "PAYMENT_OVERDUE"
	EventPaymentDeleted   = "PAYMENT_DELETED"
	EventPaymentRefunded  = "PAYMENT_REFUNDED"
)

// WebhookService reconciles asynchronous gateway notifications with internal
// payment records. Per payment the state machine is pending -> {confirmed,
// cancelled}, terminal once reached; re-delivery of a confirmation is a
// status-guarded no-op.
type WebhookService struct {
	DB     *gorm.DB
	Credit *CreditService
	Client *asynq.Client // nil when the worker is not wired; falls back to inline processing
}

func NewWebhookService(db *gorm.DB, credit *CreditService, client *asynq.Client) *WebhookService {
	return &WebhookService{DB: db, Credit: credit, Client: client}
}

// ValidateWebhookPayload checks the event shape and extracts the gateway
// payment id. Malformed payloads are rejected before any side effects.
func ValidateWebhookPayload(event string, payment map[string]interface{}) (string, error) {
	if event == "" {
		return "", fmt.Errorf("missing event name")
	}
	if payment == nil {
		return "", fmt.Errorf("missing payment object")
	}
	gatewayID, _ := payment["id"].(string)
	if gatewayID == "" {
		return "", fmt.Errorf("missing payment id")
	}
	return gatewayID, nil
}

// ProcessEvent handles one gateway event. The raw payload is persisted before
// processing so a processing failure never loses the event. Events for
// unknown payments are acknowledged, not errored, to avoid gateway retry
// storms.
func (s *WebhookService) ProcessEvent(event string, payment map[string]interface{}, raw []byte) error {
	gatewayID, err := ValidateWebhookPayload(event, payment)
	if err != nil {
		return err
	}

	eventRow := models.WebhookEvent{
		Event:            event,
		GatewayPaymentID: gatewayID,
		Payload:          string(raw),
	}
	if err := s.DB.Create(&eventRow).Error; err != nil {
		return err
	}

	var record models.Payment
	if err := s.DB.Where("gateway_id = ?", gatewayID).First(&record).Error; err != nil {
		// Not ours. Acknowledge so the gateway stops retrying.
		s.finishEvent(&eventRow, 1, "payment not found, ignored")
		return nil
	}

	var procErr error
	switch event {
	case EventPaymentConfirmed, EventPaymentReceived:
		procErr = s.confirmPayment(&record, raw)
	case EventPaymentOverdue:
		procErr = s.markOverdue(&record)
	case EventPaymentDeleted:
		procErr = s.cancelPayment(&record, models.PaymentStatusCancelled)
	case EventPaymentRefunded:
		procErr = s.cancelPayment(&record, models.PaymentStatusRefunded)
	default:
		log.WithFields(log.Fields{"event": event, "gatewayId": gatewayID}).Info("Unhandled webhook event, acknowledged")
	}

	if procErr != nil {
		s.finishEvent(&eventRow, 2, procErr.Error())
		return procErr
	}

	s.finishEvent(&eventRow, 1, "")
	return nil
}

func (s *WebhookService) finishEvent(event *models.WebhookEvent, status int, errText string) {
	if err := s.DB.Model(&models.WebhookEvent{}).Where("id = ?", event.ID).
		Updates(map[string]interface{}{"status": status, "error": errText}).Error; err != nil {
		log.Errorf("webhook event %d status update failed: %v", event.ID, err)
	}
}

// confirmPayment transitions the payment and credits the balance in one
// transaction. If the payment is already confirmed the whole call is a no-op,
// which makes webhook re-delivery safe.
func (s *WebhookService) confirmPayment(payment *models.Payment, raw []byte) error {
	credit, err := s.Credit.GetOrCreateCredit(payment.OwnerType, payment.OwnerID)
	if err != nil {
		return err
	}

	err = s.DB.Transaction(func(tx *gorm.DB) error {
		var locked models.Payment
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ?", payment.ID).First(&locked).Error; err != nil {
			return err
		}

		if locked.Status == models.PaymentStatusConfirmed {
			return nil
		}
		if locked.Status == models.PaymentStatusCancelled || locked.Status == models.PaymentStatusRefunded {
			log.Warnf("confirmation for %s payment %d ignored", locked.Status, locked.ID)
			return nil
		}

		now := time.Now()
		if err := tx.Model(&models.Payment{}).Where("id = ?", locked.ID).Updates(map[string]interface{}{
			"status":       models.PaymentStatusConfirmed,
			"confirmed_at": now,
			"raw_payload":  string(raw),
		}).Error; err != nil {
			return err
		}

		return s.Credit.addCredits(tx, credit, locked.CreditAmount, &locked.ID, "webhook")
	})
	if err != nil {
		return err
	}

	s.enqueueNotify(payment.ID, models.PaymentStatusConfirmed)
	return nil
}

func (s *WebhookService) markOverdue(payment *models.Payment) error {
	res := s.DB.Model(&models.Payment{}).
		Where("id = ? AND status = ?", payment.ID, models.PaymentStatusPending).
		Update("status", models.PaymentStatusOverdue)
	return res.Error
}

// cancelPayment marks the payment cancelled or refunded. A refund of an
// already confirmed payment reverses the credited amount; a dependent recurso
// awaiting payment is cancelled as well.
func (s *WebhookService) cancelPayment(payment *models.Payment, status string) error {
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		var locked models.Payment
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ?", payment.ID).First(&locked).Error; err != nil {
			return err
		}

		if locked.Status == models.PaymentStatusCancelled || locked.Status == models.PaymentStatusRefunded {
			return nil
		}

		wasConfirmed := locked.Status == models.PaymentStatusConfirmed
		if err := tx.Model(&models.Payment{}).Where("id = ?", locked.ID).
			Update("status", status).Error; err != nil {
			return err
		}

		if wasConfirmed && status == models.PaymentStatusRefunded {
			credit, err := s.Credit.GetOrCreateCredit(locked.OwnerType, locked.OwnerID)
			if err != nil {
				return err
			}
			return s.Credit.refundCredits(tx, credit, locked.CreditAmount, &locked.ID,
				fmt.Sprintf("Refund of payment %d", locked.ID))
		}
		return nil
	})
	if err != nil {
		return err
	}

	if payment.RecursoID != nil {
		s.cancelRecurso(payment.ID, *payment.RecursoID)
	}
	s.enqueueNotify(payment.ID, status)
	return nil
}

// cancelRecurso hands the dependent dispute cancellation to the worker; the
// task id keeps re-deliveries from enqueueing duplicates. Without a worker
// the transition runs inline.
func (s *WebhookService) cancelRecurso(paymentID, recursoID int) {
	if s.Client != nil {
		task, err := tasks.NewRecursoCancelTask(tasks.RecursoCancelPayload{PaymentID: paymentID, RecursoID: recursoID})
		if err == nil {
			_, err = s.Client.Enqueue(task, asynq.TaskID(fmt.Sprintf("recurso-cancel:%d", paymentID)))
			if err == nil {
				return
			}
		}
		log.Errorf("enqueue recurso-cancel for payment %d failed, cancelling inline: %v", paymentID, err)
	}

	if err := CancelRecurso(s.DB, recursoID); err != nil {
		log.Errorf("recurso %d cancellation failed: %v", recursoID, err)
	}
}

func (s *WebhookService) enqueueNotify(paymentID int, status string) {
	if s.Client == nil {
		return
	}
	task, err := tasks.NewPaymentNotifyTask(tasks.PaymentNotifyPayload{PaymentID: paymentID, Status: status})
	if err != nil {
		return
	}
	if _, err := s.Client.Enqueue(task, asynq.TaskID(fmt.Sprintf("payment-notify:%d:%s", paymentID, status)), asynq.Queue("low")); err != nil {
		log.Errorf("enqueue payment-notify for payment %d failed: %v", paymentID, err)
	}
}

// CancelRecurso moves a dispute awaiting payment to cancelled. Submitted and
// already-cancelled disputes are left alone.
func CancelRecurso(db *gorm.DB, recursoID int) error {
	res := db.Model(&models.Recurso{}).
		Where("id = ? AND status = ?", recursoID, models.RecursoAwaitingPayment).
		Update("status", models.RecursoCancelled)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		log.Printf("recurso %d not awaiting payment, cancellation skipped", recursoID)
	}
	return nil
}
