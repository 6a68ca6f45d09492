package services

import (
	"time"

	"credits-service/internal/models"

	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

type WebhookArchiveService struct {
	DB *gorm.DB
}

func NewWebhookArchiveService(db *gorm.DB) *WebhookArchiveService {
	return &WebhookArchiveService{DB: db}
}

// ArchiveEvents moves processed webhook events older than 30 days to the
// archive table. Unprocessed or failed events stay in the live table so they
// remain visible for manual follow-up.
func (s *WebhookArchiveService) ArchiveEvents() {
	cutoff := time.Now().AddDate(0, 0, -30)

	var oldEvents []models.WebhookEvent
	if err := s.DB.Where("status = 1 AND created_at < ?", cutoff).Find(&oldEvents).Error; err != nil {
		log.Errorf("Error finding old webhook events: %v", err)
		return
	}

	if len(oldEvents) == 0 {
		log.Println("No webhook events to archive")
		return
	}

	log.Printf("Found %d webhook events to archive", len(oldEvents))

	var archivedData []models.ArchivedWebhookEvent
	for _, e := range oldEvents {
		archivedData = append(archivedData, models.ArchivedWebhookEvent{
			Event:            e.Event,
			GatewayPaymentID: e.GatewayPaymentID,
			Payload:          e.Payload,
			Status:           e.Status,
			Error:            e.Error,
			ReceivedAt:       e.CreatedAt,
		})
	}

	err := s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&archivedData).Error; err != nil {
			return err
		}

		ids := make([]uint, len(oldEvents))
		for i, e := range oldEvents {
			ids[i] = e.ID
		}
		return tx.Delete(&models.WebhookEvent{}, ids).Error
	})

	if err != nil {
		log.Errorf("Error during webhook event archiving: %v", err)
	} else {
		log.Printf("Archived and removed %d webhook events.", len(oldEvents))
	}
}

// StartScheduler initializes the cron job to run daily at midnight
func (s *WebhookArchiveService) StartScheduler() {
	startCronJob("webhook event archive", "0 0 * * *", s.ArchiveEvents)
}
