package services

import (
	"crypto/subtle"
	"fmt"
	"os"
	"time"

	"credits-service/pkg/common"

	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// AsaasService wraps the Asaas payment gateway: charge creation, charge
// lookup and webhook token verification. Calls are bounded by the shared
// 10s HTTP client; failures surface as GatewayError with no automatic retry.
type AsaasService struct {
	DB           *gorm.DB
	BaseURL      string
	APIKey       string
	WebhookToken string
}

func NewAsaasService(db *gorm.DB) *AsaasService {
	baseURL := os.Getenv("ASAAS_BASE_URL")
	if baseURL == "" {
		baseURL = "https://api.asaas.com/v3"
	}
	return &AsaasService{
		DB:           db,
		BaseURL:      baseURL,
		APIKey:       os.Getenv("ASAAS_API_KEY"),
		WebhookToken: os.Getenv("ASAAS_WEBHOOK_TOKEN"),
	}
}

func (s *AsaasService) headers() map[string]string {
	return map[string]string{
		"access_token": s.APIKey,
		"Content-Type": "application/json",
	}
}

type GatewayCharge struct {
	ID           string
	Status       string
	PixQrCode    string
	PixCopyPaste string
	DueDate      time.Time
}

type CreateChargeDTO struct {
	CustomerRef string
	Amount      float64
	Description string
	Reference   string
	DueDate     time.Time
}

// CreateCharge creates a PIX charge and fetches its QR payload.
func (s *AsaasService) CreateCharge(data CreateChargeDTO) (*GatewayCharge, error) {
	payload := map[string]interface{}{
		"customer":          data.CustomerRef,
		"billingType":       "PIX",
		"value":             data.Amount,
		"dueDate":           data.DueDate.Format("2006-01-02"),
		"description":       data.Description,
		"externalReference": data.Reference,
	}

	resp, err := common.Post(fmt.Sprintf("%s/payments", s.BaseURL), payload, s.headers())
	if err != nil {
		return nil, &GatewayError{Op: "create charge", Err: err}
	}

	respMap, ok := resp.(map[string]interface{})
	if !ok {
		return nil, &GatewayError{Op: "create charge", Err: fmt.Errorf("unexpected response shape")}
	}

	id, _ := respMap["id"].(string)
	status, _ := respMap["status"].(string)
	if id == "" {
		return nil, &GatewayError{Op: "create charge", Err: fmt.Errorf("response missing payment id")}
	}

	charge := &GatewayCharge{ID: id, Status: status, DueDate: data.DueDate}

	qrResp, err := common.Get(fmt.Sprintf("%s/payments/%s/pixQrCode", s.BaseURL, id), s.headers())
	if err != nil {
		// Charge exists; QR payload can be re-fetched by the caller.
		log.Errorf("asaas pix qr fetch failed for %s: %v", id, err)
		return charge, nil
	}

	if qrMap, ok := qrResp.(map[string]interface{}); ok {
		if img, ok := qrMap["encodedImage"].(string); ok {
			charge.PixQrCode = img
		}
		if copyPaste, ok := qrMap["payload"].(string); ok {
			charge.PixCopyPaste = copyPaste
		}
	}

	return charge, nil
}

// GetCharge fetches the current gateway status of a charge.
func (s *AsaasService) GetCharge(gatewayID string) (map[string]interface{}, error) {
	resp, err := common.Get(fmt.Sprintf("%s/payments/%s", s.BaseURL, gatewayID), s.headers())
	if err != nil {
		return nil, &GatewayError{Op: "get charge", Err: err}
	}

	respMap, ok := resp.(map[string]interface{})
	if !ok {
		return nil, &GatewayError{Op: "get charge", Err: fmt.Errorf("unexpected response shape")}
	}
	return respMap, nil
}

// VerifyWebhookToken checks the asaas-access-token header against the
// configured token. An unconfigured token accepts with a warning so local
// setups keep working, but never silently.
func (s *AsaasService) VerifyWebhookToken(token string) bool {
	if s.WebhookToken == "" {
		log.Warn("ASAAS_WEBHOOK_TOKEN not configured, accepting webhook without verification")
		return true
	}
	return subtle.ConstantTimeCompare([]byte(token), []byte(s.WebhookToken)) == 1
}
