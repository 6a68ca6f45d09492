package handlers

import (
	"encoding/json"
	"io"
	"net/http"

	"credits-service/internal/services"
	"credits-service/pkg/common"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

type WebhookHandler struct {
	Webhook *services.WebhookService
	Asaas   *services.AsaasService
}

func NewWebhookHandler(webhook *services.WebhookService, asaas *services.AsaasService) *WebhookHandler {
	return &WebhookHandler{Webhook: webhook, Asaas: asaas}
}

type webhookBody struct {
	Event   string                 `json:"event"`
	Payment map[string]interface{} `json:"payment"`
}

// HandleAsaasWebhook acknowledges every well-formed event with 200, including
// no-ops, so the gateway never enters a retry storm. Only a malformed body or
// a bad access token is rejected.
func (h *WebhookHandler) HandleAsaasWebhook(c *gin.Context) {
	if !h.Asaas.VerifyWebhookToken(c.GetHeader("asaas-access-token")) {
		c.JSON(http.StatusUnauthorized, common.NewErrorResponse("Invalid webhook token", nil, http.StatusUnauthorized))
		return
	}

	raw, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, common.NewErrorResponse("Unreadable body", nil, http.StatusBadRequest))
		return
	}

	var body webhookBody
	if err := json.Unmarshal(raw, &body); err != nil {
		c.JSON(http.StatusBadRequest, common.NewErrorResponse("Malformed payload", nil, http.StatusBadRequest))
		return
	}

	if _, err := services.ValidateWebhookPayload(body.Event, body.Payment); err != nil {
		c.JSON(http.StatusBadRequest, common.NewErrorResponse(err.Error(), nil, http.StatusBadRequest))
		return
	}

	if err := h.Webhook.ProcessEvent(body.Event, body.Payment, raw); err != nil {
		// Event is persisted; acknowledge so the gateway does not hammer us,
		// the failure is visible in webhook_events for follow-up.
		log.Errorf("webhook %s processing failed: %v", body.Event, err)
	}

	c.JSON(http.StatusOK, gin.H{"received": true})
}
