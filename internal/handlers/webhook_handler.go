package handlers

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/tripsetu/booking-backend/internal/config"
	"github.com/tripsetu/booking-backend/internal/models"
	"github.com/tripsetu/booking-backend/internal/services"
)

// SignatureHeader carries the gateway's HMAC-SHA256 signature over the raw
// webhook body.
const SignatureHeader = "X-Webhook-Signature"

// WebhookHandler receives payment gateway webhooks
type WebhookHandler struct {
	reconciliation *services.ReconciliationService
	audit          *services.AuditService
	gatewayCfg     config.GatewayConfig
	logger         *logrus.Logger
}

// NewWebhookHandler creates a new webhook handler
func NewWebhookHandler(
	reconciliation *services.ReconciliationService,
	audit *services.AuditService,
	gatewayCfg config.GatewayConfig,
	logger *logrus.Logger,
) *WebhookHandler {
	return &WebhookHandler{
		reconciliation: reconciliation,
		audit:          audit,
		gatewayCfg:     gatewayCfg,
		logger:         logger,
	}
}

// HandleGatewayWebhook handles POST /api/v1/payments/webhook
func (h *WebhookHandler) HandleGatewayWebhook(c *gin.Context) {
	// The signature covers the raw body, so it must be read before any
	// JSON binding touches it.
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_body",
			Message: "Failed to read request body",
		})
		return
	}

	signature := c.GetHeader(SignatureHeader)
	if !verifySignature(body, signature, h.gatewayCfg.WebhookSecret) {
		h.logger.WithFields(logrus.Fields{
			"ip":   c.ClientIP(),
			"path": c.Request.URL.Path,
		}).Warn("Webhook signature verification failed")

		h.audit.Record(models.NewPaymentAudit(models.PaymentEventWebhookRejected, models.PaymentSourceGatewayWebhook).
			SetRawBody(string(body)).
			SetError("signature mismatch").
			SetMetadata(c.ClientIP(), c.Request.UserAgent()))

		c.JSON(http.StatusUnauthorized, ErrorResponse{
			Error:   "invalid_signature",
			Message: "Webhook signature verification failed",
		})
		return
	}

	var event models.GatewayWebhookEvent
	if err := json.Unmarshal(body, &event); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_payload",
			Message: "Invalid webhook payload",
		})
		return
	}

	switch {
	case event.IsCaptureEvent():
		if err := h.reconciliation.ProcessGatewayCapture(&event); err != nil {
			h.logger.WithError(err).WithField("event", event.Event).Error("Failed to process gateway capture")
			c.JSON(http.StatusInternalServerError, ErrorResponse{
				Error:   "processing_error",
				Message: "Failed to process webhook",
			})
			return
		}

	case event.Event == models.GatewayEventPaymentFailed:
		h.reconciliation.RecordGatewayFailure(&event)

	default:
		h.logger.WithField("event", event.Event).Info("Ignoring unhandled webhook event")
	}

	c.JSON(http.StatusOK, gin.H{"received": true})
}

// verifySignature checks the hex-encoded HMAC-SHA256 of the raw body in
// constant time.
func verifySignature(body []byte, signature, secret string) bool {
	if signature == "" || secret == "" {
		return false
	}

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	expected := hex.EncodeToString(mac.Sum(nil))

	return hmac.Equal([]byte(expected), []byte(signature))
}
