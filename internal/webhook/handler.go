package webhook

import (
	"encoding/json"
	"errors"
	"net/http"

	"blinno/internal/api"
	"blinno/internal/gateway"
	"blinno/internal/logger"
	"blinno/internal/metrics"
	"blinno/internal/payment"

	"github.com/gin-gonic/gin"
)

// SignatureHeader carries the gateway's HMAC-SHA256 of the raw request body.
const SignatureHeader = "X-Gateway-Signature"

type Handler struct {
	service Service
	secret  string
}

func NewHandler(service Service, webhookSecret string) *Handler {
	return &Handler{service: service, secret: webhookSecret}
}

// HandleGatewayWebhook godoc
// @Summary      Gateway payment webhook
// @Description  Receives payment status notifications from the gateway. The request body must be signed with HMAC-SHA256.
// @Tags         webhooks
// @Accept       json
// @Produce      json
// @Param        X-Gateway-Signature  header    string        true  "HMAC-SHA256 signature of the body"
// @Param        request              body      Notification  true  "Gateway notification"
// @Success      200  {object}  api.MessageResponse
// @Failure      400  {object}  api.ErrorResponse
// @Failure      401  {object}  api.ErrorResponse
// @Failure      404  {object}  api.ErrorResponse
// @Failure      500  {object}  api.ErrorResponse
// @Router       /webhooks/gateway [post]
func (h *Handler) HandleGatewayWebhook(c *gin.Context) {
	body, err := c.GetRawData()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to read body"})
		return
	}

	// Signature check comes before any parsing. An unsigned or tampered
	// delivery never reaches the reconciler.
	if !gateway.VerifySignature(body, c.GetHeader(SignatureHeader), h.secret) {
		metrics.RecordWebhook("rejected")
		logger.Error("webhook signature verification failed", "remote_addr", c.ClientIP())
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid signature"})
		return
	}

	var n Notification
	if err := json.Unmarshal(body, &n); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid payload"})
		return
	}
	if errs := api.ValidateStruct(n); errs != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "validation failed", "details": errs})
		return
	}

	result, err := h.service.HandleNotification(c.Request.Context(), n)
	if err != nil {
		if errors.Is(err, payment.ErrPaymentNotFound) {
			metrics.RecordWebhook("unknown_payment")
			c.JSON(http.StatusNotFound, gin.H{"error": "Payment not found"})
			return
		}
		logger.Error("webhook reconciliation failed",
			"gateway_payment_id", n.PaymentID,
			"error", err,
		)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to process notification"})
		return
	}

	if result == ResultDuplicate || result == ResultIgnored {
		metrics.RecordWebhook(string(result))
	}

	c.JSON(http.StatusOK, gin.H{"message": "ok", "result": string(result)})
}
