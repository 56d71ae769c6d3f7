package payment

import (
	"errors"
	"net/http"
	"strconv"

	"blinno/internal/auth"
	"blinno/internal/entity"
	"blinno/internal/fees"
	"blinno/internal/gateway"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

type CreatePaymentRequest struct {
	EntityType       string `json:"entity_type" binding:"required"`
	EntityID         int    `json:"entity_id" binding:"required,gt=0"`
	PayeeID          int    `json:"payee_id" binding:"required,gt=0"`
	AmountCents      int64  `json:"amount_cents" binding:"required,gt=0"`
	Currency         string `json:"currency" binding:"omitempty,len=3"`
	Category         string `json:"category" binding:"required"`
	SubscriptionTier string `json:"subscription_tier"`
	PercentageTier   string `json:"percentage_tier"`
	Description      string `json:"description" binding:"max=255"`
}

// CreatePayment godoc
// @Summary      Create payment intent
// @Description  Computes the fee breakdown, opens a gateway checkout session and returns the checkout URL. Completion arrives asynchronously via webhook.
// @Tags         payments
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        request  body      CreatePaymentRequest  true  "Payment details"
// @Success      201      {object}  Result
// @Failure      400      {object}  api.ErrorResponse
// @Failure      401      {object}  api.ErrorResponse
// @Failure      502      {object}  api.ErrorResponse
// @Failure      503      {object}  api.ErrorResponse
// @Router       /payments [post]
func (h *Handler) CreatePayment(c *gin.Context) {
	userID, exists := auth.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var req CreatePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ref := entity.Ref{
		Type: entity.Type(req.EntityType),
		ID:   req.EntityID,
	}
	if ref.Type == entity.TypeDigitalProduct {
		ref.BuyerID = userID
	}

	currency := req.Currency
	if currency == "" {
		currency = "USD"
	}

	var tier *fees.PricingTier
	if req.SubscriptionTier != "" || req.PercentageTier != "" {
		tier = &fees.PricingTier{
			SubscriptionTier: req.SubscriptionTier,
			PercentageTier:   req.PercentageTier,
		}
	}

	result, err := h.service.CreatePayment(c.Request.Context(), userID, CreateParams{
		Ref:         ref,
		PayeeID:     req.PayeeID,
		AmountCents: req.AmountCents,
		Currency:    currency,
		Category:    fees.Category(req.Category),
		Tier:        tier,
		Description: req.Description,
	})
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidEntity),
			errors.Is(err, ErrInvalidAmount),
			errors.Is(err, ErrMissingPhone),
			errors.Is(err, fees.ErrUnknownCategory),
			errors.Is(err, fees.ErrUnknownTier),
			errors.Is(err, fees.ErrNegativeAmount):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.Is(err, gateway.ErrGatewayUnavailable):
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Payment gateway unavailable"})
		case errors.Is(err, ErrGatewayRejected):
			c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create payment"})
		}
		return
	}

	c.JSON(http.StatusCreated, result)
}

// GetPayment godoc
// @Summary      Get payment
// @Description  Returns one payment. Only the payer can view it.
// @Tags         payments
// @Security     BearerAuth
// @Produce      json
// @Param        paymentID  path      int  true  "Payment ID"
// @Success      200        {object}  Payment
// @Failure      400        {object}  api.ErrorResponse
// @Failure      401        {object}  api.ErrorResponse
// @Failure      403        {object}  api.ErrorResponse
// @Failure      404        {object}  api.ErrorResponse
// @Router       /payments/{paymentID} [get]
func (h *Handler) GetPayment(c *gin.Context) {
	userID, exists := auth.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	id, err := strconv.Atoi(c.Param("paymentID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid payment ID"})
		return
	}

	p, err := h.service.GetPayment(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, ErrPaymentNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Payment not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load payment"})
		return
	}

	if p.UserID != userID {
		c.JSON(http.StatusForbidden, gin.H{"error": "Access denied"})
		return
	}

	c.JSON(http.StatusOK, p)
}
