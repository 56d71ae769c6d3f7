package payout

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"blinno/internal/auth"
	"blinno/internal/gateway"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

type RequestPayoutRequest struct {
	AmountCents   int64  `json:"amount_cents" binding:"required,gt=0"`
	Currency      string `json:"currency" binding:"omitempty,len=3"`
	PaymentMethod string `json:"payment_method" binding:"required,oneof=mobile_money bank_transfer"`
}

// RequestPayout godoc
// @Summary      Request a payout
// @Description  Creates a pending payout backed by the creator's collected earnings. Fee records are reserved atomically so concurrent requests cannot double-spend.
// @Tags         payouts
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        request  body      RequestPayoutRequest  true  "Payout details"
// @Success      201      {object}  Payout
// @Failure      400      {object}  api.ErrorResponse
// @Failure      401      {object}  api.ErrorResponse
// @Failure      422      {object}  api.ErrorResponse
// @Router       /payouts [post]
func (h *Handler) RequestPayout(c *gin.Context) {
	userID, exists := auth.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var req RequestPayoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	currency := req.Currency
	if currency == "" {
		currency = "USD"
	}

	p, err := h.service.Request(c.Request.Context(), userID, RequestParams{
		AmountCents:   req.AmountCents,
		Currency:      currency,
		PaymentMethod: req.PaymentMethod,
	})
	if err != nil {
		switch {
		case errors.Is(err, ErrBelowMinimum):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.Is(err, ErrInsufficientFunds):
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to request payout"})
		}
		return
	}

	c.JSON(http.StatusCreated, p)
}

// ListPayouts godoc
// @Summary      List own payouts
// @Tags         payouts
// @Security     BearerAuth
// @Produce      json
// @Param        limit   query     int  false  "Page size"   default(50)
// @Param        offset  query     int  false  "Page offset" default(0)
// @Success      200     {array}   Payout
// @Failure      401     {object}  api.ErrorResponse
// @Router       /payouts [get]
func (h *Handler) ListPayouts(c *gin.Context) {
	userID, exists := auth.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	payouts, err := h.service.ListForUser(c.Request.Context(), userID, limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load payouts"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"payouts": payouts})
}

// ListAllPayouts godoc
// @Summary      List all payouts (admin)
// @Tags         admin
// @Security     BearerAuth
// @Produce      json
// @Param        limit   query     int  false  "Page size"   default(50)
// @Param        offset  query     int  false  "Page offset" default(0)
// @Success      200     {array}   Payout
// @Failure      401     {object}  api.ErrorResponse
// @Failure      403     {object}  api.ErrorResponse
// @Router       /admin/payouts [get]
func (h *Handler) ListAllPayouts(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	payouts, err := h.service.ListAll(c.Request.Context(), limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load payouts"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"payouts": payouts})
}

// ProcessPayout godoc
// @Summary      Move a payout to processing (admin)
// @Tags         admin
// @Security     BearerAuth
// @Produce      json
// @Param        payoutID  path      int  true  "Payout ID"
// @Success      200       {object}  api.MessageResponse
// @Failure      404       {object}  api.ErrorResponse
// @Failure      409       {object}  api.ErrorResponse
// @Router       /admin/payouts/{payoutID}/process [post]
func (h *Handler) ProcessPayout(c *gin.Context) {
	h.adminTransition(c, h.service.Process, "Payout moved to processing")
}

// CompletePayout godoc
// @Summary      Disburse a processing payout (admin)
// @Tags         admin
// @Security     BearerAuth
// @Produce      json
// @Param        payoutID  path      int  true  "Payout ID"
// @Success      200       {object}  api.MessageResponse
// @Failure      404       {object}  api.ErrorResponse
// @Failure      409       {object}  api.ErrorResponse
// @Failure      502       {object}  api.ErrorResponse
// @Failure      503       {object}  api.ErrorResponse
// @Router       /admin/payouts/{payoutID}/complete [post]
func (h *Handler) CompletePayout(c *gin.Context) {
	h.adminTransition(c, h.service.Complete, "Payout completed")
}

// CancelPayout godoc
// @Summary      Cancel a pending or processing payout (admin)
// @Tags         admin
// @Security     BearerAuth
// @Produce      json
// @Param        payoutID  path      int  true  "Payout ID"
// @Success      200       {object}  api.MessageResponse
// @Failure      404       {object}  api.ErrorResponse
// @Failure      409       {object}  api.ErrorResponse
// @Router       /admin/payouts/{payoutID}/cancel [post]
func (h *Handler) CancelPayout(c *gin.Context) {
	h.adminTransition(c, h.service.Cancel, "Payout cancelled")
}

func (h *Handler) adminTransition(c *gin.Context, fn func(ctx context.Context, id int) error, message string) {
	id, err := strconv.Atoi(c.Param("payoutID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid payout ID"})
		return
	}

	if err := fn(c.Request.Context(), id); err != nil {
		switch {
		case errors.Is(err, ErrPayoutNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Payout not found"})
		case errors.Is(err, ErrInvalidTransition):
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		case errors.Is(err, gateway.ErrGatewayUnavailable):
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Payment gateway unavailable"})
		case errors.Is(err, ErrDisbursementFailed):
			c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update payout"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": message})
}
