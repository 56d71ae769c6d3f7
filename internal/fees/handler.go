package fees

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	calculator *Calculator
}

func NewHandler(calculator *Calculator) *Handler {
	return &Handler{calculator: calculator}
}

// QuoteFees godoc
// @Summary      Preview fee breakdown
// @Description  Computes the fee breakdown for an amount, category and optional pricing tier without creating anything.
// @Tags         fees
// @Security     BearerAuth
// @Produce      json
// @Param        amount_cents       query     int     true   "Amount in minor units"
// @Param        category           query     string  true   "Transaction category"
// @Param        currency           query     string  false  "Currency code"  default(USD)
// @Param        subscription_tier  query     string  false  "Subscription tier"
// @Param        percentage_tier    query     string  false  "Percentage tier"
// @Success      200  {object}  Calculation
// @Failure      400  {object}  api.ErrorResponse
// @Router       /fees/quote [get]
func (h *Handler) QuoteFees(c *gin.Context) {
	amount, err := strconv.ParseInt(c.Query("amount_cents"), 10, 64)
	if err != nil || amount < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "amount_cents must be a non-negative integer"})
		return
	}

	category := Category(c.Query("category"))
	if category == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "category is required"})
		return
	}

	currency := c.DefaultQuery("currency", "USD")

	var tier *PricingTier
	subTier := c.Query("subscription_tier")
	pctTier := c.Query("percentage_tier")
	if subTier != "" || pctTier != "" {
		tier = &PricingTier{SubscriptionTier: subTier, PercentageTier: pctTier}
	}

	calc, err := h.calculator.Calculate(amount, category, tier, currency)
	if err != nil {
		if errors.Is(err, ErrUnknownCategory) || errors.Is(err, ErrUnknownTier) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to compute fees"})
		return
	}

	c.JSON(http.StatusOK, calc)
}
