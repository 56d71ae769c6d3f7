package ledger

import (
	"net/http"
	"strconv"

	"blinno/internal/auth"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
)

type Handler struct {
	repo Repository
}

func NewHandler(db *sqlx.DB) *Handler {
	return &Handler{
		repo: NewRepository(db),
	}
}

// GetBalance godoc
// @Summary      Current balance
// @Tags         ledger
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} Balance
// @Failure      401 {object} api.ErrorResponse
// @Router       /balance [get]
func (h *Handler) GetBalance(c *gin.Context) {
	userID, ok := auth.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	b, err := h.repo.GetOrCreateBalance(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load balance"})
		return
	}

	c.JSON(http.StatusOK, b)
}

// ListTransactions godoc
// @Summary      Ledger transaction history
// @Tags         ledger
// @Produce      json
// @Security     BearerAuth
// @Param        limit  query int false "Page size"
// @Param        offset query int false "Offset"
// @Success      200 {array} Transaction
// @Failure      401 {object} api.ErrorResponse
// @Router       /transactions [get]
func (h *Handler) ListTransactions(c *gin.Context) {
	userID, ok := auth.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	txs, err := h.repo.GetTransactions(c.Request.Context(), userID, limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load transactions"})
		return
	}

	c.JSON(http.StatusOK, txs)
}
