package webhook

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"blinno/internal/gateway"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "whsec_test"

func setupRouter(h *Handler) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/webhooks/gateway", h.HandleGatewayWebhook)
	return r
}

func signedRequest(t *testing.T, n Notification, secret string) *http.Request {
	body, err := json.Marshal(n)
	require.NoError(t, err)

	req := httptest.NewRequest("POST", "/webhooks/gateway", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(SignatureHeader, gateway.Sign(body, secret))
	return req
}

func TestWebhookRejectsBadSignature(t *testing.T) {
	f := newFixture(initiatedPayment())
	router := setupRouter(NewHandler(f.service, testSecret))

	w := httptest.NewRecorder()
	req := signedRequest(t, Notification{PaymentID: "gw_123", Status: "success"}, "wrong-secret")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Empty(t, f.entities.completed)
}

func TestWebhookRejectsMissingSignature(t *testing.T) {
	f := newFixture(initiatedPayment())
	router := setupRouter(NewHandler(f.service, testSecret))

	body, _ := json.Marshal(Notification{PaymentID: "gw_123", Status: "success"})
	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/webhooks/gateway", bytes.NewReader(body))
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestWebhookProcessesSignedDelivery(t *testing.T) {
	f := newFixture(initiatedPayment(), feeRecord())
	router := setupRouter(NewHandler(f.service, testSecret))

	w := httptest.NewRecorder()
	req := signedRequest(t, Notification{
		PaymentID:     "gw_123",
		OrderID:       "commission_42",
		Status:        "success",
		TransactionID: "tx_9",
	}, testSecret)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "completed", resp["result"])
	assert.Len(t, f.ledgers.credits, 1)
}

func TestWebhookUnknownPaymentReturns404(t *testing.T) {
	f := newFixture(initiatedPayment())
	router := setupRouter(NewHandler(f.service, testSecret))

	w := httptest.NewRecorder()
	req := signedRequest(t, Notification{PaymentID: "gw_other", Status: "success"}, testSecret)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestWebhookMissingFieldsReturns400(t *testing.T) {
	f := newFixture(initiatedPayment())
	router := setupRouter(NewHandler(f.service, testSecret))

	body := []byte(`{"order_id": "commission_42"}`)
	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/webhooks/gateway", bytes.NewReader(body))
	req.Header.Set(SignatureHeader, gateway.Sign(body, testSecret))
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestWebhookRedeliveryReturnsOK(t *testing.T) {
	f := newFixture(initiatedPayment(), feeRecord())
	router := setupRouter(NewHandler(f.service, testSecret))

	for i := 0; i < 2; i++ {
		w := httptest.NewRecorder()
		req := signedRequest(t, Notification{PaymentID: "gw_123", Status: "success"}, testSecret)
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code)
	}

	// One settlement despite two deliveries.
	assert.Len(t, f.ledgers.credits, 1)
	assert.Equal(t, 1, f.feeRepo.collected)
}
