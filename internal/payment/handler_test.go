package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"blinno/internal/entity"
	"blinno/internal/fees"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeService struct {
	params *CreateParams
	result *Result
	err    error
	byID   map[int]*Payment
}

func (f *fakeService) CreatePayment(_ context.Context, payerID int, params CreateParams) (*Result, error) {
	f.params = &params
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

func (f *fakeService) GetPayment(_ context.Context, id int) (*Payment, error) {
	p, ok := f.byID[id]
	if !ok {
		return nil, ErrPaymentNotFound
	}
	return p, nil
}

func handlerRouter(svc Service, userID int) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	h := NewHandler(svc)

	authed := r.Group("/")
	authed.Use(func(c *gin.Context) {
		c.Set("user_id", userID)
		c.Next()
	})
	authed.POST("/payments", h.CreatePayment)
	authed.GET("/payments/:paymentID", h.GetPayment)
	return r
}

func TestCreatePaymentHandler(t *testing.T) {
	svc := &fakeService{result: &Result{
		Payment:     &Payment{ID: 1, OrderID: "order_5", Status: StatusInitiated},
		CheckoutURL: "https://gateway.example/checkout/gw_1",
	}}
	router := handlerRouter(svc, 3)

	body, _ := json.Marshal(CreatePaymentRequest{
		EntityType:  "order",
		EntityID:    5,
		PayeeID:     9,
		AmountCents: 1000,
		Currency:    "USD",
		Category:    "marketplace",
	})
	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/payments", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)
	require.NotNil(t, svc.params)
	assert.Equal(t, entity.TypeOrder, svc.params.Ref.Type)
	assert.Equal(t, 5, svc.params.Ref.ID)
	assert.Equal(t, fees.CategoryMarketplace, svc.params.Category)
	assert.Nil(t, svc.params.Tier)
}

func TestCreatePaymentHandlerDigitalBuyerIsPayer(t *testing.T) {
	svc := &fakeService{result: &Result{Payment: &Payment{ID: 1}}}
	router := handlerRouter(svc, 3)

	body, _ := json.Marshal(CreatePaymentRequest{
		EntityType:  "digital_product",
		EntityID:    12,
		PayeeID:     9,
		AmountCents: 100,
		Category:    "digital_product",
	})
	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/payments", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)
	require.NotNil(t, svc.params)
	assert.Equal(t, 3, svc.params.Ref.BuyerID)
	assert.Equal(t, "USD", svc.params.Currency)
}

func TestCreatePaymentHandlerValidation(t *testing.T) {
	svc := &fakeService{}
	router := handlerRouter(svc, 3)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/payments", bytes.NewReader([]byte(`{"entity_type": "order"}`)))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Nil(t, svc.params)
}

func TestCreatePaymentHandlerBusinessError(t *testing.T) {
	svc := &fakeService{err: ErrMissingPhone}
	router := handlerRouter(svc, 3)

	body, _ := json.Marshal(CreatePaymentRequest{
		EntityType:  "order",
		EntityID:    5,
		PayeeID:     9,
		AmountCents: 1000,
		Category:    "marketplace",
	})
	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/payments", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetPaymentHandlerOwnership(t *testing.T) {
	svc := &fakeService{byID: map[int]*Payment{
		7: {ID: 7, UserID: 3, OrderID: "order_5"},
	}}

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/payments/7", nil)
	handlerRouter(svc, 3).ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	req = httptest.NewRequest("GET", "/payments/7", nil)
	handlerRouter(svc, 4).ServeHTTP(w, req)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = httptest.NewRecorder()
	req = httptest.NewRequest("GET", "/payments/99", nil)
	handlerRouter(svc, 3).ServeHTTP(w, req)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
