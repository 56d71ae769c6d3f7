package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"
)

var ErrGatewayUnavailable = errors.New("payment gateway unavailable")

type CreatePaymentRequest struct {
	AmountCents   int64  `json:"amount_cents"`
	Currency      string `json:"currency"`
	OrderID       string `json:"order_id"`
	CustomerPhone string `json:"customer_phone"`
	CustomerEmail string `json:"customer_email"`
	CustomerName  string `json:"customer_name"`
	Description   string `json:"description"`
	CallbackURL   string `json:"callback_url"`
}

type CreatePaymentResponse struct {
	Success       bool   `json:"success"`
	PaymentID     string `json:"payment_id"`
	TransactionID string `json:"transaction_id"`
	CheckoutURL   string `json:"checkout_url"`
	Error         string `json:"error,omitempty"`
}

type PaymentStatusResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

type CreateDisbursementRequest struct {
	AmountCents    int64  `json:"amount_cents"`
	Currency       string `json:"currency"`
	RecipientPhone string `json:"recipient_phone"`
	RecipientName  string `json:"recipient_name"`
	Description    string `json:"description"`
	Reference      string `json:"reference"`
	CallbackURL    string `json:"callback_url"`
}

type CreateDisbursementResponse struct {
	Success        bool   `json:"success"`
	DisbursementID string `json:"disbursement_id"`
	Error          string `json:"error,omitempty"`
}

// Client is the boundary to the external payment gateway.
type Client interface {
	CreatePayment(ctx context.Context, req CreatePaymentRequest) (*CreatePaymentResponse, error)
	CheckPaymentStatus(ctx context.Context, paymentID string) (*PaymentStatusResponse, error)
	CreateDisbursement(ctx context.Context, req CreateDisbursementRequest) (*CreateDisbursementResponse, error)
}

type httpClient struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

// NewClient builds an HTTP gateway client with a bounded timeout, so a hung
// gateway call cannot leave a payment silently in flight.
func NewClient(baseURL, apiKey string, timeout time.Duration) Client {
	return &httpClient{
		baseURL: baseURL,
		apiKey:  apiKey,
		client:  &http.Client{Timeout: timeout},
	}
}

func (c *httpClient) CreatePayment(ctx context.Context, req CreatePaymentRequest) (*CreatePaymentResponse, error) {
	var resp CreatePaymentResponse
	if err := c.post(ctx, "/payments", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *httpClient) CheckPaymentStatus(ctx context.Context, paymentID string) (*PaymentStatusResponse, error) {
	var resp PaymentStatusResponse
	if err := c.get(ctx, "/payments/"+paymentID, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *httpClient) CreateDisbursement(ctx context.Context, req CreateDisbursementRequest) (*CreateDisbursementResponse, error) {
	var resp CreateDisbursementResponse
	if err := c.post(ctx, "/disbursements", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *httpClient) post(ctx context.Context, path string, body, out interface{}) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	return c.do(req, out)
}

func (c *httpClient) get(ctx context.Context, path string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	return c.do(req, out)
}

func (c *httpClient) do(req *http.Request, out interface{}) error {
	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrGatewayUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusInternalServerError {
		return fmt.Errorf("%w: status %d", ErrGatewayUnavailable, resp.StatusCode)
	}

	// 4xx responses carry a decodable business error in the same envelope.
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode gateway response: %w", err)
	}

	return nil
}
