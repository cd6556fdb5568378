package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/healclinics/shop-api/internal/config"
	"github.com/healclinics/shop-api/internal/order"
)

var ErrProviderUnavailable = errors.New("payment provider unavailable")

// Provider statuses as delivered by Mollie.
const (
	ProviderStatusOpen      = "open"
	ProviderStatusPending   = "pending"
	ProviderStatusPaid      = "paid"
	ProviderStatusFailed    = "failed"
	ProviderStatusExpired   = "expired"
	ProviderStatusCancelled = "cancelled"
)

// ProviderPayment mirrors the subset of a Mollie payment the shop cares about.
type ProviderPayment struct {
	ID          string         `json:"id"`
	Status      string         `json:"status"`
	Method      string         `json:"method"`
	CheckoutURL string         `json:"checkout_url"`
	Raw         map[string]any `json:"-"`
}

// Provider is the external payment collaborator. Calls are bounded by the
// client timeout and must never run inside a database transaction.
type Provider interface {
	CreatePayment(ctx context.Context, o *order.Order) (*ProviderPayment, error)
	GetPayment(ctx context.Context, paymentID string) (*ProviderPayment, error)
}

type mollieClient struct {
	apiKey      string
	baseURL     string
	webhookURL  string
	redirectURL string
	httpClient  *http.Client
}

func NewMollieClient(cfg config.MollieConfig) Provider {
	return &mollieClient{
		apiKey:      cfg.APIKey,
		baseURL:     cfg.BaseURL,
		webhookURL:  cfg.WebhookURL,
		redirectURL: cfg.RedirectURL,
		httpClient:  &http.Client{Timeout: cfg.Timeout},
	}
}

type mollieAmount struct {
	Currency string `json:"currency"`
	Value    string `json:"value"`
}

type molliePaymentResponse struct {
	ID     string `json:"id"`
	Status string `json:"status"`
	Method string `json:"method"`
	Links  struct {
		Checkout struct {
			Href string `json:"href"`
		} `json:"checkout"`
	} `json:"_links"`
}

func (c *mollieClient) CreatePayment(ctx context.Context, o *order.Order) (*ProviderPayment, error) {
	body := map[string]any{
		"amount": mollieAmount{
			Currency: "EUR",
			Value:    o.TotalAmount.StringFixed(2),
		},
		"description": fmt.Sprintf("HealClinics Bestelling %s", o.OrderNumber),
		"redirectUrl": fmt.Sprintf("%s/%s", c.redirectURL, o.ID),
		"webhookUrl":  c.webhookURL,
		"method":      []string{o.PaymentMethod},
		"metadata": map[string]string{
			"order_id":       o.ID.String(),
			"order_number":   o.OrderNumber,
			"customer_email": o.CustomerEmail,
		},
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("mollie: failed to marshal payment request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/payments", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("mollie: failed to build payment request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrProviderUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		return nil, fmt.Errorf("%w: unexpected status %d", ErrProviderUnavailable, resp.StatusCode)
	}

	return decodePayment(resp)
}

func (c *mollieClient) GetPayment(ctx context.Context, paymentID string) (*ProviderPayment, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/payments/"+paymentID, nil)
	if err != nil {
		return nil, fmt.Errorf("mollie: failed to build payment lookup: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrProviderUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: unexpected status %d", ErrProviderUnavailable, resp.StatusCode)
	}

	return decodePayment(resp)
}

func decodePayment(resp *http.Response) (*ProviderPayment, error) {
	var raw map[string]any
	var decoded molliePaymentResponse

	buf := new(bytes.Buffer)
	if _, err := buf.ReadFrom(resp.Body); err != nil {
		return nil, fmt.Errorf("mollie: failed to read payment response: %w", err)
	}
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		return nil, fmt.Errorf("mollie: failed to decode payment response: %w", err)
	}
	_ = json.Unmarshal(buf.Bytes(), &raw)

	return &ProviderPayment{
		ID:          decoded.ID,
		Status:      decoded.Status,
		Method:      decoded.Method,
		CheckoutURL: decoded.Links.Checkout.Href,
		Raw:         raw,
	}, nil
}
