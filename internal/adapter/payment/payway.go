package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"path"
	"time"

	domainErrors "github.com/ecutune/ecutune/internal/domain/errors"
)

// PaywayName identifies the Payway adapter in configuration and order records.
const PaywayName = "payway"

// PaywayClient talks to the Payway invoice API (JSON, bearer key).
type PaywayClient struct {
	baseURL    *url.URL
	apiKey     string
	httpClient *http.Client
	logger     *slog.Logger
}

type paywayInvoiceRequest struct {
	OrderRef string `json:"order_ref"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
}

type paywayInvoiceResponse struct {
	InvoiceID   string `json:"invoice_id"`
	CheckoutURL string `json:"checkout_url"`
	Status      string `json:"status"`
}

type paywayWebhookPayload struct {
	InvoiceID string `json:"invoice_id"`
	OrderRef  string `json:"order_ref"`
	Status    string `json:"status"`
}

// NewPaywayClient creates a Payway client with default timeout.
func NewPaywayClient(baseURL, apiKey string, logger *slog.Logger) (*PaywayClient, error) {
	parsed, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse payway url: %w", err)
	}
	if !parsed.IsAbs() {
		return nil, fmt.Errorf("payway url must be absolute")
	}
	return &PaywayClient{
		baseURL: parsed,
		apiKey:  apiKey,
		logger:  logger,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}, nil
}

func (c *PaywayClient) Name() string {
	return PaywayName
}

// CreateIntent registers an invoice and returns the checkout reference.
func (c *PaywayClient) CreateIntent(ctx context.Context, orderRef string, amount int64, currency string) (*Intent, error) {
	body, err := json.Marshal(paywayInvoiceRequest{OrderRef: orderRef, Amount: amount, Currency: currency})
	if err != nil {
		return nil, err
	}

	var resp paywayInvoiceResponse
	if err := c.call(ctx, http.MethodPost, "/v1/invoices", bytes.NewReader(body), &resp); err != nil {
		return nil, err
	}
	return &Intent{ID: resp.InvoiceID, ApprovalURL: resp.CheckoutURL}, nil
}

// Verify fetches the invoice and reports its raw status.
func (c *PaywayClient) Verify(ctx context.Context, externalPaymentID string) (string, error) {
	var resp paywayInvoiceResponse
	if err := c.call(ctx, http.MethodGet, "/v1/invoices/"+externalPaymentID, nil, &resp); err != nil {
		return "", err
	}
	return resp.Status, nil
}

// ParseWebhook decodes a Payway callback body.
func (c *PaywayClient) ParseWebhook(body []byte) (*Notification, error) {
	var payload paywayWebhookPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedWebhook, err)
	}
	if payload.InvoiceID == "" {
		return nil, fmt.Errorf("%w: missing invoice_id", ErrMalformedWebhook)
	}
	return &Notification{
		ExternalPaymentID: payload.InvoiceID,
		OrderRef:          payload.OrderRef,
		RawStatus:         payload.Status,
	}, nil
}

// Approved reports whether a raw Payway status means settled. Payway sends
// created, processing, paid and failed.
func (c *PaywayClient) Approved(rawStatus string) bool {
	return rawStatus == "paid"
}

func (c *PaywayClient) call(ctx context.Context, method, endpointPath string, body io.Reader, out any) error {
	endpoint := *c.baseURL
	endpoint.Path = path.Join(endpoint.Path, endpointPath)

	req, err := http.NewRequestWithContext(ctx, method, endpoint.String(), body)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("payway request: %w: %w", domainErrors.ErrUpstreamUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		raw, _ := io.ReadAll(resp.Body)
		c.logger.Error("payway request failed", slog.Int("status", resp.StatusCode), slog.String("body", string(raw)))
		return fmt.Errorf("payway status %s: %w", resp.Status, domainErrors.ErrUpstreamUnavailable)
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, out)
}
