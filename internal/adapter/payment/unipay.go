package payment

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"path"
	"strconv"
	"strings"
	"time"

	domainErrors "github.com/ecutune/ecutune/internal/domain/errors"
)

// UnipayName identifies the Unipay adapter in configuration and order records.
const UnipayName = "unipay"

// UnipayClient talks to the Unipay payments API. Unipay takes form-encoded
// requests, answers with a payment envelope, and authenticates with an
// X-Api-Key header.
type UnipayClient struct {
	baseURL    *url.URL
	apiKey     string
	httpClient *http.Client
	logger     *slog.Logger
}

type unipayEnvelope struct {
	Payment struct {
		ID         string `json:"id"`
		ApproveURL string `json:"approve_url"`
		State      string `json:"state"`
	} `json:"payment"`
}

type unipayWebhookPayload struct {
	Event string `json:"event"`
	Data  struct {
		ID          string `json:"id"`
		MerchantRef string `json:"merchant_ref"`
		State       string `json:"state"`
	} `json:"data"`
}

// NewUnipayClient creates a Unipay client with default timeout.
func NewUnipayClient(baseURL, apiKey string, logger *slog.Logger) (*UnipayClient, error) {
	parsed, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse unipay url: %w", err)
	}
	if !parsed.IsAbs() {
		return nil, fmt.Errorf("unipay url must be absolute")
	}
	return &UnipayClient{
		baseURL: parsed,
		apiKey:  apiKey,
		logger:  logger,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}, nil
}

func (c *UnipayClient) Name() string {
	return UnipayName
}

// CreateIntent opens a payment and returns the approval reference.
func (c *UnipayClient) CreateIntent(ctx context.Context, orderRef string, amount int64, currency string) (*Intent, error) {
	form := url.Values{}
	form.Set("merchant_ref", orderRef)
	form.Set("amount", strconv.FormatInt(amount, 10))
	form.Set("currency", currency)

	var envelope unipayEnvelope
	if err := c.call(ctx, http.MethodPost, "/api/v2/payments", strings.NewReader(form.Encode()), &envelope); err != nil {
		return nil, err
	}
	return &Intent{ID: envelope.Payment.ID, ApprovalURL: envelope.Payment.ApproveURL}, nil
}

// Verify fetches the payment and reports its raw state.
func (c *UnipayClient) Verify(ctx context.Context, externalPaymentID string) (string, error) {
	var envelope unipayEnvelope
	if err := c.call(ctx, http.MethodGet, "/api/v2/payments/"+externalPaymentID, nil, &envelope); err != nil {
		return "", err
	}
	return envelope.Payment.State, nil
}

// ParseWebhook decodes a Unipay event body.
func (c *UnipayClient) ParseWebhook(body []byte) (*Notification, error) {
	var payload unipayWebhookPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedWebhook, err)
	}
	if payload.Data.ID == "" {
		return nil, fmt.Errorf("%w: missing payment id", ErrMalformedWebhook)
	}
	return &Notification{
		ExternalPaymentID: payload.Data.ID,
		OrderRef:          payload.Data.MerchantRef,
		RawStatus:         payload.Data.State,
	}, nil
}

// Approved reports whether a raw Unipay state means settled. Unipay moves
// payments through CREATED, AUTHORIZED, COMPLETED and CANCELLED.
func (c *UnipayClient) Approved(rawStatus string) bool {
	return rawStatus == "COMPLETED"
}

func (c *UnipayClient) call(ctx context.Context, method, endpointPath string, body io.Reader, out any) error {
	endpoint := *c.baseURL
	endpoint.Path = path.Join(endpoint.Path, endpointPath)

	req, err := http.NewRequestWithContext(ctx, method, endpoint.String(), body)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Api-Key", c.apiKey)
	if body != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("unipay request: %w: %w", domainErrors.ErrUpstreamUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		raw, _ := io.ReadAll(resp.Body)
		c.logger.Error("unipay request failed", slog.Int("status", resp.StatusCode), slog.String("body", string(raw)))
		return fmt.Errorf("unipay status %s: %w", resp.Status, domainErrors.ErrUpstreamUnavailable)
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, out)
}
