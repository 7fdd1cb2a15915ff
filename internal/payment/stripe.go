package payment

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// StripeProvider charges against the Stripe REST API directly (form-encoded
// POST requests with HTTP basic auth on the secret key), the shape Stripe's
// own API expects regardless of client library.
type StripeProvider struct {
	secretKey  string
	httpClient *http.Client
	baseURL    string
}

// NewStripeProvider constructs a Stripe payment provider.
func NewStripeProvider(secretKey string) *StripeProvider {
	return &StripeProvider{
		secretKey:  secretKey,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		baseURL:    "https://api.stripe.com/v1",
	}
}

func (p *StripeProvider) Name() string { return "stripe" }

func (p *StripeProvider) Charge(ctx context.Context, req *ChargeRequest) (*ChargeResult, error) {
	form := url.Values{}
	form.Set("amount", strconv.FormatInt(req.AmountCents, 10))
	form.Set("currency", strings.ToLower(req.Currency))
	form.Set("description", req.Description)
	form.Set("metadata[tenant_id]", req.TenantID)

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/charges", strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("build stripe request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	httpReq.Header.Set("Idempotency-Key", req.IdempotencyKey)
	httpReq.SetBasicAuth(p.secretKey, "")

	resp, err := p.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("stripe charge request: %w", err)
	}
	defer resp.Body.Close()

	var body struct {
		ID     string `json:"id"`
		Status string `json:"status"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decode stripe response: %w", err)
	}

	if resp.StatusCode >= 300 {
		return &ChargeResult{ChargeID: body.ID, Status: "declined"}, fmt.Errorf("stripe charge failed: status %d", resp.StatusCode)
	}

	return &ChargeResult{ChargeID: body.ID, Status: body.Status}, nil
}

func (p *StripeProvider) Refund(ctx context.Context, chargeID string) error {
	form := url.Values{}
	form.Set("charge", chargeID)

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/refunds", strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("build stripe refund request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	httpReq.SetBasicAuth(p.secretKey, "")

	resp, err := p.httpClient.Do(httpReq)
	if err != nil {
		return fmt.Errorf("stripe refund request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("stripe refund failed: status %d", resp.StatusCode)
	}
	return nil
}
