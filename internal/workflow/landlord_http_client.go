package workflow

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

// HTTPTenantClient fetches tenant data from the orchestrator control-plane HTTP API.
type HTTPTenantClient struct {
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
}

// NewHTTPTenantClient creates a new HTTP client for the control-plane tenant API.
func NewHTTPTenantClient(baseURL string, logger *zap.Logger) *HTTPTenantClient {
	return &HTTPTenantClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 10 * time.Second},
		logger:     logger.With(zap.String("component", "tenant-http-client")),
	}
}

// GetTenant retrieves a tenant by UUID from the control-plane API.
func (c *HTTPTenantClient) GetTenant(ctx context.Context, tenantUUID string) (*RemoteTenant, error) {
	if tenantUUID == "" {
		return nil, fmt.Errorf("tenant UUID is required")
	}

	url := fmt.Sprintf("%s/api/tenants/%s", c.baseURL, tenantUUID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request tenant: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	var tenant RemoteTenant
	if err := json.NewDecoder(resp.Body).Decode(&tenant); err != nil {
		return nil, fmt.Errorf("decode tenant: %w", err)
	}

	return &tenant, nil
}
