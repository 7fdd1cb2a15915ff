// Package quota enforces per-tenant resource quotas (AI requests/tokens per
// hour, workflow runs per day) against tenant.Quotas, and tracks AI usage
// with a dual Postgres+Redis write. User count and storage bytes quotas are
// not checked by this package.
package quota

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/adxcore/orchestrator/internal/tenant"
)

const (
	hourTTL = 7 * 24 * time.Hour
	dayTTL  = 90 * 24 * time.Hour
)

// UsageRecord is a single AI request's accounting row, dual-written to
// Postgres (ai_usage_records) and Redis hourly/daily hashes.
type UsageRecord struct {
	TenantID         string
	UserID           string
	WorkflowID       string
	ActivityID       string
	Model            string
	Capability       string
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
	EstimatedCostUSD float64
	RequestAt        time.Time
	ResponseAt       time.Time
	Success          bool
	ErrorCode        string
}

// Tracker enforces AI quotas and records usage.
type Tracker struct {
	pool   *pgxpool.Pool
	redis  *redis.Client
	tenant tenant.Repository
}

// NewTracker constructs a Tracker.
func NewTracker(pool *pgxpool.Pool, redisClient *redis.Client, tenantRepo tenant.Repository) *Tracker {
	return &Tracker{pool: pool, redis: redisClient, tenant: tenantRepo}
}

func hourKey(tenantID, capability string, t time.Time) string {
	return fmt.Sprintf("usage:%s:%s:hour:%s", tenantID, capability, t.UTC().Format("2006010215"))
}

func dayKey(tenantID, capability string, t time.Time) string {
	return fmt.Sprintf("usage:%s:%s:day:%s", tenantID, capability, t.UTC().Format("20060102"))
}

// CapabilityLimit is the per-hour request/token ceiling for one AI
// capability (text generation, classification, summarization, entity
// extraction, ...).
type CapabilityLimit struct {
	RequestsPerHour int
	TokensPerHour   int
}

// DefaultCapabilityLimits are the per-capability hourly defaults: used
// unless a tenant's aggregate MaxAIRequestsHour/MaxAITokensHour override
// them with a tighter tier-wide cap. A looser aggregate cap does not raise them.
var DefaultCapabilityLimits = map[string]CapabilityLimit{
	"text_generation":      {RequestsPerHour: 1000, TokensPerHour: 100_000},
	"text_classification":  {RequestsPerHour: 2000, TokensPerHour: 50_000},
	"text_summarization":   {RequestsPerHour: 500, TokensPerHour: 200_000},
	"entity_extraction":    {RequestsPerHour: 1000, TokensPerHour: 100_000},
}

const defaultCapabilityRequestsPerHour = 100
const defaultCapabilityTokensPerHour = 10_000

func capabilityLimit(capability string) CapabilityLimit {
	if limit, ok := DefaultCapabilityLimits[capability]; ok {
		return limit
	}
	return CapabilityLimit{RequestsPerHour: defaultCapabilityRequestsPerHour, TokensPerHour: defaultCapabilityTokensPerHour}
}

// CheckAIQuota verifies a tenant has remaining request and token headroom
// for the given capability in the current hour before a request is
// dispatched to a provider. The tenant's aggregate MaxAIRequestsHour /
// MaxAITokensHour (when set) bound the per-capability default; a zero
// aggregate quota field means the capability default applies unmodified.
func (t *Tracker) CheckAIQuota(ctx context.Context, tenantID, capability string, estimatedTokens int) error {
	tn, err := t.tenant.GetTenantByID(ctx, mustParseTenantID(tenantID))
	if err != nil {
		return fmt.Errorf("load tenant %s for quota check: %w", tenantID, err)
	}

	limit := capabilityLimit(capability)
	q := tn.Quotas
	if q.MaxAIRequestsHour > 0 && q.MaxAIRequestsHour < limit.RequestsPerHour {
		limit.RequestsPerHour = q.MaxAIRequestsHour
	}
	if q.MaxAITokensHour > 0 && q.MaxAITokensHour < limit.TokensPerHour {
		limit.TokensPerHour = q.MaxAITokensHour
	}

	hKey := hourKey(tenantID, capability, time.Now())
	requests, tokens, err := t.currentHourUsage(ctx, hKey)
	if err != nil {
		return err
	}

	if requests >= limit.RequestsPerHour {
		return fmt.Errorf("%w: %s requests per hour (%d)", ErrQuotaExceeded, capability, limit.RequestsPerHour)
	}
	if tokens+estimatedTokens > limit.TokensPerHour {
		return fmt.Errorf("%w: %s tokens per hour (%d)", ErrQuotaExceeded, capability, limit.TokensPerHour)
	}
	return nil
}

func (t *Tracker) currentHourUsage(ctx context.Context, hKey string) (requests int, tokens int, err error) {
	vals, err := t.redis.HMGet(ctx, hKey, "requests", "tokens").Result()
	if err != nil {
		return 0, 0, fmt.Errorf("read current usage for %s: %w", hKey, err)
	}
	if v, ok := vals[0].(string); ok {
		fmt.Sscanf(v, "%d", &requests)
	}
	if v, ok := vals[1].(string); ok {
		fmt.Sscanf(v, "%d", &tokens)
	}
	return requests, tokens, nil
}

// RecordUsage dual-writes a completed AI request: a row in ai_usage_records
// and incremented Redis hourly/daily hashes, mirroring the usage tracker's
// Postgres+Redis split so get_current_usage stays cheap.
func (t *Tracker) RecordUsage(ctx context.Context, rec UsageRecord) error {
	if _, err := t.pool.Exec(ctx, `
INSERT INTO ai_usage_records (
    tenant_id, user_id, workflow_id, activity_id, model, capability,
    prompt_tokens, completion_tokens, total_tokens, estimated_cost,
    request_timestamp, response_timestamp, success, error_code
) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14)`,
		rec.TenantID, rec.UserID, rec.WorkflowID, rec.ActivityID, rec.Model, rec.Capability,
		rec.PromptTokens, rec.CompletionTokens, rec.TotalTokens, rec.EstimatedCostUSD,
		rec.RequestAt, rec.ResponseAt, rec.Success, rec.ErrorCode,
	); err != nil {
		return fmt.Errorf("insert ai usage record: %w", err)
	}

	now := time.Now()
	hKey := hourKey(rec.TenantID, rec.Capability, now)
	dKey := dayKey(rec.TenantID, rec.Capability, now)

	pipe := t.redis.TxPipeline()
	for _, key := range []string{hKey, dKey} {
		pipe.HIncrBy(ctx, key, "requests", 1)
		pipe.HIncrBy(ctx, key, "tokens", int64(rec.TotalTokens))
		pipe.HIncrByFloat(ctx, key, "cost", rec.EstimatedCostUSD)
	}
	pipe.Expire(ctx, hKey, hourTTL)
	pipe.Expire(ctx, dKey, dayTTL)

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("record usage counters: %w", err)
	}
	return nil
}

// CheckWorkflowRunQuota verifies a tenant has remaining workflow-run
// headroom for the current day before a new workflow execution starts.
func (t *Tracker) CheckWorkflowRunQuota(ctx context.Context, tenantID string) error {
	tn, err := t.tenant.GetTenantByID(ctx, mustParseTenantID(tenantID))
	if err != nil {
		return fmt.Errorf("load tenant %s for quota check: %w", tenantID, err)
	}
	if tn.Quotas.MaxWorkflowRuns == 0 {
		return nil
	}

	dKey := dayKey(tenantID, "workflow_runs", time.Now())
	count, err := t.redis.Get(ctx, dKey).Int()
	if err != nil && err != redis.Nil {
		return fmt.Errorf("read workflow run usage: %w", err)
	}
	if count >= tn.Quotas.MaxWorkflowRuns {
		return fmt.Errorf("%w: workflow runs per day (%d)", ErrQuotaExceeded, tn.Quotas.MaxWorkflowRuns)
	}
	return nil
}

// RecordWorkflowRun increments the current day's workflow run counter.
func (t *Tracker) RecordWorkflowRun(ctx context.Context, tenantID string) error {
	dKey := dayKey(tenantID, "workflow_runs", time.Now())
	pipe := t.redis.TxPipeline()
	pipe.Incr(ctx, dKey)
	pipe.Expire(ctx, dKey, dayTTL)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("record workflow run: %w", err)
	}
	return nil
}

// UsageStats aggregates ai_usage_records over a date range, grouped by
// model and capability.
type UsageStats struct {
	Model            string
	Capability       string
	RequestCount     int64
	TotalTokens      int64
	EstimatedCostUSD float64
}

// GetUsageStats aggregates usage for reporting, grouped by model/capability.
func (t *Tracker) GetUsageStats(ctx context.Context, tenantID string, from, to time.Time) ([]UsageStats, error) {
	rows, err := t.pool.Query(ctx, `
SELECT model, capability, count(*), coalesce(sum(total_tokens),0), coalesce(sum(estimated_cost),0)
FROM ai_usage_records
WHERE tenant_id = $1 AND request_timestamp BETWEEN $2 AND $3
GROUP BY model, capability`, tenantID, from, to)
	if err != nil {
		return nil, fmt.Errorf("query usage stats: %w", err)
	}
	defer rows.Close()

	var stats []UsageStats
	for rows.Next() {
		var s UsageStats
		if err := rows.Scan(&s.Model, &s.Capability, &s.RequestCount, &s.TotalTokens, &s.EstimatedCostUSD); err != nil {
			return nil, fmt.Errorf("scan usage stats: %w", err)
		}
		stats = append(stats, s)
	}
	return stats, rows.Err()
}
