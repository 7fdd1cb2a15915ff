package gateway

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/adxcore/orchestrator/internal/authn"
	"github.com/adxcore/orchestrator/internal/quota"
	"github.com/adxcore/orchestrator/internal/ratelimit"
)

// defaultLimits is applied to every gateway endpoint absent a per-tenant
// override; per-tenant overrides are expected to flow through Limits
// sourced from tenant tier configuration at the call site in production.
var defaultLimits = ratelimit.Limits{PerMinute: 120, PerHour: 5000, PerBurst: 20}

// RateLimitMiddleware denies requests that exceed the three-window rate
// limit for the caller's (tenant, user, endpoint), advertising the
// standard rate-limit headers on every response.
func RateLimitMiddleware(limiter *ratelimit.Limiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tenantID, _ := authn.TenantIDFromContext(r.Context())
			userID := ""
			if claims, ok := authn.ClaimsFromContext(r.Context()); ok {
				userID = claims.UserID
			}

			result, err := limiter.Check(r.Context(), tenantID, userID, r.URL.Path, defaultLimits)
			if err != nil {
				writeError(w, http.StatusInternalServerError, "rate limit check failed")
				return
			}
			if !result.Allowed {
				w.Header().Set("Retry-After", strconv.FormatInt(result.RetryAfter, 10))
				data, _ := json.Marshal(map[string]interface{}{
					"error":      "rate limit exceeded",
					"limit_type": result.LimitType,
					"retry_after": result.RetryAfter,
				})
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusTooManyRequests)
				w.Write(data)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// WorkflowQuotaMiddleware denies a workflow dispatch when the tenant has
// exhausted its per-day workflow-run quota, admitting the request
// otherwise and recording the run.
func WorkflowQuotaMiddleware(tracker *quota.Tracker) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tenantID, ok := authn.TenantIDFromContext(r.Context())
			if !ok || tenantID == "" {
				next.ServeHTTP(w, r)
				return
			}

			if err := tracker.CheckWorkflowRunQuota(r.Context(), tenantID); err != nil {
				writeError(w, http.StatusTooManyRequests, err.Error())
				return
			}
			if err := tracker.RecordWorkflowRun(r.Context(), tenantID); err != nil {
				writeError(w, http.StatusInternalServerError, "failed to record workflow run")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
