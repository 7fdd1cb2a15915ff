// Package audit records the append-only audit log (every tenant-affecting
// action) and drives GDPR export/deletion bookkeeping. Entries are batched
// and flushed to Postgres, grounded on the same pgx pool usage as
// internal/tenant/postgres.
package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// Entry is a single audit log record.
type Entry struct {
	ID         uuid.UUID       `json:"id"`
	TenantID   string          `json:"tenant_id"`
	ActorID    string          `json:"actor_id,omitempty"`
	Action     string          `json:"action"`
	Resource   string          `json:"resource,omitempty"`
	WorkflowID string          `json:"workflow_id,omitempty"`
	Details    json.RawMessage `json:"details,omitempty"`
	Success    bool            `json:"success"`
	OccurredAt time.Time       `json:"occurred_at"`
}

// Logger appends audit entries, batching writes to reduce round trips.
type Logger struct {
	pool        *pgxpool.Pool
	logger      *zap.Logger
	mu          sync.Mutex
	buf         []Entry
	batchSize   int
	flushPeriod time.Duration
}

// NewLogger creates a batched audit logger writing to the given pool.
func NewLogger(pool *pgxpool.Pool, batchSize int, flushPeriod time.Duration, logger *zap.Logger) *Logger {
	if batchSize <= 0 {
		batchSize = 50
	}
	if flushPeriod <= 0 {
		flushPeriod = 5 * time.Second
	}
	return &Logger{
		pool:        pool,
		logger:      logger.With(zap.String("component", "audit-logger")),
		batchSize:   batchSize,
		flushPeriod: flushPeriod,
	}
}

// Record appends an entry to the in-memory batch, flushing immediately once
// the batch reaches batchSize.
func (l *Logger) Record(ctx context.Context, e Entry) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	if e.OccurredAt.IsZero() {
		e.OccurredAt = time.Now().UTC()
	}

	l.mu.Lock()
	l.buf = append(l.buf, e)
	shouldFlush := len(l.buf) >= l.batchSize
	l.mu.Unlock()

	if shouldFlush {
		return l.Flush(ctx)
	}
	return nil
}

// Flush writes all buffered entries to Postgres in a single batched insert.
func (l *Logger) Flush(ctx context.Context) error {
	l.mu.Lock()
	batch := l.buf
	l.buf = nil
	l.mu.Unlock()

	if len(batch) == 0 {
		return nil
	}

	rows := make([][]interface{}, 0, len(batch))
	for _, e := range batch {
		rows = append(rows, []interface{}{
			e.ID, e.TenantID, e.ActorID, e.Action, e.Resource, e.WorkflowID,
			e.Details, e.Success, e.OccurredAt,
		})
	}

	_, err := l.pool.CopyFrom(ctx,
		pgx.Identifier{"audit_log"},
		[]string{"id", "tenant_id", "actor_id", "action", "resource", "workflow_id", "details", "success", "occurred_at"},
		pgx.CopyFromRows(rows),
	)
	if err != nil {
		l.logger.Error("flush audit log batch failed", zap.Error(err), zap.Int("count", len(batch)))
		return fmt.Errorf("flush audit log: %w", err)
	}
	return nil
}

// StartFlushLoop runs a background ticker that periodically flushes the
// buffer, so low-traffic tenants don't wait indefinitely for batchSize
// entries to accumulate.
func (l *Logger) StartFlushLoop(ctx context.Context) {
	ticker := time.NewTicker(l.flushPeriod)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				_ = l.Flush(context.Background())
				return
			case <-ticker.C:
				if err := l.Flush(ctx); err != nil {
					l.logger.Warn("periodic audit flush failed", zap.Error(err))
				}
			}
		}
	}()
}

// ExportTenantData gathers every audit entry for a tenant, used by the GDPR
// export workflow to assemble the data package handed back to the subject.
func (l *Logger) ExportTenantData(ctx context.Context, tenantID string) ([]Entry, error) {
	rows, err := l.pool.Query(ctx, `
SELECT id, tenant_id, actor_id, action, resource, workflow_id, details, success, occurred_at
FROM audit_log WHERE tenant_id = $1 ORDER BY occurred_at ASC`, tenantID)
	if err != nil {
		return nil, fmt.Errorf("query audit log for tenant %s: %w", tenantID, err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.ID, &e.TenantID, &e.ActorID, &e.Action, &e.Resource, &e.WorkflowID, &e.Details, &e.Success, &e.OccurredAt); err != nil {
			return nil, fmt.Errorf("scan audit entry: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// DeleteTenantData purges audit entries for a tenant as part of the GDPR
// deletion workflow. The deletion itself is recorded as a new audit entry
// by the caller once this returns.
func (l *Logger) DeleteTenantData(ctx context.Context, tenantID string) error {
	_, err := l.pool.Exec(ctx, `DELETE FROM audit_log WHERE tenant_id = $1`, tenantID)
	if err != nil {
		return fmt.Errorf("delete audit log for tenant %s: %w", tenantID, err)
	}
	return nil
}
