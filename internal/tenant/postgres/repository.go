package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/adxcore/orchestrator/internal/tenant"
)

// Repository implements tenant.Repository for PostgreSQL
type Repository struct {
	pool   *pgxpool.Pool
	logger *zap.Logger
}

// New creates a PostgreSQL repository
// Accepts interface{} to satisfy provider abstraction, type asserts to *pgxpool.Pool
func New(pool interface{}, logger *zap.Logger) (*Repository, error) {
	pgPool, ok := pool.(*pgxpool.Pool)
	if !ok {
		return nil, fmt.Errorf("expected *pgxpool.Pool, got %T", pool)
	}
	return &Repository{
		pool:   pgPool,
		logger: logger.With(zap.String("component", "tenant-postgres-repository")),
	}, nil
}

const createTenantQuery = `
INSERT INTO tenants (
    id, name, slug, tier, isolation_level, features, quotas, settings,
    status, status_message, desired_config, labels, annotations
) VALUES (
    $1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13
)
RETURNING created_at, updated_at, version
`

func (r *Repository) CreateTenant(ctx context.Context, t *tenant.Tenant) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}

	r.logger.Debug("creating tenant",
		zap.String("slug", t.Slug),
		zap.String("id", t.ID.String()),
		zap.String("status", string(t.Status)))

	row := r.pool.QueryRow(ctx, createTenantQuery,
		t.ID,
		t.Name,
		t.Slug,
		t.Tier,
		t.IsolationLevel,
		jsonbOrEmptyBoolMap(t.Features),
		t.Quotas,
		t.Settings,
		t.Status,
		t.StatusMessage,
		jsonbOrEmptyInterfaceMap(t.DesiredConfig),
		jsonbOrEmptyStringMap(t.Labels),
		jsonbOrEmptyStringMap(t.Annotations),
	)

	if err := row.Scan(&t.CreatedAt, &t.UpdatedAt, &t.Version); err != nil {
		if isUniqueViolation(err) {
			return tenant.ErrTenantExists
		}
		return fmt.Errorf("create tenant: %w", err)
	}

	r.logger.Info("tenant created", zap.String("id", t.ID.String()), zap.String("slug", t.Slug))
	return nil
}

const selectTenantColumns = `
    id, name, slug, tier, isolation_level, features, quotas, settings,
    status, status_message, workflow_execution_id,
    desired_config, observed_config,
    created_at, updated_at, version, labels, annotations
`

func (r *Repository) scanTenant(row pgx.Row) (*tenant.Tenant, error) {
	t := &tenant.Tenant{}
	var featuresJSON, desiredConfigJSON, observedConfigJSON, labelsJSON, annotationsJSON []byte

	err := row.Scan(
		&t.ID, &t.Name, &t.Slug, &t.Tier, &t.IsolationLevel,
		&featuresJSON, &t.Quotas, &t.Settings,
		&t.Status, &t.StatusMessage, &t.WorkflowExecutionID,
		&desiredConfigJSON, &observedConfigJSON,
		&t.CreatedAt, &t.UpdatedAt, &t.Version,
		&labelsJSON, &annotationsJSON,
	)
	if err != nil {
		return nil, err
	}

	if err := unmarshalBoolMap(featuresJSON, &t.Features); err != nil {
		return nil, fmt.Errorf("unmarshal features: %w", err)
	}
	if err := unmarshalInterfaceMap(desiredConfigJSON, &t.DesiredConfig); err != nil {
		return nil, fmt.Errorf("unmarshal desired_config: %w", err)
	}
	if err := unmarshalInterfaceMap(observedConfigJSON, &t.ObservedConfig); err != nil {
		return nil, fmt.Errorf("unmarshal observed_config: %w", err)
	}
	if err := unmarshalStringMap(labelsJSON, &t.Labels); err != nil {
		return nil, fmt.Errorf("unmarshal labels: %w", err)
	}
	if err := unmarshalStringMap(annotationsJSON, &t.Annotations); err != nil {
		return nil, fmt.Errorf("unmarshal annotations: %w", err)
	}

	return t, nil
}

func (r *Repository) GetTenantBySlug(ctx context.Context, slug string) (*tenant.Tenant, error) {
	r.logger.Debug("getting tenant by slug", zap.String("slug", slug))

	query := "SELECT " + selectTenantColumns + " FROM tenants WHERE slug = $1"
	t, err := r.scanTenant(r.pool.QueryRow(ctx, query, slug))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, tenant.ErrTenantNotFound
		}
		return nil, fmt.Errorf("get tenant by slug: %w", err)
	}
	return t, nil
}

func (r *Repository) GetTenantByID(ctx context.Context, id uuid.UUID) (*tenant.Tenant, error) {
	r.logger.Debug("getting tenant by id", zap.String("id", id.String()))

	query := "SELECT " + selectTenantColumns + " FROM tenants WHERE id = $1"
	t, err := r.scanTenant(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, tenant.ErrTenantNotFound
		}
		return nil, fmt.Errorf("get tenant by id: %w", err)
	}
	return t, nil
}

const updateTenantQuery = `
UPDATE tenants SET
    name = $2,
    slug = $3,
    tier = $4,
    isolation_level = $5,
    features = $6,
    quotas = $7,
    settings = $8,
    status = $9,
    status_message = $10,
    workflow_execution_id = $11,
    desired_config = $12,
    observed_config = $13,
    labels = $14,
    annotations = $15,
    updated_at = NOW(),
    version = version + 1
WHERE id = $1 AND version = $16
RETURNING version, updated_at
`

func (r *Repository) UpdateTenant(ctx context.Context, t *tenant.Tenant) error {
	r.logger.Debug("updating tenant", zap.String("id", t.ID.String()), zap.Int("version", t.Version))

	row := r.pool.QueryRow(ctx, updateTenantQuery,
		t.ID,
		t.Name,
		t.Slug,
		t.Tier,
		t.IsolationLevel,
		jsonbOrEmptyBoolMap(t.Features),
		t.Quotas,
		t.Settings,
		t.Status,
		t.StatusMessage,
		t.WorkflowExecutionID,
		jsonbOrEmptyInterfaceMap(t.DesiredConfig),
		jsonbOrEmptyInterfaceMap(t.ObservedConfig),
		jsonbOrEmptyStringMap(t.Labels),
		jsonbOrEmptyStringMap(t.Annotations),
		t.Version,
	)

	if err := row.Scan(&t.Version, &t.UpdatedAt); err != nil {
		if isUniqueViolation(err) {
			return tenant.ErrTenantExists
		}
		if errors.Is(err, pgx.ErrNoRows) {
			if _, getErr := r.GetTenantByID(ctx, t.ID); getErr != nil {
				return tenant.ErrTenantNotFound
			}
			return tenant.ErrVersionConflict
		}
		return fmt.Errorf("update tenant: %w", err)
	}

	r.logger.Info("tenant updated", zap.String("id", t.ID.String()), zap.Int("new_version", t.Version))
	return nil
}

func (r *Repository) ListTenants(ctx context.Context, filters tenant.ListFilters) ([]*tenant.Tenant, error) {
	query, args := r.buildListQuery(filters)

	r.logger.Debug("listing tenants", zap.Any("filters", filters))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list tenants: %w", err)
	}
	defer rows.Close()

	var tenants []*tenant.Tenant
	for rows.Next() {
		t, err := r.scanTenant(rows)
		if err != nil {
			return nil, fmt.Errorf("scan tenant: %w", err)
		}
		tenants = append(tenants, t)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate tenants: %w", err)
	}

	return tenants, nil
}

var reconciliationStatuses = []string{
	string(tenant.StatusProvisioning),
	string(tenant.StatusUpgrading),
	string(tenant.StatusDowngrading),
	string(tenant.StatusMaintenance),
}

func (r *Repository) ListTenantsForReconciliation(ctx context.Context) ([]*tenant.Tenant, error) {
	r.logger.Debug("listing tenants for reconciliation")

	query := "SELECT " + selectTenantColumns + " FROM tenants WHERE status = ANY($1) ORDER BY created_at ASC"
	rows, err := r.pool.Query(ctx, query, reconciliationStatuses)
	if err != nil {
		return nil, fmt.Errorf("list tenants for reconciliation: %w", err)
	}
	defer rows.Close()

	var tenants []*tenant.Tenant
	for rows.Next() {
		t, err := r.scanTenant(rows)
		if err != nil {
			return nil, fmt.Errorf("scan tenant: %w", err)
		}
		tenants = append(tenants, t)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate tenants for reconciliation: %w", err)
	}

	r.logger.Debug("found tenants for reconciliation", zap.Int("count", len(tenants)))
	return tenants, nil
}

func (r *Repository) buildListQuery(filters tenant.ListFilters) (string, []interface{}) {
	query := "SELECT " + selectTenantColumns + " FROM tenants WHERE 1=1"
	args := []interface{}{}
	argPos := 1

	if !filters.IncludeDeleted {
		query += " AND status != 'deleted'"
	}
	if len(filters.Statuses) > 0 {
		query += fmt.Sprintf(" AND status = ANY($%d)", argPos)
		statusStrings := make([]string, len(filters.Statuses))
		for i, s := range filters.Statuses {
			statusStrings[i] = string(s)
		}
		args = append(args, statusStrings)
		argPos++
	}
	if len(filters.Tiers) > 0 {
		query += fmt.Sprintf(" AND tier = ANY($%d)", argPos)
		tierStrings := make([]string, len(filters.Tiers))
		for i, t := range filters.Tiers {
			tierStrings[i] = string(t)
		}
		args = append(args, tierStrings)
		argPos++
	}
	if filters.CreatedAfter != nil {
		query += fmt.Sprintf(" AND created_at > $%d", argPos)
		args = append(args, *filters.CreatedAfter)
		argPos++
	}
	if filters.CreatedBefore != nil {
		query += fmt.Sprintf(" AND created_at < $%d", argPos)
		args = append(args, *filters.CreatedBefore)
		argPos++
	}

	query += " ORDER BY created_at DESC"

	if filters.Limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", argPos)
		args = append(args, filters.Limit)
		argPos++
	}
	if filters.Offset > 0 {
		query += fmt.Sprintf(" OFFSET $%d", argPos)
		args = append(args, filters.Offset)
	}

	return query, args
}

const deleteTenantQuery = `
DELETE FROM tenants
WHERE id = $1
RETURNING id
`

func (r *Repository) DeleteTenant(ctx context.Context, id uuid.UUID) error {
	r.logger.Debug("deleting tenant", zap.String("id", id.String()))

	var deletedID uuid.UUID
	err := r.pool.QueryRow(ctx, deleteTenantQuery, id).Scan(&deletedID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return tenant.ErrTenantNotFound
		}
		return fmt.Errorf("delete tenant: %w", err)
	}

	r.logger.Info("tenant deleted", zap.String("id", id.String()))
	return nil
}

const recordTransitionQuery = `
INSERT INTO tenant_state_history (
    tenant_id, from_status, to_status,
    reason, triggered_by,
    desired_state_snapshot, observed_state_snapshot
) VALUES (
    $1, $2, $3, $4, $5, $6, $7
)
RETURNING id, created_at
`

func (r *Repository) RecordStateTransition(ctx context.Context, st *tenant.StateTransition) error {
	r.logger.Debug("recording state transition",
		zap.String("tenant_id", st.TenantID.String()),
		zap.String("to_status", string(st.ToStatus)))

	row := r.pool.QueryRow(ctx, recordTransitionQuery,
		st.TenantID,
		st.FromStatus,
		st.ToStatus,
		st.Reason,
		st.TriggeredBy,
		jsonbOrEmptyInterfaceMap(st.DesiredStateSnapshot),
		jsonbOrEmptyInterfaceMap(st.ObservedStateSnapshot),
	)

	if err := row.Scan(&st.ID, &st.CreatedAt); err != nil {
		return fmt.Errorf("record transition: %w", err)
	}

	return nil
}

const getHistoryQuery = `
SELECT
    id, tenant_id, from_status, to_status,
    reason, triggered_by,
    desired_state_snapshot, observed_state_snapshot,
    created_at
FROM tenant_state_history
WHERE tenant_id = $1
ORDER BY created_at DESC
`

func (r *Repository) GetStateHistory(ctx context.Context, tenantID uuid.UUID) ([]*tenant.StateTransition, error) {
	r.logger.Debug("getting state history", zap.String("tenant_id", tenantID.String()))

	rows, err := r.pool.Query(ctx, getHistoryQuery, tenantID)
	if err != nil {
		return nil, fmt.Errorf("get history: %w", err)
	}
	defer rows.Close()

	var history []*tenant.StateTransition
	for rows.Next() {
		st := &tenant.StateTransition{}
		var desiredSnapshotJSON, observedSnapshotJSON []byte

		err := rows.Scan(
			&st.ID, &st.TenantID, &st.FromStatus, &st.ToStatus,
			&st.Reason, &st.TriggeredBy,
			&desiredSnapshotJSON, &observedSnapshotJSON,
			&st.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan transition: %w", err)
		}

		if err := unmarshalInterfaceMap(desiredSnapshotJSON, &st.DesiredStateSnapshot); err != nil {
			return nil, fmt.Errorf("unmarshal desired_state_snapshot: %w", err)
		}
		if err := unmarshalInterfaceMap(observedSnapshotJSON, &st.ObservedStateSnapshot); err != nil {
			return nil, fmt.Errorf("unmarshal observed_state_snapshot: %w", err)
		}

		history = append(history, st)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate history: %w", err)
	}

	return history, nil
}

func jsonbOrEmptyStringMap(m map[string]string) interface{} {
	if len(m) == 0 {
		return "{}"
	}
	return m
}

func jsonbOrEmptyInterfaceMap(m map[string]interface{}) interface{} {
	if len(m) == 0 {
		return "{}"
	}
	return m
}

func jsonbOrEmptyBoolMap(m map[string]bool) interface{} {
	if len(m) == 0 {
		return "{}"
	}
	return m
}

func unmarshalStringMap(data []byte, m *map[string]string) error {
	if len(data) == 0 {
		return nil
	}
	return json.Unmarshal(data, m)
}

func unmarshalInterfaceMap(data []byte, m *map[string]interface{}) error {
	if len(data) == 0 {
		return nil
	}
	return json.Unmarshal(data, m)
}

func unmarshalBoolMap(data []byte, m *map[string]bool) error {
	if len(data) == 0 {
		return nil
	}
	return json.Unmarshal(data, m)
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
