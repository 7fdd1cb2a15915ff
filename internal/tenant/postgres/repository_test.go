package postgres

import (
	"context"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"

	"github.com/adxcore/orchestrator/internal/tenant"
)

// getMigrationsPath returns the path to the database migrations directory
func getMigrationsPath() string {
	_, filename, _, _ := runtime.Caller(0)
	dir := filepath.Dir(filename)
	parentDir := filepath.Dir(dir)      // internal/tenant
	parentDir = filepath.Dir(parentDir) // internal
	return filepath.Join(parentDir, "database", "migrations")
}

func setupTestRepo(t *testing.T) (*Repository, func()) {
	t.Helper()

	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	testcontainers.SkipIfProviderIsNotHealthy(t)

	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "postgres:16-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "testuser",
			"POSTGRES_PASSWORD": "testpass",
			"POSTGRES_DB":       "testdb",
		},
		WaitingFor: wait.ForListeningPort("5432/tcp"),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		t.Fatalf("failed to start container: %s", err)
	}

	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("failed to get container host: %s", err)
	}

	port, err := container.MappedPort(ctx, "5432")
	if err != nil {
		t.Fatalf("failed to get container port: %s", err)
	}

	dsn := "postgres://testuser:testpass@" + host + ":" + port.Port() + "/testdb?sslmode=disable"

	migrationPath := "file://" + getMigrationsPath()
	m, err := migrate.New(migrationPath, dsn)
	if err != nil {
		t.Fatalf("failed to create migrate instance: %s", err)
	}
	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		t.Fatalf("failed to run migrations: %s", err)
	}

	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		t.Fatalf("failed to create pool: %s", err)
	}

	logger, _ := zap.NewDevelopment()
	repo, err := New(pool, logger)
	if err != nil {
		t.Fatalf("failed to create repository: %s", err)
	}

	cleanup := func() {
		pool.Close()
		if err := container.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %s", err)
		}
	}

	return repo, cleanup
}

func createTestTenant(t *testing.T, slug string) *tenant.Tenant {
	t.Helper()
	return &tenant.Tenant{
		Name:           slug,
		Slug:           slug,
		Tier:           tenant.TierStarter,
		IsolationLevel: tenant.IsolationRow,
		Quotas:         tenant.DefaultQuotasForTier(tenant.TierStarter),
		Settings:       tenant.Settings{Timezone: "UTC", Locale: "en-US"},
		Status:         tenant.StatusProvisioning,
		StatusMessage:  "awaiting workflow",
		DesiredConfig: map[string]interface{}{
			"tier":   "starter",
			"region": "us-west-2",
		},
		Labels: map[string]string{
			"env": "test",
		},
		Annotations: map[string]string{
			"owner": "test-suite",
		},
	}
}

func TestRepository_CreateTenant(t *testing.T) {
	repo, cleanup := setupTestRepo(t)
	defer cleanup()

	ctx := context.Background()
	tn := createTestTenant(t, "test-tenant")

	err := repo.CreateTenant(ctx, tn)
	if err != nil {
		t.Fatalf("CreateTenant() error = %v", err)
	}

	if tn.ID == uuid.Nil {
		t.Error("CreateTenant() did not set ID")
	}
	if tn.CreatedAt.IsZero() {
		t.Error("CreateTenant() did not set CreatedAt")
	}
	if tn.UpdatedAt.IsZero() {
		t.Error("CreateTenant() did not set UpdatedAt")
	}
	if tn.Version != 1 {
		t.Errorf("CreateTenant() Version = %d, want 1", tn.Version)
	}
}

func TestRepository_CreateTenant_Duplicate(t *testing.T) {
	repo, cleanup := setupTestRepo(t)
	defer cleanup()

	ctx := context.Background()
	tenant1 := createTestTenant(t, "duplicate-tenant")
	tenant2 := createTestTenant(t, "duplicate-tenant")

	if err := repo.CreateTenant(ctx, tenant1); err != nil {
		t.Fatalf("CreateTenant() first insert error = %v", err)
	}

	err := repo.CreateTenant(ctx, tenant2)
	if err != tenant.ErrTenantExists {
		t.Errorf("CreateTenant() duplicate error = %v, want %v", err, tenant.ErrTenantExists)
	}
}

func TestRepository_GetTenant(t *testing.T) {
	repo, cleanup := setupTestRepo(t)
	defer cleanup()

	ctx := context.Background()
	original := createTestTenant(t, "get-tenant")
	if err := repo.CreateTenant(ctx, original); err != nil {
		t.Fatalf("CreateTenant() error = %v", err)
	}

	retrieved, err := repo.GetTenantBySlug(ctx, "get-tenant")
	if err != nil {
		t.Fatalf("GetTenantBySlug() error = %v", err)
	}

	if retrieved.ID != original.ID {
		t.Errorf("GetTenant() ID = %v, want %v", retrieved.ID, original.ID)
	}
	if retrieved.Name != original.Name {
		t.Errorf("GetTenantBySlug() Name = %v, want %v", retrieved.Name, original.Name)
	}
	if retrieved.Status != original.Status {
		t.Errorf("GetTenantBySlug() Status = %v, want %v", retrieved.Status, original.Status)
	}
	if retrieved.Quotas.MaxUsers != original.Quotas.MaxUsers {
		t.Errorf("GetTenantBySlug() Quotas.MaxUsers = %v, want %v", retrieved.Quotas.MaxUsers, original.Quotas.MaxUsers)
	}
	if value, ok := retrieved.DesiredConfig["region"].(string); !ok || value != "us-west-2" {
		t.Errorf("GetTenantBySlug() DesiredConfig[region] = %v, want us-west-2", retrieved.DesiredConfig["region"])
	}
}

func TestRepository_GetTenant_NotFound(t *testing.T) {
	repo, cleanup := setupTestRepo(t)
	defer cleanup()

	ctx := context.Background()
	_, err := repo.GetTenantBySlug(ctx, "nonexistent")
	if err != tenant.ErrTenantNotFound {
		t.Errorf("GetTenantBySlug() error = %v, want %v", err, tenant.ErrTenantNotFound)
	}
}

func TestRepository_UpdateTenant(t *testing.T) {
	repo, cleanup := setupTestRepo(t)
	defer cleanup()

	ctx := context.Background()
	tn := createTestTenant(t, "update-tenant")
	if err := repo.CreateTenant(ctx, tn); err != nil {
		t.Fatalf("CreateTenant() error = %v", err)
	}

	originalVersion := tn.Version
	tn.Status = tenant.StatusActive
	tn.StatusMessage = "provisioning complete"
	tn.DesiredConfig["region"] = "eu-west-1"

	err := repo.UpdateTenant(ctx, tn)
	if err != nil {
		t.Fatalf("UpdateTenant() error = %v", err)
	}

	if tn.Version != originalVersion+1 {
		t.Errorf("UpdateTenant() Version = %d, want %d", tn.Version, originalVersion+1)
	}

	retrieved, err := repo.GetTenantBySlug(ctx, "update-tenant")
	if err != nil {
		t.Fatalf("GetTenantBySlug() error = %v", err)
	}

	if retrieved.Status != tenant.StatusActive {
		t.Errorf("UpdateTenant() Status = %v, want %v", retrieved.Status, tenant.StatusActive)
	}
	if value, ok := retrieved.DesiredConfig["region"].(string); !ok || value != "eu-west-1" {
		t.Errorf("UpdateTenant() DesiredConfig[region] = %v, want eu-west-1", retrieved.DesiredConfig["region"])
	}
}

func TestRepository_UpdateTenant_VersionConflict(t *testing.T) {
	repo, cleanup := setupTestRepo(t)
	defer cleanup()

	ctx := context.Background()
	tn := createTestTenant(t, "conflict-tenant")
	if err := repo.CreateTenant(ctx, tn); err != nil {
		t.Fatalf("CreateTenant() error = %v", err)
	}

	tenant2 := tn.Clone()
	tenant2.Status = tenant.StatusActive
	if err := repo.UpdateTenant(ctx, tenant2); err != nil {
		t.Fatalf("UpdateTenant() first update error = %v", err)
	}

	tn.Status = tenant.StatusSuspended // using stale version
	err := repo.UpdateTenant(ctx, tn)
	if err != tenant.ErrVersionConflict {
		t.Errorf("UpdateTenant() error = %v, want %v", err, tenant.ErrVersionConflict)
	}
}

func TestRepository_PersistsWorkflowExecutionID(t *testing.T) {
	repo, cleanup := setupTestRepo(t)
	defer cleanup()

	ctx := context.Background()
	tn := createTestTenant(t, "workflow-status-tenant")
	if err := repo.CreateTenant(ctx, tn); err != nil {
		t.Fatalf("CreateTenant() error = %v", err)
	}

	execID := "exec-123"
	tn.WorkflowExecutionID = &execID

	if err := repo.UpdateTenant(ctx, tn); err != nil {
		t.Fatalf("UpdateTenant() error = %v", err)
	}

	updated, err := repo.GetTenantByID(ctx, tn.ID)
	if err != nil {
		t.Fatalf("GetTenantByID() error = %v", err)
	}

	if updated.WorkflowExecutionID == nil || *updated.WorkflowExecutionID != execID {
		t.Fatalf("WorkflowExecutionID = %v, want %v", updated.WorkflowExecutionID, execID)
	}
}

func TestRepository_DeleteTenant(t *testing.T) {
	repo, cleanup := setupTestRepo(t)
	defer cleanup()

	ctx := context.Background()
	tn := createTestTenant(t, "delete-tenant")
	if err := repo.CreateTenant(ctx, tn); err != nil {
		t.Fatalf("CreateTenant() error = %v", err)
	}

	err := repo.DeleteTenant(ctx, tn.ID)
	if err != nil {
		t.Fatalf("DeleteTenant() error = %v", err)
	}

	if _, err := repo.GetTenantByID(ctx, tn.ID); err != tenant.ErrTenantNotFound {
		t.Fatalf("GetTenantByID() after delete error = %v, want %v", err, tenant.ErrTenantNotFound)
	}
}
