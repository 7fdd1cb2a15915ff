package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	awsses "github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/adxcore/orchestrator/internal/activity"
	"github.com/adxcore/orchestrator/internal/aiprovider"
	"github.com/adxcore/orchestrator/internal/audit"
	"github.com/adxcore/orchestrator/internal/cloud/awsconfig"
	"github.com/adxcore/orchestrator/internal/compute"
	computedocker "github.com/adxcore/orchestrator/internal/compute/providers/docker"
	computeecs "github.com/adxcore/orchestrator/internal/compute/providers/ecs"
	computemock "github.com/adxcore/orchestrator/internal/compute/providers/mock"
	"github.com/adxcore/orchestrator/internal/config"
	"github.com/adxcore/orchestrator/internal/database"
	"github.com/adxcore/orchestrator/internal/gateway"
	"github.com/adxcore/orchestrator/internal/logger"
	"github.com/adxcore/orchestrator/internal/notify"
	"github.com/adxcore/orchestrator/internal/payment"
	"github.com/adxcore/orchestrator/internal/quota"
	"github.com/adxcore/orchestrator/internal/ratelimit"
	"github.com/adxcore/orchestrator/internal/storage"
	"github.com/adxcore/orchestrator/internal/tenant"
	"github.com/adxcore/orchestrator/internal/tenant/postgres"
	"github.com/adxcore/orchestrator/internal/workflow"
	"github.com/adxcore/orchestrator/internal/workflow/providers/restate"
	"github.com/adxcore/orchestrator/internal/workflows"
)

// main boots the workflow dispatch gateway: a standalone HTTP process
// exposing sync/async workflow dispatch, status polling and streaming on
// top of the same activity/workflow library the restate worker executes
// against, alongside its own rate-limit and quota admission.
func main() {
	v := config.NewViperInstance()
	if err := config.BindEnvironmentVariables(v); err != nil {
		fmt.Fprintf(os.Stderr, "failed to bind environment variables: %v\n", err)
		os.Exit(1)
	}

	configFile, err := config.FindConfigFile("")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to find config file: %v\n", err)
		os.Exit(1)
	}
	if configFile != "" {
		if err := config.LoadConfigFile(v, configFile); err != nil {
			fmt.Fprintf(os.Stderr, "failed to load config file: %v\n", err)
			os.Exit(1)
		}
	}

	cfg, err := config.LoadFromViper(v)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(cfg.Log.Format, cfg.Log.Level)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	log.Info("starting orchestrator gateway")

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	dbProvider, err := database.NewProvider(ctx, &cfg.Database, log)
	if err != nil {
		log.Fatal("failed to initialize database", zap.Error(err))
	}
	defer dbProvider.Close()

	pool, ok := dbProvider.Pool().(*pgxpool.Pool)
	if !ok {
		log.Fatal("database provider is not a pgxpool.Pool")
	}

	tenantRepo, err := postgres.New(pool, log)
	if err != nil {
		log.Fatal("failed to initialize tenant repository", zap.Error(err))
	}

	redisClient := redis.NewClient(&redis.Options{Addr: redisAddr()})
	defer redisClient.Close()

	limiter := ratelimit.NewLimiter(redisClient)
	quotaTracker := quota.NewTracker(pool, redisClient, tenantRepo)
	auditLogger := audit.NewLogger(pool, 100, 5*time.Second, log)
	auditLogger.StartFlushLoop(ctx)

	storageRegistry := buildStorageRegistry(ctx, log)
	computeRegistry := buildComputeRegistry(cfg, log)
	aiRegistry := buildAIProviderRegistry()
	paymentRegistry := buildPaymentRegistry()
	notifier := buildNotifier(ctx, log)

	workflowProvider, err := restate.New(cfg.Workflow.Restate, log)
	if err != nil {
		log.Fatal("failed to initialize restate workflow provider", zap.Error(err))
	}

	activityRegistry := buildActivityRegistry(
		log, auditLogger, storageRegistry, computeRegistry, aiRegistry,
		quotaTracker, paymentRegistry, notifier, workflowProvider, tenantRepo,
	)

	library, err := workflows.NewDefaultLibrary()
	if err != nil {
		log.Fatal("failed to build workflow library", zap.Error(err))
	}

	engine := workflows.NewEngine(activityRegistry)
	gw := gateway.New(engine, library, log)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(logger.HTTPMiddleware(log))
	r.Use(logger.CorrelationIDMiddleware)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(gateway.RateLimitMiddleware(limiter))
	r.Use(gateway.WorkflowQuotaMiddleware(quotaTracker))

	gw.Routes(r)

	addr := gatewayAddress()
	srv := &http.Server{Addr: addr, Handler: r}

	go func() {
		<-ctx.Done()
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error("gateway shutdown failed", zap.Error(err))
		}
	}()

	log.Info("gateway listening", zap.String("address", addr))
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal("gateway server failed", zap.Error(err))
	}

	log.Info("gateway stopped")
}

func buildActivityRegistry(
	log *zap.Logger,
	auditLogger *audit.Logger,
	storageRegistry *storage.Registry,
	computeRegistry *compute.Registry,
	aiRegistry *aiprovider.Registry,
	quotaTracker *quota.Tracker,
	paymentRegistry *payment.Registry,
	notifier *notify.Notifier,
	workflowProvider workflow.Provider,
	tenantRepo tenant.Repository,
) *activity.Registry {
	registry := activity.NewRegistry(log)

	mustRegister := func(a activity.Activity) {
		if err := registry.Register(a); err != nil {
			log.Fatal("failed to register activity", zap.String("activity", a.Name()), zap.Error(err))
		}
	}

	mustRegister(activity.NewValidateUser())
	mustRegister(activity.NewCheckPermissions())
	mustRegister(activity.NewGetUserProfile(tenantRepo))
	mustRegister(activity.NewHashPassword())
	mustRegister(activity.NewAudit(auditLogger))
	mustRegister(activity.NewNotify(notifier))
	mustRegister(activity.NewInvokeWorkflowProvider(workflowProvider))

	mustRegister(activity.NewUploadToStorage(storageRegistry, "local"))
	mustRegister(activity.NewExtractFileMetadata(storageRegistry, "local"))
	mustRegister(activity.NewVirusScanFile(activity.NoopScanner{}))
	mustRegister(activity.NewGenerateThumbnails())

	mustRegister(activity.NewAllocateSandbox(computeRegistry))
	mustRegister(activity.NewDeallocateSandbox(computeRegistry))

	mustRegister(activity.NewProvisionLicense())
	mustRegister(activity.NewCheckLicenseQuota())
	mustRegister(activity.NewBuildRenewalInvoice())
	mustRegister(activity.NewCharge(paymentRegistry))

	mustRegister(activity.NewVerifyGDPRToken())
	mustRegister(activity.NewExportTenantArchive(auditLogger, storageRegistry))
	mustRegister(activity.NewDeleteTenantData(auditLogger))

	mustRegister(activity.NewApplyRetentionPolicy(storageDisposer(storageRegistry, log)))

	costs := aiprovider.DefaultCostTable()
	mustRegister(activity.NewAIRequest(aiprovider.DefaultModelRegistry(), aiRegistry, costs, quotaTracker))

	// bulk_operation dispatches back into this same registry per entity.
	mustRegister(activity.NewBulkOperation(registry))

	return registry
}

// storageDisposer implements activity.Disposer against the storage
// registry's local backend; hard/soft delete both remove the blob, the
// distinction matters for the database-row resources a future Disposer
// backed by internal/tenant/postgres would add.
func storageDisposer(registry *storage.Registry, log *zap.Logger) activity.Disposer {
	return func(ctx context.Context, resourceType, resourceID string, method activity.DeletionMethod) error {
		provider, err := registry.Get("local")
		if err != nil {
			return err
		}
		switch method {
		case activity.DeletionMethodHardDelete, activity.DeletionMethodSoftDelete:
			return provider.Delete(ctx, resourceType+"/"+resourceID)
		default:
			log.Debug("retention sweep skipped non-destructive disposal",
				zap.String("resource_type", resourceType),
				zap.String("resource_id", resourceID),
				zap.String("method", string(method)),
			)
			return nil
		}
	}
}

func buildStorageRegistry(ctx context.Context, log *zap.Logger) *storage.Registry {
	registry := storage.NewRegistry()
	registry.Register(storage.NewLocalProvider(localStorageDir()))

	if bucket := os.Getenv("STORAGE_S3_BUCKET"); bucket != "" {
		awsCfg, err := awsconfig.Load(ctx, awsconfig.Options{Region: os.Getenv("AWS_REGION")})
		if err != nil {
			log.Warn("failed to load AWS config for S3 storage provider, skipping", zap.Error(err))
			return registry
		}
		client := s3.NewFromConfig(awsCfg)
		presigner := s3.NewPresignClient(client)
		registry.Register(storage.NewS3Provider(client, presigner, bucket, 15*time.Minute, log))
	}

	return registry
}

func buildComputeRegistry(cfg *config.Config, log *zap.Logger) *compute.Registry {
	registry := compute.NewRegistry(log)
	registry.Register(computemock.New())

	if cfg.Compute.Docker != nil {
		dockerProvider, err := computedocker.New(&computedocker.Config{
			Host:          cfg.Compute.Docker.Host,
			NetworkName:   cfg.Compute.Docker.NetworkName,
			NetworkDriver: cfg.Compute.Docker.NetworkDriver,
			LabelPrefix:   cfg.Compute.Docker.LabelPrefix,
		}, log)
		if err != nil {
			log.Warn("failed to initialize Docker compute provider, skipping", zap.Error(err))
		} else {
			registry.Register(dockerProvider)
		}
	}

	if cfg.Compute.ECS != nil {
		registry.Register(computeecs.New(log, cfg.Compute.ECS.Defaults))
	}

	return registry
}

func buildAIProviderRegistry() *aiprovider.Registry {
	registry := aiprovider.NewRegistry()
	registry.Register(aiprovider.NewLocalProvider())
	if key := os.Getenv("ANTHROPIC_API_KEY"); key != "" {
		registry.Register(aiprovider.NewAnthropicProvider(key))
	}
	if key := os.Getenv("OPENAI_API_KEY"); key != "" {
		if provider, err := aiprovider.NewOpenAIProvider(key, os.Getenv("OPENAI_BASE_URL")); err == nil {
			registry.Register(provider)
		}
	}
	return registry
}

func buildPaymentRegistry() *payment.Registry {
	registry := payment.NewRegistry()
	registry.Register(payment.NewEnterpriseProvider())
	if key := os.Getenv("STRIPE_SECRET_KEY"); key != "" {
		registry.Register(payment.NewStripeProvider(key))
	}
	return registry
}

func buildNotifier(ctx context.Context, log *zap.Logger) *notify.Notifier {
	from := os.Getenv("NOTIFY_FROM_ADDRESS")
	awsCfg, err := awsconfig.Load(ctx, awsconfig.Options{Region: os.Getenv("AWS_REGION")})
	if err != nil || from == "" {
		log.Warn("SES notifier unavailable, notifications will no-op", zap.Error(err))
		return notify.NewNotifier(noopSender{})
	}
	client := awsses.NewFromConfig(awsCfg)
	return notify.NewNotifier(notify.NewSESSender(client, from))
}

type noopSender struct{}

func (noopSender) Send(ctx context.Context, msg *notify.Message) error { return nil }

func redisAddr() string {
	if addr := os.Getenv("REDIS_ADDR"); addr != "" {
		return addr
	}
	return "localhost:6379"
}

func localStorageDir() string {
	if dir := os.Getenv("STORAGE_LOCAL_DIR"); dir != "" {
		return dir
	}
	return "./data/storage"
}

func gatewayAddress() string {
	if addr := os.Getenv("ORCHESTRATOR_GATEWAY_ADDRESS"); addr != "" {
		return addr
	}
	if port := os.Getenv("PORT"); port != "" {
		return ":" + port
	}
	return ":8082"
}
