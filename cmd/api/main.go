package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"leadportal_backend/internal/adapters"
	"leadportal_backend/internal/adapters/storage"
	"leadportal_backend/internal/clients"
	clientsrepo "leadportal_backend/internal/clients/repository"
	"leadportal_backend/internal/email"
	"leadportal_backend/internal/events"
	apphttp "leadportal_backend/internal/http"
	"leadportal_backend/internal/http/router"
	"leadportal_backend/internal/leads"
	leadshandler "leadportal_backend/internal/leads/handler"
	leadsrepo "leadportal_backend/internal/leads/repository"
	"leadportal_backend/internal/metrics"
	"leadportal_backend/internal/notification"
	"leadportal_backend/internal/reporting"
	"leadportal_backend/internal/reporting/cache"
	"leadportal_backend/internal/scheduler"
	"leadportal_backend/internal/vendorapi"
	"leadportal_backend/migrations"
	"leadportal_backend/platform/config"
	"leadportal_backend/platform/db"
	"leadportal_backend/platform/logger"
	"leadportal_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

const shutdownTimeout = 10 * time.Second

// stores bundles the persistence chosen at startup.
type stores struct {
	leads   leadsrepo.Store
	clients clientsrepo.Store
	vendor  vendorapi.LogStore
	health  apphttp.HealthChecker
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	// Initialize structured logger
	log := logger.New(cfg.Env)
	log.Info("starting server", "env", cfg.Env, "addr", cfg.HTTPAddr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// ========================================================================
	// Infrastructure Layer
	// ========================================================================

	st, closeStores := initStores(ctx, cfg, log)
	defer closeStores()

	location, err := time.LoadLocation(cfg.GetReportTimezone())
	if err != nil {
		panic("invalid report timezone: " + err.Error())
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(registry)

	// Event bus for decoupled communication between modules
	eventBus := events.NewInMemoryBus(log)

	// Shared validator instance for dependency injection
	val := validator.New()

	reportCache := initReportCache(cfg, log)

	forwardScheduler, closeScheduler := initForwardScheduler(cfg, log)
	if closeScheduler != nil {
		defer closeScheduler()
	}

	var uploader leadshandler.MediaUploader
	if mu := initMediaUploader(ctx, cfg, log); mu != nil {
		uploader = mu
	}

	fields, err := vendorapi.LoadFieldMap(cfg.GetVendorFieldMapFile())
	if err != nil {
		log.Error("failed to load vendor field map", "error", err)
		panic("failed to load vendor field map: " + err.Error())
	}

	// ========================================================================
	// Domain Modules (Composition Root)
	// ========================================================================

	// Notification module subscribes to domain events (not HTTP-facing)
	notificationModule := notification.New(initEmailSender(cfg, log), st.leads, cfg, log)
	notificationModule.RegisterHandlers(eventBus)

	leadsModule := leads.NewModule(leads.Deps{
		Store:     st.leads,
		EventBus:  eventBus,
		Uploader:  uploader,
		Validator: val,
		Config:    cfg,
		Location:  location,
		Metrics:   m,
		Logger:    log,
	})

	clientsModule := clients.NewModule(clients.Deps{
		Store:     st.clients,
		Leads:     adapters.NewClientsLeadGateway(st.leads, leadsModule.Lifecycle()),
		Enqueuer:  adapters.NewForwardQueue(forwardScheduler),
		Validator: val,
		Metrics:   m,
		Logger:    log,
	})
	leadsModule.ManagementService().SetAPILogReader(adapters.NewLeadAPILogReader(clientsModule.Service()))

	reportingModule := reporting.NewModule(reporting.Deps{
		Store:     st.leads,
		Resolver:  leadsModule.Resolver(),
		Location:  location,
		Cache:     reportCache,
		EventBus:  eventBus,
		Validator: val,
		Metrics:   m,
		Logger:    log,
	})

	vendorModule := vendorapi.NewModule(vendorapi.Deps{
		Fields:    fields,
		Questions: st.leads,
		Creator:   leadsModule.Lifecycle(),
		Logs:      st.vendor,
		Secret:    cfg.GetVendorAPISecret(),
		PerMinute: cfg.GetVendorAPIRatePerMinute(),
		Validator: val,
		Logger:    log,
	})

	app := &apphttp.App{
		Config:   cfg,
		Logger:   log,
		Health:   st.health,
		EventBus: eventBus,
		Metrics:  m,
		Modules: []apphttp.Module{
			leadsModule,
			clientsModule,
			reportingModule,
			vendorModule,
		},
	}

	engine := router.New(app)
	srv := &http.Server{
		Addr:              cfg.GetHTTPAddr(),
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	srvErr := make(chan error, 1)
	go func() {
		log.Info("server listening", "addr", cfg.HTTPAddr)
		srvErr <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		log.Info("shutdown signal received, gracefully shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error("server shutdown failed", "error", err)
		}
		eventBus.Wait()
	case err := <-srvErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", "error", err)
			panic("server error: " + err.Error())
		}
	}
}

// initStores connects to PostgreSQL, or builds seeded in-memory stores when
// DATABASE_URL is unset.
func initStores(ctx context.Context, cfg *config.Config, log *logger.Logger) (stores, func()) {
	if cfg.IsInMemory() {
		leadStore := leadsrepo.NewMemoryStore()
		clientStore := clientsrepo.NewMemoryStore()
		seedMemory(leadStore, clientStore, log)
		log.Warn("DATABASE_URL not configured; running on in-memory stores")
		return stores{leads: leadStore, clients: clientStore, vendor: vendorapi.NewMemoryStore()}, func() {}
	}

	var pool *pgxpool.Pool
	if err := withRetry(ctx, log, "database connection", 5, 2*time.Second, func() error {
		p, err := db.NewPool(ctx, cfg)
		if err != nil {
			return err
		}
		pool = p
		return nil
	}); err != nil {
		log.Error("failed to connect to database", "error", err)
		panic("failed to connect to database: " + err.Error())
	}
	log.Info("database connection established")

	if err := withRetry(ctx, log, "database migrations", 5, 2*time.Second, func() error {
		return db.RunMigrations(ctx, pool, migrations.FS)
	}); err != nil {
		log.Error("failed to run database migrations", "error", err)
		panic("failed to run database migrations: " + err.Error())
	}
	log.Info("database migrations complete")

	return stores{
		leads:   leadsrepo.New(pool),
		clients: clientsrepo.New(pool),
		vendor:  vendorapi.NewRepository(pool),
		health:  db.NewPoolPinger(pool),
	}, pool.Close
}

func initMediaUploader(ctx context.Context, cfg *config.Config, log *logger.Logger) *storage.MediaUploader {
	if !cfg.IsMinIOEnabled() {
		log.Warn("MINIO_ENDPOINT not configured; media uploads disabled")
		return nil
	}

	store, err := storage.NewMinIOStore(cfg)
	if err != nil {
		log.Error("failed to initialize object storage", "error", err)
		panic("failed to initialize object storage: " + err.Error())
	}
	if err := withRetry(ctx, log, "ensure lead media bucket", 5, 2*time.Second, func() error {
		return store.EnsureBucket(ctx)
	}); err != nil {
		log.Error("failed to ensure storage bucket exists", "error", err, "bucket", store.Bucket())
		panic("failed to ensure storage bucket exists: " + err.Error())
	}
	log.Info("object storage initialized", "bucket", store.Bucket())
	return storage.NewMediaUploader(store, cfg.GetMediaPublicBaseURL(), cfg.GetMinIOMaxFileSize())
}

func initReportCache(cfg config.ReportingConfig, log *logger.Logger) *cache.RedisCache {
	client, err := cache.NewClient(cfg)
	if err != nil {
		log.Error("failed to initialize report cache", "error", err)
		return nil
	}
	if client == nil {
		log.Warn("REDIS_URL not configured; report cache disabled")
		return nil
	}
	return cache.New(client, cfg.GetReportCacheTTL())
}

func initForwardScheduler(cfg config.SchedulerConfig, log *logger.Logger) (scheduler.ForwardScheduler, func()) {
	if cfg.GetRedisURL() == "" {
		log.Warn("REDIS_URL not configured; deferred forwarding disabled")
		return nil, nil
	}

	client, err := scheduler.NewClient(cfg)
	if err != nil {
		log.Error("failed to initialize forward scheduler client", "error", err)
		return nil, nil
	}

	return client, func() {
		_ = client.Close()
	}
}

func initEmailSender(cfg config.EmailConfig, log *logger.Logger) email.Sender {
	if !cfg.IsEmailEnabled() {
		log.Warn("SMTP not configured; notification email disabled")
		return email.NoopSender{}
	}
	return email.NewSMTPSender(cfg)
}

func withRetry(ctx context.Context, log *logger.Logger, name string, attempts int, baseDelay time.Duration, fn func() error) error {
	if attempts < 1 {
		return fmt.Errorf("%s: invalid retry attempts", name)
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err := fn(); err == nil {
			return nil
		} else {
			lastErr = err
			log.Warn("retryable operation failed", "operation", name, "attempt", attempt, "error", err)
		}

		if attempt < attempts {
			delay := time.Duration(attempt*attempt) * baseDelay
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
		}
	}

	return errors.New(name + ": " + lastErr.Error())
}
