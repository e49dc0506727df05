package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"leadportal_backend/internal/adapters"
	"leadportal_backend/internal/clients"
	clientsrepo "leadportal_backend/internal/clients/repository"
	"leadportal_backend/internal/email"
	"leadportal_backend/internal/events"
	"leadportal_backend/internal/leads"
	leadsrepo "leadportal_backend/internal/leads/repository"
	"leadportal_backend/internal/notification"
	"leadportal_backend/internal/scheduler"
	"leadportal_backend/platform/config"
	"leadportal_backend/platform/db"
	"leadportal_backend/platform/logger"
	"leadportal_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	log := logger.New(cfg.Env)
	log.Info("starting worker", "env", cfg.Env)

	if cfg.IsInMemory() {
		panic("worker requires DATABASE_URL")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

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
	defer pool.Close()

	eventBus := events.NewInMemoryBus(log)
	leadStore := leadsrepo.New(pool)

	var sender email.Sender = email.NoopSender{}
	if cfg.IsEmailEnabled() {
		sender = email.NewSMTPSender(cfg)
	}
	notification.New(sender, leadStore, cfg, log).RegisterHandlers(eventBus)

	val := validator.New()

	// Worker-side forwarding wiring (no HTTP handlers required).
	leadsModule := leads.NewModule(leads.Deps{
		Store:     leadStore,
		EventBus:  eventBus,
		Validator: val,
		Config:    cfg,
		Location:  time.UTC,
		Logger:    log,
	})
	clientsModule := clients.NewModule(clients.Deps{
		Store:     clientsrepo.New(pool),
		Leads:     adapters.NewClientsLeadGateway(leadStore, leadsModule.Lifecycle()),
		Validator: val,
		Logger:    log,
	})

	worker, err := scheduler.NewWorker(cfg, adapters.NewForwardTaskRunner(clientsModule.Service()), log)
	if err != nil {
		log.Error("failed to initialize scheduler worker", "error", err)
		panic("failed to initialize scheduler worker: " + err.Error())
	}

	worker.Run(ctx)
	eventBus.Wait()
}

func withRetry(ctx context.Context, log *logger.Logger, name string, attempts int, baseDelay time.Duration, fn func() error) error {
	if attempts < 1 {
		return errors.New(name + ": invalid retry attempts")
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
