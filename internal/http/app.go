// Package http holds the contract between the router and the domain modules.
package http

import (
	"context"

	"leadportal_backend/internal/events"
	"leadportal_backend/internal/metrics"
	"leadportal_backend/platform/config"
	"leadportal_backend/platform/logger"
)

// RouterConfig is the configuration the router reads.
type RouterConfig interface {
	config.HTTPConfig
	config.JWTConfig
}

// HealthChecker backs the readiness endpoint.
type HealthChecker interface {
	Ping(ctx context.Context) error
}

// App is assembled by the composition root and handed to the router.
type App struct {
	Config RouterConfig
	Logger *logger.Logger
	// Health is nil in memory mode.
	Health   HealthChecker
	EventBus events.Bus
	// Metrics is optional.
	Metrics *metrics.Metrics
	Modules []Module
}
