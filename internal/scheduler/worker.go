package scheduler

import (
	"context"
	"fmt"

	"leadportal_backend/platform/apperr"
	"leadportal_backend/platform/config"
	"leadportal_backend/platform/logger"

	"github.com/hibiken/asynq"
)

// LeadForwarder runs one deferred forward.
type LeadForwarder interface {
	ForwardLead(ctx context.Context, payload LeadForwardPayload) error
}

type Worker struct {
	server *asynq.Server
	mux    *asynq.ServeMux
	log    *logger.Logger
}

func NewWorker(cfg config.SchedulerConfig, forwarder LeadForwarder, log *logger.Logger) (*Worker, error) {
	redisURL := cfg.GetRedisURL()
	if redisURL == "" {
		return nil, fmt.Errorf("redis url not configured")
	}

	opt, err := redisClientOpt(redisURL, cfg.GetRedisTLSInsecure())
	if err != nil {
		return nil, err
	}

	concurrency := cfg.GetAsynqConcurrency()
	if concurrency < 1 {
		concurrency = 10
	}

	server := asynq.NewServer(opt, asynq.Config{
		Concurrency: concurrency,
		Queues: map[string]int{
			queueName(cfg): 1,
		},
		Logger: asynqLogger{log: log},
	})

	mux := asynq.NewServeMux()
	h := &forwardHandler{forwarder: forwarder, log: log}
	mux.HandleFunc(TaskLeadForward, h.handle)

	return &Worker{server: server, mux: mux, log: log}, nil
}

func (w *Worker) Run(ctx context.Context) {
	if w == nil || w.server == nil {
		return
	}

	go func() {
		<-ctx.Done()
		w.server.Shutdown()
	}()

	if err := w.server.Run(w.mux); err != nil {
		w.log.Error("scheduler worker stopped", "error", err)
	}
}

type forwardHandler struct {
	forwarder LeadForwarder
	log       *logger.Logger
}

// handle skips retries for failures another attempt cannot fix: a malformed
// payload, a lead or client that is gone, or a lead outside the actor's scope.
func (h *forwardHandler) handle(ctx context.Context, task *asynq.Task) error {
	payload, err := ParseLeadForwardPayload(task)
	if err != nil {
		h.log.Error("invalid lead forward task", "error", err)
		return fmt.Errorf("%v: %w", err, asynq.SkipRetry)
	}

	err = h.forwarder.ForwardLead(ctx, payload)
	if err == nil {
		return nil
	}

	switch apperr.GetKind(err) {
	case apperr.KindValidation, apperr.KindNotFound, apperr.KindForbidden:
		h.log.Warn("lead forward dropped", "lead_id", payload.LeadID, "client_id", payload.ClientID, "error", err)
		return fmt.Errorf("%v: %w", err, asynq.SkipRetry)
	}
	h.log.Warn("lead forward will retry", "lead_id", payload.LeadID, "client_id", payload.ClientID, "error", err)
	return err
}

// asynqLogger routes asynq's own logging through the application logger.
type asynqLogger struct {
	log *logger.Logger
}

func (l asynqLogger) Debug(args ...interface{}) { l.log.Debug(fmt.Sprint(args...)) }
func (l asynqLogger) Info(args ...interface{})  { l.log.Info(fmt.Sprint(args...)) }
func (l asynqLogger) Warn(args ...interface{})  { l.log.Warn(fmt.Sprint(args...)) }
func (l asynqLogger) Error(args ...interface{}) { l.log.Error(fmt.Sprint(args...)) }
func (l asynqLogger) Fatal(args ...interface{}) { l.log.Error(fmt.Sprint(args...)) }
