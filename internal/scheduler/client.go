package scheduler

import (
	"context"
	"crypto/tls"
	"fmt"
	"time"

	"leadportal_backend/platform/config"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"
)

const (
	forwardMaxRetry = 5
	forwardTimeout  = time.Minute
)

// ForwardScheduler queues deferred lead forwards.
type ForwardScheduler interface {
	EnqueueLeadForward(ctx context.Context, payload LeadForwardPayload) error
}

// Client enqueues tasks on the configured asynq queue.
type Client struct {
	client *asynq.Client
	queue  string
}

// NewClient connects to REDIS_URL. It fails when no url is configured.
func NewClient(cfg config.SchedulerConfig) (*Client, error) {
	if cfg.GetRedisURL() == "" {
		return nil, fmt.Errorf("redis url not configured")
	}
	opt, err := redisClientOpt(cfg.GetRedisURL(), cfg.GetRedisTLSInsecure())
	if err != nil {
		return nil, err
	}
	return &Client{client: asynq.NewClient(opt), queue: queueName(cfg)}, nil
}

// Close releases the redis connection. It is safe on a nil client.
func (c *Client) Close() error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Close()
}

// EnqueueLeadForward queues one forward with the retry budget and timeout
// the worker honours.
func (c *Client) EnqueueLeadForward(ctx context.Context, payload LeadForwardPayload) error {
	if c == nil || c.client == nil {
		return fmt.Errorf("scheduler client not configured")
	}
	task, err := NewLeadForwardTask(payload)
	if err != nil {
		return err
	}
	if _, err := c.client.EnqueueContext(ctx, task,
		asynq.Queue(c.queue),
		asynq.MaxRetry(forwardMaxRetry),
		asynq.Timeout(forwardTimeout),
	); err != nil {
		return fmt.Errorf("enqueue %s: %w", TaskLeadForward, err)
	}
	return nil
}

func queueName(cfg config.SchedulerConfig) string {
	if q := cfg.GetAsynqQueueName(); q != "" {
		return q
	}
	return "default"
}

func redisClientOpt(redisURL string, tlsInsecure bool) (asynq.RedisClientOpt, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return asynq.RedisClientOpt{}, err
	}

	// rediss:// urls carry a TLS config; REDIS_TLS_INSECURE relaxes it or
	// forces TLS on a plain url.
	tlsConfig := opt.TLSConfig
	if tlsInsecure {
		if tlsConfig == nil {
			tlsConfig = &tls.Config{}
		} else {
			tlsConfig = tlsConfig.Clone()
		}
		tlsConfig.InsecureSkipVerify = true
	}

	return asynq.RedisClientOpt{
		Addr:      opt.Addr,
		Username:  opt.Username,
		Password:  opt.Password,
		DB:        opt.DB,
		TLSConfig: tlsConfig,
	}, nil
}
