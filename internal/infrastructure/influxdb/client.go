package influxdb

import (
	"context"
	"fmt"
	"sync"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"

	"github.com/nerrad567/sdi-core/internal/infrastructure/config"
)

const (
	connectTimeout = 10 * time.Second
	pingTimeout    = 5 * time.Second

	fallbackBatchSize     = 100
	fallbackFlushInterval = 10 * time.Second
)

// Client queues chassis telemetry points and lets the influx write API
// send them in batches. The zero value is a closed client on which every
// write is dropped.
type Client struct {
	influx influxdb2.Client
	writer api.WriteAPI

	mu      sync.RWMutex
	open    bool
	onError func(error)
}

// batchOptions builds the write API options from cfg. Non-positive batch
// size or flush interval select the fallbacks.
func batchOptions(cfg config.InfluxDBConfig) *influxdb2.Options {
	size := uint(fallbackBatchSize)
	if cfg.BatchSize > 0 {
		size = uint(cfg.BatchSize) // #nosec G115 -- checked positive
	}
	flush := fallbackFlushInterval
	if cfg.FlushInterval > 0 {
		flush = time.Duration(cfg.FlushInterval) * time.Second
	}
	return influxdb2.DefaultOptions().
		SetBatchSize(size).
		SetFlushInterval(uint(flush.Milliseconds())) // #nosec G115 -- positive duration
}

// Connect pings the server at cfg.URL and, if it answers healthy, starts
// the write API for cfg.Org and cfg.Bucket.
func Connect(cfg config.InfluxDBConfig) (*Client, error) {
	if !cfg.Enabled {
		return nil, ErrDisabled
	}

	influx := influxdb2.NewClientWithOptions(cfg.URL, cfg.Token, batchOptions(cfg))
	if err := ping(context.Background(), influx, connectTimeout); err != nil {
		influx.Close()
		return nil, fmt.Errorf("%w: %w", ErrConnectionFailed, err)
	}

	c := &Client{
		influx: influx,
		writer: influx.WriteAPI(cfg.Org, cfg.Bucket),
		open:   true,
	}
	go c.forwardErrors(c.writer.Errors())
	return c, nil
}

func ping(ctx context.Context, influx influxdb2.Client, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	ok, err := influx.Ping(ctx)
	switch {
	case err != nil:
		return fmt.Errorf("ping: %w", err)
	case !ok:
		return fmt.Errorf("ping: server reports unhealthy")
	}
	return nil
}

func (c *Client) forwardErrors(errs <-chan error) {
	for err := range errs {
		c.mu.RLock()
		fn := c.onError
		c.mu.RUnlock()
		if fn != nil {
			fn(fmt.Errorf("%w: %w", ErrWriteFailed, err))
		}
	}
}

// Close flushes queued points and releases the client.
func (c *Client) Close() error {
	c.mu.Lock()
	wasOpen := c.open
	c.open = false
	c.mu.Unlock()

	if !wasOpen {
		return nil
	}
	if c.writer != nil {
		c.writer.Flush()
	}
	if c.influx != nil {
		c.influx.Close()
	}
	return nil
}

// HealthCheck pings the server.
func (c *Client) HealthCheck(ctx context.Context) error {
	if !c.IsConnected() {
		return ErrNotConnected
	}
	if err := ping(ctx, c.influx, pingTimeout); err != nil {
		return fmt.Errorf("influxdb health check: %w", err)
	}
	return nil
}

// IsConnected reports whether the client is open.
func (c *Client) IsConnected() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.open
}

// SetOnError registers fn for batch failures reported by the write API.
// Errors passed to fn match ErrWriteFailed.
func (c *Client) SetOnError(fn func(err error)) {
	c.mu.Lock()
	c.onError = fn
	c.mu.Unlock()
}

// Flush sends all queued points now. It does nothing on a closed client.
func (c *Client) Flush() {
	if c.IsConnected() {
		c.writer.Flush()
	}
}
