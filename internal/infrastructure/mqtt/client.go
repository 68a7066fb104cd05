package mqtt

import (
	"context"
	"fmt"
	"sync"
	"time"

	pahomqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/nerrad567/sdi-core/internal/infrastructure/config"
)

// Client is a broker session for one sdid process. It publishes retained
// snapshots and routes control requests to registered handlers.
//
// All methods may be called concurrently. Routes survive reconnects: the
// broker session is clean, so every route is re-subscribed when paho
// reports a new connection.
type Client struct {
	paho   pahomqtt.Client
	topics Topics
	id     string
	qos    byte

	mu     sync.RWMutex
	online bool
	routes map[string]route
	hooks  hooks
	log    Logger
}

// Logger receives handler failures and connection loss. *logging.Logger
// and *slog.Logger both satisfy it.
type Logger interface {
	Error(msg string, args ...any)
	Warn(msg string, args ...any)
}

// MessageHandler processes one message received on a subscribed topic.
//
// paho calls handlers from its own goroutines. A returned error is logged;
// the message is acknowledged either way.
type MessageHandler func(topic string, payload []byte) error

type route struct {
	qos     byte
	handler MessageHandler
}

type hooks struct {
	up   func()
	down func(error)
}

// Connect opens a session with the broker described by cfg.
//
// The session announces itself as online on topics.SystemStatus() and
// leaves an offline will there for the broker to publish if the process
// dies.
func Connect(cfg config.MQTTConfig, topics Topics) (*Client, error) {
	c := &Client{
		topics: topics,
		id:     clientID(cfg.Broker.ClientID),
		qos:    byte(cfg.QoS),
		routes: make(map[string]route),
	}

	opts := buildClientOptions(cfg, c.id)
	configureLWT(opts, topics, c.id)
	opts.SetOnConnectHandler(func(pahomqtt.Client) { c.up() })
	opts.SetConnectionLostHandler(func(_ pahomqtt.Client, err error) { c.down(err) })

	c.paho = pahomqtt.NewClient(opts)
	if err := await(c.paho.Connect(), defaultConnectTimeout, ErrConnectionFailed); err != nil {
		return nil, err
	}

	// The connect handler is asynchronous; mark the session online here too.
	c.setOnline(true)
	return c, nil
}

// ClientID returns the id registered with the broker.
func (c *Client) ClientID() string { return c.id }

// Topics returns the topic builder of the session.
func (c *Client) Topics() Topics { return c.topics }

func (c *Client) setOnline(v bool) {
	c.mu.Lock()
	c.online = v
	c.mu.Unlock()
}

func (c *Client) up() {
	c.setOnline(true)

	c.mu.RLock()
	for topic, r := range c.routes {
		c.paho.Subscribe(topic, r.qos, c.deliver(r.handler))
	}
	cb := c.hooks.up
	c.mu.RUnlock()

	c.paho.Publish(c.topics.SystemStatus(), c.qos, true, buildStatusPayload("online", c.id, ""))
	if cb != nil {
		cb()
	}
}

func (c *Client) down(err error) {
	c.setOnline(false)

	c.mu.RLock()
	cb, log := c.hooks.down, c.log
	c.mu.RUnlock()

	if log != nil {
		log.Warn("broker connection lost", "error", err)
	}
	if cb != nil {
		cb(err)
	}
}

// Close announces a graceful shutdown and disconnects. It is a no-op on a
// client that never connected.
func (c *Client) Close() error {
	if c.paho == nil {
		return nil
	}
	if c.IsConnected() {
		bye := buildStatusPayload("offline", c.id, "graceful_shutdown")
		c.paho.Publish(c.topics.SystemStatus(), c.qos, true, bye).WaitTimeout(defaultPublishTimeout)
	}
	c.paho.Disconnect(defaultDisconnectQuiesce)
	c.setOnline(false)
	return nil
}

// HealthCheck reports ErrNotConnected while the session is down.
func (c *Client) HealthCheck(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("mqtt health check: %w", err)
	}
	if !c.IsConnected() {
		return ErrNotConnected
	}
	return nil
}

// IsConnected reports whether both the session and paho consider the
// connection up.
func (c *Client) IsConnected() bool {
	c.mu.RLock()
	online := c.online
	c.mu.RUnlock()
	return online && c.paho != nil && c.paho.IsConnected()
}

// SetOnConnect registers fn to run after every connect and reconnect.
func (c *Client) SetOnConnect(fn func()) {
	c.mu.Lock()
	c.hooks.up = fn
	c.mu.Unlock()
}

// SetOnDisconnect registers fn to run when the connection drops.
func (c *Client) SetOnDisconnect(fn func(err error)) {
	c.mu.Lock()
	c.hooks.down = fn
	c.mu.Unlock()
}

// SetLogger sets the logger for handler failures and connection loss.
func (c *Client) SetLogger(log Logger) {
	c.mu.Lock()
	c.log = log
	c.mu.Unlock()
}

func (c *Client) logger() Logger {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.log
}

func (c *Client) deliver(h MessageHandler) pahomqtt.MessageHandler {
	return func(_ pahomqtt.Client, msg pahomqtt.Message) {
		c.dispatch(h, msg.Topic(), msg.Payload())
	}
}

// dispatch runs h, logging its error and containing any panic so one bad
// request cannot stop paho's delivery goroutine.
func (c *Client) dispatch(h MessageHandler, topic string, payload []byte) {
	log := c.logger()
	defer func() {
		if r := recover(); r != nil && log != nil {
			log.Error("message handler panicked", "topic", topic, "panic", r)
		}
	}()
	if err := h(topic, payload); err != nil && log != nil {
		log.Warn("message handler failed", "topic", topic, "error", err)
	}
}

// await blocks on a paho token and wraps its outcome in sentinel.
func await(token pahomqtt.Token, timeout time.Duration, sentinel error) error {
	if !token.WaitTimeout(timeout) {
		return fmt.Errorf("%w: no broker response within %v", sentinel, timeout)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("%w: %w", sentinel, err)
	}
	return nil
}
