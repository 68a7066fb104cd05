package telemetry

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/nerrad567/sdi-core/internal/infrastructure/mqtt"
)

const (
	defaultInterval = 30 * time.Second
	commandQueueLen = 16
)

// MessagePublisher publishes retained messages. *mqtt.Client satisfies it.
type MessagePublisher interface {
	PublishRetained(topic string, payload []byte) error
}

// MetricsWriter queues time-series points. *influxdb.Client satisfies it.
type MetricsWriter interface {
	WriteEntity(entity, entityType string, present, fault bool, ts time.Time)
	WriteTemperature(entity, sensor string, celsius int, alert bool, ts time.Time)
	WriteFan(entity, fan string, rpm uint64, fault bool, ts time.Time)
	WriteMedia(entity, port string, celsius, volts float64, ts time.Time)
	WriteMediaChannel(entity, port string, channel int, rxMW, biasMA, txMW float64, ts time.Time)
}

// ServiceOptions configures a Service. Publisher, Metrics and Controller
// are optional; a service with none of them only keeps the last snapshot.
type ServiceOptions struct {
	Collector  *Collector
	Encoder    *Encoder
	Topics     mqtt.Topics
	Publisher  MessagePublisher
	Metrics    MetricsWriter
	Controller *Controller
	Interval   time.Duration
}

type message struct {
	topic   string
	payload []byte
}

// Service collects snapshots on a fixed interval and fans them out to the
// configured sinks. Commands queued with HandleMessage run on the Run
// goroutine between ticks, so hardware is never touched concurrently.
//
// Thread Safety:
//   - Run and Tick must not be called concurrently.
//   - HandleMessage and Last are safe to call from any goroutine.
type Service struct {
	collector  *Collector
	encoder    *Encoder
	topics     mqtt.Topics
	publisher  MessagePublisher
	metrics    MetricsWriter
	controller *Controller
	commands   chan message
	interval   time.Duration
	logger     Logger

	mu   sync.RWMutex
	last *Snapshot
}

// NewService validates opts and returns a Service.
func NewService(opts ServiceOptions) (*Service, error) {
	if opts.Collector == nil {
		return nil, errors.New("telemetry: collector is required")
	}
	enc := opts.Encoder
	if enc == nil {
		enc = &Encoder{format: FormatJSON}
	}
	interval := opts.Interval
	if interval <= 0 {
		interval = defaultInterval
	}
	return &Service{
		collector:  opts.Collector,
		encoder:    enc,
		topics:     opts.Topics,
		publisher:  opts.Publisher,
		metrics:    opts.Metrics,
		controller: opts.Controller,
		commands:   make(chan message, commandQueueLen),
		interval:   interval,
		logger:     noopLogger{},
	}, nil
}

// SetLogger sets the logger of the service and its collector.
func (s *Service) SetLogger(logger Logger) {
	if logger == nil {
		logger = noopLogger{}
	}
	s.logger = logger
	s.collector.SetLogger(logger)
	if s.controller != nil {
		s.controller.SetLogger(logger)
	}
}

// HandleMessage queues a command message for the Run goroutine. Its
// signature matches mqtt.MessageHandler.
func (s *Service) HandleMessage(topic string, payload []byte) error {
	if s.controller == nil {
		return fmt.Errorf("%w: commands are disabled", ErrInvalidCommand)
	}
	select {
	case s.commands <- message{topic: topic, payload: append([]byte(nil), payload...)}:
		return nil
	default:
		return ErrQueueFull
	}
}

// Last returns the most recent snapshot, or nil before the first tick.
func (s *Service) Last() *Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.last
}

// Run ticks immediately and then once per interval until ctx is done.
func (s *Service) Run(ctx context.Context) error {
	s.logger.Info("telemetry started", "interval", s.interval.String(), "format", s.encoder.Format())

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		if _, err := s.Tick(ctx); err != nil && ctx.Err() == nil {
			s.logger.Error("telemetry tick failed", "error", err)
		}

		if s.wait(ctx, ticker.C) {
			s.logger.Info("telemetry stopped")
			return nil
		}
	}
}

// wait runs queued commands until the next tick. It reports whether ctx
// is done.
func (s *Service) wait(ctx context.Context, tick <-chan time.Time) bool {
	for {
		select {
		case <-ctx.Done():
			return true
		case m := <-s.commands:
			if err := s.controller.HandleMessage(m.topic, m.payload); err != nil {
				s.logger.Warn("command failed", "topic", m.topic, "error", err)
			}
		case <-tick:
			return false
		}
	}
}

// Tick collects one snapshot and hands it to every sink. Publish failures
// are returned joined; the snapshot is still recorded.
func (s *Service) Tick(ctx context.Context) (*Snapshot, error) {
	snap, err := s.collector.Collect(ctx)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.last = snap
	s.mu.Unlock()

	if s.metrics != nil {
		s.WriteMetrics(snap)
	}
	if s.publisher != nil {
		if err := s.Publish(snap); err != nil {
			return snap, err
		}
	}
	s.logger.Debug("telemetry tick", "snapshot", snap.ID, "entities", len(snap.Entities))
	return snap, nil
}

// Publish sends one retained message per entity and one per resource.
func (s *Service) Publish(snap *Snapshot) error {
	var errs []error
	publish := func(topic string, v any) {
		payload, err := s.encoder.Marshal(v)
		if err == nil {
			err = s.publisher.PublishRetained(topic, payload)
		}
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", topic, err))
		}
	}

	for i := range snap.Entities {
		e := &snap.Entities[i]
		publish(s.topics.Entity(e.Name), e)
		for _, t := range e.Temperatures {
			publish(s.topics.Resource(e.Name, t.Alias), t)
		}
		for _, f := range e.Fans {
			publish(s.topics.Resource(e.Name, f.Alias), f)
		}
		for _, m := range e.Media {
			publish(s.topics.Resource(e.Name, m.Alias), m)
		}
	}
	return errors.Join(errs...)
}

// WriteMetrics queues one point per entity, sensor, fan, module and channel.
func (s *Service) WriteMetrics(snap *Snapshot) {
	ts := snap.Timestamp
	for _, e := range snap.Entities {
		s.metrics.WriteEntity(e.Name, e.Type, e.Present, e.Fault != nil && *e.Fault, ts)
		for _, t := range e.Temperatures {
			s.metrics.WriteTemperature(e.Name, t.Alias, t.Celsius, t.Alert, ts)
		}
		for _, f := range e.Fans {
			s.metrics.WriteFan(e.Name, f.Alias, f.RPM, f.Fault, ts)
		}
		for _, m := range e.Media {
			if m.Speed == "" {
				continue
			}
			s.metrics.WriteMedia(e.Name, m.Alias, m.Celsius, m.Volts, ts)
			for _, ch := range m.Channels {
				var tx float64
				if ch.TxPowerMW != nil {
					tx = *ch.TxPowerMW
				}
				s.metrics.WriteMediaChannel(e.Name, m.Alias, ch.Channel, ch.RxPowerMW, ch.TxBiasMA, tx, ts)
			}
		}
	}
}
