// Package kafka publishes cache change events to a kafka topic with
// segmentio/kafka-go. Messages are keyed by category so the changes of one
// category stay ordered within a partition.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/kbukum/govkit/events"
	"github.com/kbukum/govkit/logger"
	"github.com/kbukum/govkit/resilience"
)

// Message headers.
const (
	HeaderEventType = "event-type"
	HeaderEventID   = "event-id"
)

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafkago.Message) error
	Close() error
}

// Publisher implements events.Sink on a kafka-go Writer.
type Publisher struct {
	writer  messageWriter
	cfg     Config
	log     *logger.Logger
	breaker *resilience.Breaker

	mu     sync.RWMutex
	closed bool
}

var _ events.Sink = (*Publisher)(nil)

// NewPublisher creates a Publisher for cfg.Topic.
func NewPublisher(cfg Config, log *logger.Logger) (*Publisher, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("kafka publisher config: %w", err)
	}
	if !cfg.Enabled {
		return nil, fmt.Errorf("kafka is disabled")
	}

	transport, err := newTransport(&cfg)
	if err != nil {
		return nil, fmt.Errorf("kafka publisher transport: %w", err)
	}

	log = log.WithComponent("events.kafka")
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.Brokers...),
		Topic:        cfg.Topic,
		Transport:    transport,
		Balancer:     &kafkago.Hash{},
		BatchSize:    cfg.BatchSize,
		BatchTimeout: parseDuration(cfg.BatchTimeout),
		RequiredAcks: kafkago.RequiredAcks(cfg.RequiredAcks),
		Compression:  resolveCompression(cfg.Compression),
		WriteTimeout: parseDuration(cfg.WriteTimeout),
		ErrorLogger: kafkago.LoggerFunc(func(msg string, args ...interface{}) {
			log.Error("writer: "+msg, map[string]interface{}{
				"args": fmt.Sprintf("%v", args),
			})
		}),
	}

	log.Info("kafka publisher initialized", map[string]interface{}{
		"brokers":     cfg.Brokers,
		"topic":       cfg.Topic,
		"compression": cfg.Compression,
	})
	return newPublisher(cfg, w, log), nil
}

func newPublisher(cfg Config, w messageWriter, log *logger.Logger) *Publisher {
	bc := resilience.DefaultBreakerConfig("events.kafka")
	bc.MaxFailures = cfg.BreakerFailures
	bc.Cooldown = cfg.BreakerCooldown
	bc.OnStateChange = func(name string, from, to resilience.State) {
		log.Warn("circuit state changed", logger.Fields("breaker", name, "from", from.String(), "to", to.String()))
	}
	return &Publisher{
		writer:  w,
		cfg:     cfg,
		log:     log,
		breaker: resilience.NewBreaker(bc),
	}
}

// Publish writes evs as one batch. While the circuit is open it fails
// immediately with resilience.ErrCircuitOpen.
func (p *Publisher) Publish(ctx context.Context, evs ...events.Event) error {
	if len(evs) == 0 {
		return nil
	}
	p.mu.RLock()
	closed := p.closed
	p.mu.RUnlock()
	if closed {
		return fmt.Errorf("publisher is closed")
	}

	msgs := make([]kafkago.Message, 0, len(evs))
	for _, e := range evs {
		value, err := json.Marshal(e)
		if err != nil {
			return fmt.Errorf("marshal event %s: %w", e.ID, err)
		}
		msgs = append(msgs, kafkago.Message{
			Key:   []byte(e.Category),
			Value: value,
			Time:  e.Timestamp,
			Headers: []kafkago.Header{
				{Key: HeaderEventType, Value: []byte(e.Type)},
				{Key: HeaderEventID, Value: []byte(e.ID)},
			},
		})
	}

	return p.breaker.Execute(func() error {
		retry := resilience.RetryConfig{
			MaxAttempts:    p.cfg.Retries,
			InitialBackoff: 100 * time.Millisecond,
			MaxBackoff:     2 * time.Second,
			BackoffFactor:  2,
		}
		err := resilience.RetryFunc(ctx, retry, func() error {
			return p.writer.WriteMessages(ctx, msgs...)
		})
		if err != nil {
			return fmt.Errorf("write after %d attempts: %w", p.cfg.Retries, err)
		}
		p.log.Debug("events published", logger.Fields(logger.FieldBatchSize, len(msgs)))
		return nil
	})
}

// Close flushes pending messages and closes the writer. Safe to call
// multiple times.
func (p *Publisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return nil
	}
	p.closed = true
	p.log.Info("closing kafka publisher")
	return p.writer.Close()
}
