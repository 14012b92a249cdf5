package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/smallbiznis/descomplaca/internal/config"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// KafkaPublisher buffers envelopes in an inbox drained by one writer goroutine.
type KafkaPublisher struct {
	w       *kafka.Writer
	inbox   chan kafka.Message
	closeCh chan struct{}
	log     *zap.Logger
}

func NewKafkaPublisher(cfg config.KafkaConfig, log *zap.Logger) *KafkaPublisher {
	buf := cfg.Buffer
	if buf <= 0 {
		buf = 256
	}
	p := &KafkaPublisher{
		inbox:   make(chan kafka.Message, buf),
		closeCh: make(chan struct{}),
		log:     log.Named("events.kafka"),
	}
	p.w = &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Topic:        cfg.Topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireAll,
		Async:        true,
		Completion: func(messages []kafka.Message, err error) {
			if err != nil {
				p.log.Warn("kafka write failed", zap.Int("messages", len(messages)), zap.Error(err))
			}
		},
	}
	return p
}

func (p *KafkaPublisher) Start() {
	go func() {
		defer close(p.closeCh)
		for m := range p.inbox {
			if err := p.w.WriteMessages(context.Background(), m); err != nil {
				p.log.Warn("kafka enqueue failed", zap.ByteString("key", m.Key), zap.Error(err))
			}
		}
		if err := p.w.Close(); err != nil {
			p.log.Warn("kafka writer close", zap.Error(err))
		}
	}()
}

// Stop flushes the inbox and waits for the writer to close.
func (p *KafkaPublisher) Stop(ctx context.Context) error {
	close(p.inbox)
	select {
	case <-p.closeCh:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Publish drops the event when the inbox is full rather than stall a request.
func (p *KafkaPublisher) Publish(_ context.Context, eventType string, orderID int64, payload any) {
	env, err := NewEnvelope(eventType, orderID, payload)
	if err != nil {
		p.log.Warn("event encode failed", zap.String("event_type", eventType), zap.Error(err))
		return
	}
	value, err := json.Marshal(env)
	if err != nil {
		p.log.Warn("event encode failed", zap.String("event_type", eventType), zap.Error(err))
		return
	}
	msg := kafka.Message{
		Key:     []byte(env.OrderID),
		Value:   value,
		Time:    time.Now(),
		Headers: []kafka.Header{{Key: "event_type", Value: []byte(eventType)}},
	}
	select {
	case p.inbox <- msg:
	default:
		p.log.Warn("event dropped, inbox full", zap.String("event_type", eventType), zap.String("order_id", env.OrderID))
	}
}

var Module = fx.Module("events",
	fx.Provide(NewPublisher),
)

// NewPublisher returns a Kafka publisher when brokers are configured and a
// no-op publisher otherwise.
func NewPublisher(lc fx.Lifecycle, cfg config.Config, log *zap.Logger) Publisher {
	if !cfg.Kafka.Enabled() {
		log.Info("kafka disabled, events are not published")
		return NoopPublisher{}
	}
	p := NewKafkaPublisher(cfg.Kafka, log)
	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			p.Start()
			return nil
		},
		OnStop: p.Stop,
	})
	return p
}
