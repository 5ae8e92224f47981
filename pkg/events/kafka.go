package events

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/segmentio/kafka-go/compress"

	"voyageiq/pkg/logger"
)

const (
	defaultMaxAttempts  = 3
	defaultBatchTimeout = 10 * time.Millisecond
)

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Middleware intercepts a publish. It must call next to deliver the message.
type Middleware func(ctx context.Context, msg kafka.Message, next func(context.Context, kafka.Message) error) error

// KafkaPublisher writes events to a single topic keyed by resource id, so all
// changes to one document land on the same partition in order.
type KafkaPublisher struct {
	writer     messageWriter
	topic      string
	source     string
	middleware []Middleware
	closed     bool
	mu         sync.RWMutex
}

func NewKafkaPublisher(brokers []string, topic, source string, log *logger.Logger) (*KafkaPublisher, error) {
	if len(brokers) == 0 {
		return nil, fmt.Errorf("at least one broker is required")
	}
	if topic == "" {
		return nil, fmt.Errorf("topic cannot be empty")
	}

	writer := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireAll,
		Compression:  compress.Snappy,
		MaxAttempts:  defaultMaxAttempts,
		BatchTimeout: defaultBatchTimeout,
		Logger:       kafka.LoggerFunc(func(string, ...any) {}),
		ErrorLogger: kafka.LoggerFunc(func(msg string, args ...any) {
			log.Error(fmt.Sprintf(msg, args...), "component", "kafka_writer", "topic", topic)
		}),
	}
	return newKafkaPublisher(writer, topic, source), nil
}

func newKafkaPublisher(w messageWriter, topic, source string) *KafkaPublisher {
	return &KafkaPublisher{
		writer: w,
		topic:  topic,
		source: source,
	}
}

func (p *KafkaPublisher) Use(m Middleware) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.middleware = append(p.middleware, m)
}

func (p *KafkaPublisher) Publish(ctx context.Context, e Event) error {
	p.mu.RLock()
	closed := p.closed
	chain := p.middleware
	p.mu.RUnlock()
	if closed {
		return ErrPublisherClosed
	}
	if e.ResourceID == "" {
		return ErrEmptyKey
	}

	msg, err := p.message(e)
	if err != nil {
		return err
	}

	handler := func(ctx context.Context, m kafka.Message) error {
		return p.writer.WriteMessages(ctx, m)
	}
	for i := len(chain) - 1; i >= 0; i-- {
		mw, next := chain[i], handler
		handler = func(ctx context.Context, m kafka.Message) error {
			return mw(ctx, m, next)
		}
	}
	return handler(ctx, msg)
}

func (p *KafkaPublisher) message(e Event) (kafka.Message, error) {
	value, err := json.Marshal(e)
	if err != nil {
		return kafka.Message{}, fmt.Errorf("failed to encode event %s: %w", e.Type, err)
	}

	headers := []kafka.Header{
		{Key: HeaderEventID, Value: []byte(e.ID)},
		{Key: HeaderEventType, Value: []byte(e.Type)},
		{Key: HeaderSource, Value: []byte(p.source)},
		{Key: HeaderTimestamp, Value: []byte(e.OccurredAt.Format(time.RFC3339))},
	}
	if e.RequestID != "" {
		headers = append(headers, kafka.Header{Key: HeaderRequestID, Value: []byte(e.RequestID)})
	}

	return kafka.Message{
		Key:     []byte(e.ResourceID),
		Value:   value,
		Headers: headers,
		Time:    e.OccurredAt,
	}, nil
}

func (p *KafkaPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return nil
	}
	p.closed = true
	return p.writer.Close()
}

// Header returns the value of the named header, or "" when absent.
func Header(msg kafka.Message, key string) string {
	for _, h := range msg.Headers {
		if h.Key == key {
			return string(h.Value)
		}
	}
	return ""
}

// LoggingMiddleware logs every publish with its outcome and duration.
func LoggingMiddleware(log *logger.Logger) Middleware {
	return func(ctx context.Context, msg kafka.Message, next func(context.Context, kafka.Message) error) error {
		start := time.Now()
		err := next(ctx, msg)
		attrs := []any{
			"event_id", Header(msg, HeaderEventID),
			"event_type", Header(msg, HeaderEventType),
			"key", string(msg.Key),
			"duration", time.Since(start),
		}
		if err != nil {
			log.Warn("Failed to publish event", append(attrs, "error", err)...)
			return err
		}
		log.Debug("Published event", attrs...)
		return nil
	}
}
