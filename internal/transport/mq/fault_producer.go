package mq

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

// EventType represents different types of events
type EventType string

const (
	EventTypeFaultClassified EventType = "classified"
)

// FaultEvent describes one classified request failure. Detail carries the
// low-level error text and is meant for the fault log only.
type FaultEvent struct {
	ID         string    `json:"id"`
	Type       EventType `json:"type"`
	Timestamp  time.Time `json:"timestamp"`
	Action     string    `json:"action"`
	StatusCode int       `json:"status_code"`
	Message    string    `json:"message"`
	Kind       string    `json:"kind"`
	Detail     string    `json:"detail,omitempty"`
	RequestID  string    `json:"request_id,omitempty"`
}

// NewFaultEvent creates a classified-fault event with a fresh ID
func NewFaultEvent(action string, statusCode int, message, kind, detail, requestID string) *FaultEvent {
	return &FaultEvent{
		ID:         generateEventID(),
		Type:       EventTypeFaultClassified,
		Timestamp:  time.Now().UTC(),
		Action:     action,
		StatusCode: statusCode,
		Message:    message,
		Kind:       kind,
		Detail:     detail,
		RequestID:  requestID,
	}
}

// FaultProducer defines the interface for publishing fault events
type FaultProducer interface {
	PublishFaultClassified(ctx context.Context, event *FaultEvent) error
	Close() error
}

// RabbitMQProducer implements FaultProducer using RabbitMQ
type RabbitMQProducer struct {
	connection    *amqp.Connection
	channel       *amqp.Channel
	exchangeName  string
	routingPrefix string
	source        string
	logger        *zap.Logger
}

// RabbitMQProducerConfig holds configuration for RabbitMQ producer
type RabbitMQProducerConfig struct {
	URL           string
	ExchangeName  string
	RoutingPrefix string
	Source        string
	Durable       bool
	AutoDelete    bool
}

// NewRabbitMQProducer creates a new RabbitMQ producer
func NewRabbitMQProducer(config *RabbitMQProducerConfig, logger *zap.Logger) (*RabbitMQProducer, error) {
	conn, err := amqp.Dial(config.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	err = ch.ExchangeDeclare(
		config.ExchangeName, // name
		"topic",             // type
		config.Durable,      // durable
		config.AutoDelete,   // auto-deleted
		false,               // internal
		false,               // no-wait
		nil,                 // arguments
	)
	if err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to declare exchange: %w", err)
	}

	producer := &RabbitMQProducer{
		connection:    conn,
		channel:       ch,
		exchangeName:  config.ExchangeName,
		routingPrefix: config.RoutingPrefix,
		source:        config.Source,
		logger:        logger,
	}

	go producer.handleConnectionClose()

	logger.Info("RabbitMQ producer initialized",
		zap.String("exchange", config.ExchangeName),
		zap.String("routing_prefix", config.RoutingPrefix),
	)

	return producer, nil
}

// PublishFaultClassified publishes a classified fault event
func (p *RabbitMQProducer) PublishFaultClassified(ctx context.Context, event *FaultEvent) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	routingKey := RoutingKey(p.routingPrefix, event.Type)
	publishing := amqp.Publishing{
		ContentType:   "application/json",
		DeliveryMode:  amqp.Persistent,
		MessageId:     event.ID,
		CorrelationId: event.RequestID,
		Timestamp:     event.Timestamp,
		Type:          string(event.Type),
		Headers: amqp.Table{
			"source":      p.source,
			"status_code": int32(event.StatusCode),
			"kind":        event.Kind,
		},
		Body: body,
	}

	publishCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	err = p.channel.PublishWithContext(
		publishCtx,
		p.exchangeName, // exchange
		routingKey,     // routing key
		false,          // mandatory
		false,          // immediate
		publishing,
	)
	if err != nil {
		p.logger.Error("Failed to publish event",
			zap.Error(err),
			zap.String("event_id", event.ID),
			zap.String("routing_key", routingKey),
		)
		return fmt.Errorf("failed to publish event: %w", err)
	}

	p.logger.Debug("Event published",
		zap.String("event_id", event.ID),
		zap.String("routing_key", routingKey),
		zap.Int("status_code", event.StatusCode),
	)
	return nil
}

// Close closes the producer connection
func (p *RabbitMQProducer) Close() error {
	var errs []error

	if p.channel != nil {
		if err := p.channel.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close channel: %w", err))
		}
	}

	if p.connection != nil {
		if err := p.connection.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close connection: %w", err))
		}
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	p.logger.Info("RabbitMQ producer closed successfully")
	return nil
}

func (p *RabbitMQProducer) handleConnectionClose() {
	closeError := <-p.connection.NotifyClose(make(chan *amqp.Error, 1))
	if closeError != nil {
		p.logger.Error("RabbitMQ connection closed unexpectedly", zap.Error(closeError))
	}
}

// MockProducer keeps published events in memory
type MockProducer struct {
	mu     sync.Mutex
	events []FaultEvent
	err    error
	logger *zap.Logger
}

// NewMockProducer creates a new mock producer
func NewMockProducer(logger *zap.Logger) *MockProducer {
	return &MockProducer{
		events: make([]FaultEvent, 0),
		logger: logger,
	}
}

// PublishFaultClassified records the event, or fails with the configured error
func (m *MockProducer) PublishFaultClassified(ctx context.Context, event *FaultEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.err != nil {
		return m.err
	}
	m.events = append(m.events, *event)
	m.logger.Debug("Mock: fault event published",
		zap.String("event_id", event.ID),
		zap.Int("status_code", event.StatusCode),
	)
	return nil
}

// FailWith makes subsequent publishes return err
func (m *MockProducer) FailWith(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// Close mock implementation
func (m *MockProducer) Close() error {
	m.logger.Info("Mock producer closed")
	return nil
}

// GetEvents returns a copy of all published events
func (m *MockProducer) GetEvents() []FaultEvent {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]FaultEvent(nil), m.events...)
}

// ClearEvents clears all published events
func (m *MockProducer) ClearEvents() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = m.events[:0]
}

// RoutingKey joins prefix and event type, e.g. "fault.classified"
func RoutingKey(prefix string, eventType EventType) string {
	if prefix == "" {
		return string(eventType)
	}
	return fmt.Sprintf("%s.%s", prefix, eventType)
}

func generateEventID() string {
	return "evt_" + uuid.NewString()
}
