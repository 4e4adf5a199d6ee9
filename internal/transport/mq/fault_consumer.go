package mq

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"shop-api/internal/fault"
	"shop-api/internal/service"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

// ErrUnknownEvent is returned for events of a type nobody handles
var ErrUnknownEvent = errors.New("unknown event type")

// FaultEventHandler defines the interface for handling fault events
type FaultEventHandler interface {
	HandleFaultClassified(ctx context.Context, event *FaultEvent) error
}

// FaultConsumer defines the interface for consuming fault events
type FaultConsumer interface {
	Start(ctx context.Context) error
	Stop() error
}

// RabbitMQConsumer implements FaultConsumer using RabbitMQ
type RabbitMQConsumer struct {
	connection   *amqp.Connection
	channel      *amqp.Channel
	exchangeName string
	queueName    string
	routingKeys  []string
	handler      FaultEventHandler
	logger       *zap.Logger
	stopChan     chan struct{}
	wg           sync.WaitGroup
	mu           sync.RWMutex
	isRunning    bool
}

// RabbitMQConsumerConfig holds configuration for RabbitMQ consumer
type RabbitMQConsumerConfig struct {
	URL           string
	ExchangeName  string
	QueueName     string
	RoutingKeys   []string
	Durable       bool
	AutoDelete    bool
	Exclusive     bool
	NoWait        bool
	PrefetchCount int
}

// NewRabbitMQConsumer creates a new RabbitMQ consumer
func NewRabbitMQConsumer(config *RabbitMQConsumerConfig, handler FaultEventHandler, logger *zap.Logger) (*RabbitMQConsumer, error) {
	conn, err := amqp.Dial(config.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	closeAll := func() {
		ch.Close()
		conn.Close()
	}

	if err := ch.Qos(config.PrefetchCount, 0, false); err != nil {
		closeAll()
		return nil, fmt.Errorf("failed to set QoS: %w", err)
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
		closeAll()
		return nil, fmt.Errorf("failed to declare exchange: %w", err)
	}

	queue, err := ch.QueueDeclare(
		config.QueueName,  // name
		config.Durable,    // durable
		config.AutoDelete, // delete when unused
		config.Exclusive,  // exclusive
		config.NoWait,     // no-wait
		nil,               // arguments
	)
	if err != nil {
		closeAll()
		return nil, fmt.Errorf("failed to declare queue: %w", err)
	}

	for _, routingKey := range config.RoutingKeys {
		if err := ch.QueueBind(queue.Name, routingKey, config.ExchangeName, false, nil); err != nil {
			closeAll()
			return nil, fmt.Errorf("failed to bind queue to routing key %s: %w", routingKey, err)
		}
	}

	consumer := newConsumer(handler, logger)
	consumer.connection = conn
	consumer.channel = ch
	consumer.exchangeName = config.ExchangeName
	consumer.queueName = queue.Name
	consumer.routingKeys = config.RoutingKeys

	logger.Info("RabbitMQ consumer initialized",
		zap.String("exchange", config.ExchangeName),
		zap.String("queue", queue.Name),
		zap.Strings("routing_keys", config.RoutingKeys),
	)

	return consumer, nil
}

func newConsumer(handler FaultEventHandler, logger *zap.Logger) *RabbitMQConsumer {
	return &RabbitMQConsumer{
		handler:  handler,
		logger:   logger,
		stopChan: make(chan struct{}),
	}
}

// Start starts consuming messages
func (c *RabbitMQConsumer) Start(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.isRunning {
		return errors.New("consumer is already running")
	}

	msgs, err := c.channel.Consume(
		c.queueName, // queue
		"",          // consumer
		false,       // auto-ack
		false,       // exclusive
		false,       // no-local
		false,       // no-wait
		nil,         // args
	)
	if err != nil {
		return fmt.Errorf("failed to register consumer: %w", err)
	}

	c.isRunning = true
	c.wg.Add(1)

	go func() {
		defer c.wg.Done()
		c.logger.Info("Starting message consumption")

		for {
			select {
			case <-c.stopChan:
				c.logger.Info("Stopping message consumption")
				return
			case <-ctx.Done():
				c.logger.Info("Context cancelled, stopping message consumption")
				return
			case delivery, ok := <-msgs:
				if !ok {
					c.logger.Warn("Message channel closed")
					return
				}
				c.handleMessage(ctx, delivery)
			}
		}
	}()

	go c.handleConnectionClose()

	c.logger.Info("Consumer started successfully")
	return nil
}

// Stop stops the consumer
func (c *RabbitMQConsumer) Stop() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.isRunning {
		return nil
	}

	c.logger.Info("Stopping consumer...")

	close(c.stopChan)
	c.wg.Wait()

	var errs []error
	if c.channel != nil {
		if err := c.channel.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close channel: %w", err))
		}
	}
	if c.connection != nil {
		if err := c.connection.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close connection: %w", err))
		}
	}

	c.isRunning = false

	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	c.logger.Info("Consumer stopped successfully")
	return nil
}

// handleMessage acks handled events, drops malformed or unknown ones and
// requeues those whose failure may go away on its own.
func (c *RabbitMQConsumer) handleMessage(ctx context.Context, delivery amqp.Delivery) {
	logger := c.logger.With(
		zap.String("message_id", delivery.MessageId),
		zap.String("routing_key", delivery.RoutingKey),
	)

	var event FaultEvent
	if err := json.Unmarshal(delivery.Body, &event); err != nil {
		logger.Error("Failed to unmarshal event", zap.Error(err))
		c.rejectMessage(delivery, false)
		return
	}

	err := dispatch(ctx, c.handler, &event)
	if err == nil {
		c.ackMessage(delivery)
		logger.Debug("Event processed", zap.String("event_id", event.ID))
		return
	}

	if errors.Is(err, ErrUnknownEvent) {
		logger.Warn("Unknown event type", zap.String("event_type", string(event.Type)))
		c.ackMessage(delivery)
		return
	}

	requeue := isRetryableError(err)
	logger.Error("Failed to handle event",
		zap.Error(err),
		zap.String("event_id", event.ID),
		zap.Bool("requeue", requeue),
	)
	c.rejectMessage(delivery, requeue && !delivery.Redelivered)
}

func (c *RabbitMQConsumer) ackMessage(delivery amqp.Delivery) {
	if err := delivery.Ack(false); err != nil {
		c.logger.Error("Failed to ack message", zap.Error(err), zap.String("message_id", delivery.MessageId))
	}
}

func (c *RabbitMQConsumer) rejectMessage(delivery amqp.Delivery, requeue bool) {
	if err := delivery.Reject(requeue); err != nil {
		c.logger.Error("Failed to reject message",
			zap.Error(err),
			zap.String("message_id", delivery.MessageId),
			zap.Bool("requeue", requeue),
		)
	}
}

func (c *RabbitMQConsumer) handleConnectionClose() {
	closeError := <-c.connection.NotifyClose(make(chan *amqp.Error, 1))
	if closeError != nil {
		c.logger.Error("RabbitMQ connection closed unexpectedly", zap.Error(closeError))
	}
}

func dispatch(ctx context.Context, handler FaultEventHandler, event *FaultEvent) error {
	switch event.Type {
	case EventTypeFaultClassified:
		return handler.HandleFaultClassified(ctx, event)
	default:
		return fmt.Errorf("%w: %s", ErrUnknownEvent, event.Type)
	}
}

// isRetryableError reports failures that the fault classifier attributes to
// an unreachable database. Constraint and format failures will not succeed
// on a second attempt.
func isRetryableError(err error) bool {
	return fault.ClassifyError(err).StatusCode == fault.StatusUnreachable
}

// FaultLogEventHandler stores classified fault events in the fault log
type FaultLogEventHandler struct {
	faultLogs service.FaultLogService
	logger    *zap.Logger
}

// NewFaultLogEventHandler creates a new fault log event handler
func NewFaultLogEventHandler(faultLogs service.FaultLogService, logger *zap.Logger) *FaultLogEventHandler {
	return &FaultLogEventHandler{faultLogs: faultLogs, logger: logger}
}

// HandleFaultClassified persists the event
func (h *FaultLogEventHandler) HandleFaultClassified(ctx context.Context, event *FaultEvent) error {
	entry, err := h.faultLogs.Record(ctx, service.FaultRecord{
		Action:     event.Action,
		StatusCode: event.StatusCode,
		Message:    event.Message,
		Kind:       event.Kind,
		Detail:     event.Detail,
		RequestID:  event.RequestID,
		OccurredAt: event.Timestamp,
	})
	if err != nil {
		return err
	}

	h.logger.Info("Fault logged",
		zap.String("event_id", event.ID),
		zap.Uint("log_id", entry.ID),
		zap.String("action", event.Action),
		zap.Int("status_code", event.StatusCode),
	)
	return nil
}

// MockConsumer feeds events to a handler without a broker
type MockConsumer struct {
	handler   FaultEventHandler
	logger    *zap.Logger
	mu        sync.Mutex
	isRunning bool
	events    []FaultEvent
}

// NewMockConsumer creates a new mock consumer
func NewMockConsumer(handler FaultEventHandler, logger *zap.Logger) *MockConsumer {
	return &MockConsumer{
		handler: handler,
		logger:  logger,
		events:  make([]FaultEvent, 0),
	}
}

// Start mock implementation
func (m *MockConsumer) Start(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.isRunning = true
	m.logger.Info("Mock consumer started")
	return nil
}

// Stop mock implementation
func (m *MockConsumer) Stop() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.isRunning = false
	m.logger.Info("Mock consumer stopped")
	return nil
}

// SimulateEvent delivers event to the handler as if it came from the queue
func (m *MockConsumer) SimulateEvent(ctx context.Context, event *FaultEvent) error {
	m.mu.Lock()
	m.events = append(m.events, *event)
	m.mu.Unlock()

	return dispatch(ctx, m.handler, event)
}

// GetProcessedEvents returns all delivered events
func (m *MockConsumer) GetProcessedEvents() []FaultEvent {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]FaultEvent(nil), m.events...)
}

// IsRunning returns whether the consumer is running
func (m *MockConsumer) IsRunning() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.isRunning
}
