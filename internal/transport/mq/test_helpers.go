package mq

import (
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// Test fixtures shared between consumer and producer tests

// createTestEvent creates a classified fault event with fixed identity
func createTestEvent(statusCode int, message string) *FaultEvent {
	return &FaultEvent{
		ID:         "evt_test_123",
		Type:       EventTypeFaultClassified,
		Timestamp:  time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
		Action:     "CreateProduct",
		StatusCode: statusCode,
		Message:    message,
		Kind:       "wrapped",
		Detail:     "create product failed",
		RequestID:  "req-test",
	}
}

// recordingAcknowledger captures how a delivery was settled
type recordingAcknowledger struct {
	mu       sync.Mutex
	acked    bool
	rejected bool
	requeued bool
}

func (a *recordingAcknowledger) Ack(tag uint64, multiple bool) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.acked = true
	return nil
}

func (a *recordingAcknowledger) Nack(tag uint64, multiple, requeue bool) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.rejected = true
	a.requeued = requeue
	return nil
}

func (a *recordingAcknowledger) Reject(tag uint64, requeue bool) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.rejected = true
	a.requeued = requeue
	return nil
}

// newTestDelivery wraps body in a delivery settled through ack
func newTestDelivery(body []byte, ack *recordingAcknowledger) amqp.Delivery {
	return amqp.Delivery{
		Acknowledger: ack,
		DeliveryTag:  1,
		MessageId:    "msg-1",
		RoutingKey:   "fault.classified",
		Body:         body,
	}
}
