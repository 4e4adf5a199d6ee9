package mq

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"shop-api/internal/domain"
	"shop-api/internal/fault"
	"shop-api/internal/service"
	"shop-api/tests/fixtures"
	"shop-api/tests/mocks"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// MockEventHandler for testing
type MockEventHandler struct {
	mock.Mock
}

func (m *MockEventHandler) HandleFaultClassified(ctx context.Context, event *FaultEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

func TestFaultLogEventHandler(t *testing.T) {
	event := createTestEvent(fault.StatusDuplicate, fault.MessageDuplicate)

	t.Run("records event", func(t *testing.T) {
		faultLogs := &mocks.MockFaultLogService{}
		faultLogs.On("Record", mock.Anything, service.FaultRecord{
			Action:     event.Action,
			StatusCode: event.StatusCode,
			Message:    event.Message,
			Kind:       event.Kind,
			Detail:     event.Detail,
			RequestID:  event.RequestID,
			OccurredAt: event.Timestamp,
		}).Return(fixtures.ValidFaultLog(), nil)

		handler := NewFaultLogEventHandler(faultLogs, zap.NewNop())
		require.NoError(t, handler.HandleFaultClassified(context.Background(), event))
		faultLogs.AssertExpectations(t)
	})

	t.Run("storage failure", func(t *testing.T) {
		faultLogs := &mocks.MockFaultLogService{}
		faultLogs.On("Record", mock.Anything, mock.Anything).Return(nil, fixtures.ConnectionLost())

		handler := NewFaultLogEventHandler(faultLogs, zap.NewNop())
		err := handler.HandleFaultClassified(context.Background(), event)
		assert.Equal(t, fault.StatusUnreachable, fault.ClassifyError(err).StatusCode)
	})
}

func TestRabbitMQConsumer_HandleMessage(t *testing.T) {
	validBody, err := json.Marshal(createTestEvent(fault.StatusFormat, fault.MessageFormat))
	require.NoError(t, err)

	unknown := createTestEvent(fault.StatusFormat, fault.MessageFormat)
	unknown.Type = "purged"
	unknownBody, err := json.Marshal(unknown)
	require.NoError(t, err)

	tests := []struct {
		name         string
		body         []byte
		handlerErr   error
		expectCall   bool
		wantAcked    bool
		wantRejected bool
		wantRequeued bool
	}{
		{
			name:       "handled event is acked",
			body:       validBody,
			expectCall: true,
			wantAcked:  true,
		},
		{
			name:         "malformed body is dropped",
			body:         []byte("{not json"),
			wantRejected: true,
		},
		{
			name:      "unknown event type is acked",
			body:      unknownBody,
			wantAcked: true,
		},
		{
			name:         "unreachable database is requeued",
			body:         validBody,
			handlerErr:   fixtures.ConnectionLost(),
			expectCall:   true,
			wantRejected: true,
			wantRequeued: true,
		},
		{
			name:         "constraint failure is dropped",
			body:         validBody,
			handlerErr:   fixtures.DuplicateKeyWrite("fault log"),
			expectCall:   true,
			wantRejected: true,
		},
		{
			name:         "invalid record is dropped",
			body:         validBody,
			handlerErr:   domain.ErrActionRequired,
			expectCall:   true,
			wantRejected: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := &MockEventHandler{}
			if tt.expectCall {
				handler.On("HandleFaultClassified", mock.Anything, mock.AnythingOfType("*mq.FaultEvent")).Return(tt.handlerErr)
			}

			consumer := newConsumer(handler, zap.NewNop())
			ack := &recordingAcknowledger{}
			consumer.handleMessage(context.Background(), newTestDelivery(tt.body, ack))

			assert.Equal(t, tt.wantAcked, ack.acked)
			assert.Equal(t, tt.wantRejected, ack.rejected)
			assert.Equal(t, tt.wantRequeued, ack.requeued)
			handler.AssertExpectations(t)
		})
	}
}

func TestRabbitMQConsumer_RedeliveredIsNotRequeuedTwice(t *testing.T) {
	body, err := json.Marshal(createTestEvent(fault.StatusDuplicate, fault.MessageDuplicate))
	require.NoError(t, err)

	handler := &MockEventHandler{}
	handler.On("HandleFaultClassified", mock.Anything, mock.Anything).Return(fixtures.ConnectionLost())

	consumer := newConsumer(handler, zap.NewNop())
	ack := &recordingAcknowledger{}
	delivery := newTestDelivery(body, ack)
	delivery.Redelivered = true
	consumer.handleMessage(context.Background(), delivery)

	assert.True(t, ack.rejected)
	assert.False(t, ack.requeued)
}

func TestRabbitMQConsumer_StopWhenNotRunning(t *testing.T) {
	consumer := newConsumer(&MockEventHandler{}, zap.NewNop())
	assert.NoError(t, consumer.Stop())
}

func TestIsRetryableError(t *testing.T) {
	assert.True(t, isRetryableError(fixtures.ConnectionLost()))
	assert.True(t, isRetryableError(&fault.NativeError{Code: fault.NativeTimeout}))
	assert.False(t, isRetryableError(fixtures.ForeignKeyWrite("delete", "category")))
	assert.False(t, isRetryableError(errors.New("boom")))
}

func TestMockConsumer(t *testing.T) {
	handler := &MockEventHandler{}
	event := createTestEvent(fault.StatusDependent, fault.MessageDependent)
	handler.On("HandleFaultClassified", mock.Anything, event).Return(nil)

	consumer := NewMockConsumer(handler, zap.NewNop())
	require.NoError(t, consumer.Start(context.Background()))
	assert.True(t, consumer.IsRunning())

	require.NoError(t, consumer.SimulateEvent(context.Background(), event))
	assert.Len(t, consumer.GetProcessedEvents(), 1)

	unknown := *event
	unknown.Type = "purged"
	assert.ErrorIs(t, consumer.SimulateEvent(context.Background(), &unknown), ErrUnknownEvent)

	require.NoError(t, consumer.Stop())
	assert.False(t, consumer.IsRunning())
	handler.AssertExpectations(t)
}
