package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"shop-api/internal/domain"
	"shop-api/internal/errs"
	"shop-api/internal/fault"
	"shop-api/internal/service"
	"shop-api/tests/fixtures"
	"shop-api/tests/mocks"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestFaultLogService_Record(t *testing.T) {
	occurred := time.Date(2024, 5, 1, 12, 0, 0, 0, time.FixedZone("ICT", 7*3600))

	t.Run("stores entry", func(t *testing.T) {
		repo := &mocks.MockFaultLogRepository{}
		repo.On("Create", mock.Anything, mock.MatchedBy(func(e *domain.FaultLog) bool {
			return e.ActionName == "DeleteCategory" && e.StatusCode == fault.StatusDependent && e.LogTime.Location() == time.UTC
		})).Return(nil)

		svc := service.NewFaultLogService(repo, zap.NewNop())
		entry, err := svc.Record(context.Background(), service.FaultRecord{
			Action:     "DeleteCategory",
			StatusCode: fault.StatusDependent,
			Message:    fault.MessageDependent,
			Kind:       "wrapped",
			OccurredAt: occurred,
		})
		require.NoError(t, err)
		assert.True(t, entry.LogTime.Equal(occurred))
		repo.AssertExpectations(t)
	})

	t.Run("missing action", func(t *testing.T) {
		svc := service.NewFaultLogService(&mocks.MockFaultLogRepository{}, zap.NewNop())
		_, err := svc.Record(context.Background(), service.FaultRecord{StatusCode: 500})

		var appErr *errs.AppError
		require.True(t, errors.As(err, &appErr))
		assert.Equal(t, errs.ErrorCodeInvalidInput, appErr.Code)
	})

	t.Run("storage failure is returned unwrapped", func(t *testing.T) {
		repo := &mocks.MockFaultLogRepository{}
		repo.On("Create", mock.Anything, mock.Anything).Return(fixtures.ConnectionDropped())

		svc := service.NewFaultLogService(repo, zap.NewNop())
		_, err := svc.Record(context.Background(), service.FaultRecord{Action: "GetProduct", StatusCode: 500})

		assert.Equal(t, fault.StatusUnreachable, fault.ClassifyError(err).StatusCode)
	})
}

func TestFaultLogService_List(t *testing.T) {
	repo := &mocks.MockFaultLogRepository{}
	repo.On("List", mock.Anything, 10, 0).Return([]*domain.FaultLog{fixtures.ValidFaultLog()}, nil)
	repo.On("Count", mock.Anything).Return(12, nil)

	svc := service.NewFaultLogService(repo, zap.NewNop())
	entries, total, err := svc.List(context.Background(), 10, 0)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
	assert.Equal(t, 12, total)
}

func TestFaultLogService_ListCountFailure(t *testing.T) {
	repo := &mocks.MockFaultLogRepository{}
	repo.On("List", mock.Anything, 10, 0).Return([]*domain.FaultLog{}, nil)
	repo.On("Count", mock.Anything).Return(0, fixtures.ConnectionLost())

	svc := service.NewFaultLogService(repo, zap.NewNop())
	_, _, err := svc.List(context.Background(), 10, 0)

	var appErr *errs.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, errs.ErrorCodeDatabaseError, appErr.Code)
	assert.Equal(t, fault.StatusUnreachable, fault.ClassifyError(err).StatusCode)
}
