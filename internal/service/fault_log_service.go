package service

import (
	"context"
	"time"

	"shop-api/internal/domain"
	"shop-api/internal/errs"
	"shop-api/internal/repository"

	"go.uber.org/zap"
)

// FaultRecord is a classified failure as reported by the HTTP layer
type FaultRecord struct {
	Action     string
	StatusCode int
	Message    string
	Kind       string
	Detail     string
	RequestID  string
	OccurredAt time.Time
}

// FaultLogService stores and lists classified failures
type FaultLogService interface {
	Record(ctx context.Context, record FaultRecord) (*domain.FaultLog, error)
	List(ctx context.Context, limit, offset int) ([]*domain.FaultLog, int, error)
}

type faultLogService struct {
	repo   repository.FaultLogRepository
	logger *zap.Logger
}

// NewFaultLogService creates a new fault log service
func NewFaultLogService(repo repository.FaultLogRepository, logger *zap.Logger) FaultLogService {
	return &faultLogService{repo: repo, logger: logger}
}

// Record persists one classified failure. Storage errors are returned as is
// so that callers can classify them and decide whether to retry.
func (s *faultLogService) Record(ctx context.Context, record FaultRecord) (*domain.FaultLog, error) {
	logger := s.logger.With(
		zap.String("layer", "Service"),
		zap.String("operation", "RecordFault"),
		zap.String("action", record.Action),
		zap.Int("status_code", record.StatusCode),
	)

	entry, err := domain.NewFaultLog(record.Action, record.StatusCode, record.Message, record.Kind, record.Detail, record.RequestID, record.OccurredAt)
	if err != nil {
		return nil, errs.New(errs.ErrorCodeInvalidInput, err, nil)
	}

	if err := s.repo.Create(ctx, entry); err != nil {
		logger.Error("Failed to store fault log", zap.Error(err))
		return nil, err
	}

	logger.Debug("Fault log stored", zap.Uint("id", entry.ID))
	return entry, nil
}

// List retrieves a page of fault logs, newest first, and the total count
func (s *faultLogService) List(ctx context.Context, limit, offset int) ([]*domain.FaultLog, int, error) {
	logger := s.logger.With(zap.String("layer", "Service"), zap.String("operation", "ListFaults"))

	entries, err := s.repo.List(ctx, limit, offset)
	if err != nil {
		logger.Error("Failed to list fault logs", zap.Error(err))
		return nil, 0, errs.New(errs.ErrorCodeDatabaseError, err, nil)
	}

	total, err := s.repo.Count(ctx)
	if err != nil {
		logger.Error("Failed to count fault logs", zap.Error(err))
		return nil, 0, errs.New(errs.ErrorCodeDatabaseError, err, nil)
	}

	return entries, total, nil
}
