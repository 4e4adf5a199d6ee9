package mocks

import (
	"context"

	"shop-api/internal/domain"

	"github.com/stretchr/testify/mock"
)

// MockCategoryRepository is a mock implementation of CategoryRepository
type MockCategoryRepository struct {
	mock.Mock
}

// Create mocks the Create method
func (m *MockCategoryRepository) Create(ctx context.Context, category *domain.Category) error {
	args := m.Called(ctx, category)
	return args.Error(0)
}

// GetByID mocks the GetByID method
func (m *MockCategoryRepository) GetByID(ctx context.Context, id uint) (*domain.Category, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Category), args.Error(1)
}

// List mocks the List method
func (m *MockCategoryRepository) List(ctx context.Context, limit, offset int) ([]*domain.Category, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Category), args.Error(1)
}

// Count mocks the Count method
func (m *MockCategoryRepository) Count(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

// Update mocks the Update method
func (m *MockCategoryRepository) Update(ctx context.Context, category *domain.Category) error {
	args := m.Called(ctx, category)
	return args.Error(0)
}

// Delete mocks the Delete method
func (m *MockCategoryRepository) Delete(ctx context.Context, id uint) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockProductRepository is a mock implementation of ProductRepository
type MockProductRepository struct {
	mock.Mock
}

// Create mocks the Create method
func (m *MockProductRepository) Create(ctx context.Context, product *domain.Product) error {
	args := m.Called(ctx, product)
	return args.Error(0)
}

// GetByID mocks the GetByID method
func (m *MockProductRepository) GetByID(ctx context.Context, id uint) (*domain.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Product), args.Error(1)
}

// List mocks the List method
func (m *MockProductRepository) List(ctx context.Context, limit, offset int) ([]*domain.Product, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Product), args.Error(1)
}

// ListByCategory mocks the ListByCategory method
func (m *MockProductRepository) ListByCategory(ctx context.Context, categoryID uint, limit, offset int) ([]*domain.Product, error) {
	args := m.Called(ctx, categoryID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Product), args.Error(1)
}

// Count mocks the Count method
func (m *MockProductRepository) Count(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

// CountByCategory mocks the CountByCategory method
func (m *MockProductRepository) CountByCategory(ctx context.Context, categoryID uint) (int, error) {
	args := m.Called(ctx, categoryID)
	return args.Int(0), args.Error(1)
}

// Update mocks the Update method
func (m *MockProductRepository) Update(ctx context.Context, product *domain.Product) error {
	args := m.Called(ctx, product)
	return args.Error(0)
}

// Delete mocks the Delete method
func (m *MockProductRepository) Delete(ctx context.Context, id uint) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockFaultLogRepository is a mock implementation of FaultLogRepository
type MockFaultLogRepository struct {
	mock.Mock
}

// Create mocks the Create method
func (m *MockFaultLogRepository) Create(ctx context.Context, entry *domain.FaultLog) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

// List mocks the List method
func (m *MockFaultLogRepository) List(ctx context.Context, limit, offset int) ([]*domain.FaultLog, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.FaultLog), args.Error(1)
}

// Count mocks the Count method
func (m *MockFaultLogRepository) Count(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

// CountByStatus mocks the CountByStatus method
func (m *MockFaultLogRepository) CountByStatus(ctx context.Context, statusCode int) (int, error) {
	args := m.Called(ctx, statusCode)
	return args.Int(0), args.Error(1)
}
