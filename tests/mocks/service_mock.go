package mocks

import (
	"context"

	"shop-api/internal/domain"
	"shop-api/internal/service"

	"github.com/stretchr/testify/mock"
)

// MockCatalogService is a mock implementation of CatalogService
type MockCatalogService struct {
	mock.Mock
}

// CreateCategory mocks the CreateCategory method
func (m *MockCatalogService) CreateCategory(ctx context.Context, name, description string) (*domain.Category, error) {
	args := m.Called(ctx, name, description)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Category), args.Error(1)
}

// GetCategory mocks the GetCategory method
func (m *MockCatalogService) GetCategory(ctx context.Context, id uint) (*domain.Category, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Category), args.Error(1)
}

// ListCategories mocks the ListCategories method
func (m *MockCatalogService) ListCategories(ctx context.Context, limit, offset int) ([]*domain.Category, int, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]*domain.Category), args.Int(1), args.Error(2)
}

// UpdateCategory mocks the UpdateCategory method
func (m *MockCatalogService) UpdateCategory(ctx context.Context, id uint, name, description string) (*domain.Category, error) {
	args := m.Called(ctx, id, name, description)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Category), args.Error(1)
}

// DeleteCategory mocks the DeleteCategory method
func (m *MockCatalogService) DeleteCategory(ctx context.Context, id uint) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// CreateProduct mocks the CreateProduct method
func (m *MockCatalogService) CreateProduct(ctx context.Context, input service.ProductInput) (*domain.Product, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Product), args.Error(1)
}

// GetProduct mocks the GetProduct method
func (m *MockCatalogService) GetProduct(ctx context.Context, id uint) (*domain.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Product), args.Error(1)
}

// ListProducts mocks the ListProducts method
func (m *MockCatalogService) ListProducts(ctx context.Context, limit, offset int) ([]*domain.Product, int, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]*domain.Product), args.Int(1), args.Error(2)
}

// ListCategoryProducts mocks the ListCategoryProducts method
func (m *MockCatalogService) ListCategoryProducts(ctx context.Context, categoryID uint, limit, offset int) ([]*domain.Product, int, error) {
	args := m.Called(ctx, categoryID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]*domain.Product), args.Int(1), args.Error(2)
}

// UpdateProduct mocks the UpdateProduct method
func (m *MockCatalogService) UpdateProduct(ctx context.Context, id uint, rowVersion int, input service.ProductInput) (*domain.Product, error) {
	args := m.Called(ctx, id, rowVersion, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Product), args.Error(1)
}

// PublishProduct mocks the PublishProduct method
func (m *MockCatalogService) PublishProduct(ctx context.Context, id uint, rowVersion int) (*domain.Product, error) {
	args := m.Called(ctx, id, rowVersion)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Product), args.Error(1)
}

// DeleteProduct mocks the DeleteProduct method
func (m *MockCatalogService) DeleteProduct(ctx context.Context, id uint) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// InstallmentPrice mocks the InstallmentPrice method
func (m *MockCatalogService) InstallmentPrice(ctx context.Context, id uint, months int) (int, error) {
	args := m.Called(ctx, id, months)
	return args.Int(0), args.Error(1)
}

// MockFaultLogService is a mock implementation of FaultLogService
type MockFaultLogService struct {
	mock.Mock
}

// Record mocks the Record method
func (m *MockFaultLogService) Record(ctx context.Context, record service.FaultRecord) (*domain.FaultLog, error) {
	args := m.Called(ctx, record)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.FaultLog), args.Error(1)
}

// List mocks the List method
func (m *MockFaultLogService) List(ctx context.Context, limit, offset int) ([]*domain.FaultLog, int, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]*domain.FaultLog), args.Int(1), args.Error(2)
}
