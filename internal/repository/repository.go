package repository

import (
	"context"

	"shop-api/internal/domain"

	"gorm.io/gorm"
)

// CategoryRepository defines data access for catalog categories
type CategoryRepository interface {
	Create(ctx context.Context, category *domain.Category) error
	GetByID(ctx context.Context, id uint) (*domain.Category, error)
	List(ctx context.Context, limit, offset int) ([]*domain.Category, error)
	Count(ctx context.Context) (int, error)
	Update(ctx context.Context, category *domain.Category) error
	Delete(ctx context.Context, id uint) error
}

// ProductRepository defines data access for products.
//
// Update is conditional on product.RowVersion: when another writer got there
// first it fails with *fault.ConcurrencyError, otherwise the stored version
// and product.RowVersion are both incremented.
type ProductRepository interface {
	Create(ctx context.Context, product *domain.Product) error
	GetByID(ctx context.Context, id uint) (*domain.Product, error)
	List(ctx context.Context, limit, offset int) ([]*domain.Product, error)
	ListByCategory(ctx context.Context, categoryID uint, limit, offset int) ([]*domain.Product, error)
	Count(ctx context.Context) (int, error)
	CountByCategory(ctx context.Context, categoryID uint) (int, error)
	Update(ctx context.Context, product *domain.Product) error
	Delete(ctx context.Context, id uint) error
}

// FaultLogRepository persists classified failures
type FaultLogRepository interface {
	Create(ctx context.Context, entry *domain.FaultLog) error
	List(ctx context.Context, limit, offset int) ([]*domain.FaultLog, error)
	Count(ctx context.Context) (int, error)
	CountByStatus(ctx context.Context, statusCode int) (int, error)
}

// Models lists every table the repositories need, in dependency order
func Models() []interface{} {
	return []interface{}{&domain.Category{}, &domain.Product{}, &domain.FaultLog{}}
}

// Store groups the repositories of one backing store
type Store struct {
	Categories CategoryRepository
	Products   ProductRepository
	FaultLogs  FaultLogRepository
}

// NewMemory returns repositories sharing one in-memory store
func NewMemory() *Store {
	store := NewMemoryStore()
	return &Store{
		Categories: store.Categories(),
		Products:   store.Products(),
		FaultLogs:  store.FaultLogs(),
	}
}

// NewGorm returns repositories backed by db
func NewGorm(db *gorm.DB) *Store {
	return &Store{
		Categories: NewGormCategoryRepository(db),
		Products:   NewGormProductRepository(db),
		FaultLogs:  NewGormFaultLogRepository(db),
	}
}
