package repository

import (
	"context"
	"time"

	"shop-api/internal/domain"
	"shop-api/internal/fault"

	"gorm.io/gorm"
)

// GormCategoryRepository implements CategoryRepository using GORM
type GormCategoryRepository struct {
	db *gorm.DB
}

// NewGormCategoryRepository creates a new GORM category repository
func NewGormCategoryRepository(db *gorm.DB) *GormCategoryRepository {
	return &GormCategoryRepository{db: db}
}

// Create inserts a new category
func (r *GormCategoryRepository) Create(ctx context.Context, category *domain.Category) error {
	result := r.db.WithContext(ctx).Create(category)
	return handleWriteError(result.Error, "create", "category")
}

// GetByID retrieves a category by ID
func (r *GormCategoryRepository) GetByID(ctx context.Context, id uint) (*domain.Category, error) {
	var category domain.Category
	if err := findByID(ctx, r.db, &category, "category", id); err != nil {
		return nil, err
	}
	return &category, nil
}

// List retrieves categories ordered by name
func (r *GormCategoryRepository) List(ctx context.Context, limit, offset int) ([]*domain.Category, error) {
	limit, offset = normalizePage(limit, offset)

	var categories []*domain.Category
	result := r.db.WithContext(ctx).
		Order("name ASC").
		Limit(limit).
		Offset(offset).
		Find(&categories)
	if err := handleReadError(result.Error); err != nil {
		return nil, err
	}
	return categories, nil
}

// Count returns the number of categories
func (r *GormCategoryRepository) Count(ctx context.Context) (int, error) {
	var count int64
	result := r.db.WithContext(ctx).Model(&domain.Category{}).Count(&count)
	if err := handleReadError(result.Error); err != nil {
		return 0, err
	}
	return int(count), nil
}

// Update writes name, description and update time
func (r *GormCategoryRepository) Update(ctx context.Context, category *domain.Category) error {
	result := r.db.WithContext(ctx).Model(&domain.Category{}).
		Where(QueryByID, category.ID).
		Updates(map[string]interface{}{
			"name":        category.Name,
			"description": category.Description,
			"update_on":   category.UpdateOn,
		})
	if err := handleWriteError(result.Error, "update", "category"); err != nil {
		return err
	}
	if result.RowsAffected == 0 {
		return notFound("category", category.ID)
	}
	return nil
}

// Delete removes a category. Categories still referenced by products are
// protected by the foreign key.
func (r *GormCategoryRepository) Delete(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Delete(&domain.Category{}, QueryByID, id)
	if err := handleWriteError(result.Error, "delete", "category"); err != nil {
		return err
	}
	if result.RowsAffected == 0 {
		return notFound("category", id)
	}
	return nil
}

// GormProductRepository implements ProductRepository using GORM
type GormProductRepository struct {
	db *gorm.DB
}

// NewGormProductRepository creates a new GORM product repository
func NewGormProductRepository(db *gorm.DB) *GormProductRepository {
	return &GormProductRepository{db: db}
}

// Create inserts a new product
func (r *GormProductRepository) Create(ctx context.Context, product *domain.Product) error {
	if product.RowVersion == 0 {
		product.RowVersion = 1
	}
	result := r.db.WithContext(ctx).Omit("Category").Create(product)
	return handleWriteError(result.Error, "create", "product")
}

// GetByID retrieves a product by ID
func (r *GormProductRepository) GetByID(ctx context.Context, id uint) (*domain.Product, error) {
	var product domain.Product
	if err := findByID(ctx, r.db, &product, "product", id); err != nil {
		return nil, err
	}
	return &product, nil
}

// List retrieves products, newest first
func (r *GormProductRepository) List(ctx context.Context, limit, offset int) ([]*domain.Product, error) {
	return r.find(r.db.WithContext(ctx), limit, offset)
}

// ListByCategory retrieves the products of one category, newest first
func (r *GormProductRepository) ListByCategory(ctx context.Context, categoryID uint, limit, offset int) ([]*domain.Product, error) {
	return r.find(r.db.WithContext(ctx).Where(QueryByCategory, categoryID), limit, offset)
}

func (r *GormProductRepository) find(query *gorm.DB, limit, offset int) ([]*domain.Product, error) {
	limit, offset = normalizePage(limit, offset)

	var products []*domain.Product
	result := query.
		Order("id DESC").
		Limit(limit).
		Offset(offset).
		Find(&products)
	if err := handleReadError(result.Error); err != nil {
		return nil, err
	}
	return products, nil
}

// Count returns the number of products
func (r *GormProductRepository) Count(ctx context.Context) (int, error) {
	var count int64
	result := r.db.WithContext(ctx).Model(&domain.Product{}).Count(&count)
	if err := handleReadError(result.Error); err != nil {
		return 0, err
	}
	return int(count), nil
}

// CountByCategory returns the number of products in one category
func (r *GormProductRepository) CountByCategory(ctx context.Context, categoryID uint) (int, error) {
	var count int64
	result := r.db.WithContext(ctx).Model(&domain.Product{}).Where(QueryByCategory, categoryID).Count(&count)
	if err := handleReadError(result.Error); err != nil {
		return 0, err
	}
	return int(count), nil
}

// Update writes the product only if the stored row version still matches
func (r *GormProductRepository) Update(ctx context.Context, product *domain.Product) error {
	updateOn := product.UpdateOn
	if updateOn == nil {
		now := time.Now().UTC()
		updateOn = &now
	}

	result := r.db.WithContext(ctx).Model(&domain.Product{}).
		Where(QueryByIDAndVersion, product.ID, product.RowVersion).
		Updates(map[string]interface{}{
			"category_id":  product.CategoryID,
			"name":         product.Name,
			"sku":          product.Sku,
			"price":        product.Price,
			"old_price":    product.OldPrice,
			"published":    product.Published,
			"publish_date": product.PublishDate,
			"update_on":    updateOn,
			"row_version":  gorm.Expr("row_version + 1"),
		})
	if err := handleWriteError(result.Error, "update", "product"); err != nil {
		return err
	}

	if result.RowsAffected == 0 {
		var count int64
		if err := r.db.WithContext(ctx).Model(&domain.Product{}).Where(QueryByID, product.ID).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return notFound("product", product.ID)
		}
		return &fault.ConcurrencyError{Entity: "product", ID: product.ID, ExpectedVersion: product.RowVersion}
	}

	product.RowVersion++
	product.UpdateOn = updateOn
	return nil
}

// Delete removes a product by ID
func (r *GormProductRepository) Delete(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Delete(&domain.Product{}, QueryByID, id)
	if err := handleWriteError(result.Error, "delete", "product"); err != nil {
		return err
	}
	if result.RowsAffected == 0 {
		return notFound("product", id)
	}
	return nil
}

// GormFaultLogRepository implements FaultLogRepository using GORM
type GormFaultLogRepository struct {
	db *gorm.DB
}

// NewGormFaultLogRepository creates a new GORM fault log repository
func NewGormFaultLogRepository(db *gorm.DB) *GormFaultLogRepository {
	return &GormFaultLogRepository{db: db}
}

// Create inserts a fault log entry
func (r *GormFaultLogRepository) Create(ctx context.Context, entry *domain.FaultLog) error {
	result := r.db.WithContext(ctx).Create(entry)
	return handleWriteError(result.Error, "create", "fault log")
}

// List retrieves fault logs, newest first
func (r *GormFaultLogRepository) List(ctx context.Context, limit, offset int) ([]*domain.FaultLog, error) {
	limit, offset = normalizePage(limit, offset)

	var entries []*domain.FaultLog
	result := r.db.WithContext(ctx).
		Order("log_time DESC, id DESC").
		Limit(limit).
		Offset(offset).
		Find(&entries)
	if err := handleReadError(result.Error); err != nil {
		return nil, err
	}
	return entries, nil
}

// Count returns the number of fault logs
func (r *GormFaultLogRepository) Count(ctx context.Context) (int, error) {
	var count int64
	result := r.db.WithContext(ctx).Model(&domain.FaultLog{}).Count(&count)
	if err := handleReadError(result.Error); err != nil {
		return 0, err
	}
	return int(count), nil
}

// CountByStatus counts fault logs with the given status code
func (r *GormFaultLogRepository) CountByStatus(ctx context.Context, statusCode int) (int, error) {
	var count int64
	result := r.db.WithContext(ctx).Model(&domain.FaultLog{}).Where("status_code = ?", statusCode).Count(&count)
	if err := handleReadError(result.Error); err != nil {
		return 0, err
	}
	return int(count), nil
}
