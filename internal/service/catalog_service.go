package service

import (
	"context"
	"errors"

	"shop-api/internal/domain"
	"shop-api/internal/errs"
	"shop-api/internal/repository"

	"go.uber.org/zap"
)

// ProductInput carries the editable fields of a product
type ProductInput struct {
	CategoryID uint
	Name       string
	Sku        string
	Price      int
	OldPrice   int
}

// CatalogService defines the business operations of the storefront catalog
type CatalogService interface {
	CreateCategory(ctx context.Context, name, description string) (*domain.Category, error)
	GetCategory(ctx context.Context, id uint) (*domain.Category, error)
	ListCategories(ctx context.Context, limit, offset int) ([]*domain.Category, int, error)
	UpdateCategory(ctx context.Context, id uint, name, description string) (*domain.Category, error)
	DeleteCategory(ctx context.Context, id uint) error

	CreateProduct(ctx context.Context, input ProductInput) (*domain.Product, error)
	GetProduct(ctx context.Context, id uint) (*domain.Product, error)
	ListProducts(ctx context.Context, limit, offset int) ([]*domain.Product, int, error)
	ListCategoryProducts(ctx context.Context, categoryID uint, limit, offset int) ([]*domain.Product, int, error)
	UpdateProduct(ctx context.Context, id uint, rowVersion int, input ProductInput) (*domain.Product, error)
	PublishProduct(ctx context.Context, id uint, rowVersion int) (*domain.Product, error)
	DeleteProduct(ctx context.Context, id uint) error
	InstallmentPrice(ctx context.Context, id uint, months int) (int, error)
}

// catalogService implements CatalogService
type catalogService struct {
	categories repository.CategoryRepository
	products   repository.ProductRepository
	logger     *zap.Logger
}

// NewCatalogService creates a new catalog service
func NewCatalogService(categories repository.CategoryRepository, products repository.ProductRepository, logger *zap.Logger) CatalogService {
	return &catalogService{
		categories: categories,
		products:   products,
		logger:     logger,
	}
}

func (s *catalogService) log(operation string, fields ...zap.Field) *zap.Logger {
	return s.logger.With(append([]zap.Field{
		zap.String("layer", "Service"),
		zap.String("operation", operation),
	}, fields...)...)
}

// CreateCategory validates and stores a new category. Name uniqueness is
// left to the store.
func (s *catalogService) CreateCategory(ctx context.Context, name, description string) (*domain.Category, error) {
	logger := s.log("CreateCategory", zap.String("name", name))

	category, err := domain.NewCategory(name, description)
	if err != nil {
		return nil, inputError(err)
	}

	if err := s.categories.Create(ctx, category); err != nil {
		logger.Error("Failed to save category", zap.Error(err))
		return nil, errs.New(errs.ErrorCodeDatabaseError, err, nil)
	}

	logger.Info("Category created successfully", zap.Uint("id", category.ID))
	return category, nil
}

// GetCategory retrieves a category by ID
func (s *catalogService) GetCategory(ctx context.Context, id uint) (*domain.Category, error) {
	logger := s.log("GetCategory", zap.Uint("id", id))

	if id == 0 {
		return nil, errs.New(errs.ErrorCodeInvalidID, errors.New("id cannot be zero"), nil)
	}

	category, err := s.categories.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			logger.Warn("Category not found")
			return nil, notFoundError(errs.ErrorCodeCategoryNotFound, err)
		}
		logger.Error("Failed to get category", zap.Error(err))
		return nil, errs.New(errs.ErrorCodeDatabaseError, err, nil)
	}

	return category, nil
}

// ListCategories retrieves a page of categories and the total count
func (s *catalogService) ListCategories(ctx context.Context, limit, offset int) ([]*domain.Category, int, error) {
	logger := s.log("ListCategories", zap.Int("limit", limit), zap.Int("offset", offset))

	categories, err := s.categories.List(ctx, limit, offset)
	if err != nil {
		logger.Error("Failed to list categories", zap.Error(err))
		return nil, 0, errs.New(errs.ErrorCodeDatabaseError, err, nil)
	}

	total, err := s.categories.Count(ctx)
	if err != nil {
		logger.Error("Failed to count categories", zap.Error(err))
		return nil, 0, errs.New(errs.ErrorCodeDatabaseError, err, nil)
	}

	return categories, total, nil
}

// UpdateCategory changes name and description of an existing category
func (s *catalogService) UpdateCategory(ctx context.Context, id uint, name, description string) (*domain.Category, error) {
	logger := s.log("UpdateCategory", zap.Uint("id", id))

	category, err := s.GetCategory(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := category.Update(name, description); err != nil {
		return nil, inputError(err)
	}

	if err := s.categories.Update(ctx, category); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, notFoundError(errs.ErrorCodeCategoryNotFound, err)
		}
		logger.Error("Failed to update category", zap.Error(err))
		return nil, errs.New(errs.ErrorCodeDatabaseError, err, nil)
	}

	logger.Info("Category updated successfully")
	return category, nil
}

// DeleteCategory removes a category. A category that still has products is
// refused by the store's foreign key.
func (s *catalogService) DeleteCategory(ctx context.Context, id uint) error {
	logger := s.log("DeleteCategory", zap.Uint("id", id))

	if id == 0 {
		return errs.New(errs.ErrorCodeInvalidID, errors.New("id cannot be zero"), nil)
	}

	if err := s.categories.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			logger.Warn("Category not found for deletion")
			return notFoundError(errs.ErrorCodeCategoryNotFound, err)
		}
		logger.Error("Failed to delete category", zap.Error(err))
		return errs.New(errs.ErrorCodeDatabaseError, err, nil)
	}

	logger.Info("Category deleted successfully")
	return nil
}

// CreateProduct validates and stores a new product
func (s *catalogService) CreateProduct(ctx context.Context, input ProductInput) (*domain.Product, error) {
	logger := s.log("CreateProduct", zap.String("sku", input.Sku), zap.Uint("category_id", input.CategoryID))

	product, err := domain.NewProduct(input.CategoryID, input.Name, input.Sku, input.Price, input.OldPrice)
	if err != nil {
		return nil, inputError(err)
	}

	if err := s.products.Create(ctx, product); err != nil {
		logger.Error("Failed to save product", zap.Error(err))
		return nil, errs.New(errs.ErrorCodeDatabaseError, err, nil)
	}

	logger.Info("Product created successfully", zap.Uint("id", product.ID))
	return product, nil
}

// GetProduct retrieves a product by ID
func (s *catalogService) GetProduct(ctx context.Context, id uint) (*domain.Product, error) {
	logger := s.log("GetProduct", zap.Uint("id", id))

	if id == 0 {
		return nil, errs.New(errs.ErrorCodeInvalidID, errors.New("id cannot be zero"), nil)
	}

	product, err := s.products.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			logger.Warn("Product not found")
			return nil, notFoundError(errs.ErrorCodeProductNotFound, err)
		}
		logger.Error("Failed to get product", zap.Error(err))
		return nil, errs.New(errs.ErrorCodeDatabaseError, err, nil)
	}

	return product, nil
}

// ListProducts retrieves a page of products and the total count
func (s *catalogService) ListProducts(ctx context.Context, limit, offset int) ([]*domain.Product, int, error) {
	logger := s.log("ListProducts", zap.Int("limit", limit), zap.Int("offset", offset))

	products, err := s.products.List(ctx, limit, offset)
	if err != nil {
		logger.Error("Failed to list products", zap.Error(err))
		return nil, 0, errs.New(errs.ErrorCodeDatabaseError, err, nil)
	}

	total, err := s.products.Count(ctx)
	if err != nil {
		logger.Error("Failed to count products", zap.Error(err))
		return nil, 0, errs.New(errs.ErrorCodeDatabaseError, err, nil)
	}

	return products, total, nil
}

// ListCategoryProducts retrieves a page of the products of an existing
// category and their total count
func (s *catalogService) ListCategoryProducts(ctx context.Context, categoryID uint, limit, offset int) ([]*domain.Product, int, error) {
	logger := s.log("ListCategoryProducts", zap.Uint("category_id", categoryID))

	if _, err := s.GetCategory(ctx, categoryID); err != nil {
		return nil, 0, err
	}

	products, err := s.products.ListByCategory(ctx, categoryID, limit, offset)
	if err != nil {
		logger.Error("Failed to list products", zap.Error(err))
		return nil, 0, errs.New(errs.ErrorCodeDatabaseError, err, nil)
	}

	total, err := s.products.CountByCategory(ctx, categoryID)
	if err != nil {
		logger.Error("Failed to count products", zap.Error(err))
		return nil, 0, errs.New(errs.ErrorCodeDatabaseError, err, nil)
	}

	return products, total, nil
}

// UpdateProduct applies input to the product the client read at rowVersion
func (s *catalogService) UpdateProduct(ctx context.Context, id uint, rowVersion int, input ProductInput) (*domain.Product, error) {
	logger := s.log("UpdateProduct", zap.Uint("id", id), zap.Int("row_version", rowVersion))

	product, err := s.GetProduct(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := product.Update(input.CategoryID, input.Name, input.Sku, input.Price, input.OldPrice); err != nil {
		return nil, inputError(err)
	}

	return product, s.save(ctx, logger, product, rowVersion)
}

// PublishProduct makes the product visible in the storefront
func (s *catalogService) PublishProduct(ctx context.Context, id uint, rowVersion int) (*domain.Product, error) {
	logger := s.log("PublishProduct", zap.Uint("id", id), zap.Int("row_version", rowVersion))

	product, err := s.GetProduct(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := product.Publish(); err != nil {
		return nil, inputError(err)
	}

	return product, s.save(ctx, logger, product, rowVersion)
}

// save writes product against the version the client last saw
func (s *catalogService) save(ctx context.Context, logger *zap.Logger, product *domain.Product, rowVersion int) error {
	if rowVersion > 0 {
		product.RowVersion = rowVersion
	}

	if err := s.products.Update(ctx, product); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return notFoundError(errs.ErrorCodeProductNotFound, err)
		}
		logger.Error("Failed to update product", zap.Error(err))
		return errs.New(errs.ErrorCodeDatabaseError, err, nil)
	}

	logger.Info("Product updated successfully", zap.Int("row_version", product.RowVersion))
	return nil
}

// DeleteProduct removes a product by ID
func (s *catalogService) DeleteProduct(ctx context.Context, id uint) error {
	logger := s.log("DeleteProduct", zap.Uint("id", id))

	if id == 0 {
		return errs.New(errs.ErrorCodeInvalidID, errors.New("id cannot be zero"), nil)
	}

	if err := s.products.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			logger.Warn("Product not found for deletion")
			return notFoundError(errs.ErrorCodeProductNotFound, err)
		}
		logger.Error("Failed to delete product", zap.Error(err))
		return errs.New(errs.ErrorCodeDatabaseError, err, nil)
	}

	logger.Info("Product deleted successfully")
	return nil
}

// InstallmentPrice splits the product price over the given number of months.
// Zero months is not rejected here; the division fails and the request is
// answered as a divide-by-zero fault.
func (s *catalogService) InstallmentPrice(ctx context.Context, id uint, months int) (int, error) {
	if months < 0 {
		return 0, errs.New(errs.ErrorCodeInvalidInput, errors.New("months cannot be negative"), map[string]interface{}{
			"months": months,
		})
	}

	product, err := s.GetProduct(ctx, id)
	if err != nil {
		return 0, err
	}

	return product.Price / months, nil
}

// inputError maps a domain validation error to a client-facing AppError
func inputError(err error) error {
	code := errs.ErrorCodeInvalidInput
	switch {
	case errors.Is(err, domain.ErrInvalidName):
		code = errs.ErrorCodeInvalidName
	case errors.Is(err, domain.ErrInvalidDescription):
		code = errs.ErrorCodeInvalidDescription
	case errors.Is(err, domain.ErrInvalidSku):
		code = errs.ErrorCodeInvalidSku
	case errors.Is(err, domain.ErrInvalidPrice):
		code = errs.ErrorCodeInvalidPrice
	case errors.Is(err, domain.ErrPriceNotReduced):
		code = errs.ErrorCodePriceNotDiscounted
	case errors.Is(err, domain.ErrAlreadyPublished):
		code = errs.ErrorCodeProductAlreadyPublic
	case errors.Is(err, domain.ErrCategoryRequired):
		code = errs.ErrorCodeInvalidID
	}
	return errs.New(code, err, nil)
}

func notFoundError(code errs.ErrorCode, err error) error {
	return errs.New(code, err, nil)
}
