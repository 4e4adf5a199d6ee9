package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"shop-api/internal/domain"
	"shop-api/internal/fault"
)

// MemoryStore keeps the catalog in process memory. It enforces the same
// constraints as the SQL schema (unique names and SKUs, restricted foreign
// keys) and reports violations the way a driver would.
type MemoryStore struct {
	mutex      sync.RWMutex
	categories map[uint]*domain.Category
	products   map[uint]*domain.Product
	faultLogs  []*domain.FaultLog
	nextID     map[string]uint
}

// NewMemoryStore creates an empty in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		categories: make(map[uint]*domain.Category),
		products:   make(map[uint]*domain.Product),
		nextID:     make(map[string]uint),
	}
}

// Categories returns a CategoryRepository backed by the store
func (s *MemoryStore) Categories() *InMemoryCategoryRepository {
	return &InMemoryCategoryRepository{store: s}
}

// Products returns a ProductRepository backed by the store
func (s *MemoryStore) Products() *InMemoryProductRepository {
	return &InMemoryProductRepository{store: s}
}

// FaultLogs returns a FaultLogRepository backed by the store
func (s *MemoryStore) FaultLogs() *InMemoryFaultLogRepository {
	return &InMemoryFaultLogRepository{store: s}
}

func (s *MemoryStore) allocateID(table string) uint {
	s.nextID[table]++
	return s.nextID[table]
}

func violation(op, entity string, code int, constraint string) error {
	return &fault.UpdateError{Op: op, Entity: entity, Err: &fault.NativeError{Code: code, Constraint: constraint}}
}

func page[T any](items []T, limit, offset int) []T {
	limit, offset = normalizePage(limit, offset)
	if offset >= len(items) {
		return []T{}
	}
	end := offset + limit
	if end > len(items) {
		end = len(items)
	}
	return items[offset:end]
}

// InMemoryCategoryRepository is an in-memory implementation of CategoryRepository
type InMemoryCategoryRepository struct {
	store *MemoryStore
}

// Create stores a new category and assigns its ID
func (r *InMemoryCategoryRepository) Create(ctx context.Context, category *domain.Category) error {
	s := r.store
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if err := checkCategory("create", category); err != nil {
		return err
	}
	for _, existing := range s.categories {
		if existing.Name == category.Name {
			return violation("create", "category", fault.NativeUniqueViolation, "categories.name")
		}
	}

	category.ID = s.allocateID("categories")
	categoryCopy := *category
	s.categories[category.ID] = &categoryCopy
	return nil
}

// GetByID retrieves a category by ID
func (r *InMemoryCategoryRepository) GetByID(ctx context.Context, id uint) (*domain.Category, error) {
	s := r.store
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	category, exists := s.categories[id]
	if !exists {
		return nil, notFound("category", id)
	}

	categoryCopy := *category
	return &categoryCopy, nil
}

// List returns categories ordered by name
func (r *InMemoryCategoryRepository) List(ctx context.Context, limit, offset int) ([]*domain.Category, error) {
	s := r.store
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	categories := make([]*domain.Category, 0, len(s.categories))
	for _, category := range s.categories {
		categoryCopy := *category
		categories = append(categories, &categoryCopy)
	}
	sort.Slice(categories, func(i, j int) bool { return categories[i].Name < categories[j].Name })

	return page(categories, limit, offset), nil
}

// Count returns the number of categories
func (r *InMemoryCategoryRepository) Count(ctx context.Context) (int, error) {
	s := r.store
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	return len(s.categories), nil
}

// Update replaces an existing category
func (r *InMemoryCategoryRepository) Update(ctx context.Context, category *domain.Category) error {
	s := r.store
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if _, exists := s.categories[category.ID]; !exists {
		return notFound("category", category.ID)
	}
	if err := checkCategory("update", category); err != nil {
		return err
	}
	for id, other := range s.categories {
		if id != category.ID && other.Name == category.Name {
			return violation("update", "category", fault.NativeUniqueViolation, "categories.name")
		}
	}

	categoryCopy := *category
	s.categories[category.ID] = &categoryCopy
	return nil
}

// Delete removes a category that no product refers to
func (r *InMemoryCategoryRepository) Delete(ctx context.Context, id uint) error {
	s := r.store
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if _, exists := s.categories[id]; !exists {
		return notFound("category", id)
	}
	for _, product := range s.products {
		if product.CategoryID == id {
			return violation("delete", "category", fault.NativeForeignKeyViolation, "products.category_id")
		}
	}

	delete(s.categories, id)
	return nil
}

// checkCategory enforces the NOT NULL columns of categories
func checkCategory(op string, category *domain.Category) error {
	switch {
	case category.Name == "":
		return violation(op, "category", fault.NativeNotNullViolation, "categories.name")
	case category.Description == "":
		return violation(op, "category", fault.NativeNotNullViolation, "categories.description")
	}
	return nil
}

// InMemoryProductRepository is an in-memory implementation of ProductRepository
type InMemoryProductRepository struct {
	store *MemoryStore
}

// Create stores a new product and assigns its ID
func (r *InMemoryProductRepository) Create(ctx context.Context, product *domain.Product) error {
	s := r.store
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if err := s.checkProduct("create", product); err != nil {
		return err
	}

	product.ID = s.allocateID("products")
	if product.RowVersion == 0 {
		product.RowVersion = 1
	}
	productCopy := *product
	s.products[product.ID] = &productCopy
	return nil
}

// checkProduct enforces the NOT NULL, foreign key and unique SKU constraints
func (s *MemoryStore) checkProduct(op string, product *domain.Product) error {
	switch {
	case product.Name == "":
		return violation(op, "product", fault.NativeNotNullViolation, "products.name")
	case product.Sku == "":
		return violation(op, "product", fault.NativeNotNullViolation, "products.sku")
	}
	if _, exists := s.categories[product.CategoryID]; !exists {
		return violation(op, "product", fault.NativeForeignKeyViolation, "products.category_id")
	}
	for id, other := range s.products {
		if id != product.ID && other.Sku == product.Sku {
			return violation(op, "product", fault.NativeUniqueViolation, "products.sku")
		}
	}
	return nil
}

// GetByID retrieves a product by ID
func (r *InMemoryProductRepository) GetByID(ctx context.Context, id uint) (*domain.Product, error) {
	s := r.store
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	product, exists := s.products[id]
	if !exists {
		return nil, notFound("product", id)
	}

	productCopy := *product
	return &productCopy, nil
}

// List returns products, newest first
func (r *InMemoryProductRepository) List(ctx context.Context, limit, offset int) ([]*domain.Product, error) {
	return r.list(func(*domain.Product) bool { return true }, limit, offset), nil
}

// ListByCategory returns the products of one category, newest first
func (r *InMemoryProductRepository) ListByCategory(ctx context.Context, categoryID uint, limit, offset int) ([]*domain.Product, error) {
	return r.list(func(p *domain.Product) bool { return p.CategoryID == categoryID }, limit, offset), nil
}

func (r *InMemoryProductRepository) list(keep func(*domain.Product) bool, limit, offset int) []*domain.Product {
	s := r.store
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	products := make([]*domain.Product, 0, len(s.products))
	for _, product := range s.products {
		if keep(product) {
			productCopy := *product
			products = append(products, &productCopy)
		}
	}
	sort.Slice(products, func(i, j int) bool { return products[i].ID > products[j].ID })

	return page(products, limit, offset)
}

// Count returns the number of products
func (r *InMemoryProductRepository) Count(ctx context.Context) (int, error) {
	s := r.store
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	return len(s.products), nil
}

// CountByCategory returns the number of products in one category
func (r *InMemoryProductRepository) CountByCategory(ctx context.Context, categoryID uint) (int, error) {
	s := r.store
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	count := 0
	for _, product := range s.products {
		if product.CategoryID == categoryID {
			count++
		}
	}
	return count, nil
}

// Update writes the product if its row version is still current
func (r *InMemoryProductRepository) Update(ctx context.Context, product *domain.Product) error {
	s := r.store
	s.mutex.Lock()
	defer s.mutex.Unlock()

	existing, exists := s.products[product.ID]
	if !exists {
		return notFound("product", product.ID)
	}
	if existing.RowVersion != product.RowVersion {
		return &fault.ConcurrencyError{Entity: "product", ID: product.ID, ExpectedVersion: product.RowVersion}
	}
	if err := s.checkProduct("update", product); err != nil {
		return err
	}

	product.RowVersion++
	if product.UpdateOn == nil {
		now := time.Now().UTC()
		product.UpdateOn = &now
	}
	productCopy := *product
	s.products[product.ID] = &productCopy
	return nil
}

// Delete removes a product by ID
func (r *InMemoryProductRepository) Delete(ctx context.Context, id uint) error {
	s := r.store
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if _, exists := s.products[id]; !exists {
		return notFound("product", id)
	}

	delete(s.products, id)
	return nil
}

// InMemoryFaultLogRepository is an in-memory implementation of FaultLogRepository
type InMemoryFaultLogRepository struct {
	store *MemoryStore
}

// Create appends a fault log entry
func (r *InMemoryFaultLogRepository) Create(ctx context.Context, entry *domain.FaultLog) error {
	s := r.store
	s.mutex.Lock()
	defer s.mutex.Unlock()

	entry.ID = s.allocateID("logs")
	entryCopy := *entry
	s.faultLogs = append(s.faultLogs, &entryCopy)
	return nil
}

// List returns fault logs, newest first
func (r *InMemoryFaultLogRepository) List(ctx context.Context, limit, offset int) ([]*domain.FaultLog, error) {
	s := r.store
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	entries := make([]*domain.FaultLog, 0, len(s.faultLogs))
	for i := len(s.faultLogs) - 1; i >= 0; i-- {
		entryCopy := *s.faultLogs[i]
		entries = append(entries, &entryCopy)
	}

	return page(entries, limit, offset), nil
}

// Count returns the number of fault logs
func (r *InMemoryFaultLogRepository) Count(ctx context.Context) (int, error) {
	s := r.store
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	return len(s.faultLogs), nil
}

// CountByStatus counts fault logs with the given status code
func (r *InMemoryFaultLogRepository) CountByStatus(ctx context.Context, statusCode int) (int, error) {
	s := r.store
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	count := 0
	for _, entry := range s.faultLogs {
		if entry.StatusCode == statusCode {
			count++
		}
	}
	return count, nil
}
