package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"shop-api/internal/domain"
	"shop-api/internal/fault"

	"github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// GormRepositoryTestSuite runs the GORM repositories against in-memory SQLite
type GormRepositoryTestSuite struct {
	suite.Suite
	db         *gorm.DB
	categories *GormCategoryRepository
	products   *GormProductRepository
	faultLogs  *GormFaultLogRepository
	ctx        context.Context
}

func TestGormRepositoryTestSuite(t *testing.T) {
	suite.Run(t, new(GormRepositoryTestSuite))
}

func (s *GormRepositoryTestSuite) SetupTest() {
	s.ctx = context.Background()

	db, err := gorm.Open(sqlite.Open(":memory:?_foreign_keys=on"), &gorm.Config{
		Logger:                 gormlogger.Default.LogMode(gormlogger.Silent),
		SkipDefaultTransaction: true,
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	})
	s.Require().NoError(err)

	// every connection to :memory: is a separate database
	sqlDB, err := db.DB()
	s.Require().NoError(err)
	sqlDB.SetMaxOpenConns(1)

	s.Require().NoError(db.AutoMigrate(Models()...))

	s.db = db
	s.categories = NewGormCategoryRepository(db)
	s.products = NewGormProductRepository(db)
	s.faultLogs = NewGormFaultLogRepository(db)
}

func (s *GormRepositoryTestSuite) TearDownTest() {
	if sqlDB, err := s.db.DB(); err == nil {
		sqlDB.Close()
	}
}

func (s *GormRepositoryTestSuite) createCategory(name string) *domain.Category {
	category, err := domain.NewCategory(name, name+" description")
	s.Require().NoError(err)
	s.Require().NoError(s.categories.Create(s.ctx, category))
	return category
}

func (s *GormRepositoryTestSuite) createProduct(categoryID uint, sku string) *domain.Product {
	product, err := domain.NewProduct(categoryID, "Product "+sku, sku, 100, 0)
	s.Require().NoError(err)
	s.Require().NoError(s.products.Create(s.ctx, product))
	return product
}

func (s *GormRepositoryTestSuite) TestCategoryCRUD() {
	category := s.createCategory("Lighting")
	s.NotZero(category.ID)

	got, err := s.categories.GetByID(s.ctx, category.ID)
	s.Require().NoError(err)
	s.Equal("Lighting", got.Name)

	s.Require().NoError(got.Update("Lamps", "All lamps"))
	s.Require().NoError(s.categories.Update(s.ctx, got))

	got, err = s.categories.GetByID(s.ctx, category.ID)
	s.Require().NoError(err)
	s.Equal("Lamps", got.Name)
	s.NotNil(got.UpdateOn)

	count, err := s.categories.Count(s.ctx)
	s.Require().NoError(err)
	s.Equal(1, count)

	s.Require().NoError(s.categories.Delete(s.ctx, category.ID))
	_, err = s.categories.GetByID(s.ctx, category.ID)
	s.ErrorIs(err, ErrNotFound)
}

func (s *GormRepositoryTestSuite) TestCategoryList() {
	s.createCategory("Tools")
	s.createCategory("Audio")
	s.createCategory("Lighting")

	categories, err := s.categories.List(s.ctx, 2, 0)
	s.Require().NoError(err)
	s.Require().Len(categories, 2)
	s.Equal("Audio", categories[0].Name)
	s.Equal("Lighting", categories[1].Name)

	categories, err = s.categories.List(s.ctx, 2, 2)
	s.Require().NoError(err)
	s.Require().Len(categories, 1)
	s.Equal("Tools", categories[0].Name)
}

func (s *GormRepositoryTestSuite) TestCategoryDuplicateNameIsWrappedUniqueViolation() {
	s.createCategory("Lighting")

	duplicate, err := domain.NewCategory("Lighting", "again")
	s.Require().NoError(err)
	err = s.categories.Create(s.ctx, duplicate)

	var updateErr *fault.UpdateError
	s.Require().True(errors.As(err, &updateErr))
	s.Equal("create", updateErr.Op)

	var driverErr sqlite3.Error
	s.Require().True(errors.As(updateErr.Err, &driverErr))
	s.Equal(sqlite3.ErrConstraintUnique, driverErr.ExtendedCode)

	res := fault.ClassifyError(err)
	s.Equal(fault.StatusDuplicate, res.StatusCode)
	s.Equal(fault.MessageDuplicate, res.Message)
}

func (s *GormRepositoryTestSuite) TestDeleteReferencedCategoryIsDependent() {
	category := s.createCategory("Lighting")
	s.createProduct(category.ID, "LAMP-01")

	err := s.categories.Delete(s.ctx, category.ID)
	s.Require().Error(err)

	res := fault.ClassifyError(err)
	s.Equal(fault.StatusDependent, res.StatusCode)
	s.Equal(fault.MessageDependent, res.Message)

	_, err = s.categories.GetByID(s.ctx, category.ID)
	s.NoError(err, "category must survive the rejected delete")
}

func (s *GormRepositoryTestSuite) TestProductWithUnknownCategoryIsDependent() {
	product, err := domain.NewProduct(999, "Orphan", "ORPHAN-1", 10, 0)
	s.Require().NoError(err)

	err = s.products.Create(s.ctx, product)
	s.Equal(fault.StatusDependent, fault.ClassifyError(err).StatusCode)
}

func (s *GormRepositoryTestSuite) TestProductDuplicateSku() {
	category := s.createCategory("Lighting")
	s.createProduct(category.ID, "LAMP-01")

	duplicate, err := domain.NewProduct(category.ID, "Another lamp", "LAMP-01", 10, 0)
	s.Require().NoError(err)

	err = s.products.Create(s.ctx, duplicate)
	s.Equal(fault.StatusDuplicate, fault.ClassifyError(err).StatusCode)
}

func (s *GormRepositoryTestSuite) TestProductUpdateBumpsRowVersion() {
	category := s.createCategory("Lighting")
	product := s.createProduct(category.ID, "LAMP-01")
	s.Equal(1, product.RowVersion)

	s.Require().NoError(product.Update(category.ID, "Desk Lamp", "LAMP-01", 80, 100))
	s.Require().NoError(s.products.Update(s.ctx, product))
	s.Equal(2, product.RowVersion)

	stored, err := s.products.GetByID(s.ctx, product.ID)
	s.Require().NoError(err)
	s.Equal(2, stored.RowVersion)
	s.Equal(80, stored.Price)
	s.Equal(100, stored.OldPrice)
}

func (s *GormRepositoryTestSuite) TestProductStaleUpdateIsConcurrencyFault() {
	category := s.createCategory("Lighting")
	product := s.createProduct(category.ID, "LAMP-01")

	first, err := s.products.GetByID(s.ctx, product.ID)
	s.Require().NoError(err)
	second, err := s.products.GetByID(s.ctx, product.ID)
	s.Require().NoError(err)

	s.Require().NoError(first.Update(category.ID, "First writer", "LAMP-01", 90, 0))
	s.Require().NoError(s.products.Update(s.ctx, first))

	s.Require().NoError(second.Update(category.ID, "Second writer", "LAMP-01", 70, 0))
	err = s.products.Update(s.ctx, second)

	var concurrencyErr *fault.ConcurrencyError
	s.Require().True(errors.As(err, &concurrencyErr))
	s.Equal(1, concurrencyErr.ExpectedVersion)

	res := fault.ClassifyError(err)
	s.Equal(fault.StatusDefault, res.StatusCode)
	s.Equal(fault.MessageConcurrency, res.Message)

	stored, err := s.products.GetByID(s.ctx, product.ID)
	s.Require().NoError(err)
	s.Equal("First writer", stored.Name)
}

func (s *GormRepositoryTestSuite) TestProductUpdateMissing() {
	err := s.products.Update(s.ctx, &domain.Product{ID: 42, CategoryID: 1, Name: "x", Sku: "x", RowVersion: 1})
	s.ErrorIs(err, ErrNotFound)
}

func (s *GormRepositoryTestSuite) TestProductListing() {
	lighting := s.createCategory("Lighting")
	audio := s.createCategory("Audio")
	first := s.createProduct(lighting.ID, "LAMP-01")
	second := s.createProduct(lighting.ID, "LAMP-02")
	s.createProduct(audio.ID, "SPK-01")

	products, err := s.products.ListByCategory(s.ctx, lighting.ID, 10, 0)
	s.Require().NoError(err)
	s.Require().Len(products, 2)
	s.Equal(second.ID, products[0].ID)
	s.Equal(first.ID, products[1].ID)

	all, err := s.products.List(s.ctx, 0, 0)
	s.Require().NoError(err)
	s.Len(all, 3)

	count, err := s.products.Count(s.ctx)
	s.Require().NoError(err)
	s.Equal(3, count)

	inAudio, err := s.products.CountByCategory(s.ctx, audio.ID)
	s.Require().NoError(err)
	s.Equal(1, inAudio)
}

func (s *GormRepositoryTestSuite) TestProductDelete() {
	category := s.createCategory("Lighting")
	product := s.createProduct(category.ID, "LAMP-01")

	s.Require().NoError(s.products.Delete(s.ctx, product.ID))
	s.ErrorIs(s.products.Delete(s.ctx, product.ID), ErrNotFound)
}

func (s *GormRepositoryTestSuite) TestReadFailureIsRawDatabaseFault() {
	s.Require().NoError(s.db.Exec("DROP TABLE products").Error)

	_, err := s.products.GetByID(s.ctx, 1)
	s.Require().Error(err)

	var updateErr *fault.UpdateError
	s.False(errors.As(err, &updateErr), "reads are not wrapped")

	f := fault.FromError(err)
	s.Equal(fault.KindDatabase, f.Kind)
	s.Equal(fault.DefaultResult(), fault.Classify(f))
}

func (s *GormRepositoryTestSuite) TestFaultLogs() {
	for i, code := range []int{531, 500, 531} {
		entry, err := domain.NewFaultLog("CreateCategory", code, "msg", "wrapped", "detail", "req", time.Now().Add(time.Duration(i)*time.Second))
		s.Require().NoError(err)
		s.Require().NoError(s.faultLogs.Create(s.ctx, entry))
	}

	entries, err := s.faultLogs.List(s.ctx, 10, 0)
	s.Require().NoError(err)
	s.Require().Len(entries, 3)
	s.Equal(531, entries[0].StatusCode)
	s.True(entries[0].LogTime.After(entries[1].LogTime))

	count, err := s.faultLogs.CountByStatus(s.ctx, 531)
	s.Require().NoError(err)
	s.Equal(2, count)

	total, err := s.faultLogs.Count(s.ctx)
	s.Require().NoError(err)
	s.Equal(3, total)
}

func TestNormalizePage(t *testing.T) {
	tests := []struct {
		limit, offset         int
		wantLimit, wantOffset int
	}{
		{0, 0, 20, 0},
		{10, 5, 10, 5},
		{500, -1, 100, 0},
	}

	for _, tt := range tests {
		limit, offset := normalizePage(tt.limit, tt.offset)
		assert.Equal(t, tt.wantLimit, limit)
		assert.Equal(t, tt.wantOffset, offset)
	}
}

func TestHandleErrors(t *testing.T) {
	assert.NoError(t, handleReadError(nil))
	assert.NoError(t, handleWriteError(nil, "create", "category"))
	assert.ErrorIs(t, handleReadError(gorm.ErrRecordNotFound), ErrNotFound)

	cause := errors.New("boom")
	assert.Same(t, cause, handleReadError(cause))

	err := handleWriteError(cause, "create", "category")
	var updateErr *fault.UpdateError
	require.True(t, errors.As(err, &updateErr))
	assert.Same(t, cause, updateErr.Err)
	assert.Equal(t, "create category failed: boom", err.Error())
}
