package fixtures

import (
	"fmt"
	"time"

	"shop-api/internal/domain"
	"shop-api/internal/fault"

	mssql "github.com/denisenkom/go-mssqldb"
	"github.com/jackc/pgx/v5/pgconn"
)

// Catalog domain fixtures

// ValidCategory returns a stored category for testing
func ValidCategory() *domain.Category {
	category, _ := domain.NewCategory("Lighting", "Lamps and bulbs")
	category.ID = 1
	return category
}

// ValidProduct returns a stored, unpublished product for testing
func ValidProduct() *domain.Product {
	product, _ := domain.NewProduct(1, "Desk Lamp", "LAMP-01", 900, 1200)
	product.ID = 10
	return product
}

// ValidProductWithCustomData returns a stored product with custom data
func ValidProductWithCustomData(id, categoryID uint, sku string, price int) *domain.Product {
	product, _ := domain.NewProduct(categoryID, "Product "+sku, sku, price, 0)
	product.ID = id
	return product
}

// MultipleValidProducts returns several products of category 1
func MultipleValidProducts() []*domain.Product {
	products := make([]*domain.Product, 0, 3)
	for i := 1; i <= 3; i++ {
		products = append(products, ValidProductWithCustomData(uint(i), 1, fmt.Sprintf("LAMP-%02d", i), 100*i))
	}
	return products
}

// ValidFaultLog returns a fault log entry for testing
func ValidFaultLog() *domain.FaultLog {
	entry, _ := domain.NewFaultLog("CreateCategory", fault.StatusDuplicate, fault.MessageDuplicate, "wrapped",
		"create category failed: duplicate key", "req-1", time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC))
	return entry
}

// Driver failure fixtures

// DuplicateKeyWrite returns a failed insert as the repositories report it
func DuplicateKeyWrite(entity string) error {
	return &fault.UpdateError{Op: "create", Entity: entity, Err: mssql.Error{Number: fault.NativeUniqueViolation, Message: "Cannot insert duplicate key"}}
}

// ForeignKeyWrite returns a write refused by a foreign key constraint
func ForeignKeyWrite(op, entity string) error {
	return &fault.UpdateError{Op: op, Entity: entity, Err: &pgconn.PgError{Code: "23503", ConstraintName: "fk_products_category"}}
}

// ConnectionLost returns a raw read failure of an unreachable database, as
// pgx reports it when the server cannot be dialed
func ConnectionLost() error {
	return &pgconn.ConnectError{Config: &pgconn.Config{Host: "db", Port: 5432, User: "shop", Database: "shop"}}
}

// ConnectionDropped returns a connection failure reported by the server
func ConnectionDropped() error {
	return &pgconn.PgError{Code: "08006", Message: "connection failure"}
}

// StaleProduct returns the concurrency failure of the given product
func StaleProduct(id uint, version int) error {
	return &fault.ConcurrencyError{Entity: "product", ID: id, ExpectedVersion: version}
}
