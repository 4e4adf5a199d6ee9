package repository

import (
	"context"
	"errors"
	"fmt"

	"shop-api/internal/fault"

	"gorm.io/gorm"
)

// ErrNotFound is returned when the requested row does not exist
var ErrNotFound = errors.New("record not found")

// Constants for database queries
const (
	QueryByID           = "id = ?"
	QueryByIDAndVersion = "id = ? AND row_version = ?"
	QueryByCategory     = "category_id = ?"
)

// handleReadError maps a failed query. Driver errors are returned untouched
// so the fault classifier sees the raw database failure.
func handleReadError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}

// handleWriteError wraps a failed write so that the driver error is the
// immediate cause of the returned *fault.UpdateError.
func handleWriteError(err error, op, entity string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return &fault.UpdateError{Op: op, Entity: entity, Err: err}
}

// findByID loads one row into dest, reporting a missing row as ErrNotFound
func findByID(ctx context.Context, db *gorm.DB, dest interface{}, entity string, id uint) error {
	err := db.WithContext(ctx).First(dest, QueryByID, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return notFound(entity, id)
	}
	return err
}

// notFound decorates ErrNotFound with the entity and id that were missing
func notFound(entity string, id uint) error {
	return fmt.Errorf("%w: %s %d", ErrNotFound, entity, id)
}

// normalizePage applies the default and maximum page size
func normalizePage(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
