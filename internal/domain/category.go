package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"
)

const (
	MaxNameLength        = 50
	MaxDescriptionLength = 2000
)

var (
	ErrInvalidName        = errors.New("name must be between 1 and 50 characters")
	ErrInvalidDescription = errors.New("description must be between 1 and 2000 characters")
)

// Category groups products of the storefront catalog
type Category struct {
	ID          uint       `json:"id" gorm:"primaryKey"`
	Name        string     `json:"name" gorm:"size:50;not null;uniqueIndex"`
	Description string     `json:"description" gorm:"size:2000;not null"`
	CreateOn    time.Time  `json:"create_on" gorm:"not null"`
	UpdateOn    *time.Time `json:"update_on"`
}

// NewCategory creates a new Category entity with validation
func NewCategory(name, description string) (*Category, error) {
	name = strings.TrimSpace(name)
	description = strings.TrimSpace(description)
	if err := validateCategory(name, description); err != nil {
		return nil, err
	}

	return &Category{
		Name:        name,
		Description: description,
		CreateOn:    time.Now().UTC(),
	}, nil
}

// TableName returns the table name for GORM
func (Category) TableName() string {
	return "categories"
}

// Update changes name and description
func (c *Category) Update(name, description string) error {
	name = strings.TrimSpace(name)
	description = strings.TrimSpace(description)
	if err := validateCategory(name, description); err != nil {
		return err
	}

	now := time.Now().UTC()
	c.Name = name
	c.Description = description
	c.UpdateOn = &now
	return nil
}

func validateCategory(name, description string) error {
	if !lengthBetween(name, 1, MaxNameLength) {
		return ErrInvalidName
	}
	if !lengthBetween(description, 1, MaxDescriptionLength) {
		return ErrInvalidDescription
	}
	return nil
}

// lengthBetween counts characters, not bytes
func lengthBetween(s string, min, max int) bool {
	n := utf8.RuneCountInString(s)
	return n >= min && n <= max
}

// String returns a string representation of the Category
func (c *Category) String() string {
	return fmt.Sprintf("Category{ID: %d, Name: %s}", c.ID, c.Name)
}
