package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

const MaxSkuLength = 50

var (
	ErrInvalidSku       = errors.New("sku must be between 1 and 50 characters")
	ErrInvalidPrice     = errors.New("price cannot be negative")
	ErrPriceNotReduced  = errors.New("old price must be greater than price")
	ErrCategoryRequired = errors.New("category is required")
	ErrAlreadyPublished = errors.New("product is already published")
)

// Product is a sellable item. RowVersion guards concurrent updates: a write
// only succeeds against the version it was read with.
type Product struct {
	ID          uint       `json:"id" gorm:"primaryKey"`
	CategoryID  uint       `json:"category_id" gorm:"not null;index"`
	Category    *Category  `json:"-" gorm:"foreignKey:CategoryID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT"`
	Name        string     `json:"name" gorm:"size:50;not null"`
	Sku         string     `json:"sku" gorm:"size:50;not null;uniqueIndex"`
	Price       int        `json:"price" gorm:"not null"`
	OldPrice    int        `json:"old_price" gorm:"not null;default:0"`
	Published   bool       `json:"published" gorm:"not null;default:false"`
	PublishDate *time.Time `json:"publish_date"`
	RowVersion  int        `json:"row_version" gorm:"not null;default:1"`
	CreateOn    time.Time  `json:"create_on" gorm:"not null"`
	UpdateOn    *time.Time `json:"update_on"`
}

// NewProduct creates a new Product entity with validation
func NewProduct(categoryID uint, name, sku string, price, oldPrice int) (*Product, error) {
	name = strings.TrimSpace(name)
	sku = strings.TrimSpace(sku)
	if err := validateProduct(categoryID, name, sku, price, oldPrice); err != nil {
		return nil, err
	}

	return &Product{
		CategoryID: categoryID,
		Name:       name,
		Sku:        sku,
		Price:      price,
		OldPrice:   oldPrice,
		RowVersion: 1,
		CreateOn:   time.Now().UTC(),
	}, nil
}

// TableName returns the table name for GORM
func (Product) TableName() string {
	return "products"
}

// Update changes the editable fields. The row version is left to the
// repository, which bumps it when the write is accepted.
func (p *Product) Update(categoryID uint, name, sku string, price, oldPrice int) error {
	name = strings.TrimSpace(name)
	sku = strings.TrimSpace(sku)
	if err := validateProduct(categoryID, name, sku, price, oldPrice); err != nil {
		return err
	}

	now := time.Now().UTC()
	p.CategoryID = categoryID
	p.Name = name
	p.Sku = sku
	p.Price = price
	p.OldPrice = oldPrice
	p.UpdateOn = &now
	return nil
}

// Publish makes the product visible in the storefront
func (p *Product) Publish() error {
	if p.Published {
		return ErrAlreadyPublished
	}
	now := time.Now().UTC()
	p.Published = true
	p.PublishDate = &now
	p.UpdateOn = &now
	return nil
}

// Discount returns the percentage saved against OldPrice, 0 when not reduced
func (p *Product) Discount() int {
	if p.OldPrice <= 0 || p.OldPrice <= p.Price {
		return 0
	}
	return (p.OldPrice - p.Price) * 100 / p.OldPrice
}

func validateProduct(categoryID uint, name, sku string, price, oldPrice int) error {
	if categoryID == 0 {
		return ErrCategoryRequired
	}
	if !lengthBetween(name, 1, MaxNameLength) {
		return ErrInvalidName
	}
	if !lengthBetween(sku, 1, MaxSkuLength) {
		return ErrInvalidSku
	}
	if price < 0 || oldPrice < 0 {
		return ErrInvalidPrice
	}
	if oldPrice != 0 && oldPrice <= price {
		return ErrPriceNotReduced
	}
	return nil
}

// String returns a string representation of the Product
func (p *Product) String() string {
	return fmt.Sprintf("Product{ID: %d, Sku: %s, Name: %s, Price: %d}", p.ID, p.Sku, p.Name, p.Price)
}
