package http

import (
	"time"

	"shop-api/internal/domain"
	"shop-api/internal/service"
	"shop-api/pkg/protector"
	"shop-api/pkg/validator"
)

// Token purposes bind a protected ID to the entity type it was issued for
const (
	PurposeCategory = "category"
	PurposeProduct  = "product"
)

// CategoryRequestDTO represents the HTTP request for creating or updating a category
type CategoryRequestDTO struct {
	Name        string `json:"name" validate:"required,max=50,trimmed"`
	Description string `json:"description" validate:"required,max=2000"`
}

// CreateProductRequestDTO represents the HTTP request for creating a product
type CreateProductRequestDTO struct {
	CategoryID string `json:"category_id" validate:"required"`
	Name       string `json:"name" validate:"required,max=50,trimmed"`
	Sku        string `json:"sku" validate:"required,max=50,sku"`
	Price      int    `json:"price" validate:"min=0"`
	OldPrice   int    `json:"old_price" validate:"min=0"`
}

// UpdateProductRequestDTO represents the HTTP request for updating a product.
// RowVersion is the version the client last read.
type UpdateProductRequestDTO struct {
	CreateProductRequestDTO
	RowVersion int `json:"row_version" validate:"required,min=1"`
}

// PublishProductRequestDTO represents the HTTP request for publishing a product
type PublishProductRequestDTO struct {
	RowVersion int `json:"row_version" validate:"required,min=1"`
}

// CategoryResponseDTO represents the HTTP response for a category
type CategoryResponseDTO struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	CreateOn    time.Time  `json:"create_on"`
	UpdateOn    *time.Time `json:"update_on,omitempty"`
}

// ProductResponseDTO represents the HTTP response for a product
type ProductResponseDTO struct {
	ID          string     `json:"id"`
	CategoryID  string     `json:"category_id"`
	Name        string     `json:"name"`
	Sku         string     `json:"sku"`
	Price       int        `json:"price"`
	OldPrice    int        `json:"old_price"`
	Published   bool       `json:"published"`
	PublishDate *time.Time `json:"publish_date,omitempty"`
	RowVersion  int        `json:"row_version"`
	CreateOn    time.Time  `json:"create_on"`
	UpdateOn    *time.Time `json:"update_on,omitempty"`
}

// InstallmentResponseDTO represents a price split over monthly payments
type InstallmentResponseDTO struct {
	ProductID string `json:"product_id"`
	Months    int    `json:"months"`
	Monthly   int    `json:"monthly"`
}

// FaultLogResponseDTO represents a stored fault log entry
type FaultLogResponseDTO struct {
	ID         uint      `json:"id"`
	ActionName string    `json:"action_name"`
	StatusCode int       `json:"status_code"`
	Message    string    `json:"message"`
	Kind       string    `json:"kind"`
	RequestID  string    `json:"request_id,omitempty"`
	LogTime    time.Time `json:"log_time"`
}

// ListResponseDTO represents a page of items
type ListResponseDTO[T any] struct {
	Items      []T  `json:"items"`
	Total      int  `json:"total"`
	Limit      int  `json:"limit"`
	Offset     int  `json:"offset"`
	HasNext    bool `json:"has_next"`
	HasPrev    bool `json:"has_prev"`
	TotalPages int  `json:"total_pages"`
}

// ErrorResponseDTO represents a client-facing error response
type ErrorResponseDTO struct {
	Error   string      `json:"error"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

// FaultResponseDTO is the body of a classified server fault
type FaultResponseDTO struct {
	StatusCode int    `json:"status_code"`
	Message    string `json:"message"`
}

// ValidationErrorResponseDTO represents a validation error response
type ValidationErrorResponseDTO struct {
	Error   string                              `json:"error"`
	Message string                              `json:"message"`
	Code    string                              `json:"code"`
	Fields  []validator.ValidationFieldErrorDTO `json:"fields"`
}

// HealthResponseDTO represents the health check response
type HealthResponseDTO struct {
	Status    string            `json:"status"`
	Timestamp time.Time         `json:"timestamp"`
	Version   string            `json:"version"`
	Services  map[string]string `json:"services"`
}

// Conversion functions from domain to DTO

// ToProductInput converts the DTO to a service input. The category token is
// resolved by the caller.
func (dto *CreateProductRequestDTO) ToProductInput(categoryID uint) service.ProductInput {
	return service.ProductInput{
		CategoryID: categoryID,
		Name:       dto.Name,
		Sku:        dto.Sku,
		Price:      dto.Price,
		OldPrice:   dto.OldPrice,
	}
}

// FromCategory converts a domain category to DTO
func FromCategory(p protector.Protector, category *domain.Category) (*CategoryResponseDTO, error) {
	id, err := p.ProtectID(PurposeCategory, category.ID)
	if err != nil {
		return nil, err
	}
	return &CategoryResponseDTO{
		ID:          id,
		Name:        category.Name,
		Description: category.Description,
		CreateOn:    category.CreateOn,
		UpdateOn:    category.UpdateOn,
	}, nil
}

// FromProduct converts a domain product to DTO
func FromProduct(p protector.Protector, product *domain.Product) (*ProductResponseDTO, error) {
	id, err := p.ProtectID(PurposeProduct, product.ID)
	if err != nil {
		return nil, err
	}
	categoryID, err := p.ProtectID(PurposeCategory, product.CategoryID)
	if err != nil {
		return nil, err
	}
	return &ProductResponseDTO{
		ID:          id,
		CategoryID:  categoryID,
		Name:        product.Name,
		Sku:         product.Sku,
		Price:       product.Price,
		OldPrice:    product.OldPrice,
		Published:   product.Published,
		PublishDate: product.PublishDate,
		RowVersion:  product.RowVersion,
		CreateOn:    product.CreateOn,
		UpdateOn:    product.UpdateOn,
	}, nil
}

// FromFaultLog converts a fault log entry to DTO. Detail is not exposed.
func FromFaultLog(entry *domain.FaultLog) *FaultLogResponseDTO {
	return &FaultLogResponseDTO{
		ID:         entry.ID,
		ActionName: entry.ActionName,
		StatusCode: entry.StatusCode,
		Message:    entry.Message,
		Kind:       entry.Kind,
		RequestID:  entry.RequestID,
		LogTime:    entry.LogTime,
	}
}

// NewListResponse builds a page with pagination info
func NewListResponse[T any](items []T, total, limit, offset int) *ListResponseDTO[T] {
	if items == nil {
		items = []T{}
	}
	totalPages := 0
	if limit > 0 {
		totalPages = (total + limit - 1) / limit
	}
	return &ListResponseDTO[T]{
		Items:      items,
		Total:      total,
		Limit:      limit,
		Offset:     offset,
		HasNext:    offset+limit < total,
		HasPrev:    offset > 0,
		TotalPages: totalPages,
	}
}

// NewErrorResponse creates a new error response
func NewErrorResponse(code, message string, details interface{}) *ErrorResponseDTO {
	return &ErrorResponseDTO{
		Error:   code,
		Message: message,
		Details: details,
	}
}

// NewValidationErrorResponse creates a new validation error response
func NewValidationErrorResponse(message string, fields []validator.ValidationFieldErrorDTO) *ValidationErrorResponseDTO {
	return &ValidationErrorResponseDTO{
		Error:   "validation_failed",
		Message: message,
		Code:    "VALIDATION_ERROR",
		Fields:  fields,
	}
}

// NewHealthResponse creates a new health response
func NewHealthResponse(status, version string, services map[string]string) *HealthResponseDTO {
	return &HealthResponseDTO{
		Status:    status,
		Timestamp: time.Now(),
		Version:   version,
		Services:  services,
	}
}
