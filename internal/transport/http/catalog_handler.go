package http

import (
	"errors"
	"net/http"
	"strconv"

	"shop-api/internal/errs"
	"shop-api/internal/service"
	"shop-api/pkg/protector"
	"shop-api/pkg/validator"

	"github.com/labstack/echo/v4"
)

// Constants for validation and limits
const (
	DefaultLimit = 10
	MaxLimit     = 100
)

// Error messages
const (
	ErrMsgMissingID = "missing id"
)

// HealthChecker reports whether a backing store is reachable
type HealthChecker interface {
	HealthCheck() error
}

// CatalogHandler handles HTTP requests for categories and products
type CatalogHandler struct {
	catalog   service.CatalogService
	faultLogs service.FaultLogService
	protector protector.Protector
	validator validator.Validator
	database  HealthChecker
	version   string
}

// NewCatalogHandler creates a new catalog handler. database may be nil when
// the catalog is kept in memory.
func NewCatalogHandler(
	catalog service.CatalogService,
	faultLogs service.FaultLogService,
	protector protector.Protector,
	validator validator.Validator,
	database HealthChecker,
	version string,
) *CatalogHandler {
	return &CatalogHandler{
		catalog:   catalog,
		faultLogs: faultLogs,
		protector: protector,
		validator: validator,
		database:  database,
		version:   version,
	}
}

// RegisterRoutes registers all catalog routes
func (h *CatalogHandler) RegisterRoutes(e *echo.Echo) {
	api := e.Group("/api/v1")

	categories := api.Group("/categories")
	categories.POST("", named("CreateCategory", h.CreateCategory))
	categories.GET("", named("ListCategories", h.ListCategories))
	categories.GET("/:id", named("GetCategory", h.GetCategory))
	categories.PUT("/:id", named("UpdateCategory", h.UpdateCategory))
	categories.DELETE("/:id", named("DeleteCategory", h.DeleteCategory))
	categories.GET("/:id/products", named("ListCategoryProducts", h.ListCategoryProducts))

	products := api.Group("/products")
	products.POST("", named("CreateProduct", h.CreateProduct))
	products.GET("", named("ListProducts", h.ListProducts))
	products.GET("/:id", named("GetProduct", h.GetProduct))
	products.PUT("/:id", named("UpdateProduct", h.UpdateProduct))
	products.DELETE("/:id", named("DeleteProduct", h.DeleteProduct))
	products.POST("/:id/publish", named("PublishProduct", h.PublishProduct))
	products.GET("/:id/installments", named("InstallmentPrice", h.InstallmentPrice))

	api.GET("/fault-logs", named("ListFaultLogs", h.ListFaultLogs))

	// Health check
	api.GET("/health", h.HealthCheck)
}

// named records the action name used when a failure of fn is logged
func named(action string, fn echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		c.Set(ContextKeyAction, action)
		return fn(c)
	}
}

// CreateCategory creates a new category
// @Summary Create a category
// @Tags categories
// @Accept json
// @Produce json
// @Param category body CategoryRequestDTO true "Category data"
// @Success 201 {object} CategoryResponseDTO
// @Failure 400 {object} ErrorResponseDTO
// @Failure 531 {object} FaultResponseDTO
// @Router /api/v1/categories [post]
func (h *CatalogHandler) CreateCategory(c echo.Context) error {
	var req CategoryRequestDTO
	if err := h.bind(c, &req); err != nil {
		return err
	}

	category, err := h.catalog.CreateCategory(c.Request().Context(), req.Name, req.Description)
	if err != nil {
		return err
	}

	res, err := FromCategory(h.protector, category)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, res)
}

// GetCategory retrieves a category by its protected ID
// @Summary Get a category
// @Tags categories
// @Produce json
// @Param id path string true "Protected category ID"
// @Success 200 {object} CategoryResponseDTO
// @Failure 404 {object} ErrorResponseDTO
// @Failure 522 {object} FaultResponseDTO
// @Failure 523 {object} FaultResponseDTO
// @Router /api/v1/categories/{id} [get]
func (h *CatalogHandler) GetCategory(c echo.Context) error {
	id, err := h.pathID(c, PurposeCategory)
	if err != nil {
		return err
	}

	category, err := h.catalog.GetCategory(c.Request().Context(), id)
	if err != nil {
		return err
	}

	res, err := FromCategory(h.protector, category)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, res)
}

// ListCategories retrieves a page of categories
// @Summary List categories
// @Tags categories
// @Produce json
// @Param limit query int false "Number of categories to return (max 100)" default(10)
// @Param offset query int false "Number of categories to skip" default(0)
// @Success 200 {object} ListResponseDTO[CategoryResponseDTO]
// @Router /api/v1/categories [get]
func (h *CatalogHandler) ListCategories(c echo.Context) error {
	limit, offset, err := pagination(c)
	if err != nil {
		return err
	}

	categories, total, err := h.catalog.ListCategories(c.Request().Context(), limit, offset)
	if err != nil {
		return err
	}

	items := make([]*CategoryResponseDTO, 0, len(categories))
	for _, category := range categories {
		dto, err := FromCategory(h.protector, category)
		if err != nil {
			return err
		}
		items = append(items, dto)
	}
	return c.JSON(http.StatusOK, NewListResponse(items, total, limit, offset))
}

// UpdateCategory renames or redescribes a category
// @Summary Update a category
// @Tags categories
// @Accept json
// @Produce json
// @Param id path string true "Protected category ID"
// @Param category body CategoryRequestDTO true "Category data"
// @Success 200 {object} CategoryResponseDTO
// @Failure 531 {object} FaultResponseDTO
// @Router /api/v1/categories/{id} [put]
func (h *CatalogHandler) UpdateCategory(c echo.Context) error {
	id, err := h.pathID(c, PurposeCategory)
	if err != nil {
		return err
	}

	var req CategoryRequestDTO
	if err := h.bind(c, &req); err != nil {
		return err
	}

	category, err := h.catalog.UpdateCategory(c.Request().Context(), id, req.Name, req.Description)
	if err != nil {
		return err
	}

	res, err := FromCategory(h.protector, category)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, res)
}

// DeleteCategory deletes a category that no product refers to
// @Summary Delete a category
// @Tags categories
// @Param id path string true "Protected category ID"
// @Success 204
// @Failure 532 {object} FaultResponseDTO
// @Router /api/v1/categories/{id} [delete]
func (h *CatalogHandler) DeleteCategory(c echo.Context) error {
	id, err := h.pathID(c, PurposeCategory)
	if err != nil {
		return err
	}

	if err := h.catalog.DeleteCategory(c.Request().Context(), id); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// ListCategoryProducts retrieves the products of one category
// @Summary List products of a category
// @Tags categories
// @Produce json
// @Param id path string true "Protected category ID"
// @Success 200 {object} ListResponseDTO[ProductResponseDTO]
// @Router /api/v1/categories/{id}/products [get]
func (h *CatalogHandler) ListCategoryProducts(c echo.Context) error {
	id, err := h.pathID(c, PurposeCategory)
	if err != nil {
		return err
	}
	limit, offset, err := pagination(c)
	if err != nil {
		return err
	}

	products, total, err := h.catalog.ListCategoryProducts(c.Request().Context(), id, limit, offset)
	if err != nil {
		return err
	}

	items := make([]*ProductResponseDTO, 0, len(products))
	for _, product := range products {
		dto, err := FromProduct(h.protector, product)
		if err != nil {
			return err
		}
		items = append(items, dto)
	}
	return c.JSON(http.StatusOK, NewListResponse(items, total, limit, offset))
}

// CreateProduct creates a new product
// @Summary Create a product
// @Tags products
// @Accept json
// @Produce json
// @Param product body CreateProductRequestDTO true "Product data"
// @Success 201 {object} ProductResponseDTO
// @Failure 530 {object} FaultResponseDTO
// @Failure 531 {object} FaultResponseDTO
// @Failure 532 {object} FaultResponseDTO
// @Router /api/v1/products [post]
func (h *CatalogHandler) CreateProduct(c echo.Context) error {
	var req CreateProductRequestDTO
	if err := h.bind(c, &req); err != nil {
		return err
	}

	categoryID, err := h.protector.UnprotectID(PurposeCategory, req.CategoryID)
	if err != nil {
		return err
	}

	product, err := h.catalog.CreateProduct(c.Request().Context(), req.ToProductInput(categoryID))
	if err != nil {
		return err
	}

	res, err := FromProduct(h.protector, product)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, res)
}

// GetProduct retrieves a product by its protected ID
// @Summary Get a product
// @Tags products
// @Produce json
// @Param id path string true "Protected product ID"
// @Success 200 {object} ProductResponseDTO
// @Failure 404 {object} ErrorResponseDTO
// @Router /api/v1/products/{id} [get]
func (h *CatalogHandler) GetProduct(c echo.Context) error {
	id, err := h.pathID(c, PurposeProduct)
	if err != nil {
		return err
	}

	product, err := h.catalog.GetProduct(c.Request().Context(), id)
	if err != nil {
		return err
	}

	res, err := FromProduct(h.protector, product)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, res)
}

// ListProducts retrieves a page of products
// @Summary List products
// @Tags products
// @Produce json
// @Success 200 {object} ListResponseDTO[ProductResponseDTO]
// @Router /api/v1/products [get]
func (h *CatalogHandler) ListProducts(c echo.Context) error {
	limit, offset, err := pagination(c)
	if err != nil {
		return err
	}

	products, total, err := h.catalog.ListProducts(c.Request().Context(), limit, offset)
	if err != nil {
		return err
	}

	items := make([]*ProductResponseDTO, 0, len(products))
	for _, product := range products {
		dto, err := FromProduct(h.protector, product)
		if err != nil {
			return err
		}
		items = append(items, dto)
	}
	return c.JSON(http.StatusOK, NewListResponse(items, total, limit, offset))
}

// UpdateProduct updates a product the client last read at row_version
// @Summary Update a product
// @Tags products
// @Accept json
// @Produce json
// @Param id path string true "Protected product ID"
// @Param product body UpdateProductRequestDTO true "Product data"
// @Success 200 {object} ProductResponseDTO
// @Failure 500 {object} FaultResponseDTO "changed by another user"
// @Router /api/v1/products/{id} [put]
func (h *CatalogHandler) UpdateProduct(c echo.Context) error {
	id, err := h.pathID(c, PurposeProduct)
	if err != nil {
		return err
	}

	var req UpdateProductRequestDTO
	if err := h.bind(c, &req); err != nil {
		return err
	}

	categoryID, err := h.protector.UnprotectID(PurposeCategory, req.CategoryID)
	if err != nil {
		return err
	}

	product, err := h.catalog.UpdateProduct(c.Request().Context(), id, req.RowVersion, req.ToProductInput(categoryID))
	if err != nil {
		return err
	}

	res, err := FromProduct(h.protector, product)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, res)
}

// PublishProduct makes a product visible in the storefront
// @Summary Publish a product
// @Tags products
// @Accept json
// @Produce json
// @Param id path string true "Protected product ID"
// @Param body body PublishProductRequestDTO true "Row version"
// @Success 200 {object} ProductResponseDTO
// @Failure 409 {object} ErrorResponseDTO
// @Router /api/v1/products/{id}/publish [post]
func (h *CatalogHandler) PublishProduct(c echo.Context) error {
	id, err := h.pathID(c, PurposeProduct)
	if err != nil {
		return err
	}

	var req PublishProductRequestDTO
	if err := h.bind(c, &req); err != nil {
		return err
	}

	product, err := h.catalog.PublishProduct(c.Request().Context(), id, req.RowVersion)
	if err != nil {
		return err
	}

	res, err := FromProduct(h.protector, product)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, res)
}

// DeleteProduct deletes a product
// @Summary Delete a product
// @Tags products
// @Param id path string true "Protected product ID"
// @Success 204
// @Router /api/v1/products/{id} [delete]
func (h *CatalogHandler) DeleteProduct(c echo.Context) error {
	id, err := h.pathID(c, PurposeProduct)
	if err != nil {
		return err
	}

	if err := h.catalog.DeleteProduct(c.Request().Context(), id); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// InstallmentPrice splits the product price over ?months=N payments
// @Summary Monthly installment of a product
// @Tags products
// @Produce json
// @Param id path string true "Protected product ID"
// @Param months query int true "Number of monthly payments"
// @Success 200 {object} InstallmentResponseDTO
// @Failure 521 {object} FaultResponseDTO
// @Failure 523 {object} FaultResponseDTO
// @Router /api/v1/products/{id}/installments [get]
func (h *CatalogHandler) InstallmentPrice(c echo.Context) error {
	id, err := h.pathID(c, PurposeProduct)
	if err != nil {
		return err
	}

	months, err := strconv.Atoi(c.QueryParam("months"))
	if err != nil {
		return err
	}

	monthly, err := h.catalog.InstallmentPrice(c.Request().Context(), id, months)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, &InstallmentResponseDTO{
		ProductID: c.Param("id"),
		Months:    months,
		Monthly:   monthly,
	})
}

// ListFaultLogs retrieves the most recent classified faults
// @Summary List fault logs
// @Tags faults
// @Produce json
// @Success 200 {object} ListResponseDTO[FaultLogResponseDTO]
// @Router /api/v1/fault-logs [get]
func (h *CatalogHandler) ListFaultLogs(c echo.Context) error {
	limit, offset, err := pagination(c)
	if err != nil {
		return err
	}

	entries, total, err := h.faultLogs.List(c.Request().Context(), limit, offset)
	if err != nil {
		return err
	}

	items := make([]*FaultLogResponseDTO, 0, len(entries))
	for _, entry := range entries {
		items = append(items, FromFaultLog(entry))
	}
	return c.JSON(http.StatusOK, NewListResponse(items, total, limit, offset))
}

// HealthCheck returns the health status of the service
// @Summary Health check
// @Tags health
// @Produce json
// @Success 200 {object} HealthResponseDTO
// @Failure 503 {object} HealthResponseDTO
// @Router /api/v1/health [get]
func (h *CatalogHandler) HealthCheck(c echo.Context) error {
	status := "healthy"
	services := map[string]string{"database": "in_memory"}

	if h.database != nil {
		services["database"] = "healthy"
		if err := h.database.HealthCheck(); err != nil {
			services["database"] = "unhealthy"
			status = "unhealthy"
		}
	}

	code := http.StatusOK
	if status != "healthy" {
		code = http.StatusServiceUnavailable
	}
	return c.JSON(code, NewHealthResponse(status, h.version, services))
}

// bind decodes and validates the request body. Decoding failures are
// returned as they are so that malformed input is classified as a format
// fault.
func (h *CatalogHandler) bind(c echo.Context, req interface{}) error {
	if err := c.Bind(req); err != nil {
		return err
	}
	if validationErrors, err := h.validator.ValidateStruct(req); len(validationErrors) > 0 {
		return errs.New(errs.ErrorCodeValidationFailed, err, validationErrors)
	}
	return nil
}

// pathID resolves the protected :id parameter. Protector errors are
// returned unchanged.
func (h *CatalogHandler) pathID(c echo.Context, purpose string) (uint, error) {
	token := c.Param("id")
	if token == "" {
		return 0, errs.New(errs.ErrorCodeInvalidID, errors.New(ErrMsgMissingID), nil)
	}
	return h.protector.UnprotectID(purpose, token)
}

func pagination(c echo.Context) (int, int, error) {
	limit, offset := DefaultLimit, 0

	if limitStr := c.QueryParam("limit"); limitStr != "" {
		value, err := strconv.Atoi(limitStr)
		if err != nil {
			return 0, 0, errs.New(errs.ErrorCodeInvalidRequest,
				errors.New("invalid limit parameter"),
				map[string]string{"limit": "must be a valid integer"})
		}
		limit = value
	}

	if offsetStr := c.QueryParam("offset"); offsetStr != "" {
		value, err := strconv.Atoi(offsetStr)
		if err != nil {
			return 0, 0, errs.New(errs.ErrorCodeInvalidRequest,
				errors.New("invalid offset parameter"),
				map[string]string{"offset": "must be a valid integer"})
		}
		offset = value
	}

	if limit <= 0 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset, nil
}
