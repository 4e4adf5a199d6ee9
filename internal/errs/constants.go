package errs

type ErrorCode string

const (
	// Catalog errors
	ErrorCodeCategoryNotFound   ErrorCode = "category_not_found"
	ErrorCodeProductNotFound    ErrorCode = "product_not_found"
	ErrorCodeInvalidID          ErrorCode = "invalid_id"
	ErrorCodeInvalidName        ErrorCode = "invalid_name"
	ErrorCodeInvalidDescription ErrorCode = "invalid_description"
	ErrorCodeInvalidSku         ErrorCode = "invalid_sku"
	ErrorCodeInvalidPrice       ErrorCode = "invalid_price"
	ErrorCodeInvalidInput       ErrorCode = "invalid_input"

	// Business rule errors
	ErrorCodeBusinessLogicFail    ErrorCode = "business_logic_fail"
	ErrorCodeProductAlreadyPublic ErrorCode = "product_already_published"
	ErrorCodePriceNotDiscounted   ErrorCode = "price_not_discounted"

	// System errors
	ErrorCodeDatabaseError        ErrorCode = "database_error"
	ErrorCodeValidationError      ErrorCode = "validation_error"
	ErrorCodeInternalError        ErrorCode = "internal_error"
	ErrorCodeUnauthorized         ErrorCode = "unauthorized"
	ErrorCodeForbidden            ErrorCode = "forbidden"
	ErrorCodeBadRequest           ErrorCode = "bad_request"
	ErrorCodeNotFound             ErrorCode = "not_found"
	ErrorCodeMethodNotAllowed     ErrorCode = "method_not_allowed"
	ErrorCodeUnsupportedMediaType ErrorCode = "unsupported_media_type"
	ErrorCodeTooManyRequests      ErrorCode = "too_many_requests"
	ErrorCodeServiceUnavailable   ErrorCode = "service_unavailable"

	// Common errors
	ErrorCodeInvalidRequest   ErrorCode = "invalid_request"
	ErrorCodeValidationFailed ErrorCode = "validation_failed"
)
