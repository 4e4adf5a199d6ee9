package errs

import (
	"context"
	"errors"
	"net/http"

	"shop-api/pkg/i18n"
)

type AppError struct {
	Message      string
	Code         ErrorCode
	Details      interface{}
	HTTPStatus   int
	TemplateData map[string]interface{}
	Err          error
}

// Error implements error interface
func (e *AppError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return string(e.Code)
}

// Unwrap returns the original error
func (e *AppError) Unwrap() error {
	return e.Err
}

// GetHTTPStatus returns the HTTP status code
func (e *AppError) GetHTTPStatus() int {
	if e.HTTPStatus > 0 {
		return e.HTTPStatus
	}
	return getDefaultHTTPStatus(e.Code)
}

// IsClientFacing reports whether the error describes a problem with the
// request itself. Anything else is a server fault and goes through the
// fault classifier instead of being shown verbatim.
func (e *AppError) IsClientFacing() bool {
	return e.GetHTTPStatus() < http.StatusInternalServerError
}

// Localize localizes the message using Localizer and lang
func (e *AppError) Localize(localizer *i18n.Localizer, lang string) *AppError {
	message := localizer.LocalizeError(lang, string(e.Code), e.TemplateData)
	return &AppError{
		Code:         e.Code,
		Err:          e.Err,
		Details:      e.Details,
		TemplateData: e.TemplateData,
		HTTPStatus:   e.HTTPStatus,
		Message:      message,
	}
}

// LocalizeWithContext uses lang from context
func (e *AppError) LocalizeWithContext(localizer *i18n.Localizer, ctx context.Context) *AppError {
	lang := i18n.LanguageFromContext(ctx)
	return e.Localize(localizer, lang)
}

// New creates a simple AppError
func New(code ErrorCode, err error, details interface{}) *AppError {
	if err == nil {
		err = errors.New(string(code))
	}

	return &AppError{
		Code:       code,
		Err:        err,
		Details:    details,
		HTTPStatus: getDefaultHTTPStatus(code),
	}
}

// NewWithTemplate creates an AppError carrying template data for localization
func NewWithTemplate(code ErrorCode, err error, details interface{}, templateData map[string]interface{}) *AppError {
	return &AppError{
		Code:         code,
		Err:          err,
		Details:      details,
		HTTPStatus:   getDefaultHTTPStatus(code),
		TemplateData: templateData,
	}
}

// NewLocalized creates an AppError and localizes it right away
func NewLocalized(localizer *i18n.Localizer, lang string, code ErrorCode, templateData map[string]interface{}, err error, details interface{}) *AppError {
	appErr := NewWithTemplate(code, err, details, templateData)
	return appErr.Localize(localizer, lang)
}

// NewLocalizedWithContext creates an AppError localized to the request language
func NewLocalizedWithContext(localizer *i18n.Localizer, ctx context.Context, code ErrorCode, templateData map[string]interface{}, err error, details interface{}) *AppError {
	appErr := NewWithTemplate(code, err, details, templateData)
	return appErr.LocalizeWithContext(localizer, ctx)
}

// Mapping ErrorCode → HTTP Status
func getDefaultHTTPStatus(code ErrorCode) int {
	switch code {
	case ErrorCodeCategoryNotFound, ErrorCodeProductNotFound, ErrorCodeNotFound:
		return http.StatusNotFound
	case ErrorCodeProductAlreadyPublic:
		return http.StatusConflict
	case ErrorCodeInvalidID, ErrorCodeInvalidName, ErrorCodeInvalidDescription, ErrorCodeInvalidSku, ErrorCodeInvalidPrice,
		ErrorCodeInvalidInput, ErrorCodeBadRequest, ErrorCodeInvalidRequest, ErrorCodeValidationFailed:
		return http.StatusBadRequest
	case ErrorCodeBusinessLogicFail, ErrorCodePriceNotDiscounted:
		return http.StatusUnprocessableEntity
	case ErrorCodeUnauthorized:
		return http.StatusUnauthorized
	case ErrorCodeForbidden:
		return http.StatusForbidden
	case ErrorCodeMethodNotAllowed:
		return http.StatusMethodNotAllowed
	case ErrorCodeUnsupportedMediaType:
		return http.StatusUnsupportedMediaType
	case ErrorCodeTooManyRequests:
		return http.StatusTooManyRequests
	case ErrorCodeServiceUnavailable:
		return http.StatusServiceUnavailable
	case ErrorCodeDatabaseError, ErrorCodeInternalError, ErrorCodeValidationError:
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}
