package validator

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

var skuPattern = regexp.MustCompile(`^[A-Za-z0-9]+(-[A-Za-z0-9]+)*$`)

// ValidationFieldErrorDTO represents a field validation error
type ValidationFieldErrorDTO struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Tag     string `json:"tag"`
	Value   string `json:"value"`
}

// Validator wraps the go-playground validator with additional functionality
type Validator interface {
	ValidateStruct(s interface{}) ([]ValidationFieldErrorDTO, error)
	ValidateVar(field interface{}, tag string) error
	RegisterValidation(tag string, fn validator.Func) error
}

type customValidator struct {
	validator *validator.Validate
}

// New creates a new validator instance
func New() Validator {
	validate := validator.New()

	// Use JSON tag names for validation errors
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	cv := &customValidator{validator: validate}
	cv.registerCustomValidations()

	return cv
}

// ValidateStruct validates a struct and returns validation errors
func (cv *customValidator) ValidateStruct(s interface{}) ([]ValidationFieldErrorDTO, error) {
	var validationErrors []ValidationFieldErrorDTO

	err := cv.validator.Struct(s)
	if err != nil {
		var ve validator.ValidationErrors
		if errors.As(err, &ve) {
			for _, fe := range ve {
				validationErrors = append(validationErrors, ValidationFieldErrorDTO{
					Field:   fe.Field(),
					Message: cv.getErrorMessage(fe),
					Tag:     fe.Tag(),
					Value:   fmt.Sprintf("%v", fe.Value()),
				})
			}
		}
	}

	return validationErrors, err
}

// ValidateVar validates a single variable
func (cv *customValidator) ValidateVar(field interface{}, tag string) error {
	return cv.validator.Var(field, tag)
}

// RegisterValidation registers a custom validation function
func (cv *customValidator) RegisterValidation(tag string, fn validator.Func) error {
	return cv.validator.RegisterValidation(tag, fn)
}

func (cv *customValidator) registerCustomValidations() {
	// Stock keeping unit: alphanumeric groups separated by single dashes
	cv.validator.RegisterValidation("sku", validateSku)

	// No leading, trailing or doubled spaces
	cv.validator.RegisterValidation("trimmed", validateTrimmed)
}

func (cv *customValidator) getErrorMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	case "min":
		return fmt.Sprintf("%s must be at least %s characters long", fe.Field(), fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters long", fe.Field(), fe.Param())
	case "gte":
		return fmt.Sprintf("%s must be greater than or equal to %s", fe.Field(), fe.Param())
	case "lte":
		return fmt.Sprintf("%s must be less than or equal to %s", fe.Field(), fe.Param())
	case "gtfield":
		return fmt.Sprintf("%s must be greater than %s", fe.Field(), fe.Param())
	case "sku":
		return fmt.Sprintf("%s must contain letters and digits separated by single dashes", fe.Field())
	case "trimmed":
		return fmt.Sprintf("%s must not start or end with spaces", fe.Field())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", fe.Field(), fe.Param())
	default:
		return fmt.Sprintf("%s is invalid", fe.Field())
	}
}

func validateSku(fl validator.FieldLevel) bool {
	return skuPattern.MatchString(fl.Field().String())
}

func validateTrimmed(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	if strings.TrimSpace(value) != value {
		return false
	}
	return !strings.Contains(value, "  ")
}

// ValidateSku validates a stock keeping unit outside of a struct
func ValidateSku(sku string) error {
	validate := validator.New()
	validate.RegisterValidation("sku", validateSku)
	return validate.Var(sku, "required,max=50,sku")
}
