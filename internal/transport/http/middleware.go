package http

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"shop-api/internal/errs"
	"shop-api/internal/fault"
	"shop-api/internal/transport/mq"
	"shop-api/pkg/i18n"
	"shop-api/pkg/logger"
	"shop-api/pkg/validator"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// ContextKeyAction is the echo context key holding the handler's action name
const ContextKeyAction = "action"

type requestIDKey struct{}

// ------------------------
// I18n Middleware
// ------------------------

func I18nMiddleware(localizer *i18n.Localizer) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			lang := detectLanguage(c, localizer)
			ctx := i18n.WithLanguage(c.Request().Context(), lang)
			c.SetRequest(c.Request().WithContext(ctx))
			c.Response().Header().Set("Content-Language", lang)
			return next(c)
		}
	}
}

func detectLanguage(c echo.Context, localizer *i18n.Localizer) string {
	// Priority: query -> header -> Accept-Language -> cookie -> default
	if lang := c.QueryParam("lang"); localizer.IsLanguageSupported(lang) {
		return lang
	}
	if lang := c.Request().Header.Get("X-Language"); localizer.IsLanguageSupported(lang) {
		return lang
	}
	if lang := localizer.ParseAcceptLanguage(c.Request().Header.Get("Accept-Language")); localizer.IsLanguageSupported(lang) {
		return lang
	}
	if cookie, err := c.Cookie("language"); err == nil && localizer.IsLanguageSupported(cookie.Value) {
		return cookie.Value
	}
	return localizer.DefaultLanguage()
}

// ------------------------
// Request ID Middleware
// ------------------------

func RequestIDMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			requestID := getRequestID(c)
			ctx := context.WithValue(c.Request().Context(), requestIDKey{}, requestID)
			c.SetRequest(c.Request().WithContext(ctx))
			c.Request().Header.Set(echo.HeaderXRequestID, requestID)
			c.Response().Header().Set(echo.HeaderXRequestID, requestID)
			return next(c)
		}
	}
}

func getRequestID(c echo.Context) string {
	if id := c.Request().Header.Get(echo.HeaderXRequestID); id != "" {
		return id
	}
	return uuid.New().String()
}

// RequestIDFromContext returns the ID assigned by RequestIDMiddleware
func RequestIDFromContext(ctx context.Context) string {
	if id, ok := ctx.Value(requestIDKey{}).(string); ok {
		return id
	}
	return ""
}

// ------------------------
// Fault Recorder Middleware
// ------------------------

// FaultRecorderMiddleware gives every request its own fault recorder, so the
// last classification of one request is never seen by another.
func FaultRecorderMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ctx := fault.NewContext(c.Request().Context())
			c.SetRequest(c.Request().WithContext(ctx))
			return next(c)
		}
	}
}

// ------------------------
// Error Handler Middleware
// ------------------------

// ErrorHandlerConfig holds the collaborators of the error handler. Metrics
// and Producer are optional.
type ErrorHandlerConfig struct {
	Localizer *i18n.Localizer
	Logger    *logger.Logger
	Metrics   *fault.Metrics
	Producer  mq.FaultProducer
}

// ErrorHandlerMiddleware answers client mistakes with a localized error and
// every other failure with the fault classifier's status code and message.
func ErrorHandlerMiddleware(cfg ErrorHandlerConfig) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		var appErr *errs.AppError
		if errors.As(err, &appErr) && appErr.IsClientFacing() {
			handleAppError(appErr, c, cfg.Localizer)
			return
		}

		var he *echo.HTTPError
		if errors.As(err, &he) && fault.FromError(err).Kind == fault.KindUnknown {
			handleEchoError(he, c, cfg.Logger)
			return
		}

		handleFault(err, c, cfg)
	}
}

func handleAppError(appErr *errs.AppError, c echo.Context, localizer *i18n.Localizer) {
	ctx := c.Request().Context()
	localized := appErr.LocalizeWithContext(localizer, ctx)
	status := localized.GetHTTPStatus()

	var body interface{} = NewErrorResponse(string(localized.Code), localized.Message, localized.Details)
	if fields, ok := localized.Details.([]validator.ValidationFieldErrorDTO); ok {
		body = NewValidationErrorResponse(localized.Message, fields)
	}

	writeJSON(c, status, body)
}

func handleEchoError(he *echo.HTTPError, c echo.Context, log *logger.Logger) {
	log.Debug("Echo HTTPError detected", zap.Int("code", he.Code))
	writeJSON(c, he.Code, NewErrorResponse(http.StatusText(he.Code), fmt.Sprint(he.Message), nil))
}

// handleFault classifies err, records it for operators and sends the client
// only the classified status code and message.
func handleFault(err error, c echo.Context, cfg ErrorHandlerConfig) {
	ctx := c.Request().Context()
	res, f := fault.ClassifyContext(ctx, err)

	action := actionName(c)
	requestID := RequestIDFromContext(ctx)
	kind := f.Kind.String()

	cfg.Logger.WithRequestID(requestID).LogFault(action, res.StatusCode, res.Message, kind, err)
	cfg.Metrics.Observe(res, f)

	if cfg.Producer != nil {
		event := mq.NewFaultEvent(action, res.StatusCode, res.Message, kind, err.Error(), requestID)
		if pubErr := cfg.Producer.PublishFaultClassified(ctx, event); pubErr != nil {
			cfg.Logger.Warn("Failed to publish fault event",
				zap.Error(pubErr),
				zap.String("request_id", requestID),
			)
		}
	}

	writeJSON(c, res.StatusCode, &FaultResponseDTO{
		StatusCode: res.StatusCode,
		Message:    res.Message,
	})
}

func actionName(c echo.Context) string {
	if action, ok := c.Get(ContextKeyAction).(string); ok && action != "" {
		return action
	}
	return c.Request().Method + " " + c.Path()
}

func writeJSON(c echo.Context, code int, body interface{}) {
	if c.Request().Method == http.MethodHead {
		if err := c.NoContent(code); err != nil {
			c.Logger().Error(err)
		}
		return
	}
	if err := c.JSON(code, body); err != nil {
		c.Logger().Error(err)
	}
}
