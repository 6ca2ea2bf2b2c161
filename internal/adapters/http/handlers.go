package http

import (
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"github.com/strictpm/core/internal/application/services"
	"github.com/strictpm/core/internal/domain/entities"
	"github.com/strictpm/core/internal/infrastructure/logger"
)

// CustomValidator wraps the validator
type CustomValidator struct {
	validator *validator.Validate
}

// NewValidator creates the echo validator used by every handler
func NewValidator() *CustomValidator {
	return &CustomValidator{validator: validator.New()}
}

// Validate validates structs
func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
}

// Request/Response types
type MessageResponse struct {
	Message string `json:"message"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

type ListResponse[T any] struct {
	Data  []T `json:"data"`
	Total int `json:"total"`
}

// statusFor maps domain errors to HTTP status codes.
func statusFor(err error) int {
	var verrs validator.ValidationErrors
	switch {
	case errors.As(err, &verrs):
		return http.StatusBadRequest
	case errors.Is(err, entities.ErrTaskNotFound),
		errors.Is(err, entities.ErrSubtaskNotFound):
		return http.StatusNotFound
	case errors.Is(err, entities.ErrDuplicateTaskID),
		errors.Is(err, entities.ErrInvalidTransition),
		errors.Is(err, entities.ErrDateImmutable):
		return http.StatusConflict
	case errors.Is(err, entities.ErrInvalidTag),
		errors.Is(err, entities.ErrInvalidDate),
		errors.Is(err, entities.ErrEmptyMessage):
		return http.StatusBadRequest
	case errors.Is(err, services.ErrChatUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// ErrorHandler renders echo errors, validation failures and domain errors
// as ErrorResponse bodies.
func ErrorHandler(logger *logger.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		var (
			code = http.StatusInternalServerError
			body ErrorResponse
		)

		var he *echo.HTTPError
		var verrs validator.ValidationErrors
		switch {
		case errors.As(err, &he):
			code = he.Code
			if msg, ok := he.Message.(string); ok {
				body.Error = msg
			} else {
				body.Error = http.StatusText(code)
			}
			if he.Internal != nil {
				body.Details = he.Internal.Error()
			}
		case errors.As(err, &verrs):
			code = http.StatusBadRequest
			body = ErrorResponse{Error: "validation failed", Details: verrs.Error()}
		default:
			code = statusFor(err)
			if code == http.StatusInternalServerError {
				body.Error = http.StatusText(code)
			} else {
				body.Error = err.Error()
			}
		}

		if code >= http.StatusInternalServerError {
			logger.WithRequestID(c.Response().Header().Get(echo.HeaderXRequestID)).
				WithError(err).
				Errorw("Internal server error", "path", c.Request().URL.Path)
		}

		if c.Response().Committed {
			return
		}
		if c.Request().Method == http.MethodHead {
			err = c.NoContent(code)
		} else {
			err = c.JSON(code, body)
		}
		if err != nil {
			logger.Errorw("Error sending response", "error", err)
		}
	}
}
