package apperror

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"
)

// Kind identifies the failure class. The relay and the HTTP error handler
// map kinds to protocol responses; services only pick the kind.
type Kind string

const (
	KindConfiguration  Kind = "CONFIGURATION"
	KindValidation     Kind = "VALIDATION"
	KindAuthentication Kind = "AUTHENTICATION"
	KindAuthorization  Kind = "AUTHORIZATION"
	KindUpstreamModel  Kind = "UPSTREAM_MODEL"
	KindStorage        Kind = "STORAGE"
)

type AppError struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Status maps the kind to an HTTP status code.
func (e *AppError) Status() int {
	switch e.Kind {
	case KindValidation:
		return fiber.StatusBadRequest
	case KindAuthentication:
		return fiber.StatusUnauthorized
	case KindAuthorization:
		return fiber.StatusForbidden
	case KindUpstreamModel:
		return fiber.StatusBadGateway
	case KindStorage:
		return fiber.StatusServiceUnavailable
	default:
		return fiber.StatusInternalServerError
	}
}

func Configuration(message string) *AppError {
	return &AppError{Kind: KindConfiguration, Message: message}
}

func Validation(message string) *AppError {
	return &AppError{Kind: KindValidation, Message: message}
}

func Authentication(message string, err error) *AppError {
	return &AppError{Kind: KindAuthentication, Message: message, Err: err}
}

func Authorization(message string) *AppError {
	return &AppError{Kind: KindAuthorization, Message: message}
}

func UpstreamModel(message string, err error) *AppError {
	return &AppError{Kind: KindUpstreamModel, Message: message, Err: err}
}

func Storage(message string, err error) *AppError {
	return &AppError{Kind: KindStorage, Message: message, Err: err}
}

// IsKind reports whether err is (or wraps) an AppError of the given kind.
func IsKind(err error, kind Kind) bool {
	var ae *AppError
	if errors.As(err, &ae) {
		return ae.Kind == kind
	}
	return false
}
