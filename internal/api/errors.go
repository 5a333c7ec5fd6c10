package api

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync/atomic"

	"github.com/danielgtaylor/huma/v2"

	domainerrors "github.com/bookshelfapp/bookshelf-server/internal/errors"
	"github.com/bookshelfapp/bookshelf-server/internal/logger"
	"github.com/bookshelfapp/bookshelf-server/internal/store"
)

const msgInternal = "internal server error"

// APIError is a custom error type that implements huma.StatusError.
// It maps domain errors to HTTP responses with consistent structure.
type APIError struct { //nolint:revive // API prefix is intentional for clarity
	status  int
	Code    string `json:"code" doc:"Machine-readable error code"`
	Message string `json:"message" doc:"Human-readable error message"`
	Details any    `json:"details,omitempty" doc:"Additional error details"`
}

// Error implements the error interface.
func (e *APIError) Error() string {
	return e.Message
}

// GetStatus implements huma.StatusError.
func (e *APIError) GetStatus() int {
	return e.status
}

// ContentType returns the content type for the error response.
func (e *APIError) ContentType(_ string) string {
	return "application/json"
}

type errorRendering struct {
	logger         *slog.Logger
	exposeInternal bool
}

var rendering atomic.Pointer[errorRendering]

// RegisterErrorHandler configures huma to use domain errors.
// Call this after creating the huma.API but before registering routes.
// With exposeInternal set, 500 responses carry the underlying error text;
// otherwise they say "internal server error" and the cause is only logged.
func RegisterErrorHandler(log *slog.Logger, exposeInternal bool) {
	if log == nil {
		log = logger.Discard()
	}
	rendering.Store(&errorRendering{logger: log, exposeInternal: exposeInternal})

	huma.NewError = func(status int, message string, errs ...error) huma.StatusError {
		for _, err := range errs {
			var domainErr *domainerrors.Error
			if errors.As(err, &domainErr) {
				return fromDomainError(domainErr)
			}
			var storeErr *store.Error
			if errors.As(err, &storeErr) {
				return fromStatus(storeErr.HTTPCode(), storeErr.Message, err)
			}
		}

		if status == http.StatusUnprocessableEntity {
			return fromValidation(message, errs)
		}

		var cause error
		if len(errs) > 0 {
			cause = errors.Join(errs...)
		}
		return fromStatus(status, message, cause)
	}
}

// toAPIError converts anything a handler or huma produced into an APIError.
func toAPIError(err error) *APIError {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr
	}
	var domainErr *domainerrors.Error
	if errors.As(err, &domainErr) {
		return fromDomainError(domainErr)
	}
	var statusErr huma.StatusError
	if errors.As(err, &statusErr) {
		return fromStatus(statusErr.GetStatus(), statusErr.Error(), nil)
	}
	return fromStatus(http.StatusInternalServerError, err.Error(), err)
}

func fromDomainError(err *domainerrors.Error) *APIError {
	status := err.HTTPStatus()
	if status >= http.StatusInternalServerError && err.Code == domainerrors.CodeInternal {
		apiErr := internalError(err.Error(), err)
		apiErr.Details = err.Details
		return apiErr
	}
	return &APIError{
		status:  status,
		Code:    string(err.Code),
		Message: err.Message,
		Details: err.Details,
	}
}

func fromStatus(status int, message string, cause error) *APIError {
	if status == http.StatusInternalServerError {
		return internalError(message, cause)
	}
	return &APIError{
		status:  status,
		Code:    statusToCode(status),
		Message: message,
	}
}

func internalError(message string, cause error) *APIError {
	r := rendering.Load()
	if r == nil {
		r = &errorRendering{logger: logger.Discard()}
	}

	r.logger.Error("request failed", "error", message, "cause", cause)
	if !r.exposeInternal || message == "" {
		message = msgInternal
	}
	return &APIError{
		status:  http.StatusInternalServerError,
		Code:    string(domainerrors.CodeInternal),
		Message: message,
	}
}

// fromValidation turns huma's request validation failures into a 400 with
// the offending fields in details.
func fromValidation(message string, errs []error) *APIError {
	details := make(map[string]string, len(errs))
	first := ""
	for _, err := range errs {
		var detail *huma.ErrorDetail
		if !errors.As(err, &detail) {
			continue
		}
		field := fieldName(detail.Location)
		details[field] = detail.Message
		if first == "" {
			first = fmt.Sprintf("%s: %s", field, detail.Message)
		}
	}
	if first != "" {
		message = first
	}

	apiErr := &APIError{
		status:  http.StatusBadRequest,
		Code:    string(domainerrors.CodeValidation),
		Message: message,
	}
	if len(details) > 0 {
		apiErr.Details = details
	}
	return apiErr
}

// fieldName strips the location prefix huma puts on a field ("body.title").
func fieldName(location string) string {
	for _, prefix := range []string{"body.", "query.", "path.", "header."} {
		if rest, ok := strings.CutPrefix(location, prefix); ok {
			return rest
		}
	}
	return location
}

// statusToCode maps HTTP status codes to our domain error codes.
func statusToCode(status int) string {
	switch status {
	case http.StatusBadRequest, http.StatusUnprocessableEntity, http.StatusRequestEntityTooLarge:
		return string(domainerrors.CodeValidation)
	case http.StatusUnauthorized:
		return string(domainerrors.CodeUnauthorized)
	case http.StatusForbidden:
		return string(domainerrors.CodeForbidden)
	case http.StatusNotFound:
		return string(domainerrors.CodeNotFound)
	case http.StatusConflict:
		return string(domainerrors.CodeConflict)
	case http.StatusTooManyRequests:
		return string(domainerrors.CodeRateLimited)
	case http.StatusBadGateway:
		return string(domainerrors.CodeUpstream)
	case http.StatusServiceUnavailable:
		return string(domainerrors.CodeUnavailable)
	default:
		return string(domainerrors.CodeInternal)
	}
}
