package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/danielgtaylor/huma/v2"

	domainerrors "github.com/dvtbooks/books-api/internal/errors"
	"github.com/dvtbooks/books-api/internal/store"
)

// APIError is a custom error type that implements huma.StatusError.
// It renders the same bodies as response.HandleError so typed and raw
// routes report errors identically.
type APIError struct { //nolint:revive // API prefix is intentional for clarity
	status  int
	Code    string `json:"code" doc:"Machine-readable error code"`
	Message string `json:"message" doc:"Human-readable error message"`
	Details any    `json:"details,omitempty" doc:"Field errors, keyed by wire field name"`
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

// MarshalJSON writes field errors as the bare field-to-messages map, the same
// body response.HandleError writes for raw routes.
func (e *APIError) MarshalJSON() ([]byte, error) {
	if e.Code == string(domainerrors.CodeValidation) && e.Details != nil {
		return json.Marshal(e.Details)
	}
	type body APIError
	return json.Marshal((*body)(e))
}

// RegisterErrorHandler configures huma to use domain errors.
// Call this after creating the huma.API but before registering routes.
func RegisterErrorHandler() {
	huma.NewError = func(status int, message string, errs ...error) huma.StatusError {
		// huma rejects malformed parameters with 422; the API reports every
		// validation failure as 400.
		if status == http.StatusUnprocessableEntity {
			status = http.StatusBadRequest
		}

		var fields domainerrors.FieldErrors
		for _, err := range errs {
			var domainErr *domainerrors.Error
			if errors.As(err, &domainErr) {
				return fromDomain(domainErr)
			}

			var storeErr *store.Error
			if errors.As(err, &storeErr) && storeErr.HTTPCode() == http.StatusNotFound {
				return &APIError{
					status:  http.StatusNotFound,
					Code:    string(domainerrors.CodeNotFound),
					Message: storeErr.Message,
				}
			}

			// Request binding failures, e.g. a negative top.
			var detail *huma.ErrorDetail
			if errors.As(err, &detail) {
				fields.Add(detailField(detail.Location), detail.Message)
			}
		}

		apiErr := &APIError{
			status:  status,
			Code:    statusToCode(status),
			Message: message,
		}
		if len(fields) > 0 {
			apiErr.Details = map[string][]string(fields)
		}
		if status >= http.StatusInternalServerError {
			apiErr.Message = "internal server error"
		}
		return apiErr
	}
}

func fromDomain(e *domainerrors.Error) *APIError {
	apiErr := &APIError{
		status:  e.HTTPStatus(),
		Code:    string(e.Code),
		Message: e.Message,
		Details: e.Details,
	}
	if apiErr.status >= http.StatusInternalServerError {
		apiErr.Message = "internal server error"
		apiErr.Details = nil
	}
	return apiErr
}

// detailField turns a huma location such as "query.top" into "top".
func detailField(location string) string {
	if i := strings.LastIndexByte(location, '.'); i >= 0 {
		return location[i+1:]
	}
	return location
}

// statusToCode maps HTTP status codes to our domain error codes.
func statusToCode(status int) string {
	switch status {
	case http.StatusBadRequest:
		return string(domainerrors.CodeValidation)
	case http.StatusNotFound:
		return string(domainerrors.CodeNotFound)
	case http.StatusConflict:
		return string(domainerrors.CodeConflict)
	case http.StatusUnsupportedMediaType:
		return string(domainerrors.CodeUnsupportedMedia)
	case http.StatusRequestEntityTooLarge:
		return string(domainerrors.CodeTooLarge)
	case http.StatusTooManyRequests:
		return string(domainerrors.CodeRateLimited)
	default:
		return string(domainerrors.CodeInternal)
	}
}
