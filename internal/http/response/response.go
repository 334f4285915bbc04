// Package response provides HTTP response formatting and error handling utilities.
//
// Resources are written as bare JSON documents. A validation failure with
// field errors is written as the bare field-to-messages map; every other
// error uses the {"code", "message"} body.
package response

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/dvtbooks/books-api/internal/errors"
	"github.com/dvtbooks/books-api/internal/store"
)

// ErrorBody is the JSON body of every error response.
type ErrorBody struct {
	Code    errors.Code `json:"code"`
	Message string      `json:"message"`
	Details any         `json:"details,omitempty"`
}

// JSON writes data as a JSON response with the given status code.
func JSON(w http.ResponseWriter, status int, data any, logger *slog.Logger) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		if logger != nil {
			logger.Error("Failed to encode JSON response", "error", err)
		}
	}
}

// Success writes a successful JSON response (200 OK).
func Success(w http.ResponseWriter, data any, logger *slog.Logger) {
	JSON(w, http.StatusOK, data, logger)
}

// Created writes a created response (201 Created) with a Location header.
func Created(w http.ResponseWriter, location string, data any, logger *slog.Logger) {
	if location != "" {
		w.Header().Set("Location", location)
	}
	JSON(w, http.StatusCreated, data, logger)
}

// NoContent writes a no content response (204 No Content).
func NoContent(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNoContent)
}

// Error writes an error response with the given status code.
func Error(w http.ResponseWriter, status int, body ErrorBody, logger *slog.Logger) {
	JSON(w, status, body, logger)
}

// Conflict writes a 409 Conflict response with no body.
func Conflict(w http.ResponseWriter) {
	w.WriteHeader(http.StatusConflict)
}

// BadRequest writes a 400 Bad Request response.
func BadRequest(w http.ResponseWriter, message string, logger *slog.Logger) {
	Error(w, http.StatusBadRequest, ErrorBody{Code: errors.CodeValidation, Message: message}, logger)
}

// NotFound writes a 404 Not Found response.
func NotFound(w http.ResponseWriter, message string, logger *slog.Logger) {
	Error(w, http.StatusNotFound, ErrorBody{Code: errors.CodeNotFound, Message: message}, logger)
}

// TooManyRequests writes a 429 Too Many Requests response.
func TooManyRequests(w http.ResponseWriter, message string, logger *slog.Logger) {
	Error(w, http.StatusTooManyRequests, ErrorBody{Code: errors.CodeRateLimited, Message: message}, logger)
}

// InternalError writes a 500 Internal Server Error response.
func InternalError(w http.ResponseWriter, message string, logger *slog.Logger) {
	Error(w, http.StatusInternalServerError, ErrorBody{Code: errors.CodeInternal, Message: message}, logger)
}

// HandleError writes an appropriate HTTP response based on the error type.
// Domain errors carry their own status and field errors go out as a bare
// map. A version conflict has no body. Unknown errors are logged and become
// 500.
func HandleError(w http.ResponseWriter, err error, logger *slog.Logger) {
	var domainErr *errors.Error
	if errors.As(err, &domainErr) {
		status := domainErr.HTTPStatus()
		if domainErr.Code == errors.CodeConflict {
			Conflict(w)
			return
		}
		if status >= http.StatusInternalServerError {
			if logger != nil {
				logger.Error("Request failed", "error", err)
			}
			Error(w, status, ErrorBody{Code: domainErr.Code, Message: "internal server error"}, logger)
			return
		}
		if domainErr.Code == errors.CodeValidation && domainErr.Details != nil {
			JSON(w, status, domainErr.Details, logger)
			return
		}
		Error(w, status, ErrorBody{Code: domainErr.Code, Message: domainErr.Message, Details: domainErr.Details}, logger)
		return
	}

	var storeErr *store.Error
	if errors.As(err, &storeErr) {
		switch storeErr.HTTPCode() {
		case http.StatusNotFound:
			NotFound(w, storeErr.Message, logger)
			return
		case http.StatusConflict:
			Conflict(w)
			return
		}
	}

	// Unknown error = 500
	if logger != nil {
		logger.Error("Unhandled error", "error", err)
	}
	InternalError(w, "internal server error", logger)
}
