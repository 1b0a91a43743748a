// Copyright (c) 2026 HKUSTSU Film Society. All rights reserved.

// Package respond provides HTTP response helpers used by all API handlers.
//
// # Architecture
//
// This package centralizes the presentation logic for HTTP responses.
// Every response follows the envelope the society's frontend has always
// consumed: `{"errno": 0, "error": "", ...payload}` on success, with a
// non-zero errno and a human-readable error string on failure.
package respond

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/johnmave126/filmsoc-website-backend/internal/platform/apperr"
	"github.com/johnmave126/filmsoc-website-backend/internal/platform/ctxutil"
	"github.com/johnmave126/filmsoc-website-backend/pkg/pagination"
)

// Envelope is the JSON envelope for API responses. Payload fields are
// flattened alongside errno/error rather than nested under a data key.
type Envelope map[string]any

// JSON writes a JSON response with the given status code.
func JSON(writer http.ResponseWriter, statusCode int, payload any) {
	writer.Header().Set("Content-Type", "application/json; charset=utf-8")
	writer.WriteHeader(statusCode)
	_ = json.NewEncoder(writer).Encode(payload)
}

// OK writes a 200 response with the payload merged into the success envelope.
func OK(writer http.ResponseWriter, payload Envelope) {
	body := Envelope{"errno": apperr.ErrnoOK, "error": ""}
	for key, value := range payload {
		body[key] = value
	}
	JSON(writer, http.StatusOK, body)
}

// Object writes a 200 response with a single serialized entity spread
// into the envelope.
func Object(writer http.ResponseWriter, object map[string]any) {
	OK(writer, Envelope(object))
}

// Paginated writes a 200 response with a list payload and pagination
// metadata.
func Paginated(writer http.ResponseWriter, objects any, meta pagination.Meta) {
	OK(writer, Envelope{
		"objects": objects,
		"meta":    meta,
	})
}

// Error converts any Go error into the standardized envelope.
//
// Validation (errno 1) and business-rule (errno 3) failures ship with
// HTTP 200 like the rest of the application envelope; transport errors
// keep their HTTP status.
func Error(writer http.ResponseWriter, request *http.Request, err error) {
	appError := apperr.As(err)
	if appError == nil {
		// Unexpected internal error: log full details but hide them
		// from the client.
		logger := ctxutil.GetLogger(request.Context())
		logger.ErrorContext(request.Context(), "unhandled_error",
			slog.String("error", err.Error()),
			slog.String("request_id", ctxutil.GetRequestID(request.Context())),
		)
		appError = apperr.Internal(err)
	}

	// Always log 5xx errors as they indicate server-side issues.
	if appError.HTTPStatus >= 500 {
		logger := ctxutil.GetLogger(request.Context())
		logger.ErrorContext(request.Context(), "api_server_error",
			slog.Int("errno", appError.Errno),
			slog.String("request_id", ctxutil.GetRequestID(request.Context())),
			slog.Any("cause", appError.Cause),
		)
	}

	JSON(writer, appError.HTTPStatus, Envelope{
		"errno": appError.Errno,
		"error": appError.Message,
	})
}
