package core

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"
)

const transientRetryAfterSeconds = "1"

// statusClientClosedRequest is the non-standard status for requests whose
// caller went away before the handler finished.
const statusClientClosedRequest = 499

type ErrorResponse struct {
	Message string `json:"message"`
}

type MessageResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

func RequestBody[TRequest any](r *http.Request) (TRequest, error) {
	var request TRequest
	err := json.NewDecoder(r.Body).Decode(&request)
	return request, err
}

type ResponseOption func(http.ResponseWriter, *http.Request)

func WithHeader(header, value string) ResponseOption {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Add(header, value)
	}
}

func WriteOK(w http.ResponseWriter, r *http.Request, body interface{}) {
	WriteResponse(w, r, http.StatusOK, body)
}

func WriteSuccess(w http.ResponseWriter, r *http.Request, message string) {
	WriteResponse(w, r, http.StatusOK, MessageResponse{Success: true, Message: message})
}

func WriteCreated(w http.ResponseWriter, r *http.Request, location string, body interface{}) {
	WriteResponse(w, r, http.StatusCreated, body, WithHeader("Location", location))
}

func WriteBadRequest(w http.ResponseWriter, r *http.Request, err error) {
	WriteResponse(w, r, http.StatusBadRequest, ErrorResponse{Message: err.Error()})
}

func WriteUnauthorized(w http.ResponseWriter, r *http.Request, message string) {
	WriteResponse(w, r, http.StatusUnauthorized, ErrorResponse{Message: message})
}

func WriteNotFound(w http.ResponseWriter, r *http.Request, message string) {
	WriteResponse(w, r, http.StatusNotFound, ErrorResponse{Message: message})
}

func WriteInternalServerError(w http.ResponseWriter, r *http.Request) {
	WriteResponse(w, r, http.StatusInternalServerError, ErrorResponse{Message: "Internal server error"})
}

// WriteCommandError maps a handler error to its HTTP status. Unclassified
// errors are logged and answered with a generic 500.
func WriteCommandError(w http.ResponseWriter, r *http.Request, err error) {
	var commandErr CommandError
	if errors.As(err, &commandErr) {
		WriteResponse(w, r, commandErr.StatusCode, ErrorResponse{Message: commandErr.Message()})
		return
	}

	if errors.Is(err, context.Canceled) {
		Logger(r.Context()).Debug("request cancelled by caller", zap.Error(err))
		WriteResponse(w, r, statusClientClosedRequest, ErrorResponse{Message: "Request cancelled"})
		return
	}

	var classified *Error
	if !errors.As(err, &classified) {
		LogError(r.Context(), "unhandled request error", zap.Error(err))
		WriteInternalServerError(w, r)
		return
	}

	switch classified.Kind {
	case KindValidation:
		WriteResponse(w, r, http.StatusBadRequest, ErrorResponse{Message: classified.Error()})
	case KindNotFound:
		WriteResponse(w, r, http.StatusNotFound, ErrorResponse{Message: classified.Error()})
	case KindConflict:
		WriteResponse(w, r, http.StatusConflict, ErrorResponse{Message: classified.Error()})
	case KindTransient:
		WriteResponse(
			w, r,
			http.StatusServiceUnavailable,
			ErrorResponse{Message: "Service temporarily unavailable, retry the request"},
			WithHeader("Retry-After", transientRetryAfterSeconds),
		)
	default:
		LogError(r.Context(), "unhandled request error", zap.Error(err))
		WriteInternalServerError(w, r)
	}
}

func WriteResponse(
	w http.ResponseWriter,
	r *http.Request,
	statusCode int,
	body interface{},
	opts ...ResponseOption,
) {
	for _, opt := range opts {
		opt(w, r)
	}

	if body != nil {
		w.Header().Set("Content-Type", "application/json")
	}

	w.WriteHeader(statusCode)
	writeBodyIfPresent(r.Context(), w, body)
}

func writeBodyIfPresent(ctx context.Context, w http.ResponseWriter, body interface{}) {
	if body == nil {
		return
	}

	// error marshals into an empty object.
	if err, ok := body.(error); ok {
		body = ErrorResponse{Message: err.Error()}
	}

	responseBytes, err := json.Marshal(body)
	if err != nil {
		LogError(ctx, "failed to serialize response", zap.Error(err))
		return
	}

	if _, err := w.Write(responseBytes); err != nil {
		LogError(ctx, "failed to write response", zap.Error(err))
	}
}
