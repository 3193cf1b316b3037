package httpapi

import (
	"context"
	"errors"
	"net/http"

	sonic "github.com/bytedance/sonic"

	"github.com/riskibarqy/baseball-stats/internal/usecase"
)

const (
	msgPlayerNotFound = "Player not found"
	msgInternalError  = "internal server error"
)

type errorResponse struct {
	Error string `json:"error"`
}

type mappedError struct {
	HTTPStatus int
	Message    string
}

func writeJSON(ctx context.Context, w http.ResponseWriter, status int, payload any) {
	ctx, span := startSpan(ctx, "httpapi.writeJSON")
	defer span.End()

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = sonic.ConfigDefault.NewEncoder(w).Encode(payload)
}

func writeError(ctx context.Context, w http.ResponseWriter, err error) {
	ctx, span := startSpan(ctx, "httpapi.writeError")
	defer span.End()

	mapped := mapError(ctx, err)
	writeJSON(ctx, w, mapped.HTTPStatus, errorResponse{Error: mapped.Message})
}

func writeInternalError(ctx context.Context, w http.ResponseWriter) {
	ctx, span := startSpan(ctx, "httpapi.writeInternalError")
	defer span.End()

	writeJSON(ctx, w, http.StatusInternalServerError, errorResponse{Error: msgInternalError})
}

// errorStatuses is checked in order; the first sentinel err wraps wins. An
// empty message means the error text is safe to return.
var errorStatuses = []struct {
	target  error
	status  int
	message string
}{
	{usecase.ErrNotFound, http.StatusNotFound, msgPlayerNotFound},
	{usecase.ErrInvalidInput, http.StatusBadRequest, ""},
	{usecase.ErrConflict, http.StatusConflict, ""},
	{usecase.ErrDependencyUnavailable, http.StatusServiceUnavailable, ""},
	{usecase.ErrUpstream, http.StatusBadGateway, ""},
	{usecase.ErrNormalization, http.StatusBadGateway, ""},
}

// mapError picks the status for err. Unclassified errors become a generic
// 500 so storage details stay out of responses.
func mapError(ctx context.Context, err error) mappedError {
	_, span := startSpan(ctx, "httpapi.mapError")
	defer span.End()

	for _, rule := range errorStatuses {
		if !errors.Is(err, rule.target) {
			continue
		}
		msg := rule.message
		if msg == "" {
			msg = err.Error()
		}
		return mappedError{HTTPStatus: rule.status, Message: msg}
	}
	return mappedError{HTTPStatus: http.StatusInternalServerError, Message: msgInternalError}
}
