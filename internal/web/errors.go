package web

// errors.go provides unified error response handling for the web layer.
//
// Every failure is logged with its support code from core.MapError and the
// request ID, then returned as {"error": "<message>"}. The message is the
// error text itself: clients match on the exact strings.

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/JonMunkholm/datalens/internal/analysis"
	"github.com/JonMunkholm/datalens/internal/chart"
	"github.com/JonMunkholm/datalens/internal/core"
	"github.com/JonMunkholm/datalens/internal/dataset"
	"github.com/JonMunkholm/datalens/internal/logging"
	"github.com/JonMunkholm/datalens/internal/store"
)

// respondError logs err and writes it with the status statusFor picks.
func (s *Server) respondError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	userMsg := core.MapError(err)

	logger := logging.FromContext(r.Context())
	attrs := []any{
		"path", r.URL.Path,
		"method", r.Method,
		"status", status,
		"error", err.Error(),
		"code", userMsg.Code,
		"request_id", middleware.GetReqID(r.Context()),
	}
	if status >= http.StatusInternalServerError {
		logger.Error("request error", attrs...)
	} else {
		logger.Warn("request error", attrs...)
	}

	w.Header().Set("X-Error-Code", userMsg.Code)
	writeError(w, status, err.Error())
}

var badRequest = []error{
	core.ErrNoDataset,
	dataset.ErrNoFile,
	dataset.ErrUnsupportedFormat,
	dataset.ErrFileTooLarge,
	dataset.ErrNoColumns,
	dataset.ErrParse,
	store.ErrEmptySQL,
	errInvalidBody,
}

// statusFor maps an error to its HTTP status: request problems are 400,
// unavailable dependencies 503, anything else 500.
func statusFor(err error) int {
	if analysis.IsRequestError(err) {
		return http.StatusBadRequest
	}
	for _, target := range badRequest {
		if errors.Is(err, target) {
			return http.StatusBadRequest
		}
	}

	var dbErr *store.DBError
	switch {
	case errors.Is(err, store.ErrNoEngine), errors.Is(err, chart.ErrTooManyRenders), errors.Is(err, core.ErrNoRowStore):
		return http.StatusServiceUnavailable
	case errors.Is(err, core.ErrSQLDisabled):
		return http.StatusForbidden
	case errors.As(err, &dbErr):
		return http.StatusBadRequest
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	}
	return http.StatusInternalServerError
}
