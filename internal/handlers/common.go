// Package handlers exposes the pokemon and seed services over HTTP.
package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"pokedex-backend/internal/middleware"
	"pokedex-backend/pkg/api"
	appErrors "pokedex-backend/pkg/errors"

	"go.uber.org/zap"
)

const internalErrorMessage = "An internal error occurred"

// handleServiceError converts service errors to HTTP responses. Duplicates
// are reported as 400 like any other client-correctable input problem.
func handleServiceError(logger *zap.Logger, w http.ResponseWriter, r *http.Request, err error) {
	fields := []zap.Field{
		zap.String("request_id", middleware.GetRequestIDFromRequest(r)),
		zap.String("path", r.URL.Path),
		zap.Error(err),
	}

	appErr, ok := appErrors.As(err)
	if !ok {
		logger.Warn("unclassified service error", fields...)
		appErr, _ = appErrors.As(appErrors.NewInternal(internalErrorMessage, err))
	}

	switch appErr.Type {
	case appErrors.ErrorTypeValidation:
		logger.Debug("validation error", fields...)
		api.Error(w, http.StatusBadRequest, appErr.Message)
	case appErrors.ErrorTypeConflict:
		logger.Info("conflict error", fields...)
		api.Error(w, http.StatusBadRequest, appErr.Message)
	case appErrors.ErrorTypeNotFound:
		logger.Debug("not found error", fields...)
		api.Error(w, http.StatusNotFound, appErr.Message)
	default:
		logger.Error("internal error", fields...)
		api.Error(w, http.StatusInternalServerError, appErr.Message)
	}
}

// decodeJSON reads the request body into dst.
func decodeJSON(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return appErrors.NewValidation("invalid request body")
	}
	return nil
}

// queryInt parses an optional integer query parameter. It returns nil when
// the parameter is absent.
func queryInt(r *http.Request, name string) (*int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return nil, appErrors.NewValidation(name + " must be an integer number")
	}
	return &n, nil
}
