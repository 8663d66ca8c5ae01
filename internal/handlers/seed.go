package handlers

import (
	"net/http"

	"pokedex-backend/internal/service/seed"
	"pokedex-backend/pkg/api"

	"go.uber.org/zap"
)

// SeedHandler triggers the reference-data import.
type SeedHandler struct {
	service seed.Service
	logger  *zap.Logger
}

// NewSeedHandler creates a new seed handler.
func NewSeedHandler(service seed.Service, logger *zap.Logger) *SeedHandler {
	return &SeedHandler{service: service, logger: logger}
}

// Execute handles GET /seed.
func (h *SeedHandler) Execute(w http.ResponseWriter, r *http.Request) {
	message, err := h.service.Execute(r.Context())
	if err != nil {
		handleServiceError(h.logger, w, r, err)
		return
	}
	api.Success(w, http.StatusOK, api.MessageResponse{Message: message})
}
