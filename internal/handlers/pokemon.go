package handlers

import (
	"net/http"

	"pokedex-backend/internal/service/pokemon"
	"pokedex-backend/pkg/api"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// PokemonHandler serves the /pokemon resource.
type PokemonHandler struct {
	service   pokemon.Service
	validator *Validator
	logger    *zap.Logger
}

// NewPokemonHandler creates a new pokemon handler.
func NewPokemonHandler(service pokemon.Service, validator *Validator, logger *zap.Logger) *PokemonHandler {
	return &PokemonHandler{service: service, validator: validator, logger: logger}
}

func toCreateInput(req api.CreatePokemonRequest) pokemon.CreatePokemonInput {
	return pokemon.CreatePokemonInput{Name: req.Name, No: req.No, ImageURL: req.ImageURL}
}

// Create handles POST /pokemon.
func (h *PokemonHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req api.CreatePokemonRequest
	if err := decodeJSON(r, &req); err != nil {
		handleServiceError(h.logger, w, r, err)
		return
	}
	if err := h.validator.Validate(req); err != nil {
		handleServiceError(h.logger, w, r, err)
		return
	}

	created, err := h.service.Create(r.Context(), toCreateInput(req))
	if err != nil {
		handleServiceError(h.logger, w, r, err)
		return
	}
	api.Success(w, http.StatusCreated, api.NewPokemonResponse(*created))
}

// CreateMany handles POST /pokemon/bulk.
func (h *PokemonHandler) CreateMany(w http.ResponseWriter, r *http.Request) {
	var reqs []api.CreatePokemonRequest
	if err := decodeJSON(r, &reqs); err != nil {
		handleServiceError(h.logger, w, r, err)
		return
	}
	if err := ValidateEach(h.validator, reqs); err != nil {
		handleServiceError(h.logger, w, r, err)
		return
	}

	inputs := make([]pokemon.CreatePokemonInput, len(reqs))
	for i, req := range reqs {
		inputs[i] = toCreateInput(req)
	}
	created, err := h.service.CreateMany(r.Context(), inputs)
	if err != nil {
		handleServiceError(h.logger, w, r, err)
		return
	}
	api.Success(w, http.StatusCreated, api.NewPokemonListResponse(created))
}

// List handles GET /pokemon?limit&offset.
func (h *PokemonHandler) List(w http.ResponseWriter, r *http.Request) {
	var query api.PaginationQuery
	var err error
	if query.Limit, err = queryInt(r, "limit"); err != nil {
		handleServiceError(h.logger, w, r, err)
		return
	}
	if query.Offset, err = queryInt(r, "offset"); err != nil {
		handleServiceError(h.logger, w, r, err)
		return
	}
	if err := h.validator.Validate(query); err != nil {
		handleServiceError(h.logger, w, r, err)
		return
	}

	limit, offset := query.Values()
	items, err := h.service.List(r.Context(), limit, offset)
	if err != nil {
		handleServiceError(h.logger, w, r, err)
		return
	}
	api.Success(w, http.StatusOK, api.NewPokemonListResponse(items))
}

// FindOne handles GET /pokemon/{term}.
func (h *PokemonHandler) FindOne(w http.ResponseWriter, r *http.Request) {
	found, err := h.service.FindByTerm(r.Context(), chi.URLParam(r, "term"))
	if err != nil {
		handleServiceError(h.logger, w, r, err)
		return
	}
	api.Success(w, http.StatusOK, api.NewPokemonResponse(*found))
}

// Update handles PATCH /pokemon/{term}.
func (h *PokemonHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req api.UpdatePokemonRequest
	if err := decodeJSON(r, &req); err != nil {
		handleServiceError(h.logger, w, r, err)
		return
	}
	if err := h.validator.Validate(req); err != nil {
		handleServiceError(h.logger, w, r, err)
		return
	}

	updated, err := h.service.Update(r.Context(), chi.URLParam(r, "term"), req.ToPatch())
	if err != nil {
		handleServiceError(h.logger, w, r, err)
		return
	}
	api.Success(w, http.StatusOK, api.NewPokemonResponse(*updated))
}

// Delete handles DELETE /pokemon/{id}. Only the exact record id matches.
func (h *PokemonHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Remove(r.Context(), chi.URLParam(r, "term")); err != nil {
		handleServiceError(h.logger, w, r, err)
		return
	}
	api.Success(w, http.StatusNoContent, nil)
}
