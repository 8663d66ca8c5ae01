// Package api defines the contracts for API requests and responses.
// It decouples the API structure from the internal domain models.
package api

import (
	"time"

	"pokedex-backend/internal/domain"
)

// CreatePokemonRequest is the expected body for a POST /pokemon request.
type CreatePokemonRequest struct {
	Name     string `json:"name" validate:"required,min=1"`
	No       int    `json:"no" validate:"required,min=1"`
	ImageURL string `json:"imageUrl,omitempty" validate:"omitempty,url"`
}

// UpdatePokemonRequest is the expected body for a PATCH /pokemon/{term}
// request. Absent fields are left unchanged.
type UpdatePokemonRequest struct {
	Name     *string `json:"name,omitempty" validate:"omitempty,min=1"`
	No       *int    `json:"no,omitempty" validate:"omitempty,min=1"`
	ImageURL *string `json:"imageUrl,omitempty" validate:"omitempty,url"`
}

// ToPatch converts the request into a domain patch.
func (r UpdatePokemonRequest) ToPatch() domain.PokemonPatch {
	return domain.PokemonPatch{Name: r.Name, No: r.No, ImageURL: r.ImageURL}
}

// PaginationQuery holds the parsed list query parameters. Nil means absent.
type PaginationQuery struct {
	Limit  *int `json:"limit,omitempty" validate:"omitempty,min=1"`
	Offset *int `json:"offset,omitempty" validate:"omitempty,min=0"`
}

// Values returns limit and offset with absent parameters as zero.
func (q PaginationQuery) Values() (limit, offset int) {
	if q.Limit != nil {
		limit = *q.Limit
	}
	if q.Offset != nil {
		offset = *q.Offset
	}
	return limit, offset
}

// PokemonResponse is the API representation of a single record.
type PokemonResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	No        int       `json:"no"`
	ImageURL  string    `json:"imageUrl,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// NewPokemonResponse converts a domain record.
func NewPokemonResponse(p domain.Pokemon) PokemonResponse {
	return PokemonResponse{
		ID:        p.ID,
		Name:      p.Name,
		No:        p.No,
		ImageURL:  p.ImageURL,
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
}

// NewPokemonListResponse converts a slice of domain records, never returning nil.
func NewPokemonListResponse(ps []domain.Pokemon) []PokemonResponse {
	out := make([]PokemonResponse, len(ps))
	for i, p := range ps {
		out[i] = NewPokemonResponse(p)
	}
	return out
}

// MessageResponse carries a plain status message.
type MessageResponse struct {
	Message string `json:"message"`
}

// ErrorResponse is the body of every error response.
type ErrorResponse struct {
	Error string `json:"error"`
}
