// Package domain contains the core data structures for the application,
// independent of the database or API layers.
package domain

import (
	"strings"
	"time"
)

// Pokemon is a single reference record. Name and No are unique across the store.
type Pokemon struct {
	ID        string
	Name      string
	No        int
	ImageURL  string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// PokemonPatch carries the fields of a partial update. Nil means "leave as is".
type PokemonPatch struct {
	Name     *string
	No       *int
	ImageURL *string
}

// IsEmpty reports whether the patch changes nothing.
func (p PokemonPatch) IsEmpty() bool {
	return p.Name == nil && p.No == nil && p.ImageURL == nil
}

// Apply returns a copy of pk with the patch fields merged in.
func (p PokemonPatch) Apply(pk Pokemon) Pokemon {
	if p.Name != nil {
		pk.Name = *p.Name
	}
	if p.No != nil {
		pk.No = *p.No
	}
	if p.ImageURL != nil {
		pk.ImageURL = *p.ImageURL
	}
	return pk
}

// NormalizeName is the canonical stored form of a name.
func NormalizeName(name string) string {
	return strings.ToLower(name)
}

// NormalizeTerm is the form a free-text lookup term is compared in.
func NormalizeTerm(term string) string {
	return strings.ToLower(strings.TrimSpace(term))
}
