// Package repository defines the data access interfaces for the Pokemon store.
//
// The service layer depends only on PokemonRepository; the DynamoDB adapter in
// package ddb and the in-memory double in package mocks both satisfy it. Finders
// return (nil, nil) when nothing matches so callers can chain lookups without
// inspecting error types.
package repository

import (
	"context"

	"pokedex-backend/internal/domain"
)

// PokemonRepository is the record store accessor.
type PokemonRepository interface {
	// Create inserts one record and returns it with its store-assigned ID.
	// A duplicate name or number yields a DuplicateKeyError.
	Create(ctx context.Context, pokemon domain.Pokemon) (*domain.Pokemon, error)

	// CreateMany inserts records in order. It stops at the first failing write;
	// records written before the failure stay written.
	CreateMany(ctx context.Context, pokemons []domain.Pokemon) ([]domain.Pokemon, error)

	// List returns a page in store-native order.
	List(ctx context.Context, limit, offset int) ([]domain.Pokemon, error)

	FindByID(ctx context.Context, id string) (*domain.Pokemon, error)
	FindByNo(ctx context.Context, no int) (*domain.Pokemon, error)
	FindByName(ctx context.Context, name string) (*domain.Pokemon, error)

	// Update replaces current with updated. Both must carry the same ID.
	// updated.UpdatedAt is stored as given; the store stamps it only when zero.
	Update(ctx context.Context, current, updated domain.Pokemon) error

	// Delete removes the record with exactly this ID and reports how many
	// records were deleted (0 or 1).
	Delete(ctx context.Context, id string) (int, error)

	// DeleteAll removes every record and returns the number removed.
	DeleteAll(ctx context.Context) (int, error)

	ErrorClassifier
}

// ErrorKind is the store-independent class of a store failure.
type ErrorKind int

const (
	KindOther ErrorKind = iota
	KindConflict
)

func (k ErrorKind) String() string {
	switch k {
	case KindConflict:
		return "conflict"
	default:
		return "other"
	}
}

// ErrorClassifier maps a store error onto an ErrorKind. Each adapter knows its
// own driver's duplicate-key signal.
type ErrorClassifier interface {
	Classify(err error) ErrorKind
}
