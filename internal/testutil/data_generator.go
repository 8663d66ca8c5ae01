// Package testutil provides test data for unit and integration tests.
package testutil

import (
	"fmt"
	"strings"
	"time"

	"pokedex-backend/internal/domain"

	"github.com/brianvoe/gofakeit/v7"
)

// TestDataGenerator creates reproducible pokemon fixtures.
type TestDataGenerator struct {
	faker *gofakeit.Faker
	seed  int64
	next  int
}

// NewTestDataGenerator creates a new test data generator with optional seed
func NewTestDataGenerator(seed ...int64) *TestDataGenerator {
	var s int64
	if len(seed) > 0 {
		s = seed[0]
	} else {
		s = time.Now().UnixNano()
	}
	return &TestDataGenerator{faker: gofakeit.New(uint64(s)), seed: s}
}

// Seed returns the seed, for reproducing a failing run.
func (g *TestDataGenerator) Seed() int64 {
	return g.seed
}

// Pokemon returns a record with a unique name and number and no ID. Names
// carry mixed casing so normalization is exercised.
func (g *TestDataGenerator) Pokemon() domain.Pokemon {
	g.next++
	name := fmt.Sprintf("%s%s-%d", strings.ToUpper(g.faker.Letter()), g.faker.Animal(), g.next)
	return domain.Pokemon{
		Name:     name,
		No:       g.next,
		ImageURL: g.faker.URL(),
	}
}

// Pokemons returns n unique records.
func (g *TestDataGenerator) Pokemons(n int) []domain.Pokemon {
	out := make([]domain.Pokemon, n)
	for i := range out {
		out[i] = g.Pokemon()
	}
	return out
}

// PokeAPIURL returns the resource URL PokeAPI uses for number no.
func PokeAPIURL(base string, no int) string {
	return fmt.Sprintf("%s/pokemon/%d/", strings.TrimRight(base, "/"), no)
}
