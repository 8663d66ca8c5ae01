package pokemon

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"

	"pokedex-backend/internal/domain"
	"pokedex-backend/internal/repository"
	appErrors "pokedex-backend/pkg/errors"

	"github.com/google/uuid"
)

// lookupStrategy tries to resolve term one way. (nil, nil) means no match,
// including when the strategy does not apply to this term.
type lookupStrategy struct {
	name   string
	lookup func(ctx context.Context, term string) (*domain.Pokemon, error)
}

// resolver resolves a free-text term to one record.
type resolver struct {
	strategies []lookupStrategy
}

// newResolver builds the lookup order: number, then store id, then name.
func newResolver(repo repository.PokemonRepository) *resolver {
	return &resolver{strategies: []lookupStrategy{
		{name: "no", lookup: func(ctx context.Context, term string) (*domain.Pokemon, error) {
			no, ok := parseNo(term)
			if !ok {
				return nil, nil
			}
			return repo.FindByNo(ctx, no)
		}},
		{name: "id", lookup: func(ctx context.Context, term string) (*domain.Pokemon, error) {
			if _, err := uuid.Parse(term); err != nil {
				return nil, nil
			}
			return repo.FindByID(ctx, term)
		}},
		{name: "name", lookup: func(ctx context.Context, term string) (*domain.Pokemon, error) {
			return repo.FindByName(ctx, domain.NormalizeTerm(term))
		}},
	}}
}

// parseNo reads term as a record number. Surrounding whitespace and a
// decimal form of a whole number ("25.0", "2.5e1") are accepted.
func parseNo(term string) (int, bool) {
	v, err := strconv.ParseFloat(strings.TrimSpace(term), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) || v != math.Trunc(v) {
		return 0, false
	}
	if v > math.MaxInt32 || v < math.MinInt32 {
		return 0, false
	}
	return int(v), true
}

// resolve returns the first match. A store failure stops the search and is
// returned as is; a miss on every strategy is NOT_FOUND.
func (r *resolver) resolve(ctx context.Context, term string) (*domain.Pokemon, error) {
	for _, s := range r.strategies {
		p, err := s.lookup(ctx, term)
		if err != nil {
			return nil, fmt.Errorf("lookup by %s: %w", s.name, err)
		}
		if p != nil {
			return p, nil
		}
	}
	return nil, appErrors.NewNotFound(fmt.Sprintf(`Pokemon with id, name or no "%s" not found`, term))
}
