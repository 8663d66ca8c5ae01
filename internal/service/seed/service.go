// Package seed replaces the store contents with one page of reference data
// pulled from PokeAPI.
package seed

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"pokedex-backend/internal/domain"
	"pokedex-backend/internal/infrastructure/messaging"
	"pokedex-backend/internal/infrastructure/observability"
	"pokedex-backend/internal/repository"
	"pokedex-backend/internal/service/pokemon"

	"go.uber.org/zap"
)

// ExecutedMessage is the result of a successful run.
const ExecutedMessage = "Seed Executed"

// Service defines the seed operation.
type Service interface {
	// Execute fetches the upstream page, clears the store and bulk-inserts
	// the page. It is not atomic: a failure after the clear leaves the store
	// partially filled.
	Execute(ctx context.Context) (string, error)
}

type service struct {
	repo      repository.PokemonRepository
	fetcher   Fetcher
	publisher messaging.Publisher
	metrics   *observability.Collector
	logger    *zap.Logger
}

// NewService creates the seed service. publisher and metrics may be nil.
func NewService(repo repository.PokemonRepository, fetcher Fetcher, publisher messaging.Publisher, metrics *observability.Collector, logger *zap.Logger) Service {
	if publisher == nil {
		publisher = messaging.NoopPublisher{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &service{
		repo:      repo,
		fetcher:   fetcher,
		publisher: publisher,
		metrics:   metrics,
		logger:    logger.Named("seed"),
	}
}

func (s *service) Execute(ctx context.Context) (string, error) {
	count, err := s.execute(ctx)
	if err != nil {
		s.metrics.RecordSeedRun("failure")
		return "", pokemon.HandleExceptions(s.logger, s.repo, err)
	}
	s.metrics.RecordSeedRun("success")

	event := messaging.NewEvent(messaging.EventSeedExecuted, "", map[string]int{"count": count})
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.Warn("failed to publish event", zap.String("event_type", event.Type), zap.Error(err))
	}
	return ExecutedMessage, nil
}

func (s *service) execute(ctx context.Context) (int, error) {
	results, err := s.fetcher.FetchPage(ctx)
	if err != nil {
		return 0, err
	}

	records := make([]domain.Pokemon, 0, len(results))
	for _, r := range results {
		no, err := NumberFromURL(r.URL)
		if err != nil {
			return 0, err
		}
		records = append(records, domain.Pokemon{
			Name:     domain.NormalizeName(r.Name),
			No:       no,
			ImageURL: r.URL,
		})
	}

	removed, err := s.repo.DeleteAll(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to clear store: %w", err)
	}
	s.metrics.RecordPokemonDeleted(removed)

	created, err := s.repo.CreateMany(ctx, records)
	s.metrics.RecordPokemonCreated(len(created))
	if err != nil {
		return 0, err
	}

	s.logger.Info("seed executed", zap.Int("removed", removed), zap.Int("inserted", len(created)))
	return len(created), nil
}

// NumberFromURL extracts the numeric id PokeAPI puts in the second-to-last
// path segment, e.g. ".../pokemon/25/" yields 25.
func NumberFromURL(resourceURL string) (int, error) {
	segments := strings.Split(resourceURL, "/")
	if len(segments) < 2 {
		return 0, fmt.Errorf("resource url %q has no id segment", resourceURL)
	}
	no, err := strconv.Atoi(segments[len(segments)-2])
	if err != nil {
		return 0, fmt.Errorf("resource url %q has a non-numeric id segment: %w", resourceURL, err)
	}
	return no, nil
}
