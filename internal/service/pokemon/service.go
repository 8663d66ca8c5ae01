// Package pokemon provides the business logic for pokemon records: creation,
// listing, term resolution, partial update and removal.
package pokemon

import (
	"context"
	"fmt"
	"time"

	"pokedex-backend/internal/domain"
	"pokedex-backend/internal/infrastructure/messaging"
	"pokedex-backend/internal/infrastructure/observability"
	"pokedex-backend/internal/repository"
	appErrors "pokedex-backend/pkg/errors"

	"go.uber.org/zap"
)

// CreatePokemonInput carries the fields of a new record.
type CreatePokemonInput struct {
	Name     string
	No       int
	ImageURL string
}

func (in CreatePokemonInput) toDomain() domain.Pokemon {
	return domain.Pokemon{
		Name:     domain.NormalizeName(in.Name),
		No:       in.No,
		ImageURL: in.ImageURL,
	}
}

// Service defines the interface for pokemon-related business operations.
type Service interface {
	// Create stores one record with its name lower-cased.
	Create(ctx context.Context, input CreatePokemonInput) (*domain.Pokemon, error)

	// CreateMany stores records in order; records before a failure stay stored.
	CreateMany(ctx context.Context, inputs []CreatePokemonInput) ([]domain.Pokemon, error)

	// List returns a page in store order. Zero limit means 10.
	List(ctx context.Context, limit, offset int) ([]domain.Pokemon, error)

	// FindByTerm resolves term by number, then id, then name.
	FindByTerm(ctx context.Context, term string) (*domain.Pokemon, error)

	// Update resolves term and applies the present patch fields.
	Update(ctx context.Context, term string, patch domain.PokemonPatch) (*domain.Pokemon, error)

	// Remove deletes the record whose id is exactly id.
	Remove(ctx context.Context, id string) error
}

// service implements the Service interface with concrete business logic.
type service struct {
	repo      repository.PokemonRepository
	resolver  *resolver
	publisher messaging.Publisher
	metrics   *observability.Collector
	logger    *zap.Logger
}

// NewService creates a new pokemon service. publisher and metrics may be nil.
func NewService(repo repository.PokemonRepository, publisher messaging.Publisher, metrics *observability.Collector, logger *zap.Logger) Service {
	if publisher == nil {
		publisher = messaging.NoopPublisher{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &service{
		repo:      repo,
		resolver:  newResolver(repo),
		publisher: publisher,
		metrics:   metrics,
		logger:    logger.Named("pokemon"),
	}
}

func (s *service) Create(ctx context.Context, input CreatePokemonInput) (*domain.Pokemon, error) {
	created, err := s.repo.Create(ctx, input.toDomain())
	if err != nil {
		return nil, HandleExceptions(s.logger, s.repo, err)
	}

	s.metrics.RecordPokemonCreated(1)
	s.publish(ctx, messaging.NewEvent(messaging.EventPokemonCreated, created.ID, created))
	return created, nil
}

func (s *service) CreateMany(ctx context.Context, inputs []CreatePokemonInput) ([]domain.Pokemon, error) {
	pokemons := make([]domain.Pokemon, len(inputs))
	for i, in := range inputs {
		pokemons[i] = in.toDomain()
	}

	created, err := s.repo.CreateMany(ctx, pokemons)
	s.metrics.RecordPokemonCreated(len(created))
	if err != nil {
		s.logger.Warn("bulk insert stopped", zap.Int("written", len(created)), zap.Int("requested", len(inputs)))
		return nil, HandleExceptions(s.logger, s.repo, err)
	}
	return created, nil
}

func (s *service) List(ctx context.Context, limit, offset int) ([]domain.Pokemon, error) {
	window := repository.Pagination{Limit: limit, Offset: offset}.Normalize()

	page, err := s.repo.List(ctx, window.Limit, window.Offset)
	if err != nil {
		return nil, HandleExceptions(s.logger, s.repo, err)
	}
	return page, nil
}

func (s *service) FindByTerm(ctx context.Context, term string) (*domain.Pokemon, error) {
	p, err := s.resolver.resolve(ctx, term)
	if err != nil {
		return nil, HandleExceptions(s.logger, s.repo, err)
	}
	return p, nil
}

func (s *service) Update(ctx context.Context, term string, patch domain.PokemonPatch) (*domain.Pokemon, error) {
	current, err := s.resolver.resolve(ctx, term)
	if err != nil {
		return nil, HandleExceptions(s.logger, s.repo, err)
	}
	if patch.Name != nil {
		name := domain.NormalizeName(*patch.Name)
		patch.Name = &name
	}
	if patch.IsEmpty() {
		return current, nil
	}

	updated := patch.Apply(*current)
	updated.UpdatedAt = time.Now().UTC()
	if err := s.repo.Update(ctx, *current, updated); err != nil {
		if repository.IsNotFound(err) {
			return nil, appErrors.NewNotFound(fmt.Sprintf(`Pokemon with id, name or no "%s" not found`, term))
		}
		return nil, HandleExceptions(s.logger, s.repo, err)
	}

	s.publish(ctx, messaging.NewEvent(messaging.EventPokemonUpdated, updated.ID, updated))
	return &updated, nil
}

func (s *service) Remove(ctx context.Context, id string) error {
	deleted, err := s.repo.Delete(ctx, id)
	if err != nil {
		return HandleExceptions(s.logger, s.repo, err)
	}
	if deleted == 0 {
		return appErrors.NewNotFound(fmt.Sprintf("Pokemon with id %s does not exist", id))
	}

	s.metrics.RecordPokemonDeleted(deleted)
	s.publish(ctx, messaging.NewEvent(messaging.EventPokemonDeleted, id, nil))
	return nil
}

// publish sends an event on a best-effort basis; the write already succeeded.
func (s *service) publish(ctx context.Context, event messaging.Event) {
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.Warn("failed to publish event",
			zap.String("event_type", event.Type),
			zap.String("aggregate_id", event.AggregateID),
			zap.Error(err),
		)
	}
}
