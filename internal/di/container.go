// Package di assembles the application graph with Wire.
package di

import (
	"context"
	"sync"

	"pokedex-backend/internal/config"
	"pokedex-backend/internal/infrastructure/observability"
	"pokedex-backend/internal/repository"
	"pokedex-backend/internal/service/pokemon"
	"pokedex-backend/internal/service/seed"

	awsDynamodb "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// Logging pairs the root logger with the level that controls it at runtime.
type Logging struct {
	Logger *zap.Logger
	Level  zap.AtomicLevel
}

// Container holds every long-lived dependency of a process.
type Container struct {
	Config *config.Config
	Logger *zap.Logger
	// Level changes the verbosity of Logger while running.
	Level zap.AtomicLevel

	Router         *chi.Mux
	PokemonService pokemon.Service
	SeedService    seed.Service
	Repository     repository.PokemonRepository
	DynamoDB       *awsDynamodb.Client

	Collector *observability.Collector
	Tracer    *observability.TracerProvider
	ColdStart *ColdStartTracker

	cleanup   func()
	closeOnce sync.Once
}

// Close releases the container's resources: it shuts the tracer provider
// down and flushes the logger. Safe to call more than once.
func (c *Container) Close() {
	c.closeOnce.Do(func() {
		if c.cleanup != nil {
			c.cleanup()
		}
	})
}

// InitializeContainer builds the application graph for cfg. Close releases
// what it acquired.
func InitializeContainer(ctx context.Context, cfg *config.Config) (*Container, error) {
	container, cleanup, err := initializeContainer(ctx, cfg)
	if err != nil {
		return nil, err
	}
	container.cleanup = cleanup
	return container, nil
}
