package di

import (
	"pokedex-backend/internal/service/pokemon"
	"pokedex-backend/internal/service/seed"

	"github.com/google/wire"
)

// SuperSet combines all provider sets for the complete application.
var SuperSet = wire.NewSet(
	ObservabilityProviders,
	InfrastructureProviders,
	ServiceProviders,
	InterfaceProviders,
	NewColdStartTracker,
	provideContainer,
)

// ObservabilityProviders provides logging, metrics and tracing.
var ObservabilityProviders = wire.NewSet(
	provideLogging,
	provideLogger,
	provideCollector,
	provideTracerProvider,
)

// InfrastructureProviders provides AWS clients, the store and the upstream client.
var InfrastructureProviders = wire.NewSet(
	provideAWSConfig,
	provideDynamoDBClient,
	provideRepository,
	providePublisher,
	provideHTTPClient,
	provideFetcher,
)

// ServiceProviders provides the business services.
var ServiceProviders = wire.NewSet(
	pokemon.NewService,
	seed.NewService,
)

// InterfaceProviders provides the HTTP surface.
var InterfaceProviders = wire.NewSet(
	provideRouter,
)
