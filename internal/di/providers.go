package di

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"pokedex-backend/internal/config"
	"pokedex-backend/internal/handlers"
	"pokedex-backend/internal/infrastructure/messaging"
	"pokedex-backend/internal/infrastructure/observability"
	"pokedex-backend/internal/repository"
	"pokedex-backend/internal/repository/ddb"
	"pokedex-backend/internal/service/pokemon"
	"pokedex-backend/internal/service/seed"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsConfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	awsDynamodb "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	awsEventbridge "github.com/aws/aws-sdk-go-v2/service/eventbridge"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

const tracerShutdownTimeout = 5 * time.Second

func provideLogging(cfg *config.Config) (*Logging, func(), error) {
	logger, level, err := observability.NewLogger(cfg.Observability.LogLevel, string(cfg.Environment))
	if err != nil {
		return nil, nil, err
	}
	logger = logger.With(
		zap.String("service", cfg.Observability.ServiceName),
		zap.String("environment", string(cfg.Environment)),
	)
	cleanup := func() {
		_ = logger.Sync()
	}
	return &Logging{Logger: logger, Level: level}, cleanup, nil
}

func provideLogger(logging *Logging) *zap.Logger {
	return logging.Logger
}

func provideCollector(cfg *config.Config) *observability.Collector {
	return observability.NewCollector(cfg.Observability.MetricsNamespace)
}

func provideTracerProvider(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*observability.TracerProvider, func(), error) {
	tp, err := observability.InitTracing(ctx, observability.TracingConfig{
		ServiceName: cfg.Observability.ServiceName,
		Environment: string(cfg.Environment),
		Endpoint:    cfg.Observability.OTLPEndpoint,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize tracing: %w", err)
	}
	logger.Info("tracing initialized", zap.Bool("exporting", tp.Enabled()))

	cleanup := func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), tracerShutdownTimeout)
		defer cancel()
		if err := tp.Shutdown(shutdownCtx); err != nil {
			logger.Warn("tracer provider shutdown failed", zap.Error(err))
		}
	}
	return tp, cleanup, nil
}

// provideAWSConfig loads the default credential chain. Against a local
// endpoint without credentials in the environment it falls back to static
// dummy credentials, which DynamoDB Local accepts.
func provideAWSConfig(ctx context.Context, cfg *config.Config) (aws.Config, error) {
	opts := []func(*awsConfig.LoadOptions) error{
		awsConfig.WithRegion(cfg.Database.Region),
	}
	if cfg.Database.Endpoint != "" && os.Getenv("AWS_ACCESS_KEY_ID") == "" {
		opts = append(opts, awsConfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider("local", "local", ""),
		))
	}

	awsCfg, err := awsConfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return aws.Config{}, fmt.Errorf("unable to load AWS SDK config: %w", err)
	}
	return awsCfg, nil
}

func provideDynamoDBClient(awsCfg aws.Config, cfg *config.Config) *awsDynamodb.Client {
	return ddb.NewClient(awsCfg, cfg.Database.Endpoint)
}

func provideRepository(client *awsDynamodb.Client, cfg *config.Config, logger *zap.Logger, collector *observability.Collector) repository.PokemonRepository {
	return observability.InstrumentRepository(
		ddb.NewRepository(client, cfg.Database.Repository(), logger),
		collector,
	)
}

// providePublisher returns the EventBridge publisher when a bus is
// configured and the no-op publisher otherwise.
func providePublisher(awsCfg aws.Config, cfg *config.Config, logger *zap.Logger) messaging.Publisher {
	if cfg.Events.BusName == "" {
		return messaging.NoopPublisher{}
	}
	client := awsEventbridge.NewFromConfig(awsCfg)
	return messaging.NewEventBridgePublisher(client, cfg.Events.BusName, cfg.Events.Source, logger)
}

func provideHTTPClient(cfg *config.Config) *http.Client {
	return &http.Client{Timeout: cfg.Seed.HTTPTimeout}
}

func provideFetcher(client *http.Client, cfg *config.Config, logger *zap.Logger) seed.Fetcher {
	return seed.NewPokeAPIClient(client, seed.PokeAPIConfig{
		SourceURL: cfg.Seed.SourceURL,
		PageSize:  cfg.Seed.PageSize,
		Timeout:   cfg.Seed.HTTPTimeout,
	}, logger)
}

func provideRouter(
	cfg *config.Config,
	pokemonService pokemon.Service,
	seedService seed.Service,
	collector *observability.Collector,
	logger *zap.Logger,
) *chi.Mux {
	return handlers.NewRouter(handlers.RouterDeps{
		PokemonService: pokemonService,
		SeedService:    seedService,
		Collector:      collector,
		Logger:         logger,
		ServiceName:    cfg.Observability.ServiceName,
		AllowedOrigins: cfg.Server.AllowedOrigins,
	})
}

func provideContainer(
	cfg *config.Config,
	logging *Logging,
	router *chi.Mux,
	pokemonService pokemon.Service,
	seedService seed.Service,
	repo repository.PokemonRepository,
	client *awsDynamodb.Client,
	collector *observability.Collector,
	tracer *observability.TracerProvider,
	coldStart *ColdStartTracker,
) *Container {
	return &Container{
		Config:         cfg,
		Logger:         logging.Logger,
		Level:          logging.Level,
		Router:         router,
		PokemonService: pokemonService,
		SeedService:    seedService,
		Repository:     repo,
		DynamoDB:       client,
		Collector:      collector,
		Tracer:         tracer,
		ColdStart:      coldStart,
	}
}
