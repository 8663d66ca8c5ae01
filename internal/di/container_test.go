package di

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"pokedex-backend/internal/config"
	"pokedex-backend/internal/infrastructure/messaging"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func testConfig() *config.Config {
	return &config.Config{
		Environment: config.Test,
		Server: config.Server{
			Host:            "127.0.0.1",
			Port:            3000,
			ShutdownTimeout: time.Second,
		},
		Database: config.Database{
			TableName: "pokedex-test",
			Region:    "us-east-1",
			Endpoint:  "http://127.0.0.1:8000",
			BatchSize: 99,
		},
		Seed: config.Seed{
			SourceURL:   "http://127.0.0.1:1/api/v2/pokemon",
			PageSize:    10,
			HTTPTimeout: time.Second,
		},
		Observability: config.Observability{
			LogLevel:         "error",
			ServiceName:      "pokedex-test",
			MetricsNamespace: "pokedex_test",
		},
	}
}

func TestInitializeContainer(t *testing.T) {
	container, err := InitializeContainer(context.Background(), testConfig())
	require.NoError(t, err)
	defer container.Close()

	require.NotNil(t, container.Router)
	assert.NotNil(t, container.PokemonService)
	assert.NotNil(t, container.SeedService)
	assert.NotNil(t, container.DynamoDB)
	assert.False(t, container.Tracer.Enabled())
	assert.Equal(t, zap.ErrorLevel, container.Level.Level())

	rr := httptest.NewRecorder()
	container.Router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"status":"healthy"}`, rr.Body.String())

	container.Close()
}

func TestLevelIsAdjustable(t *testing.T) {
	container, err := InitializeContainer(context.Background(), testConfig())
	require.NoError(t, err)
	defer container.Close()

	container.Level.SetLevel(zap.DebugLevel)
	assert.True(t, container.Logger.Core().Enabled(zap.DebugLevel))
}

func TestProvidePublisher(t *testing.T) {
	cfg := testConfig()
	awsCfg, err := provideAWSConfig(context.Background(), cfg)
	require.NoError(t, err)

	assert.IsType(t, messaging.NoopPublisher{}, providePublisher(awsCfg, cfg, zap.NewNop()))

	cfg.Events.BusName = "pokedex-bus"
	assert.IsType(t, &messaging.EventBridgePublisher{}, providePublisher(awsCfg, cfg, zap.NewNop()))
}

func TestColdStartTracker(t *testing.T) {
	tracker := NewColdStartTracker()
	assert.True(t, tracker.MarkServed())
	assert.False(t, tracker.MarkServed())
	assert.GreaterOrEqual(t, tracker.SinceStart(), time.Duration(0))
}
