package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Loader layers configuration sources. From lowest to highest priority:
//  1. defaults in code
//  2. <dir>/base.yaml
//  3. <dir>/<environment>.yaml
//  4. environment variables
type Loader struct {
	basePath    string
	environment Environment
	lookupEnv   func(string) (string, bool)
	fileLoaders []FileLoader
}

// FileLoader decodes one configuration file format.
type FileLoader interface {
	Load(reader io.Reader, target any) error
	Extension() string
}

// NewLoader creates a loader reading files from basePath.
func NewLoader(basePath string, env Environment) *Loader {
	if basePath == "" {
		basePath = "config"
	}
	return &Loader{
		basePath:    basePath,
		environment: env,
		lookupEnv:   os.LookupEnv,
		fileLoaders: []FileLoader{&YAMLLoader{}, &JSONLoader{}},
	}
}

// BasePath returns the directory the loader reads.
func (l *Loader) BasePath() string {
	return l.basePath
}

// Load builds, overlays and validates the configuration.
func (l *Loader) Load() (*Config, error) {
	cfg := l.defaultConfig()
	cfg.LoadedFrom = []string{"defaults"}

	for _, name := range []string{"base", string(l.environment)} {
		source, err := l.loadFile(name, cfg)
		if errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to load %s config: %w", name, err)
		}
		cfg.LoadedFrom = append(cfg.LoadedFrom, source)
	}

	if err := l.loadEnvironmentVariables(cfg); err != nil {
		return nil, err
	}
	cfg.LoadedFrom = append(cfg.LoadedFrom, "environment")

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

// loadFile decodes the first <name>.<ext> found and returns its path.
func (l *Loader) loadFile(name string, cfg *Config) (string, error) {
	for _, loader := range l.fileLoaders {
		path := filepath.Join(l.basePath, name+"."+loader.Extension())

		file, err := os.Open(path)
		if errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err != nil {
			return "", err
		}

		err = loader.Load(file, cfg)
		file.Close()
		if err != nil && !errors.Is(err, io.EOF) {
			return "", fmt.Errorf("failed to parse %s: %w", path, err)
		}
		return path, nil
	}
	return "", os.ErrNotExist
}

// loadEnvironmentVariables overlays the environment on cfg.
func (l *Loader) loadEnvironmentVariables(cfg *Config) error {
	var errs []error

	str := func(key string, dst *string) {
		if val, ok := l.lookupEnv(key); ok && val != "" {
			*dst = val
		}
	}
	integer := func(key string, dst *int) {
		if val, ok := l.lookupEnv(key); ok && val != "" {
			n, err := strconv.Atoi(val)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", key, err))
				return
			}
			*dst = n
		}
	}
	duration := func(key string, dst *time.Duration) {
		if val, ok := l.lookupEnv(key); ok && val != "" {
			d, err := time.ParseDuration(val)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", key, err))
				return
			}
			*dst = d
		}
	}

	// Server
	str("SERVER_HOST", &cfg.Server.Host)
	integer("PORT", &cfg.Server.Port)
	integer("SERVER_PORT", &cfg.Server.Port)
	duration("SERVER_SHUTDOWN_TIMEOUT", &cfg.Server.ShutdownTimeout)
	if val, ok := l.lookupEnv("CORS_ALLOWED_ORIGINS"); ok && val != "" {
		cfg.Server.AllowedOrigins = splitList(val)
	}

	// Database
	str("TABLE_NAME", &cfg.Database.TableName)
	str("AWS_REGION", &cfg.Database.Region)
	str("DYNAMODB_ENDPOINT", &cfg.Database.Endpoint)
	integer("DB_BATCH_SIZE", &cfg.Database.BatchSize)

	// Seed
	str("SEED_SOURCE_URL", &cfg.Seed.SourceURL)
	integer("SEED_PAGE_SIZE", &cfg.Seed.PageSize)
	duration("SEED_HTTP_TIMEOUT", &cfg.Seed.HTTPTimeout)

	// Events
	str("EVENT_BUS_NAME", &cfg.Events.BusName)
	str("EVENT_SOURCE", &cfg.Events.Source)

	// Observability
	str("LOG_LEVEL", &cfg.Observability.LogLevel)
	str("SERVICE_NAME", &cfg.Observability.ServiceName)
	str("OTEL_EXPORTER_OTLP_ENDPOINT", &cfg.Observability.OTLPEndpoint)
	str("METRICS_NAMESPACE", &cfg.Observability.MetricsNamespace)

	return errors.Join(errs...)
}

// defaultConfig lets the service start with no files present.
func (l *Loader) defaultConfig() *Config {
	return &Config{
		Environment: l.environment,
		Server: Server{
			Host:            "0.0.0.0",
			Port:            3000,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    60 * time.Second,
			IdleTimeout:     60 * time.Second,
			ShutdownTimeout: 10 * time.Second,
			AllowedOrigins:  []string{"*"},
		},
		Database: Database{
			TableName: "pokedex-" + string(l.environment),
			Region:    "us-east-1",
			BatchSize: 99,
		},
		Seed: Seed{
			SourceURL:   "https://pokeapi.co/api/v2/pokemon",
			PageSize:    650,
			HTTPTimeout: 30 * time.Second,
		},
		Events: Events{
			Source: "pokedex-backend",
		},
		Observability: Observability{
			LogLevel:         "info",
			ServiceName:      "pokedex-backend",
			MetricsNamespace: "pokedex",
		},
	}
}

// YAMLLoader loads configuration from YAML files.
type YAMLLoader struct{}

func (y *YAMLLoader) Load(reader io.Reader, target any) error {
	return yaml.NewDecoder(reader).Decode(target)
}

func (y *YAMLLoader) Extension() string {
	return "yaml"
}

// JSONLoader loads configuration from JSON files.
type JSONLoader struct{}

func (j *JSONLoader) Load(reader io.Reader, target any) error {
	return json.NewDecoder(reader).Decode(target)
}

func (j *JSONLoader) Extension() string {
	return "json"
}

func splitList(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Load reads configuration for the environment named by ENVIRONMENT from the
// directory named by CONFIG_DIR (default "config").
func Load() (*Config, error) {
	return NewLoader(os.Getenv("CONFIG_DIR"), GetEnvironment()).Load()
}
