package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"pokedex-backend/internal/repository"
)

// Environment names a deployment environment.
type Environment string

const (
	Development Environment = "development"
	Staging     Environment = "staging"
	Production  Environment = "production"
	Test        Environment = "test"
)

// IsValid reports whether e is a known environment.
func (e Environment) IsValid() bool {
	switch e {
	case Development, Staging, Production, Test:
		return true
	}
	return false
}

// Config is the complete runtime configuration.
type Config struct {
	Environment   Environment   `yaml:"environment" json:"environment"`
	Server        Server        `yaml:"server" json:"server"`
	Database      Database      `yaml:"database" json:"database"`
	Seed          Seed          `yaml:"seed" json:"seed"`
	Events        Events        `yaml:"events" json:"events"`
	Observability Observability `yaml:"observability" json:"observability"`

	// LoadedFrom lists the sources applied, lowest priority first.
	LoadedFrom []string `yaml:"-" json:"-"`
}

// Server configures the HTTP listener.
type Server struct {
	Host            string        `yaml:"host" json:"host"`
	Port            int           `yaml:"port" json:"port"`
	ReadTimeout     time.Duration `yaml:"read_timeout" json:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout" json:"write_timeout"`
	IdleTimeout     time.Duration `yaml:"idle_timeout" json:"idle_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" json:"shutdown_timeout"`
	AllowedOrigins  []string      `yaml:"allowed_origins" json:"allowed_origins"`
}

// Address returns host:port for net/http.
func (s Server) Address() string {
	return net.JoinHostPort(s.Host, strconv.Itoa(s.Port))
}

// Database configures the DynamoDB table.
type Database struct {
	TableName string `yaml:"table_name" json:"table_name"`
	Region    string `yaml:"region" json:"region"`
	Endpoint  string `yaml:"endpoint" json:"endpoint"`
	BatchSize int    `yaml:"batch_size" json:"batch_size"`
}

// Repository converts the section into the repository configuration.
func (d Database) Repository() repository.Config {
	return repository.Config{
		TableName: d.TableName,
		Region:    d.Region,
		Endpoint:  d.Endpoint,
		BatchSize: d.BatchSize,
	}.WithDefaults()
}

// Seed configures the upstream import.
type Seed struct {
	SourceURL   string        `yaml:"source_url" json:"source_url"`
	PageSize    int           `yaml:"page_size" json:"page_size"`
	HTTPTimeout time.Duration `yaml:"http_timeout" json:"http_timeout"`
}

// Events configures domain event publishing. An empty BusName disables it.
type Events struct {
	BusName string `yaml:"bus_name" json:"bus_name"`
	Source  string `yaml:"source" json:"source"`
}

// Observability configures logging, tracing and metrics.
type Observability struct {
	LogLevel         string `yaml:"log_level" json:"log_level"`
	ServiceName      string `yaml:"service_name" json:"service_name"`
	OTLPEndpoint     string `yaml:"otlp_endpoint" json:"otlp_endpoint"`
	MetricsNamespace string `yaml:"metrics_namespace" json:"metrics_namespace"`
}

// Validate checks the configuration and returns every problem found.
func (c *Config) Validate() error {
	var errs []error

	if !c.Environment.IsValid() {
		errs = append(errs, fmt.Errorf("environment %q is not valid", c.Environment))
	}
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("server port must be between 1 and 65535, got %d", c.Server.Port))
	}
	if c.Server.ShutdownTimeout <= 0 {
		errs = append(errs, errors.New("server shutdown timeout must be positive"))
	}
	if err := c.Database.Repository().Validate(); err != nil {
		errs = append(errs, fmt.Errorf("database: %w", err))
	}
	if c.Seed.SourceURL == "" {
		errs = append(errs, errors.New("seed source url is required"))
	}
	if c.Seed.PageSize <= 0 {
		errs = append(errs, fmt.Errorf("seed page size must be positive, got %d", c.Seed.PageSize))
	}
	if c.Seed.HTTPTimeout <= 0 {
		errs = append(errs, errors.New("seed http timeout must be positive"))
	}

	return errors.Join(errs...)
}

// IsDevelopment reports whether hot reloading and console logging apply.
func (c *Config) IsDevelopment() bool {
	return c.Environment == Development
}

// GetEnvironment reads ENVIRONMENT, defaulting to development.
func GetEnvironment() Environment {
	env := Environment(strings.ToLower(strings.TrimSpace(os.Getenv("ENVIRONMENT"))))
	if env == "" {
		return Development
	}
	return env
}
