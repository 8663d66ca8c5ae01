package repository

import "fmt"

// Config represents the configuration needed for repository implementations.
type Config struct {
	TableName string // Primary table name for data storage
	Region    string // Database region
	Endpoint  string // Optional endpoint override, e.g. DynamoDB Local

	// BatchSize is the maximum number of write actions per transaction.
	// Every record costs three actions (record plus two uniqueness guards).
	BatchSize int
}

// Validate checks if the configuration has all required fields and valid values.
func (c Config) Validate() error {
	if c.TableName == "" {
		return fmt.Errorf("TableName is required")
	}
	if c.BatchSize < 3 || c.BatchSize > 100 {
		return fmt.Errorf("BatchSize must be between 3 and 100, got %d", c.BatchSize)
	}
	return nil
}

// WithDefaults returns a new Config with default values applied for optional fields.
func (c Config) WithDefaults() Config {
	config := c
	if config.BatchSize == 0 {
		config.BatchSize = 99
	}
	return config
}

// RecordsPerBatch is how many records fit in one transactional write.
func (c Config) RecordsPerBatch() int {
	return c.WithDefaults().BatchSize / 3
}

// NewConfig creates a new repository configuration with required fields.
func NewConfig(tableName string) Config {
	return Config{TableName: tableName}.WithDefaults()
}
