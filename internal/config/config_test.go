package config

import (
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func newTestLoader(dir string, env Environment, vars map[string]string) *Loader {
	l := NewLoader(dir, env)
	l.lookupEnv = func(key string) (string, bool) {
		v, ok := vars[key]
		return v, ok
	}
	return l
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := newTestLoader(t.TempDir(), Test, nil).Load()
	require.NoError(t, err)

	assert.Equal(t, Test, cfg.Environment)
	assert.Equal(t, 3000, cfg.Server.Port)
	assert.Equal(t, "pokedex-test", cfg.Database.TableName)
	assert.Equal(t, 99, cfg.Database.BatchSize)
	assert.Equal(t, "https://pokeapi.co/api/v2/pokemon", cfg.Seed.SourceURL)
	assert.Equal(t, 650, cfg.Seed.PageSize)
	assert.Empty(t, cfg.Events.BusName)
	assert.Equal(t, []string{"defaults", "environment"}, cfg.LoadedFrom)
}

func TestLoadLayering(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "base.yaml", `
server:
  port: 4000
  shutdown_timeout: 5s
seed:
  page_size: 100
observability:
  log_level: warn
`)
	writeFile(t, dir, "staging.yaml", `
database:
  table_name: pokedex-staging-blue
seed:
  page_size: 200
`)

	cfg, err := newTestLoader(dir, Staging, map[string]string{
		"SEED_PAGE_SIZE":       "300",
		"EVENT_BUS_NAME":       "pokedex-bus",
		"CORS_ALLOWED_ORIGINS": "https://a.test, https://b.test",
	}).Load()
	require.NoError(t, err)

	assert.Equal(t, 4000, cfg.Server.Port)
	assert.Equal(t, 5*time.Second, cfg.Server.ShutdownTimeout)
	assert.Equal(t, "pokedex-staging-blue", cfg.Database.TableName)
	assert.Equal(t, 300, cfg.Seed.PageSize)
	assert.Equal(t, "warn", cfg.Observability.LogLevel)
	assert.Equal(t, "pokedex-bus", cfg.Events.BusName)
	assert.Equal(t, []string{"https://a.test", "https://b.test"}, cfg.Server.AllowedOrigins)
	assert.Equal(t, []string{
		"defaults",
		filepath.Join(dir, "base.yaml"),
		filepath.Join(dir, "staging.yaml"),
		"environment",
	}, cfg.LoadedFrom)
}

func TestLoadErrors(t *testing.T) {
	t.Run("MalformedFile", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, dir, "base.yaml", "server: [not, a, map")
		_, err := newTestLoader(dir, Test, nil).Load()
		assert.Error(t, err)
	})

	t.Run("BadNumberInEnvironment", func(t *testing.T) {
		_, err := newTestLoader(t.TempDir(), Test, map[string]string{"SERVER_PORT": "eighty"}).Load()
		assert.ErrorContains(t, err, "SERVER_PORT")
	})

	t.Run("BadDurationInEnvironment", func(t *testing.T) {
		_, err := newTestLoader(t.TempDir(), Test, map[string]string{"SEED_HTTP_TIMEOUT": "soon"}).Load()
		assert.ErrorContains(t, err, "SEED_HTTP_TIMEOUT")
	})
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		cfg, err := newTestLoader(t.TempDir(), Production, nil).Load()
		require.NoError(t, err)
		return cfg
	}

	tests := []struct {
		name   string
		mutate func(*Config)
		errMsg string
	}{
		{"unknown environment", func(c *Config) { c.Environment = "qa" }, "environment"},
		{"port zero", func(c *Config) { c.Server.Port = 0 }, "server port"},
		{"port too large", func(c *Config) { c.Server.Port = 70000 }, "server port"},
		{"missing table", func(c *Config) { c.Database.TableName = "" }, "TableName"},
		{"batch too small", func(c *Config) { c.Database.BatchSize = 2 }, "BatchSize"},
		{"batch too large", func(c *Config) { c.Database.BatchSize = 101 }, "BatchSize"},
		{"page size", func(c *Config) { c.Seed.PageSize = 0 }, "page size"},
		{"source url", func(c *Config) { c.Seed.SourceURL = "" }, "source url"},
		{"http timeout", func(c *Config) { c.Seed.HTTPTimeout = 0 }, "http timeout"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			assert.ErrorContains(t, cfg.Validate(), tt.errMsg)
		})
	}

	t.Run("valid", func(t *testing.T) {
		assert.NoError(t, valid().Validate())
	})
}

func TestGetEnvironment(t *testing.T) {
	t.Setenv("ENVIRONMENT", " Production ")
	assert.Equal(t, Production, GetEnvironment())

	t.Setenv("ENVIRONMENT", "")
	assert.Equal(t, Development, GetEnvironment())
}

func TestServerAddress(t *testing.T) {
	assert.Equal(t, "0.0.0.0:3000", Server{Host: "0.0.0.0", Port: 3000}.Address())
}

func TestWatcher(t *testing.T) {
	t.Run("Should reload and notify in development", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, dir, "base.yaml", "observability:\n  log_level: info\n")
		loader := newTestLoader(dir, Development, nil)
		initial, err := loader.Load()
		require.NoError(t, err)

		w := NewWatcher(loader, initial, zap.NewNop())
		w.debounce = 10 * time.Millisecond
		var mu sync.Mutex
		var levels []string
		w.OnChange(func(c *Config) {
			mu.Lock()
			defer mu.Unlock()
			levels = append(levels, c.Observability.LogLevel)
		})
		require.NoError(t, w.Start())
		defer w.Stop()

		writeFile(t, dir, "base.yaml", "observability:\n  log_level: debug\n")

		require.Eventually(t, func() bool {
			mu.Lock()
			defer mu.Unlock()
			return len(levels) > 0 && levels[len(levels)-1] == "debug"
		}, 5*time.Second, 20*time.Millisecond)
		assert.Equal(t, "debug", w.Current().Observability.LogLevel)
	})

	t.Run("Should keep the previous config on a bad reload", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, dir, "base.yaml", "server:\n  port: 3001\n")
		loader := newTestLoader(dir, Development, nil)
		initial, err := loader.Load()
		require.NoError(t, err)

		w := NewWatcher(loader, initial, zap.NewNop())
		w.debounce = 10 * time.Millisecond
		require.NoError(t, w.Start())
		defer w.Stop()

		writeFile(t, dir, "base.yaml", "server:\n  port: -1\n")
		time.Sleep(200 * time.Millisecond)
		assert.Equal(t, 3001, w.Current().Server.Port)
	})

	t.Run("Should not watch outside development", func(t *testing.T) {
		cfg, err := newTestLoader(t.TempDir(), Production, nil).Load()
		require.NoError(t, err)

		w := NewWatcher(NewLoader(t.TempDir(), Production), cfg, nil)
		require.NoError(t, w.Start())
		w.Stop()
		w.Stop()
	})
}
