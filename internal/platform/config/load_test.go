package config_test

import (
	"testing"
	"time"

	"github.com/printcraft/customizer-engine/internal/platform/config"
)

func TestLoad_LocalProfile(t *testing.T) {
	t.Chdir("../../..")

	cfg, err := config.Load("local")
	if err != nil {
		t.Fatalf("Load(\"local\") error: %v", err)
	}

	if cfg.Server.Port != 8080 {
		t.Errorf("Server.Port = %d, want 8080", cfg.Server.Port)
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("Log.Level = %q, want \"debug\"", cfg.Log.Level)
	}
	if cfg.Log.Format != "text" {
		t.Errorf("Log.Format = %q, want \"text\"", cfg.Log.Format)
	}
	if cfg.Telemetry.Enabled {
		t.Error("Telemetry.Enabled = true, want false for local")
	}
	if cfg.Cache.Backend != "memory" {
		t.Errorf("Cache.Backend = %q, want \"memory\" for local", cfg.Cache.Backend)
	}
}

func TestLoad_ProdProfile(t *testing.T) {
	t.Chdir("../../..")

	cfg, err := config.Load("prod")
	if err != nil {
		t.Fatalf("Load(\"prod\") error: %v", err)
	}

	if cfg.Log.Level != "info" {
		t.Errorf("Log.Level = %q, want \"info\"", cfg.Log.Level)
	}
	if cfg.Log.Format != "json" {
		t.Errorf("Log.Format = %q, want \"json\"", cfg.Log.Format)
	}
	if !cfg.Telemetry.Enabled {
		t.Error("Telemetry.Enabled = false, want true for prod")
	}
	if cfg.Telemetry.Exporter != "otlp" {
		t.Errorf("Telemetry.Exporter = %q, want \"otlp\"", cfg.Telemetry.Exporter)
	}
	if cfg.Telemetry.Endpoint == "" {
		t.Error("Telemetry.Endpoint is empty, want non-empty for prod")
	}
	if cfg.Cache.Backend != "redis" {
		t.Errorf("Cache.Backend = %q, want \"redis\" for prod", cfg.Cache.Backend)
	}
	if cfg.Cache.Redis.Addr == "" {
		t.Error("Cache.Redis.Addr is empty, want non-empty for prod")
	}
}

func TestLoad_BaseConfigInheritance(t *testing.T) {
	t.Chdir("../../..")

	cfg, err := config.Load("local")
	if err != nil {
		t.Fatalf("Load(\"local\") error: %v", err)
	}

	// These come from base.yaml, not overridden by local.yaml.
	if cfg.Server.Host != "0.0.0.0" {
		t.Errorf("Server.Host = %q, want \"0.0.0.0\" (from base)", cfg.Server.Host)
	}
	if cfg.Fetcher.Client.Retry.MaxAttempts != 3 {
		t.Errorf("Fetcher.Client.Retry.MaxAttempts = %d, want 3 (from base)",
			cfg.Fetcher.Client.Retry.MaxAttempts)
	}
	if cfg.Fetcher.Client.CircuitBreaker.MaxFailures != 5 {
		t.Errorf("Fetcher.Client.CircuitBreaker.MaxFailures = %d, want 5 (from base)",
			cfg.Fetcher.Client.CircuitBreaker.MaxFailures)
	}
	if cfg.Gallery.Workers != 4 {
		t.Errorf("Gallery.Workers = %d, want 4 (from base)", cfg.Gallery.Workers)
	}
}

func TestLoad_EnvOverrideSimpleKey(t *testing.T) {
	t.Chdir("../../..")
	t.Setenv("APP_SERVER_PORT", "9090")

	cfg, err := config.Load("local")
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}

	if cfg.Server.Port != 9090 {
		t.Errorf("Server.Port = %d, want 9090 (env override)", cfg.Server.Port)
	}
}

func TestLoad_EnvOverrideSnakeCaseKey(t *testing.T) {
	t.Chdir("../../..")
	t.Setenv("APP_SERVER_READ_TIMEOUT", "15s")

	cfg, err := config.Load("local")
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}

	want := 15 * time.Second
	if cfg.Server.ReadTimeout != want {
		t.Errorf("Server.ReadTimeout = %v, want %v (env override)", cfg.Server.ReadTimeout, want)
	}
}

func TestLoad_EnvOverrideDeeplyNestedKey(t *testing.T) {
	t.Chdir("../../..")
	t.Setenv("APP_FETCHER_CLIENT_RETRY_MAX_ATTEMPTS", "7")

	cfg, err := config.Load("local")
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}

	if cfg.Fetcher.Client.Retry.MaxAttempts != 7 {
		t.Errorf("Fetcher.Client.Retry.MaxAttempts = %d, want 7 (env override)",
			cfg.Fetcher.Client.Retry.MaxAttempts)
	}
}

func TestLoad_EnvOverrideRedisAddr(t *testing.T) {
	t.Chdir("../../..")
	t.Setenv("APP_CACHE_REDIS_ADDR", "redis-override:6380")

	cfg, err := config.Load("local")
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}

	if cfg.Cache.Redis.Addr != "redis-override:6380" {
		t.Errorf("Cache.Redis.Addr = %q, want \"redis-override:6380\" (env override)", cfg.Cache.Redis.Addr)
	}
}

func TestLoad_MissingProfile(t *testing.T) {
	t.Chdir("../../..")

	_, err := config.Load("nonexistent")
	if err == nil {
		t.Fatal("Load(\"nonexistent\") returned nil error, want error")
	}
}

func TestValidate_RejectsBrokenConfigs(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		mutate func(cfg *config.Config)
	}{
		{"zero port", func(cfg *config.Config) { cfg.Server.Port = 0 }},
		{"unknown log level", func(cfg *config.Config) { cfg.Log.Level = "verbose" }},
		{"unknown cache backend", func(cfg *config.Config) { cfg.Cache.Backend = "memcached" }},
		{"redis backend without addr", func(cfg *config.Config) {
			cfg.Cache.Backend = "redis"
			cfg.Cache.Redis.Addr = ""
		}},
		{"zero gallery workers", func(cfg *config.Config) { cfg.Gallery.Workers = 0 }},
		{"zero max image bytes", func(cfg *config.Config) { cfg.Fetcher.MaxImageBytes = 0 }},
		{"otlp without endpoint", func(cfg *config.Config) {
			cfg.Telemetry.Enabled = true
			cfg.Telemetry.Exporter = "otlp"
			cfg.Telemetry.Endpoint = ""
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := validBaseConfig()
			tt.mutate(cfg)

			if err := cfg.Validate(); err == nil {
				t.Error("Validate() = nil, want error")
			}
		})
	}
}

func TestValidate_AcceptsCompleteConfig(t *testing.T) {
	t.Parallel()

	if err := validBaseConfig().Validate(); err != nil {
		t.Fatalf("Validate() error = %v for a valid config", err)
	}
}

// validBaseConfig returns a Config with all fields set to valid values.
func validBaseConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{
			Host:         "0.0.0.0",
			Port:         8080,
			ReadTimeout:  5 * time.Second,
			WriteTimeout: 10 * time.Second,
			IdleTimeout:  120 * time.Second,
		},
		Log: config.LogConfig{
			Level:  "info",
			Format: "json",
		},
		Cache: config.CacheConfig{
			Backend: "memory",
			TTL:     10 * time.Minute,
		},
		Fetcher: config.FetcherConfig{
			Client: config.ClientConfig{
				Timeout: 30 * time.Second,
				Retry: config.RetryConfig{
					MaxAttempts:     3,
					InitialInterval: 100 * time.Millisecond,
					MaxInterval:     10 * time.Second,
					Multiplier:      2.0,
				},
				CircuitBreaker: config.CircuitBreakerConfig{
					MaxFailures:   5,
					Timeout:       30 * time.Second,
					HalfOpenLimit: 1,
				},
			},
			MaxImageBytes: 10 * 1024 * 1024,
		},
		Images: config.ImagesConfig{
			PublicBaseURL: "http://localhost:8080/media",
		},
		Gallery: config.GalleryConfig{
			Workers: 4,
		},
		Telemetry: config.TelemetryConfig{
			Enabled:  false,
			Exporter: "stdout",
		},
	}
}
