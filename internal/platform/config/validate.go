package config

import (
	"errors"
	"fmt"
)

// Validate checks all configuration values and returns aggregated errors.
func (c *Config) Validate() error {
	return errors.Join(
		c.Server.validate(),
		c.Log.validate(),
		c.Cache.validate(),
		c.Fetcher.validate(),
		c.Images.validate(),
		c.Gallery.validate(),
		c.Telemetry.validate(),
	)
}

func (s *ServerConfig) validate() error {
	var errs []error

	if s.Port < 1 || s.Port > 65535 {
		errs = append(errs, fmt.Errorf("server.port must be between 1 and 65535, got %d", s.Port))
	}
	if s.ReadTimeout <= 0 {
		errs = append(errs, errors.New("server.read_timeout must be positive"))
	}
	if s.WriteTimeout <= 0 {
		errs = append(errs, errors.New("server.write_timeout must be positive"))
	}

	return errors.Join(errs...)
}

func (l *LogConfig) validate() error {
	var errs []error

	switch l.Level {
	case "debug", "info", "warn", "error":
		// Valid levels.
	default:
		errs = append(errs, fmt.Errorf("log.level must be one of: debug, info, warn, error; got %q", l.Level))
	}

	switch l.Format {
	case "json", "text":
		// Valid formats.
	default:
		errs = append(errs, fmt.Errorf("log.format must be one of: json, text; got %q", l.Format))
	}

	return errors.Join(errs...)
}

func (c *CacheConfig) validate() error {
	var errs []error

	switch c.Backend {
	case "memory", "redis":
		// Valid backends.
	default:
		errs = append(errs, fmt.Errorf("cache.backend must be one of: memory, redis; got %q", c.Backend))
	}

	if c.TTL < 0 {
		errs = append(errs, errors.New("cache.ttl must not be negative"))
	}
	if c.Backend == "redis" && c.Redis.Addr == "" {
		errs = append(errs, errors.New("cache.redis.addr must not be empty when backend is redis"))
	}

	return errors.Join(errs...)
}

func (f *FetcherConfig) validate() error {
	var errs []error

	if f.Client.Timeout <= 0 {
		errs = append(errs, errors.New("fetcher.client.timeout must be positive"))
	}
	if f.Client.Retry.MaxAttempts < 1 {
		errs = append(errs, fmt.Errorf("fetcher.client.retry.max_attempts must be >= 1, got %d",
			f.Client.Retry.MaxAttempts))
	}
	if f.Client.Retry.Multiplier <= 0 {
		errs = append(errs, fmt.Errorf("fetcher.client.retry.multiplier must be positive, got %f",
			f.Client.Retry.Multiplier))
	}
	if f.Client.CircuitBreaker.MaxFailures < 1 {
		errs = append(errs, fmt.Errorf("fetcher.client.circuit_breaker.max_failures must be >= 1, got %d",
			f.Client.CircuitBreaker.MaxFailures))
	}
	if f.MaxImageBytes <= 0 {
		errs = append(errs, errors.New("fetcher.max_image_bytes must be positive"))
	}

	return errors.Join(errs...)
}

func (i *ImagesConfig) validate() error {
	if i.PublicBaseURL == "" {
		return errors.New("images.public_base_url must not be empty")
	}
	return nil
}

func (g *GalleryConfig) validate() error {
	if g.Workers < 1 {
		return fmt.Errorf("gallery.workers must be >= 1, got %d", g.Workers)
	}
	return nil
}

func (t *TelemetryConfig) validate() error {
	if !t.Enabled {
		return nil
	}

	var errs []error

	switch t.Exporter {
	case "stdout", "otlp":
		// Valid exporters.
	default:
		errs = append(errs, fmt.Errorf("telemetry.exporter must be one of: stdout, otlp; got %q", t.Exporter))
	}

	if t.Exporter == "otlp" && t.Endpoint == "" {
		errs = append(errs, errors.New("telemetry.endpoint must not be empty when exporter is otlp"))
	}

	return errors.Join(errs...)
}
