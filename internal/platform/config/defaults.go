package config

const (
	defaultServerPort = 8080

	defaultRetryMaxAttempts = 3
	defaultRetryMultiplier  = 2.0

	defaultCircuitBreakerMaxFailures = 5
	defaultCircuitBreakerHalfOpen    = 1

	defaultGalleryWorkers = 4

	defaultMaxImageBytes = 10 * 1024 * 1024
)

// defaults returns the default configuration values.
// These are loaded first and can be overridden by base.yaml, profile YAML, and env vars.
func defaults() map[string]any {
	return map[string]any{
		"server.host":          "0.0.0.0",
		"server.port":          defaultServerPort,
		"server.read_timeout":  "5s",
		"server.write_timeout": "10s",
		"server.idle_timeout":  "120s",

		"log.level":  "info",
		"log.format": "json",

		"cache.backend":    "memory",
		"cache.ttl":        "10m",
		"cache.redis.addr": "localhost:6379",
		"cache.redis.db":   0,

		"fetcher.client.timeout":                         "30s",
		"fetcher.client.retry.max_attempts":              defaultRetryMaxAttempts,
		"fetcher.client.retry.initial_interval":          "100ms",
		"fetcher.client.retry.max_interval":              "10s",
		"fetcher.client.retry.multiplier":                defaultRetryMultiplier,
		"fetcher.client.circuit_breaker.max_failures":    defaultCircuitBreakerMaxFailures,
		"fetcher.client.circuit_breaker.timeout":         "30s",
		"fetcher.client.circuit_breaker.half_open_limit": defaultCircuitBreakerHalfOpen,
		"fetcher.client.rate_limit.requests_per_second":  0,
		"fetcher.client.rate_limit.burst_size":           1,
		"fetcher.max_image_bytes":                        defaultMaxImageBytes,

		"images.public_base_url": "http://localhost:8080/media",

		"gallery.workers": defaultGalleryWorkers,

		"telemetry.enabled":      false,
		"telemetry.exporter":     "stdout",
		"telemetry.endpoint":     "",
		"telemetry.service_name": "customizer-engine",
	}
}
