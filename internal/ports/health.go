package ports

import "context"

// HealthChecker is implemented by components with a downstream dependency
// worth probing before the service accepts traffic, such as the Redis action
// store or the outbound image client.
type HealthChecker interface {
	// Name identifies the component in readiness responses, for example
	// "redis" or "image-fetcher".
	Name() string

	// HealthCheck returns nil when the component can serve, or an error
	// describing why it cannot. Implementations honor ctx deadlines.
	HealthCheck(ctx context.Context) error
}

// HealthRegistry aggregates checkers for the readiness probe.
type HealthRegistry interface {
	Register(checker HealthChecker)

	// CheckAll runs every check and maps checker name to its outcome,
	// nil meaning healthy.
	CheckAll(ctx context.Context) map[string]error
}
