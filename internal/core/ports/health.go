package ports

import "context"

// HealthChecker is one dependency check reported by /health.
type HealthChecker interface {
	Name() string
	Check(ctx context.Context) error
}
