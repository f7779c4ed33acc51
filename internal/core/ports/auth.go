package ports

import (
	"context"

	"github.com/flinkapp/flink/internal/core/domain/auth"
)

// TokenVerifier validates access tokens issued by the hosted auth provider.
type TokenVerifier interface {
	ValidateToken(ctx context.Context, token string) (*auth.Claims, error)
}
