package services

import (
	"context"
	"fmt"

	config "github.com/flinkapp/flink/configs"
	"github.com/flinkapp/flink/internal/core/domain/auth"
	"github.com/flinkapp/flink/internal/core/ports"
	"github.com/golang-jwt/jwt/v5"
)

// TokenVerifier checks HS256 access tokens minted by the hosted auth
// provider. Sessions live with the provider; nothing is stored here.
type TokenVerifier struct {
	cfg *config.JWTConfig
}

func NewTokenVerifier(cfg *config.JWTConfig) *TokenVerifier {
	return &TokenVerifier{cfg: cfg}
}

func (v *TokenVerifier) ValidateToken(_ context.Context, tokenString string) (*auth.Claims, error) {
	opts := []jwt.ParserOption{jwt.WithExpirationRequired()}
	if v.cfg.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(v.cfg.Issuer))
	}
	if v.cfg.Audience != "" {
		opts = append(opts, jwt.WithAudience(v.cfg.Audience))
	}

	token, err := jwt.ParseWithClaims(tokenString, &auth.Claims{}, func(token *jwt.Token) (interface{}, error) {
		// Ensure the token's signing method is HMAC (prevent alg confusion)
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(v.cfg.Secret), nil
	}, opts...)
	if err != nil {
		return nil, err
	}

	if !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}

	claims, ok := token.Claims.(*auth.Claims)
	if !ok {
		return nil, fmt.Errorf("invalid token claims")
	}
	if _, err := claims.UserID(); err != nil {
		return nil, err
	}
	return claims, nil
}

var _ ports.TokenVerifier = (*TokenVerifier)(nil)
