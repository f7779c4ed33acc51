package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"github.com/flinkapp/flink/internal/core/domain/auth"
	"github.com/flinkapp/flink/internal/core/ports"
	"github.com/flinkapp/flink/internal/infrastructure/httpserver/helpers"
)

type JWTMiddleware struct {
	verifier ports.TokenVerifier
	logger   *logrus.Logger
}

func NewJWTMiddleware(verifier ports.TokenVerifier, logger *logrus.Logger) *JWTMiddleware {
	return &JWTMiddleware{verifier: verifier, logger: logger}
}

// RequireJWT validates the bearer token and sets the user context.
func (m *JWTMiddleware) RequireJWT() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			tokenString, err := helpers.GetJWTTokenFromContext(c)
			if err != nil {
				return err
			}
			if err := m.authenticate(c, tokenString); err != nil {
				return err
			}
			return next(c)
		}
	}
}

// OptionalJWT sets the user context when a bearer token is present and lets
// anonymous requests through. A present but invalid token is still rejected.
func (m *JWTMiddleware) OptionalJWT() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if c.Request().Header.Get("Authorization") == "" {
				return next(c)
			}
			tokenString, err := helpers.GetJWTTokenFromContext(c)
			if err != nil {
				return err
			}
			if err := m.authenticate(c, tokenString); err != nil {
				return err
			}
			return next(c)
		}
	}
}

func (m *JWTMiddleware) authenticate(c echo.Context, tokenString string) error {
	claims, err := m.verifier.ValidateToken(c.Request().Context(), tokenString)
	if err != nil {
		if m.logger != nil {
			m.logger.WithFields(logrus.Fields{"ip": c.RealIP(), "path": c.Request().URL.Path, "error": err.Error()}).Warn("JWT validation failed")
		}
		return echo.NewHTTPError(http.StatusUnauthorized, "invalid or expired token")
	}
	return setClaims(c, claims, m.logger)
}

func setClaims(c echo.Context, claims *auth.Claims, logger *logrus.Logger) error {
	userID, err := claims.UserID()
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "invalid token subject")
	}
	helpers.SetUserID(c, userID)
	helpers.SetUserEmail(c, claims.Email)
	helpers.SetUserRole(c, claims.Role)

	if logger != nil {
		logger.WithFields(logrus.Fields{"user_id": userID, "role": claims.Role}).Debug("jwt validated and user context set")
	}
	return nil
}
