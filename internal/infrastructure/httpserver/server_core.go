package httpserver

import (
	"time"

	"github.com/flinkapp/flink/internal/core/ports"
	customMiddleware "github.com/flinkapp/flink/internal/infrastructure/httpserver/middleware"
	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
)

type ServerConfig struct {
	Host           string
	Port           string
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	IdleTimeout    time.Duration
	TLSCertFile    string
	TLSKeyFile     string
	AllowedOrigins []string
	Environment    string
}

type ServerDeps struct {
	ConnectionService ports.ConnectionService
	VisibilityService ports.VisibilityService
	// Profiles supplies the receiver's privacy flag when a request is sent.
	Profiles      ports.ProfileRepository
	TokenVerifier ports.TokenVerifier
	// RateLimiterService is optional; nil disables write limiting.
	RateLimiterService ports.RateLimiterService
	HealthCheckers     []ports.HealthChecker
}

type Server struct {
	echo           *echo.Echo
	config         *ServerConfig
	logger         *logrus.Logger
	connections    ports.ConnectionService
	visibility     ports.VisibilityService
	profiles       ports.ProfileRepository
	middleware     *customMiddleware.MiddlewareCollection
	healthCheckers []ports.HealthChecker
}

func NewServer(serverConfig *ServerConfig, logger *logrus.Logger, deps ServerDeps) *Server {
	e := echo.New()
	e.HideBanner = true
	e.Validator = newRequestValidator()

	server := &Server{
		echo:           e,
		config:         serverConfig,
		logger:         logger,
		connections:    deps.ConnectionService,
		visibility:     deps.VisibilityService,
		profiles:       deps.Profiles,
		healthCheckers: deps.HealthCheckers,
		middleware: customMiddleware.NewMiddlewareCollection(
			deps.TokenVerifier,
			deps.RateLimiterService,
			logger,
			GetRequestsTotal(),
			GetRequestDuration(),
		),
	}
	e.HTTPErrorHandler = server.handleError

	server.setupMiddleware()
	server.setupRoutes()

	return server
}
