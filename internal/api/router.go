package api

import (
	"net/http"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	_ "github.com/cloudnative/account-service/docs"
	"github.com/cloudnative/account-service/internal/api/handler"
	"github.com/cloudnative/account-service/internal/api/middleware"
	"github.com/cloudnative/account-service/internal/core/ports"
)

// Dependencies are the collaborators the HTTP layer is built from. HTTP
// metrics go to Registry, or to the default registry when it is nil.
type Dependencies struct {
	Accounts       ports.AccountService
	Auth           ports.AuthService
	Limiter        handler.ResendLimiter
	Health         *handler.HealthHandler
	MaxUploadBytes int64
	Log            zerolog.Logger
	Registry       *prometheus.Registry
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(deps Dependencies) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(deps.Log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(requestLogger(deps.Log))
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Subsystem:  "accounts",
		Registerer: registerer(deps.Registry),
	}))

	accountHandler := handler.NewAccountHandler(deps.Accounts)
	verificationHandler := handler.NewVerificationHandler(deps.Accounts, deps.Limiter, deps.Log)
	pictureHandler := handler.NewPictureHandler(deps.Accounts, deps.MaxUploadBytes)
	authHandler := handler.NewAuthHandler(deps.Auth)
	auth := middleware.Auth(deps.Auth)

	// --- Public routes ---
	e.POST("/v1/user", accountHandler.Register)
	e.POST("/v1/user/token", authHandler.Token)
	e.GET("/v1/user/verify", verificationHandler.Verify)

	// --- Authenticated routes ---
	self := e.Group("/v1/user/self", auth)
	self.GET("", accountHandler.GetSelf, middleware.NoPayload())
	self.PUT("", accountHandler.UpdateSelf)
	self.POST("/verification", verificationHandler.Resend)
	self.POST("/pic", pictureHandler.Upload)
	self.GET("/pic", pictureHandler.Get, middleware.NoPayload())
	self.DELETE("/pic", pictureHandler.Delete)

	// --- Health probes (no auth required) ---
	e.GET("/healthz", deps.Health.Healthz, middleware.NoCache(), middleware.NoPayload())
	e.GET("/health", deps.Health.Liveness)        // liveness  – is the process alive?
	e.GET("/health/ready", deps.Health.Readiness) // readiness – are dependencies up?

	// HEAD and OPTIONS are refused explicitly; echo would otherwise answer
	// OPTIONS with 204.
	for _, path := range []string{"/healthz", "/v1/user/self", "/v1/user/self/pic"} {
		e.Match([]string{http.MethodHead, http.MethodOptions}, path, methodNotAllowed)
	}

	e.GET("/metrics", echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{
		Gatherer: gatherer(deps.Registry),
	}))
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	return e
}

func methodNotAllowed(echo.Context) error {
	return echo.ErrMethodNotAllowed
}

func registerer(r *prometheus.Registry) prometheus.Registerer {
	if r == nil {
		return prometheus.DefaultRegisterer
	}
	return r
}

func gatherer(r *prometheus.Registry) prometheus.Gatherer {
	if r == nil {
		return prometheus.DefaultGatherer
	}
	return r
}

// requestLogger writes one zerolog entry per request.
func requestLogger(log zerolog.Logger) echo.MiddlewareFunc {
	return echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogURI:       true,
		LogStatus:    true,
		LogMethod:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(_ echo.Context, v echomiddleware.RequestLoggerValues) error {
			ev := log.Info()
			if v.Status >= 500 {
				ev = log.Error().Err(v.Error)
			}
			ev.Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Str("request_id", v.RequestID).
				Msg("request")
			return nil
		},
	})
}
