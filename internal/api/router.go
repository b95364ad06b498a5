package api

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"
	"golang.org/x/time/rate"

	_ "github.com/projectlink/projectlink-api/docs"
	"github.com/projectlink/projectlink-api/internal/api/handler"
	"github.com/projectlink/projectlink-api/internal/api/middleware"
	"github.com/projectlink/projectlink-api/internal/core/ports"
	"github.com/projectlink/projectlink-api/internal/infrastructure/http/handlers"
)

// Services are the core services the HTTP layer is built on.
type Services struct {
	Auth       ports.AuthService
	Projects   ports.ProjectService
	Social     ports.SocialService
	Comments   ports.CommentService
	Feed       ports.FeedService
	Users      ports.UserService
	Admin      ports.AdminService
	Reconciler ports.GraphReconciler
}

// Options configures the transport concerns of the router.
type Options struct {
	JWTSecret   string
	Development bool
	CORSOrigins []string

	// AuthRateLimit requests per AuthRateWindow per client on register and login.
	AuthRateLimit  int
	AuthRateWindow time.Duration

	// Readiness checks served on /health/ready, keyed by dependency name.
	Readiness map[string]handlers.Check

	// Registerer and Gatherer default to the prometheus default registry.
	Registerer prometheus.Registerer
	Gatherer   prometheus.Gatherer
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(svc Services, opts Options, log zerolog.Logger) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(log, opts.Development)

	registerer, gatherer := opts.Registerer, opts.Gatherer
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestIDWithConfig(echomiddleware.RequestIDConfig{
		Generator: uuid.NewString,
	}))
	e.Use(requestLogger(log))
	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		AllowOrigins:     opts.CORSOrigins,
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete},
		AllowHeaders:     []string{echo.HeaderAuthorization, echo.HeaderContentType},
		AllowCredentials: true,
	}))
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Subsystem:  "projectlink",
		Registerer: registerer,
	}))

	// --- Handlers ---
	authHandler := handler.NewAuthHandler(svc.Auth)
	projectHandler := handler.NewProjectHandler(svc.Projects)
	socialHandler := handler.NewSocialHandler(svc.Social)
	commentHandler := handler.NewCommentHandler(svc.Comments)
	notificationHandler := handler.NewNotificationHandler(svc.Feed)
	userHandler := handler.NewUserHandler(svc.Users)
	adminHandler := handler.NewAdminHandler(svc.Admin, svc.Reconciler)

	requireAuth := middleware.Auth(opts.JWTSecret)
	optionalAuth := middleware.OptionalAuth(opts.JWTSecret)
	authLimiter := authRateLimiter(opts.AuthRateLimit, opts.AuthRateWindow)

	api := e.Group("/api")

	// --- Auth routes ---
	auth := api.Group("/auth")
	auth.POST("/register", authHandler.Register, authLimiter)
	auth.POST("/login", authHandler.Login, authLimiter)
	auth.GET("/me", authHandler.Me, requireAuth)

	// --- Project routes ---
	projects := api.Group("/projects")
	projects.GET("", projectHandler.List)
	projects.POST("", projectHandler.Create, requireAuth)
	projects.GET("/:id", projectHandler.Get)
	projects.PUT("/:id", projectHandler.Update, requireAuth)
	projects.DELETE("/:id", projectHandler.Delete, requireAuth)
	projects.PATCH("/:id/status", projectHandler.UpdateStatus, requireAuth)
	projects.POST("/:id/view", projectHandler.View, optionalAuth)
	projects.POST("/:id/like", socialHandler.Like, requireAuth)
	projects.POST("/:id/unlike", socialHandler.Unlike, requireAuth)
	projects.POST("/:id/bookmark", socialHandler.Bookmark, requireAuth)
	projects.POST("/:id/collaborators", socialHandler.Collaborators, requireAuth)
	projects.GET("/:id/comments", commentHandler.List)
	projects.POST("/:id/comments", commentHandler.Add, requireAuth)
	projects.DELETE("/:id/comments/:commentId", commentHandler.Delete, requireAuth)

	// --- User routes ---
	users := api.Group("/users", requireAuth)
	users.GET("/notifications", notificationHandler.List)
	users.POST("/notifications/read", notificationHandler.MarkRead)
	users.POST("/notifications/read-all", notificationHandler.MarkAllRead)
	users.GET("/activity", notificationHandler.Activity)
	users.PUT("/me", userHandler.UpdateMe)
	users.GET("/:id", userHandler.Profile)
	users.POST("/:id/follow", socialHandler.Follow)
	users.POST("/:id/unfollow", socialHandler.Unfollow)

	// --- Admin routes ---
	admin := api.Group("/admin", requireAuth, middleware.RequireAdmin())
	admin.GET("/stats", adminHandler.Stats)
	admin.GET("/users", adminHandler.Users)
	admin.GET("/projects", adminHandler.Projects)
	admin.PATCH("/users/:id/role", adminHandler.SetRole)
	admin.PATCH("/users/:id/ban", adminHandler.SetBanned)
	admin.DELETE("/users/:id", adminHandler.DeleteUser)
	admin.POST("/reconcile", adminHandler.Reconcile)

	// --- Health checks (no auth required) ---
	healthHandler := handlers.NewHealthHandler()
	readinessHandler := handlers.NewReadinessHandler(opts.Readiness)

	e.GET("/health", healthHandler.Liveness)
	e.GET("/health/ready", readinessHandler.Readiness)

	// --- Operations ---
	e.GET("/metrics", echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{Gatherer: gatherer}))
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	return e
}

// requestLogger writes one zerolog event per request. Errors are handed to
// the HTTP error handler first so the logged status is the one sent.
func requestLogger(log zerolog.Logger) echo.MiddlewareFunc {
	return echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogURI:       true,
		LogMethod:    true,
		LogStatus:    true,
		LogLatency:   true,
		LogRemoteIP:  true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		Skipper: func(c echo.Context) bool {
			return c.Path() == "/health" || c.Path() == "/metrics"
		},
		LogValuesFunc: func(c echo.Context, v echomiddleware.RequestLoggerValues) error {
			evt := log.Info()
			if v.Status >= http.StatusInternalServerError {
				evt = log.Error().Err(v.Error)
			} else if v.Status >= http.StatusBadRequest {
				evt = log.Warn()
			}
			evt.
				Str("request_id", v.RequestID).
				Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Str("remote_ip", v.RemoteIP).
				Msg("request")
			return nil
		},
	})
}

// authRateLimiter allows limit requests per window per client IP, refilled
// continuously.
func authRateLimiter(limit int, window time.Duration) echo.MiddlewareFunc {
	store := echomiddleware.NewRateLimiterMemoryStoreWithConfig(echomiddleware.RateLimiterMemoryStoreConfig{
		Rate:      rate.Limit(float64(limit) / window.Seconds()),
		Burst:     limit,
		ExpiresIn: window,
	})
	return echomiddleware.RateLimiterWithConfig(echomiddleware.RateLimiterConfig{
		Store: store,
		IdentifierExtractor: func(c echo.Context) (string, error) {
			return c.RealIP(), nil
		},
		DenyHandler: func(c echo.Context, identifier string, err error) error {
			return echo.NewHTTPError(http.StatusTooManyRequests, "Too many requests from this IP, please try again later.")
		},
	})
}
