package router

import (
	"github.com/anonto42/socialcore/backend/internal/handlers"
	"github.com/anonto42/socialcore/backend/internal/middleware"
	"github.com/anonto42/socialcore/backend/validators"
	"github.com/labstack/echo/v4"
	eMiddleware "github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"
)

// SetupMiddleware configures global Echo middleware
func SetupMiddleware(e *echo.Echo, logger *zap.Logger) {
	e.HideBanner = true
	e.HidePort = true
	e.Validator = validators.NewValidator()
	e.HTTPErrorHandler = handlers.HTTPErrorHandler(logger)

	e.Use(eMiddleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(middleware.RequestLogger(logger))
	e.Use(middleware.Metrics())
	e.Use(eMiddleware.CORS())
	logger.Info("global middleware configured")
}

// SetupRoutes registers the health check and the authenticated /api/v1 routes.
func SetupRoutes(e *echo.Echo, auth echo.MiddlewareFunc, svc *Services, logger *zap.Logger) {
	e.GET("/health", handlers.HealthCheck)

	api := e.Group("/api/v1")
	api.Use(auth)

	handlers.NewFollowHandler(svc.Graph).RegisterFollowRoutes(api)
	logger.Info("follow routes configured")

	handlers.NewFeedHandler(svc.Graph).RegisterFeedRoutes(api)
	handlers.NewPostHandler(svc.Posts).RegisterPostRoutes(api)
	handlers.NewLikeHandler(svc.Posts).RegisterLikeRoutes(api)
	handlers.NewCommentHandler(svc.Posts).RegisterCommentRoutes(api)
	logger.Info("post routes configured")

	handlers.NewMessageHandler(svc.Messages).RegisterMessageRoutes(api)
	logger.Info("message routes configured")

	handlers.NewGroupHandler(svc.Groups).RegisterGroupRoutes(api)
	logger.Info("group routes configured")

	handlers.NewStoryHandler(svc.Stories).RegisterStoryRoutes(api)
	logger.Info("story routes configured")

	handlers.NewNotificationHandler(svc.Notifications).RegisterNotificationRoutes(api)
	logger.Info("notification routes configured")
}
