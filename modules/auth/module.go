package auth

import (
	"date-booker/core/cache"
	"date-booker/core/config"
	"date-booker/core/middleware"
	"date-booker/modules/auth/controller"
	"date-booker/modules/auth/router"
	"date-booker/modules/auth/service"
	instanceService "date-booker/modules/instance/service"

	"github.com/labstack/echo/v4"
)

func Init(e *echo.Echo, mw *middleware.Middleware, instances instanceService.InstanceLookup, cache cache.Cache, cfg *config.Config) {
	sessionService := service.NewSessionService(instances, cache, service.Options{
		JWTSecret:      cfg.JWT.Secret,
		ParticipantTTL: cfg.JWT.ParticipantTTL,
		BlockDuration:  cfg.Auth.BlockDuration,
	})
	sessionController := controller.NewSessionController(sessionService)

	router.NewAuthRouter(sessionController).Setup(e, mw)
}
