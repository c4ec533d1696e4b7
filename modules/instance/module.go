package instance

import (
	"date-booker/core/config"
	"date-booker/core/database"
	"date-booker/core/middleware"
	"date-booker/core/realtime"
	"date-booker/modules/instance/controller"
	"date-booker/modules/instance/repository"
	"date-booker/modules/instance/router"
	"date-booker/modules/instance/service"

	"github.com/labstack/echo/v4"
)

// Init initializes the instance module, registers its routes and returns the
// service so other modules can resolve instances.
func Init(e *echo.Echo, db database.IDatabase, mw *middleware.Middleware, broker *realtime.Broker, cfg *config.Config) service.InstanceServiceInterface {
	repo := repository.NewInstanceRepository(db)
	svc := service.NewInstanceService(repo, broker, service.Options{
		JWTSecret:     cfg.JWT.Secret,
		AdminTTL:      cfg.JWT.AdminTTL,
		MaxRangeDays:  cfg.Instance.MaxRangeDays,
		RetentionDays: cfg.Instance.RetentionDays,
	})
	ctrl := controller.NewInstanceController(svc, broker, cfg.Realtime.Heartbeat)
	rtr := router.NewInstanceRouter(ctrl)

	rtr.Setup(e, mw)
	return svc
}
