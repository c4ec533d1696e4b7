package availability

import (
	"date-booker/core/database"
	"date-booker/core/middleware"
	"date-booker/core/realtime"
	"date-booker/modules/availability/controller"
	"date-booker/modules/availability/repository"
	"date-booker/modules/availability/router"
	"date-booker/modules/availability/service"
	instanceService "date-booker/modules/instance/service"

	"github.com/labstack/echo/v4"
)

// Init initializes the availability module and registers routes
func Init(e *echo.Echo, db database.IDatabase, mw *middleware.Middleware, instances instanceService.InstanceLookup, publisher realtime.Publisher) service.AvailabilityServiceInterface {
	repo := repository.NewAvailabilityRepository(db)
	svc := service.NewAvailabilityService(repo, instances, publisher)
	ctrl := controller.NewAvailabilityController(svc)
	rtr := router.NewAvailabilityRouter(ctrl)

	rtr.Setup(e, mw)
	return svc
}
