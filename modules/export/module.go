package export

import (
	"date-booker/core/middleware"
	"date-booker/core/queue"
	"date-booker/core/storage"
	"date-booker/modules/export/controller"
	"date-booker/modules/export/router"
	"date-booker/modules/export/service"
	instanceService "date-booker/modules/instance/service"
	"time"

	"github.com/labstack/echo/v4"
)

// Dependencies are the services and infrastructure the export jobs read from.
type Dependencies struct {
	Instances  instanceService.InstanceServiceInterface
	Boards     service.BoardBuilder
	Messages   service.MessageSource
	Queue      *queue.Client
	Storage    storage.ObjectStorage
	PresignTTL time.Duration
}

// Init registers the export routes. The returned service also serves the
// worker handlers.
func Init(e *echo.Echo, mw *middleware.Middleware, deps Dependencies) service.ExportServiceInterface {
	exportService := service.NewExportService(
		deps.Instances,
		deps.Boards,
		deps.Messages,
		deps.Instances,
		deps.Queue,
		deps.Queue,
		deps.Storage,
		service.Options{PresignTTL: deps.PresignTTL},
	)
	exportController := controller.NewExportController(exportService)

	router.NewExportRouter(exportController).Setup(e, mw)
	return exportService
}
