package chat

import (
	"date-booker/core/database"
	"date-booker/core/middleware"
	"date-booker/core/realtime"
	"date-booker/modules/chat/controller"
	"date-booker/modules/chat/repository"
	"date-booker/modules/chat/router"
	"date-booker/modules/chat/service"
	instanceService "date-booker/modules/instance/service"

	"github.com/labstack/echo/v4"
)

func Init(e *echo.Echo, db database.IDatabase, mw *middleware.Middleware, instances instanceService.InstanceLookup, publisher realtime.Publisher) service.MessageServiceInterface {
	messageRepository := repository.NewMessageRepository(db)
	messageService := service.NewMessageService(messageRepository, instances, publisher)
	messageController := controller.NewMessageController(messageService)

	router.NewChatRouter(messageController).Setup(e, mw)

	return messageService
}
