package router

import (
	"date-booker/core/middleware"
	"date-booker/modules/chat/controller"

	"github.com/labstack/echo/v4"
)

type ChatRouter struct {
	MessageController *controller.MessageController
}

func NewChatRouter(messageController *controller.MessageController) *ChatRouter {
	return &ChatRouter{MessageController: messageController}
}

func (r *ChatRouter) Setup(e *echo.Echo, mw *middleware.Middleware) {
	v1 := e.Group("/api/v1")

	publicRoutes := v1.Group("/public/instances")
	publicRoutes.GET("/:slug/messages", r.MessageController.ListMessages)

	privateRoutes := v1.Group("/private/instances", mw.AuthMiddleware())
	privateRoutes.POST("/:slug/messages", r.MessageController.SendMessage)
}
