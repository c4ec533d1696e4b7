package main

import (
	"date-booker/core/logger"
	"date-booker/core/server"
	"os"
)

// @title Date Booker API
// @version 1.0
// @description Group scheduling: a shared calendar where participants mark the days they can make it

// @host localhost:7070
// @BasePath /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description JWT Bearer token. Example: "Bearer {token}"

func main() {
	if err := server.Run(); err != nil {
		logger.Error("run server error", "error", err)
		os.Exit(1)
	}
}
