package main

import (
	"log"
	"strconv"

	"github.com/beego/beego/v2/server/web"
	"go.uber.org/zap"

	"github.com/suedenergie/knowledge-backend/app/bootstrap"
	"github.com/suedenergie/knowledge-backend/app/router"
	"github.com/suedenergie/knowledge-backend/internal/logger"
)

func main() {
	app, err := bootstrap.Init()
	if err != nil {
		log.Fatalf("failed to bootstrap application: %v", err)
	}
	defer app.Shutdown()

	web.BConfig.AppName = "Knowledge Backend"
	web.BConfig.CopyRequestBody = true
	if port, err := strconv.Atoi(app.Config.Server.Port); err == nil {
		web.BConfig.Listen.HTTPPort = port
	}

	router.Init()

	logger.Info("starting knowledge backend", zap.Int("port", web.BConfig.Listen.HTTPPort))
	web.Run()
}
