package router

import (
	"github.com/beego/beego/v2/server/web"

	"github.com/suedenergie/knowledge-backend/app/bootstrap"
	"github.com/suedenergie/knowledge-backend/app/controllers"
	"github.com/suedenergie/knowledge-backend/app/middleware"
)

// Init registers all routes. Must be called after bootstrap.
func Init() {
	web.InsertFilter("/*", web.BeforeRouter, middleware.CORSMiddleware)

	web.Router("/", &controllers.StatusController{}, "get:Index")
	web.Router("/health", &controllers.StatusController{}, "get:Index")

	web.Router("/api/ingest", &controllers.IngestController{}, "post:Post")
	web.Router("/api/chat", &controllers.ChatController{}, "post:Post")
	web.Router("/api/sync", &controllers.SyncController{}, "post:Post")

	web.Handler("/metrics", bootstrap.GetApp().Metrics.Handler())
}
