package controllers

import (
	"github.com/suedenergie/knowledge-backend/app/bootstrap"
)

// StatusController serves the liveness and status probes.
type StatusController struct {
	BaseController
}

// Index handles GET / and GET /health.
func (c *StatusController) Index() {
	app := bootstrap.GetApp()

	status := map[string]interface{}{
		"service":    "knowledge-backend",
		"status":     "ok",
		"collection": app.Config.Knowledge.Collection,
		"degraded": map[string]bool{
			"embedding":  !app.Embedder.Ready(),
			"generation": !app.Generator.Ready(),
		},
		"sync_enabled": app.Sync.Enabled(),
	}

	// Record count is best effort; the probe stays green when the store is
	// briefly unreachable.
	if count, err := app.Store.Count(c.Ctx.Request.Context()); err == nil {
		status["records"] = count
	}

	c.JSONSuccess(status)
}
