package controllers

import (
	"net/http"

	"github.com/suedenergie/knowledge-backend/app/bootstrap"
	"github.com/suedenergie/knowledge-backend/internal/services"
)

// SyncController triggers a manual drive sync pass.
type SyncController struct {
	BaseController
	sync *services.SyncService
}

func (c *SyncController) Prepare() {
	if c.sync == nil {
		c.sync = bootstrap.GetApp().Sync
	}
}

// Post handles POST /api/sync.
func (c *SyncController) Post() {
	if !c.sync.Enabled() {
		c.JSONError(http.StatusServiceUnavailable, "drive sync is not configured")
		return
	}

	ingested, err := c.sync.RunOnce(c.Ctx.Request.Context())
	if err != nil {
		c.JSONAppError(err)
		return
	}

	c.JSONSuccess(map[string]interface{}{
		"status":   "success",
		"ingested": ingested,
	})
}
