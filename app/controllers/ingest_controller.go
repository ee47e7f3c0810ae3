package controllers

import (
	"io"
	"net/http"

	"github.com/suedenergie/knowledge-backend/app/bootstrap"
	"github.com/suedenergie/knowledge-backend/internal/knowledge"
	"github.com/suedenergie/knowledge-backend/internal/services"
)

// IngestController accepts document uploads for indexing.
type IngestController struct {
	BaseController
	ingest *services.IngestService
}

func (c *IngestController) Prepare() {
	if c.ingest == nil {
		c.ingest = bootstrap.GetApp().Ingest
	}
}

// Post handles POST /api/ingest: one PDF document as multipart field "file".
func (c *IngestController) Post() {
	file, header, err := c.GetFile("file")
	if err != nil {
		c.JSONError(http.StatusBadRequest, "multipart field 'file' is required")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		c.JSONError(http.StatusBadRequest, "unable to read uploaded file")
		return
	}

	meta := knowledge.SourceMeta{Name: header.Filename}
	result, err := c.ingest.Ingest(c.Ctx.Request.Context(), data, meta)
	if err != nil {
		c.JSONAppError(err)
		return
	}

	c.JSONSuccess(map[string]interface{}{
		"status":         "success",
		"chunks_indexed": result.ChunksIndexed,
		"file":           result.File,
	})
}
