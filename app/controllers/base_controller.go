package controllers

import (
	"net/http"

	"github.com/beego/beego/v2/server/web"

	"github.com/suedenergie/knowledge-backend/internal/apperrors"
)

// BaseController provides helpers for consistent JSON responses.
type BaseController struct {
	web.Controller
}

// JSON writes a JSON response with the supplied HTTP status code.
func (c *BaseController) JSON(status int, payload interface{}) {
	c.Ctx.Output.SetStatus(status)
	c.Data["json"] = payload
	c.ServeJSON()
}

// JSONSuccess writes a 200 response with the payload as-is.
func (c *BaseController) JSONSuccess(data interface{}) {
	c.JSON(http.StatusOK, data)
}

// JSONError writes an error envelope with message.
func (c *BaseController) JSONError(status int, message string) {
	c.JSON(status, map[string]interface{}{
		"error": message,
	})
}

// JSONAppError maps a pipeline error to its HTTP status: validation failures
// become 400s, backend failures 500s, with the cause preserved in the message.
func (c *BaseController) JSONAppError(err error) {
	c.JSONError(apperrors.HTTPStatus(err), err.Error())
}
