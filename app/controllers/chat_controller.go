package controllers

import (
	"encoding/json"
	"net/http"

	"github.com/suedenergie/knowledge-backend/app/bootstrap"
	"github.com/suedenergie/knowledge-backend/internal/services"
)

// ChatController answers questions against the knowledge base.
type ChatController struct {
	BaseController
	chat *services.ChatService
}

func (c *ChatController) Prepare() {
	if c.chat == nil {
		c.chat = bootstrap.GetApp().Chat
	}
}

// ChatRequest is the POST /api/chat body.
type ChatRequest struct {
	Query string `json:"query"`
}

// Post handles POST /api/chat.
func (c *ChatController) Post() {
	var req ChatRequest
	if err := json.Unmarshal(c.Ctx.Input.RequestBody, &req); err != nil {
		c.JSONError(http.StatusBadRequest, "invalid request body")
		return
	}

	answer, err := c.chat.Chat(c.Ctx.Request.Context(), req.Query)
	if err != nil {
		c.JSONAppError(err)
		return
	}

	c.JSONSuccess(map[string]interface{}{
		"answer": answer,
	})
}
