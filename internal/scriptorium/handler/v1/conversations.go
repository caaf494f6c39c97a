package v1

import (
	"github.com/gin-gonic/gin"

	"github.com/kiosk404/scrivener/internal/pkg/core"
	"github.com/kiosk404/scrivener/internal/scriptorium/service/memory/domain/service"
	"github.com/kiosk404/scrivener/pkg/errorx"
)

// ConversationHandler exposes conversation memory over REST.
type ConversationHandler struct {
	svc service.MemoryService
}

// NewConversationHandler creates a new ConversationHandler.
func NewConversationHandler(svc service.MemoryService) *ConversationHandler {
	return &ConversationHandler{svc: svc}
}

// List handles GET /api/conversations.
func (h *ConversationHandler) List(c *gin.Context) {
	core.WriteResponse(c, nil, gin.H{"data": h.svc.Summaries()})
}

// Get handles GET /api/conversations/:id.
func (h *ConversationHandler) Get(c *gin.Context) {
	id := c.Param("id")
	conv, err := h.svc.Get(id)
	if err != nil {
		core.WriteResponse(c, errorx.WrapC(err, ErrConversationNotFound, "conversation %q not found", id), nil)
		return
	}
	core.WriteResponse(c, nil, conv)
}

// Summary handles GET /api/conversations/:id/summary.
func (h *ConversationHandler) Summary(c *gin.Context) {
	id := c.Param("id")
	summary, err := h.svc.Summary(id)
	if err != nil {
		core.WriteResponse(c, errorx.WrapC(err, ErrConversationNotFound, "conversation %q not found", id), nil)
		return
	}
	core.WriteResponse(c, nil, summary)
}

// Delete handles DELETE /api/conversations/:id.
func (h *ConversationHandler) Delete(c *gin.Context) {
	h.svc.Delete(c.Param("id"))
	core.WriteResponse(c, nil, gin.H{"deleted": true})
}
