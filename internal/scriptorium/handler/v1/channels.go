package v1

import (
	"github.com/gin-gonic/gin"

	"github.com/kiosk404/scrivener/internal/pkg/core"
	"github.com/kiosk404/scrivener/internal/scriptorium/service/channel/domain/service"
	"github.com/kiosk404/scrivener/pkg/errorx"
)

// ChannelHandler handles channel REST API endpoints.
type ChannelHandler struct {
	svc service.ChannelService
}

// NewChannelHandler creates a new ChannelHandler.
func NewChannelHandler(svc service.ChannelService) *ChannelHandler {
	return &ChannelHandler{svc: svc}
}

// List handles GET /api/channels.
func (h *ChannelHandler) List(c *gin.Context) {
	core.WriteResponse(c, nil, gin.H{"data": h.svc.List()})
}

// Get handles GET /api/channels/:id.
func (h *ChannelHandler) Get(c *gin.Context) {
	id := c.Param("id")
	ch, err := h.svc.Get(id)
	if err != nil {
		core.WriteResponse(c, errorx.WrapC(err, ErrChannelNotFound, "channel %q not found", id), nil)
		return
	}
	core.WriteResponse(c, nil, ch)
}

// Current handles GET /api/channels/current.
func (h *ChannelHandler) Current(c *gin.Context) {
	core.WriteResponse(c, nil, h.svc.Current())
}

// Switch handles POST /api/channels/:id/switch.
func (h *ChannelHandler) Switch(c *gin.Context) {
	id := c.Param("id")
	ch, err := h.svc.Switch(id)
	if err != nil {
		core.WriteResponse(c, errorx.WrapC(err, ErrChannelNotFound, "channel %q not found", id), nil)
		return
	}
	core.WriteResponse(c, nil, ch)
}

// Capabilities handles GET /api/channels/:id/capabilities.
func (h *ChannelHandler) Capabilities(c *gin.Context) {
	id := c.Param("id")
	caps, err := h.svc.Capabilities(id)
	if err != nil {
		core.WriteResponse(c, errorx.WrapC(err, ErrChannelNotFound, "channel %q not found", id), nil)
		return
	}
	core.WriteResponse(c, nil, gin.H{"id": id, "capabilities": caps})
}

// ValidateMessage handles POST /api/channels/:id/validate.
func (h *ChannelHandler) ValidateMessage(c *gin.Context) {
	id := c.Param("id")
	var req ValidateMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		core.WriteResponse(c, errorx.WrapC(err, ErrBind, "bind validate request"), nil)
		return
	}

	verdict, err := h.svc.ValidateMessage(id, req.Text)
	if err != nil {
		core.WriteResponse(c, errorx.WrapC(err, ErrChannelNotFound, "channel %q not found", id), nil)
		return
	}
	core.WriteResponse(c, nil, verdict)
}
