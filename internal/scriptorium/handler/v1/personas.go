package v1

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/kiosk404/scrivener/internal/pkg/core"
	"github.com/kiosk404/scrivener/internal/scriptorium/service/persona/domain/entity"
	"github.com/kiosk404/scrivener/internal/scriptorium/service/persona/domain/service"
	"github.com/kiosk404/scrivener/internal/scriptorium/service/persona/pkg/errno"
	"github.com/kiosk404/scrivener/pkg/errorx"
)

// PersonaHandler handles persona REST API endpoints.
type PersonaHandler struct {
	svc service.PersonaService
}

// NewPersonaHandler creates a new PersonaHandler.
func NewPersonaHandler(svc service.PersonaService) *PersonaHandler {
	return &PersonaHandler{svc: svc}
}

// List handles GET /api/personas.
func (h *PersonaHandler) List(c *gin.Context) {
	personas := h.svc.List()
	core.WriteResponse(c, nil, gin.H{"data": personas})
}

// Get handles GET /api/personas/:id.
func (h *PersonaHandler) Get(c *gin.Context) {
	id := c.Param("id")
	p, err := h.svc.Get(id)
	if err != nil {
		core.WriteResponse(c, errorx.WrapC(err, ErrPersonaNotFound, "persona %q not found", id), nil)
		return
	}
	core.WriteResponse(c, nil, p)
}

// Current handles GET /api/personas/current.
func (h *PersonaHandler) Current(c *gin.Context) {
	core.WriteResponse(c, nil, h.svc.Current())
}

// Switch handles POST /api/personas/:id/switch.
func (h *PersonaHandler) Switch(c *gin.Context) {
	id := c.Param("id")
	p, err := h.svc.Switch(id)
	if err != nil {
		core.WriteResponse(c, errorx.WrapC(err, ErrPersonaNotFound, "persona %q not found", id), nil)
		return
	}
	core.WriteResponse(c, nil, p)
}

// Create handles POST /api/personas/create.
func (h *PersonaHandler) Create(c *gin.Context) {
	var req CreatePersonaRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		core.WriteResponse(c, errorx.WrapC(err, ErrBind, "bind persona request"), nil)
		return
	}

	// Description and greeting are optional on the wire; the entity
	// requires both.
	if req.Description == "" {
		req.Description = "Custom persona"
	}
	if req.Greeting == "" {
		req.Greeting = "Hello! I am " + req.Name + "."
	}

	p := &entity.Persona{
		ID:           req.ID,
		Name:         req.Name,
		Description:  req.Description,
		Greeting:     req.Greeting,
		SystemPrompt: req.SystemPrompt,
		Capabilities: req.Capabilities,
		Channels:     req.Channels,
		Examples:     req.Examples,
	}
	created, err := h.svc.AddCustom(p)
	if err != nil {
		switch {
		case errors.Is(err, errno.ErrPersonaExists):
			core.WriteResponse(c, errorx.WrapC(err, ErrPersonaExists, "persona %q already exists", p.ID), nil)
		default:
			core.WriteResponse(c, errorx.WrapC(err, ErrPersonaInvalid, "invalid persona"), nil)
		}
		return
	}
	core.WriteResponse(c, nil, created)
}

// Reload handles POST /api/personas/reload.
func (h *PersonaHandler) Reload(c *gin.Context) {
	report, err := h.svc.Reload()
	if err != nil {
		core.WriteResponse(c, errorx.WrapC(err, ErrPersonaReload, "reload personas"), nil)
		return
	}
	core.WriteResponse(c, nil, report)
}
