package v1

import (
	"github.com/gin-gonic/gin"

	"github.com/kiosk404/scrivener/internal/pkg/core"
	codegenentity "github.com/kiosk404/scrivener/internal/scriptorium/service/codegen/domain/entity"
	"github.com/kiosk404/scrivener/internal/scriptorium/service/codegen/domain/service"
	"github.com/kiosk404/scrivener/internal/scriptorium/service/codegen/prompt"
	llmentity "github.com/kiosk404/scrivener/internal/scriptorium/service/llm/domain/entity"
	memoryservice "github.com/kiosk404/scrivener/internal/scriptorium/service/memory/domain/service"
	personaservice "github.com/kiosk404/scrivener/internal/scriptorium/service/persona/domain/service"
	safetyentity "github.com/kiosk404/scrivener/internal/scriptorium/service/safety/domain/entity"
	"github.com/kiosk404/scrivener/pkg/errorx"
)

// ScriptHandler handles script generation endpoints.
type ScriptHandler struct {
	generator service.Generator
	personas  personaservice.PersonaService
	memory    memoryservice.MemoryService

	contextWindow int
}

// NewScriptHandler creates a new ScriptHandler.
func NewScriptHandler(
	generator service.Generator,
	personas personaservice.PersonaService,
	memory memoryservice.MemoryService,
	contextWindow int,
) *ScriptHandler {
	return &ScriptHandler{
		generator:     generator,
		personas:      personas,
		memory:        memory,
		contextWindow: contextWindow,
	}
}

func (h *ScriptHandler) personaInfo(personaID string) (*prompt.PersonaPromptInfo, error) {
	p := h.personas.Current()
	if personaID != "" {
		var err error
		p, err = h.personas.Get(personaID)
		if err != nil {
			return nil, errorx.WrapC(err, ErrPersonaNotFound, "persona %q not found", personaID)
		}
	}
	return &prompt.PersonaPromptInfo{
		ID:           p.ID,
		Name:         p.Name,
		SystemPrompt: p.SystemPrompt,
	}, nil
}

// Generate handles POST /api/generate/script.
func (h *ScriptHandler) Generate(c *gin.Context) {
	var req GenerateScriptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		core.WriteResponse(c, errorx.WrapC(err, ErrBind, "bind generate request"), nil)
		return
	}

	platform, err := codegenentity.ParsePlatform(req.Platform)
	if err != nil {
		core.WriteResponse(c, errorx.WrapC(err, ErrPlatformNotSupported, "platform %q not supported", req.Platform), nil)
		return
	}
	policy, err := safetyentity.ParsePolicy(req.Policy)
	if err != nil {
		core.WriteResponse(c, errorx.WrapC(err, ErrValidation, "invalid policy %q", req.Policy), nil)
		return
	}
	persona, err := h.personaInfo(req.PersonaID)
	if err != nil {
		core.WriteResponse(c, err, nil)
		return
	}

	var history []llmentity.ChatMessage
	if req.ConversationID != "" {
		for _, m := range h.memory.ContextFor(req.ConversationID, h.contextWindow, maxContextChars) {
			history = append(history, llmentity.ChatMessage{
				Role:    llmentity.ChatRole(m.Role),
				Content: m.Content,
			})
		}
	}

	script, err := h.generator.Generate(c.Request.Context(), service.GenerateRequest{
		Request:           req.Prompt,
		Platform:          platform,
		Policy:            policy,
		Persona:           persona,
		History:           history,
		PreferredProvider: req.Provider,
	})
	if err != nil {
		core.WriteResponse(c, errorx.WrapC(err, ErrGenerateFailed, "generate script"), nil)
		return
	}
	core.WriteResponse(c, nil, toScriptResponse(script))
}

// Improve handles POST /api/scripts/improve.
func (h *ScriptHandler) Improve(c *gin.Context) {
	var req ImproveScriptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		core.WriteResponse(c, errorx.WrapC(err, ErrBind, "bind improve request"), nil)
		return
	}

	platform, err := codegenentity.ParsePlatform(req.Platform)
	if err != nil {
		core.WriteResponse(c, errorx.WrapC(err, ErrPlatformNotSupported, "platform %q not supported", req.Platform), nil)
		return
	}
	policy, err := safetyentity.ParsePolicy(req.Policy)
	if err != nil {
		core.WriteResponse(c, errorx.WrapC(err, ErrValidation, "invalid policy %q", req.Policy), nil)
		return
	}
	persona, err := h.personaInfo("")
	if err != nil {
		core.WriteResponse(c, err, nil)
		return
	}

	script, err := h.generator.Improve(c.Request.Context(), service.ImproveRequest{
		Script:            req.Script,
		Platform:          platform,
		Feedback:          req.Feedback,
		Policy:            policy,
		Persona:           persona,
		PreferredProvider: req.Provider,
	})
	if err != nil {
		core.WriteResponse(c, errorx.WrapC(err, ErrImproveFailed, "improve script"), nil)
		return
	}
	core.WriteResponse(c, nil, toScriptResponse(script))
}

// Validate handles POST /api/scripts/validate.
func (h *ScriptHandler) Validate(c *gin.Context) {
	var req ValidateScriptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		core.WriteResponse(c, errorx.WrapC(err, ErrBind, "bind validate request"), nil)
		return
	}

	platform, err := codegenentity.ParsePlatform(req.Platform)
	if err != nil {
		core.WriteResponse(c, errorx.WrapC(err, ErrPlatformNotSupported, "platform %q not supported", req.Platform), nil)
		return
	}
	policy, err := safetyentity.ParsePolicy(req.Policy)
	if err != nil {
		core.WriteResponse(c, errorx.WrapC(err, ErrValidation, "invalid policy %q", req.Policy), nil)
		return
	}

	report, err := h.generator.Validate(c.Request.Context(), service.ValidateRequest{
		Script:            req.Script,
		Platform:          platform,
		Policy:            policy,
		PreferredProvider: req.Provider,
	})
	if err != nil {
		core.WriteResponse(c, errorx.WrapC(err, ErrValidateFailed, "validate script"), nil)
		return
	}
	core.WriteResponse(c, nil, report)
}
