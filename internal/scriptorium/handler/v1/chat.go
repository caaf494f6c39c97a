package v1

import (
	"strings"
	"time"

	"github.com/gin-contrib/sse"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/kiosk404/scrivener/internal/pkg/core"
	channelentity "github.com/kiosk404/scrivener/internal/scriptorium/service/channel/domain/entity"
	channelservice "github.com/kiosk404/scrivener/internal/scriptorium/service/channel/domain/service"
	"github.com/kiosk404/scrivener/internal/scriptorium/service/codegen/domain/service"
	"github.com/kiosk404/scrivener/internal/scriptorium/service/codegen/prompt"
	llmentity "github.com/kiosk404/scrivener/internal/scriptorium/service/llm/domain/entity"
	memoryentity "github.com/kiosk404/scrivener/internal/scriptorium/service/memory/domain/entity"
	memoryservice "github.com/kiosk404/scrivener/internal/scriptorium/service/memory/domain/service"
	personaentity "github.com/kiosk404/scrivener/internal/scriptorium/service/persona/domain/entity"
	personaservice "github.com/kiosk404/scrivener/internal/scriptorium/service/persona/domain/service"
	"github.com/kiosk404/scrivener/pkg/errorx"
	"github.com/kiosk404/scrivener/pkg/logger"
)

const (
	// maxContextChars bounds the character budget handed to the prompt.
	maxContextChars = 8000

	// streamChunkSize is the reply slice size for SSE delivery.
	streamChunkSize = 48
)

// ChatHandler handles conversational endpoints.
type ChatHandler struct {
	personas  personaservice.PersonaService
	channels  channelservice.ChannelService
	memory    memoryservice.MemoryService
	generator service.Generator

	contextWindow int
}

// NewChatHandler creates a new ChatHandler.
func NewChatHandler(
	personas personaservice.PersonaService,
	channels channelservice.ChannelService,
	memory memoryservice.MemoryService,
	generator service.Generator,
	contextWindow int,
) *ChatHandler {
	return &ChatHandler{
		personas:      personas,
		channels:      channels,
		memory:        memory,
		generator:     generator,
		contextWindow: contextWindow,
	}
}

// resolve picks the persona and channel for a request, falling back to the
// current selections. The returned error is already coded.
func (h *ChatHandler) resolve(req *ChatRequest) (*personaentity.Persona, *channelentity.Channel, error) {
	var p *personaentity.Persona
	if req.PersonaID != "" {
		var err error
		p, err = h.personas.Get(req.PersonaID)
		if err != nil {
			return nil, nil, errorx.WrapC(err, ErrPersonaNotFound, "persona %q not found", req.PersonaID)
		}
	} else {
		p = h.personas.Current()
	}

	var ch *channelentity.Channel
	if req.ChannelID != "" {
		var err error
		ch, err = h.channels.Get(req.ChannelID)
		if err != nil {
			return nil, nil, errorx.WrapC(err, ErrChannelNotFound, "channel %q not found", req.ChannelID)
		}
	} else {
		ch = h.channels.Current()
	}
	return p, ch, nil
}

func (h *ChatHandler) buildChatRequest(req *ChatRequest, p *personaentity.Persona, ch *channelentity.Channel) service.ChatRequest {
	history := h.memory.ContextFor(req.ConversationID, h.contextWindow, maxContextChars)
	msgs := make([]llmentity.ChatMessage, 0, len(history))
	for _, m := range history {
		msgs = append(msgs, llmentity.ChatMessage{
			Role:    llmentity.ChatRole(m.Role),
			Content: m.Content,
		})
	}

	return service.ChatRequest{
		Message: req.Message,
		Persona: &prompt.PersonaPromptInfo{
			ID:           p.ID,
			Name:         p.Name,
			SystemPrompt: p.SystemPrompt,
		},
		Channel: &prompt.ChannelPromptInfo{
			ID:               ch.ID,
			Name:             ch.Name,
			MaxMessageLength: ch.Constraints.MaxMessageLength,
			Capabilities:     ch.SupportedCapabilities(),
		},
		History:           msgs,
		PreferredProvider: req.Provider,
	}
}

// Chat handles POST /api/chat.
func (h *ChatHandler) Chat(c *gin.Context) {
	var req ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		core.WriteResponse(c, errorx.WrapC(err, ErrBind, "bind chat request"), nil)
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		core.WriteResponse(c, errorx.WithCode(ErrMessageEmpty, "message is empty"), nil)
		return
	}
	if req.ConversationID == "" {
		req.ConversationID = uuid.New().String()
	}

	p, ch, err := h.resolve(&req)
	if err != nil {
		core.WriteResponse(c, err, nil)
		return
	}
	if verdict := ch.ValidateMessage(req.Message); !verdict.OK {
		core.WriteResponse(c, errorx.WithCode(ErrMessageTooLong, "message exceeds %d characters for channel %s", verdict.Limit, ch.ID), nil)
		return
	}

	chatReq := h.buildChatRequest(&req, p, ch)
	if err := h.memory.Append(req.ConversationID, p.ID, ch.ID, memoryentity.Message{
		Role:    memoryentity.RoleUser,
		Content: req.Message,
	}); err != nil {
		logger.Warn("[Chat] record user turn: %v", err)
	}

	completion, err := h.generator.Chat(c.Request.Context(), chatReq)
	if err != nil {
		core.WriteResponse(c, errorx.WrapC(err, ErrChatFailed, "chat generation failed"), nil)
		return
	}

	if err := h.memory.Append(req.ConversationID, p.ID, ch.ID, memoryentity.Message{
		Role:    memoryentity.RoleAssistant,
		Content: completion.Text,
	}); err != nil {
		logger.Warn("[Chat] record assistant turn: %v", err)
	}

	core.WriteResponse(c, nil, ChatResponse{
		Response:       completion.Text,
		ConversationID: req.ConversationID,
		PersonaID:      p.ID,
		ChannelID:      ch.ID,
		Provider:       completion.ProviderName,
		Model:          completion.Model,
		Timestamp:      FormatTime(time.Now()),
	})
}

// ChatStream handles POST /api/chat/stream, delivering the reply as
// server-sent events: message chunks followed by a done event.
func (h *ChatHandler) ChatStream(c *gin.Context) {
	var req ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		core.WriteResponse(c, errorx.WrapC(err, ErrBind, "bind chat request"), nil)
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		core.WriteResponse(c, errorx.WithCode(ErrMessageEmpty, "message is empty"), nil)
		return
	}
	if req.ConversationID == "" {
		req.ConversationID = uuid.New().String()
	}

	p, ch, err := h.resolve(&req)
	if err != nil {
		core.WriteResponse(c, err, nil)
		return
	}

	chatReq := h.buildChatRequest(&req, p, ch)
	if err := h.memory.Append(req.ConversationID, p.ID, ch.ID, memoryentity.Message{
		Role:    memoryentity.RoleUser,
		Content: req.Message,
	}); err != nil {
		logger.Warn("[Chat] record user turn: %v", err)
	}

	completion, err := h.generator.Chat(c.Request.Context(), chatReq)
	if err != nil {
		core.WriteResponse(c, errorx.WrapC(err, ErrChatFailed, "chat generation failed"), nil)
		return
	}
	if err := h.memory.Append(req.ConversationID, p.ID, ch.ID, memoryentity.Message{
		Role:    memoryentity.RoleAssistant,
		Content: completion.Text,
	}); err != nil {
		logger.Warn("[Chat] record assistant turn: %v", err)
	}

	c.Header("Content-Type", sse.ContentType)
	c.Header("Cache-Control", "no-cache")

	text := completion.Text
	for start := 0; start < len(text); start += streamChunkSize {
		end := start + streamChunkSize
		if end > len(text) {
			end = len(text)
		}
		c.Render(-1, sse.Event{Event: "message", Data: gin.H{"delta": text[start:end]}})
		c.Writer.Flush()
	}
	c.Render(-1, sse.Event{Event: "done", Data: gin.H{
		"conversationId": req.ConversationID,
		"personaId":      p.ID,
		"provider":       completion.ProviderName,
	}})
	c.Writer.Flush()
}
