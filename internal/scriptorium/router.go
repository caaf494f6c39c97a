package scriptorium

import (
	"github.com/gin-gonic/gin"

	"github.com/kiosk404/scrivener/internal/scriptorium/handler/middleware"
	v1 "github.com/kiosk404/scrivener/internal/scriptorium/handler/v1"
	channelservice "github.com/kiosk404/scrivener/internal/scriptorium/service/channel/domain/service"
	codegenservice "github.com/kiosk404/scrivener/internal/scriptorium/service/codegen/domain/service"
	execservice "github.com/kiosk404/scrivener/internal/scriptorium/service/exec/domain/service"
	llmservice "github.com/kiosk404/scrivener/internal/scriptorium/service/llm/domain/service"
	memoryservice "github.com/kiosk404/scrivener/internal/scriptorium/service/memory/domain/service"
	personaservice "github.com/kiosk404/scrivener/internal/scriptorium/service/persona/domain/service"
)

// routerDeps holds the dependencies needed for route registration.
type routerDeps struct {
	personas  personaservice.PersonaService
	channels  channelservice.ChannelService
	memory    memoryservice.MemoryService
	gateway   llmservice.Gateway
	generator codegenservice.Generator
	monitor   execservice.Monitor

	authConfig    *middleware.AuthConfig
	contextWindow int
}

func initRouter(g *gin.Engine, deps *routerDeps) {
	installMiddleware(g, deps)
	installController(g, deps)
}

func installMiddleware(g *gin.Engine, deps *routerDeps) {
	g.Use(gin.Recovery())
	g.Use(middleware.RequestID())
	g.Use(middleware.CORS())

	if deps.authConfig != nil {
		g.Use(middleware.BearerAuth(deps.authConfig))
	}
}

func installController(g *gin.Engine, deps *routerDeps) {
	// Handlers.
	personaHandler := v1.NewPersonaHandler(deps.personas)
	channelHandler := v1.NewChannelHandler(deps.channels)
	chatHandler := v1.NewChatHandler(deps.personas, deps.channels, deps.memory, deps.generator, deps.contextWindow)
	conversationHandler := v1.NewConversationHandler(deps.memory)
	scriptHandler := v1.NewScriptHandler(deps.generator, deps.personas, deps.memory, deps.contextWindow)
	taskHandler := v1.NewTaskHandler(deps.monitor)
	systemHandler := v1.NewSystemHandler(deps.gateway, deps.monitor)

	g.GET("/version", systemHandler.Version)

	// --- /api route group ---
	api := g.Group("/api")
	{
		// Persona registry.
		api.GET("/personas", personaHandler.List)
		api.GET("/personas/current", personaHandler.Current)
		api.GET("/personas/:id", personaHandler.Get)
		api.POST("/personas/create", personaHandler.Create)
		api.POST("/personas/:id/switch", personaHandler.Switch)
		api.POST("/personas/reload", personaHandler.Reload)

		// Channel registry.
		api.GET("/channels", channelHandler.List)
		api.GET("/channels/current", channelHandler.Current)
		api.GET("/channels/:id", channelHandler.Get)
		api.GET("/channels/:id/capabilities", channelHandler.Capabilities)
		api.POST("/channels/:id/validate", channelHandler.ValidateMessage)
		api.POST("/channels/:id/switch", channelHandler.Switch)

		// Conversation.
		api.POST("/chat", chatHandler.Chat)
		api.POST("/chat/stream", chatHandler.ChatStream)
		api.GET("/conversations", conversationHandler.List)
		api.GET("/conversations/:id", conversationHandler.Get)
		api.GET("/conversations/:id/summary", conversationHandler.Summary)
		api.DELETE("/conversations/:id", conversationHandler.Delete)

		// Script generation.
		api.POST("/generate/script", scriptHandler.Generate)
		api.POST("/scripts/improve", scriptHandler.Improve)
		api.POST("/scripts/validate", scriptHandler.Validate)

		// Execution.
		api.POST("/execute/script", taskHandler.Submit)
		api.GET("/execute/running", taskHandler.Running)
		api.GET("/execute/history", taskHandler.History)
		api.GET("/execute/statistics", taskHandler.Statistics)
		api.GET("/execute/task/:id", taskHandler.Get)
		api.DELETE("/execute/task/:id", taskHandler.Cancel)

		// System.
		api.GET("/system/status", systemHandler.Status)
	}
}
