package v1

import (
	"time"

	codegenentity "github.com/kiosk404/scrivener/internal/scriptorium/service/codegen/domain/entity"
	execentity "github.com/kiosk404/scrivener/internal/scriptorium/service/exec/domain/entity"
)

// FormatTime renders timestamps the way every response does.
func FormatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

// --- Persona ---

type CreatePersonaRequest struct {
	ID           string   `json:"id"`
	Name         string   `json:"name" binding:"required"`
	Description  string   `json:"description"`
	Greeting     string   `json:"greeting"`
	SystemPrompt string   `json:"systemPrompt" binding:"required"`
	Capabilities []string `json:"capabilities"`
	Channels     []string `json:"channels"`
	Examples     []string `json:"examples"`
}

// --- Channel ---

type ValidateMessageRequest struct {
	Text string `json:"text" binding:"required"`
}

// --- Chat ---

type ChatRequest struct {
	Message        string `json:"message" binding:"required"`
	ConversationID string `json:"conversationId"`
	PersonaID      string `json:"personaId"`
	ChannelID      string `json:"channelId"`
	Provider       string `json:"provider"`
}

type ChatResponse struct {
	Response       string `json:"response"`
	ConversationID string `json:"conversationId"`
	PersonaID      string `json:"personaId"`
	ChannelID      string `json:"channelId"`
	Provider       string `json:"provider,omitempty"`
	Model          string `json:"model,omitempty"`
	Timestamp      string `json:"timestamp"`
}

// --- Scripts ---

type GenerateScriptRequest struct {
	Prompt         string `json:"prompt" binding:"required"`
	Platform       string `json:"platform" binding:"required"`
	Policy         string `json:"policy"`
	ConversationID string `json:"conversationId"`
	PersonaID      string `json:"personaId"`
	Provider       string `json:"provider"`
}

type ImproveScriptRequest struct {
	Script   string `json:"script" binding:"required"`
	Platform string `json:"platform" binding:"required"`
	Feedback string `json:"feedback" binding:"required"`
	Policy   string `json:"policy"`
	Provider string `json:"provider"`
}

type ValidateScriptRequest struct {
	Script   string `json:"script" binding:"required"`
	Platform string `json:"platform" binding:"required"`
	Policy   string `json:"policy"`
	Provider string `json:"provider"`
}

type ScriptResponse struct {
	Platform      string                           `json:"platform"`
	Filename      string                           `json:"filename"`
	Content       string                           `json:"content"`
	Documentation string                           `json:"documentation,omitempty"`
	Source        string                           `json:"source"`
	Safety        *codegenentity.ValidationReport `json:"safety,omitempty"`
}

func toScriptResponse(s *codegenentity.Script) ScriptResponse {
	return ScriptResponse{
		Platform:      string(s.Platform),
		Filename:      s.Filename,
		Content:       s.Content,
		Documentation: s.Documentation,
		Source:        string(s.Source),
		Safety:        s.Safety,
	}
}

// --- Tasks ---

type ExecuteRequest struct {
	Platform       string            `json:"platform" binding:"required"`
	Script         string            `json:"script" binding:"required"`
	Policy         string            `json:"policy"`
	Priority       string            `json:"priority"`
	WorkingDir     string            `json:"workingDir"`
	Env            map[string]string `json:"env"`
	TimeoutSeconds int               `json:"timeoutSeconds"`
	Parameters     map[string]string `json:"parameters"`
	ConfirmToken   string            `json:"confirmToken"`
}

type TaskResponse struct {
	ID                string                           `json:"id"`
	State             string                           `json:"state"`
	Platform          string                           `json:"platform"`
	Policy            string                           `json:"policy"`
	Priority          string                           `json:"priority"`
	EffectivePriority int                              `json:"effectivePriority"`
	SubmittedAt       string                           `json:"submittedAt"`
	StartedAt         string                           `json:"startedAt,omitempty"`
	FinishedAt        string                           `json:"finishedAt,omitempty"`
	Result            *execentity.Result               `json:"result,omitempty"`
	Metrics           *execentity.Metrics              `json:"metrics,omitempty"`
	Safety            *codegenentity.ValidationReport `json:"safety,omitempty"`
}

func toTaskResponse(t *execentity.Task) TaskResponse {
	return TaskResponse{
		ID:                t.ID,
		State:             string(t.State),
		Platform:          string(t.Request.Platform),
		Policy:            string(t.Request.Policy),
		Priority:          string(t.Request.Priority),
		EffectivePriority: t.EffectivePriority,
		SubmittedAt:       FormatTime(t.SubmittedAt),
		StartedAt:         FormatTime(t.StartedAt),
		FinishedAt:        FormatTime(t.FinishedAt),
		Result:            t.Result,
		Metrics:           t.Metrics,
		Safety:            t.Safety,
	}
}
