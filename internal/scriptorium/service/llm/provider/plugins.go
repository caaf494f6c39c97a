package provider

import (
	"github.com/kiosk404/scrivener/internal/scriptorium/service/llm/provider/anthropic"
	"github.com/kiosk404/scrivener/internal/scriptorium/service/llm/provider/custom"
	"github.com/kiosk404/scrivener/internal/scriptorium/service/llm/provider/gemini"
	"github.com/kiosk404/scrivener/internal/scriptorium/service/llm/provider/ollama"
	"github.com/kiosk404/scrivener/internal/scriptorium/service/llm/provider/openai"
)

func NewInTreeRegistry() *Registry {
	r := NewRegistry()

	r.MustRegister(ollama.Kind, ollama.New)
	r.MustRegister(openai.Kind, openai.New)
	r.MustRegister(anthropic.Kind, anthropic.New)
	r.MustRegister(gemini.Kind, gemini.New)
	r.MustRegister(custom.Kind, custom.New)
	return r
}
