package custom

import (
	"net/http"

	"github.com/kiosk404/scrivener/internal/pkg/options"
	"github.com/kiosk404/scrivener/internal/scriptorium/service/llm/provider/openai"
	"github.com/kiosk404/scrivener/internal/scriptorium/service/llm/provider/spi"
)

const Kind = "custom"

// New builds a binding for a self-hosted or third-party endpoint that speaks
// the chat-completions wire format.
func New(name string, cfg *options.ProviderConfig, client *http.Client) (spi.Binding, error) {
	return openai.NewWithKind(name, cfg, client, Kind)
}
