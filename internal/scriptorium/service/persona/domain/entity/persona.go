package entity

import (
	"fmt"
	"regexp"
	"strings"
)

var idPattern = regexp.MustCompile(`^[a-z0-9-]+$`)

// Persona is a named prompt profile. Immutable once registered.
type Persona struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	Description  string   `json:"description"`
	Greeting     string   `json:"greeting"`
	SystemPrompt string   `json:"systemPrompt"`
	Capabilities []string `json:"capabilities,omitempty"`

	// Personality is informational metadata surfaced to the UI.
	Personality Personality `json:"personality,omitempty"`

	// Channels lists compatible channel ids. Empty means all channels.
	Channels []string `json:"channels,omitempty"`

	Examples []string `json:"examples,omitempty"`

	// Custom marks personas created at runtime rather than loaded from disk.
	Custom bool `json:"custom,omitempty"`
}

// Personality captures the persona's voice.
type Personality struct {
	Tone       string `json:"tone,omitempty"`
	Approach   string `json:"approach,omitempty"`
	Philosophy string `json:"philosophy,omitempty"`
	Motto      string `json:"motto,omitempty"`
}

// Validate checks the required fields and the id shape.
func (p *Persona) Validate() error {
	var missing []string
	for field, value := range map[string]string{
		"id":           p.ID,
		"name":         p.Name,
		"description":  p.Description,
		"greeting":     p.Greeting,
		"systemPrompt": p.SystemPrompt,
	} {
		if strings.TrimSpace(value) == "" {
			missing = append(missing, field)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required fields: %s", strings.Join(missing, ", "))
	}
	if !idPattern.MatchString(p.ID) {
		return fmt.Errorf("invalid persona id %q, must match [a-z0-9-]+", p.ID)
	}
	return nil
}

// SupportsChannel reports whether the persona may serve the given channel.
// An empty channel list means the persona is available everywhere.
func (p *Persona) SupportsChannel(channelID string) bool {
	if len(p.Channels) == 0 {
		return true
	}
	for _, c := range p.Channels {
		if c == channelID || c == "*" {
			return true
		}
	}
	return false
}

// DeriveID turns a display name into a registry id: lowercase, runs of
// non-alphanumerics collapsed to single dashes, trimmed.
func DeriveID(name string) string {
	lower := strings.ToLower(strings.TrimSpace(name))
	var b strings.Builder
	lastDash := true
	for _, r := range lower {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastDash = false
		default:
			if !lastDash {
				b.WriteByte('-')
				lastDash = true
			}
		}
	}
	return strings.Trim(b.String(), "-")
}
