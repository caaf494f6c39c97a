package entity

// Channel is a named output-format profile. Immutable once registered.
type Channel struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`

	// Capabilities maps capability flags (rich_text, interactive, media,
	// blocks, ...) to whether this channel supports them.
	Capabilities map[string]Capability `json:"capabilities"`

	// ArtifactTypes lists the structured output identifiers the channel can emit.
	ArtifactTypes []string `json:"artifactTypes"`

	Constraints Constraints       `json:"constraints,omitempty"`
	Metadata    map[string]string `json:"metadata,omitempty"`
}

// Capability describes a single channel capability flag.
type Capability struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Supported   bool   `json:"supported"`
}

// Constraints holds channel output limits.
type Constraints struct {
	// MaxMessageLength bounds outgoing message size. 0 means unbounded.
	MaxMessageLength int `json:"maxMessageLength,omitempty"`
}

// MessageVerdict is the result of validating a message against a channel.
type MessageVerdict struct {
	OK    bool `json:"ok"`
	Limit int  `json:"limit,omitempty"`
}

// ValidateMessage checks text against the channel constraints.
func (c *Channel) ValidateMessage(text string) MessageVerdict {
	limit := c.Constraints.MaxMessageLength
	if limit > 0 && len(text) > limit {
		return MessageVerdict{OK: false, Limit: limit}
	}
	return MessageVerdict{OK: true}
}

// SupportedCapabilities returns the names of capabilities flagged supported.
func (c *Channel) SupportedCapabilities() []string {
	var out []string
	for key, capability := range c.Capabilities {
		if capability.Supported {
			out = append(out, key)
		}
	}
	return out
}
