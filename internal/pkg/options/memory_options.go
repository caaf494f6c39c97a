package options

import (
	"fmt"

	"github.com/spf13/pflag"
)

// MemoryOptions configures conversation memory bounds.
type MemoryOptions struct {
	MaxConversations           int `json:"max-conversations"             mapstructure:"max-conversations"`
	MaxMessagesPerConversation int `json:"max-messages-per-conversation" mapstructure:"max-messages-per-conversation"`
	ContextWindow              int `json:"context-window"                mapstructure:"context-window"`
}

// NewMemoryOptions creates MemoryOptions with defaults.
func NewMemoryOptions() *MemoryOptions {
	return &MemoryOptions{
		MaxConversations:           100,
		MaxMessagesPerConversation: 50,
		ContextWindow:              10,
	}
}

// Validate checks the options.
func (o *MemoryOptions) Validate() []error {
	var errs []error
	if o.MaxConversations < 1 {
		errs = append(errs, fmt.Errorf("memory max-conversations must be at least 1"))
	}
	if o.MaxMessagesPerConversation < 1 {
		errs = append(errs, fmt.Errorf("memory max-messages-per-conversation must be at least 1"))
	}
	return errs
}

// AddFlags adds flags for conversation memory to the specified FlagSet.
func (o *MemoryOptions) AddFlags(fs *pflag.FlagSet) {
	fs.IntVar(&o.MaxConversations, "memory.max-conversations", o.MaxConversations, "Maximum retained conversations (LRU eviction).")
	fs.IntVar(&o.MaxMessagesPerConversation, "memory.max-messages-per-conversation", o.MaxMessagesPerConversation, "Maximum messages per conversation (FIFO eviction).")
	fs.IntVar(&o.ContextWindow, "memory.context-window", o.ContextWindow, "Maximum history messages included in prompt assembly.")
}
