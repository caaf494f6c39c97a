package service

import (
	"github.com/kiosk404/scrivener/internal/scriptorium/service/memory/domain/entity"
)

// MemoryService keeps bounded per-conversation history for prompt context.
type MemoryService interface {
	// Append records a message, creating the conversation on first use.
	Append(conversationID, personaID, channelID string, msg entity.Message) error

	// Get returns a snapshot of the conversation.
	Get(conversationID string) (*entity.Conversation, error)

	// Recent returns up to n most recent messages, oldest first.
	Recent(conversationID string, n int) []entity.Message

	// ContextFor returns the trailing messages that fit both limits. Whole
	// messages only; the oldest are dropped first.
	ContextFor(conversationID string, maxMessages, maxChars int) []entity.Message

	// SwitchPersona records a persona change as a system turn.
	SwitchPersona(conversationID, personaID, personaName string) error

	// Summary returns aggregate counts for one conversation.
	Summary(conversationID string) (*entity.Summary, error)

	// Summaries lists all conversations, most recently active first.
	Summaries() []*entity.Summary

	// Delete removes a conversation. Missing ids are not an error.
	Delete(conversationID string)

	// Clear drops all conversations.
	Clear()

	// Len reports the number of live conversations.
	Len() int
}
