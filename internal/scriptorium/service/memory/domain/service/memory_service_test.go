package service

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kiosk404/scrivener/internal/scriptorium/service/memory/domain/entity"
	"github.com/kiosk404/scrivener/internal/scriptorium/service/memory/pkg/errno"
)

func userMsg(content string) entity.Message {
	return entity.Message{Role: entity.RoleUser, Content: content}
}

func TestMemoryService_AppendAndGet(t *testing.T) {
	svc := NewMemoryService(10, 10)

	require.NoError(t, svc.Append("c1", "helpful-assistant", "web", userMsg("hello")))
	require.NoError(t, svc.Append("c1", "", "", entity.Message{Role: entity.RoleAssistant, Content: "hi there"}))

	conv, err := svc.Get("c1")
	require.NoError(t, err)
	assert.Equal(t, "helpful-assistant", conv.PersonaID)
	assert.Equal(t, "web", conv.ChannelID)
	require.Len(t, conv.Messages, 2)
	assert.Equal(t, entity.RoleUser, conv.Messages[0].Role)
	assert.False(t, conv.Messages[0].Timestamp.IsZero())
}

func TestMemoryService_GetUnknown(t *testing.T) {
	svc := NewMemoryService(10, 10)

	_, err := svc.Get("missing")
	assert.ErrorIs(t, err, errno.ErrConversationNotFound)
}

func TestMemoryService_EmptyIDRejected(t *testing.T) {
	svc := NewMemoryService(10, 10)

	assert.Error(t, svc.Append("", "p", "web", userMsg("hello")))
}

func TestMemoryService_MessageCapDropsOldest(t *testing.T) {
	svc := NewMemoryService(10, 3)

	for i := 0; i < 5; i++ {
		require.NoError(t, svc.Append("c1", "p", "web", userMsg(fmt.Sprintf("msg-%d", i))))
	}

	conv, err := svc.Get("c1")
	require.NoError(t, err)
	require.Len(t, conv.Messages, 3)
	assert.Equal(t, "msg-2", conv.Messages[0].Content)
	assert.Equal(t, "msg-4", conv.Messages[2].Content)
}

func TestMemoryService_ConversationCapEvictsLRU(t *testing.T) {
	svc := NewMemoryService(2, 10)

	require.NoError(t, svc.Append("c1", "p", "web", userMsg("one")))
	require.NoError(t, svc.Append("c2", "p", "web", userMsg("two")))

	// Touch c1 so c2 becomes the eviction candidate.
	require.NoError(t, svc.Append("c1", "p", "web", userMsg("again")))
	require.NoError(t, svc.Append("c3", "p", "web", userMsg("three")))

	assert.Equal(t, 2, svc.Len())
	_, err := svc.Get("c2")
	assert.ErrorIs(t, err, errno.ErrConversationNotFound)
	_, err = svc.Get("c1")
	assert.NoError(t, err)
}

func TestMemoryService_ContextForKeepsNewestWholeMessages(t *testing.T) {
	svc := NewMemoryService(10, 50)

	require.NoError(t, svc.Append("c1", "p", "web", userMsg("aaaaaaaaaa"))) // 10 chars
	require.NoError(t, svc.Append("c1", "p", "web", userMsg("bbbbbbbbbb")))
	require.NoError(t, svc.Append("c1", "p", "web", userMsg("cccccccccc")))

	got := svc.ContextFor("c1", 10, 25)
	require.Len(t, got, 2)
	assert.Equal(t, "bbbbbbbbbb", got[0].Content)
	assert.Equal(t, "cccccccccc", got[1].Content)
}

func TestMemoryService_ContextForMessageLimit(t *testing.T) {
	svc := NewMemoryService(10, 50)

	for i := 0; i < 6; i++ {
		require.NoError(t, svc.Append("c1", "p", "web", userMsg(fmt.Sprintf("m%d", i))))
	}

	got := svc.ContextFor("c1", 4, 0)
	require.Len(t, got, 4)
	assert.Equal(t, "m2", got[0].Content)
}

func TestMemoryService_ContextForUnknownConversation(t *testing.T) {
	svc := NewMemoryService(10, 50)
	assert.Nil(t, svc.ContextFor("missing", 5, 100))
}

func TestMemoryService_SwitchPersonaRecordsSystemTurn(t *testing.T) {
	svc := NewMemoryService(10, 10)

	require.NoError(t, svc.Append("c1", "old", "web", userMsg("hello")))
	require.NoError(t, svc.SwitchPersona("c1", "devops-engineer", "DevOps Engineer"))

	conv, err := svc.Get("c1")
	require.NoError(t, err)
	assert.Equal(t, "devops-engineer", conv.PersonaID)
	last := conv.Messages[len(conv.Messages)-1]
	assert.Equal(t, entity.RoleSystem, last.Role)
	assert.Contains(t, last.Content, "DevOps Engineer")
	assert.Equal(t, "persona_switch", last.Metadata["event"])
}

func TestMemoryService_Summary(t *testing.T) {
	svc := NewMemoryService(10, 10)

	require.NoError(t, svc.Append("c1", "p", "web", userMsg("first question")))
	require.NoError(t, svc.Append("c1", "p", "web", entity.Message{Role: entity.RoleAssistant, Content: "an answer"}))
	require.NoError(t, svc.Append("c1", "p", "web", userMsg("follow up")))

	s, err := svc.Summary("c1")
	require.NoError(t, err)
	assert.Equal(t, 3, s.MessageCount)
	assert.Equal(t, 2, s.UserMessages)
	assert.Equal(t, "follow up", s.Preview)
}

func TestMemoryService_SummariesMostRecentFirst(t *testing.T) {
	svc := NewMemoryService(10, 10)

	require.NoError(t, svc.Append("c1", "p", "web", userMsg("one")))
	require.NoError(t, svc.Append("c2", "p", "web", userMsg("two")))
	require.NoError(t, svc.Append("c1", "p", "web", userMsg("newest")))

	summaries := svc.Summaries()
	require.Len(t, summaries, 2)
	assert.Equal(t, "c1", summaries[0].ID)
}

func TestMemoryService_DeleteAndClear(t *testing.T) {
	svc := NewMemoryService(10, 10)

	require.NoError(t, svc.Append("c1", "p", "web", userMsg("one")))
	require.NoError(t, svc.Append("c2", "p", "web", userMsg("two")))

	svc.Delete("c1")
	svc.Delete("c1") // idempotent
	assert.Equal(t, 1, svc.Len())

	svc.Clear()
	assert.Equal(t, 0, svc.Len())
}

func TestMemoryService_GetReturnsSnapshot(t *testing.T) {
	svc := NewMemoryService(10, 10)
	require.NoError(t, svc.Append("c1", "p", "web", userMsg("original")))

	conv, err := svc.Get("c1")
	require.NoError(t, err)
	conv.Messages[0].Content = "mutated"

	again, err := svc.Get("c1")
	require.NoError(t, err)
	assert.Equal(t, "original", again.Messages[0].Content)
}
