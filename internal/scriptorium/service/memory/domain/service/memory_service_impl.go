package service

import (
	"container/list"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/jinzhu/copier"

	"github.com/kiosk404/scrivener/internal/scriptorium/service/memory/domain/entity"
	"github.com/kiosk404/scrivener/internal/scriptorium/service/memory/pkg/errno"
	"github.com/kiosk404/scrivener/pkg/logger"
)

const previewLen = 80

type memoryService struct {
	mu sync.Mutex

	maxConversations int
	maxMessages      int

	// conversations holds id -> *list.Element whose Value is *entity.Conversation.
	// lru is ordered most recently touched first.
	conversations map[string]*list.Element
	lru           *list.List
}

// NewMemoryService creates the in-process conversation store. When the
// conversation cap is exceeded the least recently touched one is evicted;
// within a conversation the oldest messages are dropped past the message cap.
func NewMemoryService(maxConversations, maxMessages int) MemoryService {
	return &memoryService{
		maxConversations: maxConversations,
		maxMessages:      maxMessages,
		conversations:    make(map[string]*list.Element),
		lru:              list.New(),
	}
}

func (m *memoryService) touchLocked(conversationID, personaID, channelID string) *entity.Conversation {
	if el, ok := m.conversations[conversationID]; ok {
		m.lru.MoveToFront(el)
		return el.Value.(*entity.Conversation)
	}

	now := time.Now().UTC()
	conv := &entity.Conversation{
		ID:        conversationID,
		PersonaID: personaID,
		ChannelID: channelID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	m.conversations[conversationID] = m.lru.PushFront(conv)

	for m.lru.Len() > m.maxConversations {
		oldest := m.lru.Back()
		evicted := oldest.Value.(*entity.Conversation)
		m.lru.Remove(oldest)
		delete(m.conversations, evicted.ID)
		logger.Info("[Memory] evicted conversation %s (cap %d)", evicted.ID, m.maxConversations)
	}
	return conv
}

func (m *memoryService) Append(conversationID, personaID, channelID string, msg entity.Message) error {
	if conversationID == "" {
		return fmt.Errorf("conversation id must not be empty")
	}
	if msg.Timestamp.IsZero() {
		msg.Timestamp = time.Now().UTC()
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	conv := m.touchLocked(conversationID, personaID, channelID)
	if personaID != "" {
		conv.PersonaID = personaID
	}
	if channelID != "" {
		conv.ChannelID = channelID
	}
	conv.Messages = append(conv.Messages, msg)
	if over := len(conv.Messages) - m.maxMessages; over > 0 {
		conv.Messages = conv.Messages[over:]
	}
	conv.UpdatedAt = msg.Timestamp
	return nil
}

func (m *memoryService) Get(conversationID string) (*entity.Conversation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	el, ok := m.conversations[conversationID]
	if !ok {
		return nil, errno.ErrConversationNotFound
	}
	snapshot := &entity.Conversation{}
	if err := copier.CopyWithOption(snapshot, el.Value.(*entity.Conversation), copier.Option{DeepCopy: true}); err != nil {
		return nil, err
	}
	return snapshot, nil
}

func (m *memoryService) Recent(conversationID string, n int) []entity.Message {
	m.mu.Lock()
	defer m.mu.Unlock()

	el, ok := m.conversations[conversationID]
	if !ok || n <= 0 {
		return nil
	}
	msgs := el.Value.(*entity.Conversation).Messages
	if len(msgs) > n {
		msgs = msgs[len(msgs)-n:]
	}
	out := make([]entity.Message, len(msgs))
	copy(out, msgs)
	return out
}

func (m *memoryService) ContextFor(conversationID string, maxMessages, maxChars int) []entity.Message {
	m.mu.Lock()
	defer m.mu.Unlock()

	el, ok := m.conversations[conversationID]
	if !ok {
		return nil
	}
	msgs := el.Value.(*entity.Conversation).Messages
	if maxMessages > 0 && len(msgs) > maxMessages {
		msgs = msgs[len(msgs)-maxMessages:]
	}

	// Walk backwards so the newest turns always survive a char-budget trim.
	start, chars := len(msgs), 0
	for i := len(msgs) - 1; i >= 0; i-- {
		chars += len(msgs[i].Content)
		if maxChars > 0 && chars > maxChars {
			break
		}
		start = i
	}

	out := make([]entity.Message, len(msgs)-start)
	copy(out, msgs[start:])
	return out
}

func (m *memoryService) SwitchPersona(conversationID, personaID, personaName string) error {
	note := entity.Message{
		Role:      entity.RoleSystem,
		Content:   fmt.Sprintf("Persona switched to %s", personaName),
		Timestamp: time.Now().UTC(),
		Metadata:  map[string]string{"event": "persona_switch", "personaId": personaID},
	}
	return m.Append(conversationID, personaID, "", note)
}

func summarize(conv *entity.Conversation) *entity.Summary {
	s := &entity.Summary{
		ID:            conv.ID,
		PersonaID:     conv.PersonaID,
		ChannelID:     conv.ChannelID,
		MessageCount:  len(conv.Messages),
		FirstActivity: conv.CreatedAt,
		LastActivity:  conv.UpdatedAt,
	}
	for i := len(conv.Messages) - 1; i >= 0; i-- {
		msg := conv.Messages[i]
		if msg.Role != entity.RoleUser {
			continue
		}
		s.UserMessages++
		if s.Preview == "" {
			s.Preview = msg.Content
			if len(s.Preview) > previewLen {
				s.Preview = s.Preview[:previewLen]
			}
		}
	}
	return s
}

func (m *memoryService) Summary(conversationID string) (*entity.Summary, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	el, ok := m.conversations[conversationID]
	if !ok {
		return nil, errno.ErrConversationNotFound
	}
	return summarize(el.Value.(*entity.Conversation)), nil
}

func (m *memoryService) Summaries() []*entity.Summary {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]*entity.Summary, 0, m.lru.Len())
	for el := m.lru.Front(); el != nil; el = el.Next() {
		out = append(out, summarize(el.Value.(*entity.Conversation)))
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].LastActivity.After(out[j].LastActivity) })
	return out
}

func (m *memoryService) Delete(conversationID string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if el, ok := m.conversations[conversationID]; ok {
		m.lru.Remove(el)
		delete(m.conversations, conversationID)
	}
}

func (m *memoryService) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.conversations = make(map[string]*list.Element)
	m.lru.Init()
}

func (m *memoryService) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lru.Len()
}
