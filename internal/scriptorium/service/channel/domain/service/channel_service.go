package service

import (
	"sort"
	"sync"

	"github.com/kiosk404/scrivener/internal/scriptorium/service/channel/domain/entity"
	"github.com/kiosk404/scrivener/internal/scriptorium/service/channel/pkg/errno"
	"github.com/kiosk404/scrivener/pkg/logger"
)

// DefaultChannelID is the channel selected at startup.
const DefaultChannelID = "web"

// ChannelService is the channel registry: lookup, selection, message checks.
type ChannelService interface {
	List() []*entity.Channel
	Get(id string) (*entity.Channel, error)
	Current() *entity.Channel
	Switch(id string) (*entity.Channel, error)
	Capabilities(id string) ([]string, error)
	ValidateMessage(id string, text string) (entity.MessageVerdict, error)
}

type channelService struct {
	mu        sync.RWMutex
	channels  map[string]*entity.Channel
	currentID string
}

// NewChannelService creates the registry seeded with the given channels.
// The web channel (or the first by id) becomes current.
func NewChannelService(channels []*entity.Channel) ChannelService {
	s := &channelService{channels: make(map[string]*entity.Channel, len(channels))}
	for _, c := range channels {
		s.channels[c.ID] = c
	}
	if _, ok := s.channels[DefaultChannelID]; ok {
		s.currentID = DefaultChannelID
	} else if all := s.sortedLocked(); len(all) > 0 {
		s.currentID = all[0].ID
	}
	logger.Info("[Channel] registry initialized with %d channels, current=%s", len(s.channels), s.currentID)
	return s
}

func (s *channelService) sortedLocked() []*entity.Channel {
	out := make([]*entity.Channel, 0, len(s.channels))
	for _, c := range s.channels {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (s *channelService) List() []*entity.Channel {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sortedLocked()
}

func (s *channelService) Get(id string) (*entity.Channel, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.channels[id]
	if !ok {
		return nil, errno.ErrChannelNotFound
	}
	return c, nil
}

func (s *channelService) Current() *entity.Channel {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.channels[s.currentID]
}

func (s *channelService) Switch(id string) (*entity.Channel, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.channels[id]
	if !ok {
		return nil, errno.ErrChannelNotFound
	}
	s.currentID = id
	logger.Info("[Channel] switched to %s", id)
	return c, nil
}

func (s *channelService) Capabilities(id string) ([]string, error) {
	c, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	caps := c.SupportedCapabilities()
	sort.Strings(caps)
	return caps, nil
}

func (s *channelService) ValidateMessage(id string, text string) (entity.MessageVerdict, error) {
	c, err := s.Get(id)
	if err != nil {
		return entity.MessageVerdict{}, err
	}
	return c.ValidateMessage(text), nil
}
