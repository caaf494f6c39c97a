package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kiosk404/scrivener/internal/scriptorium/service/channel/domain/entity"
	"github.com/kiosk404/scrivener/internal/scriptorium/service/channel/pkg/errno"
)

func testChannels() []*entity.Channel {
	return []*entity.Channel{
		{
			ID:   "web",
			Name: "Web",
			Capabilities: map[string]entity.Capability{
				"rich_text":   {Name: "Rich text", Supported: true},
				"interactive": {Name: "Interactive", Supported: true},
				"media":       {Name: "Media", Supported: false},
			},
		},
		{
			ID:          "twitch",
			Name:        "Twitch",
			Constraints: entity.Constraints{MaxMessageLength: 500},
			Capabilities: map[string]entity.Capability{
				"rich_text": {Name: "Rich text", Supported: false},
			},
		},
	}
}

func TestChannelService_DefaultsToWeb(t *testing.T) {
	svc := NewChannelService(testChannels())
	assert.Equal(t, "web", svc.Current().ID)
}

func TestChannelService_FallsBackToFirstByID(t *testing.T) {
	svc := NewChannelService([]*entity.Channel{
		{ID: "zeta"}, {ID: "alpha"},
	})
	assert.Equal(t, "alpha", svc.Current().ID)
}

func TestChannelService_GetUnknown(t *testing.T) {
	svc := NewChannelService(testChannels())

	_, err := svc.Get("carrier-pigeon")
	assert.ErrorIs(t, err, errno.ErrChannelNotFound)
}

func TestChannelService_Switch(t *testing.T) {
	svc := NewChannelService(testChannels())

	ch, err := svc.Switch("twitch")
	require.NoError(t, err)
	assert.Equal(t, "twitch", ch.ID)
	assert.Equal(t, "twitch", svc.Current().ID)

	_, err = svc.Switch("carrier-pigeon")
	assert.ErrorIs(t, err, errno.ErrChannelNotFound)
	assert.Equal(t, "twitch", svc.Current().ID)
}

func TestChannelService_ListSorted(t *testing.T) {
	svc := NewChannelService(testChannels())

	all := svc.List()
	require.Len(t, all, 2)
	assert.Equal(t, "twitch", all[0].ID)
	assert.Equal(t, "web", all[1].ID)
}

func TestChannelService_Capabilities(t *testing.T) {
	svc := NewChannelService(testChannels())

	caps, err := svc.Capabilities("web")
	require.NoError(t, err)
	assert.Equal(t, []string{"interactive", "rich_text"}, caps)
}

func TestChannelService_ValidateMessage(t *testing.T) {
	svc := NewChannelService(testChannels())

	long := make([]byte, 501)
	for i := range long {
		long[i] = 'x'
	}

	verdict, err := svc.ValidateMessage("twitch", string(long))
	require.NoError(t, err)
	assert.False(t, verdict.OK)
	assert.Equal(t, 500, verdict.Limit)

	verdict, err = svc.ValidateMessage("twitch", "short enough")
	require.NoError(t, err)
	assert.True(t, verdict.OK)

	// Web has no limit.
	verdict, err = svc.ValidateMessage("web", string(long))
	require.NoError(t, err)
	assert.True(t, verdict.OK)
}
