package channel

import (
	"context"
	"os"
	"path/filepath"

	"github.com/kiosk404/scrivener/internal/scriptorium/service/channel/domain/entity"
	"github.com/kiosk404/scrivener/internal/scriptorium/service/channel/domain/service"
	"github.com/kiosk404/scrivener/pkg/logger"
	"github.com/kiosk404/scrivener/pkg/utils/json"
)

// Config holds the configuration for the Channel module.
type Config struct {
	// Dir optionally holds channel JSON overrides merged over the builtins.
	Dir string
}

// CompletedConfig is the validated and completed configuration.
type CompletedConfig struct {
	*Config
}

// Complete validates and fills defaults.
func (c *Config) Complete() CompletedConfig {
	return CompletedConfig{c}
}

// Module is the top-level Channel module.
type Module struct {
	Service service.ChannelService
}

// New creates and initializes the Channel module from a completed config.
func (c CompletedConfig) New(_ context.Context) (*Module, error) {
	channels := BuiltinChannels()
	channels = mergeOverrides(channels, c.Dir)
	return &Module{Service: service.NewChannelService(channels)}, nil
}

// mergeOverrides loads *.json channel files and replaces or appends to the
// builtin catalog by id. Bad files are skipped.
func mergeOverrides(channels []*entity.Channel, dir string) []*entity.Channel {
	if dir == "" {
		return channels
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return channels
	}

	byID := make(map[string]int, len(channels))
	for i, ch := range channels {
		byID[ch.ID] = i
	}

	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != ".json" {
			continue
		}
		data, err := os.ReadFile(filepath.Join(dir, e.Name()))
		if err != nil {
			continue
		}
		var ch entity.Channel
		if err := json.Unmarshal(data, &ch); err != nil || ch.ID == "" {
			logger.Warn("[Channel] skipping invalid override %s", e.Name())
			continue
		}
		if i, ok := byID[ch.ID]; ok {
			channels[i] = &ch
		} else {
			byID[ch.ID] = len(channels)
			channels = append(channels, &ch)
		}
		logger.Info("[Channel] loaded override for %s", ch.ID)
	}
	return channels
}
