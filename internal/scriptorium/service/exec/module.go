package exec

import (
	"context"
	"fmt"
	"time"

	"github.com/kiosk404/scrivener/internal/pkg/options"
	"github.com/kiosk404/scrivener/internal/scriptorium/service/exec/domain/repo"
	"github.com/kiosk404/scrivener/internal/scriptorium/service/exec/domain/service"
	"github.com/kiosk404/scrivener/internal/scriptorium/service/exec/store/boltdb"
	"github.com/kiosk404/scrivener/internal/scriptorium/service/exec/store/inmemory"
	safetyservice "github.com/kiosk404/scrivener/internal/scriptorium/service/safety/domain/service"
	"github.com/kiosk404/scrivener/pkg/logger"
)

// Config holds the configuration for the Exec module.
type Config struct {
	Options    *options.SchedulerOptions
	ScriptsDir string
	Validator  safetyservice.Validator
}

// CompletedConfig is the validated and completed configuration.
type CompletedConfig struct {
	*Config
}

// Complete validates and fills defaults.
func (c *Config) Complete() CompletedConfig {
	if c.Options == nil {
		c.Options = options.NewSchedulerOptions()
	}
	if c.ScriptsDir == "" {
		c.ScriptsDir = "data/scripts"
	}
	return CompletedConfig{c}
}

// Module is the top-level Exec module.
type Module struct {
	Monitor service.Monitor

	history repo.TaskRepository
}

// New creates the Exec module from a completed config.
//
// Initialization flow:
// 1. Open the task history store (inmemory or boltdb)
// 2. Build the process executor
// 3. Start the scheduler over both
func (c CompletedConfig) New(_ context.Context) (*Module, error) {
	if c.Validator == nil {
		return nil, fmt.Errorf("exec requires the safety validator")
	}

	var history repo.TaskRepository
	switch c.Options.StoreType {
	case "boltdb":
		db, err := boltdb.Open(c.Options.BoltDBPath)
		if err != nil {
			return nil, fmt.Errorf("open task store: %w", err)
		}
		history = boltdb.NewTaskStore(db)
		logger.Info("[Exec] using boltdb task history at %s", c.Options.BoltDBPath)
	case "", "inmemory":
		history = inmemory.NewTaskStore(c.Options.HistoryMax)
	default:
		return nil, fmt.Errorf("unknown scheduler store type %q", c.Options.StoreType)
	}

	executor := service.NewExecutor(
		c.ScriptsDir,
		time.Duration(c.Options.GracePeriodMs)*time.Millisecond,
		time.Duration(c.Options.SampleIntervalMs)*time.Millisecond,
	)

	monitor := service.NewMonitor(service.MonitorConfig{
		MaxConcurrent:          c.Options.MaxConcurrent,
		DefaultTimeout:         time.Duration(c.Options.DefaultTimeoutSeconds) * time.Second,
		MaxTimeout:             time.Duration(c.Options.MaxTimeoutSeconds) * time.Second,
		AgingThreshold:         time.Duration(c.Options.AgingThresholdSeconds) * time.Second,
		RequireConfirmElevated: c.Options.RequireConfirmElevated,
	}, c.Validator, executor, history)

	return &Module{Monitor: monitor, history: history}, nil
}

// Close stops the scheduler and the history store.
func (m *Module) Close() {
	m.Monitor.Close()
	if err := m.history.Close(); err != nil {
		logger.Error("[Exec] close task store: %v", err)
	}
}
