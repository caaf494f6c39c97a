package options

import (
	"fmt"

	"github.com/spf13/pflag"
)

// SchedulerOptions configures the execution monitor and executor.
type SchedulerOptions struct {
	MaxConcurrent          int    `json:"max-concurrent"           mapstructure:"max-concurrent"`
	HistoryMax             int    `json:"history-max"              mapstructure:"history-max"`
	MaxTimeoutSeconds      int    `json:"max-timeout-seconds"      mapstructure:"max-timeout-seconds"`
	DefaultTimeoutSeconds  int    `json:"default-timeout-seconds"  mapstructure:"default-timeout-seconds"`
	SampleIntervalMs       int    `json:"sample-interval-ms"       mapstructure:"sample-interval-ms"`
	GracePeriodMs          int    `json:"grace-period-ms"          mapstructure:"grace-period-ms"`
	AgingThresholdSeconds  int    `json:"aging-threshold-seconds"  mapstructure:"aging-threshold-seconds"`
	StoreType              string `json:"store-type"               mapstructure:"store-type"`
	BoltDBPath             string `json:"boltdb-path"              mapstructure:"boltdb-path"`
	RequireConfirmElevated bool   `json:"require-confirm-elevated" mapstructure:"require-confirm-elevated"`
}

// NewSchedulerOptions creates SchedulerOptions with defaults.
func NewSchedulerOptions() *SchedulerOptions {
	return &SchedulerOptions{
		MaxConcurrent:         5,
		HistoryMax:            200,
		MaxTimeoutSeconds:     3600,
		DefaultTimeoutSeconds: 300,
		SampleIntervalMs:      1000,
		GracePeriodMs:         5000,
		AgingThresholdSeconds: 120,
		StoreType:             "inmemory",
		BoltDBPath:            "data/scriptorium.db",
	}
}

// Validate checks the options.
func (o *SchedulerOptions) Validate() []error {
	var errs []error
	if o.MaxConcurrent < 1 {
		errs = append(errs, fmt.Errorf("scheduler max-concurrent must be at least 1"))
	}
	if o.MaxTimeoutSeconds < 1 {
		errs = append(errs, fmt.Errorf("scheduler max-timeout-seconds must be at least 1"))
	}
	if o.DefaultTimeoutSeconds < 1 || o.DefaultTimeoutSeconds > o.MaxTimeoutSeconds {
		errs = append(errs, fmt.Errorf("scheduler default-timeout-seconds must be in [1, %d]", o.MaxTimeoutSeconds))
	}
	if o.StoreType != "inmemory" && o.StoreType != "boltdb" {
		errs = append(errs, fmt.Errorf("invalid scheduler store-type %q, must be 'inmemory' or 'boltdb'", o.StoreType))
	}
	return errs
}

// AddFlags adds flags for the scheduler to the specified FlagSet.
func (o *SchedulerOptions) AddFlags(fs *pflag.FlagSet) {
	fs.IntVar(&o.MaxConcurrent, "scheduler.max-concurrent", o.MaxConcurrent, "Maximum number of concurrently running tasks.")
	fs.IntVar(&o.HistoryMax, "scheduler.history-max", o.HistoryMax, "Maximum number of terminal tasks kept in history.")
	fs.IntVar(&o.MaxTimeoutSeconds, "scheduler.max-timeout-seconds", o.MaxTimeoutSeconds, "Upper bound for per-task timeouts.")
	fs.IntVar(&o.DefaultTimeoutSeconds, "scheduler.default-timeout-seconds", o.DefaultTimeoutSeconds, "Timeout applied when a request omits one.")
	fs.IntVar(&o.SampleIntervalMs, "scheduler.sample-interval-ms", o.SampleIntervalMs, "Resource sampling interval in milliseconds.")
	fs.IntVar(&o.GracePeriodMs, "scheduler.grace-period-ms", o.GracePeriodMs, "Grace period between terminate and kill in milliseconds.")
	fs.IntVar(&o.AgingThresholdSeconds, "scheduler.aging-threshold-seconds", o.AgingThresholdSeconds, "Queue age after which a task's effective priority is bumped.")
	fs.StringVar(&o.StoreType, "scheduler.store-type", o.StoreType, "Task history backend: 'inmemory' or 'boltdb'.")
	fs.StringVar(&o.BoltDBPath, "scheduler.boltdb-path", o.BoltDBPath, "BoltDB file path when store-type is 'boltdb'.")
	fs.BoolVar(&o.RequireConfirmElevated, "scheduler.require-confirm-elevated", o.RequireConfirmElevated, "Require a confirm token on requests using the elevated policy.")
}
