package options

import (
	"github.com/spf13/pflag"
)

// PathsOptions holds the on-disk locations the server reads and writes.
type PathsOptions struct {
	Personas string `json:"personas" mapstructure:"personas"`
	Channels string `json:"channels" mapstructure:"channels"`
	Scripts  string `json:"scripts"  mapstructure:"scripts"`
	Logs     string `json:"logs"     mapstructure:"logs"`
}

// NewPathsOptions creates PathsOptions with defaults.
func NewPathsOptions() *PathsOptions {
	return &PathsOptions{
		Personas: "personas",
		Channels: "channels",
		Scripts:  "data/scripts",
		Logs:     "data/logs",
	}
}

// Validate checks the options.
func (o *PathsOptions) Validate() []error { return nil }

// AddFlags adds flags for paths to the specified FlagSet.
func (o *PathsOptions) AddFlags(fs *pflag.FlagSet) {
	fs.StringVar(&o.Personas, "paths.personas", o.Personas, "Directory containing persona JSON files.")
	fs.StringVar(&o.Channels, "paths.channels", o.Channels, "Directory containing channel JSON overrides.")
	fs.StringVar(&o.Scripts, "paths.scripts", o.Scripts, "Directory for materialized script temp files.")
	fs.StringVar(&o.Logs, "paths.logs", o.Logs, "Directory for log files.")
}
