package options

import (
	genericoptions "github.com/kiosk404/scrivener/internal/pkg/options"
	"github.com/kiosk404/scrivener/internal/scriptorium/handler/middleware"
	"github.com/kiosk404/scrivener/pkg/utils/cliflag"
	"github.com/kiosk404/scrivener/pkg/utils/json"
)

// Options is the full flag/config surface of the scriptorium server.
type Options struct {
	GenericServerRunOptions *genericoptions.ServerRunOptions `json:"serving"   mapstructure:"serving"`
	GRPCOptions             *genericoptions.GRPCOptions      `json:"grpc"      mapstructure:"grpc"`
	LLMOptions              *genericoptions.LLMOptions       `json:"llm"       mapstructure:"llm"`
	SchedulerOptions        *genericoptions.SchedulerOptions `json:"scheduler" mapstructure:"scheduler"`
	MemoryOptions           *genericoptions.MemoryOptions    `json:"memory"    mapstructure:"memory"`
	PathsOptions            *genericoptions.PathsOptions     `json:"paths"     mapstructure:"paths"`
	AuthOptions             *AuthOptions                     `json:"auth"      mapstructure:"auth"`
	WatchPersonas           bool                             `json:"watch-personas" mapstructure:"watch-personas"`
}

// NewOptions returns Options with every section at its defaults.
func NewOptions() *Options {
	return &Options{
		GenericServerRunOptions: genericoptions.NewServerRunOptions(),
		GRPCOptions:             genericoptions.NewGRPCOptions(),
		LLMOptions:              genericoptions.NewLLMOptions(),
		SchedulerOptions:        genericoptions.NewSchedulerOptions(),
		MemoryOptions:           genericoptions.NewMemoryOptions(),
		PathsOptions:            genericoptions.NewPathsOptions(),
		AuthOptions:             NewAuthOptions(),
		WatchPersonas:           true,
	}
}

// Flags returns the named flag sets grouped by section.
func (o *Options) Flags() (fss cliflag.NamedFlagSets) {
	o.GenericServerRunOptions.AddFlags(fss.FlagSet("serving"))
	o.GRPCOptions.AddFlags(fss.FlagSet("grpc"))
	o.LLMOptions.AddFlags(fss.FlagSet("llm"))
	o.SchedulerOptions.AddFlags(fss.FlagSet("scheduler"))
	o.MemoryOptions.AddFlags(fss.FlagSet("memory"))
	o.PathsOptions.AddFlags(fss.FlagSet("paths"))
	o.AuthOptions.AddFlags(fss.FlagSet("auth"))

	fs := fss.FlagSet("misc")
	fs.BoolVar(&o.WatchPersonas, "watch-personas", o.WatchPersonas, "Hot-reload the personas directory on change.")
	return fss
}

// Validate checks every section.
func (o *Options) Validate() []error {
	var errs []error
	errs = append(errs, o.GenericServerRunOptions.Validate()...)
	errs = append(errs, o.GRPCOptions.Validate()...)
	errs = append(errs, o.LLMOptions.Validate()...)
	errs = append(errs, o.SchedulerOptions.Validate()...)
	errs = append(errs, o.MemoryOptions.Validate()...)
	errs = append(errs, o.PathsOptions.Validate()...)
	return errs
}

// Complete set default Options.
func (o *Options) Complete() error {
	return nil
}

func (o *Options) String() string {
	data, _ := json.Marshal(o)

	return string(data)
}

// AuthConfig resolves the middleware auth settings.
func (o *Options) AuthConfig() *middleware.AuthConfig {
	return &middleware.AuthConfig{
		Enabled: o.AuthOptions.Enabled,
		Token:   o.AuthOptions.Token,
	}
}
