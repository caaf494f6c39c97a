package options

import (
	"fmt"

	"github.com/spf13/pflag"

	"github.com/kiosk404/scrivener/internal/pkg/server"
)

// ServerRunOptions contains the options while running the generic API server.
type ServerRunOptions struct {
	BindAddress     string `json:"bind-address"     mapstructure:"bind-address"`
	BindPort        int    `json:"bind-port"        mapstructure:"bind-port"`
	Mode            string `json:"mode"             mapstructure:"mode"`
	Healthz         bool   `json:"healthz"          mapstructure:"healthz"`
	EnableProfiling bool   `json:"enable-profiling" mapstructure:"enable-profiling"`
}

// NewServerRunOptions creates ServerRunOptions with defaults.
func NewServerRunOptions() *ServerRunOptions {
	return &ServerRunOptions{
		BindAddress: "0.0.0.0",
		BindPort:    8000,
		Mode:        "release",
		Healthz:     true,
	}
}

// ApplyTo applies the run options to the server config.
func (o *ServerRunOptions) ApplyTo(c *server.Config) error {
	c.BindAddress = o.BindAddress
	c.BindPort = o.BindPort
	c.Mode = o.Mode
	c.Healthz = o.Healthz
	c.EnableProfiling = o.EnableProfiling
	return nil
}

// Validate checks the options.
func (o *ServerRunOptions) Validate() []error {
	var errs []error
	if o.BindPort < 1 || o.BindPort > 65535 {
		errs = append(errs, fmt.Errorf("serving bind port %d must be between 1 and 65535", o.BindPort))
	}
	if o.Mode != "release" && o.Mode != "debug" && o.Mode != "test" {
		errs = append(errs, fmt.Errorf("invalid serving mode %q, must be 'release', 'debug' or 'test'", o.Mode))
	}
	return errs
}

// AddFlags adds flags for the generic server to the specified FlagSet.
func (o *ServerRunOptions) AddFlags(fs *pflag.FlagSet) {
	fs.StringVar(&o.BindAddress, "serving.bind-address", o.BindAddress, "The IP address on which to serve the HTTP API.")
	fs.IntVar(&o.BindPort, "serving.bind-port", o.BindPort, "The port on which to serve the HTTP API.")
	fs.StringVar(&o.Mode, "serving.mode", o.Mode, "Server mode: 'release', 'debug' or 'test'.")
	fs.BoolVar(&o.Healthz, "serving.healthz", o.Healthz, "Install the /healthz route.")
	fs.BoolVar(&o.EnableProfiling, "serving.enable-profiling", o.EnableProfiling, "Enable pprof profiling routes under /debug/pprof.")
}
