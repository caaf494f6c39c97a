package options

import (
	"github.com/spf13/pflag"
)

// AuthOptions configures bearer token authentication on the HTTP API.
type AuthOptions struct {
	Enabled bool   `json:"enabled" mapstructure:"enabled"`
	Token   string `json:"token"   mapstructure:"token"`
}

// NewAuthOptions creates AuthOptions with defaults. The token can also be
// supplied through the SCRIPTORIUM_GATEWAY_TOKEN environment variable.
func NewAuthOptions() *AuthOptions {
	return &AuthOptions{
		Enabled: true,
	}
}

// AddFlags adds flags for authentication to the specified FlagSet.
func (o *AuthOptions) AddFlags(fs *pflag.FlagSet) {
	fs.BoolVar(&o.Enabled, "auth.enabled", o.Enabled, "Enforce bearer token authentication on non-loopback requests.")
	fs.StringVar(&o.Token, "auth.token", o.Token, "Bearer token expected on API requests.")
}
