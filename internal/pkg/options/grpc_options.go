package options

import (
	"fmt"

	"github.com/spf13/pflag"
)

// GRPCOptions holds the options for the internal gRPC endpoint.
type GRPCOptions struct {
	BindAddress string `json:"bind-address" mapstructure:"bind-address"`
	BindPort    int    `json:"bind-port"    mapstructure:"bind-port"`
	MaxMsgSize  int    `json:"max-msg-size" mapstructure:"max-msg-size"`
}

// NewGRPCOptions creates GRPCOptions with defaults.
func NewGRPCOptions() *GRPCOptions {
	return &GRPCOptions{
		BindAddress: "127.0.0.1",
		BindPort:    8081,
		MaxMsgSize:  4 * 1024 * 1024,
	}
}

// Validate checks the options.
func (o *GRPCOptions) Validate() []error {
	var errs []error
	if o.BindPort < 1 || o.BindPort > 65535 {
		errs = append(errs, fmt.Errorf("grpc bind port %d must be between 1 and 65535", o.BindPort))
	}
	return errs
}

// AddFlags adds flags for the gRPC endpoint to the specified FlagSet.
func (o *GRPCOptions) AddFlags(fs *pflag.FlagSet) {
	fs.StringVar(&o.BindAddress, "grpc.bind-address", o.BindAddress, "The IP address on which to serve the gRPC endpoint.")
	fs.IntVar(&o.BindPort, "grpc.bind-port", o.BindPort, "The port on which to serve the gRPC endpoint.")
	fs.IntVar(&o.MaxMsgSize, "grpc.max-msg-size", o.MaxMsgSize, "Maximum gRPC message size in bytes.")
}
