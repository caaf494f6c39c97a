package genericclioptions

import (
	"io"
)

// IOStreams provides the standard names for iostreams so commands stay
// testable.
type IOStreams struct {
	// In think, os.Stdin
	In io.Reader
	// Out think, os.Stdout
	Out io.Writer
	// ErrOut think, os.Stderr
	ErrOut io.Writer
}
