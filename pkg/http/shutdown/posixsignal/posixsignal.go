package posixsignal

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/kiosk404/scrivener/pkg/http/shutdown"
)

// Name of this shutdown manager.
const Name = "PosixSignalManager"

// PosixSignalManager triggers shutdown on posix signals. With no arguments
// it listens for SIGINT and SIGTERM.
type PosixSignalManager struct {
	signals []os.Signal
}

// NewPosixSignalManager creates a manager for the given signals.
func NewPosixSignalManager(sig ...os.Signal) *PosixSignalManager {
	if len(sig) == 0 {
		sig = []os.Signal{os.Interrupt, syscall.SIGTERM}
	}
	return &PosixSignalManager{signals: sig}
}

// GetName returns the manager name.
func (p *PosixSignalManager) GetName() string { return Name }

// Start waits for one of the configured signals in the background, then
// drives the shutdown sequence and exits.
func (p *PosixSignalManager) Start(gs shutdown.GSInterface) error {
	go func() {
		c := make(chan os.Signal, 1)
		signal.Notify(c, p.signals...)
		<-c

		gs.StartShutdown(p)
		os.Exit(0)
	}()

	return nil
}

// ShutdownStart implements ShutdownManager.
func (p *PosixSignalManager) ShutdownStart() error { return nil }

// ShutdownFinish implements ShutdownManager.
func (p *PosixSignalManager) ShutdownFinish() error { return nil }
