package shutdown

import "sync"

// ShutdownManager detects a shutdown request (e.g. a posix signal) and
// reports it to the GracefulShutdown it was registered with.
type ShutdownManager interface {
	GetName() string
	Start(gs GSInterface) error
	ShutdownStart() error
	ShutdownFinish() error
}

// ShutdownCallback is invoked when shutdown starts.
type ShutdownCallback interface {
	OnShutdown(managerName string) error
}

// Func adapts a plain function to ShutdownCallback.
type Func func(managerName string) error

// OnShutdown implements ShutdownCallback.
func (f Func) OnShutdown(managerName string) error { return f(managerName) }

// ErrorHandler receives errors raised during shutdown processing.
type ErrorHandler interface {
	OnError(err error)
}

// GSInterface is the surface a ShutdownManager uses to drive shutdown.
type GSInterface interface {
	StartShutdown(sm ShutdownManager)
	ReportError(err error)
	AddShutdownCallback(cb ShutdownCallback)
}

// GracefulShutdown coordinates shutdown managers and callbacks.
type GracefulShutdown struct {
	callbacks    []ShutdownCallback
	managers     []ShutdownManager
	errorHandler ErrorHandler
}

// New returns an empty GracefulShutdown.
func New() *GracefulShutdown {
	return &GracefulShutdown{}
}

// Start starts all registered shutdown managers.
func (gs *GracefulShutdown) Start() error {
	for _, manager := range gs.managers {
		if err := manager.Start(gs); err != nil {
			return err
		}
	}
	return nil
}

// AddShutdownManager registers a manager.
func (gs *GracefulShutdown) AddShutdownManager(manager ShutdownManager) {
	gs.managers = append(gs.managers, manager)
}

// AddShutdownCallback registers a callback run at shutdown.
func (gs *GracefulShutdown) AddShutdownCallback(cb ShutdownCallback) {
	gs.callbacks = append(gs.callbacks, cb)
}

// SetErrorHandler installs the error handler.
func (gs *GracefulShutdown) SetErrorHandler(h ErrorHandler) {
	gs.errorHandler = h
}

// StartShutdown runs the full shutdown sequence for the triggering manager.
func (gs *GracefulShutdown) StartShutdown(sm ShutdownManager) {
	gs.ReportError(sm.ShutdownStart())

	var wg sync.WaitGroup
	for _, cb := range gs.callbacks {
		wg.Add(1)
		go func(cb ShutdownCallback) {
			defer wg.Done()
			gs.ReportError(cb.OnShutdown(sm.GetName()))
		}(cb)
	}
	wg.Wait()

	gs.ReportError(sm.ShutdownFinish())
}

// ReportError forwards a non-nil error to the error handler.
func (gs *GracefulShutdown) ReportError(err error) {
	if err != nil && gs.errorHandler != nil {
		gs.errorHandler.OnError(err)
	}
}
