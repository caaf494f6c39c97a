package service

import (
	"context"
	"sync"
	"time"

	"github.com/kiosk404/scrivener/pkg/logger"
)

// AbortController manages task cancellation and timeout.
//
// It wraps context.WithCancel to provide a way to stop a running task.
// - Explicit Abort() for external cancellation
// - Timeout for automatic cancellation after a specified duration
// - Thread-safe abort state tracking
type AbortController struct {
	ctx    context.Context
	cancel context.CancelFunc
	mu     sync.Mutex
	down   bool
	taskID string
}

// NewAbortController creates a controller for one task. A timeout greater
// than zero arms automatic cancellation.
func NewAbortController(parent context.Context, taskID string, timeout time.Duration) *AbortController {
	var ctx context.Context
	var cancel context.CancelFunc
	if timeout > 0 {
		ctx, cancel = context.WithTimeout(parent, timeout)
	} else {
		ctx, cancel = context.WithCancel(parent)
	}
	return &AbortController{
		ctx:    ctx,
		cancel: cancel,
		taskID: taskID,
	}
}

// Context returns the controlled context.
// Use this context for all downstream operations.
func (ac *AbortController) Context() context.Context {
	return ac.ctx
}

// Abort cancels the task and marks it as aborted.
//
// It is safe to call Abort multiple times.
func (ac *AbortController) Abort() {
	ac.mu.Lock()
	defer ac.mu.Unlock()
	if ac.down {
		return
	}
	ac.down = true
	ac.cancel()
	logger.Info("[AbortController] Abort task %s", ac.taskID)
}

// Aborted reports whether Abort was called explicitly, as opposed to the
// timeout firing.
func (ac *AbortController) Aborted() bool {
	ac.mu.Lock()
	defer ac.mu.Unlock()
	return ac.down
}

// CleanUp releases the controller's context resources.
func (ac *AbortController) CleanUp() {
	ac.cancel()
}
