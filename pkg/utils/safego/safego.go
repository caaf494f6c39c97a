package safego

import (
	"runtime/debug"

	"github.com/kiosk404/scrivener/pkg/logger"
)

// Go runs fn in a goroutine with panic recovery. A recovered panic is
// logged with its stack and never crosses the goroutine boundary.
func Go(fn func()) {
	go func() {
		defer func() {
			if r := recover(); r != nil {
				logger.Error("[safego] recovered panic: %v\n%s", r, debug.Stack())
			}
		}()
		fn()
	}()
}
