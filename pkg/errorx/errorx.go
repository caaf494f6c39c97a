package errorx

import (
	"fmt"
	"net/http"
	"sync"
)

// Coder describes a registered error code. Handler packages register their
// coders in init(); WriteResponse resolves a wrapped error back to its coder
// to pick the HTTP status and the public API code string.
type Coder interface {
	// Code returns the internal numeric code (1XXYYZ scheme).
	Code() int
	// APICode returns the public string code exposed in the error envelope.
	APICode() string
	// HTTPStatus returns the HTTP status this code maps to.
	HTTPStatus() int
	// String returns the user-safe message for this code.
	String() string
}

var (
	codesMu sync.RWMutex
	codes   = map[int]Coder{}
)

// unknownCoder is returned for unregistered codes.
type unknownCoder struct{}

func (unknownCoder) Code() int       { return 1 }
func (unknownCoder) APICode() string { return "INTERNAL" }
func (unknownCoder) HTTPStatus() int { return http.StatusInternalServerError }
func (unknownCoder) String() string  { return "An internal server error occurred" }

// MustRegister registers a coder, panicking on duplicates. Intended for
// init() blocks so collisions surface at startup.
func MustRegister(coder Coder) {
	if coder.Code() == 1 {
		panic("code '1' is reserved as the unknown error code")
	}
	codesMu.Lock()
	defer codesMu.Unlock()
	if _, ok := codes[coder.Code()]; ok {
		panic(fmt.Sprintf("code %d already registered", coder.Code()))
	}
	codes[coder.Code()] = coder
}

// withCode carries a registered code plus contextual detail.
type withCode struct {
	code  int
	msg   string
	cause error
}

func (w *withCode) Error() string {
	if w.cause != nil {
		return fmt.Sprintf("%s: %v", w.msg, w.cause)
	}
	return w.msg
}

func (w *withCode) Unwrap() error { return w.cause }

// WithCode creates an error bound to a registered code.
func WithCode(code int, format string, args ...interface{}) error {
	return &withCode{code: code, msg: fmt.Sprintf(format, args...)}
}

// WrapC wraps err with a registered code and contextual message. A nil err
// yields a code-only error so handlers can use one call shape throughout.
func WrapC(err error, code int, format string, args ...interface{}) error {
	return &withCode{code: code, msg: fmt.Sprintf(format, args...), cause: err}
}

// ParseCoder resolves an error to its registered Coder. Errors that never
// went through WithCode/WrapC resolve to the unknown coder.
func ParseCoder(err error) Coder {
	if w, ok := err.(*withCode); ok { //nolint:errorlint // withCode is always outermost
		codesMu.RLock()
		defer codesMu.RUnlock()
		if coder, ok := codes[w.code]; ok {
			return coder
		}
	}
	return unknownCoder{}
}

// IsCode reports whether err carries the given registered code.
func IsCode(err error, code int) bool {
	w, ok := err.(*withCode) //nolint:errorlint
	return ok && w.code == code
}
