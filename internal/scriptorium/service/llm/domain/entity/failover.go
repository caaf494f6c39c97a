package entity

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
)

// FailureKind classifies a provider failure for fallback decisions.
type FailureKind string

const (
	FailureUnavailable FailureKind = "unavailable"
	FailureTimeout     FailureKind = "timeout"
	FailureRateLimited FailureKind = "rateLimited"
	FailureBadRequest  FailureKind = "badRequest"
	FailureProtocol    FailureKind = "protocol"
)

// GenerationError is a classified provider failure.
type GenerationError struct {
	Kind     FailureKind
	Provider string
	Message  string
	cause    error
}

func (e *GenerationError) Error() string {
	if e.Provider != "" {
		return fmt.Sprintf("provider %s: %s: %s", e.Provider, e.Kind, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *GenerationError) Unwrap() error { return e.cause }

// NewGenerationError builds a classified failure.
func NewGenerationError(kind FailureKind, provider, message string, cause error) *GenerationError {
	return &GenerationError{Kind: kind, Provider: provider, Message: message, cause: cause}
}

// AsGenerationError unwraps err into a GenerationError if it is one.
func AsGenerationError(err error) (*GenerationError, bool) {
	var ge *GenerationError
	if errors.As(err, &ge) {
		return ge, true
	}
	return nil, false
}

// Retriable reports whether another provider may succeed where this one failed.
// Bad requests will fail everywhere so there is no point cascading them.
func (e *GenerationError) Retriable() bool {
	return e.Kind != FailureBadRequest
}

// ClassifyHTTPStatus maps a non-2xx provider status to a failure kind.
func ClassifyHTTPStatus(status int) FailureKind {
	switch {
	case status == http.StatusTooManyRequests:
		return FailureRateLimited
	case status == http.StatusRequestTimeout || status == http.StatusGatewayTimeout:
		return FailureTimeout
	case status >= 500:
		return FailureUnavailable
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return FailureUnavailable
	case status >= 400:
		return FailureBadRequest
	default:
		return FailureProtocol
	}
}

// ClassifyTransportError maps a transport-level error to a failure kind.
// Checks run from the most specific signal to the weakest, message sniffing
// being last.
func ClassifyTransportError(err error) FailureKind {
	if err == nil {
		return FailureProtocol
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return FailureTimeout
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return FailureTimeout
	}
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "connection refused"),
		strings.Contains(msg, "no such host"),
		strings.Contains(msg, "connection reset"):
		return FailureUnavailable
	case strings.Contains(msg, "timeout"), strings.Contains(msg, "deadline"):
		return FailureTimeout
	case strings.Contains(msg, "rate limit"), strings.Contains(msg, "too many requests"):
		return FailureRateLimited
	default:
		return FailureUnavailable
	}
}
