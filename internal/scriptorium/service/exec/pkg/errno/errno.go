package errno

import "errors"

var (
	ErrTaskNotFound     = errors.New("task not found")
	ErrAlreadyTerminal  = errors.New("task already finished")
	ErrPolicyDenied     = errors.New("script denied by policy")
	ErrConfirmRequired  = errors.New("elevated execution requires a confirm token")
	ErrInvalidRequest   = errors.New("invalid execution request")
	ErrTimeoutTooLarge  = errors.New("timeout exceeds the configured maximum")
)
