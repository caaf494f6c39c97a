package errno

import "errors"

var (
	ErrChannelNotFound = errors.New("channel not found")
)
