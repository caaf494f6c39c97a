package errno

import "errors"

var (
	ErrPersonaNotFound = errors.New("persona not found")
	ErrPersonaExists   = errors.New("persona already exists")
	ErrPersonaInvalid  = errors.New("persona validation failed")
)
