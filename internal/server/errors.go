package server

import "errors"

// Server-specific errors
var (
	ErrServerClosed     = errors.New("server is closed")
	ErrHelloExpected    = errors.New("first message must be hello")
	ErrInvalidOperation = errors.New("invalid operation")
)
