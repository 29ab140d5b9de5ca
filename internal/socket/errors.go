package socket

import "errors"

var (
	ErrNotConnected = errors.New("socket not connected")
	ErrNoTransport  = errors.New("no transport configured")
)
