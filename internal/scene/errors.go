package scene

import "errors"

var (
	ErrUnknownScene  = errors.New("unknown scene")
	ErrLoginRequired = errors.New("login required")
	ErrNoIsland      = errors.New("no island to join")
)
