package audio

import "errors"

var ErrUninitialized = errors.New("audio is not initialized")
