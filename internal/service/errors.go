package service

import "errors"

// ErrChannelNotFound is returned when a handle search or channel lookup yields nothing.
var ErrChannelNotFound = errors.New("channel not found")
