package domain

import "errors"

var (
	ErrContentNotFound = errors.New("content item not found")
	ErrInvalidContent  = errors.New("invalid content item")
	ErrDeviceNotFound  = errors.New("device not found")
	ErrNoActiveSession = errors.New("no active session")
	ErrSessionEnded    = errors.New("session already ended")
)
