package service

import "errors"

var (
	ErrInvalidToken   = errors.New("invalid session token")
	ErrStaleSession   = errors.New("session is no longer active")
	ErrCellOutOfRange = errors.New("cell is outside the board")
	ErrClockManaged   = errors.New("the server clock is running")
)
