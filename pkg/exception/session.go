package exception

import "errors"

// Session errors
var (
	ErrResponseTimeout = errors.New("session: response timeout")
	ErrLoginTimeout    = errors.New("session: login timeout")
)
