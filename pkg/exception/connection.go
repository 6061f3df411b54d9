package exception

import "github.com/yanun0323/errors"

var (
	ErrConnectionClose = errors.New("connection closed")
	ErrSendFailed      = errors.New("send raw message failed")
)
