package exception

import "errors"

// Codec errors
var (
	ErrFrameTooLarge     = errors.New("codec: frame exceeds limit")
	ErrShortPayload      = errors.New("codec: payload too short")
	ErrUnexpectedMessage = errors.New("codec: unexpected message type")
	ErrStringTooLong     = errors.New("codec: string exceeds 65535 bytes")
	ErrTooManyFields     = errors.New("codec: field count exceeds 65535")
)
