package server

import (
	"errors"
	"io"
	"net"

	yerrors "github.com/yanun0323/errors"

	"volgrader/internal/codec"
	"volgrader/pkg/exception"
)

// readLoop decodes inbound frames until the connection fails.
// The returned error is always non-nil and becomes the session's cancel cause.
func readLoop(r io.Reader, h Handler) error {
	var buf []byte
	for {
		typ, body, next, err := codec.ReadFrame(r, buf)
		buf = next
		if err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, net.ErrClosed) {
				return exception.ErrConnectionClose
			}
			return yerrors.Wrap(err, "read frame")
		}

		switch typ {
		case codec.MessageLogin:
			login, err := codec.DecodeLogin(body)
			if err != nil {
				return yerrors.Wrap(err, "decode login")
			}
			h.OnLogin(login.Username, login.PassHash)
		case codec.MessagePrediction:
			value, err := codec.DecodePrediction(body)
			if err != nil {
				return yerrors.Wrap(err, "decode prediction")
			}
			h.OnPrediction(value)
		default:
			return yerrors.Wrap(exception.ErrUnexpectedMessage, typ.String())
		}
	}
}
