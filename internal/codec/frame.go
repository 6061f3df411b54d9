package codec

import (
	"encoding/binary"
	"io"

	"volgrader/pkg/exception"
)

// MessageType identifies a grader protocol message.
type MessageType uint8

const (
	MessageUnknown MessageType = iota
	MessageLogin
	MessageHeader
	MessageOrderBook
	MessagePredictNow
	MessagePrediction
	MessageScore
)

func (t MessageType) String() string {
	switch t {
	case MessageLogin:
		return "LOGIN"
	case MessageHeader:
		return "HEADER"
	case MessageOrderBook:
		return "ORDERBOOK"
	case MessagePredictNow:
		return "PREDICT_NOW"
	case MessagePrediction:
		return "VOLATILITY"
	case MessageScore:
		return "SCORE"
	default:
		return "UNKNOWN"
	}
}

const (
	// FrameHeaderSize is the u32 length prefix plus the type byte.
	FrameHeaderSize = 5
	// MaxFrameSize bounds the length prefix accepted by ReadFrame.
	MaxFrameSize = 1 << 20
)

// beginFrame reserves the frame header in dst and writes the message type.
func beginFrame(dst []byte, t MessageType) []byte {
	dst = dst[:0]
	dst = append(dst, 0, 0, 0, 0, byte(t))
	return dst
}

// finishFrame patches the length prefix once the body is complete.
func finishFrame(frame []byte) []byte {
	binary.LittleEndian.PutUint32(frame[0:4], uint32(len(frame)-4))
	return frame
}

// FrameType returns the type of an encoded frame.
func FrameType(frame []byte) MessageType {
	if len(frame) < FrameHeaderSize {
		return MessageUnknown
	}
	return MessageType(frame[4])
}

// FrameBody returns the body of an encoded frame.
func FrameBody(frame []byte) []byte {
	if len(frame) < FrameHeaderSize {
		return nil
	}
	return frame[FrameHeaderSize:]
}

// ReadFrame reads one frame from r into buf and returns its type and body.
// The body is only valid until the next call with the same buffer.
func ReadFrame(r io.Reader, buf []byte) (MessageType, []byte, []byte, error) {
	var prefix [4]byte
	if _, err := io.ReadFull(r, prefix[:]); err != nil {
		return MessageUnknown, nil, buf, err
	}
	n := binary.LittleEndian.Uint32(prefix[:])
	if n == 0 {
		return MessageUnknown, nil, buf, exception.ErrShortPayload
	}
	if n > MaxFrameSize {
		return MessageUnknown, nil, buf, exception.ErrFrameTooLarge
	}
	if cap(buf) < int(n) {
		buf = make([]byte, n)
	}
	buf = buf[:n]
	if _, err := io.ReadFull(r, buf); err != nil {
		if err == io.EOF {
			err = io.ErrUnexpectedEOF
		}
		return MessageUnknown, nil, buf, err
	}
	return MessageType(buf[0]), buf[1:], buf, nil
}

// WriteFull writes the whole frame.
func WriteFull(w io.Writer, frame []byte) error {
	for len(frame) > 0 {
		n, err := w.Write(frame)
		if err != nil {
			return err
		}
		frame = frame[n:]
	}
	return nil
}
