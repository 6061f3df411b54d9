package codec

import (
	"encoding/binary"
	"math"

	"volgrader/pkg/exception"
)

const maxUint16 = int(^uint16(0))

func appendString(dst []byte, s string) ([]byte, error) {
	if len(s) > maxUint16 {
		return dst, exception.ErrStringTooLong
	}
	dst = binary.LittleEndian.AppendUint16(dst, uint16(len(s)))
	return append(dst, s...), nil
}

func appendFloat(dst []byte, v float64) []byte {
	return binary.LittleEndian.AppendUint64(dst, math.Float64bits(v))
}

// cursor reads primitives from a frame body and remembers the first failure.
type cursor struct {
	src []byte
	err error
}

func (c *cursor) take(n int) []byte {
	if c.err != nil {
		return nil
	}
	if len(c.src) < n {
		c.err = exception.ErrShortPayload
		return nil
	}
	b := c.src[:n]
	c.src = c.src[n:]
	return b
}

func (c *cursor) uint16() uint16 {
	b := c.take(2)
	if b == nil {
		return 0
	}
	return binary.LittleEndian.Uint16(b)
}

func (c *cursor) uint64() uint64 {
	b := c.take(8)
	if b == nil {
		return 0
	}
	return binary.LittleEndian.Uint64(b)
}

func (c *cursor) float() float64 {
	return math.Float64frombits(c.uint64())
}

func (c *cursor) string() string {
	n := c.uint16()
	b := c.take(int(n))
	if b == nil {
		return ""
	}
	return string(b)
}
