package session

import (
	"time"

	"volgrader/internal/codec"
)

const (
	DefaultResponseTimeout  = 10 * time.Second
	DefaultProgressInterval = 20000
)

// Config holds the per-session settings shared by every connection.
type Config struct {
	ResponseTimeout  time.Duration
	LoginTimeout     time.Duration
	LogDir           string
	ProgressInterval int
}

func (c Config) withDefaults() Config {
	if c.ResponseTimeout == 0 {
		c.ResponseTimeout = DefaultResponseTimeout
	}
	if c.LoginTimeout == 0 {
		c.LoginTimeout = c.ResponseTimeout
	}
	if c.ProgressInterval == 0 {
		c.ProgressInterval = DefaultProgressInterval
	}
	return c
}

// Codec is the part of the wire codec a session needs besides the plan payloads.
type Codec interface {
	Score(sent uint64, elapsed, score float64) []byte
	Render(frame []byte) string
}

// WireCodec implements Codec with the grader wire format.
type WireCodec struct{}

func (WireCodec) Score(sent uint64, elapsed, score float64) []byte {
	return codec.EncodeScore(nil, codec.Score{Sent: sent, Elapsed: elapsed, Score: score})
}

func (WireCodec) Render(frame []byte) string {
	return codec.Render(frame)
}
