// Package journal keeps the per-session audit trail of sent, received and
// diagnostic events and writes it to a plain-text file when the session ends.
package journal

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/yanun0323/errors"
)

// Direction tags a journal entry.
type Direction uint8

const (
	Info Direction = iota
	Sent
	Received
)

// Tag returns the column written between the timestamp and the payload.
func (d Direction) Tag() string {
	switch d {
	case Sent:
		return " [SENT] "
	case Received:
		return " [RECV] "
	default:
		return "        "
	}
}

// Entry is one journal line. Payload holds an encoded frame, Text a plain message.
type Entry struct {
	Time      time.Time
	Direction Direction
	Payload   []byte
	Text      string
}

// Renderer turns an encoded frame into readable text.
type Renderer func([]byte) string

const (
	UnknownUser = "unknown"

	lineTimeLayout = "2006.01.02 15:04:05.000"
	fileTimeLayout = "20060102-150405"
)

// Log is an append-only, ordered list of entries safe for concurrent appends.
type Log struct {
	mu      sync.Mutex
	entries []Entry
	now     func() time.Time
}

// New creates an empty log. now defaults to time.Now.
func New(now func() time.Time) *Log {
	if now == nil {
		now = time.Now
	}
	return &Log{now: now}
}

// Info records a diagnostic message.
func (l *Log) Info(text string) {
	l.append(Entry{Direction: Info, Text: text})
}

// Sent records an outbound frame. The frame must not be modified afterwards.
func (l *Log) Sent(frame []byte) {
	l.append(Entry{Direction: Sent, Payload: frame})
}

// Received records an inbound event already rendered as text.
func (l *Log) Received(text string) {
	l.append(Entry{Direction: Received, Text: text})
}

func (l *Log) append(e Entry) {
	e.Time = l.now()
	l.mu.Lock()
	l.entries = append(l.entries, e)
	l.mu.Unlock()
}

// Len returns the number of entries.
func (l *Log) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}

// Entries returns a copy of the entries in insertion order.
func (l *Log) Entries() []Entry {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]Entry, len(l.entries))
	copy(out, l.entries)
	return out
}

// Lines renders every entry the way WriteTo writes them, without newlines.
func (l *Log) Lines(render Renderer) []string {
	entries := l.Entries()
	lines := make([]string, len(entries))
	for i, e := range entries {
		lines[i] = FormatEntry(e, render)
	}
	return lines
}

// WriteTo writes one line per entry.
func (l *Log) WriteTo(w io.Writer, render Renderer) error {
	bw := bufio.NewWriter(w)
	for _, e := range l.Entries() {
		if _, err := bw.WriteString(FormatEntry(e, render)); err != nil {
			return err
		}
		if err := bw.WriteByte('\n'); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// FormatEntry renders e as "<time> <tag><payload>".
func FormatEntry(e Entry, render Renderer) string {
	var sb strings.Builder
	sb.WriteString(e.Time.Format(lineTimeLayout))
	sb.WriteString(e.Direction.Tag())
	if e.Payload != nil && render != nil {
		sb.WriteString(render(e.Payload))
	} else {
		sb.WriteString(e.Text)
	}
	return sb.String()
}

// FileName is derived from the session start and the user name.
func FileName(start time.Time, username string) string {
	if username == "" {
		username = UnknownUser
	}
	return fmt.Sprintf("%s-%03d-%s.log", start.Format(fileTimeLayout), start.Nanosecond()/int(time.Millisecond), sanitize(username))
}

// Persist writes the log into dir and returns the file path.
// An empty dir disables persistence and returns an empty path.
func (l *Log) Persist(dir string, start time.Time, username string, render Renderer) (string, error) {
	if dir == "" {
		return "", nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", errors.Wrap(err, "create log dir")
	}
	path := filepath.Join(dir, FileName(start, username))
	file, err := os.Create(path)
	if err != nil {
		return "", errors.Wrap(err, "create log file")
	}
	if err := l.WriteTo(file, render); err != nil {
		_ = file.Close()
		return "", errors.Wrap(err, "write log file")
	}
	if err := file.Close(); err != nil {
		return "", errors.Wrap(err, "close log file")
	}
	return path, nil
}

func sanitize(s string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', 0:
			return '_'
		}
		return r
	}, s)
}
