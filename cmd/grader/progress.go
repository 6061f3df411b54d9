package main

import (
	"fmt"
	"io"
	"strings"
	"sync"
)

const progressWidth = 100

// progressBar draws one console line per report, shared by all sessions.
type progressBar struct {
	mu  sync.Mutex
	out io.Writer
}

func newProgressBar(out io.Writer) *progressBar {
	return &progressBar{out: out}
}

func (p *progressBar) Report(sessionID string, current, total int) {
	line := renderProgress(current, total)
	if len(sessionID) > 8 {
		sessionID = sessionID[:8]
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	end := ""
	if current >= total {
		end = "\n"
	}
	fmt.Fprintf(p.out, "\r%s %s%s", sessionID, line, end)
}

func renderProgress(current, total int) string {
	if total <= 0 {
		total = 1
	}
	if current > total {
		current = total
	}
	filled := progressWidth * current / total
	percent := 100 * float64(current) / float64(total)
	return fmt.Sprintf("|%s%s| %.1f%%", strings.Repeat("█", filled), strings.Repeat("-", progressWidth-filled), percent)
}
