package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRenderProgress(t *testing.T) {
	line := renderProgress(1, 4)
	assert.True(t, strings.HasPrefix(line, "|"+strings.Repeat("█", 25)+strings.Repeat("-", 75)+"|"))
	assert.True(t, strings.HasSuffix(line, " 25.0%"))

	assert.True(t, strings.HasSuffix(renderProgress(5, 4), " 100.0%"))
	assert.True(t, strings.HasSuffix(renderProgress(0, 0), " 0.0%"))
}

func TestProgressBarEndsLineOnCompletion(t *testing.T) {
	var out bytes.Buffer
	bar := newProgressBar(&out)
	bar.Report("0123456789abcdef", 1, 2)
	bar.Report("0123456789abcdef", 2, 2)

	assert.Contains(t, out.String(), "\r01234567 |")
	assert.True(t, strings.HasSuffix(out.String(), "100.0%\n"))
	assert.Equal(t, 1, strings.Count(out.String(), "\n"))
}
