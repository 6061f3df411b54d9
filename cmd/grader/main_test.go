package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunReturnsPrepareError(t *testing.T) {
	err := run([]string{"-no-progress", filepath.Join(t.TempDir(), "missing.csv")})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "prepare replay failed")
}

func TestRunReturnsErrorForUnknownInstrument(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rec.csv")
	require.NoError(t, os.WriteFile(path, []byte("INSTRUMENT;TIME;BID_P_1;BID_V_1;ASK_P_1;ASK_V_1\nTEA;t0;1;1;2;1\n"), 0o644))

	err := run([]string{"-depth", "1", "-warmup", "0", "-instrument", "COFFEE", path})
	require.Error(t, err)
}

func TestRunHelp(t *testing.T) {
	assert.NoError(t, run([]string{"-h"}))
}
