package dataset

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"volgrader/pkg/exception"
)

const depthOneHeader = "INSTRUMENT;TIME;BID_P_1;BID_V_1;ASK_P_1;ASK_V_1"

func TestLoadReaderPreservesOrder(t *testing.T) {
	data := strings.Join([]string{
		depthOneHeader + ";Y",
		"TEA;09:00:00.000;100.5;10;101.5;12;0.25",
		"COFFEE;09:00:00.100;50;1;51;2;",
		"TEA;09:00:00.200;101;3;102;4;0.5",
	}, "\n")

	table, err := LoadReader(strings.NewReader(data), "mem", 1)
	require.NoError(t, err)
	require.Len(t, table.Rows, 3)

	assert.Equal(t, []string{"INSTRUMENT", "TIME", "BID_P_1", "BID_V_1", "ASK_P_1", "ASK_V_1"}, table.WireColumns())
	for i, want := range []string{"TEA", "COFFEE", "TEA"} {
		assert.Equal(t, i, table.Rows[i].Index)
		assert.Equal(t, want, table.Rows[i].Instrument)
	}

	first := table.Rows[0]
	assert.Equal(t, "09:00:00.000", first.Timestamp)
	assert.True(t, first.BestBid().Equal(mustDecimal(t, "100.5")))
	assert.True(t, first.BestAsk().Equal(mustDecimal(t, "101.5")))
	assert.True(t, first.MidPrice().Equal(mustDecimal(t, "101")))
	assert.Equal(t, []string{"0.25"}, first.Hidden)
}

func TestLoadReaderColumnOrderInsideBook(t *testing.T) {
	data := "SYM;TS;ASK_P_1;ASK_V_1;BID_P_1;BID_V_1\nTEA;1;11;1;9;2\n"

	table, err := LoadReader(strings.NewReader(data), "mem", 1)
	require.NoError(t, err)
	require.Len(t, table.Rows, 1)
	assert.True(t, table.Rows[0].BestBid().Equal(mustDecimal(t, "9")))
	assert.True(t, table.Rows[0].BestAsk().Equal(mustDecimal(t, "11")))
	assert.Empty(t, table.Rows[0].Hidden)
	assert.Equal(t, []string{"SYM", "TS", "BID_P_1", "BID_V_1", "ASK_P_1", "ASK_V_1"}, table.WireColumns())

	fields := table.Rows[0].Fields()
	require.Len(t, fields, 4)
	assert.Equal(t, "9", fields[0].String())
	assert.Equal(t, "2", fields[1].String())
	assert.Equal(t, "11", fields[2].String())
	assert.Equal(t, "1", fields[3].String())
}

func TestLoadReaderEmptyLevelIsZero(t *testing.T) {
	data := "I;T;BID_P_1;BID_V_1;ASK_P_1;ASK_V_1;BID_P_2;BID_V_2;ASK_P_2;ASK_V_2\nTEA;1;9;1;11;1;;;;\n"

	table, err := LoadReader(strings.NewReader(data), "mem", 2)
	require.NoError(t, err)
	assert.True(t, table.Rows[0].Bids[1].Price.IsZero())
	assert.True(t, table.Rows[0].Asks[1].Volume.IsZero())
}

func TestLoadReaderErrors(t *testing.T) {
	cases := []struct {
		name string
		data string
		line int
		want error
	}{
		{name: "empty", data: "", want: exception.ErrEmptyRecording},
		{name: "missing column", data: "I;T;BID_P_1;BID_V_1;ASK_P_1\n", line: 1, want: exception.ErrMissingColumn},
		{name: "ragged", data: depthOneHeader + "\nTEA;1;9;1;11\n", line: 2, want: exception.ErrRaggedRow},
		{name: "bad number", data: depthOneHeader + "\nTEA;1;9;1;abc;1\n", line: 2, want: exception.ErrInvalidNumber},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := LoadReader(strings.NewReader(tc.data), "mem", 1)
			require.Error(t, err)

			var loadErr *DataLoadError
			require.ErrorAs(t, err, &loadErr)
			assert.Equal(t, "mem", loadErr.Path)
			assert.Equal(t, tc.line, loadErr.Line)
			assert.ErrorIs(t, err, tc.want)
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.csv"), 1)

	var loadErr *DataLoadError
	require.ErrorAs(t, err, &loadErr)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "training.csv")
	require.NoError(t, os.WriteFile(path, []byte(depthOneHeader+"\nTEA;1;9;1;11;1\n"), 0o600))

	table, err := Load(path, 1)
	require.NoError(t, err)
	assert.Len(t, table.Rows, 1)
	assert.Equal(t, 1, table.Depth)
}
