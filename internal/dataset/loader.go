package dataset

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/yanun0323/errors"

	"volgrader/pkg/exception"
)

const Separator = ';'

// DataLoadError reports a missing, unreadable or malformed recording.
type DataLoadError struct {
	Path string
	Line int
	Err  error
}

func (e *DataLoadError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("load %s line %d: %v", e.Path, e.Line, e.Err)
	}
	return fmt.Sprintf("load %s: %v", e.Path, e.Err)
}

func (e *DataLoadError) Unwrap() error {
	return e.Err
}

// Load reads a ';' separated recording with a header row.
func Load(path string, depth int) (*Table, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, &DataLoadError{Path: path, Err: err}
	}
	defer file.Close()

	return LoadReader(file, path, depth)
}

// LoadReader parses a recording from r. name is only used in errors.
func LoadReader(r io.Reader, name string, depth int) (*Table, error) {
	if depth <= 0 {
		return nil, &DataLoadError{Path: name, Err: errors.Wrapf(exception.ErrInvalidArgument, "depth %d", depth)}
	}

	reader := csv.NewReader(r)
	reader.Comma = Separator
	reader.ReuseRecord = true

	header, err := reader.Read()
	if err != nil {
		if err == io.EOF {
			return nil, &DataLoadError{Path: name, Err: exception.ErrEmptyRecording}
		}
		return nil, &DataLoadError{Path: name, Line: 1, Err: err}
	}
	columns := make([]string, len(header))
	for i, h := range header {
		columns[i] = strings.TrimSpace(h)
	}

	layout, err := newLayout(columns, depth)
	if err != nil {
		return nil, &DataLoadError{Path: name, Line: 1, Err: err}
	}

	table := &Table{Columns: columns, Depth: depth, book: layout.book()}
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			if pe, ok := err.(*csv.ParseError); ok {
				if pe.Err == csv.ErrFieldCount {
					return nil, &DataLoadError{Path: name, Line: pe.Line, Err: errors.Wrapf(exception.ErrRaggedRow, "want %d fields", len(columns))}
				}
				return nil, &DataLoadError{Path: name, Line: pe.Line, Err: pe.Err}
			}
			return nil, &DataLoadError{Path: name, Err: err}
		}
		line, _ := reader.FieldPos(0)

		row, err := layout.parse(record, len(table.Rows))
		if err != nil {
			return nil, &DataLoadError{Path: name, Line: line, Err: err}
		}
		table.Rows = append(table.Rows, row)
	}

	return table, nil
}

type layout struct {
	depth  int
	bidP   []int
	bidV   []int
	askP   []int
	askV   []int
	hidden []int
}

func newLayout(columns []string, depth int) (*layout, error) {
	if len(columns) < 2 {
		return nil, errors.Wrap(exception.ErrMissingColumn, "instrument and time")
	}

	index := make(map[string]int, len(columns))
	for i, c := range columns {
		index[strings.ToUpper(c)] = i
	}
	lookup := func(side string, kind string, level int) (int, error) {
		name := fmt.Sprintf("%s_%s_%d", side, kind, level)
		i, ok := index[name]
		if !ok {
			return 0, errors.Wrap(exception.ErrMissingColumn, name)
		}
		return i, nil
	}

	l := &layout{
		depth: depth,
		bidP:  make([]int, depth),
		bidV:  make([]int, depth),
		askP:  make([]int, depth),
		askV:  make([]int, depth),
	}
	var err error
	for k := 0; k < depth; k++ {
		if l.bidP[k], err = lookup("BID", "P", k+1); err != nil {
			return nil, err
		}
		if l.bidV[k], err = lookup("BID", "V", k+1); err != nil {
			return nil, err
		}
		if l.askP[k], err = lookup("ASK", "P", k+1); err != nil {
			return nil, err
		}
		if l.askV[k], err = lookup("ASK", "V", k+1); err != nil {
			return nil, err
		}
	}
	used := make(map[int]bool, WireColumnCount(depth))
	used[0], used[1] = true, true
	for _, i := range l.book() {
		used[i] = true
	}
	for i := range columns {
		if !used[i] {
			l.hidden = append(l.hidden, i)
		}
	}
	return l, nil
}

func (l *layout) book() []int {
	out := make([]int, 0, 4*l.depth)
	for k := 0; k < l.depth; k++ {
		out = append(out, l.bidP[k], l.bidV[k], l.askP[k], l.askV[k])
	}
	return out
}

func (l *layout) parse(record []string, index int) (MarketRow, error) {
	row := MarketRow{
		Index:      index,
		Instrument: strings.TrimSpace(record[0]),
		Timestamp:  strings.TrimSpace(record[1]),
		Bids:       make([]Level, l.depth),
		Asks:       make([]Level, l.depth),
	}

	var err error
	for k := 0; k < l.depth; k++ {
		if row.Bids[k], err = parseLevel(record, l.bidP[k], l.bidV[k]); err != nil {
			return row, err
		}
		if row.Asks[k], err = parseLevel(record, l.askP[k], l.askV[k]); err != nil {
			return row, err
		}
	}
	if len(l.hidden) != 0 {
		row.Hidden = make([]string, len(l.hidden))
		for i, col := range l.hidden {
			row.Hidden[i] = record[col]
		}
	}
	return row, nil
}

func parseLevel(record []string, priceCol, volumeCol int) (Level, error) {
	price, err := parseNumber(record[priceCol])
	if err != nil {
		return Level{}, err
	}
	volume, err := parseNumber(record[volumeCol])
	if err != nil {
		return Level{}, err
	}
	return Level{Price: price, Volume: volume}, nil
}

// parseNumber treats an empty cell as zero; thin books leave trailing levels blank.
func parseNumber(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, errors.Wrapf(exception.ErrInvalidNumber, "%q", s)
	}
	return d, nil
}
