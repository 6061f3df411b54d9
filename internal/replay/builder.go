package replay

import (
	"github.com/yanun0323/errors"

	"volgrader/internal/codec"
	"volgrader/internal/dataset"
)

// Encoder constructs the wire messages of a plan.
type Encoder interface {
	Header(columns []string) ([]byte, error)
	OrderBook(seq uint64, row dataset.MarketRow) ([]byte, error)
	PredictNow() []byte
}

// Config selects the response points.
type Config struct {
	Target string
	Warmup int
}

// Build converts rows into a plan: a header, one order book per row and a
// predict-now right after every target row at or past the warm-up threshold.
// columns must already exclude hidden columns.
func Build(columns []string, rows []dataset.MarketRow, cfg Config, enc Encoder) (*Plan, error) {
	header, err := enc.Header(columns)
	if err != nil {
		return nil, errors.Wrap(err, "encode header")
	}
	predict := enc.PredictNow()

	plan := &Plan{Entries: make([]Entry, 0, 2*len(rows)+1)}
	plan.Entries = append(plan.Entries, Entry{Payload: header, RowIndex: -1})

	var seq uint64
	for _, row := range rows {
		seq++
		payload, err := enc.OrderBook(seq, row)
		if err != nil {
			return nil, errors.Wrapf(err, "encode row %d", row.Index)
		}
		plan.Entries = append(plan.Entries, Entry{Payload: payload, RowIndex: row.Index})
		plan.OrderBooks++

		if row.Index >= cfg.Warmup && row.Instrument == cfg.Target {
			plan.Entries = append(plan.Entries, Entry{NeedResponse: true, Payload: predict, RowIndex: row.Index})
			plan.Responses++
		}
	}
	return plan, nil
}

// CodecEncoder builds plan messages with the grader wire codec.
type CodecEncoder struct{}

func (CodecEncoder) Header(columns []string) ([]byte, error) {
	return codec.EncodeHeader(nil, columns)
}

func (CodecEncoder) OrderBook(seq uint64, row dataset.MarketRow) ([]byte, error) {
	decimals := row.Fields()
	fields := make([]float64, len(decimals))
	for i, d := range decimals {
		fields[i] = d.InexactFloat64()
	}
	return codec.EncodeOrderBook(nil, codec.OrderBook{
		Seq:        seq,
		Instrument: row.Instrument,
		Timestamp:  row.Timestamp,
		Fields:     fields,
	})
}

func (CodecEncoder) PredictNow() []byte {
	return codec.EncodePredictNow(nil)
}
