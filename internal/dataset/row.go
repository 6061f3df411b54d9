package dataset

import "github.com/shopspring/decimal"

// Level is one price level of an order book side.
type Level struct {
	Price  decimal.Decimal
	Volume decimal.Decimal
}

// MarketRow is a timestamped order book snapshot of one instrument.
// Hidden holds trailing columns (such as the ground truth) that must never reach the wire.
type MarketRow struct {
	Index      int
	Instrument string
	Timestamp  string
	Bids       []Level
	Asks       []Level
	Hidden     []string
}

// BestBid returns the top bid price, zero when the side is empty.
func (r MarketRow) BestBid() decimal.Decimal {
	if len(r.Bids) == 0 {
		return decimal.Zero
	}
	return r.Bids[0].Price
}

// BestAsk returns the top ask price, zero when the side is empty.
func (r MarketRow) BestAsk() decimal.Decimal {
	if len(r.Asks) == 0 {
		return decimal.Zero
	}
	return r.Asks[0].Price
}

// MidPrice returns (best bid + best ask) / 2.
func (r MarketRow) MidPrice() decimal.Decimal {
	return r.BestBid().Add(r.BestAsk()).Div(two)
}

var two = decimal.NewFromInt(2)

// Table is a loaded recording.
type Table struct {
	Columns []string
	Depth   int
	Rows    []MarketRow

	book []int
}

// WireColumns returns instrument, time and the book columns in the order
// BID_P_k, BID_V_k, ASK_P_k, ASK_V_k for k = 1..Depth. Hidden columns are never included.
func (t *Table) WireColumns() []string {
	cols := make([]string, 0, WireColumnCount(t.Depth))
	cols = append(cols, t.Columns[0], t.Columns[1])
	for _, i := range t.book {
		cols = append(cols, t.Columns[i])
	}
	return cols
}

// Fields flattens the book of r in WireColumns order.
func (r MarketRow) Fields() []decimal.Decimal {
	out := make([]decimal.Decimal, 0, 4*len(r.Bids))
	for k := range r.Bids {
		out = append(out, r.Bids[k].Price, r.Bids[k].Volume, r.Asks[k].Price, r.Asks[k].Volume)
	}
	return out
}

// WireColumnCount is instrument + time + (price, volume) * (bid, ask) * depth.
func WireColumnCount(depth int) int {
	return 2 + 4*depth
}
