package codec

import (
	"encoding/binary"

	"volgrader/pkg/exception"
)

// Login is sent by the client to authenticate.
type Login struct {
	Username string
	PassHash string
}

// OrderBook is one recorded snapshot as sent on the wire.
// Fields follow the header order after instrument and time.
type OrderBook struct {
	Seq        uint64
	Instrument string
	Timestamp  string
	Fields     []float64
}

// Score is the final result sent on normal completion.
type Score struct {
	Sent    uint64
	Elapsed float64
	Score   float64
}

// EncodeLogin serializes a login frame.
func EncodeLogin(dst []byte, m Login) ([]byte, error) {
	dst = beginFrame(dst, MessageLogin)
	var err error
	if dst, err = appendString(dst, m.Username); err != nil {
		return nil, err
	}
	if dst, err = appendString(dst, m.PassHash); err != nil {
		return nil, err
	}
	return finishFrame(dst), nil
}

// DecodeLogin parses a login body.
func DecodeLogin(body []byte) (Login, error) {
	c := cursor{src: body}
	m := Login{Username: c.string(), PassHash: c.string()}
	return m, c.err
}

// EncodeHeader serializes the column schema frame.
func EncodeHeader(dst []byte, columns []string) ([]byte, error) {
	if len(columns) > maxUint16 {
		return nil, exception.ErrTooManyFields
	}
	dst = beginFrame(dst, MessageHeader)
	dst = binary.LittleEndian.AppendUint16(dst, uint16(len(columns)))
	var err error
	for _, col := range columns {
		if dst, err = appendString(dst, col); err != nil {
			return nil, err
		}
	}
	return finishFrame(dst), nil
}

// DecodeHeader parses a header body.
func DecodeHeader(body []byte) ([]string, error) {
	c := cursor{src: body}
	n := int(c.uint16())
	columns := make([]string, 0, n)
	for i := 0; i < n && c.err == nil; i++ {
		columns = append(columns, c.string())
	}
	return columns, c.err
}

// EncodeOrderBook serializes an order book frame.
func EncodeOrderBook(dst []byte, m OrderBook) ([]byte, error) {
	if len(m.Fields) > maxUint16 {
		return nil, exception.ErrTooManyFields
	}
	dst = beginFrame(dst, MessageOrderBook)
	dst = binary.LittleEndian.AppendUint64(dst, m.Seq)
	var err error
	if dst, err = appendString(dst, m.Instrument); err != nil {
		return nil, err
	}
	if dst, err = appendString(dst, m.Timestamp); err != nil {
		return nil, err
	}
	dst = binary.LittleEndian.AppendUint16(dst, uint16(len(m.Fields)))
	for _, f := range m.Fields {
		dst = appendFloat(dst, f)
	}
	return finishFrame(dst), nil
}

// DecodeOrderBook parses an order book body.
func DecodeOrderBook(body []byte) (OrderBook, error) {
	c := cursor{src: body}
	m := OrderBook{
		Seq:        c.uint64(),
		Instrument: c.string(),
		Timestamp:  c.string(),
	}
	n := int(c.uint16())
	if c.err == nil && len(c.src) < 8*n {
		return m, exception.ErrShortPayload
	}
	m.Fields = make([]float64, n)
	for i := range m.Fields {
		m.Fields[i] = c.float()
	}
	return m, c.err
}

// EncodePredictNow serializes the response-required prompt. It has no body.
func EncodePredictNow(dst []byte) []byte {
	return finishFrame(beginFrame(dst, MessagePredictNow))
}

// EncodePrediction serializes the client's volatility answer.
func EncodePrediction(dst []byte, volatility float64) []byte {
	dst = beginFrame(dst, MessagePrediction)
	dst = appendFloat(dst, volatility)
	return finishFrame(dst)
}

// DecodePrediction parses a prediction body.
func DecodePrediction(body []byte) (float64, error) {
	c := cursor{src: body}
	v := c.float()
	return v, c.err
}

// EncodeScore serializes the final score frame.
func EncodeScore(dst []byte, m Score) []byte {
	dst = beginFrame(dst, MessageScore)
	dst = binary.LittleEndian.AppendUint64(dst, m.Sent)
	dst = appendFloat(dst, m.Elapsed)
	dst = appendFloat(dst, m.Score)
	return finishFrame(dst)
}

// DecodeScore parses a score body.
func DecodeScore(body []byte) (Score, error) {
	c := cursor{src: body}
	m := Score{Sent: c.uint64(), Elapsed: c.float(), Score: c.float()}
	return m, c.err
}
