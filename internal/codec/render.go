package codec

import (
	"encoding/hex"
	"strconv"
	"strings"
)

// Render formats an encoded frame for session logs and diagnostics.
func Render(frame []byte) string {
	t := FrameType(frame)
	body := FrameBody(frame)

	var sb strings.Builder
	sb.WriteString(t.String())

	switch t {
	case MessageLogin:
		m, err := DecodeLogin(body)
		if err != nil {
			return renderRaw(frame)
		}
		sb.WriteString(" ")
		sb.WriteString(m.Username)
		sb.WriteString(" ")
		sb.WriteString(m.PassHash)
	case MessageHeader:
		cols, err := DecodeHeader(body)
		if err != nil {
			return renderRaw(frame)
		}
		sb.WriteString(" ")
		sb.WriteString(strings.Join(cols, ";"))
	case MessageOrderBook:
		m, err := DecodeOrderBook(body)
		if err != nil {
			return renderRaw(frame)
		}
		sb.WriteString(" #")
		sb.WriteString(strconv.FormatUint(m.Seq, 10))
		sb.WriteString(" ")
		sb.WriteString(m.Instrument)
		sb.WriteString(";")
		sb.WriteString(m.Timestamp)
		for _, f := range m.Fields {
			sb.WriteString(";")
			sb.WriteString(strconv.FormatFloat(f, 'g', -1, 64))
		}
	case MessagePredictNow:
	case MessagePrediction:
		v, err := DecodePrediction(body)
		if err != nil {
			return renderRaw(frame)
		}
		sb.WriteString(" ")
		sb.WriteString(strconv.FormatFloat(v, 'g', -1, 64))
	case MessageScore:
		m, err := DecodeScore(body)
		if err != nil {
			return renderRaw(frame)
		}
		sb.WriteString(" sent=")
		sb.WriteString(strconv.FormatUint(m.Sent, 10))
		sb.WriteString(" elapsed=")
		sb.WriteString(strconv.FormatFloat(m.Elapsed, 'f', 3, 64))
		sb.WriteString(" score=")
		sb.WriteString(strconv.FormatFloat(m.Score, 'f', 3, 64))
	default:
		return renderRaw(frame)
	}
	return sb.String()
}

func renderRaw(frame []byte) string {
	return "RAW " + hex.EncodeToString(frame)
}
