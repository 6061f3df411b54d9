package replay

import (
	"fmt"
	"math/rand"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"volgrader/internal/answer"
	"volgrader/internal/codec"
	"volgrader/internal/dataset"
	"volgrader/pkg/exception"
)

func row(index int, instrument string, mid float64) dataset.MarketRow {
	return dataset.MarketRow{
		Index:      index,
		Instrument: instrument,
		Timestamp:  fmt.Sprintf("t%d", index),
		Bids:       []dataset.Level{{Price: decimal.NewFromFloat(mid - 0.5), Volume: decimal.NewFromInt(1)}},
		Asks:       []dataset.Level{{Price: decimal.NewFromFloat(mid + 0.5), Volume: decimal.NewFromInt(2)}},
	}
}

var columns = []string{"I", "T", "BID_P_1", "BID_V_1", "ASK_P_1", "ASK_V_1"}

func TestBuildTeaScenario(t *testing.T) {
	rows := []dataset.MarketRow{row(0, "TEA", 100), row(1, "TEA", 101), row(2, "TEA", 103), row(3, "TEA", 100)}

	res, err := answer.Extract(rows, "TEA", 0, 2)
	require.NoError(t, err)
	plan, err := Build(columns, res.Rows, Config{Target: "TEA", Warmup: 0}, CodecEncoder{})
	require.NoError(t, err)

	kinds := make([]codec.MessageType, plan.Len())
	for i, e := range plan.Entries {
		kinds[i] = codec.FrameType(e.Payload)
		assert.Equal(t, kinds[i] == codec.MessagePredictNow, e.NeedResponse)
	}
	assert.Equal(t, []codec.MessageType{
		codec.MessageHeader,
		codec.MessageOrderBook, codec.MessagePredictNow,
		codec.MessageOrderBook, codec.MessagePredictNow,
		codec.MessageOrderBook, codec.MessagePredictNow,
	}, kinds)
	assert.Equal(t, 3, plan.OrderBooks)
	assert.Equal(t, len(res.GroundTruth), plan.Responses)
	require.NoError(t, plan.Verify(res.GroundTruth))

	book, err := codec.DecodeOrderBook(codec.FrameBody(plan.Entries[3].Payload))
	require.NoError(t, err)
	assert.Equal(t, uint64(2), book.Seq)
	assert.Equal(t, "t1", book.Timestamp)
	assert.Equal(t, []float64{100.5, 1, 101.5, 2}, book.Fields)
}

func TestBuildSkipsWarmupAndOtherInstruments(t *testing.T) {
	rows := []dataset.MarketRow{row(0, "TEA", 1), row(1, "COFFEE", 1), row(2, "TEA", 1), row(3, "COFFEE", 1)}

	plan, err := Build(columns, rows, Config{Target: "TEA", Warmup: 1}, CodecEncoder{})
	require.NoError(t, err)

	assert.Equal(t, 4, plan.OrderBooks)
	assert.Equal(t, 1, plan.Responses)
	assert.True(t, plan.Entries[4].NeedResponse)
	assert.Equal(t, 2, plan.Entries[4].RowIndex)
}

func TestPlanInvariantOnRandomRecordings(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	instruments := []string{"TEA", "COFFEE", "SUGAR"}

	for iter := 0; iter < 200; iter++ {
		n := 1 + rng.Intn(120)
		rows := make([]dataset.MarketRow, n)
		for i := range rows {
			rows[i] = row(i, instruments[rng.Intn(len(instruments))], 100+rng.Float64()*5)
		}
		warmup := rng.Intn(n)
		horizon := 2 + rng.Intn(10)

		res, err := answer.Extract(rows, "TEA", warmup, horizon)
		if err != nil {
			require.ErrorIs(t, err, exception.ErrInstrumentNotFound)
			continue
		}
		plan, err := Build(columns, res.Rows, Config{Target: "TEA", Warmup: warmup}, CodecEncoder{})
		require.NoError(t, err)
		require.Equal(t, len(res.GroundTruth), plan.Responses, "iter %d", iter)
		require.NoError(t, plan.Verify(res.GroundTruth), "iter %d", iter)
	}
}

func TestVerifyDetectsMismatch(t *testing.T) {
	plan := &Plan{
		Entries: []Entry{
			{RowIndex: -1},
			{RowIndex: 0},
			{NeedResponse: true, RowIndex: 0},
		},
		Responses: 1,
	}

	assert.NoError(t, plan.Verify(answer.GroundTruth{{RowIndex: 0, Value: 1}}))
	assert.ErrorIs(t, plan.Verify(answer.GroundTruth{{RowIndex: 5, Value: 1}}), exception.ErrPlanMismatch)
	assert.ErrorIs(t, plan.Verify(nil), exception.ErrPlanMismatch)
}

func TestPrepareTableNeverSendsHiddenColumn(t *testing.T) {
	data := strings.Join([]string{
		"INSTRUMENT;TIME;BID_P_1;BID_V_1;ASK_P_1;ASK_V_1;Y",
		"TEA;t0;99;1;101;1;0.987654321",
		"TEA;t1;100;1;102;1;0.987654321",
		"TEA;t2;101;1;104;1;0.987654321",
	}, "\n")
	table, err := dataset.LoadReader(strings.NewReader(data), "mem", 1)
	require.NoError(t, err)

	prepared, err := PrepareTable(table, Source{Target: "TEA", Warmup: 0, Horizon: 2, Depth: 1}, CodecEncoder{})
	require.NoError(t, err)
	assert.Equal(t, 3, prepared.Loaded)
	assert.Len(t, prepared.GroundTruth, 2)

	cols, err := codec.DecodeHeader(codec.FrameBody(prepared.Plan.Entries[0].Payload))
	require.NoError(t, err)
	assert.NotContains(t, cols, "Y")
	for _, e := range prepared.Plan.Entries {
		assert.NotContains(t, codec.Render(e.Payload), "0.987654321")
	}
}
