package replay

import (
	"github.com/yanun0323/errors"
	"github.com/yanun0323/logs"

	"volgrader/internal/answer"
	"volgrader/internal/dataset"
)

// Source describes how a recording becomes a plan.
type Source struct {
	Path    string
	Target  string
	Warmup  int
	Horizon int
	Depth   int
}

// Prepared is the immutable process-wide replay data.
type Prepared struct {
	Plan        *Plan
	GroundTruth answer.GroundTruth
	Loaded      int
}

// Prepare loads the recording, extracts the ground truth and builds a verified plan.
func Prepare(src Source, enc Encoder) (*Prepared, error) {
	logs.Infof("loading data from '%s'...", src.Path)
	table, err := dataset.Load(src.Path, src.Depth)
	if err != nil {
		return nil, err
	}
	logs.Infof("loaded %d items, analyzing data...", len(table.Rows))

	return PrepareTable(table, src, enc)
}

// PrepareTable is Prepare for an already loaded table.
func PrepareTable(table *dataset.Table, src Source, enc Encoder) (*Prepared, error) {
	res, err := answer.Extract(table.Rows, src.Target, src.Warmup, src.Horizon)
	if err != nil {
		return nil, err
	}
	logs.Infof("data analyzed, %d answers, preparing messages...", len(res.GroundTruth))

	plan, err := Build(table.WireColumns(), res.Rows, Config{Target: src.Target, Warmup: src.Warmup}, enc)
	if err != nil {
		return nil, err
	}
	if err := plan.Verify(res.GroundTruth); err != nil {
		return nil, errors.Wrap(err, "verify plan")
	}
	logs.Infof("prepared %d orderbooks, %d messages", plan.OrderBooks, plan.Len())

	return &Prepared{Plan: plan, GroundTruth: res.GroundTruth, Loaded: len(table.Rows)}, nil
}
