package main

import (
	"flag"
	"fmt"
	"log"

	"volgrader/internal/codec"
	"volgrader/internal/ops"
	"volgrader/internal/replay"
)

// replay prints the messages a grader would send for a recording, without serving it.
func main() {
	data := flag.String("data", ops.DefaultDataFile, "Recording to replay")
	instrument := flag.String("instrument", ops.DefaultInstrument, "Target instrument")
	warmup := flag.Int("warmup", ops.DefaultWarmup, "Rows replayed before the first prediction")
	horizon := flag.Int("horizon", ops.DefaultHorizon, "Forward window size in target rows")
	depth := flag.Int("depth", ops.DefaultDepth, "Order book levels per side")
	limit := flag.Int("limit", 20, "Messages to print (0=all)")
	decode := flag.Bool("decode", false, "Render message payloads")
	answers := flag.Bool("answers", false, "Print the ground truth next to each predict-now")
	flag.Parse()

	prepared, err := replay.Prepare(replay.Source{
		Path:    *data,
		Target:  *instrument,
		Warmup:  *warmup,
		Horizon: *horizon,
		Depth:   *depth,
	}, replay.CodecEncoder{})
	if err != nil {
		log.Fatalf("prepare replay failed: %v", err)
	}

	plan := prepared.Plan
	response := 0
	for i, entry := range plan.Entries {
		if *limit > 0 && i >= *limit {
			break
		}
		fmt.Printf("%06d row=%d type=%s len=%d\n", i, entry.RowIndex, codec.FrameType(entry.Payload), len(entry.Payload))
		if *decode {
			fmt.Printf("  %s\n", codec.Render(entry.Payload))
		}
		if entry.NeedResponse {
			if *answers {
				fmt.Printf("  expect=%.6f\n", prepared.GroundTruth[response].Value)
			}
			response++
		}
	}

	log.Printf("rows=%d orderbooks=%d messages=%d responses=%d",
		prepared.Loaded, plan.OrderBooks, plan.Len(), plan.Responses)
}
