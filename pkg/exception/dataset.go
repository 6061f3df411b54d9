package exception

import "errors"

// Dataset errors
var (
	// ErrMissingColumn is returned when the recording header lacks a required column.
	ErrMissingColumn = errors.New("dataset: missing column")
	// ErrRaggedRow is returned when a row has a different field count than the header.
	ErrRaggedRow = errors.New("dataset: ragged row")
	// ErrInvalidNumber is returned when a price or volume cell cannot be parsed.
	ErrInvalidNumber = errors.New("dataset: invalid number")
	// ErrEmptyRecording is returned when the recording has no header row.
	ErrEmptyRecording = errors.New("dataset: empty recording")

	// ErrInstrumentNotFound is returned when the target instrument has no row after warm-up.
	ErrInstrumentNotFound = errors.New("answer: instrument not found")
	// ErrInvalidHorizon is returned when the prediction horizon cannot form a sample deviation.
	ErrInvalidHorizon = errors.New("answer: invalid prediction horizon")

	// ErrPlanMismatch is returned when the replay plan and the ground truth disagree.
	ErrPlanMismatch = errors.New("replay: plan does not match ground truth")
)
