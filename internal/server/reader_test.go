package server

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"volgrader/internal/codec"
	"volgrader/pkg/exception"
)

type eventRecorder struct {
	logins      []string
	predictions []float64
}

func (r *eventRecorder) OnLogin(username, _ string)    { r.logins = append(r.logins, username) }
func (r *eventRecorder) OnPrediction(value float64)    { r.predictions = append(r.predictions, value) }
func (r *eventRecorder) Run(ctx context.Context) error { return nil }

func TestReadLoopDispatches(t *testing.T) {
	var stream bytes.Buffer
	login, err := codec.EncodeLogin(nil, codec.Login{Username: "alice", PassHash: "h"})
	require.NoError(t, err)
	stream.Write(login)
	stream.Write(codec.EncodePrediction(nil, 0.5))
	stream.Write(codec.EncodePrediction(nil, 1.25))

	rec := &eventRecorder{}
	err = readLoop(&stream, rec)
	assert.Equal(t, exception.ErrConnectionClose, err)
	assert.Equal(t, []string{"alice"}, rec.logins)
	assert.Equal(t, []float64{0.5, 1.25}, rec.predictions)
}

func TestReadLoopRejectsServerMessages(t *testing.T) {
	var stream bytes.Buffer
	stream.Write(codec.EncodePredictNow(nil))

	rec := &eventRecorder{}
	assert.Error(t, readLoop(&stream, rec))
	assert.Empty(t, rec.predictions)
}
