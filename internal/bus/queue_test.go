package bus

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueuePublishAndDrain(t *testing.T) {
	q := NewQueue[int](2)
	require.NoError(t, q.TryPublish(1))
	require.NoError(t, q.TryPublish(2))
	assert.ErrorIs(t, q.TryPublish(3), ErrQueueFull)
	assert.Equal(t, uint64(1), q.Dropped())
	assert.Equal(t, 2, q.Len())

	q.Close()
	assert.ErrorIs(t, q.TryPublish(4), ErrQueueClosed)

	var got []int
	q.Run(t.Context(), func(v int) { got = append(got, v) })
	assert.Equal(t, []int{1, 2}, got)
}

func TestQueueRunStopsOnContext(t *testing.T) {
	q := NewQueue[string](0)
	ctx, cancel := context.WithCancel(t.Context())
	cancel()

	done := make(chan struct{})
	go func() {
		q.Run(ctx, func(string) {})
		close(done)
	}()
	<-done
}

func TestQueueCloseTwice(t *testing.T) {
	q := NewQueue[int](1)
	q.Close()
	q.Close()
}

func TestQueuePublishRacesClose(t *testing.T) {
	for iter := 0; iter < 100; iter++ {
		q := NewQueue[int](4)
		var wg sync.WaitGroup
		for p := 0; p < 4; p++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for i := 0; i < 50; i++ {
					err := q.TryPublish(i)
					if err != nil && !errors.Is(err, ErrQueueFull) && !errors.Is(err, ErrQueueClosed) {
						t.Errorf("unexpected error: %v", err)
					}
				}
			}()
		}
		go q.Run(t.Context(), func(int) {})
		q.Close()
		wg.Wait()
		assert.ErrorIs(t, q.TryPublish(0), ErrQueueClosed)
	}
}
