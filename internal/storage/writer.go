package storage

import (
	"context"
	"time"

	"github.com/yanun0323/logs"

	"volgrader/internal/bus"
	"volgrader/internal/session"
)

const defaultSaveTimeout = 30 * time.Second

// Writer moves session records from a bounded queue into every sink,
// off the session goroutines.
type Writer struct {
	queue       *bus.Queue[session.Record]
	sinks       []Sink
	saveTimeout time.Duration
	done        chan struct{}
}

// NewWriter creates a writer with a queue of the given capacity.
func NewWriter(capacity int, sinks ...Sink) *Writer {
	return &Writer{
		queue:       bus.NewQueue[session.Record](capacity),
		sinks:       sinks,
		saveTimeout: defaultSaveTimeout,
		done:        make(chan struct{}),
	}
}

// Publish enqueues a record without blocking. It matches session.Sink.
func (w *Writer) Publish(record session.Record) {
	if err := w.queue.TryPublish(record); err != nil {
		logs.Errorf("storage: drop session %s record, err: %+v", record.ID, err)
	}
}

// Start consumes the queue until Close drains it.
func (w *Writer) Start() {
	go func() {
		defer close(w.done)
		w.queue.Run(context.Background(), w.save)
	}()
}

func (w *Writer) save(record session.Record) {
	for _, sink := range w.sinks {
		ctx, cancel := context.WithTimeout(context.Background(), w.saveTimeout)
		if err := sink.Save(ctx, record); err != nil {
			logs.Errorf("storage: save session %s, err: %+v", record.ID, err)
		}
		cancel()
	}
}

// Close stops accepting records, waits for the buffered ones and closes the sinks.
// Start must have been called.
func (w *Writer) Close() error {
	w.queue.Close()
	<-w.done

	var first error
	for _, sink := range w.sinks {
		if err := sink.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}
