package obs

import (
	"sync/atomic"
	"time"
)

// Metrics collects lightweight counters and latency stats across sessions.
type Metrics struct {
	sessionsStarted  uint64
	sessionsFinished uint64
	sessionsAborted  uint64
	sessionsActive   int64
	messagesSent     uint64
	responses        uint64
	strayResponses   uint64
	timeouts         uint64

	responseLatency LatencyStats
}

// LatencyStats aggregates duration samples in nanoseconds.
type LatencyStats struct {
	count uint64
	sum   uint64
	min   uint64
	max   uint64
}

// LatencySnapshot is a point-in-time view of latency stats.
type LatencySnapshot struct {
	Count uint64        `json:"count"`
	Min   time.Duration `json:"min"`
	Max   time.Duration `json:"max"`
	Avg   time.Duration `json:"avg"`
}

// Snapshot captures the current metrics values.
type Snapshot struct {
	SessionsStarted  uint64          `json:"sessionsStarted"`
	SessionsFinished uint64          `json:"sessionsFinished"`
	SessionsAborted  uint64          `json:"sessionsAborted"`
	SessionsActive   int64           `json:"sessionsActive"`
	MessagesSent     uint64          `json:"messagesSent"`
	Responses        uint64          `json:"responses"`
	StrayResponses   uint64          `json:"strayResponses"`
	Timeouts         uint64          `json:"timeouts"`
	ResponseLatency  LatencySnapshot `json:"responseLatency"`
}

// NewMetrics allocates a metrics container.
func NewMetrics() *Metrics {
	return &Metrics{}
}

// SessionStarted records an accepted connection.
func (m *Metrics) SessionStarted() {
	if m == nil {
		return
	}
	atomic.AddUint64(&m.sessionsStarted, 1)
	atomic.AddInt64(&m.sessionsActive, 1)
}

// SessionEnded records a terminated session; finished is false for aborts.
func (m *Metrics) SessionEnded(finished bool) {
	if m == nil {
		return
	}
	if finished {
		atomic.AddUint64(&m.sessionsFinished, 1)
	} else {
		atomic.AddUint64(&m.sessionsAborted, 1)
	}
	atomic.AddInt64(&m.sessionsActive, -1)
}

// IncSent records a dispatched message.
func (m *Metrics) IncSent() {
	if m == nil {
		return
	}
	atomic.AddUint64(&m.messagesSent, 1)
}

// ObserveResponse records an accepted prediction and how long the client took.
func (m *Metrics) ObserveResponse(d time.Duration) {
	if m == nil {
		return
	}
	atomic.AddUint64(&m.responses, 1)
	m.responseLatency.Observe(d)
}

// IncStrayResponse records a prediction that arrived with nothing outstanding.
func (m *Metrics) IncStrayResponse() {
	if m == nil {
		return
	}
	atomic.AddUint64(&m.strayResponses, 1)
}

// IncTimeout records a response timeout.
func (m *Metrics) IncTimeout() {
	if m == nil {
		return
	}
	atomic.AddUint64(&m.timeouts, 1)
}

// Snapshot returns a copy of the current metrics values.
func (m *Metrics) Snapshot() Snapshot {
	if m == nil {
		return Snapshot{}
	}
	return Snapshot{
		SessionsStarted:  atomic.LoadUint64(&m.sessionsStarted),
		SessionsFinished: atomic.LoadUint64(&m.sessionsFinished),
		SessionsAborted:  atomic.LoadUint64(&m.sessionsAborted),
		SessionsActive:   atomic.LoadInt64(&m.sessionsActive),
		MessagesSent:     atomic.LoadUint64(&m.messagesSent),
		Responses:        atomic.LoadUint64(&m.responses),
		StrayResponses:   atomic.LoadUint64(&m.strayResponses),
		Timeouts:         atomic.LoadUint64(&m.timeouts),
		ResponseLatency:  m.responseLatency.Snapshot(),
	}
}

// Observe records a duration sample.
func (l *LatencyStats) Observe(d time.Duration) {
	if d < 0 {
		return
	}
	nanos := uint64(d)
	atomic.AddUint64(&l.count, 1)
	atomic.AddUint64(&l.sum, nanos)

	for {
		min := atomic.LoadUint64(&l.min)
		if min != 0 && nanos >= min {
			break
		}
		if atomic.CompareAndSwapUint64(&l.min, min, nanos) {
			break
		}
	}

	for {
		max := atomic.LoadUint64(&l.max)
		if nanos <= max {
			break
		}
		if atomic.CompareAndSwapUint64(&l.max, max, nanos) {
			break
		}
	}
}

// Snapshot returns the aggregated latency stats.
func (l *LatencyStats) Snapshot() LatencySnapshot {
	count := atomic.LoadUint64(&l.count)
	if count == 0 {
		return LatencySnapshot{}
	}
	sum := atomic.LoadUint64(&l.sum)
	min := atomic.LoadUint64(&l.min)
	max := atomic.LoadUint64(&l.max)
	return LatencySnapshot{
		Count: count,
		Min:   time.Duration(min),
		Max:   time.Duration(max),
		Avg:   time.Duration(sum / count),
	}
}
