package app

import (
	"sync/atomic"
	"time"
)

// Metrics counts guard and runner activity.
type Metrics struct {
	keysHandled    atomic.Uint64
	keysSuppressed atomic.Uint64

	editsAccepted atomic.Uint64
	editsRejected atomic.Uint64

	runCount   atomic.Uint64
	runFailed  atomic.Uint64
	runPassed  atomic.Uint64
	runTotalNs atomic.Int64
	runMaxNs   atomic.Int64

	startTime time.Time
}

// NewMetrics creates a new metrics tracker.
func NewMetrics() *Metrics {
	return &Metrics{startTime: time.Now()}
}

// RecordKey records one keystroke and whether it was suppressed.
func (m *Metrics) RecordKey(suppressed bool) {
	m.keysHandled.Add(1)
	if suppressed {
		m.keysSuppressed.Add(1)
	}
}

// RecordEdit records a guard verdict. Ignored echoes are not counted.
func (m *Metrics) RecordEdit(rejected bool) {
	if rejected {
		m.editsRejected.Add(1)
		return
	}
	m.editsAccepted.Add(1)
}

// RecordRun records one completed or failed run.
func (m *Metrics) RecordRun(duration time.Duration, passed bool, err error) {
	ns := duration.Nanoseconds()
	m.runCount.Add(1)
	m.runTotalNs.Add(ns)
	if err != nil {
		m.runFailed.Add(1)
	} else if passed {
		m.runPassed.Add(1)
	}

	for {
		old := m.runMaxNs.Load()
		if ns <= old || m.runMaxNs.CompareAndSwap(old, ns) {
			break
		}
	}
}

// MetricsSnapshot is a point-in-time copy of Metrics.
type MetricsSnapshot struct {
	KeysHandled    uint64
	KeysSuppressed uint64
	EditsAccepted  uint64
	EditsRejected  uint64
	Runs           uint64
	RunsFailed     uint64
	RunsPassed     uint64
	RunAvg         time.Duration
	RunMax         time.Duration
	Uptime         time.Duration
}

// Snapshot returns the current counters.
func (m *Metrics) Snapshot() MetricsSnapshot {
	s := MetricsSnapshot{
		KeysHandled:    m.keysHandled.Load(),
		KeysSuppressed: m.keysSuppressed.Load(),
		EditsAccepted:  m.editsAccepted.Load(),
		EditsRejected:  m.editsRejected.Load(),
		Runs:           m.runCount.Load(),
		RunsFailed:     m.runFailed.Load(),
		RunsPassed:     m.runPassed.Load(),
		RunMax:         time.Duration(m.runMaxNs.Load()),
		Uptime:         time.Since(m.startTime),
	}
	if s.Runs > 0 {
		s.RunAvg = time.Duration(m.runTotalNs.Load() / int64(s.Runs))
	}
	return s
}

// SuppressRate returns the fraction of keystrokes that were suppressed.
func (s MetricsSnapshot) SuppressRate() float64 {
	if s.KeysHandled == 0 {
		return 0
	}
	return float64(s.KeysSuppressed) / float64(s.KeysHandled)
}
