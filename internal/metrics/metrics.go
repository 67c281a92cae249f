package metrics

import (
	"sync"
	"time"
)

type opStats struct {
	applied int
	noops   int
}

// Recorder captures match telemetry. In-memory counters back Snapshot and the per-op
// accessors; the OpenTelemetry instruments are attached only when Setup enables them.
type Recorder struct {
	mu            sync.Mutex
	ops           map[string]*opStats
	published     int
	publishErrors int
	otel          *otelInstruments
}

func NewRecorder() *Recorder {
	return newRecorder(nil)
}

func newRecorder(otel *otelInstruments) *Recorder {
	return &Recorder{
		ops:  make(map[string]*opStats),
		otel: otel,
	}
}

// RecordMutation counts one match operation. Applied is false for absorbed no-ops.
func (r *Recorder) RecordMutation(op, side string, applied bool) {
	if r == nil {
		return
	}

	r.mu.Lock()
	stats, ok := r.ops[op]
	if !ok {
		stats = &opStats{}
		r.ops[op] = stats
	}
	if applied {
		stats.applied++
	} else {
		stats.noops++
	}
	r.mu.Unlock()

	if r.otel != nil {
		r.otel.recordMutation(op, side, applied)
	}
}

// RecordEventPublish counts a change event handed to the pub/sub, failed or not.
func (r *Recorder) RecordEventPublish(topic string, err error) {
	if r == nil {
		return
	}

	r.mu.Lock()
	if err != nil {
		r.publishErrors++
	} else {
		r.published++
	}
	r.mu.Unlock()

	if r.otel != nil {
		r.otel.recordPublish(topic, err)
	}
}

// RecordHTTPRequest tracks basic HTTP metrics.
func (r *Recorder) RecordHTTPRequest(method, path string, status int, duration time.Duration) {
	if r == nil || r.otel == nil {
		return
	}
	r.otel.recordHTTPRequest(method, path, status, duration)
}

// Snapshot is a copy of the in-memory counters.
type Snapshot struct {
	Applied       map[string]int
	NoOps         map[string]int
	Published     int
	PublishErrors int
}

// Snapshot returns a copy of the current counters.
func (r *Recorder) Snapshot() Snapshot {
	snap := Snapshot{Applied: map[string]int{}, NoOps: map[string]int{}}
	if r == nil {
		return snap
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	for op, stats := range r.ops {
		snap.Applied[op] = stats.applied
		snap.NoOps[op] = stats.noops
	}
	snap.Published = r.published
	snap.PublishErrors = r.publishErrors
	return snap
}

// Mutations returns how many times op was applied.
func (r *Recorder) Mutations(op string) int {
	return r.Snapshot().Applied[op]
}

// NoOps returns how many times op was absorbed without changing state.
func (r *Recorder) NoOps(op string) int {
	return r.Snapshot().NoOps[op]
}
