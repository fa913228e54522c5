// Package metrics provides a minimal instrumentation interface with a no-op
// default and a Prometheus-backed implementation enabled by `kbot serve --metrics`.
package metrics

import (
	"sync"
	"time"
)

// Recorder defines the metrics surface used across the codebase.
type Recorder interface {
	IncReplyTotal(kind string)
	ObserveReplySeconds(kind string, seconds float64)
	ObserveMatchConfidence(confidence float64)
}

// noopRecorder implements Recorder with no-ops.
type noopRecorder struct{}

func (n *noopRecorder) IncReplyTotal(string)                {}
func (n *noopRecorder) ObserveReplySeconds(string, float64) {}
func (n *noopRecorder) ObserveMatchConfidence(float64)      {}

var (
	recMu    sync.RWMutex
	recorder Recorder = &noopRecorder{}
)

// Default returns the current recorder.
func Default() Recorder {
	recMu.RLock()
	defer recMu.RUnlock()
	return recorder
}

// SetRecorder swaps the global recorder implementation. A nil recorder restores the
// no-op default.
func SetRecorder(r Recorder) {
	recMu.Lock()
	defer recMu.Unlock()
	if r == nil {
		r = &noopRecorder{}
	}
	recorder = r
}

// TimeReply starts timing a reply; call the returned func with the reply kind.
func TimeReply(r Recorder) func(kind string) {
	start := time.Now()
	return func(kind string) {
		dur := time.Since(start).Seconds()
		r.IncReplyTotal(kind)
		r.ObserveReplySeconds(kind, dur)
	}
}
