// Package metrics provides observability hooks for documentation builds.
//
// Components receive a Recorder through dependency injection and default to
// NoopRecorder, so metrics never require nil checks at call sites and cost
// nothing when disabled. A Prometheus-backed implementation is swapped in
// when a registry is configured.
package metrics

import "time"

// ResultLabel enumerates page render result categories for counters.
type ResultLabel string

const (
	ResultSuccess  ResultLabel = "success"
	ResultFatal    ResultLabel = "fatal"
	ResultCanceled ResultLabel = "canceled"
)

// Recorder defines observability hooks for build and page-render metrics.
// Implementations must be safe for concurrent use; page hooks are called
// from render workers.
type Recorder interface {
	ObservePageDuration(category string, d time.Duration)
	ObserveBuildDuration(d time.Duration)
	IncPageResult(category string, result ResultLabel)
	IncBuildOutcome(outcome string) // outcome: success|failed|canceled
	SetRenderConcurrency(n int)
	AddAutolinkReplacements(n int)
}

// NoopRecorder is a Recorder that does nothing (default when metrics are not
// configured).
type NoopRecorder struct{}

func (NoopRecorder) ObservePageDuration(string, time.Duration) {}
func (NoopRecorder) ObserveBuildDuration(time.Duration)        {}
func (NoopRecorder) IncPageResult(string, ResultLabel)         {}
func (NoopRecorder) IncBuildOutcome(string)                    {}
func (NoopRecorder) SetRenderConcurrency(int)                  {}
func (NoopRecorder) AddAutolinkReplacements(int)               {}
