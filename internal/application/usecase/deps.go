package usecase

import (
	"time"

	"go.uber.org/zap"
)

// Clock provides current time (for testability).
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// ClockFunc adapts a function to Clock.
type ClockFunc func() time.Time

func (f ClockFunc) Now() time.Time { return f() }

// Metrics receives store level counters. The prometheus implementation
// lives in infra/metrics.
type Metrics interface {
	CartMutated(op string)
	OrderPlaced()
	OrderFailed()
	SessionsActive(n int)
}

// NopMetrics discards everything.
type NopMetrics struct{}

func (NopMetrics) CartMutated(string) {}
func (NopMetrics) OrderPlaced()       {}
func (NopMetrics) OrderFailed()       {}
func (NopMetrics) SessionsActive(int) {}

// Deps are the ambient collaborators every store takes.
type Deps struct {
	Clock   Clock
	Log     *zap.Logger
	Metrics Metrics
}

// WithDefaults fills unset collaborators with the system clock, a no-op
// logger and no-op metrics.
func (d Deps) WithDefaults() Deps {
	if d.Clock == nil {
		d.Clock = systemClock{}
	}
	if d.Log == nil {
		d.Log = zap.NewNop()
	}
	if d.Metrics == nil {
		d.Metrics = NopMetrics{}
	}
	return d
}
