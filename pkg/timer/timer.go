package timer

import (
	"time"

	"github.com/sirupsen/logrus"
)

// Track returns a function that, when executed, logs the duration.
// Usage: defer timer.Track("FunctionName")()
func Track(name string) func() {
	start := time.Now()
	return func() {
		logrus.WithFields(logrus.Fields{
			"op":       name,
			"duration": time.Since(start).String(),
		}).Debug("timing")
	}
}

// Stopwatch is useful for measuring multiple steps within one function.
type Stopwatch struct {
	start time.Time
	last  time.Time
}

// NewStopwatch starts the clock.
func NewStopwatch() *Stopwatch {
	now := time.Now()
	return &Stopwatch{start: now, last: now}
}

// Lap logs the time taken since the last Lap call.
func (s *Stopwatch) Lap(stepName string) {
	now := time.Now()
	elapsed := now.Sub(s.last)
	s.last = now
	logrus.WithFields(logrus.Fields{
		"step":    stepName,
		"elapsed": elapsed.String(),
		"total":   now.Sub(s.start).String(),
	}).Debug("timing step")
}

// Total logs the total time since the stopwatch started.
func (s *Stopwatch) Total(name string) {
	logrus.WithFields(logrus.Fields{
		"op":    name,
		"total": time.Since(s.start).String(),
	}).Debug("timing total")
}
