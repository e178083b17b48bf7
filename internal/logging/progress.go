package logging

import (
	"fmt"
	"io"
	"log/slog"
	"sync"
)

// ProgressSampler thins a stream of run fractions to one report per step.
// Changing the stage always reports, as does reaching completion.
type ProgressSampler struct {
	mu    sync.Mutex
	step  float64
	stage string
	last  float64
}

// NewProgressSampler reports every step of progress (0.05 = every 5%).
func NewProgressSampler(step float64) *ProgressSampler {
	if step <= 0 || step > 1 {
		step = 0.05
	}
	return &ProgressSampler{step: step, last: -1}
}

// Sample clamps fraction to [0,1] and reports whether it should be emitted.
func (s *ProgressSampler) Sample(stage string, fraction float64) (float64, bool) {
	fraction = min(max(fraction, 0), 1)
	s.mu.Lock()
	defer s.mu.Unlock()
	if stage != s.stage {
		s.stage = stage
		s.last = fraction
		return fraction, true
	}
	if fraction >= 1 && s.last < 1 || fraction-s.last >= s.step {
		s.last = fraction
		return fraction, true
	}
	return fraction, false
}

// LogProgress returns a progress sink that logs sampled percentages for stage
// through logger. It is the console counterpart of PluginProgress.
func LogProgress(logger *slog.Logger, stage string) func(fraction float64) {
	if logger == nil {
		logger = NewNop()
	}
	sampler := NewProgressSampler(0.10)
	return func(fraction float64) {
		if f, ok := sampler.Sample(stage, fraction); ok {
			logger.Info("progress", String(FieldStage, stage), Int("percent", int(f*100)))
		}
	}
}

// PluginProgress returns a progress sink writing host protocol progress lines
// ("\x06<fraction>") to w, at most one per percent.
func PluginProgress(w io.Writer) func(fraction float64) {
	sampler := NewProgressSampler(0.01)
	return func(fraction float64) {
		if f, ok := sampler.Sample("", fraction); ok {
			fmt.Fprintf(w, "%c%.2f\n", pluginProgressPrefix, f)
		}
	}
}
