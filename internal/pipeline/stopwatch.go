package pipeline

import "time"

// stopwatch records wall-clock durations per named stage for the result's
// performance summary.
type stopwatch struct {
	started map[string]time.Time
	elapsed map[string]time.Duration
}

func newStopwatch() *stopwatch {
	sw := &stopwatch{
		started: make(map[string]time.Time),
		elapsed: make(map[string]time.Duration),
	}
	sw.start("total")
	return sw
}

func (s *stopwatch) start(stage string) {
	s.started[stage] = time.Now()
}

func (s *stopwatch) stop(stage string) {
	if begin, ok := s.started[stage]; ok {
		s.elapsed[stage] += time.Since(begin)
		delete(s.started, stage)
	}
}

func (s *stopwatch) seconds() map[string]float64 {
	out := make(map[string]float64, len(s.elapsed))
	for stage, d := range s.elapsed {
		out[stage] = d.Seconds()
	}
	return out
}
