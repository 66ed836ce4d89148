package game

import (
	"log/slog"

	"github.com/pthm-cable/meadow/telemetry"
)

// flushTelemetry checks if the stats window should be flushed and handles bookmarks.
func (r *Runner) flushTelemetry() {
	if !r.sim.ShouldFlushStats() {
		return
	}

	stats := r.sim.FlushStats()
	stats.RunID = r.runID
	perfStats := r.perf.Stats()

	r.lastStats = stats
	r.hasStats = true

	if r.statsCallback != nil {
		r.statsCallback(stats)
	}

	if r.logStats {
		stats.LogStats()
		perfStats.LogStats()
	}

	if err := r.outputManager.WriteTelemetry(stats); err != nil {
		slog.Error("failed to write telemetry", "error", err)
	}
	if err := r.outputManager.WritePerf(perfStats, r.runID, stats.WindowEndTick); err != nil {
		slog.Error("failed to write perf", "error", err)
	}

	for _, bm := range r.bookmarks.Check(stats) {
		if r.logStats {
			bm.LogBookmark()
		}
		if err := r.outputManager.WriteBookmark(bm); err != nil {
			slog.Error("failed to write bookmark", "error", err)
		}
	}
}

// ShouldFlushStats reports whether the current telemetry window is complete.
func (s *Simulation) ShouldFlushStats() bool {
	return s.collector.ShouldFlush(s.tick)
}

// FlushStats closes the current telemetry window and returns its stats.
func (s *Simulation) FlushStats() telemetry.WindowStats {
	return s.collector.Flush(s.tick, len(s.plants), len(s.animals), s.grid.Len(), s.SampleAnimals(nil))
}

// SampleAnimals appends the state of every living animal to dst.
func (s *Simulation) SampleAnimals(dst []telemetry.AnimalSample) []telemetry.AnimalSample {
	query := s.animalFilter.Query()
	for query.Next() {
		a := query.Get()
		dst = append(dst, telemetry.AnimalSample{
			Energy:     a.Energy,
			Hunger:     a.CyclesSinceLastEat,
			Laziness:   a.Laziness,
			WanderLust: a.WanderLust,
		})
	}
	return dst
}
