package telemetry

import (
	"fmt"
	"log/slog"

	"gonum.org/v1/gonum/stat"

	"github.com/pthm-cable/meadow/config"
)

// BookmarkType identifies the type of bookmark.
type BookmarkType string

const (
	BookmarkAnimalsExtinct   BookmarkType = "animals_extinct"
	BookmarkPopulationCrash  BookmarkType = "population_crash"
	BookmarkPlantSaturation  BookmarkType = "plant_saturation"
	BookmarkStablePopulation BookmarkType = "stable_population"
)

// Bookmark represents an automatically triggered bookmark.
type Bookmark struct {
	RunID       string       `csv:"run_id"`
	Type        BookmarkType `csv:"type"`
	Tick        int32        `csv:"tick"`
	Description string       `csv:"description"`
}

// LogBookmark logs the bookmark using slog.
func (b Bookmark) LogBookmark() {
	slog.Info("bookmark",
		"type", string(b.Type),
		"tick", b.Tick,
		"description", b.Description,
	)
}

// BookmarkDetector detects interesting moments in the simulation.
type BookmarkDetector struct {
	cfg config.BookmarksConfig

	// Rolling history (circular buffer)
	history     []WindowStats
	historySize int
	historyIdx  int
	historyFull bool

	// State tracking
	recentAnimalPeak   int  // peak animal count since the last crash
	extinct            bool // animals already reported extinct
	saturated          bool // plant saturation already reported
	stableWindowsCount int  // consecutive windows with a stable animal count
}

// NewBookmarkDetector creates a detector with the given history size.
func NewBookmarkDetector(historySize int, cfg config.BookmarksConfig) *BookmarkDetector {
	if historySize < 4 {
		historySize = 4 // minimum for stable population detection
	}
	return &BookmarkDetector{
		cfg:         cfg,
		history:     make([]WindowStats, historySize),
		historySize: historySize,
	}
}

// Check analyzes the latest stats and returns any triggered bookmarks.
func (bd *BookmarkDetector) Check(stats WindowStats) []Bookmark {
	var bookmarks []Bookmark

	if b := bd.checkAnimalsExtinct(stats); b != nil {
		bookmarks = append(bookmarks, *b)
	}
	if b := bd.checkPopulationCrash(stats); b != nil {
		bookmarks = append(bookmarks, *b)
	}
	if b := bd.checkPlantSaturation(stats); b != nil {
		bookmarks = append(bookmarks, *b)
	}

	bd.addToHistory(stats)

	if b := bd.checkStablePopulation(stats); b != nil {
		bookmarks = append(bookmarks, *b)
	}

	if stats.Animals > bd.recentAnimalPeak {
		bd.recentAnimalPeak = stats.Animals
	}

	for i := range bookmarks {
		bookmarks[i].RunID = stats.RunID
	}
	return bookmarks
}

func (bd *BookmarkDetector) addToHistory(stats WindowStats) {
	bd.history[bd.historyIdx] = stats
	bd.historyIdx = (bd.historyIdx + 1) % bd.historySize
	if bd.historyIdx == 0 {
		bd.historyFull = true
	}
}

// recent returns up to n most recent windows, oldest first.
func (bd *BookmarkDetector) recent(n int) []WindowStats {
	count := bd.historyIdx
	if bd.historyFull {
		count = bd.historySize
	}
	if n > count {
		n = count
	}
	out := make([]WindowStats, 0, n)
	for i := n; i > 0; i-- {
		idx := (bd.historyIdx - i + bd.historySize) % bd.historySize
		out = append(out, bd.history[idx])
	}
	return out
}

func (bd *BookmarkDetector) checkAnimalsExtinct(stats WindowStats) *Bookmark {
	if stats.Animals > 0 {
		bd.extinct = false
		return nil
	}
	if bd.extinct {
		return nil
	}
	bd.extinct = true
	return &Bookmark{
		Type:        BookmarkAnimalsExtinct,
		Tick:        stats.WindowEndTick,
		Description: fmt.Sprintf("Last animal gone, %d plants remain", stats.Plants),
	}
}

func (bd *BookmarkDetector) checkPopulationCrash(stats WindowStats) *Bookmark {
	if bd.recentAnimalPeak == 0 {
		return nil
	}
	c := bd.cfg.PopulationCrash

	dropPercent := 1.0 - float64(stats.Animals)/float64(bd.recentAnimalPeak)
	if dropPercent > c.DropPercent && stats.Animals <= bd.recentAnimalPeak-c.MinDrop {
		oldPeak := bd.recentAnimalPeak
		bd.recentAnimalPeak = stats.Animals

		return &Bookmark{
			Type:        BookmarkPopulationCrash,
			Tick:        stats.WindowEndTick,
			Description: fmt.Sprintf("Animals crashed %.0f%% from peak %d to %d", dropPercent*100, oldPeak, stats.Animals),
		}
	}
	return nil
}

func (bd *BookmarkDetector) checkPlantSaturation(stats WindowStats) *Bookmark {
	if stats.PlantCover < bd.cfg.PlantSaturation.Fraction {
		bd.saturated = false
		return nil
	}
	if bd.saturated {
		return nil
	}
	bd.saturated = true
	return &Bookmark{
		Type:        BookmarkPlantSaturation,
		Tick:        stats.WindowEndTick,
		Description: fmt.Sprintf("Plants cover %.0f%% of the grid", stats.PlantCover*100),
	}
}

func (bd *BookmarkDetector) checkStablePopulation(stats WindowStats) *Bookmark {
	c := bd.cfg.StablePopulation
	if stats.Animals < c.MinAnimals {
		bd.stableWindowsCount = 0
		return nil
	}

	window := bd.recent(4)
	if len(window) < 4 {
		return nil
	}

	counts := make([]float64, len(window))
	for i, h := range window {
		counts[i] = float64(h.Animals)
	}
	mean, std := stat.PopMeanStdDev(counts, nil)

	cv := 0.0
	if mean > 0 {
		cv = std / mean
	}

	if cv < c.CVThreshold {
		bd.stableWindowsCount++
	} else {
		bd.stableWindowsCount = 0
	}

	// Trigger exactly once per stable stretch
	if bd.stableWindowsCount == c.StableWindows {
		return &Bookmark{
			Type:        BookmarkStablePopulation,
			Tick:        stats.WindowEndTick,
			Description: fmt.Sprintf("Stable population of %d animals over %d windows", stats.Animals, c.StableWindows),
		}
	}
	return nil
}
