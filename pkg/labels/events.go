package labels

import "log/slog"

// Stage names a pipeline step in emitted events.
type Stage string

const (
	StageExtract     Stage = "extract"
	StageSegment     Stage = "segment"
	StageClassify    Stage = "classify"
	StageConsolidate Stage = "consolidate"
	StageFallback    Stage = "fallback"
	StageReassemble  Stage = "reassemble"
	StageExport      Stage = "export"
)

// Event records one pipeline decision. Page is -1 for document-level decisions.
type Event struct {
	Stage    Stage
	Page     int
	Decision string
	Key      string
}

// Observer receives pipeline decisions. Implementations shared by a Sorter
// used from several goroutines must be safe for concurrent use.
type Observer interface {
	Observe(Event)
}

// ObserverFunc adapts a function to the Observer interface.
type ObserverFunc func(Event)

func (f ObserverFunc) Observe(e Event) { f(e) }

// LogObserver writes each event to logger at debug level.
func LogObserver(logger *slog.Logger) Observer {
	return ObserverFunc(func(e Event) {
		logger.Debug(
			"label pipeline",
			"stage", string(e.Stage),
			"page", e.Page,
			"decision", e.Decision,
			"key", e.Key,
		)
	})
}

type nopObserver struct{}

func (nopObserver) Observe(Event) {}
