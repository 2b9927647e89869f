package dispatch

import "time"

// Progress describes the item the pipeline is about to work on. It is
// emitted before the item's download/extract/send so observers see
// "now processing", not "just finished".
type Progress struct {
	// Index is the 1-based position of the current identifier.
	Index int

	// Total is the number of identifiers in the run.
	Total int

	// CarrierID is the identifier being processed.
	CarrierID string

	// Elapsed is the wall time since the run started.
	Elapsed time.Duration

	// ETA estimates the remaining time: identifiers left (including the
	// current one) times the mean iteration time observed so far.
	ETA time.Duration
}

// Sink receives run lifecycle notifications. Implementations must not
// block for long; the pipeline calls them inline between items.
type Sink interface {
	// Scanned fires after the source folder listing and match set are built.
	Scanned(items int)

	// Progress fires before each identifier's work begins.
	Progress(p Progress)

	// Report fires once, after the last identifier, with the final report.
	Report(r *Report)
}

// NopSink discards all notifications.
type NopSink struct{}

func (NopSink) Scanned(int)       {}
func (NopSink) Progress(Progress) {}
func (NopSink) Report(*Report)    {}
