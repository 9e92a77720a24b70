package engine

// Phase is the engine's explicit activity state. The single-flight
// guarantees hang off this enum: a request for work of a kind already
// covered by the current phase is dropped, never queued.
type Phase int

const (
	// PhaseIdle means no insight-service work is in flight.
	PhaseIdle Phase = iota
	// PhaseAnalyzing means one analysis call is in flight.
	PhaseAnalyzing
	// PhaseGenerating means one generation call is in flight.
	PhaseGenerating
	// PhaseAnalyzingThenGenerating is the force-next sequence: an analysis
	// immediately followed by a generation, both busy flags visible for the
	// whole span.
	PhaseAnalyzingThenGenerating
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseAnalyzing:
		return "analyzing"
	case PhaseGenerating:
		return "generating"
	case PhaseAnalyzingThenGenerating:
		return "analyzing_then_generating"
	}
	return "unknown"
}

// analyzing reports whether an analysis call is in flight.
func (p Phase) analyzing() bool {
	return p == PhaseAnalyzing || p == PhaseAnalyzingThenGenerating
}

// generating reports whether a generation is in flight or committed (the
// force-next sequence counts from its start).
func (p Phase) generating() bool {
	return p == PhaseGenerating || p == PhaseAnalyzingThenGenerating
}
