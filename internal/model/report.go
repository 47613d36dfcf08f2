package model

import "time"

// Report aggregates run-level counters produced by the pipeline. It is
// threaded through the stages and returned to the caller alongside the
// output table; there is no module-level mutable state.
type Report struct {
	UsersLoaded         int
	UsersSkipped        int
	TransactionsLoaded  int
	TransactionsSkipped int

	// TransformFallbacks counts values that could not be parsed under
	// their field's category and passed through unchanged.
	TransformFallbacks int

	// JoinKey is the detected common key, empty when the join degraded.
	JoinKey string
	// DegradedJoin is set when no common key was found and the merge
	// fell back to concatenation.
	DegradedJoin bool
	// IDColumn is the identifier column forced to position 0.
	IDColumn string
	// SynthesizedIDs counts rows that received a generated identifier.
	SynthesizedIDs int

	Rows     int
	Columns  int
	Duration time.Duration
}
