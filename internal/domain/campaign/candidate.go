package campaign

import "outreach_engine/internal/domain/lead"

// Candidate is one planned send: a recipient tagged with the role it plays
// in the current cycle. Candidates are built per cycle, consumed exactly
// once by the executor and discarded after.
type Candidate struct {
	Lead          lead.Lead
	Category      Category
	Sequence      int // follow-up sequence, 1-based; 0 for every other category
	DaysSinceLast int // days since the last sent outreach, set for follow-ups
}

// FillerSource yields reputation-traffic candidates. Pools are effectively
// unbounded; the scheduler stops drawing once the filler quota runs out.
type FillerSource interface {
	Next() Candidate
}
