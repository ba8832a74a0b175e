// internal/domain/campaign/summary.go
package campaign

import "time"

// Summary is the per-category outcome report for one cycle. A cycle that
// started sending always produces one, even when it stops early.
type Summary struct {
	RunID      string
	StartedAt  time.Time
	FinishedAt time.Time
	Sent       map[Category]int
	Failed     map[Category]int
}

func NewSummary(runID string, startedAt time.Time) *Summary {
	return &Summary{
		RunID:     runID,
		StartedAt: startedAt,
		Sent:      make(map[Category]int),
		Failed:    make(map[Category]int),
	}
}

// ShortID is the leading block of the run ID, enough to correlate reports
// with cycle logs.
func (s *Summary) ShortID() string {
	if len(s.RunID) > 8 {
		return s.RunID[:8]
	}
	return s.RunID
}

// Record tallies one executor outcome.
func (s *Summary) Record(c Category, o Outcome) {
	if o == OutcomeSent {
		s.Sent[c]++
		return
	}
	s.Failed[c]++
}

// SentTotal is the number of messages delivered across all categories.
func (s *Summary) SentTotal() int {
	var n int
	for _, v := range s.Sent {
		n += v
	}
	return n
}

// FailedTotal is the number of candidates that exhausted their retries.
func (s *Summary) FailedTotal() int {
	var n int
	for _, v := range s.Failed {
		n += v
	}
	return n
}

// OutreachSentTotal is the number of delivered first touches and follow-ups.
func (s *Summary) OutreachSentTotal() int {
	return s.Sent[CategoryFirstTouch] + s.Sent[CategoryFollowUp]
}

// Duration is the wall-clock span of the cycle, zero until FinishedAt is set.
func (s *Summary) Duration() time.Duration {
	if s.FinishedAt.IsZero() {
		return 0
	}
	return s.FinishedAt.Sub(s.StartedAt)
}
