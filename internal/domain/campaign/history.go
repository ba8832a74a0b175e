// internal/domain/campaign/history.go
package campaign

import "time"

// History is the per-recipient contact record derived from the ledger.
// It exists only for the duration of one cycle; nothing caches it across
// runs, so it can never drift from the log.
type History struct {
	FirstSent    time.Time
	LastSent     time.Time
	LastOutreach time.Time // latest sent first_touch or follow_up
	SentCount    map[Category]int
	MaxSequence  int // highest follow-up sequence with a sent entry
}

// OutreachSent reports whether the recipient ever received a first touch
// or follow-up. Filler-only recipients return false.
func (h *History) OutreachSent() bool {
	return h.SentCount[CategoryFirstTouch] > 0 || h.SentCount[CategoryFollowUp] > 0
}

// HistorySet accumulates histories keyed by recipient during one ledger
// scan. Absence of a key means the recipient has never had a sent entry.
type HistorySet map[string]*History

// Observe folds one ledger entry into the set. Failed attempts never count
// as contact and are ignored entirely.
func (s HistorySet) Observe(e Entry) {
	if e.Outcome != OutcomeSent {
		return
	}
	h := s[e.RecipientKey]
	if h == nil {
		h = &History{SentCount: make(map[Category]int)}
		s[e.RecipientKey] = h
	}
	if h.FirstSent.IsZero() || e.Timestamp.Before(h.FirstSent) {
		h.FirstSent = e.Timestamp
	}
	if e.Timestamp.After(h.LastSent) {
		h.LastSent = e.Timestamp
	}
	h.SentCount[e.Category]++
	if e.Category.IsOutreach() && e.Timestamp.After(h.LastOutreach) {
		h.LastOutreach = e.Timestamp
	}
	if e.Category == CategoryFollowUp && e.Sequence > h.MaxSequence {
		h.MaxSequence = e.Sequence
	}
}
