// internal/domain/campaign/eligibility.go
package campaign

import (
	"context"
	"time"
)

// EligibilityStatus classifies a recipient against the contact history.
type EligibilityStatus string

const (
	// EligibilityFresh marks a recipient with no sent entry of any category.
	// Failed attempts never count as contact.
	EligibilityFresh EligibilityStatus = "FRESH"
	// EligibilityFollowUpDue marks a recipient whose next follow-up wait has
	// fully elapsed.
	EligibilityFollowUpDue EligibilityStatus = "FOLLOW_UP_DUE"
	// EligibilityFollowUpNotDue marks a recipient with outreach history whose
	// next follow-up wait has not elapsed yet.
	EligibilityFollowUpNotDue EligibilityStatus = "FOLLOW_UP_NOT_DUE"
	// EligibilityExhausted marks a recipient past the last follow-up, or one
	// with filler-only history that can never be outreached again.
	EligibilityExhausted EligibilityStatus = "EXHAUSTED"
)

// Eligibility is the calculator's verdict for one recipient.
type Eligibility struct {
	Status EligibilityStatus
	// Sequence is the next follow-up number (1-based) for the follow-up
	// statuses; 0 otherwise.
	Sequence int
	// DaysSinceLast is the whole days elapsed since the recipient's last
	// sent outreach entry; 0 for fresh recipients.
	DaysSinceLast int
}

// Policy holds the follow-up escalation rules for a campaign.
type Policy struct {
	// FollowUpIntervals is the wait in days before follow-up n may go out,
	// indexed by n-1.
	FollowUpIntervals []int
	// MaxFollowUps is the highest follow-up sequence ever sent.
	MaxFollowUps int
}

// Evaluate classifies one recipient. history is nil when the ledger holds no
// sent entry for the recipient, which is the only way to be Fresh: any sent
// entry, of any category, permanently removes a recipient from Fresh
// consideration.
func (p Policy) Evaluate(history *History, now time.Time) Eligibility {
	if history == nil {
		return Eligibility{Status: EligibilityFresh}
	}

	// A recipient with only filler history was contacted (so never Fresh
	// again) but has no outreach thread to escalate.
	if !history.OutreachSent() {
		return Eligibility{Status: EligibilityExhausted}
	}

	if history.MaxSequence >= p.MaxFollowUps {
		return Eligibility{Status: EligibilityExhausted}
	}

	next := history.MaxSequence + 1
	days := daysBetween(history.LastOutreach, now)
	if days >= p.interval(next) {
		return Eligibility{Status: EligibilityFollowUpDue, Sequence: next, DaysSinceLast: days}
	}
	return Eligibility{Status: EligibilityFollowUpNotDue, Sequence: next, DaysSinceLast: days}
}

// interval returns the configured wait for follow-up n. Sequences past the
// configured table fall back to the last interval; the scheduler never emits
// them, but the calculator tolerates gaps.
func (p Policy) interval(n int) int {
	if len(p.FollowUpIntervals) == 0 {
		return 0
	}
	if n-1 < len(p.FollowUpIntervals) {
		return p.FollowUpIntervals[n-1]
	}
	return p.FollowUpIntervals[len(p.FollowUpIntervals)-1]
}

func daysBetween(from, to time.Time) int {
	if to.Before(from) {
		return 0
	}
	return int(to.Sub(from).Hours() / 24)
}

// BuildHistories folds the full ledger into per-recipient histories. The
// fold is recomputed every cycle; a scan failure means neither eligibility
// nor quota can be trusted, so callers must abort the cycle.
func BuildHistories(ctx context.Context, l Ledger) (HistorySet, error) {
	set := make(HistorySet)
	err := l.Scan(ctx, func(e Entry) error {
		set.Observe(e)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return set, nil
}
