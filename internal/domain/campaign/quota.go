// internal/domain/campaign/quota.go
package campaign

import (
	"context"
	"time"
)

// Ceilings are the configured daily send caps. First touches and follow-ups
// deliberately share the outreach ceiling; filler has its own.
type Ceilings struct {
	Outreach int
	Filler   int
}

// Quota tracks today's remaining send budget per category. It is re-derived
// from the ledger at cycle start and never persisted, so it cannot drift
// from the log.
type Quota struct {
	ceilings Ceilings
	outreach int // sent today, first_touch + follow_up
	filler   int // sent today, filler
}

// BuildQuota folds today's sent entries out of the ledger. "Today" is the
// calendar date of now in its own location; entry timestamps are converted
// before comparing.
func BuildQuota(ctx context.Context, l Ledger, ceilings Ceilings, now time.Time) (*Quota, error) {
	q := &Quota{ceilings: ceilings}
	err := l.Scan(ctx, func(e Entry) error {
		if e.Outcome != OutcomeSent || !sameCalendarDay(e.Timestamp, now) {
			return nil
		}
		q.Consume(e.Category)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return q, nil
}

// Remaining reports how many sends the category's bucket still allows today.
func (q *Quota) Remaining(c Category) int {
	var rem int
	if c.IsOutreach() {
		rem = q.ceilings.Outreach - q.outreach
	} else {
		rem = q.ceilings.Filler - q.filler
	}
	if rem < 0 {
		return 0
	}
	return rem
}

// Consume records one sent message against the category's bucket. Failed
// outcomes never consume budget, so callers only invoke this on OutcomeSent.
func (q *Quota) Consume(c Category) {
	if c.IsOutreach() {
		q.outreach++
		return
	}
	q.filler++
}

// Exhausted reports whether every bucket is at its ceiling.
func (q *Quota) Exhausted() bool {
	return q.Remaining(CategoryFirstTouch) == 0 && q.Remaining(CategoryFiller) == 0
}

func sameCalendarDay(ts, now time.Time) bool {
	y1, m1, d1 := ts.In(now.Location()).Date()
	y2, m2, d2 := now.Date()
	return y1 == y2 && m1 == m2 && d1 == d2
}
