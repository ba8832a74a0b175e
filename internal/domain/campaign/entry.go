// internal/domain/campaign/entry.go
package campaign

import "time"

// Category classifies the traffic role of a single send.
type Category string

const (
	CategoryFirstTouch Category = "first_touch" // initial contact with a recipient from the lead pool
	CategoryFollowUp   Category = "follow_up"   // numbered escalation after a first touch
	CategoryFiller     Category = "filler"      // reputation traffic to the seed mailbox pool
)

// IsOutreach reports whether the category draws from the shared daily
// outreach quota. Follow-ups spend the same budget as first touches.
func (c Category) IsOutreach() bool {
	return c == CategoryFirstTouch || c == CategoryFollowUp
}

// Outcome is the terminal result of one send, after retries.
type Outcome string

const (
	OutcomeSent   Outcome = "sent"
	OutcomeFailed Outcome = "failed"
)

// Entry is one immutable row of the send ledger. Entries are only ever
// appended; eligibility and quota state are folds over the full sequence.
// Recipient snapshot fields are denormalized for audit and are not read
// back by the engine.
type Entry struct {
	Timestamp    time.Time
	RecipientKey string // normalized email address
	Subject      string
	Outcome      Outcome
	Category     Category
	FirstName    string
	LastName     string
	Organization string
	TemplateUsed string
	Sequence     int // follow-up sequence, 1-based; 0 for every other category
}
