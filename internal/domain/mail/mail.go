// internal/domain/mail/mail.go
package mail

import (
	"context"
	"errors"

	"outreach_engine/internal/domain/campaign"
)

// ErrTransport marks a delivery failure. The executor treats every wrapped
// reason uniformly: retry up to the configured bound, then record a failed
// ledger entry.
var ErrTransport = errors.New("mail transport failure")

// Message is one composed email. The body is HTML; transports derive the
// plain-text alternative when building the wire envelope.
type Message struct {
	Subject  string
	HTMLBody string
	// Template labels which template produced the message, recorded in the
	// ledger for audit (e.g. "Template 2", "Follow-up 1").
	Template string
}

// Composer renders the subject and body for one candidate. Compose must be
// stable for a given candidate: the executor composes once per candidate and
// every retry reuses the result, so content is never re-randomized mid-send.
type Composer interface {
	Compose(c campaign.Candidate) (Message, error)
}

// Transport attempts delivery of one message to one recipient. This
// interface decouples the engine from the submission protocol the same way
// the rest of the app is decoupled from its infrastructure libraries.
type Transport interface {
	Deliver(ctx context.Context, to string, msg Message) error
}
