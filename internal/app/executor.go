package app

import (
	"context"
	"fmt"
	"time"

	"outreach_engine/internal/domain/campaign"
	"outreach_engine/internal/domain/mail"

	"github.com/sirupsen/logrus"
)

// RetryPolicy bounds delivery attempts for one candidate. MaxAttempts is the
// total number of transport invocations, not the retries after the first.
type RetryPolicy struct {
	MaxAttempts int
	Wait        time.Duration
}

// Executor performs one paced send: compose once, deliver with bounded
// retries, record the outcome in the ledger. Every candidate it consumes
// yields exactly one ledger entry unless the cycle is interrupted mid-send.
type Executor struct {
	composer  mail.Composer
	transport mail.Transport
	ledger    campaign.Ledger
	pacer     Pacer
	clock     Clock
	retry     RetryPolicy
	log       *logrus.Logger
}

func NewExecutor(
	composer mail.Composer,
	transport mail.Transport,
	ledger campaign.Ledger,
	pacer Pacer,
	clock Clock,
	retry RetryPolicy,
	log *logrus.Logger,
) *Executor {
	return &Executor{
		composer:  composer,
		transport: transport,
		ledger:    ledger,
		pacer:     pacer,
		clock:     clock,
		retry:     retry,
		log:       log,
	}
}

// Send delivers one candidate and records the outcome. A non-nil error means
// the cycle cannot safely continue (ledger write failure or interruption);
// delivery failure after exhausted retries is an OutcomeFailed with nil
// error, so the scheduler moves on to the next candidate.
func (e *Executor) Send(ctx context.Context, cand campaign.Candidate) (campaign.Outcome, error) {
	flog := e.log.WithFields(logrus.Fields{
		"recipient": cand.Lead.Email,
		"category":  string(cand.Category),
	})
	if cand.Sequence > 0 {
		flog = flog.WithField("sequence", cand.Sequence)
	}

	// Composed once; retries reuse the exact content, so a retried send is
	// byte-identical to the first attempt.
	msg, err := e.composer.Compose(cand)
	if err != nil {
		flog.Errorf("Composing message failed: %v", err)
		return campaign.OutcomeFailed, e.record(ctx, cand, msg, campaign.OutcomeFailed)
	}

	outcome := campaign.OutcomeFailed
	for attempt := 1; attempt <= e.retry.MaxAttempts; attempt++ {
		err = e.transport.Deliver(ctx, cand.Lead.Email, msg)
		if err == nil {
			outcome = campaign.OutcomeSent
			flog.Infof("Delivered %q on attempt %d", msg.Subject, attempt)
			break
		}
		if ctx.Err() != nil {
			return campaign.OutcomeFailed, ctx.Err()
		}
		flog.WithField("attempt", attempt).Warnf("Delivery failed: %v", err)
		if attempt == e.retry.MaxAttempts {
			flog.Errorf("Giving up after %d attempts", e.retry.MaxAttempts)
			break
		}
		if serr := sleep(ctx, e.retry.Wait); serr != nil {
			return campaign.OutcomeFailed, serr
		}
	}

	return outcome, e.record(ctx, cand, msg, outcome)
}

func (e *Executor) record(ctx context.Context, cand campaign.Candidate, msg mail.Message, outcome campaign.Outcome) error {
	entry := campaign.Entry{
		Timestamp:    e.clock.Now(),
		RecipientKey: cand.Lead.Email,
		Subject:      msg.Subject,
		Outcome:      outcome,
		Category:     cand.Category,
		FirstName:    cand.Lead.FirstName,
		LastName:     cand.Lead.LastName,
		Organization: cand.Lead.Organization,
		TemplateUsed: msg.Template,
		Sequence:     cand.Sequence,
	}
	if err := e.ledger.Append(ctx, entry); err != nil {
		return fmt.Errorf("record %s outcome for %s: %w", outcome, cand.Lead.Email, err)
	}
	return nil
}

// Pace blocks for the inter-send delay. The scheduler calls it after every
// send that is not the last of its batch, whatever the outcome was.
func (e *Executor) Pace(ctx context.Context, c campaign.Category) error {
	return e.pacer.Pause(ctx, c)
}
