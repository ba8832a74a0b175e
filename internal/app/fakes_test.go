package app

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/sirupsen/logrus"

	"outreach_engine/internal/domain/campaign"
	"outreach_engine/internal/domain/lead"
	"outreach_engine/internal/domain/mail"
)

// cycleNow is the fixed clock reading every test cycle runs at.
var cycleNow = time.Date(2026, time.March, 15, 9, 0, 0, 0, time.UTC)

func days(n int) time.Duration { return time.Duration(n) * 24 * time.Hour }

type memLedger struct {
	entries   []campaign.Entry
	appendErr error
	scanErr   error
}

func (m *memLedger) Append(_ context.Context, e campaign.Entry) error {
	if m.appendErr != nil {
		return m.appendErr
	}
	m.entries = append(m.entries, e)
	return nil
}

func (m *memLedger) Scan(_ context.Context, fn func(campaign.Entry) error) error {
	if m.scanErr != nil {
		return m.scanErr
	}
	for _, e := range m.entries {
		if err := fn(e); err != nil {
			return err
		}
	}
	return nil
}

func sentEntry(key string, c campaign.Category, seq int, ts time.Time) campaign.Entry {
	return campaign.Entry{
		Timestamp:    ts,
		RecipientKey: key,
		Subject:      "subject",
		Outcome:      campaign.OutcomeSent,
		Category:     c,
		Sequence:     seq,
	}
}

type fakeLocker struct {
	acquireErr error
	acquired   int
	released   int
}

func (f *fakeLocker) Acquire(context.Context) error {
	if f.acquireErr != nil {
		return f.acquireErr
	}
	f.acquired++
	return nil
}

func (f *fakeLocker) Release() error {
	f.released++
	return nil
}

// fakeComposer renders a deterministic message and keeps every candidate it
// saw, so tests can assert what the scheduler asked for.
type fakeComposer struct {
	candidates []campaign.Candidate
	err        error
}

func (f *fakeComposer) Compose(c campaign.Candidate) (mail.Message, error) {
	f.candidates = append(f.candidates, c)
	if f.err != nil {
		return mail.Message{}, f.err
	}
	return mail.Message{
		Subject:  "Hello " + c.Lead.FirstName,
		HTMLBody: "<p>hello</p>",
		Template: "tpl-" + string(c.Category),
	}, nil
}

// fakeTransport records delivery order. failFor counts down remaining
// failures per recipient; alwaysErr fails everything.
type fakeTransport struct {
	calls     []string
	failFor   map[string]int
	alwaysErr error
	onDeliver func(to string)
}

func (f *fakeTransport) Deliver(_ context.Context, to string, _ mail.Message) error {
	f.calls = append(f.calls, to)
	if f.onDeliver != nil {
		f.onDeliver(to)
	}
	if f.alwaysErr != nil {
		return f.alwaysErr
	}
	if f.failFor[to] > 0 {
		f.failFor[to]--
		return fmt.Errorf("%w: refused by server", mail.ErrTransport)
	}
	return nil
}

// fakePacer records requested pauses instead of sleeping.
type fakePacer struct {
	pauses []campaign.Category
	err    error
}

func (f *fakePacer) Pause(_ context.Context, c campaign.Category) error {
	if f.err != nil {
		return f.err
	}
	f.pauses = append(f.pauses, c)
	return nil
}

type fixedClock struct{ t time.Time }

func (c fixedClock) Now() time.Time { return c.t }

type fakeLeadSource struct {
	pool  []lead.Lead
	err   error
	loads int
}

func (f *fakeLeadSource) Load(context.Context) ([]lead.Lead, error) {
	f.loads++
	if f.err != nil {
		return nil, f.err
	}
	return f.pool, nil
}

// fakeFiller hands out numbered seed mailboxes in order.
type fakeFiller struct{ n int }

func (f *fakeFiller) Next() campaign.Candidate {
	f.n++
	return campaign.Candidate{
		Lead: lead.Lead{
			Email:        fmt.Sprintf("warmup%d@pool.example", f.n),
			FirstName:    "Seed",
			LastName:     fmt.Sprintf("Box %d", f.n),
			Organization: "Warmup Pool",
		},
		Category: campaign.CategoryFiller,
	}
}

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func makeLeads(n int) []lead.Lead {
	pool := make([]lead.Lead, 0, n)
	for i := 1; i <= n; i++ {
		pool = append(pool, lead.Lead{
			Email:        fmt.Sprintf("lead%02d@example.com", i),
			FirstName:    fmt.Sprintf("Lead%02d", i),
			LastName:     "Person",
			Organization: "Example Org",
		})
	}
	return pool
}
