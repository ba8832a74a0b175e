package campaign

import (
	"context"
	"time"
)

// memLedger is an in-memory Ledger for fold tests.
type memLedger struct {
	entries []Entry
	scanErr error
}

func (m *memLedger) Append(_ context.Context, e Entry) error {
	m.entries = append(m.entries, e)
	return nil
}

func (m *memLedger) Scan(_ context.Context, fn func(Entry) error) error {
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

func sentEntry(key string, c Category, seq int, ts time.Time) Entry {
	return Entry{
		Timestamp:    ts,
		RecipientKey: key,
		Outcome:      OutcomeSent,
		Category:     c,
		Sequence:     seq,
	}
}

func failedEntry(key string, c Category, ts time.Time) Entry {
	return Entry{
		Timestamp:    ts,
		RecipientKey: key,
		Outcome:      OutcomeFailed,
		Category:     c,
	}
}

func days(n int) time.Duration { return time.Duration(n) * 24 * time.Hour }
