// internal/infra/ledger/csv.go
package ledger

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"outreach_engine/internal/domain/campaign"
)

var csvHeader = []string{
	"timestamp", "email", "subject", "status", "category",
	"first_name", "last_name", "organization", "template_used", "followup_sequence",
}

// CSV is the file-backed ledger: one row per attempt, append-only, fsynced
// per append. The file is the system of record; everything else is derived
// from scanning it.
type CSV struct {
	path string
}

// NewCSV opens (or creates with a header row) the ledger file at path.
func NewCSV(path string) (*CSV, error) {
	l := &CSV{path: path}
	if err := l.ensureHeader(); err != nil {
		return nil, err
	}
	return l, nil
}

func (l *CSV) ensureHeader() error {
	f, err := os.OpenFile(l.path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		if os.IsExist(err) {
			return nil
		}
		return fmt.Errorf("%w: create %s: %v", campaign.ErrLedgerIO, l.path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(csvHeader); err != nil {
		return fmt.Errorf("%w: write header: %v", campaign.ErrLedgerIO, err)
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("%w: write header: %v", campaign.ErrLedgerIO, err)
	}
	if err := f.Sync(); err != nil {
		return fmt.Errorf("%w: sync %s: %v", campaign.ErrLedgerIO, l.path, err)
	}
	return nil
}

// Append durably writes one entry. The file is opened per call and synced
// before returning, so a crash never loses an acknowledged entry; at worst
// it truncates an unacknowledged one, which Scan tolerates.
func (l *CSV) Append(_ context.Context, e campaign.Entry) error {
	if err := l.ensureHeader(); err != nil {
		return err
	}

	f, err := os.OpenFile(l.path, os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("%w: open %s: %v", campaign.ErrLedgerIO, l.path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(encodeEntry(e)); err != nil {
		return fmt.Errorf("%w: append: %v", campaign.ErrLedgerIO, err)
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("%w: append: %v", campaign.ErrLedgerIO, err)
	}
	if err := f.Sync(); err != nil {
		return fmt.Errorf("%w: sync %s: %v", campaign.ErrLedgerIO, l.path, err)
	}
	return nil
}

// Scan replays the file in append order. A ledger file that does not exist
// yet is an empty ledger, matching first-run behavior. A malformed final
// record is treated as a crash-truncated append and skipped; malformed data
// anywhere else wraps ErrLedgerIO, since a half-readable ledger cannot be
// trusted for eligibility or quota.
func (l *CSV) Scan(ctx context.Context, fn func(campaign.Entry) error) error {
	f, err := os.Open(l.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("%w: open %s: %v", campaign.ErrLedgerIO, l.path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	first, err := r.Read()
	if err == io.EOF {
		return nil
	}
	if err != nil {
		return l.tailOrErr(r, err)
	}
	// Headerless files (never produced by this writer, but cheap to read)
	// start with a data row instead of the column names.
	if len(first) > 0 && first[0] != csvHeader[0] {
		if err := l.apply(first, r, fn); err != nil {
			return err
		}
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		rec, err := r.Read()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return l.tailOrErr(r, err)
		}
		if err := l.apply(rec, r, fn); err != nil {
			return err
		}
	}
}

func (l *CSV) apply(rec []string, r *csv.Reader, fn func(campaign.Entry) error) error {
	e, err := decodeRecord(rec)
	if err != nil {
		return l.tailOrErr(r, err)
	}
	return fn(e)
}

// tailOrErr distinguishes a truncated final record, which is tolerated, from
// corruption in the middle of the file, which is fatal.
func (l *CSV) tailOrErr(r *csv.Reader, cause error) error {
	if _, err := r.Read(); err == io.EOF {
		return nil
	}
	return fmt.Errorf("%w: %s: %v", campaign.ErrLedgerIO, l.path, cause)
}

func encodeEntry(e campaign.Entry) []string {
	seq := ""
	if e.Sequence > 0 {
		seq = strconv.Itoa(e.Sequence)
	}
	return []string{
		e.Timestamp.Format(time.RFC3339),
		e.RecipientKey,
		e.Subject,
		string(e.Outcome),
		string(e.Category),
		e.FirstName,
		e.LastName,
		e.Organization,
		e.TemplateUsed,
		seq,
	}
}

func decodeRecord(rec []string) (campaign.Entry, error) {
	if len(rec) != len(csvHeader) {
		return campaign.Entry{}, fmt.Errorf("record has %d fields, want %d", len(rec), len(csvHeader))
	}
	ts, err := time.Parse(time.RFC3339, rec[0])
	if err != nil {
		return campaign.Entry{}, fmt.Errorf("bad timestamp %q: %v", rec[0], err)
	}
	seq := 0
	if rec[9] != "" {
		seq, err = strconv.Atoi(rec[9])
		if err != nil {
			return campaign.Entry{}, fmt.Errorf("bad followup_sequence %q: %v", rec[9], err)
		}
	}
	return campaign.Entry{
		Timestamp:    ts,
		RecipientKey: rec[1],
		Subject:      rec[2],
		Outcome:      campaign.Outcome(rec[3]),
		Category:     campaign.Category(rec[4]),
		FirstName:    rec[5],
		LastName:     rec[6],
		Organization: rec[7],
		TemplateUsed: rec[8],
		Sequence:     seq,
	}, nil
}
