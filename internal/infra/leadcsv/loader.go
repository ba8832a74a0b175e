// internal/infra/leadcsv/loader.go
package leadcsv

import (
	"bufio"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"

	"outreach_engine/internal/domain/lead"

	"github.com/sirupsen/logrus"
)

// requiredColumns is the Apollo contact-export header set this loader
// understands. Website and Industry are optional extras.
var requiredColumns = []string{
	"First Name", "Last Name", "Email", "Company", "Title", "City", "State", "Country",
}

// Loader reads the recipient pool from an Apollo CSV export. Malformed rows
// are logged and skipped, never fatal; a missing file or header is fatal
// since it means there is no pool at all.
type Loader struct {
	path string
	log  *logrus.Logger
}

func NewLoader(path string, log *logrus.Logger) *Loader {
	return &Loader{path: path, log: log}
}

// Load parses, validates and deduplicates the pool. Order is preserved so
// scheduling stays stable across runs of the same import.
func (ld *Loader) Load(ctx context.Context) ([]lead.Lead, error) {
	f, err := os.Open(ld.path)
	if err != nil {
		return nil, fmt.Errorf("open leads file: %w", err)
	}
	defer f.Close()

	br := bufio.NewReader(f)
	stripBOM(br)

	r := csv.NewReader(br)
	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("leads file %s appears to be empty or invalid: %w", ld.path, err)
	}

	col := make(map[string]int, len(header))
	for i, name := range header {
		col[strings.TrimSpace(name)] = i
	}
	var missing []string
	for _, want := range requiredColumns {
		if _, ok := col[want]; !ok {
			missing = append(missing, want)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("leads file %s is missing required columns: %s (available: %s)",
			ld.path, strings.Join(missing, ", "), strings.Join(header, ", "))
	}

	field := func(rec []string, name string) string {
		i, ok := col[name]
		if !ok || i >= len(rec) {
			return ""
		}
		return strings.TrimSpace(rec[i])
	}

	var (
		pool []lead.Lead
		seen = make(map[string]struct{})
	)
	for rowNum := 2; ; rowNum++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			ld.log.Warnf("Leads row %d unreadable, skipping: %v", rowNum, err)
			continue
		}

		l := lead.Lead{
			Email:        lead.NormalizeEmail(field(rec, "Email")),
			FirstName:    field(rec, "First Name"),
			LastName:     field(rec, "Last Name"),
			Organization: field(rec, "Company"),
			Title:        field(rec, "Title"),
			City:         field(rec, "City"),
			State:        field(rec, "State"),
			Country:      field(rec, "Country"),
			Website:      field(rec, "Website"),
			Industry:     field(rec, "Industry"),
		}
		if err := l.Validate(); err != nil {
			ld.log.Warnf("Leads row %d skipped: %v", rowNum, err)
			continue
		}
		if _, dup := seen[l.Email]; dup {
			ld.log.Debugf("Leads row %d duplicates %s, skipping", rowNum, l.Email)
			continue
		}
		seen[l.Email] = struct{}{}
		pool = append(pool, l)
	}

	ld.log.Infof("Loaded %d leads from %s", len(pool), ld.path)
	return pool, nil
}

// stripBOM discards a UTF-8 byte order mark if the export carries one.
func stripBOM(br *bufio.Reader) {
	b, err := br.Peek(3)
	if err == nil && b[0] == 0xEF && b[1] == 0xBB && b[2] == 0xBF {
		_, _ = br.Discard(3)
	}
}
