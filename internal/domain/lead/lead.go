package lead

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
)

// ErrInvalidLead marks a malformed recipient record. Such records are
// skipped and logged; they never abort a cycle.
var ErrInvalidLead = errors.New("invalid lead record")

// Lead is one validated recipient from the import pool. The identity key is
// the normalized email address; everything else is display and
// personalization data. Leads are immutable once loaded for a cycle.
type Lead struct {
	Email        string // normalized: trimmed, lowercased
	FirstName    string
	LastName     string
	Organization string
	Title        string
	City         string
	State        string
	Country      string
	Website      string
	Industry     string
}

// Source yields the validated recipient pool for a cycle. Implementations
// must reject malformed records and deduplicate within the pool; dedup
// against prior contact stays in the eligibility calculator.
type Source interface {
	Load(ctx context.Context) ([]Lead, error)
}

// NormalizeEmail canonicalizes an address for use as the identity key.
func NormalizeEmail(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Validate checks the invariants the scheduler relies on: a parseable
// identity key and non-empty display and organization fields.
func (l Lead) Validate() error {
	if l.Email == "" {
		return fmt.Errorf("%w: missing email", ErrInvalidLead)
	}
	if !validAddress(l.Email) {
		return fmt.Errorf("%w: malformed email %q", ErrInvalidLead, l.Email)
	}
	if l.FirstName == "" || l.LastName == "" {
		return fmt.Errorf("%w: missing first or last name for %s", ErrInvalidLead, l.Email)
	}
	if l.Organization == "" {
		return fmt.Errorf("%w: missing organization for %s", ErrInvalidLead, l.Email)
	}
	return nil
}

// validAddress accepts plain addresses only (no display-name form) and
// requires a dotted domain, mirroring what upstream exports contain.
func validAddress(s string) bool {
	addr, err := mail.ParseAddress(s)
	if err != nil || addr.Address != s {
		return false
	}
	at := strings.LastIndex(s, "@")
	if at < 1 {
		return false
	}
	return strings.Contains(s[at+1:], ".")
}
