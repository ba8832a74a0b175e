// internal/infra/ledger/filelock.go
package ledger

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"outreach_engine/internal/domain/campaign"
)

// FileLock is the advisory lock paired with the CSV ledger: an exclusive
// lock file beside the ledger holding the owner's pid. It only guards
// cooperating engine processes; nothing prevents other programs from
// touching the ledger file.
type FileLock struct {
	path string
}

// NewFileLock derives the lock path from the ledger path.
func NewFileLock(ledgerPath string) *FileLock {
	return &FileLock{path: ledgerPath + ".lock"}
}

// Acquire creates the lock file exclusively. A lock already on disk means
// another cycle is running against this ledger (or crashed without cleanup);
// either way the caller must fail fast rather than risk double-sending.
func (l *FileLock) Acquire(_ context.Context) error {
	f, err := os.OpenFile(l.path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		if os.IsExist(err) {
			return fmt.Errorf("%w: %s exists; remove it if no other sender is running", campaign.ErrLockHeld, l.path)
		}
		return fmt.Errorf("%w: create lock %s: %v", campaign.ErrLedgerIO, l.path, err)
	}
	defer f.Close()

	if _, err := f.WriteString(strconv.Itoa(os.Getpid()) + "\n"); err != nil {
		os.Remove(l.path)
		return fmt.Errorf("%w: write lock %s: %v", campaign.ErrLedgerIO, l.path, err)
	}
	return nil
}

// Release removes the lock file.
func (l *FileLock) Release() error {
	if err := os.Remove(l.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("release lock %s: %w", l.path, err)
	}
	return nil
}
