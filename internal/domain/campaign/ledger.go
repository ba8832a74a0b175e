// internal/domain/campaign/ledger.go
package campaign

import (
	"context"
	"fmt"
)

// Errors shared by ledger implementations.
var ErrLedgerIO = fmt.Errorf("ledger I/O failure")
var ErrLockHeld = fmt.Errorf("ledger lock already held")

// Ledger is the append-only system of record for send attempts. There is
// deliberately no update or delete: dedup, follow-up timing and daily
// quota are all derived by replaying the entries.
type Ledger interface {
	// Append durably writes one entry. Implementations must not
	// acknowledge an entry that a crash could silently drop.
	Append(ctx context.Context, e Entry) error

	// Scan replays every entry in append order, invoking fn for each.
	// fn's error stops the scan and is returned as-is. Read failures wrap
	// ErrLedgerIO; callers must treat them as fatal for the cycle, since
	// eligibility and quota cannot be trusted against a half-read ledger.
	Scan(ctx context.Context, fn func(Entry) error) error
}

// Locker serializes cycles against a shared ledger. Two engine processes
// appending to the same ledger would double-spend quota and double-send
// recipients, so a cycle acquires the lock before its first read and holds
// it until after its last write.
type Locker interface {
	// Acquire takes the lock or returns ErrLockHeld when another holder
	// exists. Callers fail the cycle fast rather than wait.
	Acquire(ctx context.Context) error
	Release() error
}
