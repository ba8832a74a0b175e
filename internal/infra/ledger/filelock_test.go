package ledger

import (
	"context"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"outreach_engine/internal/domain/campaign"
)

func TestFileLockAcquireRelease(t *testing.T) {
	ledgerPath := filepath.Join(t.TempDir(), "ledger.csv")
	lock := NewFileLock(ledgerPath)
	ctx := context.Background()

	require.NoError(t, lock.Acquire(ctx))

	raw, err := os.ReadFile(ledgerPath + ".lock")
	require.NoError(t, err)
	assert.Equal(t, strconv.Itoa(os.Getpid()), strings.TrimSpace(string(raw)),
		"lock file names the owning process")

	require.NoError(t, lock.Release())
	_, err = os.Stat(ledgerPath + ".lock")
	assert.True(t, os.IsNotExist(err))
}

func TestFileLockRejectsSecondAcquire(t *testing.T) {
	ledgerPath := filepath.Join(t.TempDir(), "ledger.csv")
	ctx := context.Background()

	first := NewFileLock(ledgerPath)
	require.NoError(t, first.Acquire(ctx))

	second := NewFileLock(ledgerPath)
	err := second.Acquire(ctx)
	require.Error(t, err)
	assert.ErrorIs(t, err, campaign.ErrLockHeld)

	require.NoError(t, first.Release())
	assert.NoError(t, second.Acquire(ctx), "released lock is reusable")
}

func TestFileLockReleaseWithoutLockFile(t *testing.T) {
	lock := NewFileLock(filepath.Join(t.TempDir(), "ledger.csv"))
	assert.NoError(t, lock.Release())
}
