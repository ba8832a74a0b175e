package campaign

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildQuotaCountsOnlyToday(t *testing.T) {
	l := &memLedger{entries: []Entry{
		sentEntry("a@example.com", CategoryFirstTouch, 0, now.Add(-days(1))),
		sentEntry("b@example.com", CategoryFirstTouch, 0, now.Add(-2*time.Hour)),
		sentEntry("c@example.com", CategoryFiller, 0, now.Add(-time.Minute)),
	}}

	q, err := BuildQuota(context.Background(), l, Ceilings{Outreach: 15, Filler: 5}, now)
	require.NoError(t, err)

	assert.Equal(t, 14, q.Remaining(CategoryFirstTouch), "yesterday's send must not count")
	assert.Equal(t, 4, q.Remaining(CategoryFiller))
}

func TestBuildQuotaSharesOutreachBucket(t *testing.T) {
	l := &memLedger{entries: []Entry{
		sentEntry("a@example.com", CategoryFirstTouch, 0, now.Add(-time.Hour)),
		sentEntry("b@example.com", CategoryFollowUp, 1, now.Add(-time.Hour)),
		sentEntry("c@example.com", CategoryFollowUp, 2, now.Add(-time.Hour)),
	}}

	q, err := BuildQuota(context.Background(), l, Ceilings{Outreach: 10, Filler: 5}, now)
	require.NoError(t, err)

	assert.Equal(t, 7, q.Remaining(CategoryFirstTouch))
	assert.Equal(t, 7, q.Remaining(CategoryFollowUp), "both outreach categories drain one bucket")
	assert.Equal(t, 5, q.Remaining(CategoryFiller), "filler bucket is untouched by outreach")
}

func TestBuildQuotaIgnoresFailedOutcomes(t *testing.T) {
	l := &memLedger{entries: []Entry{
		failedEntry("a@example.com", CategoryFirstTouch, now.Add(-time.Hour)),
		failedEntry("b@example.com", CategoryFiller, now.Add(-time.Hour)),
	}}

	q, err := BuildQuota(context.Background(), l, Ceilings{Outreach: 2, Filler: 1}, now)
	require.NoError(t, err)

	assert.Equal(t, 2, q.Remaining(CategoryFirstTouch))
	assert.Equal(t, 1, q.Remaining(CategoryFiller))
}

func TestBuildQuotaPropagatesScanFailure(t *testing.T) {
	l := &memLedger{scanErr: ErrLedgerIO}

	_, err := BuildQuota(context.Background(), l, Ceilings{Outreach: 1, Filler: 1}, now)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrLedgerIO)
}

func TestQuotaRemainingClampsAtZero(t *testing.T) {
	q := &Quota{ceilings: Ceilings{Outreach: 1, Filler: 0}}
	q.Consume(CategoryFirstTouch)
	q.Consume(CategoryFollowUp) // over ceiling, e.g. ceiling lowered between runs

	assert.Equal(t, 0, q.Remaining(CategoryFirstTouch))
	assert.Equal(t, 0, q.Remaining(CategoryFiller))
}

func TestQuotaExhausted(t *testing.T) {
	q := &Quota{ceilings: Ceilings{Outreach: 1, Filler: 1}}
	assert.False(t, q.Exhausted())

	q.Consume(CategoryFirstTouch)
	assert.False(t, q.Exhausted(), "filler budget still open")

	q.Consume(CategoryFiller)
	assert.True(t, q.Exhausted())
}

func TestSameCalendarDayConvertsToLocalDate(t *testing.T) {
	// 23:30 UTC on March 14 is already March 15 in UTC+5. A run whose
	// local midnight has passed must count that send as today's.
	local := time.FixedZone("UTC+5", 5*60*60)
	nowLocal := time.Date(2026, time.March, 15, 9, 0, 0, 0, local)
	tsUTC := time.Date(2026, time.March, 14, 23, 30, 0, 0, time.UTC)

	l := &memLedger{entries: []Entry{
		sentEntry("a@example.com", CategoryFirstTouch, 0, tsUTC),
	}}

	q, err := BuildQuota(context.Background(), l, Ceilings{Outreach: 5, Filler: 5}, nowLocal)
	require.NoError(t, err)
	assert.Equal(t, 4, q.Remaining(CategoryFirstTouch))
}

func TestSameCalendarDayRejectsSameInstantDifferentDate(t *testing.T) {
	// 20:00 UTC on March 15 is March 16 in UTC+5; relative to a March 15
	// local "now" that entry belongs to tomorrow and must not count.
	local := time.FixedZone("UTC+5", 5*60*60)
	nowLocal := time.Date(2026, time.March, 15, 9, 0, 0, 0, local)
	tsUTC := time.Date(2026, time.March, 15, 20, 0, 0, 0, time.UTC)

	l := &memLedger{entries: []Entry{
		sentEntry("a@example.com", CategoryFirstTouch, 0, tsUTC),
	}}

	q, err := BuildQuota(context.Background(), l, Ceilings{Outreach: 5, Filler: 5}, nowLocal)
	require.NoError(t, err)
	assert.Equal(t, 5, q.Remaining(CategoryFirstTouch))
}
