package telegram

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"outreach_engine/internal/domain/campaign"
)

func TestFormatSummary(t *testing.T) {
	s := campaign.NewSummary("0a1b2c3d-4e5f-6789-abcd-ef0123456789", time.Date(2026, 3, 15, 9, 0, 0, 0, time.UTC))
	s.FinishedAt = s.StartedAt.Add(47*time.Minute + 12*time.Second)
	s.Record(campaign.CategoryFirstTouch, campaign.OutcomeSent)
	s.Record(campaign.CategoryFirstTouch, campaign.OutcomeSent)
	s.Record(campaign.CategoryFollowUp, campaign.OutcomeSent)
	s.Record(campaign.CategoryFiller, campaign.OutcomeSent)
	s.Record(campaign.CategoryFirstTouch, campaign.OutcomeFailed)

	got := formatSummary(s)

	assert.Equal(t, "Campaign cycle 0a1b2c3d finished\n"+
		"First touch: 2 sent\n"+
		"Follow-up: 1 sent\n"+
		"Filler: 1 sent\n"+
		"Failed: 1\n"+
		"Duration: 47m12s", got)
}

func TestFormatSummaryEmptyCycle(t *testing.T) {
	s := campaign.NewSummary("run", time.Date(2026, 3, 15, 9, 0, 0, 0, time.UTC))
	s.FinishedAt = s.StartedAt

	got := formatSummary(s)
	assert.Contains(t, got, "Campaign cycle run finished")
	assert.Contains(t, got, "First touch: 0 sent")
	assert.Contains(t, got, "Duration: 0s")
}
