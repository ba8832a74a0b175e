package notify

import (
	"context"

	"outreach_engine/internal/domain/campaign"
)

// Notifier reports a finished cycle to an operator channel. Notification
// failures are logged by callers and never affect the cycle outcome.
type Notifier interface {
	CycleFinished(ctx context.Context, s *campaign.Summary) error
}

// Noop is used when no operator channel is configured.
type Noop struct{}

func (Noop) CycleFinished(context.Context, *campaign.Summary) error { return nil }
