package app

import (
	"context"
	"math/rand"
	"time"

	"outreach_engine/internal/domain/campaign"

	"github.com/sirupsen/logrus"
)

// Pacer blocks between consecutive sends. The wait is an anti-detection rate
// limit, not a performance knob: it must still happen when the transport is
// swapped out, which is why only the pacer itself is injectable.
type Pacer interface {
	// Pause blocks for one inter-send delay appropriate to the category,
	// returning ctx.Err() early when the cycle is interrupted.
	Pause(ctx context.Context, c campaign.Category) error
}

// DelayRange bounds the randomized pacing delay for one traffic category.
type DelayRange struct {
	Min time.Duration
	Max time.Duration
}

// RandomPacer draws a uniform delay from the category's range. Filler
// traffic waits longer between sends (1-3 minutes by default) than outreach
// (30 seconds to 2 minutes).
type RandomPacer struct {
	outreach DelayRange
	filler   DelayRange
	rnd      *rand.Rand
	log      *logrus.Logger
}

func NewRandomPacer(outreach, filler DelayRange, log *logrus.Logger) *RandomPacer {
	return &RandomPacer{
		outreach: outreach,
		filler:   filler,
		rnd:      rand.New(rand.NewSource(time.Now().UnixNano())),
		log:      log,
	}
}

func (p *RandomPacer) Pause(ctx context.Context, c campaign.Category) error {
	r := p.outreach
	if c == campaign.CategoryFiller {
		r = p.filler
	}
	d := r.Min
	if span := r.Max - r.Min; span > 0 {
		d += time.Duration(p.rnd.Int63n(int64(span) + 1))
	}
	p.log.Infof("Pacing: waiting %s before the next send", d.Round(time.Second))
	return sleep(ctx, d)
}

// sleep waits for d unless the context ends first.
func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
