package app

import (
	"context"
	"fmt"
	"time"

	"outreach_engine/internal/domain/campaign"
	"outreach_engine/internal/domain/lead"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// CycleConfig carries the scheduling shape of one campaign cycle.
type CycleConfig struct {
	Ceilings         campaign.Ceilings
	Policy           campaign.Policy
	SubBatchSize     int
	InitialBurstSize int
}

// CampaignService runs one dispatch cycle: derive today's quota and every
// recipient's contact history from the ledger, queue the eligible
// candidates, then alternate filler and outreach sends through the executor
// until quota or candidates run out. Nothing is cached between cycles; an
// interrupted cycle resumes by simply running again.
type CampaignService struct {
	ledger campaign.Ledger
	locker campaign.Locker
	leads  lead.Source
	filler campaign.FillerSource
	exec   *Executor
	clock  Clock
	cfg    CycleConfig
	log    *logrus.Logger
}

func NewCampaignService(
	ledger campaign.Ledger,
	locker campaign.Locker,
	leads lead.Source,
	filler campaign.FillerSource,
	exec *Executor,
	clock Clock,
	cfg CycleConfig,
	log *logrus.Logger,
) *CampaignService {
	return &CampaignService{
		ledger: ledger,
		locker: locker,
		leads:  leads,
		filler: filler,
		exec:   exec,
		clock:  clock,
		cfg:    cfg,
		log:    log,
	}
}

// queues holds one cycle's outreach candidates. Fresh recipients are always
// drained before follow-ups.
type queues struct {
	fresh    []campaign.Candidate
	followUp []campaign.Candidate
}

func (q *queues) next() campaign.Candidate {
	if len(q.fresh) > 0 {
		c := q.fresh[0]
		q.fresh = q.fresh[1:]
		return c
	}
	c := q.followUp[0]
	q.followUp = q.followUp[1:]
	return c
}

func (q *queues) len() int { return len(q.fresh) + len(q.followUp) }

// Run executes one cycle. The summary is non-nil whenever the cycle got far
// enough to attempt sends, even when it is interrupted or hits a ledger
// failure partway through.
func (s *CampaignService) Run(ctx context.Context) (*campaign.Summary, error) {
	runID := uuid.NewString()
	log := s.log.WithField("cycle", runID[:8])

	// One scheduler per ledger: a held lock means another cycle is live (or
	// crashed without cleanup) and racing it could double-send.
	if err := s.locker.Acquire(ctx); err != nil {
		return nil, fmt.Errorf("cycle lock: %w", err)
	}
	defer func() {
		if err := s.locker.Release(); err != nil {
			log.Warnf("Releasing cycle lock: %v", err)
		}
	}()

	now := s.clock.Now()
	quota, err := campaign.BuildQuota(ctx, s.ledger, s.cfg.Ceilings, now)
	if err != nil {
		return nil, fmt.Errorf("derive today's quota: %w", err)
	}
	log.Infof("Quota remaining today: %d outreach, %d filler",
		quota.Remaining(campaign.CategoryFirstTouch), quota.Remaining(campaign.CategoryFiller))

	summary := campaign.NewSummary(runID, now)
	if quota.Exhausted() {
		log.Info("All daily limits reached, nothing to do")
		return s.finish(log, summary), nil
	}

	q, err := s.buildQueues(ctx, log, quota, now)
	if err != nil {
		return nil, err
	}

	if err := s.fillerBurst(ctx, log, quota, summary); err != nil {
		return s.finish(log, summary), err
	}
	if err := s.interleave(ctx, log, quota, summary, q); err != nil {
		return s.finish(log, summary), err
	}
	return s.finish(log, summary), nil
}

// buildQueues folds the ledger into per-recipient histories and classifies
// the imported pool. Recipients already at the outreach cap today skip the
// import entirely, matching a cycle that only has filler budget left.
func (s *CampaignService) buildQueues(ctx context.Context, log *logrus.Entry, quota *campaign.Quota, now time.Time) (*queues, error) {
	q := &queues{}
	if quota.Remaining(campaign.CategoryFirstTouch) == 0 {
		log.Info("Outreach at daily cap, skipping lead import")
		return q, nil
	}

	histories, err := campaign.BuildHistories(ctx, s.ledger)
	if err != nil {
		return nil, fmt.Errorf("derive contact history: %w", err)
	}

	pool, err := s.leads.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load recipient pool: %w", err)
	}

	var waiting, exhausted int
	for _, l := range pool {
		switch elig := s.cfg.Policy.Evaluate(histories[l.Email], now); elig.Status {
		case campaign.EligibilityFresh:
			q.fresh = append(q.fresh, campaign.Candidate{
				Lead:     l,
				Category: campaign.CategoryFirstTouch,
			})
		case campaign.EligibilityFollowUpDue:
			q.followUp = append(q.followUp, campaign.Candidate{
				Lead:          l,
				Category:      campaign.CategoryFollowUp,
				Sequence:      elig.Sequence,
				DaysSinceLast: elig.DaysSinceLast,
			})
		case campaign.EligibilityFollowUpNotDue:
			waiting++
		case campaign.EligibilityExhausted:
			exhausted++
		}
	}
	log.Infof("Candidates: %d fresh, %d follow-ups due, %d waiting, %d exhausted",
		len(q.fresh), len(q.followUp), waiting, exhausted)
	return q, nil
}

// fillerBurst opens the cycle with a short run of reputation traffic: one
// batch, paced between its sends. It runs even when outreach is already at
// cap, so filler-only days still exercise the sender.
func (s *CampaignService) fillerBurst(ctx context.Context, log *logrus.Entry, quota *campaign.Quota, summary *campaign.Summary) error {
	burst := min(s.cfg.InitialBurstSize, quota.Remaining(campaign.CategoryFiller))
	if burst <= 0 {
		return nil
	}
	log.Infof("Phase 1: initial filler burst of %d", burst)

	for i := 0; i < burst; i++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := s.sendOne(ctx, s.filler.Next(), quota, summary); err != nil {
			return err
		}
		if i < burst-1 {
			if err := s.exec.Pace(ctx, campaign.CategoryFiller); err != nil {
				return err
			}
		}
	}
	return nil
}

// interleave is the main phase: one filler send as padding, then an outreach
// sub-batch preferring fresh recipients, repeated while outreach quota and
// candidates last. Filler never continues alone once outreach is done.
func (s *CampaignService) interleave(ctx context.Context, log *logrus.Entry, quota *campaign.Quota, summary *campaign.Summary, q *queues) error {
	if quota.Remaining(campaign.CategoryFirstTouch) == 0 || q.len() == 0 {
		return nil
	}
	log.Infof("Phase 2: alternating 1 filler / up to %d outreach", s.cfg.SubBatchSize)

	for quota.Remaining(campaign.CategoryFirstTouch) > 0 && q.len() > 0 {
		if err := ctx.Err(); err != nil {
			return err
		}

		if quota.Remaining(campaign.CategoryFiller) > 0 {
			if err := s.sendOne(ctx, s.filler.Next(), quota, summary); err != nil {
				return err
			}
		}

		batch := min(s.cfg.SubBatchSize, quota.Remaining(campaign.CategoryFirstTouch), q.len())
		for i := 0; i < batch; i++ {
			if err := ctx.Err(); err != nil {
				return err
			}
			cand := q.next()
			if err := s.sendOne(ctx, cand, quota, summary); err != nil {
				return err
			}
			if i < batch-1 {
				if err := s.exec.Pace(ctx, cand.Category); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

func (s *CampaignService) sendOne(ctx context.Context, cand campaign.Candidate, quota *campaign.Quota, summary *campaign.Summary) error {
	outcome, err := s.exec.Send(ctx, cand)
	if err != nil {
		return err
	}
	summary.Record(cand.Category, outcome)
	// Only delivered sends spend quota; a failure leaves budget for a
	// replacement candidate later in the cycle.
	if outcome == campaign.OutcomeSent {
		quota.Consume(cand.Category)
	}
	return nil
}

func (s *CampaignService) finish(log *logrus.Entry, summary *campaign.Summary) *campaign.Summary {
	summary.FinishedAt = s.clock.Now()
	log.WithFields(logrus.Fields{
		"first_touch": summary.Sent[campaign.CategoryFirstTouch],
		"follow_up":   summary.Sent[campaign.CategoryFollowUp],
		"filler":      summary.Sent[campaign.CategoryFiller],
		"failed":      summary.FailedTotal(),
		"duration":    summary.Duration().Round(time.Second).String(),
	}).Info("Cycle finished")
	return summary
}
