package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// CycleScheduler triggers the campaign dispatch job on a cron spec in daemon
// mode. Overlapping runs are not prevented here; a second cycle started
// while one is still sending fails fast on the ledger lock instead.
type CycleScheduler struct {
	cronEngine *cron.Cron
	spec       string
	job        func(context.Context)
	log        *logrus.Logger
}

// New builds the scheduler around a dispatch job. The cron engine runs on
// local time because daily quotas are local calendar days.
func New(spec string, job func(context.Context), log *logrus.Logger) *CycleScheduler {
	return &CycleScheduler{
		cronEngine: cron.New(cron.WithLocation(time.Local)),
		spec:       spec,
		job:        job,
		log:        log,
	}
}

// Start registers the dispatch job and launches the cron engine. The given
// context is handed to every triggered cycle, so cancelling it interrupts a
// running cycle between sends.
func (s *CycleScheduler) Start(ctx context.Context) error {
	_, err := s.cronEngine.AddFunc(s.spec, func() {
		s.log.Infof("Cron trigger fired, starting campaign cycle")
		s.job(ctx)
	})
	if err != nil {
		return fmt.Errorf("register dispatch job for spec %q: %w", s.spec, err)
	}

	s.cronEngine.Start()
	s.log.Infof("Cycle scheduler started with spec %q", s.spec)
	return nil
}

// Stop halts scheduling and waits for a running job to return.
func (s *CycleScheduler) Stop() {
	s.log.Info("Stopping cycle scheduler...")
	<-s.cronEngine.Stop().Done()
	s.log.Info("Cycle scheduler stopped")
}
