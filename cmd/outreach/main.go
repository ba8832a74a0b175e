package main

import (
	"context"
	"flag"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"outreach_engine/internal/app"
	"outreach_engine/internal/domain/campaign"
	"outreach_engine/internal/domain/mail"
	"outreach_engine/internal/domain/notify"
	"outreach_engine/internal/infra/config"
	"outreach_engine/internal/infra/leadcsv"
	"outreach_engine/internal/infra/ledger"
	"outreach_engine/internal/infra/logger"
	"outreach_engine/internal/infra/scheduler"
	"outreach_engine/internal/infra/smtptransport"
	"outreach_engine/internal/infra/telegram"
	"outreach_engine/internal/infra/template"
	"outreach_engine/internal/infra/warmup"

	"github.com/sirupsen/logrus"
	"gopkg.in/telebot.v3"
)

func main() {
	daemon := flag.Bool("daemon", false, "keep running and dispatch a cycle on the configured cron schedule")
	stats := flag.Bool("stats", false, "print lifetime ledger statistics and exit")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		logger.Log.Fatalf("Could not load configuration: %v", err)
	}
	logger.Init(cfg)
	log := logger.Get()

	log.Infof("Outreach dispatch engine starting (environment: %s, ledger driver: %s)",
		cfg.Environment, cfg.LedgerDriver)

	led, locker, cleanup, err := buildLedger(cfg)
	if err != nil {
		log.Fatalf("Ledger setup failed: %v", err)
	}
	defer cleanup()

	if *stats {
		if err := printStats(context.Background(), led); err != nil {
			log.Fatalf("Reading ledger statistics: %v", err)
		}
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	transport := smtptransport.New(cfg.SMTPServer, cfg.SMTPPort, cfg.EmailAddress, cfg.EmailPassword, log)
	preflightCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	err = transport.VerifyConnection(preflightCtx)
	cancel()
	if err != nil {
		log.Fatalf("SMTP preflight failed: %v", err)
	}
	log.Infof("SMTP connection to %s:%d verified", cfg.SMTPServer, cfg.SMTPPort)

	service := buildService(cfg, led, locker, transport, log)
	notifier := buildNotifier(cfg, log)

	if *daemon {
		runDaemon(ctx, cfg, service, notifier, log)
		return
	}

	if err := dispatch(ctx, service, notifier, log); err != nil {
		log.Fatalf("Cycle aborted: %v", err)
	}
}

func buildLedger(cfg *config.AppConfig) (campaign.Ledger, campaign.Locker, func(), error) {
	switch cfg.LedgerDriver {
	case config.LedgerDriverPostgres:
		if cfg.RunMigrations {
			if err := ledger.Migrate(cfg.DatabaseURL); err != nil {
				return nil, nil, nil, fmt.Errorf("apply migrations: %w", err)
			}
		}
		db, err := ledger.NewPostgresConnection(cfg.DatabaseURL)
		if err != nil {
			return nil, nil, nil, err
		}
		return ledger.NewPostgres(db), ledger.NewAdvisoryLock(db), func() { db.Close() }, nil
	default:
		l, err := ledger.NewCSV(cfg.LedgerFile)
		if err != nil {
			return nil, nil, nil, err
		}
		return l, ledger.NewFileLock(cfg.LedgerFile), func() {}, nil
	}
}

func buildService(cfg *config.AppConfig, led campaign.Ledger, locker campaign.Locker, transport mail.Transport, log *logrus.Logger) *app.CampaignService {
	pacer := app.NewRandomPacer(
		app.DelayRange{Min: cfg.OutreachDelayMin, Max: cfg.OutreachDelayMax},
		app.DelayRange{Min: cfg.FillerDelayMin, Max: cfg.FillerDelayMax},
		log,
	)
	executor := app.NewExecutor(
		template.NewEngine(),
		transport,
		led,
		pacer,
		app.SystemClock{},
		app.RetryPolicy{MaxAttempts: cfg.MaxRetries, Wait: cfg.RetryWait},
		log,
	)
	return app.NewCampaignService(
		led,
		locker,
		leadcsv.NewLoader(cfg.LeadsFile, log),
		warmup.NewPool(cfg.WarmupAddresses),
		executor,
		app.SystemClock{},
		app.CycleConfig{
			Ceilings: campaign.Ceilings{Outreach: cfg.FirstTouchDailyCap, Filler: cfg.FillerDailyCap},
			Policy: campaign.Policy{
				FollowUpIntervals: cfg.FollowUpIntervals,
				MaxFollowUps:      cfg.MaxFollowUps,
			},
			SubBatchSize:     cfg.SubBatchSize,
			InitialBurstSize: cfg.InitialBurstSize,
		},
		log,
	)
}

func buildNotifier(cfg *config.AppConfig, log *logrus.Logger) notify.Notifier {
	if !cfg.NotifierEnabled() {
		return notify.Noop{}
	}
	bot, err := telebot.NewBot(telebot.Settings{Token: cfg.TelegramToken})
	if err != nil {
		log.Warnf("Telegram notifier disabled, could not create bot: %v", err)
		return notify.Noop{}
	}
	return telegram.NewNotifier(bot, cfg.OperatorChatID, log)
}

// dispatch runs one cycle and reports it. The summary is logged and pushed
// to the operator channel even when the cycle ended early.
func dispatch(ctx context.Context, service *app.CampaignService, notifier notify.Notifier, log *logrus.Logger) error {
	summary, err := service.Run(ctx)
	if summary != nil {
		report(summary, log)
		// The signal context may already be cancelled; still try to notify.
		notifyCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		if nerr := notifier.CycleFinished(notifyCtx, summary); nerr != nil {
			log.Warnf("Operator notification failed: %v", nerr)
		}
		cancel()
	}
	return err
}

func runDaemon(ctx context.Context, cfg *config.AppConfig, service *app.CampaignService, notifier notify.Notifier, log *logrus.Logger) {
	sched := scheduler.New(cfg.CronSpecDailySend, func(jobCtx context.Context) {
		if err := dispatch(jobCtx, service, notifier, log); err != nil {
			log.Errorf("Scheduled cycle failed: %v", err)
		}
	}, log)

	if err := sched.Start(ctx); err != nil {
		log.Fatalf("Starting scheduler: %v", err)
	}
	log.Infof("Daemon mode: dispatching on cron spec %q", cfg.CronSpecDailySend)

	<-ctx.Done()
	log.Info("Shutting down...")
	sched.Stop()
}

func report(s *campaign.Summary, log *logrus.Logger) {
	log.Infof("Cycle %s report:", s.ShortID())
	log.Infof("  First touch sent: %d", s.Sent[campaign.CategoryFirstTouch])
	log.Infof("  Follow-up sent:   %d", s.Sent[campaign.CategoryFollowUp])
	log.Infof("  Filler sent:      %d", s.Sent[campaign.CategoryFiller])
	log.Infof("  Failed:           %d", s.FailedTotal())
	log.Infof("  Duration:         %s", s.Duration().Round(time.Second))
}

func printStats(ctx context.Context, led campaign.Ledger) error {
	stats, err := campaign.BuildStats(ctx, led)
	if err != nil {
		return err
	}
	fmt.Println("Ledger statistics:")
	fmt.Printf("  Total attempts: %d\n", stats.TotalAttempts)
	fmt.Printf("  Sent:           %d (first touch %d, follow-up %d, filler %d)\n",
		stats.TotalSent,
		stats.SentByCategory[campaign.CategoryFirstTouch],
		stats.SentByCategory[campaign.CategoryFollowUp],
		stats.SentByCategory[campaign.CategoryFiller])
	fmt.Printf("  Failed:         %d\n", stats.TotalFailed)
	fmt.Printf("  Success rate:   %.1f%%\n", stats.SuccessRate())
	return nil
}
