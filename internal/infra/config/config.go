package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// ErrConfig marks missing or invalid configuration. Config failures are
// fatal before any send is attempted.
var ErrConfig = errors.New("invalid configuration")

// Ledger driver selection values.
const (
	LedgerDriverCSV      = "csv"
	LedgerDriverPostgres = "postgres"
)

// AppConfig holds all configuration for the application. Values come from
// the environment with an optional .env file; every dispatch knob carries
// the documented default so a minimal .env only needs SMTP credentials.
type AppConfig struct {
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`

	// Ledger backend: csv (file beside the binary) or postgres.
	LedgerDriver  string `env:"LEDGER_DRIVER" envDefault:"csv"`
	LedgerFile    string `env:"LEDGER_FILE" envDefault:"sent_log.csv"`
	DatabaseURL   string `env:"DATABASE_URL"`
	RunMigrations bool   `env:"RUN_MIGRATIONS" envDefault:"true"`

	LeadsFile string `env:"LEADS_FILE" envDefault:"apollo-contacts-export.csv"`

	SMTPServer    string `env:"SMTP_SERVER"`
	SMTPPort      int    `env:"SMTP_PORT" envDefault:"587"`
	EmailAddress  string `env:"EMAIL_ADDRESS"`
	EmailPassword string `env:"EMAIL_PASSWORD"`

	// Daily ceilings. Follow-ups spend the first-touch budget.
	FirstTouchDailyCap int `env:"FIRST_TOUCH_DAILY_CAP" envDefault:"15"`
	FillerDailyCap     int `env:"FILLER_DAILY_CAP" envDefault:"5"`

	// Delivery retry policy: total transport attempts per candidate and the
	// fixed wait between them.
	MaxRetries int           `env:"MAX_RETRIES" envDefault:"3"`
	RetryWait  time.Duration `env:"RETRY_WAIT" envDefault:"5s"`

	// Pacing delay ranges between sends, per traffic category.
	FillerDelayMin   time.Duration `env:"FILLER_DELAY_MIN" envDefault:"60s"`
	FillerDelayMax   time.Duration `env:"FILLER_DELAY_MAX" envDefault:"180s"`
	OutreachDelayMin time.Duration `env:"OUTREACH_DELAY_MIN" envDefault:"30s"`
	OutreachDelayMax time.Duration `env:"OUTREACH_DELAY_MAX" envDefault:"120s"`

	// Follow-up escalation: days to wait before sequence n, and the highest
	// sequence ever sent.
	FollowUpIntervals []int `env:"FOLLOWUP_INTERVALS" envDefault:"7,14,21"`
	MaxFollowUps      int   `env:"MAX_FOLLOWUPS" envDefault:"3"`

	// Scheduler shape: outreach sub-batch size inside the interleave phase
	// and the filler burst that opens a cycle.
	SubBatchSize     int `env:"SUBBATCH_SIZE" envDefault:"3"`
	InitialBurstSize int `env:"INITIAL_BURST_SIZE" envDefault:"5"`

	// WarmupAddresses overrides the built-in filler mailbox pool.
	WarmupAddresses []string `env:"WARMUP_ADDRESSES"`

	// Optional operator notification channel; both must be set to enable it.
	TelegramToken  string `env:"TELEGRAM_TOKEN"`
	OperatorChatID int64  `env:"OPERATOR_CHAT_ID"`

	// Daemon mode: cron spec for the daily cycle.
	CronSpecDailySend string `env:"CRON_SPEC_DAILY_SEND" envDefault:"0 9 * * *"`
}

// Load reads configuration from environment variables and .env file (if present).
func Load() (*AppConfig, error) {
	// Attempt to load .env file. Errors are ignored if the file doesn't exist.
	// godotenv.Load will not override existing env variables.
	_ = godotenv.Load()

	cfg := &AppConfig{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfig, err)
	}
	cfg.LedgerDriver = strings.ToLower(cfg.LedgerDriver)
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *AppConfig) validate() error {
	for name, value := range map[string]string{
		"SMTP_SERVER":    c.SMTPServer,
		"EMAIL_ADDRESS":  c.EmailAddress,
		"EMAIL_PASSWORD": c.EmailPassword,
	} {
		if value == "" {
			return fmt.Errorf("%w: %s is not set", ErrConfig, name)
		}
	}
	if c.SMTPPort <= 0 || c.SMTPPort > 65535 {
		return fmt.Errorf("%w: SMTP_PORT %d is out of range", ErrConfig, c.SMTPPort)
	}

	switch c.LedgerDriver {
	case LedgerDriverCSV:
		if c.LedgerFile == "" {
			return fmt.Errorf("%w: LEDGER_FILE is not set", ErrConfig)
		}
	case LedgerDriverPostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("%w: DATABASE_URL is not set", ErrConfig)
		}
	default:
		return fmt.Errorf("%w: unknown LEDGER_DRIVER %q", ErrConfig, c.LedgerDriver)
	}

	if c.FirstTouchDailyCap < 0 || c.FillerDailyCap < 0 {
		return fmt.Errorf("%w: daily caps must not be negative", ErrConfig)
	}
	if c.MaxRetries < 1 {
		return fmt.Errorf("%w: MAX_RETRIES must be at least 1", ErrConfig)
	}
	if c.RetryWait < 0 {
		return fmt.Errorf("%w: RETRY_WAIT must not be negative", ErrConfig)
	}
	if err := validDelayRange("FILLER_DELAY", c.FillerDelayMin, c.FillerDelayMax); err != nil {
		return err
	}
	if err := validDelayRange("OUTREACH_DELAY", c.OutreachDelayMin, c.OutreachDelayMax); err != nil {
		return err
	}

	if c.MaxFollowUps < 0 {
		return fmt.Errorf("%w: MAX_FOLLOWUPS must not be negative", ErrConfig)
	}
	if c.MaxFollowUps > len(c.FollowUpIntervals) {
		return fmt.Errorf("%w: MAX_FOLLOWUPS %d exceeds the %d configured FOLLOWUP_INTERVALS",
			ErrConfig, c.MaxFollowUps, len(c.FollowUpIntervals))
	}
	for _, days := range c.FollowUpIntervals {
		if days < 1 {
			return fmt.Errorf("%w: FOLLOWUP_INTERVALS entries must be at least 1 day", ErrConfig)
		}
	}

	if c.SubBatchSize < 1 {
		return fmt.Errorf("%w: SUBBATCH_SIZE must be at least 1", ErrConfig)
	}
	if c.InitialBurstSize < 0 {
		return fmt.Errorf("%w: INITIAL_BURST_SIZE must not be negative", ErrConfig)
	}

	return nil
}

func validDelayRange(name string, min, max time.Duration) error {
	if min < 0 {
		return fmt.Errorf("%w: %s_MIN must not be negative", ErrConfig, name)
	}
	if max < min {
		return fmt.Errorf("%w: %s_MAX is below %s_MIN", ErrConfig, name, name)
	}
	return nil
}

// NotifierEnabled reports whether the operator Telegram channel is fully
// configured.
func (c *AppConfig) NotifierEnabled() bool {
	return c.TelegramToken != "" && c.OperatorChatID != 0
}
