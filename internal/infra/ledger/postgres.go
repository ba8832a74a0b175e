// internal/infra/ledger/postgres.go
package ledger

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"outreach_engine/internal/domain/campaign"

	_ "github.com/lib/pq" // PostgreSQL driver
)

const (
	defaultMaxOpenConns    = 25
	defaultMaxIdleConns    = 25
	defaultConnMaxLifetime = 5 * time.Minute
	defaultConnMaxIdleTime = 1 * time.Minute
)

// advisoryLockKey identifies the dispatch lock in pg_locks. One key per
// database: one scheduler instance per ledger.
const advisoryLockKey int64 = 931007041

// NewPostgresConnection creates and returns a new PostgreSQL database connection.
// It also pings the database to ensure connectivity.
func NewPostgresConnection(dataSourceName string) (*sql.DB, error) {
	db, err := sql.Open("postgres", dataSourceName)
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection: %w", err)
	}

	db.SetMaxOpenConns(defaultMaxOpenConns)
	db.SetMaxIdleConns(defaultMaxIdleConns)
	db.SetConnMaxLifetime(defaultConnMaxLifetime)
	db.SetConnMaxIdleTime(defaultConnMaxIdleTime)

	if err = db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return db, nil
}

// Postgres is the database-backed ledger. The table is append-only: this
// type issues no UPDATE or DELETE, and append order is preserved by the
// bigserial id.
type Postgres struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

func (p *Postgres) Append(ctx context.Context, e campaign.Entry) error {
	query := `INSERT INTO campaign_ledger
                (sent_at, email, subject, status, category, first_name, last_name, organization, template_used, followup_sequence)
               VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	_, err := p.db.ExecContext(ctx, query,
		e.Timestamp, e.RecipientKey, e.Subject, string(e.Outcome), string(e.Category),
		e.FirstName, e.LastName, e.Organization, e.TemplateUsed, e.Sequence)
	if err != nil {
		return fmt.Errorf("%w: insert ledger entry: %v", campaign.ErrLedgerIO, err)
	}
	return nil
}

func (p *Postgres) Scan(ctx context.Context, fn func(campaign.Entry) error) error {
	query := `SELECT sent_at, email, subject, status, category, first_name, last_name, organization, template_used, followup_sequence
               FROM campaign_ledger ORDER BY id`
	rows, err := p.db.QueryContext(ctx, query)
	if err != nil {
		return fmt.Errorf("%w: query ledger: %v", campaign.ErrLedgerIO, err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			e                 campaign.Entry
			outcome, category string
		)
		if err := rows.Scan(&e.Timestamp, &e.RecipientKey, &e.Subject, &outcome, &category,
			&e.FirstName, &e.LastName, &e.Organization, &e.TemplateUsed, &e.Sequence); err != nil {
			return fmt.Errorf("%w: scan ledger row: %v", campaign.ErrLedgerIO, err)
		}
		e.Outcome = campaign.Outcome(outcome)
		e.Category = campaign.Category(category)
		if err := fn(e); err != nil {
			return err
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("%w: iterate ledger rows: %v", campaign.ErrLedgerIO, err)
	}
	return nil
}

// AdvisoryLock serializes cycles through pg_try_advisory_lock. The lock is
// session scoped: it rides a dedicated connection held until Release, so a
// crashed process drops it automatically.
type AdvisoryLock struct {
	db   *sql.DB
	conn *sql.Conn
}

func NewAdvisoryLock(db *sql.DB) *AdvisoryLock {
	return &AdvisoryLock{db: db}
}

func (l *AdvisoryLock) Acquire(ctx context.Context) error {
	conn, err := l.db.Conn(ctx)
	if err != nil {
		return fmt.Errorf("%w: acquire lock connection: %v", campaign.ErrLedgerIO, err)
	}

	var locked bool
	if err := conn.QueryRowContext(ctx, `SELECT pg_try_advisory_lock($1)`, advisoryLockKey).Scan(&locked); err != nil {
		conn.Close()
		return fmt.Errorf("%w: try advisory lock: %v", campaign.ErrLedgerIO, err)
	}
	if !locked {
		conn.Close()
		return fmt.Errorf("%w: another dispatch session holds the ledger lock", campaign.ErrLockHeld)
	}
	l.conn = conn
	return nil
}

func (l *AdvisoryLock) Release() error {
	if l.conn == nil {
		return nil
	}
	_, err := l.conn.ExecContext(context.Background(), `SELECT pg_advisory_unlock($1)`, advisoryLockKey)
	closeErr := l.conn.Close()
	l.conn = nil
	if err != nil {
		return fmt.Errorf("advisory unlock: %w", err)
	}
	return closeErr
}
