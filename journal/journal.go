// Package journal records which review pages a run has written. The output
// files alone cannot tell a finished place from one interrupted mid
// pagination; the journal can.
//
// A DSN starting with postgres:// or postgresql:// is opened with pgx, anything
// else is treated as a SQLite database path.
package journal

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"
)

var ErrRunNotFound = errors.New("run not found")

type PageRecord struct {
	DataID        string
	PageIndex     int
	FileName      string
	NextPageToken string
	CreatedAt     time.Time
}

type Run struct {
	ID         string
	Mode       string
	StartedAt  time.Time
	FinishedAt *time.Time
	Error      string
}

type Journal struct {
	db     *sql.DB
	driver string
}

func Open(ctx context.Context, dsn string) (*Journal, error) {
	driver := "sqlite"
	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") {
		driver = "pgx"
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open journal: %w", err)
	}

	if driver == "sqlite" {
		// a single connection keeps writes serialized
		db.SetMaxOpenConns(1)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to connect to journal: %w", err)
	}

	j := &Journal{db: db, driver: driver}

	if err := j.migrate(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize journal schema: %w", err)
	}

	return j, nil
}

func (j *Journal) Close() error {
	return j.db.Close()
}

func (j *Journal) StartRun(ctx context.Context, mode string) (string, error) {
	id := uuid.New().String()

	_, err := j.db.ExecContext(ctx,
		j.rebind(`INSERT INTO runs (id, mode, started_at) VALUES ($1, $2, $3)`),
		id, mode, formatTime(time.Now()),
	)
	if err != nil {
		return "", fmt.Errorf("failed to start run: %w", err)
	}

	return id, nil
}

// FinishRun marks the run done, storing runErr's message when not nil.
func (j *Journal) FinishRun(ctx context.Context, runID string, runErr error) error {
	msg := ""
	if runErr != nil {
		msg = runErr.Error()
	}

	res, err := j.db.ExecContext(ctx,
		j.rebind(`UPDATE runs SET finished_at = $1, error = $2 WHERE id = $3`),
		formatTime(time.Now()), msg, runID,
	)
	if err != nil {
		return fmt.Errorf("failed to finish run: %w", err)
	}

	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("%w: %s", ErrRunNotFound, runID)
	}

	return nil
}

func (j *Journal) RecordPage(ctx context.Context, runID string, rec PageRecord) error {
	createdAt := rec.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	_, err := j.db.ExecContext(ctx, j.rebind(`
		INSERT INTO pages (run_id, data_id, page_index, file_name, next_page_token, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (run_id, data_id, page_index) DO UPDATE SET
			file_name = excluded.file_name,
			next_page_token = excluded.next_page_token,
			created_at = excluded.created_at`),
		runID, rec.DataID, rec.PageIndex, rec.FileName, rec.NextPageToken, formatTime(createdAt),
	)
	if err != nil {
		return fmt.Errorf("failed to record page %d of %s: %w", rec.PageIndex, rec.DataID, err)
	}

	return nil
}

func (j *Journal) Run(ctx context.Context, runID string) (Run, error) {
	var (
		run        Run
		startedAt  string
		finishedAt sql.NullString
	)

	err := j.db.QueryRowContext(ctx,
		j.rebind(`SELECT id, mode, started_at, finished_at, error FROM runs WHERE id = $1`),
		runID,
	).Scan(&run.ID, &run.Mode, &startedAt, &finishedAt, &run.Error)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Run{}, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
		}

		return Run{}, err
	}

	run.StartedAt = parseTime(startedAt)

	if finishedAt.Valid {
		t := parseTime(finishedAt.String)
		run.FinishedAt = &t
	}

	return run, nil
}

// Runs lists every run, oldest first.
func (j *Journal) Runs(ctx context.Context) ([]Run, error) {
	rows, err := j.db.QueryContext(ctx,
		`SELECT id, mode, started_at, finished_at, error FROM runs ORDER BY started_at, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ans []Run

	for rows.Next() {
		var (
			run        Run
			startedAt  string
			finishedAt sql.NullString
		)

		if err := rows.Scan(&run.ID, &run.Mode, &startedAt, &finishedAt, &run.Error); err != nil {
			return nil, err
		}

		run.StartedAt = parseTime(startedAt)

		if finishedAt.Valid {
			t := parseTime(finishedAt.String)
			run.FinishedAt = &t
		}

		ans = append(ans, run)
	}

	return ans, rows.Err()
}

func (j *Journal) Pages(ctx context.Context, runID string) ([]PageRecord, error) {
	rows, err := j.db.QueryContext(ctx, j.rebind(`
		SELECT data_id, page_index, file_name, next_page_token, created_at
		FROM pages WHERE run_id = $1
		ORDER BY created_at, data_id, page_index`),
		runID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ans []PageRecord

	for rows.Next() {
		var (
			rec       PageRecord
			createdAt string
		)

		if err := rows.Scan(&rec.DataID, &rec.PageIndex, &rec.FileName, &rec.NextPageToken, &createdAt); err != nil {
			return nil, err
		}

		rec.CreatedAt = parseTime(createdAt)
		ans = append(ans, rec)
	}

	return ans, rows.Err()
}

var placeholderRe = regexp.MustCompile(`\$\d+`)

// rebind turns $n placeholders into ? for SQLite. Queries here never reuse
// a placeholder, so positional order is preserved.
func (j *Journal) rebind(q string) string {
	if j.driver != "sqlite" {
		return q
	}

	return placeholderRe.ReplaceAllString(q, "?")
}

// fixed width so that string order matches time order
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) time.Time {
	t, _ := time.Parse(timeLayout, s)
	return t
}
