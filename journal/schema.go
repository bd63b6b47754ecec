package journal

import (
	"context"
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS runs (
		id          TEXT PRIMARY KEY,
		mode        TEXT NOT NULL,
		started_at  TEXT NOT NULL,
		finished_at TEXT,
		error       TEXT NOT NULL DEFAULT ''
	)`,
	`CREATE TABLE IF NOT EXISTS pages (
		run_id          TEXT NOT NULL REFERENCES runs(id),
		data_id         TEXT NOT NULL,
		page_index      INTEGER NOT NULL,
		file_name       TEXT NOT NULL,
		next_page_token TEXT NOT NULL DEFAULT '',
		created_at      TEXT NOT NULL,
		PRIMARY KEY (run_id, data_id, page_index)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_pages_data_id ON pages (data_id)`,
}

func (j *Journal) migrate(ctx context.Context) error {
	for _, stmt := range schema {
		if _, err := j.db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}

	return nil
}
