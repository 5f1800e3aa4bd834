package journal

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"time"

	_ "modernc.org/sqlite"
)

// openIndex opens (or creates) an index database at path and migrates it.
func openIndex(ctx context.Context, path string) (*sql.DB, error) {
	conn, err := sql.Open("sqlite", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("opening index: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA temp_store=MEMORY",
	}
	for _, p := range pragmas {
		if _, err := conn.ExecContext(ctx, p); err != nil {
			conn.Close()
			return nil, fmt.Errorf("setting pragma %q: %w", p, err)
		}
	}

	if err := migrate(ctx, conn); err != nil {
		conn.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}
	return conn, nil
}

func migrate(ctx context.Context, conn *sql.DB) error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS entries (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			v INTEGER NOT NULL,
			run_id TEXT NOT NULL DEFAULT '',
			action TEXT NOT NULL,
			tool_kind TEXT NOT NULL,
			phase TEXT NOT NULL,
			timestamp TEXT NOT NULL,
			pid INTEGER NOT NULL DEFAULT 0,
			payload TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_entries_run ON entries(run_id)`,
		`CREATE INDEX IF NOT EXISTS idx_entries_kind_action ON entries(tool_kind, action)`,
	}
	for _, m := range migrations {
		if _, err := conn.ExecContext(ctx, m); err != nil {
			return fmt.Errorf("migration failed: %w\nSQL: %s", err, m)
		}
	}
	return nil
}

// Index streams the journal in r into the sqlite database at dbPath inside a
// single transaction and returns the number of entries added.
func Index(ctx context.Context, dbPath string, r io.Reader) (int, error) {
	conn, err := openIndex(ctx, dbPath)
	if err != nil {
		return 0, err
	}
	defer conn.Close()

	tx, err := conn.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("starting transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO entries
		(v, run_id, action, tool_kind, phase, timestamp, pid, payload)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return 0, fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	n := 0
	err = Each(r, func(e Entry) error {
		var payload any
		if len(e.Payload) > 0 {
			payload = string(e.Payload)
		}
		_, err := stmt.ExecContext(ctx, e.V, e.RunID, e.Action, e.ToolKind, string(e.Phase),
			e.Timestamp.UTC().Format(time.RFC3339Nano), e.PID, payload)
		if err != nil {
			return fmt.Errorf("inserting entry: %w", err)
		}
		n++
		return nil
	})
	if err != nil {
		return 0, err
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing index: %w", err)
	}
	return n, nil
}

// Count is the number of hook firings for one tool kind and action.
type Count struct {
	ToolKind string
	Action   string
	Before   int
	After    int
	Runs     int
}

// Summarize returns per tool kind and action counts from an index built by
// Index, ordered by tool kind then action.
func Summarize(ctx context.Context, dbPath string) ([]Count, error) {
	conn, err := openIndex(ctx, dbPath)
	if err != nil {
		return nil, err
	}
	defer conn.Close()

	rows, err := conn.QueryContext(ctx, `SELECT tool_kind, action,
			SUM(CASE WHEN phase = 'before' THEN 1 ELSE 0 END),
			SUM(CASE WHEN phase = 'after' THEN 1 ELSE 0 END),
			COUNT(DISTINCT run_id)
		FROM entries
		GROUP BY tool_kind, action
		ORDER BY tool_kind, action`)
	if err != nil {
		return nil, fmt.Errorf("querying index: %w", err)
	}
	defer rows.Close()

	var out []Count
	for rows.Next() {
		var c Count
		if err := rows.Scan(&c.ToolKind, &c.Action, &c.Before, &c.After, &c.Runs); err != nil {
			return nil, fmt.Errorf("scanning summary: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}
