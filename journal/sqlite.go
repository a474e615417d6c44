package journal

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "github.com/mattn/go-sqlite3"
)

type SQLite struct {
	db *sql.DB
}

// NewSQLite opens (creating if needed) the database at path and applies the
// schema. A "sqlite:///" URL prefix is accepted.
func NewSQLite(path string) (*SQLite, error) {
	path = strings.TrimPrefix(path, "sqlite:///")
	if path == "" {
		return nil, fmt.Errorf("journal: empty sqlite path")
	}
	if path != ":memory:" {
		if dir := filepath.Dir(path); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("journal: create %s: %w", dir, err)
			}
		}
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}
	// A single writer avoids SQLITE_BUSY between concurrent symbol loops.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(Schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("journal: apply schema: %w", err)
	}
	return &SQLite{db: db}, nil
}

func (j *SQLite) RecordFill(f FillRecord) error {
	_, err := j.db.Exec(`
		INSERT INTO fills
		(fill_id, time, symbol, side, price, size, slippage_bps, latency_ms, pnl_delta)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		f.ID, f.Time.UTC(), f.Symbol, f.Side, f.Price,
		f.Size, f.SlippageBps, f.LatencyMs, f.PnLDelta,
	)
	return err
}

func (j *SQLite) RecordPnL(p PnLPoint) error {
	_, err := j.db.Exec(`
		INSERT INTO pnl (time, symbol, cumulative)
		VALUES (?, ?, ?)`,
		p.Time.UTC(), p.Symbol, p.Cumulative,
	)
	return err
}

func (j *SQLite) RecordRun(r RunRecord) error {
	_, err := j.db.Exec(`
		INSERT INTO backtest_runs
		(run_id, created, symbol, start_time, end_time, step_seconds, decisions, fills, skipped, net_pnl, sharpe, max_drawdown)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.RunID, r.Created.UTC(), r.Symbol, r.Start.UTC(), r.End.UTC(), r.StepSeconds,
		r.Decisions, r.Fills, r.Skipped, r.NetPnL, r.Sharpe, r.MaxDrawdown,
	)
	return err
}

func (j *SQLite) Close() error {
	return j.db.Close()
}
