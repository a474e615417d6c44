package journal

import (
	"database/sql"
	"errors"
	"fmt"
)

// ListFills returns the most recent fills, newest first. An empty symbol
// matches every symbol; limit <= 0 means no limit.
func (j *SQLite) ListFills(symbol string, limit int) ([]FillRecord, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := j.db.Query(`
		SELECT fill_id, time, symbol, side, price, size, slippage_bps, latency_ms, pnl_delta
		FROM fills
		WHERE (? = '' OR symbol = ?)
		ORDER BY time DESC, fill_id DESC
		LIMIT ?`, symbol, symbol, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []FillRecord
	for rows.Next() {
		var rec FillRecord
		if err := rows.Scan(
			&rec.ID,
			&rec.Time,
			&rec.Symbol,
			&rec.Side,
			&rec.Price,
			&rec.Size,
			&rec.SlippageBps,
			&rec.LatencyMs,
			&rec.PnLDelta,
		); err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// ListPnL returns P&L points oldest first. An empty symbol matches every
// symbol.
func (j *SQLite) ListPnL(symbol string) ([]PnLPoint, error) {
	rows, err := j.db.Query(`
		SELECT time, symbol, cumulative
		FROM pnl
		WHERE (? = '' OR symbol = ?)
		ORDER BY time ASC, rowid ASC`, symbol, symbol)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []PnLPoint
	for rows.Next() {
		var p PnLPoint
		if err := rows.Scan(&p.Time, &p.Symbol, &p.Cumulative); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// GetRun returns a single backtest run by ID.
func (j *SQLite) GetRun(runID string) (RunRecord, error) {
	var r RunRecord
	row := j.db.QueryRow(`
		SELECT run_id, created, symbol, start_time, end_time, step_seconds, decisions, fills, skipped, net_pnl, sharpe, max_drawdown
		FROM backtest_runs
		WHERE run_id = ?`, runID)

	err := row.Scan(
		&r.RunID,
		&r.Created,
		&r.Symbol,
		&r.Start,
		&r.End,
		&r.StepSeconds,
		&r.Decisions,
		&r.Fills,
		&r.Skipped,
		&r.NetPnL,
		&r.Sharpe,
		&r.MaxDrawdown,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return RunRecord{}, fmt.Errorf("backtest run %q not found", runID)
		}
		return RunRecord{}, err
	}
	return r, nil
}
