package journal

const Schema = `
CREATE TABLE IF NOT EXISTS fills (
	fill_id TEXT PRIMARY KEY,
	time DATETIME NOT NULL,
	symbol TEXT NOT NULL,
	side TEXT NOT NULL,
	price REAL NOT NULL,
	size REAL NOT NULL,
	slippage_bps REAL NOT NULL,
	latency_ms REAL NOT NULL,
	pnl_delta REAL NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_fills_symbol_time ON fills(symbol, time);

CREATE TABLE IF NOT EXISTS pnl (
	time DATETIME NOT NULL,
	symbol TEXT NOT NULL,
	cumulative REAL NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_pnl_time ON pnl(time);

CREATE TABLE IF NOT EXISTS backtest_runs (
	run_id TEXT PRIMARY KEY,
	created DATETIME NOT NULL,
	symbol TEXT NOT NULL,
	start_time DATETIME NOT NULL,
	end_time DATETIME NOT NULL,
	step_seconds INTEGER NOT NULL,
	decisions INTEGER NOT NULL,
	fills INTEGER NOT NULL,
	skipped INTEGER NOT NULL,
	net_pnl REAL NOT NULL,
	sharpe REAL NOT NULL,
	max_drawdown REAL NOT NULL
);
`
