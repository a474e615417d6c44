package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rustyeddy/marketmind/journal"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("JOURNAL_TYPE", "none")

	cmd := NewRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestVersion(t *testing.T) {
	out, err := run(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "marketmind version dev")
}

func TestConfigInitAndValidate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mm.yaml")

	out, err := run(t, "config", "init", "-o", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Created default configuration")
	_, err = os.Stat(path)
	require.NoError(t, err)

	out, err = run(t, "config", "validate", "-f", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Configuration valid")
	assert.Contains(t, out, "AAPL")
	assert.Contains(t, out, "none", "environment overrides the file")
}

func TestConfigValidateRejectsBadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("app:\n  interval_seconds: -5\n"), 0o644))

	_, err := run(t, "config", "validate", "-f", path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "validation failed")
}

func TestBacktestCommand(t *testing.T) {
	dir := t.TempDir()
	chart := filepath.Join(dir, "pnl.html")
	org := filepath.Join(dir, "run.org")

	out, err := run(t, "backtest",
		"--symbol", "aapl",
		"--start", "2024-03-04T14:30:00Z",
		"--end", "2024-03-04T14:40:00Z",
		"--chart", chart,
		"--org", org,
	)
	require.NoError(t, err)
	assert.Contains(t, out, "Running backtest for AAPL")
	assert.Contains(t, out, "Decisions generated: 11")
	assert.Contains(t, out, "PnL=")
	assert.Contains(t, out, "Backtest Result")

	_, err = os.Stat(org)
	assert.NoError(t, err)
}

func TestBacktestRequiresDates(t *testing.T) {
	_, err := run(t, "backtest", "--symbol", "AAPL")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--start")

	_, err = run(t, "backtest", "--start", "yesterday", "--end", "2024-03-04")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad --start")
}

func TestLiveCommandSteps(t *testing.T) {
	out, err := run(t, "live", "--symbol", "aapl", "--steps", "2", "--interval", "1ms")
	require.NoError(t, err)
	assert.Contains(t, out, "Starting live loop for AAPL")
	assert.Equal(t, 2, strings.Count(out, " size="))
	assert.Contains(t, out, "Shutting down")
}

func TestParseWhen(t *testing.T) {
	ny, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)

	got, err := parseWhen("2024-03-04", ny, openHour, openMinute)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 3, 4, 14, 30, 0, 0, time.UTC), got.UTC())

	got, err = parseWhen("2024-03-04T20:00:00Z", ny, openHour, openMinute)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 3, 4, 20, 0, 0, 0, time.UTC), got)

	_, err = parseWhen("03/04/2024", ny, openHour, openMinute)
	assert.Error(t, err)
}

func TestJournalCommands(t *testing.T) {
	db := filepath.Join(t.TempDir(), "journal.db")
	j, err := journal.NewSQLite(db)
	require.NoError(t, err)

	at := time.Date(2024, 3, 4, 15, 0, 0, 0, time.UTC)
	require.NoError(t, j.RecordFill(journal.FillRecord{ID: "f1", Time: at, Symbol: "AAPL", Side: "BUY", Price: 100.05, Size: 1}))
	require.NoError(t, j.RecordPnL(journal.PnLPoint{Time: at, Symbol: "AAPL", Cumulative: 2.5}))
	require.NoError(t, j.RecordRun(journal.RunRecord{RunID: "run-1", Created: at, Symbol: "AAPL", Start: at, End: at, Decisions: 3}))
	require.NoError(t, j.Close())

	out, err := run(t, "journal", "fills", "--db", db, "--symbol", "aapl")
	require.NoError(t, err)
	assert.Contains(t, out, "SYMBOL")
	assert.Contains(t, out, "100.05")

	out, err = run(t, "journal", "pnl", "--db", db)
	require.NoError(t, err)
	assert.Contains(t, out, "2.50")

	out, err = run(t, "journal", "run", "--db", db, "run-1")
	require.NoError(t, err)
	assert.Contains(t, out, "run-1")

	_, err = run(t, "journal", "run", "--db", db, "missing")
	assert.Error(t, err)
}

func TestDataExportFeedsBacktest(t *testing.T) {
	csvPath := filepath.Join(t.TempDir(), "aapl.csv")

	out, err := run(t, "data", "export",
		"--symbol", "AAPL",
		"--start", "2024-03-04T12:00:00Z",
		"--end", "2024-03-04T15:00:00Z",
		"-o", csvPath,
	)
	require.NoError(t, err)
	assert.Contains(t, out, "Wrote 181 bars")

	out, err = run(t, "backtest",
		"--symbol", "AAPL",
		"--start", "2024-03-04T14:30:00Z",
		"--end", "2024-03-04T14:35:00Z",
		"--bars", csvPath,
	)
	require.NoError(t, err)
	assert.Contains(t, out, "Decisions generated: 6")
}
