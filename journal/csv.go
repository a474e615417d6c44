package journal

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"
)

// CSV appends fills and P&L points to two CSV files. Each record is flushed
// immediately.
type CSV struct {
	mu     sync.Mutex
	fills  *csv.Writer
	pnl    *csv.Writer
	ff, pf *os.File
}

var (
	fillsHeader = []string{"fill_id", "time", "symbol", "side", "price", "size", "slippage_bps", "latency_ms", "pnl_delta"}
	pnlHeader   = []string{"time", "symbol", "cumulative"}
)

func NewCSV(fillsPath, pnlPath string) (*CSV, error) {
	ff, err := create(fillsPath)
	if err != nil {
		return nil, err
	}
	pf, err := create(pnlPath)
	if err != nil {
		_ = ff.Close()
		return nil, err
	}

	fw := csv.NewWriter(ff)
	pw := csv.NewWriter(pf)

	if err := fw.Write(fillsHeader); err != nil {
		return nil, err
	}
	if err := pw.Write(pnlHeader); err != nil {
		return nil, err
	}

	fw.Flush()
	if err := fw.Error(); err != nil {
		return nil, err
	}
	pw.Flush()
	if err := pw.Error(); err != nil {
		return nil, err
	}

	return &CSV{fills: fw, pnl: pw, ff: ff, pf: pf}, nil
}

func create(path string) (*os.File, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}
	return os.Create(path)
}

func (j *CSV) RecordFill(r FillRecord) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	err := j.fills.Write([]string{
		r.ID,
		r.Time.UTC().Format(time.RFC3339Nano),
		r.Symbol,
		r.Side,
		f(r.Price),
		f(r.Size),
		f(r.SlippageBps),
		f(r.LatencyMs),
		f(r.PnLDelta),
	})
	if err != nil {
		return err
	}
	j.fills.Flush()
	return j.fills.Error()
}

func (j *CSV) RecordPnL(p PnLPoint) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	err := j.pnl.Write([]string{
		p.Time.UTC().Format(time.RFC3339Nano),
		p.Symbol,
		f(p.Cumulative),
	})
	if err != nil {
		return err
	}
	j.pnl.Flush()
	return j.pnl.Error()
}

func (j *CSV) Close() error {
	j.mu.Lock()
	defer j.mu.Unlock()

	j.fills.Flush()
	if err := j.fills.Error(); err != nil {
		return err
	}
	j.pnl.Flush()
	if err := j.pnl.Error(); err != nil {
		return err
	}

	if err := j.ff.Close(); err != nil {
		return err
	}
	if err := j.pf.Close(); err != nil {
		return err
	}
	return nil
}

func f(x float64) string {
	return strconv.FormatFloat(x, 'f', 6, 64)
}
