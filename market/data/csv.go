package data

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/rustyeddy/marketmind/market"
)

var csvColumns = []string{"timestamp", "symbol", "open", "high", "low", "close", "volume"}

// LoadCSV reads bars from a file with the header
// timestamp,symbol,open,high,low,close,volume. Timestamps are RFC 3339 or
// YYYY-MM-DD (UTC midnight).
func LoadCSV(path string) ([]market.Bar, error) {
	fh, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer fh.Close()
	return ReadCSV(fh)
}

func ReadCSV(r io.Reader) ([]market.Bar, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read csv header: %w", err)
	}
	idx := make(map[string]int, len(header))
	for i, h := range header {
		idx[strings.ToLower(strings.TrimSpace(h))] = i
	}
	for _, c := range csvColumns {
		if _, ok := idx[c]; !ok {
			return nil, fmt.Errorf("csv missing column %q", c)
		}
	}

	var bars []market.Bar
	line := 1
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}

		ts, err := parseTime(rec[idx["timestamp"]])
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		b := market.Bar{Time: ts, Symbol: strings.ToUpper(rec[idx["symbol"]])}
		fields := []struct {
			col string
			dst *float64
		}{
			{"open", &b.Open}, {"high", &b.High}, {"low", &b.Low},
			{"close", &b.Close}, {"volume", &b.Volume},
		}
		for _, f := range fields {
			v, err := strconv.ParseFloat(strings.TrimSpace(rec[idx[f.col]]), 64)
			if err != nil {
				return nil, fmt.Errorf("line %d: %s: %w", line, f.col, err)
			}
			*f.dst = v
		}
		bars = append(bars, b)
	}
	return bars, nil
}

func parseTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.UTC(), nil
	}
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t, nil
	}
	return time.Time{}, fmt.Errorf("bad timestamp %q", s)
}

// WriteCSV writes bars in the format ReadCSV accepts.
func WriteCSV(w io.Writer, bars []market.Bar) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvColumns); err != nil {
		return err
	}
	num := func(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) }
	for _, b := range bars {
		rec := []string{
			b.Time.UTC().Format(time.RFC3339),
			b.Symbol,
			num(b.Open), num(b.High), num(b.Low), num(b.Close), num(b.Volume),
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
