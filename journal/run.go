package journal

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"text/template"
	"time"
)

// RunRecord summarizes one backtest run; it mirrors the backtest_runs table.
type RunRecord struct {
	RunID       string
	Created     time.Time
	Symbol      string
	Start       time.Time
	End         time.Time
	StepSeconds int64

	Decisions int
	Fills     int
	Skipped   int

	NetPnL      float64
	Sharpe      float64
	MaxDrawdown float64

	// ChartPath points at a rendered P&L chart, when one was written.
	ChartPath string
	Notes     []string
}

var runOrgFuncs = template.FuncMap{
	"orTime": func(t time.Time) time.Time {
		if t.IsZero() {
			return time.Now()
		}
		return t
	},
}

var runOrg = template.Must(template.New("run").Funcs(runOrgFuncs).Parse(RunOrgTemplate))

// WriteOrg renders the run as an Org-mode entry.
func (r RunRecord) WriteOrg(w io.Writer) error {
	if err := runOrg.Execute(w, r); err != nil {
		return fmt.Errorf("render run %s: %w", r.RunID, err)
	}
	return nil
}

// SaveOrg renders the run to path.
func (r RunRecord) SaveOrg(path string) error {
	buf := new(bytes.Buffer)
	if err := r.WriteOrg(buf); err != nil {
		return err
	}
	return os.WriteFile(path, buf.Bytes(), 0o644)
}

const RunOrgTemplate = `* BACKTEST: {{.Symbol}} {{.Start.Format "2006-01-02"}} .. {{.End.Format "2006-01-02"}}
:PROPERTIES:
:RUN_ID:       {{if .RunID}}{{.RunID}}{{else}}(run-id?){{end}}
:SYMBOL:       {{.Symbol}}
:START:        {{.Start.Format "2006-01-02T15:04:05Z07:00"}}
:END:          {{.End.Format "2006-01-02T15:04:05Z07:00"}}
:STEP_SECONDS: {{.StepSeconds}}
:DECISIONS:    {{.Decisions}}
:FILLS:        {{.Fills}}
:SKIPPED:      {{.Skipped}}
:NET_PNL:      {{printf "%.2f" .NetPnL}}
:SHARPE:       {{printf "%.2f" .Sharpe}}
:MAX_DD:       {{printf "%.2f" .MaxDrawdown}}
:CREATED:      [{{(orTime .Created).Format "2006-01-02 Mon 15:04"}}]
:END:

** Performance Summary
- Net P/L:      *{{printf "%.2f" .NetPnL}}*
- Sharpe:       *{{printf "%.2f" .Sharpe}}*
- Max Drawdown: *{{printf "%.2f" .MaxDrawdown}}*

** P&L Curve
{{- if .ChartPath }}
[[file:{{.ChartPath}}]]
{{- else }}
# no chart rendered for this run
{{- end }}
{{- if .Notes }}

** Observations
{{- range .Notes }}
- {{.}}
{{- end }}
{{- end }}
`
