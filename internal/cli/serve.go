package cli

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/marketmind/internal/app"
)

func newServeCmd(rc *RootConfig) *cobra.Command {
	var (
		addr string
		loop bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the HTTP API and decision stream",
		Long: `Expose /health, /decide, /latest, /telem, /metrics, /fills and the /ws stream.

With --loop the live decision loop runs in the same process.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := rc.load(cmd)
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.Server.Addr = addr
			}

			a, err := app.New(cfg)
			if err != nil {
				return err
			}
			defer a.Close()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, titleStyle.Render("Serving on "+cfg.Server.Addr))
			var report app.Reporter
			if loop {
				report = stepPrinter(out)
			}
			return a.Serve(ctx, cfg.Server.Addr, loop, report)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (default from config)")
	cmd.Flags().BoolVar(&loop, "loop", false, "Also run the live decision loop")
	return cmd
}
