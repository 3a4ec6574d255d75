package cli

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pfrederiksen/subwatch/internal/bot"
	"github.com/pfrederiksen/subwatch/internal/gateway"
	"github.com/pfrederiksen/subwatch/internal/logger"
	"github.com/pfrederiksen/subwatch/internal/metrics"
	"github.com/pfrederiksen/subwatch/internal/notifier"
	"github.com/pfrederiksen/subwatch/internal/reaction"
	"github.com/pfrederiksen/subwatch/internal/subscription"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 5 * time.Second

var flagDryRun bool

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the bot on the JSON event stream from stdin",
		Long: `Reads one JSON event per line from stdin (commands and reaction add/remove events)
and writes outbound actions as JSON lines to stdout. Stops at end of input or on SIGINT/SIGTERM.
When metrics_addr is set, /metrics and /healthz are served on it.`,
		Args: cobra.NoArgs,
		RunE: runServe,
	}

	cmd.Flags().BoolVar(&flagDryRun, "dry-run", false, "Print outbound actions as text instead of JSON")

	return cmd
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if err := cfg.ValidateServe(); err != nil {
		return errors.Wrap(err, "invalid config")
	}

	m := metrics.New()
	registry, err := openRegistry(cfg, subscription.WithMetrics(m))
	if err != nil {
		return err
	}

	binding, err := newBinding(cfg, registry.Catalog())
	if err != nil {
		return err
	}
	translator := reaction.NewTranslator(binding, registry, reaction.WithMetrics(m))

	var n notifier.Notifier = notifier.NewStreamNotifier(cmd.OutOrStdout())
	if flagDryRun {
		n = notifier.NewDryRunNotifier(cmd.OutOrStdout())
	}
	handler := bot.NewHandler(registry, translator, n, cfg.BotUserID)
	gw := gateway.New(handler, translator, n)

	logger.Info("Serving", logger.Fields{
		"categories":   registry.Catalog().Len(),
		"users":        registry.Len(),
		"metrics_addr": cfg.MetricsAddr,
		"dry_run":      flagDryRun,
	})

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		// end of input stops the HTTP endpoint too
		defer stop()
		return gw.Run(ctx, cmd.InOrStdin())
	})

	if cfg.MetricsAddr != "" {
		srv := &http.Server{
			Addr:              cfg.MetricsAddr,
			Handler:           m.Router(),
			ReadHeaderTimeout: shutdownTimeout,
		}
		g.Go(func() error {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return errors.Wrap(err, "metrics endpoint")
			}
			return nil
		})
		g.Go(func() error {
			<-ctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		})
	}

	err = g.Wait()
	if errors.Is(err, context.Canceled) {
		err = nil
	}
	logger.Info("Stopped", logger.Fields{"users": registry.Len()})
	return err
}
