package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/malphas-lang/runefront/internal/diag"
	"github.com/malphas-lang/runefront/internal/workspace"
)

func newCheckCmd(a *app) *cobra.Command {
	var (
		root        string
		watch       bool
		debounce    time.Duration
		metricsAddr string
	)

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Parse every source file of the project",
		Long: `Parse every source file selected by the manifest and report
diagnostics. Files are parsed in parallel; a failing file does not stop
the others.

With --watch the command keeps running and re-checks files as they
change. With --metrics-addr parse metrics are served for Prometheus.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if root != "" {
				a.cfg.Sources.Root = root
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			opts := []workspace.Option{workspace.WithLogger(a.logger)}
			if metricsAddr != "" {
				reg := prometheus.NewRegistry()
				metrics, err := workspace.NewMetrics(reg)
				if err != nil {
					return err
				}
				opts = append(opts, workspace.WithMetrics(metrics))
				go serveMetrics(ctx, a.logger, metricsAddr, reg)
			}

			ws, err := workspace.New(a.cfg, opts...)
			if err != nil {
				return err
			}

			res, err := ws.Check(ctx)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			f := diag.NewFormatter(cmd.ErrOrStderr(), a.cfg.Output.Color)
			for _, file := range res.Failed() {
				f.AddSource(file.Path, file.Source)
				f.FormatAll(file.Diagnostics())
			}
			summarize(out, res)

			if watch {
				return watchLoop(ctx, a, ws, res, debounce, out, f)
			}
			if failed := len(res.Failed()); failed > 0 {
				return errors.Errorf("%d of %d files failed", failed, len(res.Files))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&root, "root", "", "Source root override")
	cmd.Flags().BoolVarP(&watch, "watch", "w", false, "Re-check files as they change")
	cmd.Flags().DurationVar(&debounce, "debounce", 100*time.Millisecond, "Delay for collecting changes in watch mode")
	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "Serve Prometheus metrics on this address (e.g. :9464)")
	return cmd
}

func summarize(w io.Writer, res *workspace.Result) {
	status := "ok"
	if failed := len(res.Failed()); failed > 0 {
		status = fmt.Sprintf("%d failed", failed)
	}
	fmt.Fprintf(w, "checked %s files (%s) in %s: %s items, %s\n",
		humanize.Comma(int64(len(res.Files))),
		humanize.Bytes(res.Bytes()),
		res.Took.Round(time.Microsecond),
		humanize.Comma(int64(res.Items())),
		status)
}

func watchLoop(ctx context.Context, a *app, ws *workspace.Workspace, res *workspace.Result, debounce time.Duration, out io.Writer, f *diag.Formatter) error {
	w, err := workspace.NewWatcher(ws, workspace.WatcherConfig{DebounceDelay: debounce})
	if err != nil {
		return err
	}
	w.Seed(res)
	if err := w.Start(ctx); err != nil {
		return err
	}
	defer w.Stop()

	fmt.Fprintf(out, "watching %s\n", ws.Root())
	for ev := range w.Events() {
		switch {
		case ev.Operation == workspace.OpDelete:
			fmt.Fprintf(out, "%s %s\n", ev.Operation, ev.Path)
		case ev.File.OK():
			fmt.Fprintf(out, "%s %s: %d items\n", ev.Operation, ev.Path, ev.File.Table.Len())
		default:
			fmt.Fprintf(out, "%s %s: failed\n", ev.Operation, ev.Path)
			f.AddSource(ev.Path, ev.File.Source)
			f.FormatAll(ev.File.Diagnostics())
		}
	}
	a.logger.Info("watch stopped")
	return nil
}

func serveMetrics(ctx context.Context, logger *slog.Logger, addr string, reg *prometheus.Registry) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	logger.Info("serving metrics", "addr", addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("metrics server failed", "error", err)
	}
}
