package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/thurmanmarka/retroglide/internal/config"
	"github.com/thurmanmarka/retroglide/internal/metrics"
	"github.com/thurmanmarka/retroglide/internal/render"
	"github.com/thurmanmarka/retroglide/internal/watch"
)

var watchFlags struct {
	interval    time.Duration
	metricsAddr string
}

var watchCmd = &cobra.Command{
	Use:   "watch [body...]",
	Short: "Sample movements periodically and report transitions",
	Long: `watch samples the movement of each body every --interval and prints one
line per body, marking transitions between direct and retrograde.

Without arguments the body list comes from the config file and is reloaded
when the file changes. With --metrics-addr, Prometheus metrics are served on
/metrics.`,
	Example: `  retroglide watch
  retroglide watch mercury mars --interval 10m --metrics-addr :9090`,
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		interval := cfg.WatchInterval
		if watchFlags.interval > 0 {
			interval = watchFlags.interval
		}
		addr := cfg.MetricsAddr
		if watchFlags.metricsAddr != "" {
			addr = watchFlags.metricsAddr
		}
		bodies := args
		if len(bodies) == 0 {
			bodies = cfg.Bodies
		}

		d, err := buildDeps(ctx)
		if err != nil {
			return err
		}
		defer closeDeps(d, &err)

		w := watch.New(d.Searcher, bodies,
			watch.WithInterval(interval),
			watch.WithMetrics(d.Metrics),
			watch.WithLogger(logger),
		)

		if len(args) == 0 && v.ConfigFileUsed() != "" {
			v.OnConfigChange(func(e fsnotify.Event) {
				if !e.Has(fsnotify.Write) && !e.Has(fsnotify.Create) {
					return
				}
				next, err := config.Load(v)
				if err != nil {
					logger.Warn("ignoring invalid config change", "file", e.Name, "error", err)
					return
				}
				w.SetBodies(next.Bodies)
				logger.Info("config reloaded", "file", e.Name, "bodies", next.Bodies)
			})
			v.WatchConfig()
		}

		if addr != "" {
			srv := &http.Server{Addr: addr, Handler: metricsMux(d.Registry), ReadHeaderTimeout: 5 * time.Second}
			go func() {
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					logger.Error("metrics server failed", "addr", addr, "error", err)
				}
			}()
			defer func() {
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				_ = srv.Shutdown(shutdownCtx)
			}()
			logger.Info("serving metrics", "addr", addr)
		}

		out := cmd.OutOrStdout()
		enc := json.NewEncoder(out)
		err = w.Run(ctx, func(ev watch.Event) {
			if cfg.Format == render.FormatJSON || cfg.Format == render.FormatJSONL {
				_ = enc.Encode(ev)
				return
			}
			mark := ""
			if ev.Changed {
				mark = fmt.Sprintf("  <- was %s", ev.Previous)
			}
			fmt.Fprintf(out, "%s  %-8s %-10s %s  %+.8f%s\n",
				render.FormatTime(ev.Time), ev.Body, ev.Movement, render.FormatDMS(ev.Longitude), ev.Delta, mark)
		})
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	},
}

func metricsMux(g prometheus.Gatherer) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler(g))
	return mux
}

func init() {
	watchCmd.Flags().DurationVar(&watchFlags.interval, "interval", 0, "sampling interval (default: watch_interval from config, 1m)")
	watchCmd.Flags().StringVar(&watchFlags.metricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address, e.g. :9090")
	rootCmd.AddCommand(watchCmd)
}
