package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/goliatone/go-formstate/pkg/definition"
	"github.com/goliatone/go-formstate/pkg/drafts"
	"github.com/goliatone/go-formstate/pkg/hosts/httpform"
	"github.com/goliatone/go-formstate/pkg/metrics"
	"github.com/goliatone/go-formstate/pkg/schema"
)

type serveOptions struct {
	addr      string
	redisAddr string
	redisDB   int
	draftTTL  time.Duration
}

func newServeCmd(opts *globalOptions) *cobra.Command {
	so := &serveOptions{}
	cmd := &cobra.Command{
		Use:   "serve <definition>",
		Short: "Serve a form over HTTP with Prometheus metrics",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			logger, err := opts.logger()
			if err != nil {
				return err
			}
			def, l, err := opts.load(ctx, args[0])
			if err != nil {
				return err
			}

			reg := prometheus.NewRegistry()
			reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
			handler, err := newServer(ctx, def, l, reg, so, httpform.WithLogger(logger))
			if err != nil {
				return err
			}

			srv := &http.Server{
				Addr:              so.addr,
				Handler:           handler,
				ReadHeaderTimeout: 5 * time.Second,
			}
			serverErrors := make(chan error, 1)
			go func() {
				logger.Info("formstate: serving", "addr", so.addr, "form", def.ID)
				serverErrors <- srv.ListenAndServe()
			}()

			select {
			case err := <-serverErrors:
				if errors.Is(err, http.ErrServerClosed) {
					return nil
				}
				return err
			case <-ctx.Done():
				logger.Info("formstate: shutting down")
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer cancel()
				return srv.Shutdown(shutdownCtx)
			}
		},
	}
	flags := cmd.Flags()
	flags.StringVar(&so.addr, "addr", ":8080", "listen address")
	flags.StringVar(&so.redisAddr, "redis", "", "redis address for drafts (disabled when empty)")
	flags.IntVar(&so.redisDB, "redis-db", 0, "redis database for drafts")
	flags.DurationVar(&so.draftTTL, "draft-ttl", 24*time.Hour, "how long drafts are kept")
	return cmd
}

// newServer mounts the form handler and /metrics on one router.
func newServer(ctx context.Context, def *definition.Form, l schema.Loader, reg *prometheus.Registry, so *serveOptions, opts ...httpform.Option) (http.Handler, error) {
	collector, err := metrics.NewCollector(reg)
	if err != nil {
		return nil, err
	}
	opts = append(opts, httpform.WithLoader(l), httpform.WithObserver(collector.Observer(def.ID)))
	if so.redisAddr != "" {
		opts = append(opts, httpform.WithDrafts(drafts.New(so.redisAddr, os.Getenv("FORMSTATE_REDIS_PASSWORD"), so.redisDB, drafts.WithTTL(so.draftTTL))))
	}
	forms, err := httpform.NewHandler(ctx, def, opts...)
	if err != nil {
		return nil, err
	}

	r := chi.NewRouter()
	r.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))
	r.Mount("/", forms)
	return r, nil
}
