package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"github.com/conorfennell/studydeck/internal/digest"
	"github.com/conorfennell/studydeck/internal/generate"
	"github.com/conorfennell/studydeck/internal/storage"
	"github.com/conorfennell/studydeck/internal/web"
)

func (a *app) serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the JSON API server and the due-card digest",
		Long: `Start the API server on the local database.

Examples:
  studydeck serve --addr :8080
  STUDYDECK_DATABASE__DRIVER=postgres STUDYDECK_DATABASE__DSN=postgres://... studydeck serve`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return a.serve(ctx)
		},
	}
}

func (a *app) serve(ctx context.Context) error {
	db, err := storage.Open(a.cfg.Database.Driver, a.cfg.Database.DSN)
	if err != nil {
		return err
	}
	defer db.Close()

	gen, err := generate.New(generate.Config{
		Kind:   a.cfg.Generator.Kind,
		APIKey: a.cfg.Generator.APIKey,
		APIURL: a.cfg.Generator.APIURL,
		Model:  a.cfg.Generator.Model,
	})
	if err != nil {
		return fmt.Errorf("failed to create generator: %w", err)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	if a.cfg.Digest.Interval > 0 {
		d := digest.New(db, a.cfg.Digest.Interval, digest.WithNotifier(digest.LogNotifier{Logger: a.logger}))
		if err := d.Start(); err != nil {
			return err
		}
		defer d.Stop()
	}

	srv := &http.Server{
		Addr:              a.cfg.Server.Addr,
		Handler:           web.NewServer(db, web.WithGenerator(gen), web.WithLogger(a.logger), web.WithRegistry(reg)),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		a.logger.Info("Starting server", "addr", srv.Addr, "driver", a.cfg.Database.Driver, "generator", a.cfg.Generator.Kind)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	a.logger.Info("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
