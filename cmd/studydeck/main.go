package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/conorfennell/studydeck/internal/config"
	"github.com/conorfennell/studydeck/internal/reconcile"
	"github.com/conorfennell/studydeck/internal/remote"
	"github.com/conorfennell/studydeck/internal/storage"
	"github.com/conorfennell/studydeck/internal/web"
)

var Version = "dev"

// app carries state shared by subcommands once flags are parsed.
type app struct {
	cfg    *config.Config
	logger *slog.Logger
	in     io.Reader
	out    io.Writer
}

func main() {
	a := &app{in: os.Stdin, out: os.Stdout}
	if err := a.rootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func (a *app) rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "studydeck",
		Short:         "Studydeck - flashcards with spaced review",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load("", cmd.Flags())
			if err != nil {
				return err
			}
			a.cfg = cfg
			a.logger = cfg.NewLogger(os.Stderr)
			slog.SetDefault(a.logger)
			return nil
		},
	}
	config.BindFlags(root.PersistentFlags())

	root.AddCommand(a.serveCmd())
	root.AddCommand(a.projectsCmd())
	root.AddCommand(a.cardsCmd())
	root.AddCommand(a.studyCmd())
	root.AddCommand(a.draftsCmd())
	return root
}

// backend is the data store the CLI works against: the API server when
// api.url is set, otherwise the local database.
type backend interface {
	web.Store
	Close() error
}

type remoteBackend struct{ *remote.Client }

func (remoteBackend) Close() error { return nil }

func (a *app) openBackend(ctx context.Context) (backend, error) {
	if a.cfg.Remote() {
		c, err := remote.New(a.cfg.API.URL, a.cfg.API.Timeout)
		if err != nil {
			return nil, err
		}
		if err := c.Ping(ctx); err != nil {
			return nil, fmt.Errorf("failed to reach %s: %w", a.cfg.API.URL, err)
		}
		return remoteBackend{c}, nil
	}
	db, err := storage.Open(a.cfg.Database.Driver, a.cfg.Database.DSN)
	if err != nil {
		return nil, err
	}
	a.logger.Debug("Database opened", "driver", a.cfg.Database.Driver, "dsn", a.cfg.Database.DSN)
	return db, nil
}

func (a *app) reconcileOptions() []reconcile.Option {
	opts := []reconcile.Option{reconcile.WithLogger(a.logger)}
	if a.cfg.Reconcile.Timeout > 0 {
		opts = append(opts, reconcile.WithTimeout(a.cfg.Reconcile.Timeout))
	}
	return opts
}
