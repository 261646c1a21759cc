package main

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"ocall/internal/config"
	"ocall/internal/store"
	"ocall/internal/usecase/agenda"
	"ocall/internal/usecase/users"

	"github.com/spf13/cobra"
)

const shutdownTimeout = 10 * time.Second

func newRootCmd() *cobra.Command {
	var cfgFile string

	cmd := &cobra.Command{
		Use:   "ocall",
		Short: "OCall serves the login page and the agenda API.",
		Long: `OCall matches performers with producers and venues.

Running without a subcommand starts the server, like "ocall serve".
Settings come from OCALL_* environment variables and an optional
YAML file given with --config.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context(), cfgFile)
		},
	}
	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "YAML config file")

	cmd.AddCommand(&cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context(), cfgFile)
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "settings",
		Short: "Print the effective settings",
		RunE: func(cmd *cobra.Command, _ []string) error {
			settings, err := config.New(cfgFile)
			if err != nil {
				return err
			}
			settings.Print(cmd.OutOrStdout())
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "migrate",
		Short: "Apply the database schema and exit",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(cfgFile)
			if err != nil {
				return err
			}
			st, err := openStore(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "schema up to date (%s)\n", cfg.DBType)
			return st.Close()
		},
	})

	return cmd
}

func openStore(ctx context.Context, cfg config.Config) (*store.Store, error) {
	return store.Open(ctx, store.Options{
		Type:         cfg.DBType,
		DSN:          cfg.DBURI,
		MaxOpenConns: cfg.DBMaxOpenConns,
	})
}

func newServer(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:      addr,
		Handler:   handler,
		TLSConfig: &tls.Config{MinVersion: tls.VersionTLS12},

		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  2 * time.Minute,
	}
}

func runServe(ctx context.Context, cfgFile string) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return err
	}

	st, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	handler := newRouter(routerDeps{
		profiles: users.NewService(st, cfg.CacheTTL),
		agenda:   agenda.NewService(st, cfg.CacheTTL),
		db:       st,
	})
	srv := newServer(cfg.ListenAddr, handler)

	if cfg.TLS {
		if err := ensureTLSCert(cfg.TLSCert, cfg.TLSKey); err != nil {
			return fmt.Errorf("failed to ensure TLS certs: %w", err)
		}
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("starting OCall: addr=%s tls=%t db=%s", cfg.ListenAddr, cfg.TLS, cfg.DBType)
		if cfg.TLS {
			errCh <- srv.ListenAndServeTLS(cfg.TLSCert, cfg.TLSKey)
			return
		}
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	log.Printf("shutting down: timeout=%s", shutdownTimeout)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		log.Printf("ocall: %v", err)
		stop()
		os.Exit(1)
	}
}
