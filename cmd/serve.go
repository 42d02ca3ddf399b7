package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"mybus.dev/livetimes"
	"mybus.dev/livetimes/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serves live times over HTTP",
	Args:  cobra.NoArgs,
	RunE:  serve,
}

var listen string

func init() {
	serveCmd.Flags().StringVarP(&listen, "listen", "l", "", "Address to listen on (defaults to config)")
}

func serve(cmd *cobra.Command, args []string) error {
	m, s, err := loadManager()
	if err != nil {
		return err
	}
	defer s.Close()

	addr := cfg.Server.Listen
	if listen != "" {
		addr = listen
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go refreshLoop(ctx, m, cfg.Refresh.Interval)

	srv := &http.Server{
		Addr:              addr,
		Handler:           server.New(m).Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("Shutdown failed")
		}
	}()

	log.Info().Str("addr", addr).Msg("Listening")
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return nil
}

func refreshLoop(ctx context.Context, m *livetimes.Manager, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			// Failures are logged by the manager and retried
			// on the next tick.
			m.Refresh(ctx)
		}
	}
}
