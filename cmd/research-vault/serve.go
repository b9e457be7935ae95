// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/research-vault/internal/observability"
	"github.com/pdiddy/research-vault/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the HTTP API",
	Long: `Serve exposes citation generation, history scanning, stored candidates
and PDF metadata extraction over HTTP, with Prometheus metrics at /metrics.

Use --no-store to run without the vault database; scans are then not
persisted and the candidates endpoint answers 503.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().String("addr", "", "listen address (default: configured server.address)")
	serveCmd.Flags().Bool("no-store", false, "run without the vault database")
	_ = viper.BindPFlag("server.address", serveCmd.Flags().Lookup("addr"))

	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics := observability.NewMetrics(reg)

	p, err := newPipeline(cfg, metrics)
	if err != nil {
		return err
	}
	deps := server.Deps{
		Formatter: newFormatter(cfg, metrics),
		Scanner:   p.scanner,
		Metrics:   metrics,
		Gatherer:  reg,
		Logger:    logger,
	}

	if noStore, _ := cmd.Flags().GetBool("no-store"); !noStore {
		st, err := openStore(cfg)
		if err != nil {
			return err
		}
		defer st.Close()
		deps.Store = st
	}
	if cfg.PDFMeta.APIKey != "" {
		if deps.PDF, err = newPDFExtractor(cfg); err != nil {
			return err
		}
	} else {
		logger.Warn().Msg("no generative-language API key; PDF metadata endpoint disabled")
	}

	srv := server.New(cfg, deps)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errc := make(chan error, 1)
	go func() { errc <- srv.Start() }()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	logger.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil && !errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return <-errc
}
