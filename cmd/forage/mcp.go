// ABOUTME: MCP serve command
// ABOUTME: Starts the MCP server for AI agent integration, optionally exposing metrics

package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/harper/forage/internal/api"
	"github.com/harper/forage/internal/icons"
	"github.com/harper/forage/internal/mcp"
	"github.com/harper/forage/internal/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start MCP server for AI agents",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		catalog, err := icons.BuildCatalog()
		if err != nil {
			return fmt.Errorf("failed to build icon catalog: %w", err)
		}

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		go func() {
			<-sigCh
			cancel()
		}()

		apiClient := client
		if addr, _ := cmd.Flags().GetString("metrics-addr"); addr != "" {
			registry := prometheus.NewRegistry()
			recorder, err := metrics.NewRecorder(registry)
			if err != nil {
				return err
			}
			opts := append(cfg.APIOptions(), api.WithLogger(logger), api.WithObserver(recorder))
			apiClient = api.NewClient(cfg.APIURL, opts...)

			srv := &http.Server{
				Addr:              addr,
				Handler:           promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
				ReadHeaderTimeout: 5 * time.Second,
			}
			go func() {
				logger.Info("serving metrics", "addr", addr)
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					logger.Error("metrics server failed", "error", err)
				}
			}()
			defer func() {
				shutdownCtx, stop := context.WithTimeout(context.Background(), 2*time.Second)
				defer stop()
				_ = srv.Shutdown(shutdownCtx)
			}()
		}

		server, err := mcp.NewServer(oracle, catalog, apiClient, mcp.WithLogger(logger))
		if err != nil {
			return err
		}
		return server.Serve(ctx)
	},
}

func init() {
	mcpCmd.Flags().String("metrics-addr", "", "serve Prometheus metrics on this address (e.g. :9090)")
	rootCmd.AddCommand(mcpCmd)
}
