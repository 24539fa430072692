package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"azure-devops-mcp-server/internal/application"
)

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the tools over MCP",
		Args:  cobra.NoArgs,
		RunE:  runServe,
	}

	cmd.Flags().String("transport", "", "Transport override: stdio, http or sse")
	cmd.Flags().String("host", "", "Listen host override for http and sse")
	cmd.Flags().Int("port", 0, "Listen port override for http and sse")
	return cmd
}

func runServe(cmd *cobra.Command, _ []string) error {
	config, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	if transport, _ := cmd.Flags().GetString("transport"); transport != "" {
		config.Transport.Type = transport
	}
	if host, _ := cmd.Flags().GetString("host"); host != "" {
		config.Transport.HTTP.Host = host
	}
	if port, _ := cmd.Flags().GetInt("port"); port != 0 {
		config.Transport.HTTP.Port = port
	}
	if err := config.Validate(); err != nil {
		return fmt.Errorf("configuration validation failed: %w", err)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rt, err := bootstrap(ctx, config, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		rt.close(shutdownCtx)
	}()

	server := application.NewServer(rt.registry, rt.logger, version)
	if err := server.Run(ctx, config.Transport); err != nil {
		rt.logger.Error("server stopped with error", err, nil)
		return err
	}
	rt.logger.Info("server shutdown complete", nil)
	return nil
}
