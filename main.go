package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Set via ldflags at build time.
var version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		var exitErr *exitError
		if errors.As(err, &exitErr) {
			os.Exit(exitErr.code)
		}
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "azure-devops-mcp-server",
		Short:        "MCP tool server for the Azure DevOps REST API",
		Long:         "Exposes Azure DevOps projects, repositories, work items, pull requests and pipelines as MCP tools.",
		SilenceUsage: true,
	}

	root.PersistentFlags().String("config", "", "Path to configuration file (environment only when empty)")

	root.Version = version
	root.SetVersionTemplate(fmt.Sprintf("azure-devops-mcp-server version %s\n", version))

	root.AddCommand(newServeCmd())
	root.AddCommand(newToolsCmd())
	root.AddCommand(newCallCmd())
	root.AddCommand(newVersionCmd())
	return root
}

// exitError carries a process exit code up to main.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string {
	return e.err.Error()
}

func (e *exitError) Unwrap() error {
	return e.err
}
