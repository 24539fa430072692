package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"azure-devops-mcp-server/internal/application"
)

func newToolsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tools",
		Short: "Print the tool contracts as JSON",
		Long:  "Prints the name, description and input schema of every tool. No configuration or credentials are needed.",
		Args:  cobra.NoArgs,
		RunE:  runTools,
	}
}

func runTools(cmd *cobra.Command, _ []string) error {
	// Contracts are derived from the operation tables alone.
	registry, err := application.NewDefaultRegistry(application.NewResources(nil, ""), nil, nil)
	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(registry.Contracts(), "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode contracts: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(data))
	return nil
}
