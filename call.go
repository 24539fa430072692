package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"azure-devops-mcp-server/internal/domain"
)

func newCallCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "call <tool>",
		Short: "Invoke one tool and print the result",
		Example: `  azure-devops-mcp-server call projects --args '{"operation":"list"}'
  azure-devops-mcp-server call workItems --args '{"operation":"get","getParams":{"id":42}}'`,
		Args: cobra.ExactArgs(1),
		RunE: runCall,
	}

	cmd.Flags().String("args", "{}", "Tool arguments as a JSON object")
	return cmd
}

func runCall(cmd *cobra.Command, args []string) error {
	rawArgs, _ := cmd.Flags().GetString("args")
	var toolArgs map[string]interface{}
	if err := json.Unmarshal([]byte(rawArgs), &toolArgs); err != nil {
		return fmt.Errorf("--args must be a JSON object: %w", err)
	}

	config, err := loadConfig(cmd)
	if err != nil {
		return err
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

	result, err := rt.registry.Invoke(ctx, args[0], toolArgs)
	if err != nil {
		return printCallError(cmd, err)
	}

	for _, block := range result.Content {
		fmt.Fprintln(cmd.OutOrStdout(), block.Text)
	}
	if result.IsError {
		return &exitError{code: 2, err: fmt.Errorf("tool %s rejected the arguments", args[0])}
	}
	return nil
}

// printCallError writes the structured error object and maps it to an
// exit code: 2 for validation failures, 1 otherwise.
func printCallError(cmd *cobra.Command, err error) error {
	rpcErr := domain.NewResponseMapper().MapError(err)
	data, marshalErr := json.MarshalIndent(rpcErr, "", "  ")
	if marshalErr != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(data))

	// Rejected input shares the exit code of a soft validation failure.
	if domain.IsKind(err, domain.KindValidation) {
		return &exitError{code: 2, err: err}
	}
	return &exitError{code: 1, err: err}
}
