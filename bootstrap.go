package main

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"azure-devops-mcp-server/internal/application"
	"azure-devops-mcp-server/internal/domain"
	"azure-devops-mcp-server/internal/infrastructure"
	"azure-devops-mcp-server/internal/telemetry"
)

// runtime holds everything built from one configuration.
type runtime struct {
	config    *domain.Config
	logger    domain.Logger
	registry  *application.Registry
	telemetry *telemetry.Providers
}

// loadConfig reads the file named by the persistent --config flag.
func loadConfig(cmd *cobra.Command) (*domain.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	return domain.LoadConfig(path)
}

// bootstrap wires credentials, transport, telemetry and tools together.
// Logs go to logOut; stdout stays reserved for the protocol.
func bootstrap(ctx context.Context, config *domain.Config, logOut io.Writer) (*runtime, error) {
	authManager := domain.NewAuthenticationManagerFromConfig(config)
	redactor := authManager.Redactor()
	logger := domain.NewStructuredLogger(logOut, config.Logging.Format, config.Logging.Level, redactor)

	httpClient, err := authManager.GetAuthenticatedClient(0)
	if err != nil {
		return nil, fmt.Errorf("failed to create authenticated client: %w", err)
	}

	providers, err := telemetry.Setup(ctx, config.Telemetry, logger)
	if err != nil {
		return nil, err
	}
	observer, err := providers.Observer()
	if err != nil {
		_ = providers.Shutdown(ctx)
		return nil, fmt.Errorf("failed to create telemetry observer: %w", err)
	}

	api := infrastructure.NewDevOpsClient(config.OrganizationURL(), config.APIVersion, httpClient,
		infrastructure.WithRetryPolicy(infrastructure.RetryPolicyFromConfig(config.Retry)),
		infrastructure.WithAttemptTimeout(config.Timeout),
		infrastructure.WithLogger(logger),
		infrastructure.WithRedactor(redactor),
		infrastructure.WithObserver(observer),
	)

	classifier := domain.NewErrorClassifier(logger, redactor)
	registry, err := application.NewDefaultRegistry(
		application.NewResources(api, config.Project),
		classifier,
		logger,
		application.WithObserver(observer),
	)
	if err != nil {
		_ = providers.Shutdown(ctx)
		return nil, fmt.Errorf("failed to build tools: %w", err)
	}

	logger.Info("runtime initialized", map[string]interface{}{
		"organization": config.Organization,
		"project":      config.Project,
		"api_version":  config.APIVersion,
		"tools":        len(registry.Contracts()),
	})

	return &runtime{
		config:    config,
		logger:    logger,
		registry:  registry,
		telemetry: providers,
	}, nil
}

// close flushes telemetry.
func (r *runtime) close(ctx context.Context) {
	if err := r.telemetry.Shutdown(ctx); err != nil {
		r.logger.Error("telemetry shutdown failed", err, nil)
	}
}
