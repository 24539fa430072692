package domain

import (
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	DefaultBaseURL       = "https://dev.azure.com"
	DefaultAPIVersion    = "7.0"
	DefaultTimeout       = 30 * time.Second
	DefaultMaxRetries    = 3
	DefaultDelayMs       = 1000
	DefaultBackoffFactor = 2.0
)

// Environment variables that override the configuration file.
const (
	EnvOrganization = "AZURE_DEVOPS_ORG"
	EnvToken        = "AZURE_DEVOPS_PAT"
	EnvProject      = "AZURE_DEVOPS_PROJECT"
	EnvBaseURL      = "AZURE_DEVOPS_BASE_URL"
	EnvAPIVersion   = "AZURE_DEVOPS_API_VERSION"
)

// Config represents the server configuration.
// This is the root configuration structure loaded from YAML files.
type Config struct {
	Organization string          `yaml:"organization"`
	Project      string          `yaml:"project,omitempty"`
	Token        string          `yaml:"token,omitempty"`
	BaseURL      string          `yaml:"base_url,omitempty"`
	APIVersion   string          `yaml:"api_version,omitempty"`
	Timeout      time.Duration   `yaml:"timeout,omitempty"`
	Retry        RetryConfig     `yaml:"retry,omitempty"`
	Transport    TransportConfig `yaml:"transport"`
	Logging      LoggingConfig   `yaml:"logging,omitempty"`
	Telemetry    TelemetryConfig `yaml:"telemetry,omitempty"`
}

// RetryConfig tunes the transport retry policy. MaxRetries counts retries
// after the first attempt; nil selects the default.
type RetryConfig struct {
	MaxRetries    *int    `yaml:"max_retries,omitempty"`
	DelayMs       int     `yaml:"delay_ms,omitempty"`
	BackoffFactor float64 `yaml:"backoff_factor,omitempty"`
}

// TransportConfig defines how the MCP server is exposed.
type TransportConfig struct {
	Type string     `yaml:"type"` // "stdio", "http" or "sse"
	HTTP HTTPConfig `yaml:"http,omitempty"`
}

// HTTPConfig defines HTTP transport settings.
// Only used when transport type is "http" or "sse".
type HTTPConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// LoggingConfig selects log level and output format.
type LoggingConfig struct {
	Level  string `yaml:"level,omitempty"`
	Format string `yaml:"format,omitempty"`
}

// TelemetryConfig enables OpenTelemetry traces and metrics.
type TelemetryConfig struct {
	Enabled     bool   `yaml:"enabled"`
	Endpoint    string `yaml:"endpoint,omitempty"`
	Insecure    bool   `yaml:"insecure,omitempty"`
	ServiceName string `yaml:"service_name,omitempty"`
}

// LoadConfig reads, completes and validates configuration.
// An empty path builds the configuration from the environment alone.
func LoadConfig(path string) (*Config, error) {
	var config Config

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if os.IsNotExist(err) {
				return nil, fmt.Errorf("configuration file not found: %s", path)
			}
			return nil, fmt.Errorf("failed to read configuration file: %w", err)
		}

		if err := yaml.Unmarshal(data, &config); err != nil {
			return nil, fmt.Errorf("invalid YAML syntax in configuration file: %w", err)
		}
	}

	config.ApplyEnv(os.Getenv)
	config.ApplyDefaults()

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &config, nil
}

// ApplyEnv overrides file values with non-empty environment variables.
func (c *Config) ApplyEnv(getenv func(string) string) {
	overrides := map[string]*string{
		EnvOrganization: &c.Organization,
		EnvToken:        &c.Token,
		EnvProject:      &c.Project,
		EnvBaseURL:      &c.BaseURL,
		EnvAPIVersion:   &c.APIVersion,
	}
	for name, field := range overrides {
		if v := strings.TrimSpace(getenv(name)); v != "" {
			*field = v
		}
	}
}

// ApplyDefaults fills every unset optional field.
func (c *Config) ApplyDefaults() {
	if c.BaseURL == "" {
		c.BaseURL = DefaultBaseURL
	}
	c.BaseURL = strings.TrimRight(c.BaseURL, "/")
	if c.APIVersion == "" {
		c.APIVersion = DefaultAPIVersion
	}
	if c.Timeout == 0 {
		c.Timeout = DefaultTimeout
	}
	if c.Retry.MaxRetries == nil {
		n := DefaultMaxRetries
		c.Retry.MaxRetries = &n
	}
	if c.Retry.DelayMs == 0 {
		c.Retry.DelayMs = DefaultDelayMs
	}
	if c.Retry.BackoffFactor == 0 {
		c.Retry.BackoffFactor = DefaultBackoffFactor
	}
	if c.Transport.Type == "" {
		c.Transport.Type = "stdio"
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Format == "" {
		c.Logging.Format = "json"
	}
	if c.Telemetry.ServiceName == "" {
		c.Telemetry.ServiceName = "azure-devops-mcp-server"
	}
}

// OrganizationURL returns the base URL joined with the organization.
func (c *Config) OrganizationURL() string {
	return strings.TrimRight(c.BaseURL, "/") + "/" + url.PathEscape(c.Organization)
}

// Validate checks the configuration for completeness and correctness.
// Returns an error describing all validation failures.
func (c *Config) Validate() error {
	var errors []string

	if strings.TrimSpace(c.Organization) == "" {
		errors = append(errors, fmt.Sprintf("organization is required (set it in the file or %s)", EnvOrganization))
	}
	if strings.TrimSpace(c.Token) == "" {
		errors = append(errors, fmt.Sprintf("token is required (set it in the file or %s)", EnvToken))
	}

	if err := c.validateBaseURL(); err != nil {
		errors = append(errors, err.Error())
	}

	if err := c.validateRetry(); err != nil {
		errors = append(errors, err.Error())
	}

	if c.Timeout < 0 {
		errors = append(errors, fmt.Sprintf("invalid timeout %s: must be positive", c.Timeout))
	}

	if err := c.validateTransport(); err != nil {
		errors = append(errors, err.Error())
	}

	if c.Telemetry.Enabled && c.Telemetry.Endpoint != "" {
		if _, err := url.Parse(c.Telemetry.Endpoint); err != nil {
			errors = append(errors, fmt.Sprintf("telemetry endpoint is invalid: %v", err))
		}
	}

	if len(errors) > 0 {
		return fmt.Errorf("validation errors: %s", strings.Join(errors, "; "))
	}

	return nil
}

func (c *Config) validateBaseURL() error {
	if c.BaseURL == "" {
		return nil
	}
	parsedURL, err := url.Parse(c.BaseURL)
	if err != nil {
		return fmt.Errorf("base_url is invalid: %v", err)
	}
	if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
		return fmt.Errorf("base_url must use http or https scheme")
	}
	if parsedURL.Host == "" {
		return fmt.Errorf("base_url must include a host")
	}
	return nil
}

func (c *Config) validateRetry() error {
	var errors []string

	if c.Retry.MaxRetries != nil && *c.Retry.MaxRetries < 0 {
		errors = append(errors, fmt.Sprintf("invalid retry.max_retries %d: must not be negative", *c.Retry.MaxRetries))
	}
	if c.Retry.DelayMs < 0 {
		errors = append(errors, fmt.Sprintf("invalid retry.delay_ms %d: must not be negative", c.Retry.DelayMs))
	}
	if c.Retry.BackoffFactor != 0 && c.Retry.BackoffFactor < 1 {
		errors = append(errors, fmt.Sprintf("invalid retry.backoff_factor %g: must be at least 1", c.Retry.BackoffFactor))
	}

	if len(errors) > 0 {
		return fmt.Errorf("%s", strings.Join(errors, "; "))
	}
	return nil
}

// validateTransport validates the transport configuration.
func (c *Config) validateTransport() error {
	var errors []string

	switch c.Transport.Type {
	case "":
		errors = append(errors, "transport type is required")
	case "stdio":
	case "http", "sse":
		if c.Transport.HTTP.Host == "" {
			errors = append(errors, fmt.Sprintf("HTTP host is required when transport type is '%s'", c.Transport.Type))
		}
		if c.Transport.HTTP.Port <= 0 || c.Transport.HTTP.Port > 65535 {
			errors = append(errors, fmt.Sprintf("invalid HTTP port %d: must be between 1 and 65535", c.Transport.HTTP.Port))
		}
	default:
		errors = append(errors, fmt.Sprintf("invalid transport type '%s': must be 'stdio', 'http' or 'sse'", c.Transport.Type))
	}

	if len(errors) > 0 {
		return fmt.Errorf("%s", strings.Join(errors, "; "))
	}

	return nil
}

// Retries returns the configured retry count.
func (r RetryConfig) Retries() int {
	if r.MaxRetries == nil {
		return DefaultMaxRetries
	}
	return *r.MaxRetries
}
