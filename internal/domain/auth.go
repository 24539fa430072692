package domain

import (
	"encoding/base64"
	"fmt"
	"net/http"
	"regexp"
	"strings"
	"time"
)

// MaskedSecretValue replaces credentials in any user-facing or logged text.
const MaskedSecretValue = "**********"

// Credentials holds the personal access token used for every upstream call.
type Credentials struct {
	Token string
}

// AuthenticationManager owns the single credential set of the instance and
// hands out HTTP clients that authenticate with it.
type AuthenticationManager struct {
	credentials *Credentials
}

// NewAuthenticationManager creates a new authentication manager.
func NewAuthenticationManager(credentials *Credentials) *AuthenticationManager {
	return &AuthenticationManager{credentials: credentials}
}

// NewAuthenticationManagerFromConfig creates an authentication manager from a configuration.
func NewAuthenticationManagerFromConfig(config *Config) *AuthenticationManager {
	return NewAuthenticationManager(&Credentials{Token: config.Token})
}

// ValidateCredentials checks that a token is configured.
func (am *AuthenticationManager) ValidateCredentials() error {
	if am.credentials == nil {
		return fmt.Errorf("credentials cannot be nil")
	}
	if strings.TrimSpace(am.credentials.Token) == "" {
		return fmt.Errorf("personal access token is required")
	}
	return nil
}

// GetAuthenticatedClient returns an HTTP client whose transport adds the
// Basic authorization header derived from the token.
func (am *AuthenticationManager) GetAuthenticatedClient(timeout time.Duration) (*http.Client, error) {
	if err := am.ValidateCredentials(); err != nil {
		return nil, err
	}

	return &http.Client{
		Transport: &authenticatedTransport{
			base:        http.DefaultTransport,
			credentials: am.credentials,
		},
		Timeout: timeout,
	}, nil
}

// Redactor returns a redactor that masks this manager's credentials.
func (am *AuthenticationManager) Redactor() *Redactor {
	if am.credentials == nil {
		return NewRedactor()
	}
	return NewRedactor(am.credentials.Token)
}

// BasicAuthValue returns the Authorization header value for a token:
// Basic auth with an empty user name and the token as password.
func BasicAuthValue(token string) string {
	return "Basic " + base64.StdEncoding.EncodeToString([]byte(":"+token))
}

// authenticatedTransport is an http.RoundTripper that adds the
// authorization header to every request.
type authenticatedTransport struct {
	base        http.RoundTripper
	credentials *Credentials
}

// RoundTrip implements http.RoundTripper.
func (t *authenticatedTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	// RoundTrippers must not modify the original request.
	clonedReq := req.Clone(req.Context())
	clonedReq.Header.Set("Authorization", BasicAuthValue(t.credentials.Token))
	return t.base.RoundTrip(clonedReq)
}

var authHeaderPattern = regexp.MustCompile(`(?i)\b(basic|bearer)\s+[A-Za-z0-9+/=._~-]{16,}`)

// Redactor masks secrets and authorization header values in text.
type Redactor struct {
	secrets []string
}

// NewRedactor creates a redactor for the given secrets. The Basic header
// encoding of each secret is masked as well.
func NewRedactor(secrets ...string) *Redactor {
	r := &Redactor{}
	for _, s := range secrets {
		if strings.TrimSpace(s) == "" {
			continue
		}
		r.secrets = append(r.secrets, s,
			base64.StdEncoding.EncodeToString([]byte(":"+s)),
		)
	}
	return r
}

// Redact returns s with every known secret and authorization value masked.
func (r *Redactor) Redact(s string) string {
	if r == nil || s == "" {
		return s
	}
	for _, secret := range r.secrets {
		s = strings.ReplaceAll(s, secret, MaskedSecretValue)
	}
	return authHeaderPattern.ReplaceAllStringFunc(s, func(match string) string {
		scheme := strings.Fields(match)[0]
		return scheme + " " + MaskedSecretValue
	})
}
