package application

import (
	"context"
	"crypto/subtle"
	"fmt"
	"log/slog"

	"github.com/ericfisherdev/graduates/internal/domain/model"
	"github.com/ericfisherdev/graduates/internal/metrics"
)

// CredentialSource is what AccessGuard needs from the credential lifecycle.
type CredentialSource interface {
	IsEnabled(ctx context.Context) (bool, error)
	Credential(ctx context.Context) (string, error)
}

// AccessGuard decides per request whether a supplied API key grants access to
// the read API. It holds no state between calls.
type AccessGuard struct {
	credentials CredentialSource
	logger      *slog.Logger
}

// NewAccessGuard creates an AccessGuard backed by the given credential source.
func NewAccessGuard(credentials CredentialSource, logger *slog.Logger) *AccessGuard {
	return &AccessGuard{credentials: credentials, logger: logger}
}

// Authorize returns nil when access is granted, model.ErrMissingCredential
// when the feature is enabled and supplied is empty, model.ErrInvalidCredential
// when supplied does not match, or a wrapped store error.
//
// When the feature is disabled every request is authorized.
func (g *AccessGuard) Authorize(ctx context.Context, supplied string) error {
	enabled, err := g.credentials.IsEnabled(ctx)
	if err != nil {
		metrics.AuthDecisions.WithLabelValues(metrics.ResultError).Inc()
		return fmt.Errorf("check API security flag: %w", err)
	}
	if !enabled {
		metrics.AuthDecisions.WithLabelValues(metrics.ResultBypassed).Inc()
		return nil
	}

	if supplied == "" {
		metrics.AuthDecisions.WithLabelValues(metrics.ResultMissing).Inc()
		return model.ErrMissingCredential
	}

	stored, err := g.credentials.Credential(ctx)
	if err != nil {
		metrics.AuthDecisions.WithLabelValues(metrics.ResultError).Inc()
		return fmt.Errorf("load API key: %w", err)
	}

	// An empty stored credential never matches a non-empty supplied one;
	// ConstantTimeCompare returns 0 for differing lengths.
	if subtle.ConstantTimeCompare([]byte(supplied), []byte(stored)) != 1 {
		metrics.AuthDecisions.WithLabelValues(metrics.ResultInvalid).Inc()
		g.logger.DebugContext(ctx, "API key rejected")
		return model.ErrInvalidCredential
	}

	metrics.AuthDecisions.WithLabelValues(metrics.ResultAuthorized).Inc()
	return nil
}
