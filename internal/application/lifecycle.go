package application

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/ericfisherdev/graduates/internal/domain/model"
	"github.com/ericfisherdev/graduates/internal/domain/port/driven"
)

// Lifecycle implements the install and uninstall hooks.
type Lifecycle struct {
	caps    driven.CapabilityStore
	secrets *SecretStore
	logger  *slog.Logger
}

// NewLifecycle creates a Lifecycle with the required dependencies.
func NewLifecycle(caps driven.CapabilityStore, secrets *SecretStore, logger *slog.Logger) *Lifecycle {
	return &Lifecycle{caps: caps, secrets: secrets, logger: logger}
}

// Install grants the graduate capabilities to the granting roles and makes
// sure the encryption key exists. Running it again is harmless.
func (l *Lifecycle) Install(ctx context.Context) error {
	capabilities := model.GraduateCapabilities()
	for _, role := range model.GrantRoles {
		if err := l.caps.Grant(ctx, role, capabilities); err != nil {
			return fmt.Errorf("install: %w", err)
		}
	}

	if _, err := l.secrets.GetOrCreateEncryptionKey(ctx); err != nil {
		return fmt.Errorf("install: %w", err)
	}

	l.logger.InfoContext(ctx, "install complete", "roles", model.GrantRoles, "capabilities", len(capabilities))
	return nil
}

// Uninstall deletes the security settings and revokes the graduate
// capabilities from every role that could hold them. Credentials encrypted
// under the deleted key cannot be recovered afterwards.
func (l *Lifecycle) Uninstall(ctx context.Context) error {
	if err := l.secrets.Purge(ctx); err != nil {
		return fmt.Errorf("uninstall: %w", err)
	}

	capabilities := model.GraduateCapabilities()
	for _, role := range model.RevokeRoles {
		if err := l.caps.Revoke(ctx, role, capabilities); err != nil {
			return fmt.Errorf("uninstall: %w", err)
		}
	}

	l.logger.InfoContext(ctx, "uninstall complete", "roles", model.RevokeRoles)
	return nil
}
