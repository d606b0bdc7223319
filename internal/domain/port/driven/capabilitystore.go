package driven

import "context"

// CapabilityStore defines the driven port for role capability grants.
type CapabilityStore interface {
	Grant(ctx context.Context, role string, capabilities []string) error
	Revoke(ctx context.Context, role string, capabilities []string) error
	Has(ctx context.Context, role, capability string) (bool, error)
	ListByRole(ctx context.Context, role string) ([]string, error)
}
