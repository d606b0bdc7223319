package application

import (
	"context"
	"crypto/sha256"
	"crypto/subtle"
	"errors"
	"fmt"

	"github.com/ericfisherdev/graduates/internal/domain/model"
	"github.com/ericfisherdev/graduates/internal/domain/port/driven"
)

// Operator authorization errors.
var (
	// ErrAdminDisabled means no operator token is configured, so nobody may
	// use the admin screens.
	ErrAdminDisabled = errors.New("admin access is disabled")

	// ErrOperatorUnauthenticated means the operator token is missing or wrong.
	ErrOperatorUnauthenticated = errors.New("operator token missing or invalid")

	// ErrOperatorForbidden means the operator role lacks the capability.
	ErrOperatorForbidden = errors.New("operator lacks capability")
)

// OperatorGate guards the admin screens. An operator proves itself with the
// configured token and then acts as model.OperatorRole, whose granted
// capabilities decide what it may edit.
type OperatorGate struct {
	tokenSum [sha256.Size]byte
	enabled  bool
	caps     driven.CapabilityStore
}

// NewOperatorGate creates an OperatorGate. An empty token disables admin access.
func NewOperatorGate(token string, caps driven.CapabilityStore) *OperatorGate {
	return &OperatorGate{
		tokenSum: sha256.Sum256([]byte(token)),
		enabled:  token != "",
		caps:     caps,
	}
}

// Enabled reports whether an operator token is configured.
func (g *OperatorGate) Enabled() bool {
	return g.enabled
}

// Authorize checks supplied against the operator token and, when capability
// is non-empty, that the operator role holds it.
func (g *OperatorGate) Authorize(ctx context.Context, supplied, capability string) error {
	if !g.enabled {
		return ErrAdminDisabled
	}

	sum := sha256.Sum256([]byte(supplied))
	if supplied == "" || subtle.ConstantTimeCompare(sum[:], g.tokenSum[:]) != 1 {
		return ErrOperatorUnauthenticated
	}

	if capability == "" {
		return nil
	}
	ok, err := g.caps.Has(ctx, model.OperatorRole, capability)
	if err != nil {
		return fmt.Errorf("check %s capability: %w", capability, err)
	}
	if !ok {
		return fmt.Errorf("%w: %s", ErrOperatorForbidden, capability)
	}
	return nil
}
