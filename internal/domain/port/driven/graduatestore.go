package driven

import (
	"context"

	"github.com/ericfisherdev/graduates/internal/domain/model"
)

// GraduateStore defines the driven port for graduate entity persistence.
// Get returns model.ErrNotFound when no graduate has the given id. Create and
// Update return model.ErrSlugTaken when the non-empty slug is already in use.
type GraduateStore interface {
	Create(ctx context.Context, g model.Graduate) (model.Graduate, error)
	Update(ctx context.Context, g model.Graduate) error
	Get(ctx context.Context, id int64) (*model.Graduate, error)
	Query(ctx context.Context, q model.EntityQuery) (model.EntityQueryResult, error)

	// SlugExists reports whether a graduate other than excludeID uses slug.
	SlugExists(ctx context.Context, slug string, excludeID int64) (bool, error)
}
