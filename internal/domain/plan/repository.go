package plan

import "context"

// Repository defines the interface for plan catalog persistence.
// The catalog is populated by an external seeding process; this engine only
// reads it.
type Repository interface {
	// Get retrieves a single plan by ID
	Get(ctx context.Context, id string) (*Plan, error)

	// List retrieves all published plans ordered by sort order
	List(ctx context.Context) ([]*Plan, error)
}
