package edge

import "context"

// Repository describes edge persistence needs from reconciliation.
type Repository interface {
	UpsertEdges(ctx context.Context, items []Edge) error
}
