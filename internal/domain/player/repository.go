package player

import "context"

// Repository describes player persistence needs from reconciliation.
type Repository interface {
	UpsertPlayers(ctx context.Context, items []Player) error
}
