package match

import "context"

// Repository describes durable match history needed by reconciliation.
type Repository interface {
	UpsertMatches(ctx context.Context, items []Match) error
	LatestStartDate(ctx context.Context) (string, bool, error)
	ListPlayedByPlayerIDs(ctx context.Context, playerIDs []string) ([]Match, error)
	// ListPlayerIDsByMatchIDs returns the distinct stored roster of the
	// given matches, whatever their status, sorted.
	ListPlayerIDsByMatchIDs(ctx context.Context, matchIDs []string) ([]string, error)
}
