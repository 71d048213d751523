package graph

import (
	"context"

	"github.com/mkm418/padel-intelligence/internal/domain/edge"
	"github.com/mkm418/padel-intelligence/internal/domain/player"
)

// Repository persists finalized aggregates. Upserts are keyed by player id
// and by pair key; ReplaceAll swaps both tables in one transaction.
type Repository interface {
	player.Repository
	edge.Repository
	ReplaceAll(ctx context.Context, players []player.Player, edges []edge.Edge) error
	// PruneStale deletes stored players whose id is in touched but not in
	// keepPlayers, and stored edges with an endpoint in touched whose key is
	// not in keepEdges. It reports how many rows of each it removed.
	PruneStale(ctx context.Context, touched, keepPlayers []string, keepEdges []edge.PairKey) (PruneResult, error)
}

type PruneResult struct {
	Players int
	Edges   int
}
