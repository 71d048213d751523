package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/mkm418/padel-intelligence/internal/domain/edge"
	"github.com/mkm418/padel-intelligence/internal/domain/graph"
	"github.com/mkm418/padel-intelligence/internal/domain/player"
)

type AggregateRepository struct {
	mu      sync.RWMutex
	players map[string]player.Player
	edges   map[edge.PairKey]edge.Edge
}

func NewAggregateRepository() *AggregateRepository {
	return &AggregateRepository{
		players: make(map[string]player.Player),
		edges:   make(map[edge.PairKey]edge.Edge),
	}
}

func (r *AggregateRepository) UpsertPlayers(_ context.Context, items []player.Player) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, item := range items {
		r.players[item.ID] = clonePlayer(item)
	}
	return nil
}

func (r *AggregateRepository) UpsertEdges(_ context.Context, items []edge.Edge) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, item := range items {
		r.edges[item.Key()] = cloneEdge(item)
	}
	return nil
}

func (r *AggregateRepository) ReplaceAll(_ context.Context, players []player.Player, edges []edge.Edge) error {
	nextPlayers := make(map[string]player.Player, len(players))
	for _, item := range players {
		nextPlayers[item.ID] = clonePlayer(item)
	}
	nextEdges := make(map[edge.PairKey]edge.Edge, len(edges))
	for _, item := range edges {
		nextEdges[item.Key()] = cloneEdge(item)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.players = nextPlayers
	r.edges = nextEdges
	return nil
}

func (r *AggregateRepository) PruneStale(_ context.Context, touched, keepPlayers []string, keepEdges []edge.PairKey) (graph.PruneResult, error) {
	touchedSet := stringSet(touched)
	keepPlayerSet := stringSet(keepPlayers)
	keepEdgeSet := make(map[edge.PairKey]struct{}, len(keepEdges))
	for _, key := range keepEdges {
		keepEdgeSet[key] = struct{}{}
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	var out graph.PruneResult
	for playerID := range r.players {
		_, isTouched := touchedSet[playerID]
		_, keep := keepPlayerSet[playerID]
		if isTouched && !keep {
			delete(r.players, playerID)
			out.Players++
		}
	}
	for key := range r.edges {
		_, source := touchedSet[key.A]
		_, target := touchedSet[key.B]
		if !source && !target {
			continue
		}
		if _, keep := keepEdgeSet[key]; !keep {
			delete(r.edges, key)
			out.Edges++
		}
	}
	return out, nil
}

// Players returns stored players ordered by id.
func (r *AggregateRepository) Players() []player.Player {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]player.Player, 0, len(r.players))
	for _, item := range r.players {
		out = append(out, clonePlayer(item))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Edges returns stored edges ordered by pair key.
func (r *AggregateRepository) Edges() []edge.Edge {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]edge.Edge, 0, len(r.edges))
	for _, item := range r.edges {
		out = append(out, cloneEdge(item))
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Source != out[j].Source {
			return out[i].Source < out[j].Source
		}
		return out[i].Target < out[j].Target
	})
	return out
}

func clonePlayer(p player.Player) player.Player {
	copied := p
	copied.Clubs = append([]string(nil), p.Clubs...)
	return copied
}

func cloneEdge(e edge.Edge) edge.Edge {
	copied := e
	copied.Clubs = append([]string(nil), e.Clubs...)
	return copied
}

func stringSet(items []string) map[string]struct{} {
	out := make(map[string]struct{}, len(items))
	for _, item := range items {
		out[item] = struct{}{}
	}
	return out
}
