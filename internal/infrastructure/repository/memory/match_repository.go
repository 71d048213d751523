package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/mkm418/padel-intelligence/internal/domain/match"
)

// MatchRepository keeps match history in process. It backs watch runs that
// have no database, so history accumulates across ticks but not restarts.
type MatchRepository struct {
	mu       sync.RWMutex
	items    map[string]match.Match
	byPlayer map[string]map[string]struct{}
}

func NewMatchRepository() *MatchRepository {
	return &MatchRepository{
		items:    make(map[string]match.Match),
		byPlayer: make(map[string]map[string]struct{}),
	}
}

func (r *MatchRepository) UpsertMatches(_ context.Context, items []match.Match) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, item := range items {
		if previous, ok := r.items[item.ID]; ok {
			for _, playerID := range previous.PlayerIDs() {
				delete(r.byPlayer[playerID], item.ID)
			}
		}
		r.items[item.ID] = cloneMatch(item)
		for _, playerID := range item.PlayerIDs() {
			if _, ok := r.byPlayer[playerID]; !ok {
				r.byPlayer[playerID] = make(map[string]struct{})
			}
			r.byPlayer[playerID][item.ID] = struct{}{}
		}
	}
	return nil
}

func (r *MatchRepository) LatestStartDate(_ context.Context) (string, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	latest := ""
	for _, item := range r.items {
		if item.StartDate > latest {
			latest = item.StartDate
		}
	}
	return latest, latest != "", nil
}

func (r *MatchRepository) ListPlayedByPlayerIDs(_ context.Context, playerIDs []string) ([]match.Match, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	seen := make(map[string]struct{})
	out := make([]match.Match, 0)
	for _, playerID := range playerIDs {
		for matchID := range r.byPlayer[playerID] {
			if _, ok := seen[matchID]; ok {
				continue
			}
			seen[matchID] = struct{}{}
			item := r.items[matchID]
			if item.Status != match.StatusPlayed {
				continue
			}
			out = append(out, cloneMatch(item))
		}
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].StartDate != out[j].StartDate {
			return out[i].StartDate < out[j].StartDate
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (r *MatchRepository) ListPlayerIDsByMatchIDs(_ context.Context, matchIDs []string) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	set := make(map[string]struct{})
	for _, matchID := range matchIDs {
		item, ok := r.items[matchID]
		if !ok {
			continue
		}
		for _, playerID := range item.PlayerIDs() {
			set[playerID] = struct{}{}
		}
	}
	out := make([]string, 0, len(set))
	for playerID := range set {
		out = append(out, playerID)
	}
	sort.Strings(out)
	return out, nil
}

func (r *MatchRepository) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.items)
}

func cloneMatch(m match.Match) match.Match {
	copied := m
	for i := range copied.Teams {
		copied.Teams[i].Players = append([]match.Participant(nil), m.Teams[i].Players...)
	}
	copied.Sets = append([]match.SetScore(nil), m.Sets...)
	return copied
}
