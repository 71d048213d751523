package graph

import (
	"sort"

	"github.com/mkm418/padel-intelligence/internal/domain/edge"
	"github.com/mkm418/padel-intelligence/internal/domain/player"
)

// Export is the finalized output of one run.
type Export struct {
	Players  []player.Player `json:"players"`
	Edges    []edge.Edge     `json:"edges"`
	Excluded []string        `json:"excluded"`
	Counts   EdgeCounts      `json:"edge_counts"`
}

type EdgeCounts struct {
	Teammate int `json:"teammate"`
	Opponent int `json:"opponent"`
	Mixed    int `json:"mixed"`
}

// Finalize derives win rate and neighbour counts, drops system accounts from
// the player list and orders players by matches played. Run it once, after
// every match has been folded.
//
// Edges that reference an excluded player are kept as they are.
func Finalize(players *player.Table, edges *edge.Table, rules player.SystemAccountRules) Export {
	neighbors := edges.Neighbors()

	all := players.Players()
	out := Export{
		Players: make([]player.Player, 0, len(all)),
		Edges:   edges.Edges(),
	}
	for _, p := range all {
		p.WinRate = WinRate(p.Wins, p.Losses)
		if n, ok := neighbors[p.ID]; ok {
			p.UniqueTeammates = len(n.Teammates)
			p.UniqueOpponents = len(n.Opponents)
		}
		if rules.IsSystemAccount(p.Name) {
			out.Excluded = append(out.Excluded, p.ID)
			continue
		}
		out.Players = append(out.Players, p)
	}

	sort.SliceStable(out.Players, func(i, j int) bool {
		if out.Players[i].MatchesPlayed != out.Players[j].MatchesPlayed {
			return out.Players[i].MatchesPlayed > out.Players[j].MatchesPlayed
		}
		return out.Players[i].ID < out.Players[j].ID
	})

	counts := edges.Counts()
	out.Counts = EdgeCounts{
		Teammate: counts[edge.RelationTeammate],
		Opponent: counts[edge.RelationOpponent],
		Mixed:    counts[edge.RelationMixed],
	}

	return out
}

// WinRate is wins/(wins+losses), or nil when no decided result exists.
func WinRate(wins, losses int) *float64 {
	decided := wins + losses
	if decided <= 0 {
		return nil
	}
	rate := float64(wins) / float64(decided)
	return &rate
}
