package graph

import (
	"github.com/mkm418/padel-intelligence/internal/domain/edge"
	"github.com/mkm418/padel-intelligence/internal/domain/match"
	"github.com/mkm418/padel-intelligence/internal/domain/player"
)

// Diagnostics are per-run tallies. They never influence aggregates.
type Diagnostics struct {
	RawMatches       int `json:"raw_matches"`
	Played           int `json:"played"`
	Canceled         int `json:"canceled"`
	Pending          int `json:"pending"`
	OtherStatus      int `json:"other_status"`
	Malformed        int `json:"malformed"`
	Duplicates       int `json:"duplicates"`
	WithUsableResult int `json:"with_usable_result"`
	WithSetScores    int `json:"with_set_scores"`
	EdgeEligible     int `json:"edge_eligible"`
	PairEvents       int `json:"pair_events"`
}

// Builder folds matches into a player table and an edge table. Callers must
// hand each distinct match id to Add at most once.
type Builder struct {
	Players     *player.Table
	Edges       *edge.Table
	Diagnostics Diagnostics
}

func NewBuilder() *Builder {
	return &Builder{
		Players: player.NewTable(),
		Edges:   edge.NewTable(),
	}
}

func (b *Builder) Add(m match.Match) {
	b.Diagnostics.RawMatches++
	switch m.Status {
	case match.StatusPlayed:
		b.Diagnostics.Played++
	case match.StatusCanceled:
		b.Diagnostics.Canceled++
		return
	case match.StatusPending:
		b.Diagnostics.Pending++
		return
	default:
		b.Diagnostics.OtherStatus++
		return
	}

	if m.ResultUsable() {
		b.Diagnostics.WithUsableResult++
	}
	if m.HasSetScores() {
		b.Diagnostics.WithSetScores++
	}

	b.Players.FoldMatch(m)
	if m.EdgeEligible() {
		b.Diagnostics.EdgeEligible++
		b.Diagnostics.PairEvents += b.Edges.FoldMatch(m)
	}
}

// AddMalformed records a raw record that failed normalization.
func (b *Builder) AddMalformed() {
	b.Diagnostics.RawMatches++
	b.Diagnostics.Malformed++
}

// AddDuplicate records a repeated match id that was not folded again.
func (b *Builder) AddDuplicate() {
	b.Diagnostics.Duplicates++
}

func (b *Builder) Finalize(rules player.SystemAccountRules) Export {
	return Finalize(b.Players, b.Edges, rules)
}
