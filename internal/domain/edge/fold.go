package edge

import (
	"slices"

	"github.com/mkm418/padel-intelligence/internal/domain/match"
)

// Fold applies one pair event to existing (nil when the pair is new).
// existing is not modified.
func Fold(existing *Edge, ev PairEvent) Edge {
	if existing == nil {
		return Edge{
			Source:       ev.Key.A,
			Target:       ev.Key.B,
			Weight:       1,
			Clubs:        match.AddVenue(nil, ev.Venue),
			LastPlayed:   ev.Date,
			Relationship: ev.Relation,
		}
	}

	out := *existing
	out.Weight++
	out.Clubs = match.AddVenue(slices.Clone(existing.Clubs), ev.Venue)
	if ev.Date > out.LastPlayed {
		out.LastPlayed = ev.Date
	}
	out.Relationship = out.Relationship.Merge(ev.Relation)
	return out
}

// ExtractPairEvents enumerates every teammate pair inside each roster and
// every opponent pair across rosters. Matches that are not edge eligible
// produce nothing. Pairs of an id with itself are skipped.
func ExtractPairEvents(m match.Match) []PairEvent {
	if !m.EdgeEligible() {
		return nil
	}

	home, away := m.Teams[0].Players, m.Teams[1].Players
	out := make([]PairEvent, 0, pairCount(len(home))+pairCount(len(away))+len(home)*len(away))
	emit := func(x, y string, rel Relation) {
		key := NewPairKey(x, y)
		if !key.Valid() {
			return
		}
		out = append(out, PairEvent{Key: key, Relation: rel, Venue: m.Venue, Date: m.StartDate})
	}

	for _, roster := range [][]match.Participant{home, away} {
		for i := 0; i < len(roster); i++ {
			for j := i + 1; j < len(roster); j++ {
				emit(roster[i].ID, roster[j].ID, RelationTeammate)
			}
		}
	}
	for _, x := range home {
		for _, y := range away {
			emit(x.ID, y.ID, RelationOpponent)
		}
	}

	return out
}

func pairCount(n int) int {
	return n * (n - 1) / 2
}
