package match

import "slices"

// IsEligible reports whether the match takes part in player aggregation.
func (m Match) IsEligible() bool {
	return m.Status == StatusPlayed
}

// HasEnoughPlayers reports whether the match can produce relationship
// events: at least two identified participants across both rosters.
func (m Match) HasEnoughPlayers() bool {
	return len(m.Teams[0].Players)+len(m.Teams[1].Players) >= 2
}

// EdgeEligible combines both predicates used by the relationship extractor.
func (m Match) EdgeEligible() bool {
	return m.IsEligible() && m.HasEnoughPlayers()
}

// ResultUsable requires both rosters to carry a WON or LOST result.
func (m Match) ResultUsable() bool {
	return isDecided(m.Teams[0].Result) && isDecided(m.Teams[1].Result)
}

func (m Match) HasSetScores() bool {
	return len(m.Sets) > 0
}

// Perspective returns the outcome and set/game tallies from one roster's
// side. Win/loss and set tallies are validated independently: a match with
// an unusable result still reports its accepted sets.
func (m Match) Perspective(team int) Perspective {
	var out Perspective
	if team != 0 && team != 1 {
		return out
	}
	if m.ResultUsable() {
		out.Outcome = m.Teams[team].Result
	}

	for _, set := range m.Sets {
		mine, theirs := set.Team0, set.Team1
		if team == 1 {
			mine, theirs = theirs, mine
		}
		out.GamesWon += mine
		out.GamesLost += theirs
		switch {
		case mine > theirs:
			out.SetsWon++
		case theirs > mine:
			out.SetsLost++
		}
	}

	return out
}

// Seats lists every distinct participant once, tagged with the roster they
// first appear on.
func (m Match) Seats() []Seat {
	out := make([]Seat, 0, len(m.Teams[0].Players)+len(m.Teams[1].Players))
	seen := make(map[string]struct{}, cap(out))
	for teamIdx, team := range m.Teams {
		for _, p := range team.Players {
			if p.ID == "" {
				continue
			}
			if _, ok := seen[p.ID]; ok {
				continue
			}
			seen[p.ID] = struct{}{}
			out = append(out, Seat{Team: teamIdx, Participant: p})
		}
	}
	return out
}

// PlayerIDs returns the distinct participant ids of the match.
func (m Match) PlayerIDs() []string {
	seats := m.Seats()
	out := make([]string, 0, len(seats))
	for _, seat := range seats {
		out = append(out, seat.Participant.ID)
	}
	return out
}

// AddVenue inserts venue into a sorted venue set. Empty names are ignored
// and the input slice is never modified in place.
func AddVenue(venues []string, venue string) []string {
	if venue == "" {
		return venues
	}
	idx, found := slices.BinarySearch(venues, venue)
	if found {
		return venues
	}
	out := make([]string, 0, len(venues)+1)
	out = append(out, venues[:idx]...)
	out = append(out, venue)
	out = append(out, venues[idx:]...)
	return out
}

func isDecided(outcome Outcome) bool {
	return outcome == OutcomeWon || outcome == OutcomeLost
}
