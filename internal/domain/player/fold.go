package player

import (
	"slices"
	"unicode/utf8"

	"github.com/mkm418/padel-intelligence/internal/domain/match"
)

// Fold merges one participant sighting into existing (nil on first sighting)
// and returns the updated player. existing is not modified.
//
// Merge rules:
//   - name: longest wins, equal length keeps the lexicographically smaller one
//   - level: highest value wins and carries its own confidence
//   - position, photo: first non-empty value in fold order wins
//   - premium: sticky true
//   - gender: UNKNOWN resolves to the first known value in fold order
//
// Position, photo and gender depend on fold order; every other field is
// independent of it.
func Fold(existing *Player, p match.Participant, mc MatchContext) Player {
	if p.ID == "" {
		if existing != nil {
			return *existing
		}
		return Player{}
	}

	var out Player
	if existing == nil {
		out = Player{
			ID:        p.ID,
			Gender:    match.GenderUnknown,
			FirstSeen: mc.Date,
			LastSeen:  mc.Date,
		}
	} else {
		out = *existing
		out.Clubs = slices.Clone(existing.Clubs)
		if mc.Date != "" && (out.FirstSeen == "" || mc.Date < out.FirstSeen) {
			out.FirstSeen = mc.Date
		}
		if mc.Date > out.LastSeen {
			out.LastSeen = mc.Date
		}
	}

	out.MatchesPlayed++
	out.TotalSightings++
	switch mc.Outcome {
	case match.OutcomeWon:
		out.Wins++
	case match.OutcomeLost:
		out.Losses++
	}
	if mc.Competitive {
		out.CompetitiveMatches++
	} else {
		out.FriendlyMatches++
	}
	out.SetsWon += mc.SetsWon
	out.SetsLost += mc.SetsLost
	out.GamesWon += mc.GamesWon
	out.GamesLost += mc.GamesLost
	out.Clubs = match.AddVenue(out.Clubs, mc.Venue)

	out.Name = longerName(out.Name, p.Name)
	out.LevelValue, out.LevelConfidence = higherLevel(out.LevelValue, out.LevelConfidence, p.LevelValue, p.LevelConfidence)
	if out.Position == "" {
		out.Position = p.Position
	}
	if out.Photo == "" {
		out.Photo = p.Photo
	}
	if p.Premium {
		out.Premium = true
	}
	if out.Gender == "" || out.Gender == match.GenderUnknown {
		if p.Gender != "" {
			out.Gender = p.Gender
		}
	}

	return out
}

func longerName(current, candidate string) string {
	if candidate == "" {
		return current
	}
	if current == "" {
		return candidate
	}
	currentLen, candidateLen := utf8.RuneCountInString(current), utf8.RuneCountInString(candidate)
	switch {
	case candidateLen > currentLen:
		return candidate
	case candidateLen == currentLen && candidate < current:
		return candidate
	default:
		return current
	}
}

func higherLevel(value, confidence, candValue, candConfidence *float64) (*float64, *float64) {
	if candValue == nil {
		return value, confidence
	}
	replace := value == nil || *candValue > *value
	if !replace && *candValue == *value {
		replace = confidenceOf(candConfidence) > confidenceOf(confidence)
	}
	if !replace {
		return value, confidence
	}
	return copyFloat(candValue), copyFloat(candConfidence)
}

func confidenceOf(v *float64) float64 {
	if v == nil {
		return -1
	}
	return *v
}

func copyFloat(v *float64) *float64 {
	if v == nil {
		return nil
	}
	out := *v
	return &out
}
