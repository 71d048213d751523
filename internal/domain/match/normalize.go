package match

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/go-playground/validator/v10"
)

var ErrMalformed = errors.New("malformed match")

var validate = validator.New()

// Normalize converts a provider payload into a Match. It is the only place
// that deals with optional fields; everything downstream works on Match.
// Records missing structural fields fail with ErrMalformed so callers can
// count and skip them.
func Normalize(raw RawMatch) (Match, error) {
	raw.MatchID = strings.TrimSpace(raw.MatchID)
	if err := validate.Struct(raw); err != nil {
		return Match{}, fmt.Errorf("%w: match_id=%q: %v", ErrMalformed, raw.MatchID, err)
	}

	out := Match{
		ID:          raw.MatchID,
		StartDate:   strings.TrimSpace(raw.StartDate),
		Status:      strings.TrimSpace(raw.Status),
		Competitive: strings.EqualFold(strings.TrimSpace(raw.CompetitionMode), CompetitionCompetitive),
	}
	if raw.ResultsStatus != nil {
		out.ResultsStatus = strings.TrimSpace(*raw.ResultsStatus)
	}
	if raw.Tenant != nil {
		out.Venue = strings.TrimSpace(raw.Tenant.TenantName)
		out.TenantID = strings.TrimSpace(raw.Tenant.TenantID)
	}

	for i := range out.Teams {
		team, skipped := normalizeTeam(raw.Teams[i])
		out.Teams[i] = team
		out.SkippedParticipants += skipped
	}
	out.Sets, out.RejectedSets = normalizeSets(raw.Results, out.Teams)

	return out, nil
}

func normalizeTeam(raw RawTeam) (Team, int) {
	team := Team{
		ID:      strings.TrimSpace(raw.TeamID),
		Players: make([]Participant, 0, len(raw.Players)),
	}
	if raw.TeamResult != nil {
		switch Outcome(*raw.TeamResult) {
		case OutcomeWon, OutcomeLost:
			team.Result = Outcome(*raw.TeamResult)
		}
	}

	skipped := 0
	seen := make(map[string]struct{}, len(raw.Players))
	for _, item := range raw.Players {
		id := strings.TrimSpace(item.UserID)
		if id == "" {
			skipped++
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		team.Players = append(team.Players, normalizeParticipant(id, item))
	}

	return team, skipped
}

func normalizeParticipant(id string, raw RawParticipant) Participant {
	out := Participant{
		ID:              id,
		Name:            strings.TrimSpace(raw.Name),
		LevelValue:      copyFloat(raw.LevelValue),
		LevelConfidence: copyFloat(raw.LevelConfidence),
		Premium:         raw.IsPremium,
		Gender:          normalizeGender(raw.Gender),
	}
	if raw.PreferredPosition != nil {
		out.Position = strings.TrimSpace(*raw.PreferredPosition)
	}
	if raw.Picture != nil {
		out.Photo = strings.TrimSpace(*raw.Picture)
	}
	return out
}

func normalizeGender(raw string) string {
	value := strings.ToUpper(strings.TrimSpace(raw))
	if value == "" {
		return GenderUnknown
	}
	return value
}

// normalizeSets keeps only sets that carry a numeric score for both teams.
func normalizeSets(results []RawSetResult, teams [2]Team) ([]SetScore, int) {
	if len(results) == 0 {
		return nil, 0
	}

	accepted := make([]SetScore, 0, len(results))
	rejected := 0
	for _, set := range results {
		var scores [2]*float64
		for position, item := range set.Scores {
			idx := scoreTeamIndex(item.TeamID, teams, position)
			if idx < 0 || item.Score == nil || math.IsNaN(*item.Score) {
				continue
			}
			if scores[idx] == nil {
				scores[idx] = item.Score
			}
		}
		if scores[0] == nil || scores[1] == nil {
			rejected++
			continue
		}
		accepted = append(accepted, SetScore{
			Name:  strings.TrimSpace(set.Name),
			Team0: int(math.Round(*scores[0])),
			Team1: int(math.Round(*scores[1])),
		})
	}

	return accepted, rejected
}

// scoreTeamIndex resolves a score entry to a roster. Team ids are used when
// both rosters carry distinct ids, otherwise the entry position decides.
func scoreTeamIndex(teamID string, teams [2]Team, position int) int {
	teamID = strings.TrimSpace(teamID)
	if teamID != "" && teams[0].ID != "" && teams[0].ID != teams[1].ID {
		for i := range teams {
			if teams[i].ID == teamID {
				return i
			}
		}
		return -1
	}
	if position < len(teams) {
		return position
	}
	return -1
}

func copyFloat(value *float64) *float64 {
	if value == nil || math.IsNaN(*value) {
		return nil
	}
	v := *value
	return &v
}
