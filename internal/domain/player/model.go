package player

import "github.com/mkm418/padel-intelligence/internal/domain/match"

// Player is the aggregate built from every eligible sighting of one
// participant id.
type Player struct {
	ID              string   `json:"id"`
	Name            string   `json:"name"`
	LevelValue      *float64 `json:"level_value"`
	LevelConfidence *float64 `json:"level_confidence"`
	Position        string   `json:"position,omitempty"`
	Photo           string   `json:"photo,omitempty"`
	Premium         bool     `json:"is_premium"`
	Gender          string   `json:"gender"`
	Clubs           []string `json:"clubs"`

	MatchesPlayed      int `json:"matches_played"`
	TotalSightings     int `json:"total_sightings"`
	Wins               int `json:"wins"`
	Losses             int `json:"losses"`
	CompetitiveMatches int `json:"competitive_matches"`
	FriendlyMatches    int `json:"friendly_matches"`
	SetsWon            int `json:"sets_won"`
	SetsLost           int `json:"sets_lost"`
	GamesWon           int `json:"games_won"`
	GamesLost          int `json:"games_lost"`

	FirstSeen string `json:"first_seen"`
	LastSeen  string `json:"last_seen"`

	// Derived by the finalizer, never folded.
	WinRate         *float64 `json:"win_rate"`
	UniqueTeammates int      `json:"unique_teammates"`
	UniqueOpponents int      `json:"unique_opponents"`
}

// MatchContext is what the aggregator needs to know about the match a
// participant was sighted in.
type MatchContext struct {
	Venue       string
	Date        string
	Competitive bool
	match.Perspective
}

// ContextFor builds the context of one seat in m.
func ContextFor(m match.Match, team int) MatchContext {
	return MatchContext{
		Venue:       m.Venue,
		Date:        m.StartDate,
		Competitive: m.Competitive,
		Perspective: m.Perspective(team),
	}
}
