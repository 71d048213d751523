package postgres

import (
	"database/sql"

	"github.com/lib/pq"

	"github.com/mkm418/padel-intelligence/internal/domain/player"
)

type playerInsertModel struct {
	PlayerID           string          `db:"player_id"`
	Name               string          `db:"name"`
	LevelValue         sql.NullFloat64 `db:"level_value"`
	LevelConfidence    sql.NullFloat64 `db:"level_confidence"`
	Position           string          `db:"position"`
	Photo              string          `db:"photo"`
	Premium            bool            `db:"is_premium"`
	Gender             string          `db:"gender"`
	Clubs              pq.StringArray  `db:"clubs"`
	MatchesPlayed      int             `db:"matches_played"`
	TotalSightings     int             `db:"total_sightings"`
	Wins               int             `db:"wins"`
	Losses             int             `db:"losses"`
	CompetitiveMatches int             `db:"competitive_matches"`
	FriendlyMatches    int             `db:"friendly_matches"`
	SetsWon            int             `db:"sets_won"`
	SetsLost           int             `db:"sets_lost"`
	GamesWon           int             `db:"games_won"`
	GamesLost          int             `db:"games_lost"`
	FirstSeen          string          `db:"first_seen"`
	LastSeen           string          `db:"last_seen"`
	WinRate            sql.NullFloat64 `db:"win_rate"`
	UniqueTeammates    int             `db:"unique_teammates"`
	UniqueOpponents    int             `db:"unique_opponents"`
}

func playerInsertModelFromDomain(p player.Player) playerInsertModel {
	clubs := p.Clubs
	if clubs == nil {
		clubs = []string{}
	}
	return playerInsertModel{
		PlayerID:           p.ID,
		Name:               p.Name,
		LevelValue:         nullFloat64(p.LevelValue),
		LevelConfidence:    nullFloat64(p.LevelConfidence),
		Position:           p.Position,
		Photo:              p.Photo,
		Premium:            p.Premium,
		Gender:             p.Gender,
		Clubs:              pq.StringArray(clubs),
		MatchesPlayed:      p.MatchesPlayed,
		TotalSightings:     p.TotalSightings,
		Wins:               p.Wins,
		Losses:             p.Losses,
		CompetitiveMatches: p.CompetitiveMatches,
		FriendlyMatches:    p.FriendlyMatches,
		SetsWon:            p.SetsWon,
		SetsLost:           p.SetsLost,
		GamesWon:           p.GamesWon,
		GamesLost:          p.GamesLost,
		FirstSeen:          p.FirstSeen,
		LastSeen:           p.LastSeen,
		WinRate:            nullFloat64(p.WinRate),
		UniqueTeammates:    p.UniqueTeammates,
		UniqueOpponents:    p.UniqueOpponents,
	}
}

func nullFloat64(v *float64) sql.NullFloat64 {
	if v == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *v, Valid: true}
}
