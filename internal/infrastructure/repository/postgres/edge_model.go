package postgres

import (
	"github.com/lib/pq"

	"github.com/mkm418/padel-intelligence/internal/domain/edge"
)

type edgeInsertModel struct {
	Source       string         `db:"source_player_id"`
	Target       string         `db:"target_player_id"`
	Weight       int            `db:"weight"`
	Clubs        pq.StringArray `db:"clubs"`
	LastPlayed   string         `db:"last_played"`
	Relationship string         `db:"relationship"`
}

func edgeInsertModelFromDomain(e edge.Edge) edgeInsertModel {
	clubs := e.Clubs
	if clubs == nil {
		clubs = []string{}
	}
	return edgeInsertModel{
		Source:       e.Source,
		Target:       e.Target,
		Weight:       e.Weight,
		Clubs:        pq.StringArray(clubs),
		LastPlayed:   e.LastPlayed,
		Relationship: string(e.Relationship),
	}
}
