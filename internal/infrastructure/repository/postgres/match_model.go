package postgres

import (
	"fmt"

	sonic "github.com/bytedance/sonic"

	"github.com/mkm418/padel-intelligence/internal/domain/match"
)

type matchInsertModel struct {
	MatchID     string `db:"match_id"`
	StartDate   string `db:"start_date"`
	Status      string `db:"status"`
	Venue       string `db:"venue"`
	TenantID    string `db:"tenant_id"`
	Competitive bool   `db:"competitive"`
	Payload     string `db:"payload"`
}

type matchPlayerInsertModel struct {
	MatchID  string `db:"match_id"`
	PlayerID string `db:"player_id"`
	Team     int    `db:"team"`
}

type matchPayloadRow struct {
	Payload []byte `db:"payload"`
}

func matchInsertModelFromDomain(m match.Match) (matchInsertModel, error) {
	payload, err := sonic.Marshal(m)
	if err != nil {
		return matchInsertModel{}, fmt.Errorf("encode match payload match_id=%s: %w", m.ID, err)
	}
	return matchInsertModel{
		MatchID:     m.ID,
		StartDate:   m.StartDate,
		Status:      m.Status,
		Venue:       m.Venue,
		TenantID:    m.TenantID,
		Competitive: m.Competitive,
		Payload:     string(payload),
	}, nil
}

func matchPlayerModels(m match.Match) []matchPlayerInsertModel {
	seats := m.Seats()
	out := make([]matchPlayerInsertModel, 0, len(seats))
	for _, seat := range seats {
		out = append(out, matchPlayerInsertModel{
			MatchID:  m.ID,
			PlayerID: seat.Participant.ID,
			Team:     seat.Team,
		})
	}
	return out
}

func matchFromPayload(row matchPayloadRow) (match.Match, error) {
	var out match.Match
	if err := sonic.Unmarshal(row.Payload, &out); err != nil {
		return match.Match{}, fmt.Errorf("decode match payload: %w", err)
	}
	return out, nil
}
