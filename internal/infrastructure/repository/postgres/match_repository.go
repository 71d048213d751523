package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/mkm418/padel-intelligence/internal/domain/match"
	qb "github.com/mkm418/padel-intelligence/internal/platform/querybuilder"
)

const upsertMatchesSuffix = `ON CONFLICT (match_id)
DO UPDATE SET
    start_date = EXCLUDED.start_date,
    status = EXCLUDED.status,
    venue = EXCLUDED.venue,
    tenant_id = EXCLUDED.tenant_id,
    competitive = EXCLUDED.competitive,
    payload = EXCLUDED.payload,
    updated_at = NOW()`

// MatchRepository stores normalized matches keyed by match id, plus a
// match_players index used to reload the history of a set of players.
type MatchRepository struct {
	db *sqlx.DB
}

func NewMatchRepository(db *sqlx.DB) *MatchRepository {
	return &MatchRepository{db: db}
}

func (r *MatchRepository) UpsertMatches(ctx context.Context, items []match.Match) error {
	if len(items) == 0 {
		return nil
	}

	models := make([]matchInsertModel, 0, len(items))
	ids := make([]any, 0, len(items))
	participants := make([]matchPlayerInsertModel, 0, len(items)*4)
	for _, item := range items {
		model, err := matchInsertModelFromDomain(item)
		if err != nil {
			return err
		}
		models = append(models, model)
		ids = append(ids, item.ID)
		participants = append(participants, matchPlayerModels(item)...)
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx for match upsert: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	for _, part := range chunkRows(models, insertChunkRows) {
		query, args, err := qb.InsertModels("matches", part, upsertMatchesSuffix)
		if err != nil {
			return fmt.Errorf("build upsert matches query: %w", err)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("upsert matches: %w", err)
		}
	}

	query, args, err := qb.DeleteFrom("match_players").Where(qb.In("match_id", ids)).ToSQL()
	if err != nil {
		return fmt.Errorf("build delete match players query: %w", err)
	}
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("delete match players: %w", err)
	}

	for _, part := range chunkRows(participants, insertChunkRows) {
		query, args, err := qb.InsertModels("match_players", part, "ON CONFLICT (match_id, player_id) DO NOTHING")
		if err != nil {
			return fmt.Errorf("build insert match players query: %w", err)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("insert match players: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit match upsert: %w", err)
	}
	return nil
}

// LatestStartDate returns the greatest non-empty stored start date. The
// second return value is false on an empty store.
func (r *MatchRepository) LatestStartDate(ctx context.Context) (string, bool, error) {
	query, args, err := latestStartDateQuery()
	if err != nil {
		return "", false, fmt.Errorf("build latest start date query: %w", err)
	}

	var startDate string
	if err := r.db.GetContext(ctx, &startDate, query, args...); err != nil {
		if isNotFound(err) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("select latest start date: %w", err)
	}
	return startDate, true, nil
}

// ListPlayedByPlayerIDs returns every stored PLAYED match in which at least
// one of playerIDs took part, ordered by start date then match id.
func (r *MatchRepository) ListPlayedByPlayerIDs(ctx context.Context, playerIDs []string) ([]match.Match, error) {
	if len(playerIDs) == 0 {
		return nil, nil
	}

	query, args, err := playedHistoryQuery(playerIDs)
	if err != nil {
		return nil, fmt.Errorf("build played history query: %w", err)
	}

	var rows []matchPayloadRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select played history: %w", err)
	}

	out := make([]match.Match, 0, len(rows))
	for _, row := range rows {
		m, err := matchFromPayload(row)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, nil
}

// ListPlayerIDsByMatchIDs returns the distinct stored roster of matchIDs,
// whatever the match status.
func (r *MatchRepository) ListPlayerIDsByMatchIDs(ctx context.Context, matchIDs []string) ([]string, error) {
	if len(matchIDs) == 0 {
		return nil, nil
	}

	query, args, err := rosterQuery(matchIDs)
	if err != nil {
		return nil, fmt.Errorf("build stored roster query: %w", err)
	}

	var out []string
	if err := r.db.SelectContext(ctx, &out, query, args...); err != nil {
		return nil, fmt.Errorf("select stored roster: %w", err)
	}
	return out, nil
}

func latestStartDateQuery() (string, []any, error) {
	return qb.Select("start_date").From("matches").
		Where(qb.Expr("start_date <> ''")).
		OrderBy("start_date DESC").
		Limit(1).
		ToSQL()
}

func playedHistoryQuery(playerIDs []string) (string, []any, error) {
	return qb.Select("payload").From("matches").
		Where(
			qb.Eq("status", match.StatusPlayed),
			qb.Expr("match_id IN (SELECT match_id FROM match_players WHERE player_id = ANY(?))", pq.Array(playerIDs)),
		).
		OrderBy("start_date", "match_id").
		ToSQL()
}

func rosterQuery(matchIDs []string) (string, []any, error) {
	return qb.Select("DISTINCT player_id").From("match_players").
		Where(qb.Expr("match_id = ANY(?)", pq.Array(matchIDs))).
		OrderBy("player_id").
		ToSQL()
}
