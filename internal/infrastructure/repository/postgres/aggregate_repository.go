package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/mkm418/padel-intelligence/internal/domain/edge"
	"github.com/mkm418/padel-intelligence/internal/domain/graph"
	"github.com/mkm418/padel-intelligence/internal/domain/player"
	qb "github.com/mkm418/padel-intelligence/internal/platform/querybuilder"
)

const upsertPlayersSuffix = `ON CONFLICT (player_id)
DO UPDATE SET
    name = EXCLUDED.name,
    level_value = EXCLUDED.level_value,
    level_confidence = EXCLUDED.level_confidence,
    position = EXCLUDED.position,
    photo = EXCLUDED.photo,
    is_premium = EXCLUDED.is_premium,
    gender = EXCLUDED.gender,
    clubs = EXCLUDED.clubs,
    matches_played = EXCLUDED.matches_played,
    total_sightings = EXCLUDED.total_sightings,
    wins = EXCLUDED.wins,
    losses = EXCLUDED.losses,
    competitive_matches = EXCLUDED.competitive_matches,
    friendly_matches = EXCLUDED.friendly_matches,
    sets_won = EXCLUDED.sets_won,
    sets_lost = EXCLUDED.sets_lost,
    games_won = EXCLUDED.games_won,
    games_lost = EXCLUDED.games_lost,
    first_seen = EXCLUDED.first_seen,
    last_seen = EXCLUDED.last_seen,
    win_rate = EXCLUDED.win_rate,
    unique_teammates = EXCLUDED.unique_teammates,
    unique_opponents = EXCLUDED.unique_opponents,
    updated_at = NOW()`

const upsertEdgesSuffix = `ON CONFLICT (source_player_id, target_player_id)
DO UPDATE SET
    weight = EXCLUDED.weight,
    clubs = EXCLUDED.clubs,
    last_played = EXCLUDED.last_played,
    relationship = EXCLUDED.relationship,
    updated_at = NOW()`

// AggregateRepository stores finalized players and edges. Rows are full
// recomputations, so upserts overwrite every column.
type AggregateRepository struct {
	db *sqlx.DB
}

func NewAggregateRepository(db *sqlx.DB) *AggregateRepository {
	return &AggregateRepository{db: db}
}

func (r *AggregateRepository) UpsertPlayers(ctx context.Context, items []player.Player) error {
	if len(items) == 0 {
		return nil
	}
	return r.inTx(ctx, "player upsert", func(tx *sqlx.Tx) error {
		return insertPlayers(ctx, tx, items)
	})
}

func (r *AggregateRepository) UpsertEdges(ctx context.Context, items []edge.Edge) error {
	if len(items) == 0 {
		return nil
	}
	return r.inTx(ctx, "edge upsert", func(tx *sqlx.Tx) error {
		return insertEdges(ctx, tx, items)
	})
}

// ReplaceAll swaps both aggregate tables for a full rebuild. Readers see
// either the previous or the new state, never a mix.
func (r *AggregateRepository) ReplaceAll(ctx context.Context, players []player.Player, edges []edge.Edge) error {
	return r.inTx(ctx, "aggregate replace", func(tx *sqlx.Tx) error {
		for _, table := range []string{"player_edges", "players"} {
			query, args, err := qb.DeleteFrom(table).ToSQL()
			if err != nil {
				return fmt.Errorf("build delete %s query: %w", table, err)
			}
			if _, err := tx.ExecContext(ctx, query, args...); err != nil {
				return fmt.Errorf("delete %s: %w", table, err)
			}
		}
		if err := insertPlayers(ctx, tx, players); err != nil {
			return err
		}
		return insertEdges(ctx, tx, edges)
	})
}

// PruneStale removes rows an incremental recompute no longer produces. Both
// deletes run in one transaction.
func (r *AggregateRepository) PruneStale(ctx context.Context, touched, keepPlayers []string, keepEdges []edge.PairKey) (graph.PruneResult, error) {
	var out graph.PruneResult
	if len(touched) == 0 {
		return out, nil
	}

	err := r.inTx(ctx, "aggregate prune", func(tx *sqlx.Tx) error {
		query, args, err := pruneStalePlayersQuery(touched, keepPlayers)
		if err != nil {
			return fmt.Errorf("build prune players query: %w", err)
		}
		res, err := tx.ExecContext(ctx, query, args...)
		if err != nil {
			return fmt.Errorf("prune players: %w", err)
		}
		players, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("count pruned players: %w", err)
		}

		query, args, err = pruneStaleEdgesQuery(touched, keepEdges)
		if err != nil {
			return fmt.Errorf("build prune edges query: %w", err)
		}
		res, err = tx.ExecContext(ctx, query, args...)
		if err != nil {
			return fmt.Errorf("prune edges: %w", err)
		}
		edges, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("count pruned edges: %w", err)
		}

		out = graph.PruneResult{Players: int(players), Edges: int(edges)}
		return nil
	})
	if err != nil {
		return graph.PruneResult{}, err
	}
	return out, nil
}

func (r *AggregateRepository) inTx(ctx context.Context, name string, fn func(tx *sqlx.Tx) error) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx for %s: %w", name, err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit %s: %w", name, err)
	}
	return nil
}

func insertPlayers(ctx context.Context, tx *sqlx.Tx, items []player.Player) error {
	models := make([]playerInsertModel, 0, len(items))
	for _, item := range items {
		models = append(models, playerInsertModelFromDomain(item))
	}
	for _, part := range chunkRows(models, insertChunkRows) {
		query, args, err := qb.InsertModels("players", part, upsertPlayersSuffix)
		if err != nil {
			return fmt.Errorf("build upsert players query: %w", err)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("upsert players: %w", err)
		}
	}
	return nil
}

func insertEdges(ctx context.Context, tx *sqlx.Tx, items []edge.Edge) error {
	models := make([]edgeInsertModel, 0, len(items))
	for _, item := range items {
		models = append(models, edgeInsertModelFromDomain(item))
	}
	for _, part := range chunkRows(models, insertChunkRows) {
		query, args, err := qb.InsertModels("player_edges", part, upsertEdgesSuffix)
		if err != nil {
			return fmt.Errorf("build upsert edges query: %w", err)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("upsert edges: %w", err)
		}
	}
	return nil
}

func pruneStalePlayersQuery(touched, keep []string) (string, []any, error) {
	return qb.DeleteFrom("players").
		Where(
			qb.Expr("player_id = ANY(?)", textArray(touched)),
			qb.Expr("NOT (player_id = ANY(?))", textArray(keep)),
		).
		ToSQL()
}

func pruneStaleEdgesQuery(touched []string, keep []edge.PairKey) (string, []any, error) {
	sources := make([]string, 0, len(keep))
	targets := make([]string, 0, len(keep))
	for _, key := range keep {
		sources = append(sources, key.A)
		targets = append(targets, key.B)
	}
	ids := textArray(touched)
	return qb.DeleteFrom("player_edges").
		Where(
			qb.Expr("(source_player_id = ANY(?) OR target_player_id = ANY(?))", ids, ids),
			qb.Expr("(source_player_id, target_player_id) NOT IN (SELECT * FROM unnest(?::text[], ?::text[]))",
				textArray(sources), textArray(targets)),
		).
		ToSQL()
}

// textArray binds items as a postgres text[]; nil binds as '{}' rather than
// NULL so ANY and NOT IN keep their empty-set meaning.
func textArray(items []string) any {
	if items == nil {
		items = []string{}
	}
	return pq.Array(items)
}
