package querybuilder

import "testing"

func TestSelectBuilder(t *testing.T) {
	query, args, err := Select("match_id", "payload").
		From("matches").
		Where(Eq("status", "PLAYED"), IsNull("deleted_at")).
		OrderBy("start_date", "match_id").
		Limit(10).
		ToSQL()
	if err != nil {
		t.Fatalf("build select query: %v", err)
	}

	wantQuery := "SELECT match_id, payload FROM matches WHERE status = $1 AND deleted_at IS NULL ORDER BY start_date, match_id LIMIT 10"
	if query != wantQuery {
		t.Fatalf("unexpected query:\nwant: %s\ngot:  %s", wantQuery, query)
	}
	if len(args) != 1 || args[0] != "PLAYED" {
		t.Fatalf("unexpected args: %+v", args)
	}
}

func TestSelectBuilder_InAndExpr(t *testing.T) {
	query, args, err := Select("DISTINCT match_id").
		From("match_players").
		Where(In("player_id", []any{"p1", "p2"}), Expr("match_id <> ?", "m0")).
		ToSQL()
	if err != nil {
		t.Fatalf("build select query: %v", err)
	}

	wantQuery := "SELECT DISTINCT match_id FROM match_players WHERE player_id IN ($1, $2) AND match_id <> $3"
	if query != wantQuery {
		t.Fatalf("unexpected query:\nwant: %s\ngot:  %s", wantQuery, query)
	}
	if len(args) != 3 || args[2] != "m0" {
		t.Fatalf("unexpected args: %+v", args)
	}
}

func TestSelectBuilder_EmptyInMatchesNothing(t *testing.T) {
	query, args, err := Select("id").From("players").Where(In("id", nil)).ToSQL()
	if err != nil {
		t.Fatalf("build select query: %v", err)
	}
	if query != "SELECT id FROM players WHERE 1=0" || len(args) != 0 {
		t.Fatalf("unexpected query=%s args=%+v", query, args)
	}
}

func TestInsertBuilder(t *testing.T) {
	query, args, err := InsertInto("players").
		Columns("id", "name").
		Values("p1", "name-1").
		Suffix("RETURNING id").
		ToSQL()
	if err != nil {
		t.Fatalf("build insert query: %v", err)
	}

	wantQuery := "INSERT INTO players (id, name) VALUES ($1, $2) RETURNING id"
	if query != wantQuery {
		t.Fatalf("unexpected query:\nwant: %s\ngot:  %s", wantQuery, query)
	}
	if len(args) != 2 || args[0] != "p1" || args[1] != "name-1" {
		t.Fatalf("unexpected args: %+v", args)
	}
}

func TestInsertBuilder_RowWidthMismatch(t *testing.T) {
	_, _, err := InsertInto("players").Columns("id", "name").Values("p1").ToSQL()
	if err == nil {
		t.Fatalf("expected error for short row")
	}
}

func TestDeleteBuilder(t *testing.T) {
	query, args, err := DeleteFrom("player_edges").
		Where(Eq("source", "p1")).
		ToSQL()
	if err != nil {
		t.Fatalf("build delete query: %v", err)
	}

	wantQuery := "DELETE FROM player_edges WHERE source = $1"
	if query != wantQuery {
		t.Fatalf("unexpected query:\nwant: %s\ngot:  %s", wantQuery, query)
	}
	if len(args) != 1 || args[0] != "p1" {
		t.Fatalf("unexpected args: %+v", args)
	}
}

type edgeRow struct {
	Source string `db:"source"`
	Target string `db:"target"`
	Weight int    `db:"weight"`
	note   string
	Skip   string `db:"-"`
}

func TestInsertModels(t *testing.T) {
	rows := []edgeRow{
		{Source: "a", Target: "b", Weight: 1, note: "x"},
		{Source: "a", Target: "c", Weight: 3},
	}
	query, args, err := InsertModels("player_edges", rows, "ON CONFLICT (source, target) DO NOTHING")
	if err != nil {
		t.Fatalf("build insert models query: %v", err)
	}

	wantQuery := "INSERT INTO player_edges (source, target, weight) VALUES ($1, $2, $3), ($4, $5, $6) ON CONFLICT (source, target) DO NOTHING"
	if query != wantQuery {
		t.Fatalf("unexpected query:\nwant: %s\ngot:  %s", wantQuery, query)
	}
	if len(args) != 6 || args[3] != "a" || args[5] != 3 {
		t.Fatalf("unexpected args: %+v", args)
	}

	if _, _, err := InsertModels[edgeRow]("player_edges", nil, ""); err == nil {
		t.Fatalf("expected error for empty models")
	}
}
