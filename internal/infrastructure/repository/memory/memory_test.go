package memory

import (
	"context"
	"testing"

	"github.com/mkm418/padel-intelligence/internal/domain/edge"
	"github.com/mkm418/padel-intelligence/internal/domain/match"
	"github.com/mkm418/padel-intelligence/internal/domain/player"
)

func testMatch(id, startDate, status string, ids ...string) match.Match {
	m := match.Match{ID: id, StartDate: startDate, Status: status, Venue: "Club A"}
	for i, playerID := range ids {
		team := i / 2
		if team > 1 {
			team = 1
		}
		m.Teams[team].Players = append(m.Teams[team].Players, match.Participant{ID: playerID, Name: playerID})
	}
	return m
}

func TestMatchRepository_HistoryAndLatest(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	repo := NewMatchRepository()

	if _, ok, err := repo.LatestStartDate(ctx); err != nil || ok {
		t.Fatalf("expected empty store, ok=%v err=%v", ok, err)
	}

	err := repo.UpsertMatches(ctx, []match.Match{
		testMatch("m2", "2024-01-02T10:00:00", match.StatusPlayed, "p1", "p2", "p3", "p4"),
		testMatch("m1", "2024-01-01T10:00:00", match.StatusPlayed, "p1", "p5", "p6", "p7"),
		testMatch("m3", "2024-01-03T10:00:00", match.StatusCanceled, "p1", "p2", "p3", "p4"),
	})
	if err != nil {
		t.Fatalf("upsert: %v", err)
	}

	latest, ok, err := repo.LatestStartDate(ctx)
	if err != nil || !ok || latest != "2024-01-03T10:00:00" {
		t.Fatalf("unexpected latest: %q ok=%v err=%v", latest, ok, err)
	}

	history, err := repo.ListPlayedByPlayerIDs(ctx, []string{"p1", "p2"})
	if err != nil {
		t.Fatalf("list history: %v", err)
	}
	if len(history) != 2 || history[0].ID != "m1" || history[1].ID != "m2" {
		t.Fatalf("expected played matches ordered by start date, got=%+v", history)
	}

	history, err = repo.ListPlayedByPlayerIDs(ctx, []string{"unknown"})
	if err != nil || len(history) != 0 {
		t.Fatalf("expected no history, got=%v err=%v", history, err)
	}
}

func TestMatchRepository_UpsertReplacesRoster(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	repo := NewMatchRepository()

	if err := repo.UpsertMatches(ctx, []match.Match{testMatch("m1", "2024-01-01", match.StatusPlayed, "p1", "p2", "p3", "p4")}); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if err := repo.UpsertMatches(ctx, []match.Match{testMatch("m1", "2024-01-01", match.StatusPlayed, "p5", "p2", "p3", "p4")}); err != nil {
		t.Fatalf("re-upsert: %v", err)
	}

	history, err := repo.ListPlayedByPlayerIDs(ctx, []string{"p1"})
	if err != nil || len(history) != 0 {
		t.Fatalf("expected p1 dropped from the index, got=%v err=%v", history, err)
	}
	history, err = repo.ListPlayedByPlayerIDs(ctx, []string{"p5"})
	if err != nil || len(history) != 1 {
		t.Fatalf("expected p5 indexed, got=%v err=%v", history, err)
	}
	if repo.Len() != 1 {
		t.Fatalf("expected one stored match, got=%d", repo.Len())
	}
}

func TestMatchRepository_ReturnsCopies(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	repo := NewMatchRepository()
	original := testMatch("m1", "2024-01-01", match.StatusPlayed, "p1", "p2", "p3", "p4")
	if err := repo.UpsertMatches(ctx, []match.Match{original}); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	original.Teams[0].Players[0].Name = "changed"

	history, err := repo.ListPlayedByPlayerIDs(ctx, []string{"p1"})
	if err != nil {
		t.Fatalf("list history: %v", err)
	}
	if history[0].Teams[0].Players[0].Name != "p1" {
		t.Fatalf("stored match must not alias caller slices")
	}
}

func TestAggregateRepository_UpsertAndReplace(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	repo := NewAggregateRepository()

	if err := repo.UpsertPlayers(ctx, []player.Player{{ID: "p2", MatchesPlayed: 1}, {ID: "p1", MatchesPlayed: 1}}); err != nil {
		t.Fatalf("upsert players: %v", err)
	}
	if err := repo.UpsertPlayers(ctx, []player.Player{{ID: "p1", MatchesPlayed: 4}}); err != nil {
		t.Fatalf("upsert players again: %v", err)
	}
	if err := repo.UpsertEdges(ctx, []edge.Edge{{Source: "p1", Target: "p2", Weight: 1, Relationship: edge.RelationTeammate}}); err != nil {
		t.Fatalf("upsert edges: %v", err)
	}
	if err := repo.UpsertEdges(ctx, []edge.Edge{{Source: "p1", Target: "p2", Weight: 3, Relationship: edge.RelationMixed}}); err != nil {
		t.Fatalf("upsert edges again: %v", err)
	}

	players := repo.Players()
	if len(players) != 2 || players[0].ID != "p1" || players[0].MatchesPlayed != 4 {
		t.Fatalf("unexpected players: %+v", players)
	}
	edges := repo.Edges()
	if len(edges) != 1 || edges[0].Weight != 3 || edges[0].Relationship != edge.RelationMixed {
		t.Fatalf("unexpected edges: %+v", edges)
	}

	if err := repo.ReplaceAll(ctx, []player.Player{{ID: "p9"}}, nil); err != nil {
		t.Fatalf("replace all: %v", err)
	}
	if players := repo.Players(); len(players) != 1 || players[0].ID != "p9" {
		t.Fatalf("expected replaced players, got=%+v", players)
	}
	if edges := repo.Edges(); len(edges) != 0 {
		t.Fatalf("expected edges cleared, got=%+v", edges)
	}
}

func TestMatchRepository_StoredRosterIgnoresStatus(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	repo := NewMatchRepository()
	if err := repo.UpsertMatches(ctx, []match.Match{
		testMatch("m1", "2024-01-01T10:00:00", match.StatusCanceled, "p3", "p1", "p2", "p4"),
		testMatch("m2", "2024-01-02T10:00:00", match.StatusPlayed, "p1", "p5", "p6", "p7"),
	}); err != nil {
		t.Fatalf("upsert: %v", err)
	}

	got, err := repo.ListPlayerIDsByMatchIDs(ctx, []string{"m1", "missing"})
	if err != nil {
		t.Fatalf("list roster: %v", err)
	}
	want := []string{"p1", "p2", "p3", "p4"}
	if len(got) != len(want) {
		t.Fatalf("unexpected roster: %v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("unexpected roster: %v", got)
		}
	}
}

func TestAggregateRepository_PruneStale(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	repo := NewAggregateRepository()
	if err := repo.UpsertPlayers(ctx, []player.Player{{ID: "p1"}, {ID: "p2"}, {ID: "p3"}, {ID: "p9"}}); err != nil {
		t.Fatalf("upsert players: %v", err)
	}
	if err := repo.UpsertEdges(ctx, []edge.Edge{
		{Source: "p1", Target: "p2", Weight: 1, Relationship: edge.RelationTeammate},
		{Source: "p1", Target: "p3", Weight: 1, Relationship: edge.RelationOpponent},
		{Source: "p3", Target: "p9", Weight: 1, Relationship: edge.RelationOpponent},
	}); err != nil {
		t.Fatalf("upsert edges: %v", err)
	}

	got, err := repo.PruneStale(ctx, []string{"p1", "p2"}, []string{"p1"}, []edge.PairKey{edge.NewPairKey("p3", "p1")})
	if err != nil {
		t.Fatalf("prune: %v", err)
	}
	if got.Players != 1 || got.Edges != 1 {
		t.Fatalf("unexpected prune result: %+v", got)
	}

	players := repo.Players()
	if len(players) != 3 || players[0].ID != "p1" || players[1].ID != "p3" || players[2].ID != "p9" {
		t.Fatalf("only the touched player without a recompute is removed: %+v", players)
	}
	edges := repo.Edges()
	if len(edges) != 2 || edges[0].Target != "p3" || edges[1].Source != "p3" {
		t.Fatalf("only the stale touched edge is removed: %+v", edges)
	}
}
