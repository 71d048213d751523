package usecase

import (
	"context"
	"testing"

	"github.com/stretchr/testify/mock"

	"github.com/mkm418/padel-intelligence/internal/domain/edge"
	"github.com/mkm418/padel-intelligence/internal/domain/match"
	"github.com/mkm418/padel-intelligence/internal/domain/player"
	"github.com/mkm418/padel-intelligence/internal/infrastructure/repository/memory"
	matchmock "github.com/mkm418/padel-intelligence/internal/mocks/domain/match"
)

// syncRuns serves one first page per run; every later page is empty.
func syncRuns(t *testing.T, runs ...[]match.RawMatch) *matchmock.Source {
	t.Helper()

	source := matchmock.NewSource(t)
	for _, page := range runs {
		source.
			On("FetchPage", mock.Anything, mock.MatchedBy(func(req match.PageRequest) bool { return req.Page == 0 })).
			Return(page, nil).
			Once()
	}
	source.
		On("FetchPage", mock.Anything, mock.MatchedBy(func(req match.PageRequest) bool { return req.Page > 0 })).
		Return(nil, nil)
	return source
}

func playersByID(items []player.Player) map[string]player.Player {
	out := make(map[string]player.Player, len(items))
	for _, p := range items {
		out[p.ID] = p
	}
	return out
}

func hasEdge(items []edge.Edge, a, b string) bool {
	key := edge.NewPairKey(a, b)
	for _, e := range items {
		if e.Key() == key {
			return true
		}
	}
	return false
}

func TestReconciliationService_IncrementalSync_StatusFlipRefoldsPlayers(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	earlier := doublesWon("m0", "2024-03-01T10:00:00", "Club A", []string{"p1", "p5"}, []string{"p6", "p7"})
	played := doublesWon("m1", "2024-03-08T10:00:00", "Club A", []string{"p1", "p2"}, []string{"p3", "p4"})
	canceled := rawMatch("m1", "2024-03-08T10:00:00", match.StatusCanceled, "Club A",
		rawRoster("0", "", "p1", "p2"), rawRoster("1", "", "p3", "p4"))

	matches := memory.NewMatchRepository()
	aggregates := memory.NewAggregateRepository()
	source := syncRuns(t, []match.RawMatch{earlier}, []match.RawMatch{played}, []match.RawMatch{canceled})
	svc := incrementalService(t, source, matches, aggregates)
	input := IncrementalInput{Since: "2024-03-01T00:00:00"}

	for run := 0; run < 2; run++ {
		if _, err := svc.IncrementalSync(ctx, input); err != nil {
			t.Fatalf("sync run %d: %v", run, err)
		}
	}
	before := playersByID(aggregates.Players())
	if p1 := before["p1"]; p1.MatchesPlayed != 2 || p1.Wins != 2 {
		t.Fatalf("unexpected p1 before the flip: %+v", p1)
	}
	if !hasEdge(aggregates.Edges(), "p1", "p2") {
		t.Fatalf("expected p1/p2 edge before the flip")
	}

	summary, err := svc.IncrementalSync(ctx, input)
	if err != nil {
		t.Fatalf("sync after cancellation: %v", err)
	}
	if summary.TouchedPlayers != 4 || summary.AggregatesStale {
		t.Fatalf("canceled match must touch its roster: %+v", summary)
	}

	after := playersByID(aggregates.Players())
	if p1 := after["p1"]; p1.MatchesPlayed != 1 || p1.Wins != 1 || p1.LastSeen != "2024-03-01T10:00:00" {
		t.Fatalf("p1 must keep only the remaining played match: %+v", p1)
	}
	for _, playerID := range []string{"p2", "p3", "p4"} {
		if _, ok := after[playerID]; ok {
			t.Fatalf("player %s has no played history left and must be removed", playerID)
		}
	}
	if _, ok := after["p5"]; !ok {
		t.Fatalf("untouched player p5 must stay")
	}
	edges := aggregates.Edges()
	if hasEdge(edges, "p1", "p2") || hasEdge(edges, "p3", "p4") {
		t.Fatalf("edges only backed by the canceled match must be removed: %+v", edges)
	}
	if len(edges) != 6 || summary.PlayersPruned != 3 || summary.EdgesPruned != 6 {
		t.Fatalf("unexpected prune outcome: edges=%d pruned=%d/%d", len(edges), summary.PlayersPruned, summary.EdgesPruned)
	}
}

func TestReconciliationService_IncrementalSync_RosterChangeRefoldsRemovedPlayer(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	first := doublesWon("m1", "2024-03-08T10:00:00", "Club A", []string{"p1", "p2"}, []string{"p3", "p4"})
	corrected := doublesWon("m1", "2024-03-08T10:00:00", "Club A", []string{"p1", "p5"}, []string{"p3", "p4"})

	matches := memory.NewMatchRepository()
	aggregates := memory.NewAggregateRepository()
	svc := incrementalService(t, syncRuns(t, []match.RawMatch{first}, []match.RawMatch{corrected}), matches, aggregates)
	input := IncrementalInput{Since: "2024-03-01T00:00:00"}

	if _, err := svc.IncrementalSync(ctx, input); err != nil {
		t.Fatalf("first sync: %v", err)
	}
	summary, err := svc.IncrementalSync(ctx, input)
	if err != nil {
		t.Fatalf("second sync: %v", err)
	}
	if summary.TouchedPlayers != 5 {
		t.Fatalf("removed player must be touched, got=%d", summary.TouchedPlayers)
	}

	players := playersByID(aggregates.Players())
	if _, ok := players["p2"]; ok {
		t.Fatalf("p2 was removed from the roster and has no other history")
	}
	if p5 := players["p5"]; p5.MatchesPlayed != 1 || p5.Wins != 1 {
		t.Fatalf("unexpected p5: %+v", p5)
	}
	if p1 := players["p1"]; p1.MatchesPlayed != 1 {
		t.Fatalf("p1 must not double count the corrected match: %+v", p1)
	}
	edges := aggregates.Edges()
	if hasEdge(edges, "p1", "p2") || !hasEdge(edges, "p1", "p5") || len(edges) != 6 {
		t.Fatalf("unexpected edges after roster change: %+v", edges)
	}
}
