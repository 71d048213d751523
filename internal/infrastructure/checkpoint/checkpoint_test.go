package checkpoint

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	sonic "github.com/bytedance/sonic"
	"github.com/klauspost/compress/zstd"

	"github.com/mkm418/padel-intelligence/internal/domain/edge"
	"github.com/mkm418/padel-intelligence/internal/domain/graph"
	"github.com/mkm418/padel-intelligence/internal/domain/player"
	"github.com/mkm418/padel-intelligence/internal/platform/logging"
	"github.com/mkm418/padel-intelligence/internal/usecase"
)

func writeFile(t *testing.T, path string, data []byte) {
	t.Helper()
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func TestLoader_LoadCorpus(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	enc, err := zstd.NewWriter(nil)
	if err != nil {
		t.Fatalf("zstd writer: %v", err)
	}
	compressed := enc.EncodeAll([]byte(`{"matches":[{"match_id":"a1","status":"PLAYED"},{"match_id":"a2","status":"CANCELED"}]}`), nil)
	_ = enc.Close()

	writeFile(t, filepath.Join(dir, "a_club.json.zst"), compressed)
	writeFile(t, filepath.Join(dir, "b_club.json"), []byte(`[{"match_id":"b1","status":"PLAYED"}]`))
	writeFile(t, filepath.Join(dir, "broken.json"), []byte(`{"matches": [`))
	writeFile(t, filepath.Join(dir, "notes.txt"), []byte("ignored"))
	writeFile(t, filepath.Join(dir, ".hidden.json"), []byte(`[]`))
	if err := os.Mkdir(filepath.Join(dir, "nested.json"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	corpus, err := NewLoader(2, logging.NewNop()).LoadCorpus(context.Background(), dir)
	if err != nil {
		t.Fatalf("load corpus: %v", err)
	}

	if corpus.Unreadable != 1 {
		t.Fatalf("expected 1 unreadable file, got=%d", corpus.Unreadable)
	}
	if len(corpus.Checkpoints) != 2 {
		t.Fatalf("expected 2 checkpoints, got=%d", len(corpus.Checkpoints))
	}

	first, second := corpus.Checkpoints[0], corpus.Checkpoints[1]
	if first.Venue != "a club" || len(first.Matches) != 2 || first.Matches[1].MatchID != "a2" {
		t.Fatalf("unexpected first checkpoint: venue=%q matches=%+v", first.Venue, first.Matches)
	}
	if second.Venue != "b club" || len(second.Matches) != 1 || second.Matches[0].MatchID != "b1" {
		t.Fatalf("unexpected second checkpoint: venue=%q matches=%+v", second.Venue, second.Matches)
	}
	if !strings.HasSuffix(second.Path, "b_club.json") {
		t.Fatalf("unexpected path: %s", second.Path)
	}
}

func TestLoader_MissingDirIsInvalidInput(t *testing.T) {
	t.Parallel()

	_, err := NewLoader(1, logging.NewNop()).LoadCorpus(context.Background(), filepath.Join(t.TempDir(), "missing"))
	if !errors.Is(err, usecase.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestLoader_EmptyDir(t *testing.T) {
	t.Parallel()

	corpus, err := NewLoader(0, nil).LoadCorpus(context.Background(), t.TempDir())
	if err != nil {
		t.Fatalf("load corpus: %v", err)
	}
	if len(corpus.Checkpoints) != 0 || corpus.Unreadable != 0 {
		t.Fatalf("expected empty corpus, got=%+v", corpus)
	}
}

func TestVenueFromPath(t *testing.T) {
	t.Parallel()

	tests := map[string]string{
		"/data/Club_Padel_Norte.json": "Club Padel Norte",
		"/data/club_sur.JSON.zst":     "club sur",
		"relative/Indoor Arena.json":  "Indoor Arena",
		"no_extension":                "no extension",
	}
	for in, want := range tests {
		if got := VenueFromPath(in); got != want {
			t.Fatalf("VenueFromPath(%q)=%q want=%q", in, got, want)
		}
	}
}

func TestExportWriter_WriteExport(t *testing.T) {
	t.Parallel()

	dir := filepath.Join(t.TempDir(), "export")
	rate := 0.5
	export := graph.Export{
		Players: []player.Player{{ID: "p1", Name: "Ana", MatchesPlayed: 2, Wins: 1, Losses: 1, WinRate: &rate, Clubs: []string{"Club A"}}},
		Edges: []edge.Edge{
			{Source: "bot", Target: "p1", Weight: 1, Clubs: []string{"Club A"}, LastPlayed: "2024-01-01", Relationship: edge.RelationOpponent},
		},
		Excluded: []string{"bot"},
	}
	summary := usecase.RunSummary{RunID: "run-1", Mode: usecase.ModeFullRebuild, UniquePlayers: 2}

	if err := NewExportWriter(logging.NewNop()).WriteExport(context.Background(), dir, export, summary); err != nil {
		t.Fatalf("write export: %v", err)
	}

	raw, err := os.ReadFile(filepath.Join(dir, PlayersFile))
	if err != nil {
		t.Fatalf("read players: %v", err)
	}
	var players []player.Player
	if err := sonic.Unmarshal(raw, &players); err != nil {
		t.Fatalf("decode players: %v", err)
	}
	if len(players) != 1 || players[0].ID != "p1" || players[0].WinRate == nil || *players[0].WinRate != 0.5 {
		t.Fatalf("unexpected players export: %+v", players)
	}

	raw, err = os.ReadFile(filepath.Join(dir, EdgesFile))
	if err != nil {
		t.Fatalf("read edges: %v", err)
	}
	var edges []edge.Edge
	if err := sonic.Unmarshal(raw, &edges); err != nil {
		t.Fatalf("decode edges: %v", err)
	}
	if len(edges) != 1 || edges[0].Source != "bot" || edges[0].Relationship != edge.RelationOpponent {
		t.Fatalf("edges to excluded players must be exported as-is: %+v", edges)
	}

	raw, err = os.ReadFile(filepath.Join(dir, SummaryFile))
	if err != nil {
		t.Fatalf("read summary: %v", err)
	}
	var doc map[string]any
	if err := sonic.Unmarshal(raw, &doc); err != nil {
		t.Fatalf("decode summary: %v", err)
	}
	if doc["run_id"] != "run-1" || doc["mode"] != usecase.ModeFullRebuild {
		t.Fatalf("unexpected summary: %v", doc)
	}
	if ids, ok := doc["excluded_player_ids"].([]any); !ok || len(ids) != 1 || ids[0] != "bot" {
		t.Fatalf("unexpected excluded ids: %v", doc["excluded_player_ids"])
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read dir: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("expected exactly 3 files without temp leftovers, got=%d", len(entries))
	}
}

func TestExportWriter_EmptyExportWritesArrays(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	if err := NewExportWriter(nil).WriteExport(context.Background(), dir, graph.Export{}, usecase.RunSummary{}); err != nil {
		t.Fatalf("write export: %v", err)
	}
	raw, err := os.ReadFile(filepath.Join(dir, PlayersFile))
	if err != nil {
		t.Fatalf("read players: %v", err)
	}
	if strings.TrimSpace(string(raw)) != "[]" {
		t.Fatalf("expected empty array, got=%s", raw)
	}
}
