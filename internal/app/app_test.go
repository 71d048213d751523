package app

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/mkm418/padel-intelligence/internal/config"
	"github.com/mkm418/padel-intelligence/internal/infrastructure/checkpoint"
	"github.com/mkm418/padel-intelligence/internal/platform/logging"
	"github.com/mkm418/padel-intelligence/internal/usecase"
)

const venueCheckpoint = `{"matches":[{
  "match_id": "m1",
  "start_date": "2024-01-01T10:00:00",
  "status": "PLAYED",
  "competition_mode": "COMPETITIVE",
  "teams": [
    {"team_id": "0", "team_result": "WON", "players": [{"user_id": "p1", "name": "Ana"}, {"user_id": "p2", "name": "Bea"}]},
    {"team_id": "1", "team_result": "LOST", "players": [{"user_id": "p3", "name": "Cris"}, {"user_id": "p4", "name": "Dani"}]}
  ],
  "results": [{"name": "Set-1", "scores": [{"team_id": "0", "score": 6}, {"team_id": "1", "score": 3}]}]
}]}`

func testConfig(t *testing.T) config.Config {
	t.Helper()

	checkpoints := t.TempDir()
	if err := os.WriteFile(filepath.Join(checkpoints, "club_norte.json"), []byte(venueCheckpoint), 0o644); err != nil {
		t.Fatalf("write checkpoint: %v", err)
	}
	return config.Config{
		CheckpointDir:           checkpoints,
		CheckpointParallelism:   2,
		ExportDir:               filepath.Join(t.TempDir(), "export"),
		PlaytomicBaseURL:        "http://127.0.0.1:0",
		PlaytomicTimeout:        time.Second,
		PlaytomicPageSize:       10,
		PlaytomicMaxPages:       1,
		PlaytomicTenantCacheTTL: time.Minute,
		SyncBatchSize:           1,
		SyncWriteChunkSize:      10,
		SyncHistoryChunkSize:    10,
		SyncOverlapWindow:       time.Hour,
		SyncInitialLookback:     time.Hour,
	}
}

func TestNew_StoreSelection(t *testing.T) {
	cfg := testConfig(t)

	runtime, err := New(context.Background(), cfg, logging.NewNop(), Options{})
	if err != nil {
		t.Fatalf("build runtime: %v", err)
	}
	if runtime.Store != StoreNone {
		t.Fatalf("expected no store without DB_URL, got=%s", runtime.Store)
	}
	if err := runtime.Close(); err != nil {
		t.Fatalf("close runtime: %v", err)
	}

	runtime, err = New(context.Background(), cfg, logging.NewNop(), Options{InMemoryFallback: true})
	if err != nil {
		t.Fatalf("build runtime: %v", err)
	}
	if runtime.Store != StoreMemory {
		t.Fatalf("expected memory store, got=%s", runtime.Store)
	}
}

func TestRuntime_FullRebuildWithMemoryStore(t *testing.T) {
	cfg := testConfig(t)

	runtime, err := New(context.Background(), cfg, logging.NewNop(), Options{InMemoryFallback: true})
	if err != nil {
		t.Fatalf("build runtime: %v", err)
	}
	defer runtime.Close()

	summary, err := runtime.Service.FullRebuild(context.Background(), usecase.FullRebuildInput{})
	if err != nil {
		t.Fatalf("full rebuild: %v", err)
	}
	if summary.Diagnostics.Played != 1 || summary.UniquePlayers != 4 || summary.UniqueEdges != 6 {
		t.Fatalf("unexpected summary: %+v", summary)
	}
	if summary.MatchesWritten != 1 || summary.PlayersWritten != 4 || summary.EdgesWritten != 6 {
		t.Fatalf("expected memory store writes, got=%+v", summary)
	}

	for _, name := range []string{checkpoint.PlayersFile, checkpoint.EdgesFile, checkpoint.SummaryFile} {
		if _, err := os.Stat(filepath.Join(cfg.ExportDir, name)); err != nil {
			t.Fatalf("expected export file %s: %v", name, err)
		}
	}
}

func TestRuntime_IncrementalWithoutStoreFails(t *testing.T) {
	cfg := testConfig(t)
	cfg.PlaytomicTenantIDs = []string{"t1"}

	runtime, err := New(context.Background(), cfg, logging.NewNop(), Options{})
	if err != nil {
		t.Fatalf("build runtime: %v", err)
	}

	_, err = runtime.Service.IncrementalSync(context.Background(), usecase.IncrementalInput{})
	if !errors.Is(err, usecase.ErrDependencyUnavailable) {
		t.Fatalf("expected ErrDependencyUnavailable, got %v", err)
	}
}

func TestReconciliationConfig(t *testing.T) {
	cfg := config.Config{
		CheckpointDir:        "/in",
		ExportDir:            "/out",
		PlaytomicTenantIDs:   []string{"t1", "t2"},
		PlaytomicPageSize:    50,
		PlaytomicMaxPages:    7,
		SyncBatchSize:        3,
		SyncBatchDelay:       time.Second,
		SyncOverlapWindow:    2 * time.Hour,
		SyncInitialLookback:  24 * time.Hour,
		SyncWriteChunkSize:   100,
		SyncHistoryChunkSize: 20,
	}

	got := ReconciliationConfig(cfg)
	if got.CheckpointDir != "/in" || got.ExportDir != "/out" || len(got.TenantIDs) != 2 {
		t.Fatalf("unexpected dirs or tenants: %+v", got)
	}
	if got.PageSize != 50 || got.MaxPages != 7 || got.BatchSize != 3 || got.BatchDelay != time.Second {
		t.Fatalf("unexpected paging: %+v", got)
	}
	if got.OverlapWindow != 2*time.Hour || got.InitialLookback != 24*time.Hour {
		t.Fatalf("unexpected windows: %+v", got)
	}
	if got.WriteChunkSize != 100 || got.HistoryChunkSize != 20 {
		t.Fatalf("unexpected chunk sizes: %+v", got)
	}
}
