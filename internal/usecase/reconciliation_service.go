package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/mkm418/padel-intelligence/internal/domain/graph"
	"github.com/mkm418/padel-intelligence/internal/domain/match"
	"github.com/mkm418/padel-intelligence/internal/domain/player"
	"github.com/mkm418/padel-intelligence/internal/platform/id"
	"github.com/mkm418/padel-intelligence/internal/platform/logging"
)

const (
	ModeFullRebuild = "full_rebuild"
	ModeIncremental = "incremental"
)

// VenueCheckpoint is one venue file of the archival corpus.
type VenueCheckpoint struct {
	Venue   string
	Path    string
	Matches []match.RawMatch
}

// Corpus is the full archival input in deterministic file order. Unreadable
// counts files that could not be read or decoded; they contribute nothing.
type Corpus struct {
	Checkpoints []VenueCheckpoint
	Unreadable  int
}

type CorpusLoader interface {
	LoadCorpus(ctx context.Context, dir string) (Corpus, error)
}

type ExportWriter interface {
	WriteExport(ctx context.Context, dir string, export graph.Export, summary RunSummary) error
}

// RunSummary is the diagnostic record of one reconciliation run. Nothing
// downstream reads it for logic.
type RunSummary struct {
	RunID           string            `json:"run_id"`
	Mode            string            `json:"mode"`
	DryRun          bool              `json:"dry_run"`
	Since           string            `json:"since,omitempty"`
	StartedAt       time.Time         `json:"started_at"`
	Diagnostics     graph.Diagnostics `json:"diagnostics"`
	UniquePlayers   int               `json:"unique_players"`
	ExportedPlayers int               `json:"exported_players"`
	ExcludedPlayers int               `json:"excluded_players"`
	UniqueEdges     int               `json:"unique_edges"`
	EdgeCounts      graph.EdgeCounts  `json:"edge_counts"`
	CheckpointFiles int               `json:"checkpoint_files,omitempty"`
	UnreadableFiles int               `json:"unreadable_files,omitempty"`
	PagesFetched    int               `json:"pages_fetched,omitempty"`
	FailedFetches   int               `json:"failed_fetches"`
	HistoryMatches  int               `json:"history_matches,omitempty"`
	TouchedPlayers  int               `json:"touched_players,omitempty"`
	MatchesWritten  int               `json:"matches_written"`
	PlayersWritten  int               `json:"players_written"`
	EdgesWritten    int               `json:"edges_written"`
	FailedWrites    int               `json:"failed_writes"`
	PlayersPruned   int               `json:"players_pruned,omitempty"`
	EdgesPruned     int               `json:"edges_pruned,omitempty"`
	// AggregatesStale marks a run that stored matches but could not bring
	// the player and edge tables in line with them.
	AggregatesStale bool  `json:"aggregates_stale"`
	ElapsedMs       int64 `json:"elapsed_ms"`
}

type ReconciliationConfig struct {
	CheckpointDir    string
	ExportDir        string
	TenantIDs        []string
	PageSize         int
	MaxPages         int
	BatchSize        int
	BatchDelay       time.Duration
	OverlapWindow    time.Duration
	InitialLookback  time.Duration
	WriteChunkSize   int
	HistoryChunkSize int
	SystemAccounts   player.SystemAccountRules
}

func normalizeReconciliationConfig(cfg ReconciliationConfig) ReconciliationConfig {
	if cfg.PageSize <= 0 {
		cfg.PageSize = 100
	}
	if cfg.MaxPages <= 0 {
		cfg.MaxPages = 200
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 5
	}
	if cfg.BatchDelay < 0 {
		cfg.BatchDelay = 0
	}
	if cfg.OverlapWindow < 0 {
		cfg.OverlapWindow = 0
	}
	if cfg.InitialLookback <= 0 {
		cfg.InitialLookback = 30 * 24 * time.Hour
	}
	if cfg.WriteChunkSize <= 0 {
		cfg.WriteChunkSize = 500
	}
	if cfg.HistoryChunkSize <= 0 {
		cfg.HistoryChunkSize = 200
	}
	rules := cfg.SystemAccounts
	if len(rules.Phrases) == 0 && len(rules.Prefixes) == 0 && len(rules.Exact) == 0 && len(rules.Patterns) == 0 {
		cfg.SystemAccounts = player.DefaultSystemAccountRules()
	}
	cfg.TenantIDs = trimNonEmpty(cfg.TenantIDs)
	return cfg
}

// ReconciliationService drives full rebuilds from the checkpoint corpus and
// incremental syncs from the live source. Runs must be serialized by the
// caller; one service never runs two reconciliations at once on its own.
type ReconciliationService struct {
	cfg        ReconciliationConfig
	corpus     CorpusLoader
	exporter   ExportWriter
	source     match.Source
	matches    match.Repository
	aggregates graph.Repository
	ids        id.Generator
	logger     *logging.Logger
	now        func() time.Time
}

func NewReconciliationService(
	cfg ReconciliationConfig,
	corpus CorpusLoader,
	exporter ExportWriter,
	source match.Source,
	matches match.Repository,
	aggregates graph.Repository,
	ids id.Generator,
	logger *logging.Logger,
) *ReconciliationService {
	if logger == nil {
		logger = logging.Default()
	}
	if ids == nil {
		ids = id.NewUUIDGenerator()
	}

	return &ReconciliationService{
		cfg:        normalizeReconciliationConfig(cfg),
		corpus:     corpus,
		exporter:   exporter,
		source:     source,
		matches:    matches,
		aggregates: aggregates,
		ids:        ids,
		logger:     logger,
		now:        time.Now,
	}
}

type FullRebuildInput struct {
	CheckpointDir string
	ExportDir     string
	// DryRun computes and exports but never touches the durable store.
	DryRun bool
}

func (s *ReconciliationService) FullRebuild(ctx context.Context, input FullRebuildInput) (summary RunSummary, err error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ReconciliationService.FullRebuild")
	defer span.End()

	summary, err = s.newSummary(ModeFullRebuild, input.DryRun)
	if err != nil {
		return RunSummary{}, err
	}
	defer s.finish(ctx, &summary, &err)

	checkpointDir := firstNonEmpty(input.CheckpointDir, s.cfg.CheckpointDir)
	exportDir := firstNonEmpty(input.ExportDir, s.cfg.ExportDir)
	if checkpointDir == "" {
		return summary, fmt.Errorf("%w: checkpoint dir is required", ErrInvalidInput)
	}
	if s.corpus == nil {
		return summary, fmt.Errorf("%w: checkpoint loader is not configured", ErrDependencyUnavailable)
	}

	corpus, err := s.corpus.LoadCorpus(ctx, checkpointDir)
	if err != nil {
		return summary, fmt.Errorf("load checkpoint corpus dir=%s: %w", checkpointDir, err)
	}
	summary.CheckpointFiles = len(corpus.Checkpoints) + corpus.Unreadable
	summary.UnreadableFiles = corpus.Unreadable

	builder := graph.NewBuilder()
	seen := make(map[string]struct{}, 1024)
	accepted := make([]match.Match, 0, 1024)
	for _, checkpoint := range corpus.Checkpoints {
		for _, raw := range checkpoint.Matches {
			m, ok := s.admit(ctx, builder, seen, raw, checkpoint.Venue)
			if ok {
				accepted = append(accepted, m)
			}
		}
	}

	export := builder.Finalize(s.cfg.SystemAccounts)
	summary.Diagnostics = builder.Diagnostics
	summary.UniquePlayers = builder.Players.Len()
	summary.ExportedPlayers = len(export.Players)
	summary.ExcludedPlayers = len(export.Excluded)
	summary.UniqueEdges = len(export.Edges)
	summary.EdgeCounts = export.Counts

	if s.shouldPersist(input.DryRun) {
		s.upsertMatches(ctx, accepted, &summary)
		if err := s.aggregates.ReplaceAll(ctx, export.Players, export.Edges); err != nil {
			summary.FailedWrites++
			s.logger.ErrorContext(ctx, "replace aggregates failed", "run_id", summary.RunID, "error", err)
		} else {
			summary.PlayersWritten = len(export.Players)
			summary.EdgesWritten = len(export.Edges)
		}
	}

	if exportDir != "" && s.exporter != nil {
		summary.ElapsedMs = s.now().Sub(summary.StartedAt).Milliseconds()
		if err := s.exporter.WriteExport(ctx, exportDir, export, summary); err != nil {
			return summary, fmt.Errorf("write export dir=%s: %w", exportDir, err)
		}
	}

	return summary, nil
}

// admit normalizes and dedupes one raw record before folding it. A record
// without tenant metadata inherits the checkpoint venue.
func (s *ReconciliationService) admit(
	ctx context.Context,
	builder *graph.Builder,
	seen map[string]struct{},
	raw match.RawMatch,
	fallbackVenue string,
) (match.Match, bool) {
	m, err := match.Normalize(raw)
	if err != nil {
		builder.AddMalformed()
		s.logger.DebugContext(ctx, "skip malformed match", "error", err)
		return match.Match{}, false
	}
	if m.Venue == "" {
		m.Venue = strings.TrimSpace(fallbackVenue)
	}
	if _, dup := seen[m.ID]; dup {
		builder.AddDuplicate()
		return match.Match{}, false
	}
	seen[m.ID] = struct{}{}
	builder.Add(m)
	return m, true
}

func (s *ReconciliationService) shouldPersist(dryRun bool) bool {
	return !dryRun && s.matches != nil && s.aggregates != nil
}

func (s *ReconciliationService) upsertMatches(ctx context.Context, items []match.Match, summary *RunSummary) {
	for _, part := range chunk(items, s.cfg.WriteChunkSize) {
		if err := s.matches.UpsertMatches(ctx, part); err != nil {
			summary.FailedWrites++
			s.logger.WarnContext(ctx, "upsert matches chunk failed", "run_id", summary.RunID, "size", len(part), "error", err)
			continue
		}
		summary.MatchesWritten += len(part)
	}
}

func (s *ReconciliationService) newSummary(mode string, dryRun bool) (RunSummary, error) {
	runID, err := s.ids.NewID()
	if err != nil {
		return RunSummary{}, fmt.Errorf("generate run id: %w", err)
	}
	return RunSummary{
		RunID:     runID,
		Mode:      mode,
		DryRun:    dryRun,
		StartedAt: s.now().UTC(),
	}, nil
}

func (s *ReconciliationService) finish(ctx context.Context, summary *RunSummary, err *error) {
	summary.ElapsedMs = s.now().Sub(summary.StartedAt).Milliseconds()
	if *err != nil {
		s.logger.ErrorContext(ctx, "reconciliation run failed",
			"run_id", summary.RunID,
			"mode", summary.Mode,
			"elapsed_ms", summary.ElapsedMs,
			"error", *err,
		)
		return
	}
	s.logger.InfoContext(ctx, "reconciliation run finished",
		"run_id", summary.RunID,
		"mode", summary.Mode,
		"since", summary.Since,
		"raw_matches", summary.Diagnostics.RawMatches,
		"played", summary.Diagnostics.Played,
		"unique_players", summary.UniquePlayers,
		"unique_edges", summary.UniqueEdges,
		"failed_fetches", summary.FailedFetches,
		"failed_writes", summary.FailedWrites,
		"aggregates_stale", summary.AggregatesStale,
		"elapsed_ms", summary.ElapsedMs,
	)
}

func chunk[T any](items []T, size int) [][]T {
	if len(items) == 0 {
		return nil
	}
	if size <= 0 || size >= len(items) {
		return [][]T{items}
	}
	out := make([][]T, 0, (len(items)+size-1)/size)
	for start := 0; start < len(items); start += size {
		end := start + size
		if end > len(items) {
			end = len(items)
		}
		out = append(out, items[start:end])
	}
	return out
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if trimmed := strings.TrimSpace(v); trimmed != "" {
			return trimmed
		}
	}
	return ""
}

func trimNonEmpty(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if trimmed := strings.TrimSpace(v); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
