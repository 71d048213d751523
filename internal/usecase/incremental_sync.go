package usecase

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"

	"github.com/mkm418/padel-intelligence/internal/domain/edge"
	"github.com/mkm418/padel-intelligence/internal/domain/graph"
	"github.com/mkm418/padel-intelligence/internal/domain/match"
	"github.com/mkm418/padel-intelligence/internal/domain/player"
)

// SinceLayout is the from-date format sent to the live source.
const SinceLayout = "2006-01-02T15:04:05"

var matchTimeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	SinceLayout,
	"2006-01-02 15:04:05",
	"2006-01-02",
}

type IncrementalInput struct {
	// TenantIDs overrides the configured tenants when set.
	TenantIDs []string
	// Since overrides the store-derived from-date when set.
	Since string
	// DryRun fetches and recomputes but never writes.
	DryRun bool
}

type pageResult struct {
	matches []match.RawMatch
	err     error
}

func (s *ReconciliationService) IncrementalSync(ctx context.Context, input IncrementalInput) (summary RunSummary, err error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ReconciliationService.IncrementalSync")
	defer span.End()

	summary, err = s.newSummary(ModeIncremental, input.DryRun)
	if err != nil {
		return RunSummary{}, err
	}
	defer s.finish(ctx, &summary, &err)

	tenants, err := s.validateIncremental(input)
	if err != nil {
		return summary, err
	}

	since, err := s.resolveSince(ctx, input.Since)
	if err != nil {
		return summary, err
	}
	summary.Since = since

	pool, err := ants.NewPool(s.cfg.BatchSize)
	if err != nil {
		return summary, fmt.Errorf("create fetch pool: %w", err)
	}
	defer pool.Release()

	raws := make([]match.RawMatch, 0, s.cfg.PageSize)
	for _, tenantID := range tenants {
		if ctx.Err() != nil {
			return summary, ctx.Err()
		}
		fetched, pages, failed := s.fetchTenant(ctx, pool, tenantID, since)
		raws = append(raws, fetched...)
		summary.PagesFetched += pages
		summary.FailedFetches += failed
	}

	batch := graph.NewBuilder()
	seen := make(map[string]struct{}, len(raws))
	fresh := make([]match.Match, 0, len(raws))
	for _, raw := range raws {
		if m, ok := s.admit(ctx, batch, seen, raw, ""); ok {
			fresh = append(fresh, m)
		}
	}
	summary.Diagnostics = batch.Diagnostics

	touched, err := s.touchedPlayerIDs(ctx, fresh)
	if err != nil {
		return summary, err
	}

	if !input.DryRun {
		s.upsertMatches(ctx, fresh, &summary)
	}

	summary.TouchedPlayers = len(touched)
	if len(touched) == 0 {
		return summary, nil
	}

	history, err := s.loadHistory(ctx, touched)
	if err != nil {
		if summary.MatchesWritten > 0 {
			summary.AggregatesStale = true
			s.logger.WarnContext(ctx, "matches stored but aggregates not recomputed",
				"run_id", summary.RunID,
				"matches_written", summary.MatchesWritten,
				"touched_players", len(touched),
			)
		}
		return summary, err
	}
	summary.HistoryMatches = len(history)

	rebuild := graph.NewBuilder()
	for _, m := range unionMatches(history, fresh) {
		rebuild.Add(m)
	}
	export := rebuild.Finalize(s.cfg.SystemAccounts)

	touchedSet := make(map[string]struct{}, len(touched))
	for _, playerID := range touched {
		touchedSet[playerID] = struct{}{}
	}
	players := make([]player.Player, 0, len(touched))
	for _, p := range export.Players {
		if _, ok := touchedSet[p.ID]; ok {
			players = append(players, p)
		}
	}
	for _, excludedID := range export.Excluded {
		if _, ok := touchedSet[excludedID]; ok {
			summary.ExcludedPlayers++
		}
	}
	edges := make([]edge.Edge, 0, len(export.Edges))
	for _, e := range export.Edges {
		_, source := touchedSet[e.Source]
		_, target := touchedSet[e.Target]
		if source || target {
			edges = append(edges, e)
		}
	}

	summary.UniquePlayers = rebuild.Players.Len()
	summary.ExportedPlayers = len(players)
	summary.UniqueEdges = len(edges)
	summary.EdgeCounts = countRelations(edges)

	if input.DryRun {
		return summary, nil
	}

	failedBefore := summary.FailedWrites
	for _, part := range chunk(players, s.cfg.WriteChunkSize) {
		if err := s.aggregates.UpsertPlayers(ctx, part); err != nil {
			summary.FailedWrites++
			s.logger.WarnContext(ctx, "upsert players chunk failed", "run_id", summary.RunID, "size", len(part), "error", err)
			continue
		}
		summary.PlayersWritten += len(part)
	}
	for _, part := range chunk(edges, s.cfg.WriteChunkSize) {
		if err := s.aggregates.UpsertEdges(ctx, part); err != nil {
			summary.FailedWrites++
			s.logger.WarnContext(ctx, "upsert edges chunk failed", "run_id", summary.RunID, "size", len(part), "error", err)
			continue
		}
		summary.EdgesWritten += len(part)
	}

	keepPlayers := make([]string, 0, len(players))
	for _, p := range players {
		keepPlayers = append(keepPlayers, p.ID)
	}
	keepEdges := make([]edge.PairKey, 0, len(edges))
	for _, e := range edges {
		keepEdges = append(keepEdges, e.Key())
	}
	pruned, err := s.aggregates.PruneStale(ctx, touched, keepPlayers, keepEdges)
	if err != nil {
		summary.FailedWrites++
		s.logger.WarnContext(ctx, "prune stale aggregates failed", "run_id", summary.RunID, "touched_players", len(touched), "error", err)
	} else {
		summary.PlayersPruned = pruned.Players
		summary.EdgesPruned = pruned.Edges
	}

	if summary.FailedWrites > failedBefore {
		summary.AggregatesStale = true
	}
	return summary, nil
}

// Watch runs IncrementalSync back to back on interval until ctx is done.
// Configuration errors stop it before the first run; run errors are logged
// and the next tick retries.
func (s *ReconciliationService) Watch(ctx context.Context, input IncrementalInput, interval time.Duration, onRun func(RunSummary, error)) error {
	if interval <= 0 {
		return fmt.Errorf("%w: watch interval must be > 0", ErrInvalidInput)
	}
	if _, err := s.validateIncremental(input); err != nil {
		return err
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		summary, err := s.IncrementalSync(ctx, input)
		if onRun != nil {
			onRun(summary, err)
		}
		if ctx.Err() != nil {
			return nil
		}

		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

func (s *ReconciliationService) validateIncremental(input IncrementalInput) ([]string, error) {
	if s.matches == nil || s.aggregates == nil {
		return nil, fmt.Errorf("%w: incremental sync requires a durable store (DB_URL)", ErrDependencyUnavailable)
	}
	if s.source == nil {
		return nil, fmt.Errorf("%w: live match source is not configured", ErrDependencyUnavailable)
	}
	tenants := trimNonEmpty(input.TenantIDs)
	if len(tenants) == 0 {
		tenants = s.cfg.TenantIDs
	}
	if len(tenants) == 0 {
		return nil, fmt.Errorf("%w: at least one tenant id is required (PLAYTOMIC_TENANT_IDS)", ErrInvalidInput)
	}
	return tenants, nil
}

// resolveSince is the latest stored start date minus the overlap window, or
// now minus the initial lookback when the store has no usable match yet.
func (s *ReconciliationService) resolveSince(ctx context.Context, override string) (string, error) {
	if v := strings.TrimSpace(override); v != "" {
		return v, nil
	}

	latest, ok, err := s.matches.LatestStartDate(ctx)
	if err != nil {
		return "", fmt.Errorf("read latest match start date: %w", err)
	}
	fallback := s.now().UTC().Add(-s.cfg.InitialLookback).Format(SinceLayout)
	if !ok {
		return fallback, nil
	}

	parsed, err := parseMatchTime(latest)
	if err != nil {
		s.logger.WarnContext(ctx, "latest stored start date is not parseable, using initial lookback",
			"start_date", latest,
			"error", err,
		)
		return fallback, nil
	}
	return parsed.Add(-s.cfg.OverlapWindow).Format(SinceLayout), nil
}

// fetchTenant pulls pages in batches of BatchSize. A page that fails counts
// as empty. Paging stops after a batch with no full page or at MaxPages.
func (s *ReconciliationService) fetchTenant(ctx context.Context, pool *ants.Pool, tenantID, since string) ([]match.RawMatch, int, int) {
	var (
		out    []match.RawMatch
		pages  int
		failed int
	)

	for start := 0; start < s.cfg.MaxPages; start += s.cfg.BatchSize {
		end := start + s.cfg.BatchSize
		if end > s.cfg.MaxPages {
			end = s.cfg.MaxPages
		}

		results := make([]pageResult, end-start)
		var workers sync.WaitGroup
		for page := start; page < end; page++ {
			page := page
			workers.Add(1)
			if err := pool.Submit(func() {
				defer workers.Done()
				matches, err := s.source.FetchPage(ctx, match.PageRequest{
					TenantID: tenantID,
					Since:    since,
					Page:     page,
					Size:     s.cfg.PageSize,
				})
				results[page-start] = pageResult{matches: matches, err: err}
			}); err != nil {
				workers.Done()
				results[page-start] = pageResult{err: fmt.Errorf("submit page fetch: %w", err)}
			}
		}
		workers.Wait()

		anyFull := false
		for i, res := range results {
			if res.err != nil {
				failed++
				s.logger.WarnContext(ctx, "page fetch failed, treating as empty",
					"tenant_id", tenantID,
					"page", start+i,
					"error", res.err,
				)
				continue
			}
			pages++
			out = append(out, res.matches...)
			if len(res.matches) >= s.cfg.PageSize {
				anyFull = true
			}
		}

		if !anyFull || end >= s.cfg.MaxPages {
			break
		}
		if err := sleepContext(ctx, s.cfg.BatchDelay); err != nil {
			break
		}
	}

	return out, pages, failed
}

func (s *ReconciliationService) loadHistory(ctx context.Context, playerIDs []string) ([]match.Match, error) {
	out := make([]match.Match, 0, len(playerIDs))
	for _, part := range chunk(playerIDs, s.cfg.HistoryChunkSize) {
		items, err := s.matches.ListPlayedByPlayerIDs(ctx, part)
		if err != nil {
			return nil, fmt.Errorf("%w: load match history for %d players: %v", ErrDependencyUnavailable, len(part), err)
		}
		out = append(out, items...)
	}
	return out, nil
}

// touchedPlayerIDs lists every identified participant of a batch match,
// whatever its status, plus the roster stored for it before this run, sorted.
// A status flip or roster change has to refold players the match no longer
// counts for.
func (s *ReconciliationService) touchedPlayerIDs(ctx context.Context, items []match.Match) ([]string, error) {
	set := make(map[string]struct{})
	matchIDs := make([]string, 0, len(items))
	for _, m := range items {
		matchIDs = append(matchIDs, m.ID)
		for _, playerID := range m.PlayerIDs() {
			set[playerID] = struct{}{}
		}
	}
	sort.Strings(matchIDs)

	for _, part := range chunk(matchIDs, s.cfg.HistoryChunkSize) {
		stored, err := s.matches.ListPlayerIDsByMatchIDs(ctx, part)
		if err != nil {
			return nil, fmt.Errorf("%w: load stored rosters for %d matches: %v", ErrDependencyUnavailable, len(part), err)
		}
		for _, playerID := range stored {
			set[playerID] = struct{}{}
		}
	}

	out := make([]string, 0, len(set))
	for playerID := range set {
		out = append(out, playerID)
	}
	sort.Strings(out)
	return out, nil
}

// unionMatches merges stored history with the fresh batch by match id. The
// batch copy wins; output is ordered by start date then id.
func unionMatches(history, fresh []match.Match) []match.Match {
	byID := make(map[string]match.Match, len(history)+len(fresh))
	for _, m := range history {
		byID[m.ID] = m
	}
	for _, m := range fresh {
		byID[m.ID] = m
	}
	out := make([]match.Match, 0, len(byID))
	for _, m := range byID {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].StartDate != out[j].StartDate {
			return out[i].StartDate < out[j].StartDate
		}
		return out[i].ID < out[j].ID
	})
	return out
}

func countRelations(edges []edge.Edge) graph.EdgeCounts {
	var out graph.EdgeCounts
	for _, e := range edges {
		switch e.Relationship {
		case edge.RelationTeammate:
			out.Teammate++
		case edge.RelationOpponent:
			out.Opponent++
		case edge.RelationMixed:
			out.Mixed++
		}
	}
	return out
}

func parseMatchTime(raw string) (time.Time, error) {
	value := strings.TrimSpace(raw)
	for _, layout := range matchTimeLayouts {
		if parsed, err := time.Parse(layout, value); err == nil {
			return parsed, nil
		}
	}
	return time.Time{}, errors.New("unsupported start date format")
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
