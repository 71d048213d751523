package main

import (
	"fmt"
	"io"
	"strconv"

	sonic "github.com/bytedance/sonic"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"

	"github.com/mkm418/padel-intelligence/internal/usecase"
)

func writeSummaryTable(w io.Writer, summary usecase.RunSummary) error {
	table := tablewriter.NewTable(w, tablewriter.WithConfig(tablewriter.Config{
		Row: tw.CellConfig{
			Alignment: tw.CellAlignment{PerColumn: []tw.Align{tw.AlignLeft, tw.AlignRight}},
		},
		Header: tw.CellConfig{
			Alignment: tw.CellAlignment{Global: tw.AlignCenter},
		},
	}))
	table.Header("METRIC", "VALUE")

	for _, row := range summaryRows(summary) {
		if err := table.Append(row[0], row[1]); err != nil {
			return fmt.Errorf("append summary row %s: %w", row[0], err)
		}
	}
	return table.Render()
}

func writeSummaryJSON(w io.Writer, summary usecase.RunSummary) error {
	raw, err := sonic.MarshalIndent(summary, "", "  ")
	if err != nil {
		return fmt.Errorf("encode run summary: %w", err)
	}
	if _, err := w.Write(append(raw, '\n')); err != nil {
		return fmt.Errorf("write run summary: %w", err)
	}
	return nil
}

// summaryRows lists the metrics shown for a run. Mode-specific counters are
// only shown for the mode that produces them.
func summaryRows(summary usecase.RunSummary) [][2]string {
	d := summary.Diagnostics
	rows := [][2]string{
		{"run_id", summary.RunID},
		{"mode", summary.Mode},
		{"dry_run", strconv.FormatBool(summary.DryRun)},
	}
	switch summary.Mode {
	case usecase.ModeFullRebuild:
		rows = append(rows,
			[2]string{"checkpoint_files", strconv.Itoa(summary.CheckpointFiles)},
			[2]string{"unreadable_files", strconv.Itoa(summary.UnreadableFiles)},
		)
	case usecase.ModeIncremental:
		rows = append(rows,
			[2]string{"since", summary.Since},
			[2]string{"pages_fetched", strconv.Itoa(summary.PagesFetched)},
			[2]string{"failed_fetches", strconv.Itoa(summary.FailedFetches)},
			[2]string{"touched_players", strconv.Itoa(summary.TouchedPlayers)},
			[2]string{"history_matches", strconv.Itoa(summary.HistoryMatches)},
			[2]string{"players_pruned", strconv.Itoa(summary.PlayersPruned)},
			[2]string{"edges_pruned", strconv.Itoa(summary.EdgesPruned)},
			[2]string{"aggregates_stale", strconv.FormatBool(summary.AggregatesStale)},
		)
	}
	rows = append(rows,
		[2]string{"raw_matches", strconv.Itoa(d.RawMatches)},
		[2]string{"played", strconv.Itoa(d.Played)},
		[2]string{"canceled", strconv.Itoa(d.Canceled)},
		[2]string{"pending", strconv.Itoa(d.Pending)},
		[2]string{"other_status", strconv.Itoa(d.OtherStatus)},
		[2]string{"malformed", strconv.Itoa(d.Malformed)},
		[2]string{"duplicates", strconv.Itoa(d.Duplicates)},
		[2]string{"with_usable_result", strconv.Itoa(d.WithUsableResult)},
		[2]string{"with_set_scores", strconv.Itoa(d.WithSetScores)},
		[2]string{"edge_eligible", strconv.Itoa(d.EdgeEligible)},
		[2]string{"pair_events", strconv.Itoa(d.PairEvents)},
		[2]string{"unique_players", strconv.Itoa(summary.UniquePlayers)},
		[2]string{"exported_players", strconv.Itoa(summary.ExportedPlayers)},
		[2]string{"excluded_players", strconv.Itoa(summary.ExcludedPlayers)},
		[2]string{"unique_edges", strconv.Itoa(summary.UniqueEdges)},
		[2]string{"teammate_edges", strconv.Itoa(summary.EdgeCounts.Teammate)},
		[2]string{"opponent_edges", strconv.Itoa(summary.EdgeCounts.Opponent)},
		[2]string{"mixed_edges", strconv.Itoa(summary.EdgeCounts.Mixed)},
		[2]string{"matches_written", strconv.Itoa(summary.MatchesWritten)},
		[2]string{"players_written", strconv.Itoa(summary.PlayersWritten)},
		[2]string{"edges_written", strconv.Itoa(summary.EdgesWritten)},
		[2]string{"failed_writes", strconv.Itoa(summary.FailedWrites)},
		[2]string{"elapsed_ms", strconv.FormatInt(summary.ElapsedMs, 10)},
	)
	return rows
}
