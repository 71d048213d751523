package checkpoint

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	sonic "github.com/bytedance/sonic"

	"github.com/mkm418/padel-intelligence/internal/domain/edge"
	"github.com/mkm418/padel-intelligence/internal/domain/graph"
	"github.com/mkm418/padel-intelligence/internal/domain/player"
	"github.com/mkm418/padel-intelligence/internal/platform/logging"
	"github.com/mkm418/padel-intelligence/internal/usecase"
)

const (
	PlayersFile = "players.json"
	EdgesFile   = "edges.json"
	SummaryFile = "summary.json"
)

// ExportWriter writes the finalized player and edge exports plus the run
// summary into one directory. Each file is replaced atomically.
type ExportWriter struct {
	logger *logging.Logger
}

func NewExportWriter(logger *logging.Logger) *ExportWriter {
	if logger == nil {
		logger = logging.Default()
	}
	return &ExportWriter{logger: logger}
}

type summaryDocument struct {
	usecase.RunSummary
	ExcludedPlayerIDs []string `json:"excluded_player_ids"`
}

func (w *ExportWriter) WriteExport(ctx context.Context, dir string, export graph.Export, summary usecase.RunSummary) error {
	if dir == "" {
		return fmt.Errorf("%w: export dir is required", usecase.ErrInvalidInput)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create export dir: %w", err)
	}

	players := export.Players
	if players == nil {
		players = []player.Player{}
	}
	edges := export.Edges
	if edges == nil {
		edges = []edge.Edge{}
	}
	excluded := export.Excluded
	if excluded == nil {
		excluded = []string{}
	}

	docs := []struct {
		name  string
		value any
	}{
		{name: PlayersFile, value: players},
		{name: EdgesFile, value: edges},
		{name: SummaryFile, value: summaryDocument{RunSummary: summary, ExcludedPlayerIDs: excluded}},
	}
	for _, doc := range docs {
		if err := ctx.Err(); err != nil {
			return err
		}
		raw, err := sonic.MarshalIndent(doc.value, "", "  ")
		if err != nil {
			return fmt.Errorf("encode %s: %w", doc.name, err)
		}
		if err := writeFileAtomic(filepath.Join(dir, doc.name), raw); err != nil {
			return err
		}
	}

	w.logger.InfoContext(ctx, "export written",
		"dir", dir,
		"players", len(players),
		"edges", len(edges),
		"excluded", len(excluded),
	)
	return nil
}

func writeFileAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file for %s: %w", path, err)
	}
	tmpName := tmp.Name()
	cleanup := func() { _ = os.Remove(tmpName) }

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		cleanup()
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		cleanup()
		return fmt.Errorf("sync %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return fmt.Errorf("close %s: %w", path, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		cleanup()
		return fmt.Errorf("replace %s: %w", path, err)
	}
	return nil
}
