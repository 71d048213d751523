package checkpoint

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/klauspost/compress/zstd"
	"github.com/sourcegraph/conc/iter"
	"github.com/valyala/bytebufferpool"

	"github.com/mkm418/padel-intelligence/internal/domain/match"
	"github.com/mkm418/padel-intelligence/internal/platform/logging"
	"github.com/mkm418/padel-intelligence/internal/usecase"
)

const (
	extJSON     = ".json"
	extJSONZstd = ".json.zst"
)

// Loader reads a directory of per-venue checkpoint files. Each file holds
// every match seen at one venue, either as a bare JSON array or as a
// {"matches": [...]} envelope, optionally zstd-compressed.
type Loader struct {
	logger      *logging.Logger
	parallelism int
}

func NewLoader(parallelism int, logger *logging.Logger) *Loader {
	if logger == nil {
		logger = logging.Default()
	}
	if parallelism <= 0 {
		parallelism = runtime.GOMAXPROCS(0)
	}
	return &Loader{logger: logger, parallelism: parallelism}
}

type loadResult struct {
	checkpoint usecase.VenueCheckpoint
	err        error
}

// LoadCorpus parses every checkpoint file in dir. Files are parsed in
// parallel but returned in file-name order, so the fold order of a full
// rebuild is stable across runs. A file that cannot be read or decoded is
// counted as unreadable and skipped.
func (l *Loader) LoadCorpus(ctx context.Context, dir string) (usecase.Corpus, error) {
	dir = strings.TrimSpace(dir)
	info, err := os.Stat(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return usecase.Corpus{}, fmt.Errorf("%w: checkpoint dir %s does not exist", usecase.ErrInvalidInput, dir)
		}
		return usecase.Corpus{}, fmt.Errorf("stat checkpoint dir: %w", err)
	}
	if !info.IsDir() {
		return usecase.Corpus{}, fmt.Errorf("%w: checkpoint path %s is not a directory", usecase.ErrInvalidInput, dir)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return usecase.Corpus{}, fmt.Errorf("list checkpoint dir: %w", err)
	}

	paths := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !isCheckpointFile(entry.Name()) {
			continue
		}
		paths = append(paths, filepath.Join(dir, entry.Name()))
	}

	mapper := iter.Mapper[string, loadResult]{MaxGoroutines: l.parallelism}
	results := mapper.Map(paths, func(path *string) loadResult {
		if err := ctx.Err(); err != nil {
			return loadResult{err: err}
		}
		matches, err := readCheckpoint(*path)
		return loadResult{
			checkpoint: usecase.VenueCheckpoint{
				Venue:   VenueFromPath(*path),
				Path:    *path,
				Matches: matches,
			},
			err: err,
		}
	})
	if err := ctx.Err(); err != nil {
		return usecase.Corpus{}, err
	}

	corpus := usecase.Corpus{Checkpoints: make([]usecase.VenueCheckpoint, 0, len(results))}
	for i, res := range results {
		if res.err != nil {
			corpus.Unreadable++
			l.logger.WarnContext(ctx, "skip unreadable checkpoint file", "path", paths[i], "error", res.err)
			continue
		}
		corpus.Checkpoints = append(corpus.Checkpoints, res.checkpoint)
	}

	l.logger.InfoContext(ctx, "checkpoint corpus loaded",
		"dir", dir,
		"files", len(paths),
		"unreadable", corpus.Unreadable,
	)
	return corpus, nil
}

func readCheckpoint(path string) ([]match.RawMatch, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open checkpoint: %w", err)
	}
	defer f.Close()

	var r io.Reader = f
	if strings.HasSuffix(strings.ToLower(path), extJSONZstd) {
		dec, err := zstd.NewReader(f)
		if err != nil {
			return nil, fmt.Errorf("zstd: %w", err)
		}
		defer dec.Close()
		r = dec
	}

	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)
	if _, err := buf.ReadFrom(r); err != nil {
		return nil, fmt.Errorf("read checkpoint: %w", err)
	}

	// DecodeRawMatches copies out of the buffer, so it can go back to the pool.
	return match.DecodeRawMatches(buf.B)
}

func isCheckpointFile(name string) bool {
	lower := strings.ToLower(name)
	if strings.HasPrefix(lower, ".") {
		return false
	}
	return strings.HasSuffix(lower, extJSON) || strings.HasSuffix(lower, extJSONZstd)
}

// VenueFromPath derives the venue name used for records that carry no
// tenant metadata: the file name without its checkpoint extension.
func VenueFromPath(path string) string {
	name := filepath.Base(path)
	lower := strings.ToLower(name)
	switch {
	case strings.HasSuffix(lower, extJSONZstd):
		name = name[:len(name)-len(extJSONZstd)]
	case strings.HasSuffix(lower, extJSON):
		name = name[:len(name)-len(extJSON)]
	}
	return strings.TrimSpace(strings.ReplaceAll(name, "_", " "))
}
