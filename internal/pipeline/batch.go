package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/nao1215/uidiff/internal/hierarchy"
	"github.com/nao1215/uidiff/internal/model"
)

// DefaultConcurrency is the number of screens compared at once.
const DefaultConcurrency = 4

// Pair is one screen captured in both builds.
type Pair struct {
	Label     string
	Base      string
	Candidate string
}

// Comparison creates the comparison job for the pair.
func (p Pair) Comparison() *model.Comparison {
	return model.NewComparison(p.Label, p.Base, p.Candidate)
}

// Pairing is the result of matching two capture directories by file name.
type Pairing struct {
	// Pairs are the screens present in both directories, sorted by label.
	Pairs []Pair

	// BaseOnly and CandidateOnly list labels captured in one build only.
	BaseOnly      []string
	CandidateOnly []string
}

// PairDirectories pairs the *.xml captures of two directories by file name.
// A directory holding an xmls/ subdirectory is read through it.
func PairDirectories(baseDir, candidateDir string) (*Pairing, error) {
	base, err := listCaptures(baseDir)
	if err != nil {
		return nil, err
	}
	cand, err := listCaptures(candidateDir)
	if err != nil {
		return nil, err
	}

	p := &Pairing{}
	for label, path := range base {
		if cpath, ok := cand[label]; ok {
			p.Pairs = append(p.Pairs, Pair{Label: label, Base: path, Candidate: cpath})
		} else {
			p.BaseOnly = append(p.BaseOnly, label)
		}
	}
	for label := range cand {
		if _, ok := base[label]; !ok {
			p.CandidateOnly = append(p.CandidateOnly, label)
		}
	}

	slices.SortFunc(p.Pairs, func(a, b Pair) int { return strings.Compare(a.Label, b.Label) })
	slices.Sort(p.BaseOnly)
	slices.Sort(p.CandidateOnly)
	return p, nil
}

// CaptureDir returns the directory holding the captures of dir: its xmls/
// subdirectory when present, otherwise dir itself.
func CaptureDir(dir string) string {
	if info, err := os.Stat(filepath.Join(dir, hierarchy.XMLDir)); err == nil && info.IsDir() {
		return filepath.Join(dir, hierarchy.XMLDir)
	}
	return dir
}

// ListLabels returns the sorted labels of the captures in dir.
func ListLabels(dir string) ([]string, error) {
	captures, err := listCaptures(dir)
	if err != nil {
		return nil, err
	}
	labels := make([]string, 0, len(captures))
	for label := range captures {
		labels = append(labels, label)
	}
	slices.Sort(labels)
	return labels, nil
}

// listCaptures maps labels to capture paths.
func listCaptures(dir string) (map[string]string, error) {
	dir = CaptureDir(dir)

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read capture directory: %w", err)
	}

	captures := make(map[string]string, len(entries))
	for _, e := range entries {
		if e.IsDir() || !strings.EqualFold(filepath.Ext(e.Name()), ".xml") {
			continue
		}
		path := filepath.Join(dir, e.Name())
		captures[hierarchy.LabelFromPath(path)] = path
	}
	return captures, nil
}

// BatchProcessor handles concurrent comparison of many screens.
// It uses errgroup to manage goroutines and respect concurrency limits.
type BatchProcessor struct {
	// pipelineFactory creates a new pipeline for each comparison.
	pipelineFactory func() *Pipeline

	// concurrency is the maximum number of concurrent comparisons.
	concurrency int

	// logger is used for batch-level logging.
	logger *slog.Logger
}

// BatchOption configures a BatchProcessor.
type BatchOption func(*BatchProcessor)

// WithBatchLogger sets a custom logger for batch processing.
func WithBatchLogger(logger *slog.Logger) BatchOption {
	return func(b *BatchProcessor) {
		b.logger = logger
	}
}

// WithConcurrency sets the maximum number of concurrent comparisons.
// Non-positive values keep the default.
func WithConcurrency(n int) BatchOption {
	return func(b *BatchProcessor) {
		if n > 0 {
			b.concurrency = n
		}
	}
}

// NewBatchProcessor creates a new BatchProcessor.
// The pipelineFactory is called once per comparison.
func NewBatchProcessor(pipelineFactory func() *Pipeline, opts ...BatchOption) *BatchProcessor {
	bp := &BatchProcessor{
		pipelineFactory: pipelineFactory,
		concurrency:     DefaultConcurrency,
	}

	for _, opt := range opts {
		opt(bp)
	}

	if bp.logger == nil {
		bp.logger = slog.Default()
	}

	return bp
}

// ProcessBatch compares all pairs concurrently.
//
// Results are returned in input order, including comparisons that failed;
// their error is recorded on the comparison. The returned error is only
// set when the batch was cancelled.
func (bp *BatchProcessor) ProcessBatch(ctx context.Context, pairs []Pair) ([]*model.Comparison, error) {
	bp.logger.Info("starting batch processing",
		"total_screens", len(pairs),
		"concurrency", bp.concurrency,
	)

	startTime := time.Now()
	results := make([]*model.Comparison, len(pairs))
	var mu sync.Mutex

	err := bp.run(ctx, pairs, func(c *model.Comparison, i int) {
		mu.Lock()
		results[i] = c
		mu.Unlock()
	})

	bp.logger.Info("batch processing complete",
		"total_screens", len(pairs),
		"elapsed", time.Since(startTime),
	)

	return results, err
}

// ProcessBatchWithCallback compares all pairs and calls callback for each
// finished comparison with its index in pairs. The callback is called from
// worker goroutines and must be safe for concurrent use.
func (bp *BatchProcessor) ProcessBatchWithCallback(
	ctx context.Context,
	pairs []Pair,
	callback func(c *model.Comparison, index int),
) error {
	bp.logger.Info("starting batch processing with callback",
		"total_screens", len(pairs),
		"concurrency", bp.concurrency,
	)
	return bp.run(ctx, pairs, callback)
}

func (bp *BatchProcessor) run(ctx context.Context, pairs []Pair, done func(*model.Comparison, int)) error {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(bp.concurrency)

	for i, pair := range pairs {
		g.Go(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}

			c := pair.Comparison()
			if err := bp.pipelineFactory().Execute(ctx, c); err != nil {
				bp.logger.Warn("comparison failed",
					"screen", pair.Label,
					"error", err,
				)
			}

			done(c, i)
			return nil
		})
	}

	return g.Wait()
}
