package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/nao1215/uidiff/internal/diff"
	"github.com/nao1215/uidiff/internal/gate"
	"github.com/nao1215/uidiff/internal/hierarchy"
	uilog "github.com/nao1215/uidiff/internal/log"
	"github.com/nao1215/uidiff/internal/model"
)

// ErrNotCompared is returned by steps that need a report when the
// comparison has none.
var ErrNotCompared = errors.New("comparison has not been run")

// Resolver supplies the per-screen engine configuration and gate.
type Resolver interface {
	// EngineOptions returns the validated engine options for a screen.
	EngineOptions(label string) (diff.Options, error)

	// GateExpression returns the gate for a screen, or "" for none.
	GateExpression(label string) string
}

// StaticResolver applies the same options and gate to every screen.
type StaticResolver struct {
	Options diff.Options
	Gate    string
}

// EngineOptions implements Resolver.
func (r StaticResolver) EngineOptions(_ string) (diff.Options, error) {
	if err := r.Options.Validate(); err != nil {
		return diff.Options{}, err
	}
	return r.Options, nil
}

// GateExpression implements Resolver.
func (r StaticResolver) GateExpression(_ string) string {
	return r.Gate
}

// Store persists finished comparisons.
type Store interface {
	SaveComparison(ctx context.Context, c *model.Comparison) error
}

// LoadStep reads both captures, fingerprints them and parses the trees.
// Captures already present on the comparison are not read again.
type LoadStep struct {
	// capturerFor returns the capturer reading a capture source.
	capturerFor func(source string) hierarchy.Capturer

	logger *slog.Logger
}

// LoadStepOption configures a LoadStep.
type LoadStepOption func(*LoadStep)

// WithLoadLogger sets a custom logger for the load step.
func WithLoadLogger(logger *slog.Logger) LoadStepOption {
	return func(s *LoadStep) {
		s.logger = logger
	}
}

// WithCapturerFor replaces the function choosing how capture sources are read.
func WithCapturerFor(fn func(source string) hierarchy.Capturer) LoadStepOption {
	return func(s *LoadStep) {
		s.capturerFor = fn
	}
}

// NewLoadStep creates a new capture loading step.
func NewLoadStep(opts ...LoadStepOption) *LoadStep {
	s := &LoadStep{
		capturerFor: hierarchy.CapturerFor,
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Name returns the step name.
func (s *LoadStep) Name() string {
	return "load"
}

// Do executes the load step.
func (s *LoadStep) Do(ctx context.Context, c *model.Comparison) error {
	if c.BaseXML == nil {
		capture, err := hierarchy.Take(ctx, s.capturerFor(c.BaseSource), c.Label)
		if err != nil {
			return fmt.Errorf("failed to read base capture: %w", err)
		}
		c.BaseXML, c.BaseScreenshot = capture.XML, capture.Screenshot
	}
	if c.CandidateXML == nil {
		capture, err := hierarchy.Take(ctx, s.capturerFor(c.CandidateSource), c.Label)
		if err != nil {
			return fmt.Errorf("failed to read candidate capture: %w", err)
		}
		c.CandidateXML, c.CandidateScreenshot = capture.XML, capture.Screenshot
	}

	base := &hierarchy.Capture{Label: c.Label, XML: c.BaseXML, Screenshot: c.BaseScreenshot}
	cand := &hierarchy.Capture{Label: c.Label, XML: c.CandidateXML, Screenshot: c.CandidateScreenshot}
	c.BaseFingerprint, c.CandidateFingerprint = base.Fingerprint(), cand.Fingerprint()
	c.BaseScreenshotFingerprint = base.ScreenshotFingerprint()
	c.CandidateScreenshotFingerprint = cand.ScreenshotFingerprint()

	baseTree, err := base.Tree()
	if err != nil {
		return fmt.Errorf("failed to parse base capture %s: %w", c.BaseSource, err)
	}
	candTree, err := cand.Tree()
	if err != nil {
		return fmt.Errorf("failed to parse candidate capture %s: %w", c.CandidateSource, err)
	}
	c.Base, c.Candidate = baseTree, candTree

	s.logger.Debug("captures loaded",
		"screen", c.Label,
		"base", uilog.Node(baseTree),
		"candidate", uilog.Node(candTree),
		"base_fingerprint", c.BaseFingerprint,
		"candidate_fingerprint", c.CandidateFingerprint,
		"screenshots", c.BaseScreenshotFingerprint != "" || c.CandidateScreenshotFingerprint != "",
	)
	return nil
}

// ArchiveStep writes both captures, with their screenshots, into the
// xmls/ and screenshots/ layout under Dir/base and Dir/candidate, so the
// archive can be compared again later.
type ArchiveStep struct {
	dir    string
	logger *slog.Logger
}

// ArchiveStepOption configures an ArchiveStep.
type ArchiveStepOption func(*ArchiveStep)

// WithArchiveLogger sets a custom logger for the archive step.
func WithArchiveLogger(logger *slog.Logger) ArchiveStepOption {
	return func(s *ArchiveStep) {
		s.logger = logger
	}
}

// NewArchiveStep creates a step archiving captures under dir.
func NewArchiveStep(dir string, opts ...ArchiveStepOption) *ArchiveStep {
	s := &ArchiveStep{
		dir:    dir,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Name returns the step name.
func (s *ArchiveStep) Name() string {
	return "archive"
}

// Do executes the archive step.
func (s *ArchiveStep) Do(ctx context.Context, c *model.Comparison) error {
	if c.BaseXML == nil || c.CandidateXML == nil {
		return fmt.Errorf("nothing to archive for %s: %w", c.Label, ErrNotCompared)
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	sides := []struct {
		name    string
		capture *hierarchy.Capture
	}{
		{"base", &hierarchy.Capture{Label: c.Label, XML: c.BaseXML, Screenshot: c.BaseScreenshot}},
		{"candidate", &hierarchy.Capture{Label: c.Label, XML: c.CandidateXML, Screenshot: c.CandidateScreenshot}},
	}
	for _, side := range sides {
		if err := side.capture.Save(filepath.Join(s.dir, side.name)); err != nil {
			return fmt.Errorf("failed to archive %s capture: %w", side.name, err)
		}
	}
	s.logger.Debug("captures archived", "screen", c.Label, "dir", s.dir)
	return nil
}

// CompareStep runs the diff engine on the loaded trees.
type CompareStep struct {
	resolver Resolver
	logger   *slog.Logger
}

// CompareStepOption configures a CompareStep.
type CompareStepOption func(*CompareStep)

// WithCompareLogger sets a custom logger for the compare step.
func WithCompareLogger(logger *slog.Logger) CompareStepOption {
	return func(s *CompareStep) {
		s.logger = logger
	}
}

// NewCompareStep creates a new comparison step.
func NewCompareStep(resolver Resolver, opts ...CompareStepOption) *CompareStep {
	s := &CompareStep{
		resolver: resolver,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Name returns the step name.
func (s *CompareStep) Name() string {
	return "compare"
}

// Do executes the compare step.
func (s *CompareStep) Do(ctx context.Context, c *model.Comparison) error {
	if c.Failed() {
		return fmt.Errorf("skipping %s: %w", c.Label, ErrNotCompared)
	}

	opts, err := s.resolver.EngineOptions(c.Label)
	if err != nil {
		return fmt.Errorf("invalid options for %s: %w", c.Label, err)
	}
	engine, err := diff.NewEngine(opts)
	if err != nil {
		return err
	}

	start := time.Now()
	report, err := engine.Compare(c.Base, c.Candidate)
	if err != nil {
		return err
	}
	c.Duration = time.Since(start)
	c.Report = report

	s.logger.Info("screen compared",
		"screen", c.Label,
		"score", report.DisplayScore(),
		"changes", len(report.Changes),
		"elapsed", c.Duration,
	)
	if s.logger.Enabled(ctx, slog.LevelDebug) {
		for _, rec := range report.Changes {
			s.logger.Debug("change found", "screen", c.Label, "change", uilog.Change(rec))
		}
	}
	return nil
}

// GateStep evaluates the CI gate of the screen.
type GateStep struct {
	resolver Resolver
	cache    *gate.Cache
	logger   *slog.Logger
}

// GateStepOption configures a GateStep.
type GateStepOption func(*GateStep)

// WithGateLogger sets a custom logger for the gate step.
func WithGateLogger(logger *slog.Logger) GateStepOption {
	return func(s *GateStep) {
		s.logger = logger
	}
}

// WithGateCache shares a compiled gate cache between pipelines.
func WithGateCache(cache *gate.Cache) GateStepOption {
	return func(s *GateStep) {
		s.cache = cache
	}
}

// NewGateStep creates a new gate evaluation step.
func NewGateStep(resolver Resolver, opts ...GateStepOption) *GateStep {
	s := &GateStep{
		resolver: resolver,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.cache == nil {
		s.cache = gate.NewCache()
	}
	return s
}

// Name returns the step name.
func (s *GateStep) Name() string {
	return "gate"
}

// Do executes the gate step. Screens without a gate are left untouched.
func (s *GateStep) Do(_ context.Context, c *model.Comparison) error {
	expr := s.resolver.GateExpression(c.Label)
	if expr == "" {
		return nil
	}
	if c.Report == nil {
		return ErrNotCompared
	}

	g, err := s.cache.Get(expr)
	if err != nil {
		return err
	}
	if err := g.Apply(c); err != nil {
		return err
	}

	if c.GateFailed() {
		s.logger.Warn("gate failed", "screen", c.Label, "expression", expr)
	}
	return nil
}

// PersistStep stores the comparison in the history database.
type PersistStep struct {
	store  Store
	logger *slog.Logger
}

// PersistStepOption configures a PersistStep.
type PersistStepOption func(*PersistStep)

// WithPersistLogger sets a custom logger for the persist step.
func WithPersistLogger(logger *slog.Logger) PersistStepOption {
	return func(s *PersistStep) {
		s.logger = logger
	}
}

// NewPersistStep creates a new persistence step.
func NewPersistStep(store Store, opts ...PersistStepOption) *PersistStep {
	s := &PersistStep{
		store:  store,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Name returns the step name.
func (s *PersistStep) Name() string {
	return "persist"
}

// Do executes the persist step.
func (s *PersistStep) Do(ctx context.Context, c *model.Comparison) error {
	if c.Report == nil {
		return ErrNotCompared
	}
	if err := s.store.SaveComparison(ctx, c); err != nil {
		return err
	}
	s.logger.Debug("comparison saved", "screen", c.Label, "id", c.ID)
	return nil
}

// DefaultPipelineConfig holds settings for the default pipeline.
type DefaultPipelineConfig struct {
	// Store enables the persist step when non-nil.
	Store Store

	// ArchiveDir enables the archive step when non-empty.
	ArchiveDir string

	// GateCache is shared by all pipelines of a batch.
	GateCache *gate.Cache

	// Logger is passed to every step.
	Logger *slog.Logger
}

// DefaultPipelineOption configures the default pipeline.
type DefaultPipelineOption func(*DefaultPipelineConfig)

// WithStore enables storing comparisons in the history database.
func WithStore(store Store) DefaultPipelineOption {
	return func(c *DefaultPipelineConfig) {
		c.Store = store
	}
}

// WithArchive enables archiving both captures of every comparison under dir.
func WithArchive(dir string) DefaultPipelineOption {
	return func(c *DefaultPipelineConfig) {
		c.ArchiveDir = dir
	}
}

// WithSharedGateCache shares compiled gates between pipelines.
func WithSharedGateCache(cache *gate.Cache) DefaultPipelineOption {
	return func(c *DefaultPipelineConfig) {
		c.GateCache = cache
	}
}

// WithStepLogger sets the logger used by every step.
func WithStepLogger(logger *slog.Logger) DefaultPipelineOption {
	return func(c *DefaultPipelineConfig) {
		c.Logger = logger
	}
}

// DefaultPipeline creates the standard pipeline: load, compare and gate,
// followed by archive and persist when enabled.
func DefaultPipeline(resolver Resolver, pipelineOpts []Option, configOpts ...DefaultPipelineOption) *Pipeline {
	cfg := &DefaultPipelineConfig{}
	for _, opt := range configOpts {
		opt(cfg)
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.GateCache == nil {
		cfg.GateCache = gate.NewCache()
	}

	p := New(pipelineOpts...)
	p.AddSteps(
		NewLoadStep(WithLoadLogger(cfg.Logger)),
		NewCompareStep(resolver, WithCompareLogger(cfg.Logger)),
		NewGateStep(resolver, WithGateCache(cfg.GateCache), WithGateLogger(cfg.Logger)),
	)
	if cfg.ArchiveDir != "" {
		p.AddStep(NewArchiveStep(cfg.ArchiveDir, WithArchiveLogger(cfg.Logger)))
	}
	if cfg.Store != nil {
		p.AddStep(NewPersistStep(cfg.Store, WithPersistLogger(cfg.Logger)))
	}
	return p
}
