package diff

import (
	"errors"

	"github.com/nao1215/uidiff/internal/match"
	"github.com/nao1215/uidiff/internal/model"
	"github.com/nao1215/uidiff/internal/score"
)

// Engine compares trees with a fixed, validated configuration.
// An Engine is safe for concurrent use.
type Engine struct {
	opts      Options
	matcher   *match.Matcher
	extractor *Extractor
	scorer    *score.Scorer
}

// NewEngine validates opts and creates an engine.
func NewEngine(opts Options) (*Engine, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	return &Engine{
		opts:      opts,
		matcher:   match.New(opts.matchOptions()),
		extractor: NewExtractor(opts.Classifier(), opts.BoundsTolerance),
		scorer:    score.New(opts.Weights),
	}, nil
}

// Options returns the configuration of the engine.
func (e *Engine) Options() Options {
	return e.opts
}

// Compare compares base with candidate. A nil tree is an empty tree.
// Malformed input yields a *model.MalformedTreeError and no report.
func (e *Engine) Compare(base, candidate *model.Node) (*model.DiffReport, error) {
	if err := validate("base", base); err != nil {
		return nil, err
	}
	if err := validate("candidate", candidate); err != nil {
		return nil, err
	}

	bt, ct := model.NewTree(base), model.NewTree(candidate)
	matching := e.matcher.Match(bt, ct)
	changes := e.extractor.Extract(bt, ct, matching)
	res := e.scorer.Score(changes, bt.Len(), ct.Len())
	return Assemble(res, changes, bt.Len(), ct.Len()), nil
}

// Compare compares base with candidate using opts.
func Compare(base, candidate *model.Node, opts Options) (*model.DiffReport, error) {
	e, err := NewEngine(opts)
	if err != nil {
		return nil, err
	}
	return e.Compare(base, candidate)
}

func validate(name string, root *model.Node) error {
	err := model.ValidateTree(root)
	var mte *model.MalformedTreeError
	if errors.As(err, &mte) {
		mte.Tree = name
	}
	return err
}
