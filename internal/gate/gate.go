// Package gate evaluates CI gate expressions against comparison results.
//
// A gate is a CEL expression that decides whether a comparison fails, for
// example `score > 0.2 || removed > 0` or
// `records.exists(r, r.type == "text_change" && r.class.endsWith("Button"))`.
// The following variables are available:
//
//	label              string  capture label of the compared screen
//	score              double  difference score rounded to four decimals
//	changes            int     number of change records
//	added, removed     int     number of added and removed regions
//	text_changes       int
//	attribute_changes  int
//	bounds_changes     int
//	records            list of maps with keys type, path, class, attribute
package gate

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/google/cel-go/cel"

	"github.com/nao1215/uidiff/internal/model"
)

var (
	// ErrEmptyExpression is returned when compiling a blank expression.
	ErrEmptyExpression = errors.New("empty gate expression")

	// ErrNotBoolean is returned when an expression does not yield a bool.
	ErrNotBoolean = errors.New("gate expression must evaluate to a bool")
)

func newEnv() (*cel.Env, error) {
	env, err := cel.NewEnv(
		cel.Variable("label", cel.StringType),
		cel.Variable("score", cel.DoubleType),
		cel.Variable("changes", cel.IntType),
		cel.Variable("added", cel.IntType),
		cel.Variable("removed", cel.IntType),
		cel.Variable("text_changes", cel.IntType),
		cel.Variable("attribute_changes", cel.IntType),
		cel.Variable("bounds_changes", cel.IntType),
		cel.Variable("records", cel.ListType(cel.MapType(cel.StringType, cel.StringType))),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create CEL env: %w", err)
	}
	return env, nil
}

// Gate is a compiled gate expression. It is safe for concurrent use.
type Gate struct {
	expr string
	prg  cel.Program
}

// Compile compiles a gate expression.
func Compile(expr string) (*Gate, error) {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return nil, ErrEmptyExpression
	}
	env, err := newEnv()
	if err != nil {
		return nil, err
	}
	ast, issues := env.Compile(expr)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("failed to compile gate %q: %w", expr, issues.Err())
	}
	if out := ast.OutputType(); !out.IsExactType(cel.BoolType) && !out.IsExactType(cel.DynType) {
		return nil, fmt.Errorf("%w: %q yields %s", ErrNotBoolean, expr, out)
	}
	prg, err := env.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("failed to build gate program %q: %w", expr, err)
	}
	return &Gate{expr: expr, prg: prg}, nil
}

// String returns the source expression.
func (g *Gate) String() string {
	return g.expr
}

// Evaluate reports whether the report of the screen named label fails the gate.
func (g *Gate) Evaluate(label string, report *model.DiffReport) (bool, error) {
	out, _, err := g.prg.Eval(Variables(label, report))
	if err != nil {
		return false, fmt.Errorf("failed to evaluate gate %q: %w", g.expr, err)
	}
	failed, ok := out.Value().(bool)
	if !ok {
		return false, fmt.Errorf("%w: %q", ErrNotBoolean, g.expr)
	}
	return failed, nil
}

// Apply evaluates the gate for a comparison and records the outcome on it.
func (g *Gate) Apply(c *model.Comparison) error {
	if c.Report == nil {
		return fmt.Errorf("comparison %s has no report", c.Label)
	}
	failed, err := g.Evaluate(c.Label, c.Report)
	if err != nil {
		return err
	}
	c.Gate = &model.GateResult{Expression: g.expr, Failed: failed}
	return nil
}

// Variables returns the CEL activation for a report.
func Variables(label string, report *model.DiffReport) map[string]any {
	s := report.Summary()
	records := make([]map[string]string, 0, len(report.Changes))
	for _, c := range report.Changes {
		records = append(records, map[string]string{
			"type":      string(c.Type),
			"path":      c.Path.String(),
			"class":     c.Class,
			"attribute": c.Attribute,
		})
	}
	return map[string]any{
		"label":             label,
		"score":             report.DisplayScore(),
		"changes":           int64(len(report.Changes)),
		"added":             int64(s.Added),
		"removed":           int64(s.Removed),
		"text_changes":      int64(s.TextChanges),
		"attribute_changes": int64(s.AttributeChanges),
		"bounds_changes":    int64(s.BoundsChanges),
		"records":           records,
	}
}

// Cache compiles each distinct expression once.
type Cache struct {
	mu    sync.RWMutex
	gates map[string]*Gate
}

// NewCache creates an empty cache.
func NewCache() *Cache {
	return &Cache{gates: make(map[string]*Gate)}
}

// Get returns the compiled gate for expr, compiling it on first use.
func (c *Cache) Get(expr string) (*Gate, error) {
	c.mu.RLock()
	g, hit := c.gates[expr]
	c.mu.RUnlock()
	if hit {
		return g, nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if g, hit = c.gates[expr]; hit {
		return g, nil
	}
	g, err := Compile(expr)
	if err != nil {
		return nil, err
	}
	c.gates[expr] = g
	return g, nil
}
