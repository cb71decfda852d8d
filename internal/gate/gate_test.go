package gate

import (
	"errors"
	"testing"

	"github.com/nao1215/uidiff/internal/model"
)

func sampleReport() *model.DiffReport {
	path := model.Path{{Tag: "hierarchy"}, {Tag: "android.widget.Button"}}
	return &model.DiffReport{
		Score: 0.41666,
		Changes: []model.ChangeRecord{
			{Type: model.ChangeText, Path: path, Class: "android.widget.Button",
				From: model.Present("OK"), To: model.Present("Done")},
			{Type: model.ChangeAttribute, Path: path, Class: "android.widget.Button",
				Attribute: "enabled", From: model.Present("true"), To: model.Present("false")},
			{Type: model.ChangeRemoved, Path: path, Class: "android.widget.ImageView",
				Node: &model.NodeSummary{Class: "android.widget.ImageView", Size: 1}},
		},
	}
}

func TestEvaluate(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name string
		expr string
		want bool
	}{
		{name: "score threshold exceeded", expr: "score > 0.4", want: true},
		{name: "score threshold not exceeded", expr: "score > 0.5", want: false},
		{name: "rounded score", expr: "score == 0.4167", want: true},
		{name: "counts", expr: "removed == 1 && added == 0 && changes == 3", want: true},
		{name: "per type counts", expr: "text_changes + attribute_changes + bounds_changes == 2", want: true},
		{name: "records", expr: `records.exists(r, r.type == "attribute_change" && r.attribute == "enabled")`, want: true},
		{name: "records by class", expr: `records.exists(r, r.class.endsWith("EditText"))`, want: false},
		{name: "label", expr: `label == "login" && removed > 0`, want: true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			g, err := Compile(tc.expr)
			if err != nil {
				t.Fatalf("unexpected compile error: %v", err)
			}
			got, err := g.Evaluate("login", sampleReport())
			if err != nil {
				t.Fatalf("unexpected evaluation error: %v", err)
			}
			if got != tc.want {
				t.Errorf("expected %v, got %v", tc.want, got)
			}
		})
	}
}

func TestCompileErrors(t *testing.T) {
	t.Parallel()

	if _, err := Compile("   "); !errors.Is(err, ErrEmptyExpression) {
		t.Errorf("expected ErrEmptyExpression, got %v", err)
	}
	if _, err := Compile("score +"); err == nil {
		t.Error("expected syntax error")
	}
	if _, err := Compile("unknown_var > 1"); err == nil {
		t.Error("expected undeclared reference error")
	}
	if _, err := Compile("score * 2.0"); !errors.Is(err, ErrNotBoolean) {
		t.Errorf("expected ErrNotBoolean, got %v", err)
	}
}

func TestApply(t *testing.T) {
	t.Parallel()

	g, err := Compile("removed > 0")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	c := model.NewComparison("login", "a.xml", "b.xml")
	if err := g.Apply(c); err == nil {
		t.Error("expected error for comparison without report")
	}

	c.Report = sampleReport()
	if err := g.Apply(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !c.GateFailed() || c.Gate.Expression != "removed > 0" {
		t.Errorf("unexpected gate result %+v", c.Gate)
	}
}

func TestCache(t *testing.T) {
	t.Parallel()

	cache := NewCache()
	a, err := cache.Get("score > 0.1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	b, err := cache.Get("score > 0.1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if a != b {
		t.Error("expected cached gate to be reused")
	}
	if _, err := cache.Get("score +"); err == nil {
		t.Error("expected compile error to be returned")
	}
}
