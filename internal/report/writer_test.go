package report

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/nao1215/uidiff/internal/diff"
	"github.com/nao1215/uidiff/internal/model"
)

func path(steps ...string) model.Path {
	p := make(model.Path, 0, len(steps))
	for _, s := range steps {
		p = append(p, model.PathStep{Tag: s})
	}
	return p
}

// createTestComparison creates a comparison with one change of each type.
func createTestComparison() *model.Comparison {
	c := model.NewComparison("login", "base/login.xml", "candidate/login.xml")
	c.ComparedAt = time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	from := model.Rect{Left: 0, Top: 0, Right: 100, Bottom: 50}
	to := model.Rect{Left: 0, Top: 10, Right: 100, Bottom: 60}
	c.Report = &model.DiffReport{
		Score:          0.123456,
		RawScore:       4.5,
		Normalizer:     4,
		BaseNodes:      4,
		CandidateNodes: 4,
		Changes: []model.ChangeRecord{
			{
				Type:  model.ChangeText,
				Path:  path("android.widget.FrameLayout", "android.widget.TextView"),
				Class: "android.widget.TextView",
				From:  model.Present("Welcome"),
				To:    model.Present("Hello"),
			},
			{
				Type:      model.ChangeAttribute,
				Path:      path("android.widget.FrameLayout", "android.widget.Button"),
				Class:     "android.widget.Button",
				Attribute: "enabled",
				From:      model.Present("true"),
				To:        model.Present("false"),
			},
			{
				Type:       model.ChangeBounds,
				Path:       path("android.widget.FrameLayout", "android.widget.ImageView"),
				Class:      "android.widget.ImageView",
				FromBounds: &from,
				ToBounds:   &to,
				Delta:      &[4]int{0, 10, 0, 10},
			},
			{
				Type:  model.ChangeAdded,
				Path:  path("android.widget.FrameLayout", "android.widget.LinearLayout"),
				Class: "android.widget.LinearLayout",
				Node: &model.NodeSummary{
					Class:  "android.widget.LinearLayout",
					Bounds: &model.Rect{Left: 0, Top: 100, Right: 100, Bottom: 200},
					Size:   2,
					Children: []model.NodeSummary{
						{Class: "android.widget.CheckBox", ResourceID: "remember", Text: "Remember me", Size: 1},
					},
				},
			},
		},
	}
	return c
}

func createIdenticalComparison() *model.Comparison {
	c := model.NewComparison("home", "base/home.xml", "candidate/home.xml")
	c.Report = &model.DiffReport{BaseNodes: 3, CandidateNodes: 3, Normalizer: 3}
	return c
}

// TestSimpleWriter tests the human-readable report writer.
func TestSimpleWriter(t *testing.T) {
	t.Parallel()

	t.Run("writes report header", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewSimpleWriter(&buf)

		if _, err := w.Write(createTestComparison()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		output := buf.String()
		for _, want := range []string{"UIDIFF REPORT", "login", "base/login.xml", "candidate/login.xml", "0.1235", "4 -> 4"} {
			if !strings.Contains(output, want) {
				t.Errorf("expected output to contain %q", want)
			}
		}
	})

	t.Run("writes summary and changes", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewSimpleWriter(&buf)

		if _, err := w.Write(createTestComparison()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		output := buf.String()
		for _, want := range []string{
			"SUMMARY",
			"Text Changes:",
			"CHANGES",
			`"Welcome" -> "Hello"`,
			`enabled: "true" -> "false"`,
			"[0,0][100,50] -> [0,10][100,60] (delta 0,10,0,10)",
			"[!!] added /android.widget.FrameLayout[0]/android.widget.LinearLayout[0]",
			"LinearLayout (2 nodes)",
		} {
			if !strings.Contains(output, want) {
				t.Errorf("expected output to contain %q\n%s", want, output)
			}
		}
		if strings.Contains(output, "Removed Elements:") {
			t.Error("expected empty change types to be hidden")
		}
	})

	t.Run("show empty lists zero counts", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewSimpleWriter(&buf, WithShowEmpty(true))

		if _, err := w.Write(createTestComparison()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(buf.String(), "Removed Elements:") {
			t.Error("expected empty change types to be listed")
		}
	})

	t.Run("verbose writes node outline", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewSimpleWriter(&buf, WithVerbose(true))

		if _, err := w.Write(createTestComparison()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(buf.String(), `CheckBox #remember "Remember me"`) {
			t.Errorf("expected node outline, got:\n%s", buf.String())
		}
	})

	t.Run("identical comparison", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewSimpleWriter(&buf)

		if _, err := w.Write(createIdenticalComparison()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		output := buf.String()
		if !strings.Contains(output, noDifferences) {
			t.Error("expected no differences message")
		}
		if strings.Contains(output, "SUMMARY") {
			t.Error("expected summary to be omitted")
		}
	})

	t.Run("gate status", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewSimpleWriter(&buf)
		c := createTestComparison()
		c.Gate = &model.GateResult{Expression: "score > 0.1", Failed: true}

		if _, err := w.Write(c); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(buf.String(), "FAILED (score > 0.1)") {
			t.Error("expected failed gate status")
		}
	})

	t.Run("returns bytes written", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewSimpleWriter(&buf)

		n, err := w.Write(createTestComparison())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if n != buf.Len() {
			t.Errorf("expected %d bytes, got %d", buf.Len(), n)
		}
	})

	t.Run("batch table", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewSimpleWriter(&buf)
		failed := createTestComparison()
		failed.Gate = &model.GateResult{Expression: "added > 0", Failed: true}

		if _, err := w.WriteBatch([]*model.Comparison{failed, createIdenticalComparison()}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		output := buf.String()
		for _, want := range []string{"SCREEN", "login", "home", "FAIL", "2 screen(s) compared, 1 gate failure(s)"} {
			if !strings.Contains(output, want) {
				t.Errorf("expected output to contain %q", want)
			}
		}
	})
}

// TestJSONWriter tests the wire format writer.
func TestJSONWriter(t *testing.T) {
	t.Parallel()

	t.Run("writes wire format", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewJSONWriter(&buf)

		if _, err := w.Write(createTestComparison()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		var decoded map[string]any
		if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
			t.Fatalf("invalid JSON: %v", err)
		}
		if decoded["score"] != 0.1235 {
			t.Errorf("expected rounded score 0.1235, got %v", decoded["score"])
		}
		changes, ok := decoded["changes"].([]any)
		if !ok || len(changes) != 4 {
			t.Fatalf("expected 4 changes, got %v", decoded["changes"])
		}
		first, ok := changes[0].(map[string]any)
		if !ok {
			t.Fatalf("expected change object, got %T", changes[0])
		}
		if first["type"] != "text_change" || first["from"] != "Welcome" || first["to"] != "Hello" {
			t.Errorf("unexpected first change: %v", first)
		}
	})

	t.Run("compact output is a single line", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewJSONWriter(&buf)

		if _, err := w.Write(createTestComparison()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		output := strings.TrimSuffix(buf.String(), "\n")
		if strings.Contains(output, "\n") {
			t.Error("expected compact output")
		}
	})

	t.Run("pretty print", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewJSONWriter(&buf, WithPrettyPrint())

		if _, err := w.Write(createTestComparison()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(buf.String(), "\n  \"score\"") {
			t.Errorf("expected indented output, got:\n%s", buf.String())
		}
	})

	t.Run("identical report has empty changes array", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewJSONWriter(&buf)

		if _, err := w.Write(createIdenticalComparison()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(buf.String(), `"changes":[]`) {
			t.Errorf("expected empty changes array, got %s", buf.String())
		}
	})

	t.Run("comparison without report", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewJSONWriter(&buf)

		_, err := w.Write(model.NewComparison("x", "a", "b"))
		if !errors.Is(err, ErrNoReport) {
			t.Errorf("expected ErrNoReport, got %v", err)
		}
	})

	t.Run("refuses report outside the wire format", func(t *testing.T) {
		t.Parallel()

		broken := createTestComparison()
		broken.Report.Score = 1.5
		broken.Report.Changes[3].Node = nil

		writers := map[string]Writer{}
		var plain, full, batch bytes.Buffer
		writers["json"] = NewJSONWriter(&plain)
		writers["full json"] = NewFullJSONWriter(&full, "1.2.3")
		for name, w := range writers {
			if _, err := w.Write(broken); !errors.Is(err, ErrInvalidReport) {
				t.Errorf("%s: expected ErrInvalidReport, got %v", name, err)
			}
		}
		if _, err := NewJSONWriter(&batch).WriteBatch([]*model.Comparison{createIdenticalComparison(), broken}); !errors.Is(err, ErrInvalidReport) {
			t.Errorf("batch: expected ErrInvalidReport, got %v", err)
		}
		if plain.Len()+full.Len()+batch.Len() != 0 {
			t.Error("expected nothing to be written")
		}
	})

	t.Run("batch entries", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewJSONWriter(&buf)
		c := createTestComparison()
		c.Gate = &model.GateResult{Expression: "score < 0.5"}

		if _, err := w.WriteBatch([]*model.Comparison{c, createIdenticalComparison()}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		var entries []BatchEntry
		if err := json.Unmarshal(buf.Bytes(), &entries); err != nil {
			t.Fatalf("invalid JSON: %v", err)
		}
		if len(entries) != 2 {
			t.Fatalf("expected 2 entries, got %d", len(entries))
		}
		if entries[0].Label != "login" || entries[0].Gate == nil || entries[0].Gate.Failed {
			t.Errorf("unexpected first entry: %+v", entries[0])
		}
		if entries[1].Report == nil || !entries[1].Report.Identical() {
			t.Errorf("expected identical second report")
		}
	})
}

// TestFullJSONWriter tests the metadata wrapper writer.
func TestFullJSONWriter(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	w := NewFullJSONWriter(&buf, "1.2.3")
	c := createTestComparison()
	c.BaseFingerprint = "abc"

	if _, err := w.Write(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var decoded JSONReport
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if decoded.Version != "1.2.3" {
		t.Errorf("expected version 1.2.3, got %s", decoded.Version)
	}
	if decoded.Summary.Total() != 4 || decoded.Summary.Added != 1 {
		t.Errorf("unexpected summary: %+v", decoded.Summary)
	}
	if decoded.Comparison == nil || decoded.Comparison.BaseFingerprint != "abc" {
		t.Fatalf("expected comparison metadata, got %+v", decoded.Comparison)
	}
	if decoded.Comparison.Report == nil || len(decoded.Comparison.Report.Changes) != 4 {
		t.Error("expected embedded report")
	}
}

// TestMarkdownWriter tests the Markdown report writer.
func TestMarkdownWriter(t *testing.T) {
	t.Parallel()

	t.Run("writes sections", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewMarkdownWriter(&buf)

		if _, err := w.Write(createTestComparison()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		output := buf.String()
		for _, want := range []string{
			"# UI Diff Report",
			"## Change Summary",
			"## Changes",
			"### 🟠 High",
			"### 🟡 Medium",
			"### 🔵 Low",
			"### ⚪ Info",
			"```mermaid",
			"pie",
			"[!WARNING]",
			"<details>",
			"uidiff",
		} {
			if !strings.Contains(output, want) {
				t.Errorf("expected output to contain %q", want)
			}
		}
	})

	t.Run("identical comparison", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewMarkdownWriter(&buf)

		if _, err := w.Write(createIdenticalComparison()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		output := buf.String()
		if !strings.Contains(output, "No significant differences found") {
			t.Error("expected no differences message")
		}
		if strings.Contains(output, "```mermaid") {
			t.Error("expected no pie chart for identical report")
		}
	})

	t.Run("batch with gate failure", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewMarkdownWriter(&buf)
		c := createTestComparison()
		c.Gate = &model.GateResult{Expression: "added > 0", Failed: true}

		if _, err := w.WriteBatch([]*model.Comparison{c, createIdenticalComparison()}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		output := buf.String()
		for _, want := range []string{"# UI Diff Batch Report", "`login`", "`home`", "[!CAUTION]", "1 of 2 screen(s) failed the gate."} {
			if !strings.Contains(output, want) {
				t.Errorf("expected output to contain %q", want)
			}
		}
	})
}

// TestParseFormat tests report format names.
func TestParseFormat(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want Format
	}{
		{"", FormatText},
		{"text", FormatText},
		{"JSON", FormatJSON},
		{" markdown ", FormatMarkdown},
		{"md", FormatMarkdown},
	}
	for _, tt := range tests {
		got, err := ParseFormat(tt.in)
		if err != nil {
			t.Errorf("ParseFormat(%q) returned error: %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseFormat(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}

	if _, err := ParseFormat("html"); !errors.Is(err, ErrUnknownFormat) {
		t.Errorf("expected ErrUnknownFormat, got %v", err)
	}
}

// TestNew tests writer selection by format.
func TestNew(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	tests := []struct {
		name   string
		format Format
		opts   Options
		check  func(Writer) bool
	}{
		{"text", FormatText, Options{}, func(w Writer) bool { _, ok := w.(*SimpleWriter); return ok }},
		{"unknown falls back to text", Format("html"), Options{}, func(w Writer) bool { _, ok := w.(*SimpleWriter); return ok }},
		{"json", FormatJSON, Options{}, func(w Writer) bool { _, ok := w.(*JSONWriter); return ok }},
		{"full json", FormatJSON, Options{Full: true}, func(w Writer) bool { _, ok := w.(*FullJSONWriter); return ok }},
		{"markdown", FormatMarkdown, Options{}, func(w Writer) bool { _, ok := w.(*MarkdownWriter); return ok }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if w := New(tt.format, &buf, tt.opts); !tt.check(w) {
				t.Errorf("unexpected writer %T", w)
			}
		})
	}

	t.Run("verbose text", func(t *testing.T) {
		t.Parallel()
		w, ok := New(FormatText, &buf, Options{Verbose: true}).(*SimpleWriter)
		if !ok || !w.verbose {
			t.Error("expected verbose simple writer")
		}
	})
}

// TestValidateJSON checks writer output against the wire format schema.
func TestValidateJSON(t *testing.T) {
	t.Parallel()

	t.Run("writer output is valid", func(t *testing.T) {
		t.Parallel()

		for _, c := range []*model.Comparison{createTestComparison(), createIdenticalComparison()} {
			var buf bytes.Buffer
			if _, err := NewJSONWriter(&buf).Write(c); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if err := ValidateJSON(buf.Bytes()); err != nil {
				t.Errorf("expected valid report for %s: %v", c.Label, err)
			}
		}
	})

	t.Run("engine output is valid", func(t *testing.T) {
		t.Parallel()

		base := &model.Node{
			Tag:    "android.widget.FrameLayout",
			Bounds: &model.Rect{Right: 100, Bottom: 100},
			Children: []*model.Node{
				{Tag: "android.widget.TextView", Text: "Welcome", Bounds: &model.Rect{Right: 100, Bottom: 20}},
			},
		}
		cand := base.Clone()
		cand.Children[0].Text = "Hello"
		cand.Children = append(cand.Children, &model.Node{
			Tag:    "android.widget.Button",
			Text:   "OK",
			Bounds: &model.Rect{Top: 50, Right: 100, Bottom: 80},
		})

		r, err := diff.Compare(base, cand, diff.DefaultOptions())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		c := model.NewComparison("engine", "a", "b")
		c.Report = r

		var buf bytes.Buffer
		if _, err := NewJSONWriter(&buf).Write(c); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if err := ValidateJSON(buf.Bytes()); err != nil {
			t.Errorf("expected valid report: %v", err)
		}
	})

	t.Run("rejects malformed reports", func(t *testing.T) {
		t.Parallel()

		tests := []struct {
			name string
			data string
		}{
			{name: "not JSON", data: "{"},
			{name: "missing changes", data: `{"score":0}`},
			{name: "score out of range", data: `{"score":1.5,"changes":[]}`},
			{name: "unknown change type", data: `{"score":0,"changes":[{"type":"moved","path":"/a[0]","class":"a"}]}`},
			{name: "added without node", data: `{"score":0,"changes":[{"type":"added","path":"/a[0]","class":"a"}]}`},
			{name: "attribute without name", data: `{"score":0,"changes":[{"type":"attribute_change","path":"/a[0]","class":"a","from":"x","to":"y"}]}`},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				t.Parallel()
				if err := ValidateJSON([]byte(tt.data)); err == nil {
					t.Error("expected validation error")
				}
			})
		}
	})

	t.Run("schema is exposed", func(t *testing.T) {
		t.Parallel()

		if !json.Valid(Schema()) {
			t.Error("expected schema to be valid JSON")
		}
	})
}
