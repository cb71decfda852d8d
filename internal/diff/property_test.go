package diff

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"slices"
	"strconv"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"github.com/nao1215/uidiff/internal/model"
)

var (
	propTags  = []string{"android.widget.TextView", "android.widget.Button", "android.widget.ImageView"}
	propTexts = []string{"", "OK", "Cancel", "Settings", "Sign in", "Profile"}
)

// maxEdits bounds the number of generated edits applied to a screen.
const maxEdits = 12

// buildScreen turns generated kinds into a screen with one row per kind.
// Texts repeat across rows and kinds divisible by four carry no resource
// id, so screens contain id-less twins.
func buildScreen(kinds []int) *model.Node {
	frame := &model.Node{Tag: "android.widget.FrameLayout", Bounds: &model.Rect{Right: 1080, Bottom: 4000}}
	for i, k := range kinds {
		attrs := model.Attributes{
			"enabled":  "true",
			"textSize": "14",
		}
		if k%4 != 0 {
			attrs["resource-id"] = fmt.Sprintf("app:id/row%d", i)
		}
		frame.Children = append(frame.Children, &model.Node{
			Tag:        propTags[k%len(propTags)],
			Text:       propTexts[k%len(propTexts)],
			Bounds:     &model.Rect{Top: 100 * i, Right: 1080, Bottom: 100*i + 80},
			Attributes: attrs,
		})
	}
	return &model.Node{Tag: "hierarchy", Children: []*model.Node{frame}}
}

// mutate applies generated edits to a copy of root. Each edit either changes
// text, removes a row, toggles an attribute, moves a row or appends a row.
func mutate(root *model.Node, edits []int) *model.Node {
	out := root.Clone()
	frame := out.Children[0]
	for j, e := range edits[:min(len(edits), maxEdits)] {
		op := e % 5
		if op == 4 {
			frame.Children = append(frame.Children, &model.Node{
				Tag:        propTags[(e/5)%len(propTags)],
				Text:       "new",
				Bounds:     &model.Rect{Top: 3000 + 50*j, Right: 1080, Bottom: 3040 + 50*j},
				Attributes: model.Attributes{"resource-id": fmt.Sprintf("app:id/new%d", j)},
			})
			continue
		}
		if len(frame.Children) == 0 {
			continue
		}
		i := (e / 5) % len(frame.Children)
		n := frame.Children[i]
		switch op {
		case 0:
			n.Text = "edit " + strconv.Itoa(e)
		case 1:
			frame.Children = slices.Delete(frame.Children, i, i+1)
		case 2:
			if n.Attributes.Has("checked") {
				delete(n.Attributes, "checked")
			} else {
				n.Attributes["checked"] = "true"
			}
		case 3:
			n.Bounds.Top += 40
			n.Bounds.Bottom += 40
		}
	}
	return out
}

func compareOrFail(t *testing.T, base, cand *model.Node) *model.DiffReport {
	t.Helper()
	report, err := Compare(base, cand, DefaultOptions())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return report
}

func TestPropertyIdentity(t *testing.T) {
	t.Parallel()

	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("a tree compared with itself has no changes", prop.ForAll(
		func(kinds []int) bool {
			tree := buildScreen(kinds)
			report := compareOrFail(t, tree, tree.Clone())
			return report.Score == 0 && report.Identical()
		},
		gen.SliceOf(gen.IntRange(0, 29)),
	))

	properties.TestingRun(t)
}

func TestPropertySymmetry(t *testing.T) {
	t.Parallel()

	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("swapping inputs swaps added and removed and keeps the score", prop.ForAll(
		func(kinds, edits []int) bool {
			base := buildScreen(kinds)
			cand := mutate(base, edits)
			forward := compareOrFail(t, base, cand)
			backward := compareOrFail(t, cand, base)

			fs, bs := forward.Summary(), backward.Summary()
			return math.Abs(forward.Score-backward.Score) < 1e-9 &&
				fs.Added == bs.Removed && fs.Removed == bs.Added &&
				fs.TextChanges == bs.TextChanges &&
				fs.AttributeChanges == bs.AttributeChanges &&
				fs.BoundsChanges == bs.BoundsChanges
		},
		gen.SliceOf(gen.IntRange(0, 29)),
		gen.SliceOf(gen.IntRange(0, 199)),
	))

	properties.Property("text changes swap from and to", prop.ForAll(
		func(kinds, edits []int) bool {
			base := buildScreen(kinds)
			cand := mutate(base, edits)
			forward := compareOrFail(t, base, cand)
			backward := compareOrFail(t, cand, base)

			from := map[string]bool{}
			for _, c := range forward.Changes {
				if c.Type == model.ChangeText {
					from[c.From.S+"->"+c.To.S] = true
				}
			}
			for _, c := range backward.Changes {
				if c.Type == model.ChangeText && !from[c.To.S+"->"+c.From.S] {
					return false
				}
			}
			return true
		},
		gen.SliceOf(gen.IntRange(0, 29)),
		gen.SliceOf(gen.IntRange(0, 199)),
	))

	properties.TestingRun(t)
}

func TestPropertyRangeAndClamping(t *testing.T) {
	t.Parallel()

	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("score stays within [0, 1]", prop.ForAll(
		func(kinds, edits []int) bool {
			base := buildScreen(kinds)
			report := compareOrFail(t, base, mutate(base, edits))
			return report.Score >= 0 && report.Score <= 1
		},
		gen.SliceOf(gen.IntRange(0, 29)),
		gen.SliceOf(gen.IntRange(0, 199)),
	))

	properties.Property("a tree compared with an empty tree scores one", prop.ForAll(
		func(kinds []int) bool {
			tree := buildScreen(kinds)
			removed := compareOrFail(t, tree, nil)
			added := compareOrFail(t, nil, tree)
			return removed.Score == 1 && added.Score == 1 &&
				len(removed.Changes) == 1 && len(added.Changes) == 1
		},
		gen.SliceOf(gen.IntRange(0, 29)),
	))

	properties.TestingRun(t)
}

func TestPropertyMonotonicity(t *testing.T) {
	t.Parallel()

	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	properties.Property("editing more rows never lowers the score", prop.ForAll(
		func(kinds []int, k int) bool {
			base := buildScreen(kinds)
			edited := func(count int) *model.Node {
				out := base.Clone()
				for i, row := range out.Children[0].Children {
					if i < count {
						row.Text = "edited"
					}
				}
				return out
			}
			fewer := compareOrFail(t, base, edited(k))
			more := compareOrFail(t, base, edited(k+1))
			return fewer.Score <= more.Score
		},
		gen.SliceOfN(10, gen.IntRange(0, 29)),
		gen.IntRange(0, 10),
	))

	properties.Property("inserting one leaf adds exactly one record and raises the score", prop.ForAll(
		func(kinds []int, at, kind int) bool {
			base := buildScreen(kinds)
			cand := base.Clone()
			rows := cand.Children[0].Children
			at %= len(rows) + 1
			// an id-less leaf on the left half of row "at", twin of a row when
			// tag and text coincide
			inserted := &model.Node{
				Tag:        propTags[kind%len(propTags)],
				Text:       propTexts[kind%len(propTexts)],
				Bounds:     &model.Rect{Top: 100 * at, Right: 540, Bottom: 100*at + 80},
				Attributes: model.Attributes{"enabled": "true", "textSize": "14"},
			}
			cand.Children[0].Children = slices.Insert(rows, at, inserted)

			without := compareOrFail(t, base, base.Clone())
			with := compareOrFail(t, base, cand)
			return len(with.Changes) == 1 &&
				with.Changes[0].Type == model.ChangeAdded &&
				with.Changes[0].Node.Size == 1 &&
				with.Score > without.Score
		},
		gen.SliceOf(gen.IntRange(0, 29)),
		gen.IntRange(0, 29),
		gen.IntRange(0, 29),
	))

	properties.TestingRun(t)
}

func TestPropertyNoiseInvariance(t *testing.T) {
	t.Parallel()

	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("cosmetic attribute changes are ignored", prop.ForAll(
		func(kinds []int, size int) bool {
			base := buildScreen(kinds)
			cand := base.Clone()
			for _, row := range cand.Children[0].Children {
				row.Attributes["textSize"] = strconv.Itoa(size)
				row.Attributes["textColor"] = "#" + strconv.Itoa(size)
				row.Attributes["background"] = "bg" + strconv.Itoa(size)
			}
			report := compareOrFail(t, base, cand)
			return report.Score == 0 && report.Identical()
		},
		gen.SliceOf(gen.IntRange(0, 29)),
		gen.IntRange(1, 64),
	))

	properties.Property("bounds jitter within tolerance is ignored", prop.ForAll(
		func(kinds []int, dx, dy int) bool {
			base := buildScreen(kinds)
			cand := base.Clone()
			for _, row := range cand.Children[0].Children {
				row.Bounds.Left += dx
				row.Bounds.Right += dx
				row.Bounds.Top += dy
				row.Bounds.Bottom += dy
			}
			report := compareOrFail(t, base, cand)
			return report.Score == 0 && report.Identical()
		},
		gen.SliceOf(gen.IntRange(0, 29)),
		gen.IntRange(-DefaultBoundsTolerance, DefaultBoundsTolerance),
		gen.IntRange(-DefaultBoundsTolerance, DefaultBoundsTolerance),
	))

	properties.TestingRun(t)
}

func TestPropertyDeterminism(t *testing.T) {
	t.Parallel()

	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	properties.Property("repeated comparisons produce identical output", prop.ForAll(
		func(kinds, edits []int) bool {
			base := buildScreen(kinds)
			cand := mutate(base, edits)
			first, err := json.Marshal(compareOrFail(t, base, cand))
			if err != nil {
				return false
			}
			second, err := json.Marshal(compareOrFail(t, base, cand))
			if err != nil {
				return false
			}
			return bytes.Equal(first, second)
		},
		gen.SliceOf(gen.IntRange(0, 29)),
		gen.SliceOf(gen.IntRange(0, 199)),
	))

	properties.TestingRun(t)
}
