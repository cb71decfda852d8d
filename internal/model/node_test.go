package model

import (
	"encoding/json"
	"testing"
)

func rect(l, t, r, b int) *Rect { return &Rect{Left: l, Top: t, Right: r, Bottom: b} }

// sampleTree builds hierarchy > FrameLayout > (TextView, TextView, Button).
func sampleTree(t *testing.T) *Node {
	t.Helper()
	return &Node{
		Tag: "hierarchy",
		Children: []*Node{{
			Tag:    "android.widget.FrameLayout",
			Bounds: rect(0, 0, 1080, 1920),
			Children: []*Node{
				{Tag: "android.widget.TextView", Text: "Title", Bounds: rect(0, 0, 1080, 100),
					Attributes: Attributes{"resource-id": "app:id/title"}},
				{Tag: "android.widget.TextView", Text: "Body", Bounds: rect(0, 100, 1080, 300)},
				{Tag: "android.widget.Button", Text: "OK", Bounds: rect(0, 300, 200, 400),
					Attributes: Attributes{"content-desc": "confirm"}},
			},
		}},
	}
}

func TestRect(t *testing.T) {
	t.Parallel()

	r := Rect{Left: 10, Top: 20, Right: 110, Bottom: 60}

	t.Run("size and center", func(t *testing.T) {
		t.Parallel()
		if r.Width() != 100 || r.Height() != 40 {
			t.Errorf("expected 100x40, got %dx%d", r.Width(), r.Height())
		}
		x, y := r.Center()
		if x != 60 || y != 40 {
			t.Errorf("expected center (60,40), got (%v,%v)", x, y)
		}
	})

	t.Run("validity", func(t *testing.T) {
		t.Parallel()
		if !r.Valid() {
			t.Error("expected rect to be valid")
		}
		if (Rect{Left: 5, Right: 4}).Valid() {
			t.Error("expected inverted rect to be invalid")
		}
		if !(Rect{}).Valid() {
			t.Error("expected zero-area rect to be valid")
		}
	})

	t.Run("delta", func(t *testing.T) {
		t.Parallel()
		d := r.Delta(Rect{Left: 12, Top: 20, Right: 110, Bottom: 57})
		if d != [4]int{2, 0, 0, -3} {
			t.Errorf("unexpected delta %v", d)
		}
	})

	t.Run("string uses uiautomator notation", func(t *testing.T) {
		t.Parallel()
		if got := r.String(); got != "[10,20][110,60]" {
			t.Errorf("got %q", got)
		}
	})

	t.Run("json array", func(t *testing.T) {
		t.Parallel()
		data, err := json.Marshal(r)
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		if string(data) != "[10,20,110,60]" {
			t.Errorf("got %s", data)
		}
		var back Rect
		if err := json.Unmarshal(data, &back); err != nil {
			t.Fatalf("unmarshal: %v", err)
		}
		if back != r {
			t.Errorf("expected %v, got %v", r, back)
		}
	})
}

func TestAttributes(t *testing.T) {
	t.Parallel()

	a := Attributes{"enabled": "true", "hint": "", "checked": "false"}

	if v, ok := a.Get("hint"); !ok || v != "" {
		t.Error("expected empty hint to be present")
	}
	if _, ok := a.Get("missing"); ok {
		t.Error("expected missing attribute to be absent")
	}
	if !a.Has("enabled") || a.Has("focused") {
		t.Error("unexpected Has result")
	}
	keys := a.Keys()
	want := []string{"checked", "enabled", "hint"}
	if len(keys) != len(want) {
		t.Fatalf("expected %v, got %v", want, keys)
	}
	for i := range want {
		if keys[i] != want[i] {
			t.Errorf("expected %v, got %v", want, keys)
		}
	}

	var nilAttrs Attributes
	if nilAttrs.Has("x") || len(nilAttrs.Keys()) != 0 {
		t.Error("expected nil attributes to behave as empty")
	}
}

func TestNodeHelpers(t *testing.T) {
	t.Parallel()

	root := sampleTree(t)

	t.Run("size", func(t *testing.T) {
		t.Parallel()
		if got := root.Size(); got != 5 {
			t.Errorf("expected 5, got %d", got)
		}
		var empty *Node
		if empty.Size() != 0 {
			t.Error("expected nil node size 0")
		}
	})

	t.Run("walk is pre-order", func(t *testing.T) {
		t.Parallel()
		var texts []string
		root.Walk(func(n *Node) bool {
			texts = append(texts, n.Tag)
			return true
		})
		if len(texts) != 5 || texts[0] != "hierarchy" || texts[2] != "android.widget.TextView" {
			t.Errorf("unexpected order %v", texts)
		}
	})

	t.Run("walk can skip children", func(t *testing.T) {
		t.Parallel()
		count := 0
		root.Walk(func(n *Node) bool {
			count++
			return n.Tag == "hierarchy"
		})
		if count != 2 {
			t.Errorf("expected 2 visited nodes, got %d", count)
		}
	})

	t.Run("identifier aliases", func(t *testing.T) {
		t.Parallel()
		frame := root.Children[0]
		if got := frame.Children[0].ResourceID(); got != "app:id/title" {
			t.Errorf("got %q", got)
		}
		if got := frame.Children[2].ContentDesc(); got != "confirm" {
			t.Errorf("got %q", got)
		}
		alias := &Node{Attributes: Attributes{"resource_id": "a", "contentDescription": "b"}}
		if alias.ResourceID() != "a" || alias.ContentDesc() != "b" {
			t.Error("expected alias keys to be honored")
		}
	})

	t.Run("clone is deep", func(t *testing.T) {
		t.Parallel()
		c := root.Clone()
		c.Children[0].Children[0].Attributes["resource-id"] = "changed"
		c.Children[0].Bounds.Left = 99
		if root.Children[0].Children[0].ResourceID() != "app:id/title" {
			t.Error("clone shares attributes with original")
		}
		if root.Children[0].Bounds.Left != 0 {
			t.Error("clone shares bounds with original")
		}
	})
}

func TestNodePassword(t *testing.T) {
	t.Parallel()

	var nilNode *Node
	if nilNode.Password() {
		t.Error("expected nil node not to be a password field")
	}
	n := &Node{Tag: "android.widget.EditText", Attributes: Attributes{"password": "true"}}
	if !n.Password() {
		t.Error("expected password field")
	}
	n.Attributes["password"] = "false"
	if n.Password() {
		t.Error("expected plain field")
	}
}
