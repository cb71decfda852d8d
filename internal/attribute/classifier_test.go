package attribute

import "testing"

func TestDefaultClassifier(t *testing.T) {
	t.Parallel()

	c := NewClassifier(DefaultSet())

	testCases := []struct {
		name string
		want Class
	}{
		{"textSize", Cosmetic},
		{"textColor", Cosmetic},
		{"textColorHint", Cosmetic},
		{"background", Cosmetic},
		{"backgroundTint", Cosmetic},
		{"alpha", Cosmetic},
		{"fontFamily", Cosmetic},
		{"drawing-order", Cosmetic},
		{"text", Functional},
		{"resource-id", Functional},
		{"enabled", Functional},
		{"checked", Functional},
		{"content-desc", Functional},
		{"drawing-order-x", Functional},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if got := c.Classify(tc.name); got != tc.want {
				t.Errorf("expected %v, got %v", tc.want, got)
			}
		})
	}
}

func TestSet(t *testing.T) {
	t.Parallel()

	t.Run("enumeration is sorted", func(t *testing.T) {
		t.Parallel()
		s := NewSet([]string{"b", "a", ""}, []string{"z", "y", "z"})
		if n := s.Names(); len(n) != 2 || n[0] != "a" || n[1] != "b" {
			t.Errorf("unexpected names %v", n)
		}
		if p := s.Prefixes(); len(p) != 2 || p[0] != "y" || p[1] != "z" {
			t.Errorf("unexpected prefixes %v", p)
		}
	})

	t.Run("empty set", func(t *testing.T) {
		t.Parallel()
		s := NewSet(nil, nil)
		if !s.Empty() {
			t.Error("expected empty set")
		}
		if NewClassifier(s).IsCosmetic("textSize") {
			t.Error("expected nothing to be cosmetic")
		}
	})

	t.Run("with extends without mutating", func(t *testing.T) {
		t.Parallel()
		base := DefaultSet()
		ext := base.With([]string{"elevation"}, []string{"shadow"})
		if !ext.Contains("elevation") || !ext.Contains("shadowRadius") {
			t.Error("expected extension to be cosmetic")
		}
		if base.Contains("elevation") {
			t.Error("expected base set to be unchanged")
		}
	})
}

func TestIsPositional(t *testing.T) {
	t.Parallel()

	for _, name := range []string{"text", "bounds", "class", "index"} {
		if !IsPositional(name) {
			t.Errorf("expected %q to be positional", name)
		}
	}
	if IsPositional("resource-id") {
		t.Error("expected resource-id not to be positional")
	}
	if Cosmetic.String() != "cosmetic" || Functional.String() != "functional" {
		t.Error("unexpected class names")
	}
}
