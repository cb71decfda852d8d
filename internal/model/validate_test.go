package model

import (
	"errors"
	"strings"
	"testing"
)

func TestValidateTree(t *testing.T) {
	t.Parallel()

	t.Run("valid tree", func(t *testing.T) {
		t.Parallel()
		if err := ValidateTree(sampleTree(t)); err != nil {
			t.Errorf("unexpected error: %v", err)
		}
	})

	t.Run("nil root is empty tree", func(t *testing.T) {
		t.Parallel()
		if err := ValidateTree(nil); err != nil {
			t.Errorf("unexpected error: %v", err)
		}
	})

	testCases := []struct {
		name     string
		mutate   func(root *Node)
		wantErr  error
		wantPath string
	}{
		{
			name:     "nil child",
			mutate:   func(root *Node) { root.Children[0].Children[1] = nil },
			wantErr:  ErrNilNode,
			wantPath: "/hierarchy[0]/android.widget.FrameLayout[0]/?[1]",
		},
		{
			name: "shared child",
			mutate: func(root *Node) {
				frame := root.Children[0]
				frame.Children = append(frame.Children, frame.Children[0])
			},
			wantErr: ErrCycle,
		},
		{
			name: "cycle",
			mutate: func(root *Node) {
				frame := root.Children[0]
				frame.Children[2].Children = []*Node{frame}
			},
			wantErr: ErrCycle,
		},
		{
			name:     "missing bounds",
			mutate:   func(root *Node) { root.Children[0].Children[1].Bounds = nil },
			wantErr:  ErrMissingBounds,
			wantPath: "/hierarchy[0]/android.widget.FrameLayout[0]/android.widget.TextView[1]",
		},
		{
			name:     "inverted bounds",
			mutate:   func(root *Node) { root.Children[0].Bounds = rect(10, 0, 5, 10) },
			wantErr:  ErrInvalidBounds,
			wantPath: "/hierarchy[0]/android.widget.FrameLayout[0]",
		},
		{
			name:    "missing tag",
			mutate:  func(root *Node) { root.Children[0].Children[0].Tag = "" },
			wantErr: ErrMissingTag,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			root := sampleTree(t)
			tc.mutate(root)
			err := ValidateTree(root)
			if !errors.Is(err, tc.wantErr) {
				t.Fatalf("expected %v, got %v", tc.wantErr, err)
			}
			var mte *MalformedTreeError
			if !errors.As(err, &mte) {
				t.Fatalf("expected *MalformedTreeError, got %T", err)
			}
			if tc.wantPath != "" && mte.Path.String() != tc.wantPath {
				t.Errorf("expected path %q, got %q", tc.wantPath, mte.Path.String())
			}
		})
	}
}

func TestErrorMessages(t *testing.T) {
	t.Parallel()

	mte := &MalformedTreeError{Tree: "base", Path: Path{{Tag: "hierarchy"}}, Err: ErrCycle}
	if !strings.Contains(mte.Error(), "malformed base tree at /hierarchy[0]") {
		t.Errorf("unexpected message %q", mte.Error())
	}
	ce := &ConfigurationError{Field: "score.weights.text_change", Err: ErrInvalidWeight}
	if !errors.Is(ce, ErrInvalidWeight) || !strings.Contains(ce.Error(), "score.weights.text_change") {
		t.Errorf("unexpected configuration error %q", ce.Error())
	}
}
