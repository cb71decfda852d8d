package log

import (
	"bytes"
	"strings"
	"testing"

	"github.com/nao1215/uidiff/internal/model"
)

func passwordField(text string) *model.Node {
	return &model.Node{
		Tag:        "android.widget.EditText",
		Text:       text,
		Attributes: model.Attributes{"password": "true", "resource-id": "com.example:id/password"},
		Bounds:     &model.Rect{Right: 100, Bottom: 40},
	}
}

func TestNodeText(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		node *model.Node
		want string
	}{
		{name: "nil node", node: nil, want: ""},
		{name: "plain text", node: &model.Node{Tag: "android.widget.TextView", Text: "Welcome"}, want: "Welcome"},
		{name: "password field", node: passwordField("hunter2"), want: MaskValue},
		{name: "empty password field", node: passwordField(""), want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := NodeText(tt.node); got != tt.want {
				t.Errorf("NodeText() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestNode(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := NewSecureLogger(&buf, true)
	logger.Info("captured", "field", Node(passwordField("hunter2")), "empty", Node(nil))

	output := buf.String()
	if strings.Contains(output, "hunter2") {
		t.Errorf("expected password text to be masked: %s", output)
	}
	for _, want := range []string{"field.class=android.widget.EditText", "field.resource_id=com.example:id/password", "field.size=1", "empty=<nil>"} {
		if !strings.Contains(output, want) {
			t.Errorf("expected %q in output: %s", want, output)
		}
	}
}

func TestChange(t *testing.T) {
	t.Parallel()

	path := model.Path{{Tag: "hierarchy"}, {Tag: "android.widget.EditText"}}

	t.Run("plain text change", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		NewSecureLogger(&buf, true).Info("change found", "change", Change(model.ChangeRecord{
			Type: model.ChangeText,
			Path: path,
			From: model.Present("Welcome"),
			To:   model.Present("Hello"),
		}))

		output := buf.String()
		for _, want := range []string{"change.type=text_change", "change.from=Welcome", "change.to=Hello"} {
			if !strings.Contains(output, want) {
				t.Errorf("expected %q in output: %s", want, output)
			}
		}
	})

	t.Run("sensitive text change", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		NewSecureLogger(&buf, true).Info("change found", "change", Change(model.ChangeRecord{
			Type:      model.ChangeText,
			Path:      path,
			From:      model.Present("hunter2"),
			To:        model.Present("hunter3"),
			Sensitive: true,
		}))

		output := buf.String()
		if strings.Contains(output, "hunter") {
			t.Errorf("expected sensitive values to be masked: %s", output)
		}
	})

	t.Run("attribute and bounds changes", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		logger := NewSecureLogger(&buf, true)
		logger.Info("change found", "change", Change(model.ChangeRecord{
			Type:      model.ChangeAttribute,
			Path:      path,
			Attribute: "enabled",
			From:      model.Present("true"),
			To:        model.Absent(),
		}))
		logger.Info("change found", "change", Change(model.ChangeRecord{
			Type:       model.ChangeBounds,
			Path:       path,
			FromBounds: &model.Rect{Right: 10, Bottom: 10},
			ToBounds:   &model.Rect{Left: 5, Right: 15, Bottom: 10},
		}))

		output := buf.String()
		for _, want := range []string{"change.attribute=enabled", "change.to=<absent>", "change.from=[0,0][10,10]", "change.to=[5,0][15,10]"} {
			if !strings.Contains(output, want) {
				t.Errorf("expected %q in output: %s", want, output)
			}
		}
	})
}
