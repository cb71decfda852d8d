package main

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestVersionInfo(t *testing.T) {
	t.Parallel()

	// Each value falls back to a placeholder, so none may be empty.
	for name, v := range map[string]string{
		"version": getVersion(),
		"commit":  getCommit(),
		"date":    getDate(),
	} {
		if v == "" {
			t.Errorf("%s returned empty string", name)
		}
	}
}

func TestNewVersionCmd(t *testing.T) {
	t.Parallel()

	t.Run("command has correct use", func(t *testing.T) {
		t.Parallel()
		if cmd := NewVersionCmd(); cmd.Use != "version" {
			t.Errorf("expected Use to be 'version', got %q", cmd.Use)
		}
	})

	t.Run("command outputs version info", func(t *testing.T) {
		t.Parallel()

		out, _, err := execute(t, "version")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		for _, want := range []string{"uidiff version", "commit:", "built:", "go:"} {
			if !strings.Contains(out, want) {
				t.Errorf("expected output to contain %q, got %q", want, out)
			}
		}
	})

	t.Run("json output", func(t *testing.T) {
		t.Parallel()

		out, _, err := execute(t, "version", "--json")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		var info versionInfo
		if err := json.Unmarshal([]byte(out), &info); err != nil {
			t.Fatalf("invalid JSON: %v", err)
		}
		if info.Version == "" || info.GoVersion == "" {
			t.Errorf("unexpected version info %+v", info)
		}
	})
}
