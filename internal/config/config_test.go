package config_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"golden/internal/config"
	"golden/pkg/vm"
)

func writeConfig(t *testing.T, dir, content string) string {
	t.Helper()

	path := filepath.Join(dir, config.FileName)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}
	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, t.TempDir(), `
[runtime]
renderer = "none"
fps = 30
max_steps = 1000

[limits]
value_stack = 16

[diagnostics]
enabled = false
snapshot = "state.cbor"
`)

	c, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if c.Runtime.Renderer != "none" || c.Runtime.FPS != 30 || c.Runtime.MaxSteps != 1000 {
		t.Errorf("unexpected runtime %+v", c.Runtime)
	}
	if c.Limits.ValueStack != 16 || c.Limits.ObjectStack != vm.DefaultObjectStack {
		t.Errorf("unexpected limits %+v", c.Limits)
	}
	if c.Diagnostics.Enabled || c.Diagnostics.Snapshot != "state.cbor" {
		t.Errorf("unexpected diagnostics %+v", c.Diagnostics)
	}
	if c.Path != path {
		t.Errorf("expected path %s, got %s", path, c.Path)
	}
}

func TestLoadRejects(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"unknown renderer", "[runtime]\nrenderer = \"vulkan\"\n"},
		{"unknown key", "[runtime]\nspeed = 2\n"},
		{"negative limit", "[limits]\nobject_stack = -1\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeConfig(t, t.TempDir(), tt.content)
			if _, err := config.Load(path); !errors.Is(err, config.ErrInvalidConfig) {
				t.Errorf("expected ErrInvalidConfig, got %v", err)
			}
		})
	}
}

func TestFindAndLoad(t *testing.T) {
	root := t.TempDir()
	nested := filepath.Join(root, "games", "demo")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatalf("MkdirAll failed: %v", err)
	}

	c, err := config.FindAndLoad(nested)
	if err != nil {
		t.Fatalf("FindAndLoad failed: %v", err)
	}
	if c.Path != "" || !c.Diagnostics.Enabled {
		t.Errorf("expected defaults, got %+v", c)
	}

	path := writeConfig(t, root, "[runtime]\nfps = 12\n")
	c, err = config.FindAndLoad(nested)
	if err != nil {
		t.Fatalf("FindAndLoad failed: %v", err)
	}
	if c.Path != path || c.Runtime.FPS != 12 {
		t.Errorf("expected %s with fps 12, got %+v", path, c)
	}
}
