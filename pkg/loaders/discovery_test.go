package loaders

import (
	"os"
	"path/filepath"
	"testing"
)

func TestTitleCase(t *testing.T) {
	testCases := []struct {
		input    string
		expected string
	}{
		{"falling-ball", "Falling Ball"},
		{"mesh_ground", "Mesh Ground"},
		{"my-custom-scene", "My Custom Scene"},
		{"simple", "Simple"},
		{"UPPER-case", "Upper Case"},
		{"", ""},
	}

	for _, tc := range testCases {
		t.Run(tc.input, func(t *testing.T) {
			result := titleCase(tc.input)
			if result != tc.expected {
				t.Errorf("titleCase(%q) = %q, want %q", tc.input, result, tc.expected)
			}
		})
	}
}

func writeScenes(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0644); err != nil {
			t.Fatalf("Failed to create test file: %v", err)
		}
	}
	return dir
}

func TestParseSceneMetadata(t *testing.T) {
	dir := writeScenes(t, map[string]string{
		"complete.yaml": "name: Ball Drop\ndescription: Sphere onto a box\ngroup: Sweeps\n" +
			"volumes:\n  - {name: a, kind: sphere, position: [0, 0, 0]}\n  - {name: b, kind: sphere, position: [0, 0, 0]}\n" +
			"queries:\n  - {kind: overlap, a: a, b: b}\n",
		"no-metadata.yml": "volumes: []\n",
	})

	info, err := ParseSceneMetadata(filepath.Join(dir, "complete.yaml"))
	if err != nil {
		t.Fatalf("Failed to parse metadata: %v", err)
	}
	if info.ID != "complete" || info.Name != "Ball Drop" || info.Group != "Sweeps" {
		t.Errorf("Unexpected metadata: %+v", info)
	}
	if info.Description != "Sphere onto a box" {
		t.Errorf("Expected description 'Sphere onto a box', got '%s'", info.Description)
	}
	if info.Volumes != 2 || info.Queries != 1 {
		t.Errorf("Expected 2 volumes and 1 query, got %d and %d", info.Volumes, info.Queries)
	}

	info, err = ParseSceneMetadata(filepath.Join(dir, "no-metadata.yml"))
	if err != nil {
		t.Fatalf("Failed to parse metadata: %v", err)
	}
	if info.Name != "No Metadata" {
		t.Errorf("Expected name from the file name, got '%s'", info.Name)
	}
	if info.Group != DefaultGroup {
		t.Errorf("Expected group '%s', got '%s'", DefaultGroup, info.Group)
	}

	if _, err := ParseSceneMetadata(filepath.Join(dir, "missing.yaml")); err == nil {
		t.Error("Expected error for a missing file")
	}
}

func TestListScenes(t *testing.T) {
	dir := writeScenes(t, map[string]string{
		"zeta.yaml":   "name: Zeta\ngroup: B\n",
		"alpha.yml":   "name: Alpha\ngroup: B\n",
		"middle.yaml": "name: Middle\ngroup: A\n",
		"broken.yaml": "name: [unterminated\n",
		"notes.txt":   "not a scene",
	})

	scenes, err := ListScenes(dir)
	if err != nil {
		t.Fatalf("ListScenes failed: %v", err)
	}

	expected := []string{"Alpha", "Middle", "Zeta"}
	if len(scenes) != len(expected) {
		t.Fatalf("Expected %d scenes, got %d", len(expected), len(scenes))
	}
	for i, name := range expected {
		if scenes[i].Name != name {
			t.Errorf("Scene %d: expected %s, got %s", i, name, scenes[i].Name)
		}
	}

	groups := GroupScenes(scenes)
	if len(groups) != 2 || groups[0].Name != "A" || groups[1].Name != "B" {
		t.Fatalf("Expected groups A and B, got %+v", groups)
	}
	if len(groups[1].Scenes) != 2 {
		t.Errorf("Expected 2 scenes in group B, got %d", len(groups[1].Scenes))
	}
}

func TestListScenes_MissingDirectory(t *testing.T) {
	scenes, err := ListScenes(filepath.Join(t.TempDir(), "nothing-here"))
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if len(scenes) != 0 {
		t.Errorf("Expected no scenes, got %d", len(scenes))
	}
}
