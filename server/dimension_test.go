package server

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDimensionConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dimensions.yaml")
	data := []byte(`version: 2
modpack_name: Skylands
overworld:
  preset: Default
  seed: 12345
nether:
  preset: ""
end:
  preset: Default
  portal_color: purple
dimensions:
  - name: mining
    preset: Default
    seed: -1
    portal_blocks: [stone, cobblestone]
`)
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatal(err)
	}
	conf, err := LoadDimensionConfig(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if conf.Version != 2 || conf.ModpackName != "Skylands" {
		t.Fatalf("unexpected header %+v", conf)
	}
	worlds := conf.Worlds()
	if len(worlds) != 3 {
		t.Fatalf("expected 3 worlds, got %+v", worlds)
	}
	if worlds[0].Name != "overworld" || worlds[0].Seed != 12345 {
		t.Fatalf("unexpected overworld %+v", worlds[0])
	}
	if worlds[1].Name != "end" || worlds[1].PortalColor != "purple" {
		t.Fatalf("unexpected end %+v", worlds[1])
	}
	if worlds[2].Name != "mining" || worlds[2].Seed != -1 || len(worlds[2].PortalBlocks) != 2 {
		t.Fatalf("unexpected custom dimension %+v", worlds[2])
	}

	encoded, err := conf.Encode()
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if err := os.WriteFile(path, encoded, 0644); err != nil {
		t.Fatal(err)
	}
	again, err := LoadDimensionConfig(path)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if len(again.Worlds()) != 3 || again.Dimensions[0].PortalBlocks[1] != "cobblestone" {
		t.Fatalf("expected config to survive encoding, got %+v", again)
	}
}

func TestInvalidDimensionConfig(t *testing.T) {
	tests := map[string]string{
		"duplicate": "overworld:\n  preset: Default\ndimensions:\n  - name: Overworld\n    preset: Default\n",
		"unnamed":   "overworld:\n  preset: Default\ndimensions:\n  - preset: Default\n",
		"empty":     "overworld:\n  preset: \"\"\n",
	}
	for name, data := range tests {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "dimensions.yaml")
			if err := os.WriteFile(path, []byte(data), 0644); err != nil {
				t.Fatal(err)
			}
			if _, err := LoadDimensionConfig(path); !errors.Is(err, ErrInvalidDimensions) {
				t.Fatalf("expected ErrInvalidDimensions, got %v", err)
			}
		})
	}

	if _, err := LoadDimensionConfig(""); err != nil {
		t.Fatalf("expected the default config for an empty path: %v", err)
	}
}
