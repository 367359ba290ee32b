package preset_test

import (
	"errors"
	"os"
	"path/filepath"
	"slices"
	"testing"

	"github.com/otgmc/otg/server/world/generator/otg/preset"
)

func TestStoreCreatesFolder(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "presets")
	s, err := preset.LoadStore(dir)
	if err != nil {
		t.Fatalf("load store: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "Default.toml")); err != nil {
		t.Fatalf("expected the built-in preset to be written: %v", err)
	}
	p, err := s.Get("")
	if err != nil {
		t.Fatalf("get default: %v", err)
	}
	if p.Fingerprint() != preset.Default().Fingerprint() {
		t.Fatalf("expected the default preset")
	}
	if _, err := s.Get("nope"); !errors.Is(err, preset.ErrUnknownPreset) {
		t.Fatalf("expected ErrUnknownPreset, got %v", err)
	}
}

func TestStoreSaveAndReload(t *testing.T) {
	dir := t.TempDir()
	s, err := preset.LoadStore(dir)
	if err != nil {
		t.Fatalf("load store: %v", err)
	}

	p, err := preset.Decode([]byte("name = \"Islands\"\n[world]\nland_rarity = 10\n"))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if err := s.Save(p); err != nil {
		t.Fatalf("save: %v", err)
	}
	if got, err := s.Get("islands"); err != nil || got != p {
		t.Fatalf("expected case-insensitive lookup of the saved preset, got %v %v", got, err)
	}
	if names := s.Names(); !slices.Equal(names, []string{"Default", "Islands"}) {
		t.Fatalf("unexpected names %v", names)
	}

	other, err := preset.LoadStore(dir)
	if err != nil {
		t.Fatalf("reopen store: %v", err)
	}
	got, err := other.Get("Islands")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Fingerprint() != p.Fingerprint() {
		t.Fatalf("expected reloaded preset to equal the saved one")
	}

	// Presets handed out before a reload stay as they were; the changed preset has a new fingerprint.
	if err := os.WriteFile(filepath.Join(dir, "Islands.toml"), []byte("name = \"Islands\"\n[world]\nland_rarity = 20\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := other.Reload(); err != nil {
		t.Fatalf("reload: %v", err)
	}
	changed, err := other.Get("Islands")
	if err != nil {
		t.Fatalf("get after reload: %v", err)
	}
	if changed.Fingerprint() == got.Fingerprint() || got.World.LandRarity != 10 || changed.World.LandRarity != 20 {
		t.Fatalf("expected reload to replace the preset without changing the old one")
	}
}

func TestStoreRejectsInvalidPresets(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "broken.toml"), []byte("name = \"Broken\"\n[world]\nheight_cap = 7\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := preset.LoadStore(dir); err == nil {
		t.Fatalf("expected an invalid preset to fail loading")
	}

	s, err := preset.LoadStore(t.TempDir())
	if err != nil {
		t.Fatalf("load store: %v", err)
	}
	if err := s.Save(&preset.Preset{Name: "a/b"}); !errors.Is(err, preset.ErrInvalidName) {
		t.Fatalf("expected ErrInvalidName, got %v", err)
	}
}
