package preset_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/otgmc/otg/server/world"
	"github.com/otgmc/otg/server/world/generator/otg/biome"
	"github.com/otgmc/otg/server/world/generator/otg/preset"
)

func TestDefaultPreset(t *testing.T) {
	p := preset.Default()
	if p.World.HeightCap != 256 || p.World.WaterLevel != 63 {
		t.Fatalf("unexpected default world config %+v", p.World)
	}
	ocean, frozen := p.OceanBiome()
	if p.Registry().Biome(ocean).Name != biome.Ocean || p.Registry().Biome(frozen).Name != biome.FrozenOcean {
		t.Fatalf("unexpected ocean biomes %v %v", ocean, frozen)
	}
	for _, g := range p.ResolvedGroups() {
		if g.Weight <= 0 || len(g.Biomes) == 0 {
			t.Fatalf("group %v resolved without biomes", g.Name)
		}
	}

	salts := map[string]int64{}
	for _, s := range p.Spacing() {
		salts[s.Name] = s.Salt
	}
	for name, salt := range map[string]int64{"village": 10387312, "ocean_monument": 10387313, "mansion": 10387319, "shipwreck": 165745295} {
		if salts[name] != salt {
			t.Errorf("%v: expected salt %v, got %v", name, salt, salts[name])
		}
	}
}

func TestDecodeTakesMissingValuesFromDefault(t *testing.T) {
	p, err := preset.Decode([]byte(`
name = "Islands"

[world]
land_rarity = 5
old_land_rarity = true
water_level = 40
`))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if p.World.LandRarity != 5 || !p.World.OldLandRarity || p.World.WaterLevel != 40 {
		t.Fatalf("values from data not applied: %+v", p.World)
	}
	if p.World.HeightCap != 256 || p.Registry().Len() != len(biome.Defaults()) || len(p.Spacing()) != len(preset.DefaultStructures()) {
		t.Fatalf("missing values not taken from the built-in preset")
	}
	if p.Fingerprint() == preset.Default().Fingerprint() {
		t.Fatalf("expected fingerprints of different presets to differ")
	}
	if preset.Default().Fingerprint() != preset.Default().Fingerprint() {
		t.Fatalf("expected fingerprint to be stable")
	}
}

func TestPresetRoundTripsThroughFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "default.toml")
	data, err := preset.Default().Encode()
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatal(err)
	}
	p, err := preset.Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if p.Fingerprint() != preset.Default().Fingerprint() {
		t.Fatalf("expected loaded preset to equal the built-in one")
	}
}

func TestInvalidPresets(t *testing.T) {
	tests := []struct {
		name string
		data string
		err  error
	}{
		{"no name", `[world]
height_cap = 256`, preset.ErrInvalidPreset},
		{"height cap", `name = "a"
[world]
height_cap = 100`, preset.ErrInvalidPreset},
		{"rarity", `name = "a"
[world]
land_rarity = 101`, preset.ErrInvalidPreset},
		{"resolution", `name = "a"
[world]
noise_resolution_xz = 3`, preset.ErrInvalidPreset},
		{"spacing", `name = "a"
[[structures]]
name = "village"
spacing = 8
separation = 8`, preset.ErrInvalidPreset},
		{"spread", `name = "a"
[[structures]]
name = "village"
spacing = 32
separation = 8
spread = "circular"`, preset.ErrInvalidPreset},
		{"ocean", `name = "a"
[world]
ocean_biome = "Lava Sea"`, biome.ErrUnknownBiome},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := preset.Decode([]byte(tt.data)); !errors.Is(err, tt.err) {
				t.Fatalf("expected %v, got %v", tt.err, err)
			}
		})
	}
}

func TestStructureSaltFromName(t *testing.T) {
	p, err := preset.Decode([]byte(`name = "a"
[[structures]]
name = "Tower"
spacing = 16
separation = 4
avoid_distance = 2
spread = "triangular"`))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	sp := p.Spacing()
	if len(sp) != 1 {
		t.Fatalf("expected one structure, got %v", len(sp))
	}
	if sp[0].Name != "tower" || sp[0].Salt == 0 || sp[0].Spread != world.SpreadTriangular || sp[0].AvoidDistance != 2 {
		t.Fatalf("unexpected spacing %+v", sp[0])
	}
}
