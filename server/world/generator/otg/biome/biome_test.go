package biome_test

import (
	"errors"
	"testing"

	"github.com/otgmc/otg/server/world"
	"github.com/otgmc/otg/server/world/generator/otg/biome"
)

func TestDefaultsResolve(t *testing.T) {
	reg, err := biome.NewRegistry(biome.Defaults(), biome.River, 256)
	if err != nil {
		t.Fatalf("resolve defaults: %v", err)
	}
	if reg.Len() != len(biome.Defaults()) {
		t.Fatalf("expected %v biomes, got %v", len(biome.Defaults()), reg.Len())
	}
	for i, b := range reg.All() {
		if int(b.ID) != i {
			t.Fatalf("biome %v has id %v", i, b.ID)
		}
	}

	desert, ok := reg.ByName("desert")
	if !ok {
		t.Fatalf("expected desert to be found case-insensitively")
	}
	if desert.Surface != world.Sand || desert.Ground != world.Sandstone || desert.Stone != world.Stone {
		t.Fatalf("unexpected desert blocks %v %v %v", desert.Surface, desert.Ground, desert.Stone)
	}
	river, _ := reg.ByName(biome.River)
	if desert.River != river.ID {
		t.Fatalf("expected desert to use the default river")
	}
	beach, _ := reg.ByName(biome.Beach)
	if desert.Shore != beach.ID {
		t.Fatalf("expected desert shore to be beach")
	}

	icePlains, _ := reg.ByName(biome.IcePlains)
	frozenRiver, _ := reg.ByName(biome.FrozenRiver)
	if icePlains.River != frozenRiver.ID {
		t.Fatalf("expected ice plains to use the frozen river")
	}
	if !icePlains.Cold() || desert.Cold() {
		t.Fatalf("unexpected cold flags")
	}
	if icePlains.Shore != icePlains.ID {
		t.Fatalf("expected a biome without shore to be its own shore")
	}
}

func TestRegistryErrors(t *testing.T) {
	tests := []struct {
		name    string
		configs []biome.Config
		river   string
		err     error
	}{
		{"empty", nil, "a", biome.ErrInvalidBiome},
		{"duplicate", []biome.Config{{Name: "A"}, {Name: "a"}}, "A", biome.ErrDuplicateBiome},
		{"unknown river", []biome.Config{{Name: "A"}}, "B", biome.ErrUnknownBiome},
		{"unknown shore", []biome.Config{{Name: "A", Shore: "C"}}, "A", biome.ErrUnknownBiome},
		{"height", []biome.Config{{Name: "A", Height: 3}}, "A", biome.ErrInvalidBiome},
		{"lowest height", []biome.Config{{Name: "A", Height: -2}}, "A", biome.ErrInvalidBiome},
		{"material", []biome.Config{{Name: "A", SurfaceBlock: "cheese"}}, "A", biome.ErrInvalidBiome},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := biome.NewRegistry(tt.configs, tt.river, 256); !errors.Is(err, tt.err) {
				t.Fatalf("expected %v, got %v", tt.err, err)
			}
		})
	}
}
