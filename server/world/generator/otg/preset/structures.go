package preset

import (
	"fmt"
	"strings"

	"github.com/otgmc/otg/server/world"
	"github.com/segmentio/fasthash/fnv1a"
)

// StructureConfig is the spacing of a host structure as written in a preset.
type StructureConfig struct {
	Name       string `toml:"name"`
	Spacing    int32  `toml:"spacing"`
	Separation int32  `toml:"separation"`
	// Salt is added to the seed of every placement cell. Zero derives a salt from the name.
	Salt int64 `toml:"salt"`
	// Spread is either "linear" or "triangular".
	Spread string `toml:"spread"`
	// AvoidDistance is the distance in chunks around a start of the structure in which chunks may not be
	// generated ahead of time.
	AvoidDistance int `toml:"avoid_distance"`
	// NoiseAffecting marks jigsaw structures that smooth the terrain around their pieces.
	NoiseAffecting bool `toml:"noise_affecting"`
}

func (s StructureConfig) resolve() (world.StructureSpacing, error) {
	name := strings.ToLower(strings.TrimSpace(s.Name))
	if name == "" {
		return world.StructureSpacing{}, fmt.Errorf("%w: structure without name", ErrInvalidPreset)
	}
	if s.Spacing <= 0 || s.Separation < 0 || s.Separation >= s.Spacing {
		return world.StructureSpacing{}, fmt.Errorf("%w: structure %v: spacing %v must be positive and larger than separation %v", ErrInvalidPreset, name, s.Spacing, s.Separation)
	}
	if s.AvoidDistance < 0 {
		return world.StructureSpacing{}, fmt.Errorf("%w: structure %v: negative avoid distance", ErrInvalidPreset, name)
	}
	sp := world.StructureSpacing{
		Name:           name,
		Spacing:        s.Spacing,
		Separation:     s.Separation,
		Salt:           s.Salt,
		AvoidDistance:  s.AvoidDistance,
		NoiseAffecting: s.NoiseAffecting,
	}
	if sp.Salt == 0 {
		sp.Salt = int64(fnv1a.HashString64(name) >> 33)
	}
	switch strings.ToLower(s.Spread) {
	case "", "linear":
		sp.Spread = world.SpreadLinear
	case "triangular":
		sp.Spread = world.SpreadTriangular
	default:
		return world.StructureSpacing{}, fmt.Errorf("%w: structure %v: unknown spread %q", ErrInvalidPreset, name, s.Spread)
	}
	return sp, nil
}

// DefaultStructures returns the spacing of the overworld host structures with their usual salts.
func DefaultStructures() []StructureConfig {
	return []StructureConfig{
		{Name: "village", Spacing: 32, Separation: 8, Salt: 10387312, AvoidDistance: 4, NoiseAffecting: true},
		{Name: "desert_pyramid", Spacing: 32, Separation: 8, Salt: 14357617, AvoidDistance: 1},
		{Name: "igloo", Spacing: 32, Separation: 8, Salt: 14357618, AvoidDistance: 1},
		{Name: "jungle_temple", Spacing: 32, Separation: 8, Salt: 14357619, AvoidDistance: 1},
		{Name: "swamp_hut", Spacing: 32, Separation: 8, Salt: 14357620, AvoidDistance: 1},
		{Name: "pillager_outpost", Spacing: 32, Separation: 8, Salt: 165745296, AvoidDistance: 1, NoiseAffecting: true},
		{Name: "ocean_monument", Spacing: 32, Separation: 5, Salt: 10387313, Spread: "triangular", AvoidDistance: 4},
		{Name: "mansion", Spacing: 80, Separation: 20, Salt: 10387319, Spread: "triangular", AvoidDistance: 4},
		{Name: "ruined_portal", Spacing: 40, Separation: 15, Salt: 34222645, AvoidDistance: 1},
		{Name: "shipwreck", Spacing: 24, Separation: 4, Salt: 165745295, AvoidDistance: 1},
		{Name: "ocean_ruin", Spacing: 20, Separation: 8, Salt: 14357621, AvoidDistance: 1},
	}
}
