package preset

import (
	"fmt"

	"github.com/otgmc/otg/server/world/generator/otg/biome"
)

// WorldConfig holds the settings of a preset that apply to the whole world rather than to a single biome.
// Depths are counted in zoom steps of the biome layer pipeline: depth 0 is the coarsest, where a single
// sample covers 4 << GenerationDepth blocks, and depth GenerationDepth is the final resolution of one
// sample per 4 blocks.
type WorldConfig struct {
	// HeightCap is the height of the world in blocks. It must be a multiple of the vertical noise resolution.
	HeightCap int `toml:"height_cap"`
	// WaterLevel is the y up to which empty space below the terrain surface is filled with water.
	WaterLevel int `toml:"water_level"`

	// NoiseResolutionXZ and NoiseResolutionY are the horizontal and vertical distances in blocks between
	// density samples. NoiseResolutionXZ must divide 16.
	NoiseResolutionXZ int `toml:"noise_resolution_xz"`
	NoiseResolutionY  int `toml:"noise_resolution_y"`
	// FractureHorizontal and FractureVertical scale the coordinates the main terrain noise is sampled at.
	// Larger values make terrain more broken up.
	FractureHorizontal float64 `toml:"fracture_horizontal"`
	FractureVertical   float64 `toml:"fracture_vertical"`

	GenerationDepth int `toml:"generation_depth"`
	// LandRarity is the chance of land being placed at LandSize. With OldLandRarity unset it is the percent
	// chance of a sample being land. With OldLandRarity set, larger values make land rarer, as worlds
	// created before the convention changed expect.
	LandRarity    int  `toml:"land_rarity"`
	OldLandRarity bool `toml:"old_land_rarity"`
	// LandSize is the depth at which land is placed.
	LandSize int `toml:"land_size"`
	// LandFuzzy is the number of depths after LandSize at which the coastline is roughened.
	LandFuzzy int `toml:"land_fuzzy"`
	// ForceLandAtSpawn forces land at all samples of the land depth within SpawnLandRadius of the origin.
	// The origin itself is always land.
	ForceLandAtSpawn bool `toml:"force_land_at_spawn"`
	SpawnLandRadius  int  `toml:"spawn_land_radius"`

	// Ice enables the marking of icy regions at IceSize. One in IceRarity samples is marked.
	Ice       bool `toml:"ice"`
	IceRarity int  `toml:"ice_rarity"`
	IceSize   int  `toml:"ice_size"`
	// GroupSize is the depth at which biome groups are assigned and BiomeSize the depth at which biomes are
	// picked from them.
	GroupSize int `toml:"group_size"`
	BiomeSize int `toml:"biome_size"`
	// Rivers enables rivers, seeded at RiverSize. Smaller values make for longer rivers.
	Rivers    bool `toml:"rivers"`
	RiverSize int  `toml:"river_size"`

	OceanBiome       string `toml:"ocean_biome"`
	FrozenOceanBiome string `toml:"frozen_ocean_biome"`
	DefaultRiver     string `toml:"default_river"`

	// ImprovedBorderDecoration decorates units at biome borders with the resources of every biome sampled
	// rather than only the most common one.
	ImprovedBorderDecoration bool `toml:"improved_border_decoration"`

	Caves         bool `toml:"caves"`
	CaveRarity    int  `toml:"cave_rarity"`
	CaveFrequency int  `toml:"cave_frequency"`
	Ravines       bool `toml:"ravines"`
	RavineRarity  int  `toml:"ravine_rarity"`

	FlatBedrock bool `toml:"flat_bedrock"`
}

// DefaultWorldConfig returns the world config of the built-in preset.
func DefaultWorldConfig() WorldConfig {
	return WorldConfig{
		HeightCap:          256,
		WaterLevel:         63,
		NoiseResolutionXZ:  4,
		NoiseResolutionY:   8,
		FractureHorizontal: 1,
		FractureVertical:   1,
		GenerationDepth:    10,
		LandRarity:         50,
		LandSize:           0,
		LandFuzzy:          5,
		ForceLandAtSpawn:   true,
		SpawnLandRadius:    0,
		Ice:                true,
		IceRarity:          10,
		IceSize:            3,
		GroupSize:          3,
		BiomeSize:          6,
		Rivers:             true,
		RiverSize:          4,
		OceanBiome:         biome.Ocean,
		FrozenOceanBiome:   biome.FrozenOcean,
		DefaultRiver:       biome.River,
		Caves:              true,
		CaveRarity:         7,
		CaveFrequency:      40,
		Ravines:            true,
		RavineRarity:       2,
	}
}

func (c WorldConfig) withDefaults() WorldConfig {
	d := DefaultWorldConfig()
	if c.HeightCap == 0 {
		c.HeightCap = d.HeightCap
	}
	if c.NoiseResolutionXZ == 0 {
		c.NoiseResolutionXZ = d.NoiseResolutionXZ
	}
	if c.NoiseResolutionY == 0 {
		c.NoiseResolutionY = d.NoiseResolutionY
	}
	if c.FractureHorizontal == 0 {
		c.FractureHorizontal = d.FractureHorizontal
	}
	if c.FractureVertical == 0 {
		c.FractureVertical = d.FractureVertical
	}
	if c.GenerationDepth == 0 {
		c.GenerationDepth = d.GenerationDepth
	}
	if c.BiomeSize == 0 {
		c.BiomeSize = d.BiomeSize
	}
	if c.IceRarity == 0 {
		c.IceRarity = d.IceRarity
	}
	if c.OceanBiome == "" {
		c.OceanBiome = d.OceanBiome
	}
	if c.DefaultRiver == "" {
		c.DefaultRiver = d.DefaultRiver
	}
	return c
}

// Validate applies defaults to unset values and checks the remaining values are in range. The error
// returned wraps ErrInvalidPreset.
func (c *WorldConfig) Validate() error {
	*c = c.withDefaults()
	check := func(ok bool, format string, a ...any) error {
		if ok {
			return nil
		}
		return fmt.Errorf("%w: %v", ErrInvalidPreset, fmt.Sprintf(format, a...))
	}
	for _, err := range []error{
		check(c.NoiseResolutionXZ > 0 && 16%c.NoiseResolutionXZ == 0, "noise resolution xz %v must divide 16", c.NoiseResolutionXZ),
		check(c.NoiseResolutionY == 4 || c.NoiseResolutionY == 8, "noise resolution y %v must be 4 or 8", c.NoiseResolutionY),
		check(c.HeightCap >= 16 && c.HeightCap <= 4096, "height cap %v must be in [16, 4096]", c.HeightCap),
		check(c.HeightCap%c.NoiseResolutionY == 0, "height cap %v must be a multiple of %v", c.HeightCap, c.NoiseResolutionY),
		check(c.WaterLevel >= 0 && c.WaterLevel < c.HeightCap, "water level %v must be in [0, %v)", c.WaterLevel, c.HeightCap),
		check(c.FractureHorizontal > 0 && c.FractureVertical > 0, "fracture values must be positive"),
		check(c.GenerationDepth >= 1 && c.GenerationDepth <= 20, "generation depth %v must be in [1, 20]", c.GenerationDepth),
		check(c.LandRarity >= 0 && c.LandRarity <= 100, "land rarity %v must be in [0, 100]", c.LandRarity),
		check(c.LandSize >= 0 && c.LandSize <= c.GenerationDepth, "land size %v must be in [0, %v]", c.LandSize, c.GenerationDepth),
		check(c.LandFuzzy >= 0 && c.LandSize+c.LandFuzzy <= c.BiomeSize, "land fuzzy %v reaches beyond biome size %v", c.LandFuzzy, c.BiomeSize),
		check(c.SpawnLandRadius >= 0, "spawn land radius %v must not be negative", c.SpawnLandRadius),
		check(c.IceRarity > 0, "ice rarity %v must be positive", c.IceRarity),
		check(c.IceSize >= c.LandSize && c.IceSize <= c.BiomeSize, "ice size %v must be in [%v, %v]", c.IceSize, c.LandSize, c.BiomeSize),
		check(c.GroupSize >= c.LandSize && c.GroupSize <= c.BiomeSize, "group size %v must be in [%v, %v]", c.GroupSize, c.LandSize, c.BiomeSize),
		check(c.BiomeSize <= c.GenerationDepth, "biome size %v must not exceed %v", c.BiomeSize, c.GenerationDepth),
		check(c.RiverSize >= 0 && c.RiverSize <= c.GenerationDepth, "river size %v must be in [0, %v]", c.RiverSize, c.GenerationDepth),
		check(c.CaveRarity >= 0 && c.CaveRarity <= 100 && c.CaveFrequency >= 0, "cave rarity %v or frequency %v out of range", c.CaveRarity, c.CaveFrequency),
		check(c.RavineRarity >= 0 && c.RavineRarity <= 100, "ravine rarity %v must be in [0, 100]", c.RavineRarity),
	} {
		if err != nil {
			return err
		}
	}
	return nil
}

// ShoreSize returns the depth at which shores are placed: two zoom steps before the final resolution, or
// BiomeSize if biomes are picked later than that.
func (c WorldConfig) ShoreSize() int {
	return max(c.GenerationDepth-2, c.BiomeSize)
}
