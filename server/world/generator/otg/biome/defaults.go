package biome

import "github.com/otgmc/otg/server/world/generator/otg/resource"

// Names of the biomes of the built-in preset.
const (
	Ocean          = "Ocean"
	FrozenOcean    = "Frozen Ocean"
	Plains         = "Plains"
	Desert         = "Desert"
	Mountains      = "Mountains"
	SmallMountains = "Small Mountains"
	Forest         = "Forest"
	BirchForest    = "Birch Forest"
	Taiga          = "Taiga"
	Swamp          = "Swamp"
	IcePlains      = "Ice Plains"
	River          = "River"
	FrozenRiver    = "Frozen River"
	Beach          = "Beach"
)

// ores returns the ore veins every land biome of the built-in preset carries.
func ores() []resource.Config {
	stone := []string{"stone"}
	return []resource.Config{
		{Type: "ore", Material: "coal_ore", Size: 16, Frequency: 20, Rarity: 100, MinAltitude: 0, MaxAltitude: 127, Sources: stone},
		{Type: "ore", Material: "iron_ore", Size: 8, Frequency: 20, Rarity: 100, MinAltitude: 0, MaxAltitude: 63, Sources: stone},
		{Type: "ore", Material: "gold_ore", Size: 8, Frequency: 2, Rarity: 100, MinAltitude: 0, MaxAltitude: 31, Sources: stone},
		{Type: "ore", Material: "redstone_ore", Size: 7, Frequency: 8, Rarity: 100, MinAltitude: 0, MaxAltitude: 15, Sources: stone},
		{Type: "ore", Material: "lapis_ore", Size: 7, Frequency: 1, Rarity: 100, MinAltitude: 0, MaxAltitude: 30, Sources: stone},
		{Type: "ore", Material: "diamond_ore", Size: 7, Frequency: 1, Rarity: 100, MinAltitude: 0, MaxAltitude: 15, Sources: stone},
	}
}

func grass(amount int) resource.Config {
	return resource.Config{Type: "grass", Material: "short_grass", Frequency: amount, Rarity: 100, Sources: []string{"grass"}}
}

func trees(kind string, amount int) resource.Config {
	return resource.Config{Type: "tree", Tree: kind, Frequency: amount, Rarity: 100}
}

func flowers(amount int) resource.Config {
	return resource.Config{Type: "plant", Material: "dandelion", Frequency: amount, Rarity: 100, MinAltitude: 60, MaxAltitude: 100, Sources: []string{"grass"}}
}

// Defaults returns the biome configurations of the built-in preset.
func Defaults() []Config {
	return []Config{
		{
			Name: Ocean, Height: -1, Volatility: 0.1, Temperature: 0.5, Rainfall: 0.5, Rarity: 100,
			SurfaceBlock: "gravel", GroundBlock: "gravel",
			Structures: []string{"ocean_monument", "shipwreck", "ocean_ruin"},
			Resources:  ores(),
		},
		{
			Name: FrozenOcean, Height: -1, Volatility: 0.1, Temperature: 0, Rainfall: 0.5, Rarity: 100,
			SurfaceBlock: "gravel", GroundBlock: "gravel",
			Structures: []string{"shipwreck", "ocean_ruin"},
			Resources:  append(ores(), resource.Config{Type: "iceberg", Material: "packed_ice", Rarity: 6}),
		},
		{
			Name: Plains, Height: 0.125, Volatility: 0.05, Temperature: 0.8, Rainfall: 0.4, Rarity: 100, Shore: Beach,
			Structures: []string{"village", "pillager_outpost", "ruined_portal"},
			Resources:  append(ores(), grass(12), flowers(2)),
		},
		{
			Name: Desert, Height: 0.125, Volatility: 0.05, Temperature: 2, Rainfall: 0, Rarity: 100, Shore: Beach,
			SurfaceBlock: "sand", GroundBlock: "sandstone",
			Structures: []string{"village", "desert_pyramid", "ruined_portal"},
			Resources: append(ores(),
				resource.Config{Type: "plant", Material: "dead_bush", Frequency: 2, Rarity: 100, MinAltitude: 60, MaxAltitude: 100, Sources: []string{"sand"}},
				resource.Config{Type: "plant", Material: "cactus", Frequency: 10, Rarity: 50, MinAltitude: 60, MaxAltitude: 100, Sources: []string{"sand"}},
			),
		},
		{
			Name: Mountains, Height: 1, Volatility: 0.5, Temperature: 0.2, Rainfall: 0.3, Rarity: 100,
			Shore:      SmallMountains,
			Structures: []string{"ruined_portal"},
			Resources:  append(ores(), trees("spruce", 1)),
		},
		{
			Name: SmallMountains, Height: 0.8, Volatility: 0.3, Temperature: 0.2, Rainfall: 0.3, Rarity: 100,
			Resources: append(ores(), grass(3)),
		},
		{
			Name: Forest, Height: 0.1, Volatility: 0.2, Temperature: 0.7, Rainfall: 0.8, Rarity: 100, Shore: Beach,
			Structures: []string{"mansion", "ruined_portal"},
			Resources:  append(ores(), trees("oak", 5), grass(3)),
		},
		{
			Name: BirchForest, Height: 0.1, Volatility: 0.2, Temperature: 0.6, Rainfall: 0.6, Rarity: 100, Shore: Beach,
			Structures: []string{"ruined_portal"},
			Resources:  append(ores(), trees("birch", 10), grass(2)),
		},
		{
			Name: Taiga, Height: 0.2, Volatility: 0.2, Temperature: 0.25, Rainfall: 0.8, Rarity: 100, Shore: Beach,
			Structures: []string{"village", "igloo"},
			Resources:  append(ores(), trees("spruce", 10), grass(1)),
		},
		{
			Name: Swamp, Height: -0.2, Volatility: 0.1, Temperature: 0.8, Rainfall: 0.9, Rarity: 100,
			Structures: []string{"swamp_hut"},
			Resources:  append(ores(), trees("oak", 2), grass(5)),
		},
		{
			Name: IcePlains, Height: 0.125, Volatility: 0.05, Temperature: 0.05, Rainfall: 0.8, Rarity: 100,
			River:      FrozenRiver,
			Structures: []string{"igloo", "village"},
			Resources:  append(ores(), grass(5)),
		},
		{
			Name: River, Height: -0.5, Volatility: 0, Temperature: 0.5, Rainfall: 0.7, Rarity: 0,
			SurfaceBlock: "sand", GroundBlock: "sand",
			Resources: append(ores(), grass(5)),
		},
		{
			Name: FrozenRiver, Height: -0.5, Volatility: 0, Temperature: 0, Rainfall: 0.5, Rarity: 0,
			SurfaceBlock: "sand", GroundBlock: "sand",
			Resources: ores(),
		},
		{
			Name: Beach, Height: 0, Volatility: 0.025, Temperature: 0.8, Rainfall: 0.4, Rarity: 0,
			SurfaceBlock: "sand", GroundBlock: "sand",
			Structures: []string{"shipwreck"},
			Resources:  ores(),
		},
	}
}
