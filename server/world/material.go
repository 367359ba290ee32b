package world

import (
	"errors"
	"fmt"
	"strings"
	"sync"
)

// Material is a block state as seen by terrain generation. The zero value is air.
type Material uint16

// MaterialProperties describes how generation code treats a material.
type MaterialProperties struct {
	// Name is the lower case name the material is referred to by in configuration files.
	Name string
	// Solid materials block movement and stop height searches looking for ground.
	Solid bool
	// Liquid materials are skipped by searches that ignore liquids.
	Liquid bool
	// Snow is set for snow layers, which count as solid for some height searches.
	Snow bool
}

// Materials known to the generator out of the box. More may be added with RegisterMaterial.
const (
	Air Material = iota
	Stone
	Bedrock
	Water
	Lava
	Grass
	Dirt
	Sand
	Sandstone
	Gravel
	Clay
	Snow
	SnowBlock
	Ice
	PackedIce
	BlueIce
	CoalOre
	IronOre
	GoldOre
	RedstoneOre
	LapisOre
	DiamondOre
	OakLog
	OakLeaves
	BirchLog
	BirchLeaves
	SpruceLog
	SpruceLeaves
	ShortGrass
	Fern
	Dandelion
	Poppy
	DeadBush
	Cactus
	Netherrack
	EndStone

	// Unknown is returned for positions outside of the area a region can access.
	Unknown Material = 0xffff
)

var materialRegistry = struct {
	mu     sync.RWMutex
	props  []MaterialProperties
	byName map[string]Material
}{byName: map[string]Material{}}

// ErrUnknownMaterial is returned when a material name does not resolve to a registered material.
var ErrUnknownMaterial = errors.New("unknown material")

func init() {
	for _, p := range []MaterialProperties{
		{Name: "air"},
		{Name: "stone", Solid: true},
		{Name: "bedrock", Solid: true},
		{Name: "water", Liquid: true},
		{Name: "lava", Liquid: true},
		{Name: "grass", Solid: true},
		{Name: "dirt", Solid: true},
		{Name: "sand", Solid: true},
		{Name: "sandstone", Solid: true},
		{Name: "gravel", Solid: true},
		{Name: "clay", Solid: true},
		{Name: "snow", Snow: true},
		{Name: "snow_block", Solid: true},
		{Name: "ice", Solid: true},
		{Name: "packed_ice", Solid: true},
		{Name: "blue_ice", Solid: true},
		{Name: "coal_ore", Solid: true},
		{Name: "iron_ore", Solid: true},
		{Name: "gold_ore", Solid: true},
		{Name: "redstone_ore", Solid: true},
		{Name: "lapis_ore", Solid: true},
		{Name: "diamond_ore", Solid: true},
		{Name: "oak_log", Solid: true},
		{Name: "oak_leaves", Solid: true},
		{Name: "birch_log", Solid: true},
		{Name: "birch_leaves", Solid: true},
		{Name: "spruce_log", Solid: true},
		{Name: "spruce_leaves", Solid: true},
		{Name: "short_grass"},
		{Name: "fern"},
		{Name: "dandelion"},
		{Name: "poppy"},
		{Name: "dead_bush"},
		{Name: "cactus", Solid: true},
		{Name: "netherrack", Solid: true},
		{Name: "end_stone", Solid: true},
	} {
		if _, err := RegisterMaterial(p); err != nil {
			panic(err)
		}
	}
}

// RegisterMaterial adds a material to the registry and returns the Material assigned to it. Registering a
// name twice returns an error.
func RegisterMaterial(p MaterialProperties) (Material, error) {
	name := normaliseMaterialName(p.Name)
	if name == "" {
		return Air, errors.New("material name must not be empty")
	}
	p.Name = name

	materialRegistry.mu.Lock()
	defer materialRegistry.mu.Unlock()
	if _, ok := materialRegistry.byName[name]; ok {
		return Air, fmt.Errorf("material %q already registered", name)
	}
	if len(materialRegistry.props) >= int(Unknown) {
		return Air, errors.New("material registry full")
	}
	m := Material(len(materialRegistry.props))
	materialRegistry.props = append(materialRegistry.props, p)
	materialRegistry.byName[name] = m
	return m, nil
}

// MaterialByName looks up a material by its name. Names are case insensitive and an optional "minecraft:"
// prefix is ignored.
func MaterialByName(name string) (Material, error) {
	n := normaliseMaterialName(name)
	materialRegistry.mu.RLock()
	m, ok := materialRegistry.byName[n]
	materialRegistry.mu.RUnlock()
	if !ok {
		return Air, fmt.Errorf("%w: %q", ErrUnknownMaterial, name)
	}
	return m, nil
}

func normaliseMaterialName(name string) string {
	n := strings.ToLower(strings.TrimSpace(name))
	return strings.TrimPrefix(n, "minecraft:")
}

func (m Material) props() MaterialProperties {
	materialRegistry.mu.RLock()
	defer materialRegistry.mu.RUnlock()
	if int(m) >= len(materialRegistry.props) {
		return MaterialProperties{Name: "unknown"}
	}
	return materialRegistry.props[m]
}

// String returns the registered name of the material.
func (m Material) String() string {
	return m.props().Name
}

// Solid reports if the material is solid.
func (m Material) Solid() bool {
	return m.props().Solid
}

// Liquid reports if the material is a liquid.
func (m Material) Liquid() bool {
	return m.props().Liquid
}

// IsSnow reports if the material is a snow layer.
func (m Material) IsSnow() bool {
	return m.props().Snow
}

// IsAir reports if the material is air.
func (m Material) IsAir() bool {
	return m == Air
}
