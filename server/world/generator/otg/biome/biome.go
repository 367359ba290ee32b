// Package biome holds the resolved biome configurations of a preset and the registry they are looked up in.
package biome

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/otgmc/otg/server/world"
	"github.com/otgmc/otg/server/world/generator/otg/resource"
)

// Config is the configuration of a single biome as written in a preset.
type Config struct {
	Name string `toml:"name"`
	// Template marks biomes that hand surface cover over to the host: the snow and ice pass is skipped for
	// decoration units sampled entirely from template biomes.
	Template bool `toml:"template"`
	// Height is the base height of the terrain, above -2 (deep ocean) and up to 2 (high mountains). Terrain is
	// blended with weights divided by Height+2, so -2 itself is not allowed.
	Height float64 `toml:"height"`
	// Volatility scales how much the terrain varies around Height.
	Volatility float64 `toml:"volatility"`
	// Temperature decides if snow and ice form: columns of biomes colder than 0.15 freeze.
	Temperature float64 `toml:"temperature"`
	Rainfall    float64 `toml:"rainfall"`
	// Rarity is the weight of the biome in its group.
	Rarity int `toml:"rarity"`
	// River is the name of the biome rivers running through this biome turn into. Empty uses the default
	// river biome of the preset.
	River string `toml:"river"`
	// Shore is the name of the biome placed at the edge of this biome where it meets the ocean. Empty means
	// no shore.
	Shore string `toml:"shore"`

	SurfaceBlock string `toml:"surface_block"`
	GroundBlock  string `toml:"ground_block"`
	StoneBlock   string `toml:"stone_block"`
	WaterBlock   string `toml:"water_block"`
	IceBlock     string `toml:"ice_block"`

	Structures []string          `toml:"structures"`
	Resources  []resource.Config `toml:"resources"`
}

// Biome is a biome Config resolved against the materials, resources and other biomes of a preset.
type Biome struct {
	ID          uint16
	Name        string
	Template    bool
	Height      float64
	Volatility  float64
	Temperature float64
	Rainfall    float64
	Rarity      int
	// River and Shore are the IDs of the river and shore biomes. Shore equals ID if the biome has none.
	River, Shore uint16

	Surface, Ground, Stone, Water, Ice world.Material

	Structures []string
	Resources  []resource.Resource
}

// Cold reports if snow and ice form in the biome.
func (b *Biome) Cold() bool {
	return b.Temperature < 0.15
}

func (b *Biome) String() string {
	return b.Name
}

var (
	// ErrUnknownBiome is returned when a biome name cannot be resolved.
	ErrUnknownBiome = errors.New("unknown biome")
	// ErrDuplicateBiome is returned when two biomes of a preset share a name.
	ErrDuplicateBiome = errors.New("duplicate biome")
	// ErrInvalidBiome is returned when a biome configuration holds values outside of their valid range.
	ErrInvalidBiome = errors.New("invalid biome")
)

// MaxBiomes is the number of biomes a registry can hold. Biome IDs must fit the bits of a layer
// classification reserved for them.
const MaxBiomes = 1 << 10

// Registry holds the biomes of a preset. It is immutable after creation and safe for concurrent use.
type Registry struct {
	biomes []*Biome
	byName map[string]*Biome
}

// NewRegistry resolves the biome configurations passed. Biomes are assigned IDs in the order passed. River
// biomes that are not set use defaultRiver.
func NewRegistry(configs []Config, defaultRiver string, heightCap int) (*Registry, error) {
	if len(configs) == 0 {
		return nil, fmt.Errorf("%w: preset holds no biomes", ErrInvalidBiome)
	}
	if len(configs) > MaxBiomes {
		return nil, fmt.Errorf("%w: %v biomes exceed the maximum of %v", ErrInvalidBiome, len(configs), MaxBiomes)
	}
	reg := &Registry{byName: make(map[string]*Biome, len(configs))}
	for i, c := range configs {
		key := strings.ToLower(c.Name)
		if key == "" {
			return nil, fmt.Errorf("%w: biome %v has no name", ErrInvalidBiome, i)
		}
		if _, ok := reg.byName[key]; ok {
			return nil, fmt.Errorf("%w: %v", ErrDuplicateBiome, c.Name)
		}
		b, err := resolve(uint16(i), c, heightCap)
		if err != nil {
			return nil, fmt.Errorf("biome %v: %w", c.Name, err)
		}
		reg.biomes = append(reg.biomes, b)
		reg.byName[key] = b
	}
	for i, c := range configs {
		b := reg.biomes[i]
		river := c.River
		if river == "" {
			river = defaultRiver
		}
		r, ok := reg.ByName(river)
		if !ok {
			return nil, fmt.Errorf("biome %v: river: %w: %v", c.Name, ErrUnknownBiome, river)
		}
		b.River, b.Shore = r.ID, b.ID
		if c.Shore != "" {
			s, ok := reg.ByName(c.Shore)
			if !ok {
				return nil, fmt.Errorf("biome %v: shore: %w: %v", c.Name, ErrUnknownBiome, c.Shore)
			}
			b.Shore = s.ID
		}
	}
	return reg, nil
}

func resolve(id uint16, c Config, heightCap int) (*Biome, error) {
	if c.Height <= -2 || c.Height > 2 || math.IsNaN(c.Height) {
		return nil, fmt.Errorf("%w: height %v outside of (-2, 2]", ErrInvalidBiome, c.Height)
	}
	if c.Volatility < 0 {
		return nil, fmt.Errorf("%w: negative volatility %v", ErrInvalidBiome, c.Volatility)
	}
	if c.Rarity < 0 {
		return nil, fmt.Errorf("%w: negative rarity %v", ErrInvalidBiome, c.Rarity)
	}
	b := &Biome{
		ID:          id,
		Name:        c.Name,
		Template:    c.Template,
		Height:      c.Height,
		Volatility:  c.Volatility,
		Temperature: c.Temperature,
		Rainfall:    c.Rainfall,
		Rarity:      c.Rarity,
		Structures:  c.Structures,
	}
	for _, m := range []struct {
		name string
		def  world.Material
		dst  *world.Material
	}{
		{c.SurfaceBlock, world.Grass, &b.Surface},
		{c.GroundBlock, world.Dirt, &b.Ground},
		{c.StoneBlock, world.Stone, &b.Stone},
		{c.WaterBlock, world.Water, &b.Water},
		{c.IceBlock, world.Ice, &b.Ice},
	} {
		*m.dst = m.def
		if m.name == "" {
			continue
		}
		mat, err := world.MaterialByName(m.name)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidBiome, err)
		}
		*m.dst = mat
	}
	for i, rc := range c.Resources {
		r, err := resource.New(rc, heightCap)
		if err != nil {
			return nil, fmt.Errorf("resource %v: %w", i, err)
		}
		b.Resources = append(b.Resources, r)
	}
	return b, nil
}

// Biome returns the biome with the ID passed. It panics if no such biome exists, as IDs only come from the
// registry itself.
func (r *Registry) Biome(id uint16) *Biome {
	return r.biomes[id]
}

// ByName looks up a biome by its case-insensitive name.
func (r *Registry) ByName(name string) (*Biome, bool) {
	b, ok := r.byName[strings.ToLower(name)]
	return b, ok
}

// Len returns the number of biomes in the registry.
func (r *Registry) Len() int {
	return len(r.biomes)
}

// All returns the biomes of the registry ordered by ID.
func (r *Registry) All() []*Biome {
	return append([]*Biome(nil), r.biomes...)
}
