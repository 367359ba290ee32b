// Package preset holds the per-world generation settings: the world config, biome groups, biomes and
// structure spacing. A Preset is immutable once validated and may be shared freely between goroutines.
package preset

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/otgmc/otg/server/world"
	"github.com/otgmc/otg/server/world/generator/otg/biome"
	"github.com/pelletier/go-toml"
	"github.com/segmentio/fasthash/fnv1a"
)

// ErrInvalidPreset is returned when a preset holds values outside of their valid range.
var ErrInvalidPreset = errors.New("invalid preset")

// Preset is a complete set of generation settings for a world.
type Preset struct {
	Name        string `toml:"name"`
	Description string `toml:"description"`
	// World holds the settings that apply to the whole world.
	World WorldConfig `toml:"world"`
	// Groups are the biome groups land is divided into before biomes are picked.
	Groups []Group `toml:"groups"`
	// Biomes are the biomes of the preset. The order decides the ID of each biome.
	Biomes []biome.Config `toml:"biomes"`
	// Structures holds the spacing of the host structures that may generate in the world.
	Structures []StructureConfig `toml:"structures"`

	validated   bool
	registry    *biome.Registry
	groups      []ResolvedGroup
	spacing     []world.StructureSpacing
	ocean       uint16
	frozenOcean uint16
	fingerprint uint64
}

// Group is a set of biomes that are placed together.
type Group struct {
	Name string `toml:"name"`
	// Rarity is the weight of the group compared to other groups of the same temperature.
	Rarity int `toml:"rarity"`
	// Cold groups are only placed on land that was marked icy, and other groups only on land that was not.
	Cold   bool     `toml:"cold"`
	Biomes []string `toml:"biomes"`
}

// ResolvedGroup is a Group with its biome names resolved to IDs.
type ResolvedGroup struct {
	Name   string
	Rarity int
	Cold   bool
	Biomes []uint16
	// Weight is the sum of the rarities of Biomes.
	Weight int
}

// Default returns the built-in preset. The preset returned is validated.
func Default() *Preset {
	p := &Preset{
		Name:        "Default",
		Description: "Temperate continents with oceans, rivers and icy regions.",
		World:       DefaultWorldConfig(),
		Groups: []Group{
			{Name: "Normal", Rarity: 98, Biomes: []string{biome.Plains, biome.Forest, biome.BirchForest, biome.Mountains, biome.Swamp}},
			{Name: "Hot", Rarity: 40, Biomes: []string{biome.Desert, biome.Plains}},
			{Name: "Cold", Rarity: 80, Biomes: []string{biome.Taiga, biome.Mountains}},
			{Name: "Ice", Rarity: 100, Cold: true, Biomes: []string{biome.IcePlains, biome.Taiga}},
		},
		Biomes:     biome.Defaults(),
		Structures: DefaultStructures(),
	}
	if err := p.Validate(); err != nil {
		panic(fmt.Errorf("built-in preset: %w", err))
	}
	return p
}

// Decode decodes a preset from TOML data and validates it. Values missing from data are taken from the
// built-in preset.
func Decode(data []byte) (*Preset, error) {
	p := &Preset{World: DefaultWorldConfig()}
	if err := toml.Unmarshal(data, p); err != nil {
		return nil, fmt.Errorf("decode preset: %w", err)
	}
	if len(p.Biomes) == 0 {
		p.Biomes = biome.Defaults()
		if len(p.Groups) == 0 {
			p.Groups = Default().Groups
		}
	}
	if p.Structures == nil {
		p.Structures = DefaultStructures()
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}

// Load reads and decodes the preset file at path.
func Load(path string) (*Preset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read preset: %w", err)
	}
	p, err := Decode(data)
	if err != nil {
		return nil, fmt.Errorf("preset %v: %w", path, err)
	}
	return p, nil
}

// Encode encodes the preset as TOML.
func (p *Preset) Encode() ([]byte, error) {
	return toml.Marshal(*p)
}

// Validate checks the preset and resolves its biomes, groups and structures. Presets must be validated
// before they are used for generation. Validate returns an error wrapping ErrInvalidPreset, or one of the
// errors of the biome package, if the preset cannot be used.
func (p *Preset) Validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return fmt.Errorf("%w: preset has no name", ErrInvalidPreset)
	}
	if err := p.World.Validate(); err != nil {
		return err
	}
	reg, err := biome.NewRegistry(p.Biomes, p.World.DefaultRiver, p.World.HeightCap)
	if err != nil {
		return err
	}
	ocean, ok := reg.ByName(p.World.OceanBiome)
	if !ok {
		return fmt.Errorf("ocean biome: %w: %v", biome.ErrUnknownBiome, p.World.OceanBiome)
	}
	frozenOcean := ocean
	if p.World.FrozenOceanBiome != "" {
		if frozenOcean, ok = reg.ByName(p.World.FrozenOceanBiome); !ok {
			return fmt.Errorf("frozen ocean biome: %w: %v", biome.ErrUnknownBiome, p.World.FrozenOceanBiome)
		}
	}

	if len(p.Groups) == 0 {
		return fmt.Errorf("%w: preset has no biome groups", ErrInvalidPreset)
	}
	groups := make([]ResolvedGroup, 0, len(p.Groups))
	for _, g := range p.Groups {
		if g.Rarity <= 0 {
			return fmt.Errorf("%w: group %v must have a positive rarity", ErrInvalidPreset, g.Name)
		}
		rg := ResolvedGroup{Name: g.Name, Rarity: g.Rarity, Cold: g.Cold}
		for _, name := range g.Biomes {
			b, ok := reg.ByName(name)
			if !ok {
				return fmt.Errorf("group %v: %w: %v", g.Name, biome.ErrUnknownBiome, name)
			}
			if b.Rarity <= 0 {
				continue
			}
			rg.Biomes = append(rg.Biomes, b.ID)
			rg.Weight += b.Rarity
		}
		if rg.Weight == 0 {
			return fmt.Errorf("%w: group %v holds no biome with a positive rarity", ErrInvalidPreset, g.Name)
		}
		groups = append(groups, rg)
	}

	spacing := make([]world.StructureSpacing, 0, len(p.Structures))
	seen := make(map[string]struct{}, len(p.Structures))
	for _, s := range p.Structures {
		sp, err := s.resolve()
		if err != nil {
			return err
		}
		if _, ok := seen[sp.Name]; ok {
			return fmt.Errorf("%w: structure %v configured twice", ErrInvalidPreset, sp.Name)
		}
		seen[sp.Name] = struct{}{}
		spacing = append(spacing, sp)
	}

	p.registry, p.groups, p.spacing = reg, groups, spacing
	p.ocean, p.frozenOcean = ocean.ID, frozenOcean.ID
	p.fingerprint = fnv1a.HashString64(fmt.Sprintf("%v|%+v|%+v|%+v|%+v", p.Name, p.World, p.Groups, p.Biomes, p.Structures))
	p.validated = true
	return nil
}

// Validated reports if Validate succeeded for the preset.
func (p *Preset) Validated() bool {
	return p.validated
}

func (p *Preset) mustBeValidated() {
	if !p.validated {
		panic("preset: " + p.Name + " used before Validate")
	}
}

// Registry returns the biomes of the preset.
func (p *Preset) Registry() *biome.Registry {
	p.mustBeValidated()
	return p.registry
}

// ResolvedGroups returns the biome groups of the preset with their biomes resolved.
func (p *Preset) ResolvedGroups() []ResolvedGroup {
	p.mustBeValidated()
	return p.groups
}

// Spacing returns the spacing of all structures configured in the preset.
func (p *Preset) Spacing() []world.StructureSpacing {
	p.mustBeValidated()
	return p.spacing
}

// OceanBiome returns the IDs of the biomes placed in oceans and in oceans that were marked icy.
func (p *Preset) OceanBiome() (ocean, frozen uint16) {
	p.mustBeValidated()
	return p.ocean, p.frozenOcean
}

// Fingerprint returns a hash of all settings of the preset. Presets with equal fingerprints generate equal
// worlds.
func (p *Preset) Fingerprint() uint64 {
	p.mustBeValidated()
	return p.fingerprint
}
