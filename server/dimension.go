package server

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// ErrInvalidDimensions is returned when a dimension config holds values that cannot be used.
var ErrInvalidDimensions = errors.New("invalid dimension config")

// DimensionConfig lists the worlds generated and the preset and seed each of them uses. It is stored as YAML.
type DimensionConfig struct {
	Version int `yaml:"version"`
	// ModpackName is the name of the set of presets the config was made for. It is informational only.
	ModpackName string `yaml:"modpack_name,omitempty"`
	// Overworld, Nether and End configure the standard dimensions. Dimensions with an empty preset are not
	// generated by the engine.
	Overworld Dimension `yaml:"overworld"`
	Nether    Dimension `yaml:"nether"`
	End       Dimension `yaml:"end"`
	// Dimensions holds additional dimensions, each with a unique name.
	Dimensions []Dimension `yaml:"dimensions,omitempty"`
}

// Dimension configures a single generated world.
type Dimension struct {
	Name string `yaml:"name,omitempty"`
	// Preset is the name of the preset the world is generated with.
	Preset string `yaml:"preset"`
	// Seed is the world seed. A seed of -1 uses the seed of the engine.
	Seed int64 `yaml:"seed"`

	// PortalBlocks, PortalColor, PortalMob and PortalIgnitionSource describe the portal leading to the
	// dimension. The engine only carries them for the host.
	PortalBlocks         []string `yaml:"portal_blocks,omitempty"`
	PortalColor          string   `yaml:"portal_color,omitempty"`
	PortalMob            string   `yaml:"portal_mob,omitempty"`
	PortalIgnitionSource string   `yaml:"portal_ignition_source,omitempty"`
}

// DefaultDimensionConfig returns a config generating only the overworld with the built-in preset.
func DefaultDimensionConfig() DimensionConfig {
	return DimensionConfig{
		Version:   1,
		Overworld: Dimension{Name: "overworld", Preset: "Default", Seed: -1},
		Nether:    Dimension{Name: "nether", Seed: -1},
		End:       Dimension{Name: "end", Seed: -1},
	}
}

// LoadDimensionConfig reads the dimension config at path. If path is empty, the default config is returned.
func LoadDimensionConfig(path string) (DimensionConfig, error) {
	conf := DefaultDimensionConfig()
	if strings.TrimSpace(path) == "" {
		return conf, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return conf, fmt.Errorf("read dimension config: %w", err)
	}
	if err := yaml.Unmarshal(data, &conf); err != nil {
		return conf, fmt.Errorf("decode dimension config %v: %w", path, err)
	}
	if err := conf.Validate(); err != nil {
		return conf, fmt.Errorf("dimension config %v: %w", path, err)
	}
	return conf, nil
}

// Encode encodes the config as YAML.
func (c DimensionConfig) Encode() ([]byte, error) {
	return yaml.Marshal(c)
}

// Worlds returns all dimensions that are generated, with the standard dimensions first. Standard dimensions
// without a name are named after their slot.
func (c DimensionConfig) Worlds() []Dimension {
	var worlds []Dimension
	for _, d := range []struct {
		name string
		dim  Dimension
	}{{"overworld", c.Overworld}, {"nether", c.Nether}, {"end", c.End}} {
		if strings.TrimSpace(d.dim.Preset) == "" {
			continue
		}
		if strings.TrimSpace(d.dim.Name) == "" {
			d.dim.Name = d.name
		}
		worlds = append(worlds, d.dim)
	}
	for _, d := range c.Dimensions {
		if strings.TrimSpace(d.Preset) != "" {
			worlds = append(worlds, d)
		}
	}
	return worlds
}

// Validate checks that every generated dimension has a unique name and at least one dimension is generated.
func (c DimensionConfig) Validate() error {
	worlds := c.Worlds()
	if len(worlds) == 0 {
		return fmt.Errorf("%w: no dimension has a preset", ErrInvalidDimensions)
	}
	seen := make(map[string]struct{}, len(worlds))
	for _, d := range worlds {
		name := strings.ToLower(strings.TrimSpace(d.Name))
		if name == "" {
			return fmt.Errorf("%w: dimension with preset %v has no name", ErrInvalidDimensions, d.Preset)
		}
		if _, ok := seen[name]; ok {
			return fmt.Errorf("%w: dimension %v configured twice", ErrInvalidDimensions, d.Name)
		}
		seen[name] = struct{}{}
	}
	return nil
}
