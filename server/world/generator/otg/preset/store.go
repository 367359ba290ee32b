package preset

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
)

var (
	// ErrUnknownPreset is returned when a preset name cannot be found in a Store.
	ErrUnknownPreset = errors.New("unknown preset")
	// ErrInvalidName is returned when a preset is saved under an empty name or a name that cannot be used as
	// a file name.
	ErrInvalidName = errors.New("invalid preset name")
)

const fileExt = ".toml"

// Store holds the presets found in a folder, one TOML file per preset. The built-in preset is always
// available under its name unless a file overrides it. Store is safe for concurrent use.
type Store struct {
	mu      sync.RWMutex
	dir     string
	presets map[string]*Preset
}

// LoadStore loads all presets in the folder at dir. If the folder does not exist yet, it is created and
// the built-in preset is written to it. An error is returned if any preset in the folder is invalid.
func LoadStore(dir string) (*Store, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, errors.New("preset folder must not be empty")
	}
	s := &Store{dir: dir}
	if err := s.Reload(); err != nil {
		return nil, err
	}
	return s, nil
}

// Reload reads all presets from disk again. The presets held stay unchanged if reading fails. Worlds already
// created keep the preset they were created with; structure caches are keyed by the preset fingerprint, so a
// world created from a changed preset starts with a fresh cache.
func (s *Store) Reload() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := os.ReadDir(s.dir)
	if errors.Is(err, fs.ErrNotExist) {
		if err := s.writeLocked(Default()); err != nil {
			return err
		}
		entries, err = os.ReadDir(s.dir)
	}
	if err != nil {
		return fmt.Errorf("read preset folder: %w", err)
	}

	presets := map[string]*Preset{normalizeName(Default().Name): Default()}
	for _, e := range entries {
		if e.IsDir() || !strings.EqualFold(filepath.Ext(e.Name()), fileExt) {
			continue
		}
		p, err := Load(filepath.Join(s.dir, e.Name()))
		if err != nil {
			return err
		}
		presets[normalizeName(p.Name)] = p
	}
	s.presets = presets
	return nil
}

// Get returns the preset with the name passed. Names are case-insensitive. An empty name returns the
// built-in preset, or the file overriding it.
func (s *Store) Get(name string) (*Preset, error) {
	if strings.TrimSpace(name) == "" {
		name = Default().Name
	}
	s.mu.RLock()
	p, ok := s.presets[normalizeName(name)]
	s.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %v", ErrUnknownPreset, name)
	}
	return p, nil
}

// Names returns the names of all presets in a case-insensitive sorted order.
func (s *Store) Names() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	names := make([]string, 0, len(s.presets))
	for _, p := range s.presets {
		names = append(names, p.Name)
	}
	sortNames(names)
	return names
}

// Save validates p and writes it to the folder of the store, replacing a preset with the same name.
func (s *Store) Save(p *Preset) error {
	name := strings.TrimSpace(p.Name)
	if name == "" || strings.ContainsAny(name, `/\`) {
		return fmt.Errorf("%w: %q", ErrInvalidName, p.Name)
	}
	if err := p.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.writeLocked(p); err != nil {
		return err
	}
	s.presets[normalizeName(name)] = p
	return nil
}

func (s *Store) writeLocked(p *Preset) error {
	if err := os.MkdirAll(s.dir, 0777); err != nil {
		return fmt.Errorf("create preset folder: %w", err)
	}
	encoded, err := p.Encode()
	if err != nil {
		return fmt.Errorf("encode preset %v: %w", p.Name, err)
	}
	if err := os.WriteFile(filepath.Join(s.dir, p.Name+fileExt), encoded, 0644); err != nil {
		return fmt.Errorf("write preset %v: %w", p.Name, err)
	}
	return nil
}

func sortNames(names []string) {
	slices.SortFunc(names, func(a, b string) int {
		lowerA, lowerB := strings.ToLower(a), strings.ToLower(b)
		if lowerA == lowerB {
			return strings.Compare(a, b)
		}
		return strings.Compare(lowerA, lowerB)
	})
}

func normalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
