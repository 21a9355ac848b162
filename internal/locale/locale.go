package locale

import (
	_ "embed"
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/vytor/stormstats/internal/logger"
)

//go:embed tables.yaml
var embeddedTables []byte

type tablesFile struct {
	Heroes map[string]string `yaml:"heroes"`
	Maps   map[string]string `yaml:"maps"`
}

// Tables is an immutable pair of display-name lookups. Build it once at
// startup and share it; lookups never write.
type Tables struct {
	heroes map[string]string
	maps   map[string]string
}

// Default parses the embedded tables.
func Default() (*Tables, error) {
	return Parse(embeddedTables)
}

// Load reads tables from path, or the embedded tables when path is empty.
func Load(path string) (*Tables, error) {
	log := logger.Default().WithPrefix("locale")
	if path == "" {
		t, err := Default()
		if err != nil {
			return nil, err
		}
		log.Debug("loaded embedded tables: %d heroes, %d maps", len(t.heroes), len(t.maps))
		return t, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read locale file: %w", err)
	}
	t, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	log.Info("loaded locale file %s: %d heroes, %d maps", path, len(t.heroes), len(t.maps))
	return t, nil
}

// Parse decodes a YAML document with heroes and maps sections and checks
// that translating twice gives the same name as translating once.
func Parse(data []byte) (*Tables, error) {
	var f tablesFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse locale tables: %w", err)
	}
	t := &Tables{
		heroes: copyTable(f.Heroes),
		maps:   copyTable(f.Maps),
	}
	if err := checkIdempotent("heroes", t.heroes); err != nil {
		return nil, err
	}
	if err := checkIdempotent("maps", t.maps); err != nil {
		return nil, err
	}
	return t, nil
}

// New builds tables from in-memory maps. The maps are copied.
func New(heroes, maps map[string]string) (*Tables, error) {
	t := &Tables{heroes: copyTable(heroes), maps: copyTable(maps)}
	if err := checkIdempotent("heroes", t.heroes); err != nil {
		return nil, err
	}
	if err := checkIdempotent("maps", t.maps); err != nil {
		return nil, err
	}
	return t, nil
}

// Hero returns the display name for a hero, or name when unmapped.
func (t *Tables) Hero(name string) string {
	return lookup(t.heroes, name)
}

// Map returns the display name for a battleground, or name when unmapped.
func (t *Tables) Map(name string) string {
	return lookup(t.maps, name)
}

func lookup(table map[string]string, name string) string {
	if v, ok := table[name]; ok {
		return v
	}
	return name
}

func copyTable(in map[string]string) map[string]string {
	out := make(map[string]string, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

// a display value may only be a key if it maps to itself
func checkIdempotent(section string, table map[string]string) error {
	keys := make([]string, 0, len(table))
	for k := range table {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		v := table[k]
		if v == "" {
			return fmt.Errorf("locale %s: empty display name for %q", section, k)
		}
		if next, ok := table[v]; ok && next != v {
			return fmt.Errorf("locale %s: %q -> %q -> %q is not stable", section, k, v, next)
		}
	}
	return nil
}
