package perks

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/kibbyd/lifequest/internal/ability"
)

// #region catalog

type catalogFile struct {
	Perks []catalogPerk `yaml:"perks"`
}

type catalogPerk struct {
	ID    string             `yaml:"id"`
	Name  string             `yaml:"name"`
	Gates map[string]float64 `yaml:"gates"`
}

// ParseCatalog decodes perk definitions from YAML. Unlike engine state,
// the catalog is authored configuration, so structural problems are errors
// rather than something to repair silently.
func ParseCatalog(data []byte) ([]Definition, error) {
	var file catalogFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse perk catalog: %w", err)
	}

	seen := make(map[string]bool, len(file.Perks))
	defs := make([]Definition, 0, len(file.Perks))

	for i, perk := range file.Perks {
		if perk.ID == "" {
			return nil, fmt.Errorf("perk %d: missing id", i)
		}
		if seen[perk.ID] {
			return nil, fmt.Errorf("perk %q: duplicate id", perk.ID)
		}
		seen[perk.ID] = true

		gates := make(map[ability.StatKey]float64, len(perk.Gates))
		for stat, threshold := range perk.Gates {
			if !ability.IsStatKey(stat) {
				return nil, fmt.Errorf("perk %q: unknown gate stat %q", perk.ID, stat)
			}
			gates[ability.StatKey(stat)] = threshold
		}

		defs = append(defs, Definition{ID: perk.ID, Name: perk.Name, Gates: gates})
	}

	return defs, nil
}

// LoadCatalog reads and parses a perk catalog file.
func LoadCatalog(path string) ([]Definition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read perk catalog: %w", err)
	}
	return ParseCatalog(data)
}

// DefaultCatalog returns the built-in perk set, used when no catalog file
// is configured.
func DefaultCatalog() []Definition {
	return []Definition{
		{ID: "iron-grip", Name: "Iron Grip", Gates: map[ability.StatKey]float64{ability.Power: 12}},
		{ID: "steady-hand", Name: "Steady Hand", Gates: map[ability.StatKey]float64{ability.Accuracy: 12}},
		{ID: "night-owl", Name: "Night Owl", Gates: map[ability.StatKey]float64{ability.Grit: 11}},
		{ID: "marathon-mind", Name: "Marathon Mind", Gates: map[ability.StatKey]float64{ability.Cognition: 13, ability.Grit: 12}},
		{ID: "tactician", Name: "Tactician", Gates: map[ability.StatKey]float64{ability.Planning: 13}},
		{ID: "silver-tongue", Name: "Silver Tongue", Gates: map[ability.StatKey]float64{ability.Social: 12}},
	}
}

// FindDefinition looks a perk up by id.
func FindDefinition(catalog []Definition, id string) (Definition, bool) {
	for _, def := range catalog {
		if def.ID == id {
			return def, true
		}
	}
	return Definition{}, false
}

// #endregion catalog
