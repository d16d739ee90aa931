package config

import (
	"os"

	"gopkg.in/yaml.v3"
)

// IndicatorsConfig holds the keyword lists behind the special-indicator
// badges on the occupancy print sheet. Matching is case-insensitive
// substring search over free-text reservation fields; the lists are
// tunable so staff can adjust the heuristics without a deploy.
type IndicatorsConfig struct {
	Birthday     []string `yaml:"birthday"`
	Allergy      []string `yaml:"allergy"`
	Vegetarian   []string `yaml:"vegetarian"`
	ExtendedStay []string `yaml:"extended_stay"`
}

// DefaultIndicators returns the built-in keyword lists.
func DefaultIndicators() *IndicatorsConfig {
	return &IndicatorsConfig{
		Birthday:     []string{"geburtstag", "birthday", "jubiläum"},
		Allergy:      []string{"allerg", "unverträglich", "gluten", "laktose"},
		Vegetarian:   []string{"vegetar", "vegan"},
		ExtendedStay: []string{"verlängert", "ganzer abend", "extended"},
	}
}

// LoadIndicators reads the indicator keyword lists from a YAML file.
// Empty lists fall back to the built-in defaults.
func LoadIndicators(path string) (*IndicatorsConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg IndicatorsConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	defaults := DefaultIndicators()
	if len(cfg.Birthday) == 0 {
		cfg.Birthday = defaults.Birthday
	}
	if len(cfg.Allergy) == 0 {
		cfg.Allergy = defaults.Allergy
	}
	if len(cfg.Vegetarian) == 0 {
		cfg.Vegetarian = defaults.Vegetarian
	}
	if len(cfg.ExtendedStay) == 0 {
		cfg.ExtendedStay = defaults.ExtendedStay
	}
	return &cfg, nil
}
