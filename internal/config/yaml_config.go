package config

import (
	"os"

	"gopkg.in/yaml.v3"
)

// DefaultGenreCategoryID is the Yahoo! Shopping genre for books.
const DefaultGenreCategoryID = 10002

// YAMLConfig represents the structure of the optional nagato.yaml file.
// Lists of phrases are easier to manage in YAML than in env vars.
type YAMLConfig struct {
	Phrases []string     `yaml:"phrases"`
	Search  SearchConfig `yaml:"search"`
}

// SearchConfig tunes the book search.
type SearchConfig struct {
	GenreCategoryID int    `yaml:"genre_category_id"`
	Sort            string `yaml:"sort,omitempty"` // e.g. "-score", "+price"
}

// LoadYAMLConfig loads the YAML configuration file at path.
// Returns nil without error if the file doesn't exist.
func LoadYAMLConfig(path string) (*YAMLConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			// Config file is optional
			return nil, nil
		}
		return nil, err
	}

	var cfg YAMLConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	// Set defaults
	if cfg.Search.GenreCategoryID == 0 {
		cfg.Search.GenreCategoryID = DefaultGenreCategoryID
	}

	return &cfg, nil
}

// GetPhrases returns the configured phrases, or nil to use the built-in list.
func (c *YAMLConfig) GetPhrases() []string {
	if c == nil {
		return nil
	}
	return c.Phrases
}

// GetSearch returns the search tuning, with defaults for a missing file.
func (c *YAMLConfig) GetSearch() SearchConfig {
	if c == nil {
		return SearchConfig{GenreCategoryID: DefaultGenreCategoryID}
	}
	return c.Search
}
