package classify

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed tables.yaml
var defaultTablesYAML []byte

// Category is a named topic with the keyword phrases that vote for it.
type Category struct {
	Name     string   `yaml:"name"`
	Keywords []string `yaml:"keywords"`
}

// SourceRule maps URL substrings to a platform name.
type SourceRule struct {
	Name     string   `yaml:"name"`
	Patterns []string `yaml:"patterns"`
}

// SourceKeywords maps content keywords to a platform name.
type SourceKeywords struct {
	Name     string   `yaml:"name"`
	Keywords []string `yaml:"keywords"`
}

// Tables holds the keyword data the classifier runs on. A Tables value is
// never mutated after it has been loaded.
type Tables struct {
	Categories     []Category       `yaml:"categories"`
	SourceRules    []SourceRule     `yaml:"source_rules"`
	SourceKeywords []SourceKeywords `yaml:"source_keywords"`
}

// DefaultTables returns the tables compiled into the binary.
func DefaultTables() (*Tables, error) {
	return ParseTables(defaultTablesYAML)
}

// LoadTables reads tables from a YAML file. An empty path returns the
// built-in tables.
func LoadTables(path string) (*Tables, error) {
	if path == "" {
		return DefaultTables()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read keyword tables: %w", err)
	}
	return ParseTables(data)
}

// ParseTables decodes and validates YAML keyword tables.
func ParseTables(data []byte) (*Tables, error) {
	var t Tables
	if err := yaml.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("failed to parse keyword tables: %w", err)
	}
	if err := t.validate(); err != nil {
		return nil, err
	}
	return &t, nil
}

func (t *Tables) validate() error {
	if len(t.Categories) == 0 {
		return fmt.Errorf("keyword tables: no categories defined")
	}
	seen := make(map[string]bool, len(t.Categories))
	for i, c := range t.Categories {
		if c.Name == "" {
			return fmt.Errorf("keyword tables: category %d has no name", i)
		}
		if seen[c.Name] {
			return fmt.Errorf("keyword tables: duplicate category %q", c.Name)
		}
		seen[c.Name] = true
		for _, kw := range c.Keywords {
			if kw == "" {
				return fmt.Errorf("keyword tables: empty keyword in category %q", c.Name)
			}
		}
	}
	for _, r := range t.SourceRules {
		if r.Name == "" || len(r.Patterns) == 0 {
			return fmt.Errorf("keyword tables: incomplete source rule %q", r.Name)
		}
	}
	for _, s := range t.SourceKeywords {
		if s.Name == "" {
			return fmt.Errorf("keyword tables: source keywords without a name")
		}
	}
	return nil
}

// CategoryNames lists the categories in table order.
func (t *Tables) CategoryNames() []string {
	names := make([]string, len(t.Categories))
	for i, c := range t.Categories {
		names[i] = c.Name
	}
	return names
}
