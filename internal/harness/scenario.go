package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/efaps/efql/internal/eql"
)

// Scenario is one compile-and-check case.
type Scenario struct {
	// Name identifies the scenario and names its golden file.
	Name string `yaml:"name"`

	Description string `yaml:"description"`

	// Model is a CUE model directory or file, relative to the scenario
	// file.
	Model string `yaml:"model"`

	// Seed statements populate the database. Without them the query is
	// compiled but not executed.
	Seed []string `yaml:"seed,omitempty"`

	Options Options `yaml:"options,omitempty"`

	Query *eql.Query `yaml:"query"`

	Assertions []Assertion `yaml:"assertions"`
}

// Options are the compiler settings of a scenario.
type Options struct {
	Dialect   string `yaml:"dialect,omitempty"`
	Ambiguity string `yaml:"ambiguity,omitempty"`
	MaxDepth  int    `yaml:"max_depth,omitempty"`
}

// Assertion checks one property of the run.
type Assertion struct {
	// Type is one of the Assert* constants.
	Type string `yaml:"type"`

	// Value is the substring for sql_contains, sql_not_contains and
	// error_contains.
	Value string `yaml:"value,omitempty"`

	// Statement selects the statement checked by SQL assertions.
	Statement int `yaml:"statement,omitempty"`

	// Count is the expected number for alias_count, join_count and
	// row_count.
	Count int `yaml:"count,omitempty"`

	// OIDs are the expected row instances for rows, in order.
	OIDs []string `yaml:"oids,omitempty"`
}

// Assertion types.
const (
	AssertSQLContains    = "sql_contains"
	AssertSQLNotContains = "sql_not_contains"
	AssertAliasCount     = "alias_count"
	AssertJoinCount      = "join_count"
	AssertErrorContains  = "error_contains"
	AssertRowCount       = "row_count"
	AssertRows           = "rows"
)

// LoadScenario reads a scenario file. Unknown fields are rejected and the
// model path is resolved against the file's directory.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if scenario.Model != "" && !filepath.IsAbs(scenario.Model) {
		scenario.Model = filepath.Join(filepath.Dir(path), scenario.Model)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &scenario, nil
}

// LoadScenarios reads every .yaml file of dir in name order.
func LoadScenarios(dir string) ([]*Scenario, error) {
	files, err := filepath.Glob(filepath.Join(dir, "*.yaml"))
	if err != nil {
		return nil, err
	}
	scenarios := make([]*Scenario, 0, len(files))
	for _, f := range files {
		s, err := LoadScenario(f)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", filepath.Base(f), err)
		}
		scenarios = append(scenarios, s)
	}
	return scenarios, nil
}

func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Description == "" {
		return fmt.Errorf("description is required")
	}
	if s.Model == "" {
		return fmt.Errorf("model is required")
	}
	if _, err := os.Stat(s.Model); err != nil {
		return fmt.Errorf("model not found: %s", s.Model)
	}
	if s.Query == nil {
		return fmt.Errorf("query is required")
	}
	if len(s.Assertions) == 0 {
		return fmt.Errorf("assertions list is required and must be non-empty")
	}
	for i := range s.Assertions {
		if err := validateAssertion(i, &s.Assertions[i], len(s.Seed) > 0); err != nil {
			return err
		}
	}
	return nil
}

func validateAssertion(index int, a *Assertion, seeded bool) error {
	switch a.Type {
	case "":
		return fmt.Errorf("assertions[%d]: type is required", index)
	case AssertSQLContains, AssertSQLNotContains, AssertErrorContains:
		if a.Value == "" {
			return fmt.Errorf("assertions[%d]: value is required for %s", index, a.Type)
		}
	case AssertAliasCount, AssertJoinCount:
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative for %s", index, a.Type)
		}
	case AssertRowCount, AssertRows:
		if !seeded {
			return fmt.Errorf("assertions[%d]: %s needs seed statements", index, a.Type)
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}
	if a.Statement < 0 {
		return fmt.Errorf("assertions[%d]: statement must be non-negative", index)
	}
	return nil
}
