package harness

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/ltuala/student-management/internal/student"
)

// Scenario is a scripted sequence of record operations with assertions on
// the resulting table.
type Scenario struct {
	// Name uniquely identifies this scenario (and its golden file).
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Seed rows are inserted before the steps run. Ids are assigned by the
	// store; a seed row that sets id is rejected.
	Seed []student.Student `yaml:"seed,omitempty"`

	// Steps run in order, one record operation each.
	Steps []Step `yaml:"steps"`

	// Assertions are evaluated against the table after the last step.
	Assertions []Assertion `yaml:"assertions"`
}

// Step is one record operation.
type Step struct {
	// Op is one of insert, update, delete, find, list.
	Op string `yaml:"op"`

	// ID targets a row directly (update, delete).
	ID int64 `yaml:"id,omitempty"`

	// Ref targets the row created by an earlier insert step (1-based).
	Ref int `yaml:"ref,omitempty"`

	// Args holds name, course and mobile.
	Args map[string]string `yaml:"args,omitempty"`

	// Expect optionally checks the rows returned by find or list.
	Expect *Expect `yaml:"expect,omitempty"`
}

// Expect checks a step's returned rows.
type Expect struct {
	Count *int `yaml:"count"`
}

// Assertion validates the final table.
type Assertion struct {
	// Type is one of row_count, contains, absent, find_count, unchanged.
	Type string `yaml:"type"`

	// Where lists field values a row must equal (contains, absent).
	// Keys: id, name, course, mobile.
	Where map[string]string `yaml:"where,omitempty"`

	// Ref adds the id assigned by an insert step to Where.
	Ref int `yaml:"ref,omitempty"`

	// Name is the search term (find_count).
	Name string `yaml:"name,omitempty"`

	// Count is the expected number of rows (row_count, find_count, contains).
	Count *int `yaml:"count,omitempty"`

	// Seed lists 1-based seed rows that must be untouched (unchanged).
	Seed []int `yaml:"seed,omitempty"`
}

// Operation names.
const (
	OpInsert = "insert"
	OpUpdate = "update"
	OpDelete = "delete"
	OpFind   = "find"
	OpList   = "list"
)

// Assertion type constants.
const (
	AssertRowCount  = "row_count"
	AssertContains  = "contains"
	AssertAbsent    = "absent"
	AssertFindCount = "find_count"
	AssertUnchanged = "unchanged"
)

var argFields = map[string]bool{"name": true, "course": true, "mobile": true}

var whereFields = map[string]bool{"id": true, "name": true, "course": true, "mobile": true}

// LoadScenario reads and parses a scenario YAML file.
// Unknown fields and missing required fields are errors.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}
	return ParseScenario(data)
}

// ParseScenario decodes a scenario document and validates it.
func ParseScenario(data []byte) (*Scenario, error) {
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true) // Reject typos like "assertion:"
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	return &scenario, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}

	if s.Description == "" {
		return fmt.Errorf("description is required")
	}

	if len(s.Steps) == 0 {
		return fmt.Errorf("steps list is required and must be non-empty")
	}

	if len(s.Assertions) == 0 {
		return fmt.Errorf("assertions list is required and must be non-empty")
	}

	for i, row := range s.Seed {
		if row.ID != 0 {
			return fmt.Errorf("seed[%d]: id is assigned by the store and must not be set", i)
		}
	}

	for i, step := range s.Steps {
		if err := validateStep(s.Steps, i, step); err != nil {
			return err
		}
	}

	for i, a := range s.Assertions {
		if err := validateAssertion(s, i, a); err != nil {
			return err
		}
	}

	return nil
}

func validateStep(steps []Step, i int, step Step) error {
	for key := range step.Args {
		if !argFields[key] {
			return fmt.Errorf("steps[%d]: unknown arg %q", i, key)
		}
	}

	switch step.Op {
	case OpInsert, OpList:
		if step.ID != 0 || step.Ref != 0 {
			return fmt.Errorf("steps[%d]: %s takes no id or ref", i, step.Op)
		}
	case OpUpdate, OpDelete:
		if (step.ID == 0) == (step.Ref == 0) {
			return fmt.Errorf("steps[%d]: %s needs exactly one of id or ref", i, step.Op)
		}
		if step.Ref != 0 {
			if err := checkRef(steps, i, step.Ref); err != nil {
				return fmt.Errorf("steps[%d]: %w", i, err)
			}
		}
	case OpFind:
		if _, ok := step.Args["name"]; !ok {
			return fmt.Errorf("steps[%d]: find needs args.name", i)
		}
	case "":
		return fmt.Errorf("steps[%d]: op is required", i)
	default:
		return fmt.Errorf("steps[%d]: unknown op %q", i, step.Op)
	}

	if step.Expect != nil {
		if step.Op != OpFind && step.Op != OpList {
			return fmt.Errorf("steps[%d]: expect is only valid for find and list", i)
		}
		if step.Expect.Count == nil {
			return fmt.Errorf("steps[%d].expect: count is required", i)
		}
	}

	return nil
}

// checkRef verifies that ref points at an insert step before step i.
func checkRef(steps []Step, i, ref int) error {
	if ref < 1 || ref > i {
		return fmt.Errorf("ref %d must point at an earlier step", ref)
	}
	if steps[ref-1].Op != OpInsert {
		return fmt.Errorf("ref %d points at %s, not insert", ref, steps[ref-1].Op)
	}
	return nil
}

func validateAssertion(s *Scenario, i int, a Assertion) error {
	for key := range a.Where {
		if !whereFields[key] {
			return fmt.Errorf("assertions[%d]: unknown where field %q", i, key)
		}
	}
	if a.Ref != 0 {
		if err := checkRef(s.Steps, len(s.Steps), a.Ref); err != nil {
			return fmt.Errorf("assertions[%d]: %w", i, err)
		}
	}

	switch a.Type {
	case AssertRowCount:
		if a.Count == nil {
			return fmt.Errorf("assertions[%d]: count is required for row_count", i)
		}
	case AssertContains, AssertAbsent:
		if len(a.Where) == 0 && a.Ref == 0 {
			return fmt.Errorf("assertions[%d]: where or ref is required for %s", i, a.Type)
		}
	case AssertFindCount:
		if a.Name == "" {
			return fmt.Errorf("assertions[%d]: name is required for find_count", i)
		}
		if a.Count == nil {
			return fmt.Errorf("assertions[%d]: count is required for find_count", i)
		}
	case AssertUnchanged:
		if len(a.Seed) == 0 {
			return fmt.Errorf("assertions[%d]: seed list is required for unchanged", i)
		}
		for _, n := range a.Seed {
			if n < 1 || n > len(s.Seed) {
				return fmt.Errorf("assertions[%d]: seed %d out of range 1..%d", i, n, len(s.Seed))
			}
		}
	case "":
		return fmt.Errorf("assertions[%d]: type is required", i)
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", i, a.Type)
	}

	if a.Count != nil && *a.Count < 0 {
		return fmt.Errorf("assertions[%d]: count must be non-negative", i)
	}

	return nil
}
