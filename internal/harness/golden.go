package harness

import (
	"context"
	"encoding/json"
	"sort"
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/ltuala/student-management/internal/student"
)

// TraceSnapshot captures a scenario execution for golden comparison.
type TraceSnapshot struct {
	ScenarioName string            `json:"scenario_name"`
	Pass         bool              `json:"pass"`
	Trace        []TraceEvent      `json:"trace"`
	Final        []student.Student `json:"final"`
}

// Marshal renders the snapshot as indented JSON with a trailing newline.
// Final rows are ordered by id.
func (s *TraceSnapshot) Marshal() ([]byte, error) {
	final := append([]student.Student(nil), s.Final...)
	sort.Slice(final, func(i, j int) bool { return final[i].ID < final[j].ID })
	if final == nil {
		final = []student.Student{}
	}

	out := *s
	out.Final = final
	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}

// RunWithGolden executes a scenario and compares its snapshot against
// testdata/golden/{scenario.Name}.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
func RunWithGolden(t *testing.T, scenario *Scenario) error {
	t.Helper()

	result, err := Run(context.Background(), scenario)
	if err != nil {
		return err
	}
	return AssertGolden(t, scenario.Name, result)
}

// AssertGolden compares an existing result against a golden file without
// re-running the scenario.
func AssertGolden(t *testing.T, scenarioName string, result *Result) error {
	t.Helper()

	snapshot := TraceSnapshot{
		ScenarioName: scenarioName,
		Pass:         result.Pass,
		Trace:        result.Trace,
		Final:        result.Final,
	}
	data, err := snapshot.Marshal()
	if err != nil {
		return err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, scenarioName, data)

	return nil
}
