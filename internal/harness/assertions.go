package harness

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/ltuala/student-management/internal/roster"
	"github.com/ltuala/student-management/internal/student"
)

// AssertionError is returned when an assertion fails.
// It carries the final table so the failure can be read on its own.
type AssertionError struct {
	Type     string
	Expected string
	Actual   string
	Final    []student.Student
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)

	fmt.Fprintf(&buf, "\nFinal table:\n")
	for _, row := range e.Final {
		fmt.Fprintf(&buf, "  [%d] %q %q %q\n", row.ID, row.Name, row.Course, row.Mobile)
	}

	return buf.String()
}

// AssertionContext provides the state assertions are evaluated against.
type AssertionContext struct {
	Ctx     context.Context
	Records roster.Records
	Final   []student.Student
	Seeded  []student.Student
	Refs    map[int]int64
}

// EvaluateAssertions evaluates all assertions and returns a message for each
// one that failed.
func EvaluateAssertions(assertions []Assertion, actx *AssertionContext) []string {
	var errors []string

	for i, assertion := range assertions {
		var err error

		switch assertion.Type {
		case AssertRowCount:
			err = assertRowCount(actx.Final, assertion)
		case AssertContains:
			err = assertContains(actx, assertion)
		case AssertAbsent:
			err = assertAbsent(actx, assertion)
		case AssertFindCount:
			err = assertFindCount(actx, assertion)
		case AssertUnchanged:
			err = assertUnchanged(actx, assertion)
		default:
			err = fmt.Errorf("assertion[%d]: unknown assertion type %q", i, assertion.Type)
		}

		if err != nil {
			errors = append(errors, err.Error())
		}
	}

	return errors
}

func assertRowCount(final []student.Student, assertion Assertion) error {
	if len(final) == *assertion.Count {
		return nil
	}
	return &AssertionError{
		Type:     AssertRowCount,
		Expected: fmt.Sprintf("%d row(s)", *assertion.Count),
		Actual:   fmt.Sprintf("%d row(s)", len(final)),
		Final:    final,
	}
}

func assertContains(actx *AssertionContext, assertion Assertion) error {
	where := resolveWhere(actx, assertion)
	n := countMatches(actx.Final, where)

	if assertion.Count == nil && n > 0 {
		return nil
	}
	if assertion.Count != nil && n == *assertion.Count {
		return nil
	}

	expected := "at least one row matching " + formatWhere(where)
	if assertion.Count != nil {
		expected = fmt.Sprintf("%d row(s) matching %s", *assertion.Count, formatWhere(where))
	}
	return &AssertionError{
		Type:     AssertContains,
		Expected: expected,
		Actual:   fmt.Sprintf("%d matching row(s)", n),
		Final:    actx.Final,
	}
}

func assertAbsent(actx *AssertionContext, assertion Assertion) error {
	where := resolveWhere(actx, assertion)
	n := countMatches(actx.Final, where)
	if n == 0 {
		return nil
	}
	return &AssertionError{
		Type:     AssertAbsent,
		Expected: "no row matching " + formatWhere(where),
		Actual:   fmt.Sprintf("%d matching row(s)", n),
		Final:    actx.Final,
	}
}

func assertFindCount(actx *AssertionContext, assertion Assertion) error {
	rows, err := actx.Records.FindByName(actx.Ctx, assertion.Name)
	if err != nil {
		return fmt.Errorf("find_count %q: %w", assertion.Name, err)
	}
	if len(rows) == *assertion.Count {
		return nil
	}
	return &AssertionError{
		Type:     AssertFindCount,
		Expected: fmt.Sprintf("%d row(s) named %q", *assertion.Count, assertion.Name),
		Actual:   fmt.Sprintf("%d row(s)", len(rows)),
		Final:    actx.Final,
	}
}

func assertUnchanged(actx *AssertionContext, assertion Assertion) error {
	for _, n := range assertion.Seed {
		want := actx.Seeded[n-1]
		got, ok := findByID(actx.Final, want.ID)
		if !ok {
			return &AssertionError{
				Type:     AssertUnchanged,
				Expected: fmt.Sprintf("seed %d (id %d) still present", n, want.ID),
				Actual:   "row missing",
				Final:    actx.Final,
			}
		}
		if got != want {
			return &AssertionError{
				Type:     AssertUnchanged,
				Expected: fmt.Sprintf("seed %d = %+v", n, want),
				Actual:   fmt.Sprintf("%+v", got),
				Final:    actx.Final,
			}
		}
	}
	return nil
}

// resolveWhere merges the ref id into the where map.
func resolveWhere(actx *AssertionContext, assertion Assertion) map[string]string {
	where := make(map[string]string, len(assertion.Where)+1)
	for k, v := range assertion.Where {
		where[k] = v
	}
	if assertion.Ref != 0 {
		where["id"] = strconv.FormatInt(actx.Refs[assertion.Ref], 10)
	}
	return where
}

func countMatches(rows []student.Student, where map[string]string) int {
	n := 0
	for _, row := range rows {
		if matchRow(row, where) {
			n++
		}
	}
	return n
}

func matchRow(row student.Student, where map[string]string) bool {
	for field, want := range where {
		var got string
		switch field {
		case "id":
			got = strconv.FormatInt(row.ID, 10)
		case "name":
			got = row.Name
		case "course":
			got = row.Course
		case "mobile":
			got = row.Mobile
		default:
			return false
		}
		if got != want {
			return false
		}
	}
	return true
}

func findByID(rows []student.Student, id int64) (student.Student, bool) {
	for _, row := range rows {
		if row.ID == id {
			return row, true
		}
	}
	return student.Student{}, false
}

// formatWhere renders a where map with sorted keys for stable messages.
func formatWhere(where map[string]string) string {
	keys := make([]string, 0, len(where))
	for k := range where {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = fmt.Sprintf("%s=%q", k, where[k])
	}
	return "{" + strings.Join(parts, ", ") + "}"
}
