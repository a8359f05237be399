// Package harness runs scripted roster scenarios against a fresh store.
//
// # Scenario Format
//
// Scenarios are YAML files:
//
//	name: round_trip
//	description: "Insert, update and delete one record"
//	seed:
//	  - {name: Ann, course: Biology, mobile: "111"}
//	steps:
//	  - op: insert
//	    args: {name: Bob, course: Math, mobile: "555-1234"}
//	  - op: update
//	    ref: 1
//	    args: {course: Physics}
//	  - op: find
//	    args: {name: Bob}
//	    expect: {count: 1}
//	  - op: delete
//	    ref: 1
//	assertions:
//	  - type: row_count
//	    count: 1
//	  - type: absent
//	    where: {name: Bob}
//	  - type: unchanged
//	    seed: [1]
//
// # Operations
//
//   - insert: args name, course, mobile (missing fields are stored empty)
//   - update: target by id or ref; args are merged onto the current row
//   - delete: target by id or ref
//   - find:   args name; exact match
//   - list:   all rows
//
// A ref is the 1-based index of an earlier insert step; it resolves to the id
// the store assigned there.
//
// # Assertion Types
//
//   - row_count: the final list has exactly count rows
//   - contains:  at least one row (exactly count, if given) matches where
//   - absent:    no row matches where
//   - find_count: an exact-name search for name returns count rows
//   - unchanged: the listed seed rows are byte-identical to how they were seeded
//
// Every scenario runs in its own temporary database file, so traces are
// reproducible and suitable for golden comparison.
package harness
