package harness

import "github.com/ltuala/student-management/internal/student"

// TraceEvent records one executed step.
type TraceEvent struct {
	Seq  int               `json:"seq"`
	Op   string            `json:"op"`
	ID   int64             `json:"id,omitempty"`
	Args map[string]string `json:"args,omitempty"`
	Rows []student.Student `json:"rows,omitempty"`
}

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass is true when every expect clause and assertion held.
	Pass bool `json:"pass"`

	// Trace lists the executed steps in order.
	Trace []TraceEvent `json:"trace"`

	// Errors contains failure messages. Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`

	// Final is the table content after the last step.
	Final []student.Student `json:"final"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Trace:  []TraceEvent{},
		Errors: []string{},
		Final:  []student.Student{},
	}
}

// AddError adds a failure message and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// AddTrace appends an event with the next sequence number.
func (r *Result) AddTrace(ev TraceEvent) {
	ev.Seq = len(r.Trace) + 1
	r.Trace = append(r.Trace, ev)
}
