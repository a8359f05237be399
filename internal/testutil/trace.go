package testutil

// FixedTraceID returns the same trace id every time so that CLI output can
// be compared byte for byte.
type FixedTraceID struct {
	ID string
}

// Generate returns the fixed id, or "test-trace-default" if unset.
func (g FixedTraceID) Generate() string {
	if g.ID == "" {
		return "test-trace-default"
	}
	return g.ID
}
