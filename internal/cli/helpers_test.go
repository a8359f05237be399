package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ltuala/student-management/internal/testutil"
)

const fixedTrace = "trace-fixed"

// cliResult captures one command invocation.
type cliResult struct {
	Out    string
	ErrOut string
	Err    error
}

// runCLI executes the root command with args and stdin, isolated from the
// caller's STUDENTS_* environment and .env file.
func runCLI(t *testing.T, stdin string, args ...string) cliResult {
	t.Helper()

	for _, key := range []string{"STUDENTS_DB", "STUDENTS_DRIVER", "STUDENTS_LOG_LEVEL"} {
		t.Setenv(key, "")
		require.NoError(t, os.Unsetenv(key))
	}

	opts := &RootOptions{
		EnvFile:  filepath.Join(t.TempDir(), "missing.env"),
		TraceIDs: testutil.FixedTraceID{ID: fixedTrace},
	}
	cmd := NewRootCommandWithOptions(opts)

	out, errOut := &bytes.Buffer{}, &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetErr(errOut)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)

	err := cmd.Execute()
	return cliResult{Out: out.String(), ErrOut: errOut.String(), Err: err}
}

// newDB returns the path of an initialized database in a temp dir.
func newDB(t *testing.T) string {
	t.Helper()
	db := filepath.Join(t.TempDir(), "roster.db")
	res := runCLI(t, "", "init", "--db", db)
	require.NoError(t, res.Err, res.Out)
	return db
}

// mustRun runs args against db and fails the test on error.
func mustRun(t *testing.T, db string, args ...string) string {
	t.Helper()
	res := runCLI(t, "", append(args, "--db", db)...)
	require.NoError(t, res.Err, "stdout: %s\nstderr: %s", res.Out, res.ErrOut)
	return res.Out
}
