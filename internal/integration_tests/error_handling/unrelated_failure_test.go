package integration_tests

import (
	"errors"
	"testing"

	"github.com/specialistvlad/resprobe/internal/importer"
	"github.com/specialistvlad/resprobe/internal/probe"
	"github.com/specialistvlad/resprobe/internal/script"
	"github.com/specialistvlad/resprobe/internal/testutil"
	"github.com/stretchr/testify/require"
)

// TestErrorHandling_InvalidHCL_IsReported checks that a target which does
// not parse is reported as a failure unrelated to the resource.
func TestErrorHandling_InvalidHCL_IsReported(t *testing.T) {
	// --- Arrange ---
	invalidHCL := `
let "weights" {
  value = h5py::File("eye.h5"
`

	// --- Act ---
	result := testutil.RunProbe(t, map[string]string{"broken.hcl": invalidHCL}, "broken")

	// --- Assert ---
	require.ErrorIs(t, result.Err, probe.ErrResourceNotFound)
	require.Empty(t, result.Result)

	var failure *probe.UnrelatedImportFailure
	require.ErrorAs(t, result.Probe.Failure, &failure)
	require.Equal(t, "broken", failure.Target)
	testutil.AssertLogged(t, result, "Target failed before the resource was requested.", "level=ERROR", "target=broken")
}

// TestErrorHandling_MissingTarget reports a module that does not exist.
func TestErrorHandling_MissingTarget(t *testing.T) {
	result := testutil.RunProbe(t, map[string]string{"present.hcl": `let "x" { value = 1 }`}, "absent")

	require.ErrorIs(t, result.Err, probe.ErrResourceNotFound)
	require.ErrorIs(t, result.Probe.Failure, importer.ErrModuleNotFound)
}

// TestErrorHandling_EvaluationErrorBeforeEntry stops at a bad expression
// that precedes the entry point.
func TestErrorHandling_EvaluationErrorBeforeEntry(t *testing.T) {
	result := testutil.RunProbe(t, map[string]string{
		"eye.hcl": `
import "h5py" {}
let "n" { value = undefined_setting + 1 }
let "f" { value = h5py::File("eye.h5") }
`,
	}, "eye")

	require.ErrorIs(t, result.Err, probe.ErrResourceNotFound)
	var evalErr *script.EvalError
	require.True(t, errors.As(result.Probe.Failure, &evalErr))
	require.Equal(t, "eye", evalErr.Module)
	require.Zero(t, result.Probe.Calls)
}

// TestErrorHandling_RealRunSurfacesDependencyErrors runs for real: the
// h5py dependency refuses a file that does not exist.
func TestErrorHandling_RealRunSurfacesDependencyErrors(t *testing.T) {
	h := testutil.NewHarness(t, map[string]string{
		"eye.hcl": `
import "h5py" {}
let "f" { value = h5py::File("/definitely/not/here/eye.h5", "r") }
`,
	}, nil)

	result := h.Run(t.Context(), "eye")

	require.Error(t, result.Err)
	require.Contains(t, result.Err.Error(), "eye.h5")
}
