package testutil

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// AssertCaptured checks that the probe wrote exactly want to the result
// stream and reported no failure.
func AssertCaptured(t *testing.T, result *HarnessResult, want string) {
	t.Helper()
	require.NoError(t, result.Err, "probe reported an error\n--- logs ---\n%s", result.LogOutput)
	require.NotNil(t, result.Probe)
	require.NoError(t, result.Probe.Failure)
	require.Equal(t, want, result.Result)
}

// AssertLogged checks that a log line carries msg and every key=value pair.
func AssertLogged(t *testing.T, result *HarnessResult, msg string, kv ...string) {
	t.Helper()
	for _, line := range strings.Split(result.LogOutput, "\n") {
		if !strings.Contains(line, msg) {
			continue
		}
		found := true
		for _, pair := range kv {
			if !strings.Contains(line, pair) {
				found = false
				break
			}
		}
		if found {
			return
		}
	}
	require.Failf(t, "log line not found", "no line with %q and %v in:\n%s", msg, kv, result.LogOutput)
}
