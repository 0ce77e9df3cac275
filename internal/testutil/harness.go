package testutil

import (
	"bytes"
	"context"
	"os"
	"sync"
	"testing"

	"github.com/specialistvlad/resprobe/internal/app"
	"github.com/specialistvlad/resprobe/internal/config"
	"github.com/specialistvlad/resprobe/internal/probe"
	"github.com/specialistvlad/resprobe/internal/registry"
)

// SafeBuffer is a thread-safe buffer for capturing log output in tests.
type SafeBuffer struct {
	b  bytes.Buffer
	mu sync.Mutex
}

// Write implements the io.Writer interface for SafeBuffer.
func (b *SafeBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.b.Write(p)
}

// String implements the fmt.Stringer interface for SafeBuffer.
func (b *SafeBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.b.String()
}

// Reset discards everything written so far.
func (b *SafeBuffer) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.b.Reset()
}

// HarnessResult holds the outcomes of an integration test run.
type HarnessResult struct {
	// Result is what was written to the result stream.
	Result string
	// Stdout is the module output.
	Stdout    string
	LogOutput string
	Err       error
	Probe     *probe.Result
	App       *app.App
}

// Harness is an App over a temporary models tree with captured streams.
type Harness struct {
	App    *app.App
	Root   string
	result *SafeBuffer
	stdout *SafeBuffer
	log    *SafeBuffer
}

// NewHarness writes files as the models tree and builds an App over it.
// With no modules given, the App registers the core modules. configure,
// when non-nil, adjusts the configuration before the App is built.
func NewHarness(t *testing.T, files map[string]string, configure func(*config.Config), modules ...registry.Module) *Harness {
	t.Helper()

	root := WriteModules(t, files)
	cfg := config.Default()
	cfg.ModelsPath = root
	cfg.Logging.Level = "debug"
	if configure != nil {
		configure(cfg)
	}

	h := &Harness{Root: root, result: &SafeBuffer{}, stdout: &SafeBuffer{}, log: &SafeBuffer{}}
	h.App = app.NewApp(app.Streams{Stdout: h.stdout, Result: h.result, Log: h.log}, cfg, modules...)

	t.Cleanup(func() {
		if os.Getenv("RESPROBE_TEST_LOGS") == "true" {
			t.Logf("--- Full Log Output for %s ---\n%s", t.Name(), h.log.String())
		}
	})
	return h
}

func (h *Harness) collect(res *probe.Result, err error) *HarnessResult {
	return &HarnessResult{
		Result:    h.result.String(),
		Stdout:    h.stdout.String(),
		LogOutput: h.log.String(),
		Err:       err,
		Probe:     res,
		App:       h.App,
	}
}

func (h *Harness) reset() {
	h.result.Reset()
	h.stdout.Reset()
	h.log.Reset()
}

// Probe runs a probe against target. Streams are captured per call.
func (h *Harness) Probe(ctx context.Context, target string) *HarnessResult {
	h.reset()
	res, err := h.App.Probe(ctx, target)
	return h.collect(res, err)
}

// Run executes target for real. Streams are captured per call.
func (h *Harness) Run(ctx context.Context, target string) *HarnessResult {
	h.reset()
	return h.collect(nil, h.App.RunModule(ctx, target))
}

// RunProbe provides a standardized harness for probing target in a fresh
// models tree.
func RunProbe(t *testing.T, files map[string]string, target string, modules ...registry.Module) *HarnessResult {
	t.Helper()
	return NewHarness(t, files, nil, modules...).Probe(t.Context(), target)
}
