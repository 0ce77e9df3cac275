package probe

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/specialistvlad/resprobe/internal/ctxlog"
	"github.com/specialistvlad/resprobe/internal/importer"
)

const (
	// DefaultDependency is the dependency probed when none is configured.
	DefaultDependency = "h5py"
	// DefaultEntry is the entry point of the probed dependency.
	DefaultEntry = "File"
	// SystemFacility always resolves normally during a probe.
	SystemFacility = "os"
)

// State is the lifecycle position of a Probe.
type State int

const (
	StateIdle State = iota
	StateIntercepting
	StateCaptured
	StateUncaptured
	StateEmitted
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateIntercepting:
		return "intercepting"
	case StateCaptured:
		return "captured"
	case StateUncaptured:
		return "uncaptured"
	case StateEmitted:
		return "emitted"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Options configure a Probe. Empty fields take the package defaults.
type Options struct {
	// Dependency is the import name replaced by the Recorder.
	Dependency string
	// Entry is the member of Dependency that records its path argument.
	Entry string
	// ModelsPath, when set, is searched before the importer's own path for
	// the duration of the run.
	ModelsPath string
}

// Result is the outcome of one probe run.
type Result struct {
	Target   string
	Path     string
	Captured bool
	// Calls counts entry point invocations; only the first is recorded.
	Calls int
	// Substituted lists the imports answered with placeholders.
	Substituted []string
	// Failure is set when the target stopped for any reason other than the
	// entry point being called. It is reported, never returned.
	Failure error
}

// Probe drives a single run against an importer. A Probe is not reusable:
// each run starts from Idle, and Run on a used Probe returns an
// uncaptured result.
type Probe struct {
	imp   *importer.Importer
	opts  Options
	state State
}

// New creates a probe over imp.
func New(imp *importer.Importer, opts Options) *Probe {
	if opts.Dependency == "" {
		opts.Dependency = DefaultDependency
	}
	if opts.Entry == "" {
		opts.Entry = DefaultEntry
	}
	return &Probe{imp: imp, opts: opts}
}

// State returns where the probe is in its lifecycle.
func (p *Probe) State() State {
	return p.state
}

// Run executes target under interception and reports what it captured.
// It never returns an error and never panics; the hook and the models path
// are released on every path out.
func (p *Probe) Run(ctx context.Context, target string) (res *Result) {
	logger := ctxlog.FromContext(ctx).With("target", target, "dependency", p.opts.Dependency)
	res = &Result{Target: target}

	if p.state != StateIdle {
		res.Failure = fmt.Errorf("probe already used (state %s)", p.state)
		logger.Error("Probe cannot be reused.", "state", p.state.String())
		return res
	}

	runCtx, stop := context.WithCancelCause(ctxlog.WithLogger(ctx, logger))
	defer stop(nil)

	rec := NewRecorder(p.opts.Dependency, p.opts.Entry, stop)
	hook := NewInterceptor(target, p.opts.Dependency, rec)

	if p.opts.ModelsPath != "" {
		pop := p.imp.PushPath(p.opts.ModelsPath)
		defer pop()
	}
	release := p.imp.Install(hook)
	defer release()

	p.state = StateIntercepting
	logger.Debug("Probe started.", "entry", p.opts.Entry, "search_path", p.imp.SearchPath())

	defer func() {
		if r := recover(); r != nil {
			res.Failure = &UnrelatedImportFailure{Target: target, Err: fmt.Errorf("panic: %v", r)}
			logger.Error("Target panicked while loading.", "error", res.Failure)
		}
		res.Path, res.Captured = rec.Captured()
		res.Calls = rec.Calls()
		res.Substituted = hook.Substituted()
		if res.Captured {
			p.state = StateCaptured
		} else {
			p.state = StateUncaptured
		}
		logger.Debug("Probe finished.", "state", p.state.String(), "calls", res.Calls, "substituted", res.Substituted)
	}()

	_, err := p.imp.Exec(runCtx, target)
	var sig *AbortSignal
	switch {
	case err == nil:
		logger.Debug("Target loaded without calling the entry point.")
	case errors.As(err, &sig):
		logger.Debug("Run stopped at entry point.", "path", sig.Path)
	default:
		res.Failure = &UnrelatedImportFailure{Target: target, Err: err}
		logger.Error("Target failed before the resource was requested.", "error", err)
	}
	return res
}

// Emit writes the result through w and completes the run.
func (p *Probe) Emit(w io.Writer, res *Result) error {
	err := Emit(w, res)
	p.state = StateEmitted
	return err
}
