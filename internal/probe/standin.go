package probe

import (
	"context"

	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/function"
)

// Recorder stands in for the probed dependency. It exposes only the entry
// point; calling it records the path argument and stops the run. It never
// opens anything.
type Recorder struct {
	dependency string
	entry      string
	stop       context.CancelCauseFunc

	path     string
	captured bool
	calls    int
}

// NewRecorder creates a stand-in for dependency whose entry point cancels
// the run through stop.
func NewRecorder(dependency, entry string, stop context.CancelCauseFunc) *Recorder {
	return &Recorder{dependency: dependency, entry: entry, stop: stop}
}

// Name implements registry.Dependency.
func (r *Recorder) Name() string {
	return r.dependency
}

// Value implements registry.Dependency. The stand-in has no attributes.
func (r *Recorder) Value() cty.Value {
	return cty.EmptyObjectVal
}

// Function implements registry.Dependency. Only the entry point exists.
func (r *Recorder) Function(member string) (function.Function, bool) {
	if member != r.entry {
		return function.Function{}, false
	}
	return r.entryFunc(), true
}

// Captured returns the recorded path, if any.
func (r *Recorder) Captured() (string, bool) {
	return r.path, r.captured
}

// Calls returns how many times the entry point ran.
func (r *Recorder) Calls() int {
	return r.calls
}

// entryFunc mirrors File(name, mode...). The first call wins; later calls
// are counted but never overwrite the captured path. Every call stops the
// run.
func (r *Recorder) entryFunc() function.Function {
	return function.New(&function.Spec{
		Description: "Records the resource path and stops the run.",
		Params: []function.Parameter{
			{Name: "name", Type: cty.String},
		},
		VarParam: &function.Parameter{
			Name:             "mode",
			Type:             cty.DynamicPseudoType,
			AllowNull:        true,
			AllowUnknown:     true,
			AllowDynamicType: true,
		},
		Type: function.StaticReturnType(cty.DynamicPseudoType),
		Impl: func(args []cty.Value, retType cty.Type) (cty.Value, error) {
			r.calls++
			if !r.captured {
				r.path = args[0].AsString()
				r.captured = true
			}
			sig := &AbortSignal{Dependency: r.dependency, Entry: r.entry, Path: r.path}
			r.stop(sig)
			return cty.NilVal, sig
		},
	})
}
