package testutil

import (
	"context"
	"sync/atomic"

	"github.com/specialistvlad/resprobe/internal/registry"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/function"
)

// CountingModule registers a dependency whose every member counts its
// calls and returns the member name. Builds are counted too, so tests can
// tell whether the real dependency was ever constructed.
type CountingModule struct {
	Name    string
	Members []string

	builds atomic.Int64
	calls  atomic.Int64
}

// Builds returns how many times the dependency was built.
func (m *CountingModule) Builds() int64 {
	return m.builds.Load()
}

// Calls returns how many member calls reached the real dependency.
func (m *CountingModule) Calls() int64 {
	return m.calls.Load()
}

// Register implements the registry.Module interface.
func (m *CountingModule) Register(r *registry.Registry) {
	r.RegisterDependency(m.Name, &registry.RegisteredDependency{
		Description: "counting test dependency " + m.Name,
		Build: func(ctx context.Context, env *registry.Env) (registry.Dependency, error) {
			m.builds.Add(1)
			funcs := make(map[string]function.Function, len(m.Members))
			for _, member := range m.Members {
				funcs[member] = m.member(member)
			}
			return &registry.Native{DepName: m.Name, Funcs: funcs}, nil
		},
	})
}

func (m *CountingModule) member(name string) function.Function {
	return function.New(&function.Spec{
		VarParam: &function.Parameter{
			Name:             "args",
			Type:             cty.DynamicPseudoType,
			AllowNull:        true,
			AllowDynamicType: true,
		},
		Type: function.StaticReturnType(cty.String),
		Impl: func(args []cty.Value, retType cty.Type) (cty.Value, error) {
			m.calls.Add(1)
			return cty.StringVal(name), nil
		},
	})
}
