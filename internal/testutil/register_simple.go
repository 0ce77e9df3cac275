package testutil

import (
	"context"

	"github.com/specialistvlad/resprobe/internal/registry"
	"github.com/zclconf/go-cty/cty/function"
)

// SimpleModule is a test helper for registering a single Go-native
// dependency built from fixed functions.
type SimpleModule struct {
	Name  string
	Funcs map[string]function.Function
}

// Register implements the registry.Module interface.
func (m *SimpleModule) Register(r *registry.Registry) {
	r.RegisterDependency(m.Name, &registry.RegisteredDependency{
		Description: "test dependency " + m.Name,
		Build: func(ctx context.Context, env *registry.Env) (registry.Dependency, error) {
			return &registry.Native{DepName: m.Name, Funcs: m.Funcs}, nil
		},
	})
}
