// Package sys_os provides the "os" dependency: environment access and
// path helpers. It is the system facility a probe always lets through.
package sys_os

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/specialistvlad/resprobe/internal/ctxlog"
	"github.com/specialistvlad/resprobe/internal/registry"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/function"
)

// Name is the import name of the dependency.
const Name = "os"

// Module implements the registry.Module interface for this package.
type Module struct{}

// Register registers the dependency with the registry.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterDependency(Name, &registry.RegisteredDependency{
		Description: "Environment variables and path manipulation.",
		Build:       build,
	})
}

func build(ctx context.Context, env *registry.Env) (registry.Dependency, error) {
	ctxlog.FromContext(ctx).Debug("Building os dependency.")
	return &registry.Native{
		DepName: Name,
		Attrs: map[string]cty.Value{
			"sep":     cty.StringVal(string(os.PathSeparator)),
			"name":    cty.StringVal(runtime.GOOS),
			"environ": environ(),
		},
		Funcs: map[string]function.Function{
			"getenv":         getenvFunc,
			"path::join":     joinFunc,
			"path::basename": pathFunc(filepath.Base),
			"path::dirname":  pathFunc(filepath.Dir),
			"path::abspath":  absFunc,
			"path::exists":   existsFunc,
		},
	}, nil
}

// environ snapshots the process environment as a map of strings.
func environ() cty.Value {
	envMap := make(map[string]cty.Value)
	for _, e := range os.Environ() {
		pair := strings.SplitN(e, "=", 2)
		if len(pair) == 2 {
			envMap[pair[0]] = cty.StringVal(pair[1])
		}
	}
	if len(envMap) == 0 {
		return cty.MapValEmpty(cty.String)
	}
	return cty.MapVal(envMap)
}

// getenv(name, default?) returns the variable or the default (null when
// omitted).
var getenvFunc = function.New(&function.Spec{
	Description: "Returns an environment variable.",
	Params: []function.Parameter{
		{Name: "name", Type: cty.String},
	},
	VarParam: &function.Parameter{Name: "default", Type: cty.String, AllowNull: true},
	Type:     function.StaticReturnType(cty.String),
	Impl: func(args []cty.Value, retType cty.Type) (cty.Value, error) {
		if v, ok := os.LookupEnv(args[0].AsString()); ok {
			return cty.StringVal(v), nil
		}
		if len(args) > 1 {
			return args[1], nil
		}
		return cty.NullVal(cty.String), nil
	},
})

var joinFunc = function.New(&function.Spec{
	Description: "Joins path elements with the OS separator.",
	VarParam:    &function.Parameter{Name: "elem", Type: cty.String},
	Type:        function.StaticReturnType(cty.String),
	Impl: func(args []cty.Value, retType cty.Type) (cty.Value, error) {
		elems := make([]string, len(args))
		for i, a := range args {
			elems[i] = a.AsString()
		}
		return cty.StringVal(filepath.Join(elems...)), nil
	},
})

func pathFunc(fn func(string) string) function.Function {
	return function.New(&function.Spec{
		Params: []function.Parameter{{Name: "path", Type: cty.String}},
		Type:   function.StaticReturnType(cty.String),
		Impl: func(args []cty.Value, retType cty.Type) (cty.Value, error) {
			return cty.StringVal(fn(args[0].AsString())), nil
		},
	})
}

var absFunc = function.New(&function.Spec{
	Description: "Returns an absolute version of the path.",
	Params:      []function.Parameter{{Name: "path", Type: cty.String}},
	Type:        function.StaticReturnType(cty.String),
	Impl: func(args []cty.Value, retType cty.Type) (cty.Value, error) {
		abs, err := filepath.Abs(args[0].AsString())
		if err != nil {
			return cty.NilVal, err
		}
		return cty.StringVal(abs), nil
	},
})

var existsFunc = function.New(&function.Spec{
	Description: "Reports whether the path exists.",
	Params:      []function.Parameter{{Name: "path", Type: cty.String}},
	Type:        function.StaticReturnType(cty.Bool),
	Impl: func(args []cty.Value, retType cty.Type) (cty.Value, error) {
		_, err := os.Stat(args[0].AsString())
		return cty.BoolVal(err == nil), nil
	},
})
