// Package fileio provides the "fileio" dependency for reading and writing
// text files.
package fileio

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/specialistvlad/resprobe/internal/ctxlog"
	"github.com/specialistvlad/resprobe/internal/registry"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/function"
)

// Name is the import name of the dependency.
const Name = "fileio"

// Module implements the registry.Module interface for this package.
type Module struct{}

// Register registers the dependency with the registry.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterDependency(Name, &registry.RegisteredDependency{
		Description: "Reads and writes text files.",
		Build:       build,
	})
}

func build(ctx context.Context, env *registry.Env) (registry.Dependency, error) {
	logger := ctxlog.FromContext(ctx).With("dependency", Name)

	write := function.New(&function.Spec{
		Description: "Writes text to a file, creating parent directories.",
		Params: []function.Parameter{
			{Name: "path", Type: cty.String},
			{Name: "text", Type: cty.DynamicPseudoType},
		},
		Type: function.StaticReturnType(cty.Number),
		Impl: func(args []cty.Value, retType cty.Type) (cty.Value, error) {
			path := args[0].AsString()
			text, err := registry.StringArg(args[1])
			if err != nil {
				return cty.NilVal, fmt.Errorf("text: %w", err)
			}
			if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
				return cty.NilVal, fmt.Errorf("failed to create directory for %s: %w", path, err)
			}
			if err := os.WriteFile(path, []byte(text), 0644); err != nil {
				return cty.NilVal, fmt.Errorf("failed to write %s: %w", path, err)
			}
			logger.Debug("File written.", "path", path, "bytes", len(text))
			return cty.NumberIntVal(int64(len(text))), nil
		},
	})

	read := function.New(&function.Spec{
		Description: "Reads a whole file as text.",
		Params:      []function.Parameter{{Name: "path", Type: cty.String}},
		Type:        function.StaticReturnType(cty.String),
		Impl: func(args []cty.Value, retType cty.Type) (cty.Value, error) {
			data, err := os.ReadFile(args[0].AsString())
			if err != nil {
				return cty.NilVal, fmt.Errorf("failed to read: %w", err)
			}
			return cty.StringVal(string(data)), nil
		},
	})

	return &registry.Native{
		DepName: Name,
		Funcs: map[string]function.Function{
			"write": write,
			"read":  read,
		},
	}, nil
}
