// Package logging provides the "logging" dependency. Scripts write leveled
// messages to the diagnostics stream, never to the module output.
package logging

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/specialistvlad/resprobe/internal/ctxlog"
	"github.com/specialistvlad/resprobe/internal/registry"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/function"
)

// Name is the import name of the dependency.
const Name = "logging"

// Module implements the registry.Module interface for this package.
type Module struct{}

// Register registers the dependency with the registry.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterDependency(Name, &registry.RegisteredDependency{
		Description: "Writes leveled messages to the diagnostics log.",
		Build:       build,
	})
}

var levels = map[string]slog.Level{
	"debug":   slog.LevelDebug,
	"info":    slog.LevelInfo,
	"warning": slog.LevelWarn,
	"error":   slog.LevelError,
}

// ParseLevel maps a script level name to a slog level.
func ParseLevel(name string) (slog.Level, error) {
	lvl, ok := levels[strings.ToLower(name)]
	if !ok {
		return 0, fmt.Errorf("unknown log level %q", name)
	}
	return lvl, nil
}

func build(ctx context.Context, env *registry.Env) (registry.Dependency, error) {
	logger := env.Logger
	if logger == nil {
		logger = ctxlog.FromContext(ctx)
	}
	logger = logger.With("source", "script")

	funcs := map[string]function.Function{
		"log": logFunc(ctx, logger),
	}
	for name, lvl := range levels {
		funcs[name] = levelFunc(ctx, logger, lvl)
	}
	return &registry.Native{DepName: Name, Funcs: funcs}, nil
}

func render(v cty.Value) (string, error) {
	if !v.IsKnown() {
		return "<placeholder>", nil
	}
	return registry.StringArg(v)
}

func levelFunc(ctx context.Context, logger *slog.Logger, lvl slog.Level) function.Function {
	return function.New(&function.Spec{
		Params: []function.Parameter{{Name: "msg", Type: cty.DynamicPseudoType, AllowUnknown: true}},
		Type:   function.StaticReturnType(cty.Bool),
		Impl: func(args []cty.Value, retType cty.Type) (cty.Value, error) {
			msg, err := render(args[0])
			if err != nil {
				return cty.NilVal, fmt.Errorf("msg: %w", err)
			}
			logger.Log(ctx, lvl, msg)
			return cty.True, nil
		},
	})
}

// logFunc implements log(level, msg).
func logFunc(ctx context.Context, logger *slog.Logger) function.Function {
	return function.New(&function.Spec{
		Params: []function.Parameter{
			{Name: "level", Type: cty.String},
			{Name: "msg", Type: cty.DynamicPseudoType, AllowUnknown: true},
		},
		Type: function.StaticReturnType(cty.Bool),
		Impl: func(args []cty.Value, retType cty.Type) (cty.Value, error) {
			lvl, err := ParseLevel(args[0].AsString())
			if err != nil {
				return cty.NilVal, err
			}
			msg, err := render(args[1])
			if err != nil {
				return cty.NilVal, fmt.Errorf("msg: %w", err)
			}
			logger.Log(ctx, lvl, msg)
			return cty.True, nil
		},
	})
}
