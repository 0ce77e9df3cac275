package script

import (
	"context"
	"fmt"
	"io"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/ext/userfunc"
	"github.com/specialistvlad/resprobe/internal/ctxlog"
	"github.com/specialistvlad/resprobe/internal/exprscan"
	"github.com/specialistvlad/resprobe/internal/registry"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/function"
)

// Importer resolves the names a module imports.
type Importer interface {
	Import(ctx context.Context, name string) (registry.Dependency, error)
}

// ExecutionTracker is implemented by importers that serve a module which
// is still executing to imports that reach it again. Such imports see the
// partially built namespace.
type ExecutionTracker interface {
	Executing(name string, dep registry.Dependency)
}

// Namespace is the state a module builds while it executes: imported
// dependencies, let bindings and user functions.
type Namespace struct {
	module    string
	deps      map[string]registry.Dependency
	bindings  map[string]cty.Value
	userFuncs map[string]function.Function
	evalCtx   *hcl.EvalContext
}

func newNamespace(module string, out io.Writer) *Namespace {
	return &Namespace{
		module:    module,
		deps:      make(map[string]registry.Dependency),
		bindings:  make(map[string]cty.Value),
		userFuncs: make(map[string]function.Function),
		evalCtx: &hcl.EvalContext{
			Variables: make(map[string]cty.Value),
			Functions: builtinFunctions(out),
		},
	}
}

// Value returns every name the module bound, as an object.
func (ns *Namespace) Value() cty.Value {
	if len(ns.evalCtx.Variables) == 0 {
		return cty.EmptyObjectVal
	}
	attrs := make(map[string]cty.Value, len(ns.evalCtx.Variables))
	for k, v := range ns.evalCtx.Variables {
		attrs[k] = v
	}
	return cty.ObjectVal(attrs)
}

// Lookup returns a bound value by name.
func (ns *Namespace) Lookup(name string) (cty.Value, bool) {
	v, ok := ns.evalCtx.Variables[name]
	return v, ok
}

// Dependency returns the dependency bound under alias.
func (ns *Namespace) Dependency(alias string) (registry.Dependency, bool) {
	dep, ok := ns.deps[alias]
	return dep, ok
}

func (ns *Namespace) bindDependency(alias string, dep registry.Dependency) {
	ns.deps[alias] = dep
	delete(ns.bindings, alias)
	ns.evalCtx.Variables[alias] = dep.Value()
}

func (ns *Namespace) bindValue(name string, val cty.Value) {
	delete(ns.deps, name)
	ns.bindings[name] = val
	ns.evalCtx.Variables[name] = val
}

// refreshFunctions makes every namespaced call in the module whose alias
// is now bound resolvable through the evaluation context.
func (ns *Namespace) refreshFunctions(called []string) {
	for _, name := range called {
		root, member := exprscan.SplitFunctionName(name)
		if root == "" {
			continue
		}
		dep, ok := ns.deps[root]
		if !ok {
			delete(ns.evalCtx.Functions, name)
			continue
		}
		if fn, ok := dep.Function(member); ok {
			ns.evalCtx.Functions[name] = fn
		} else {
			delete(ns.evalCtx.Functions, name)
		}
	}
}

// Exec runs the module's statements in order and returns its namespace.
// The run context is checked before every statement and every evaluated
// attribute; once it is cancelled, Exec stops and returns the cause.
func Exec(ctx context.Context, mod *Module, imp Importer, env *registry.Env) (*Namespace, error) {
	logger := ctxlog.FromContext(ctx).With("module", mod.Name)
	out := io.Discard
	if env != nil && env.Stdout != nil {
		out = env.Stdout
	}

	ns := newNamespace(mod.Name, out)
	called := mod.CalledFunctions()
	if tracker, ok := imp.(ExecutionTracker); ok {
		tracker.Executing(mod.Name, NewDependency(mod.Name, ns))
	}

	for _, body := range mod.bodies {
		funcs, _, diags := userfunc.DecodeUserFunctions(body, "function", func() *hcl.EvalContext {
			return ns.evalCtx
		})
		if diags.HasErrors() {
			return ns, &EvalError{Module: mod.Name, Diags: diags}
		}
		for name, fn := range funcs {
			ns.userFuncs[name] = fn
			ns.evalCtx.Functions[name] = fn
		}
	}
	logger.Debug("Executing module.", "statements", len(mod.Statements), "user_functions", len(ns.userFuncs))

	for _, stmt := range mod.Statements {
		if err := context.Cause(ctx); err != nil {
			logger.Debug("Module execution stopped.", "before", stmt.Range.String(), "cause", err)
			return ns, err
		}

		switch stmt.Kind {
		case KindImport:
			dep, err := imp.Import(ctx, stmt.Name)
			if err != nil {
				return ns, &ImportError{Module: mod.Name, Name: stmt.Name, Range: stmt.Range, Err: err}
			}
			ns.bindDependency(stmt.Alias, dep)
			ns.refreshFunctions(called)
			logger.Debug("Import bound.", "name", stmt.Name, "alias", stmt.Alias)

		case KindLet:
			val, err := ns.eval(ctx, mod.Name, stmt.Attrs[0])
			if err != nil {
				return ns, err
			}
			ns.bindValue(stmt.Name, val)
			ns.refreshFunctions(called)

		case KindDo:
			for _, attr := range stmt.Attrs {
				if err := context.Cause(ctx); err != nil {
					return ns, err
				}
				if _, err := ns.eval(ctx, mod.Name, attr); err != nil {
					return ns, err
				}
			}
		}
	}

	// A call made during the last statement may have cancelled the run.
	if err := context.Cause(ctx); err != nil {
		return ns, err
	}

	logger.Debug("Module executed.", "bindings", len(ns.evalCtx.Variables))
	return ns, nil
}

func (ns *Namespace) eval(ctx context.Context, module string, attr *hcl.Attribute) (cty.Value, error) {
	val, diags := attr.Expr.Value(ns.evalCtx)
	if diags.HasErrors() {
		// A dependency that cancelled the run explains the failure better
		// than the diagnostics it caused.
		if cause := context.Cause(ctx); cause != nil {
			return cty.NilVal, cause
		}
		return cty.NilVal, &EvalError{Module: module, Diags: diags}
	}
	return val, nil
}

// Run executes mod and wraps its namespace as a dependency.
func Run(ctx context.Context, mod *Module, imp Importer, env *registry.Env) (registry.Dependency, error) {
	ns, err := Exec(ctx, mod, imp, env)
	if err != nil {
		return nil, fmt.Errorf("module %q: %w", mod.Name, err)
	}
	return NewDependency(mod.Name, ns), nil
}
