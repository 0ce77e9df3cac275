package script

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/specialistvlad/resprobe/internal/registry"
	"github.com/stretchr/testify/require"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/function"
)

// mapImporter resolves imports from a fixed set of dependencies.
type mapImporter struct {
	deps     map[string]registry.Dependency
	imported []string
}

func (m *mapImporter) Import(_ context.Context, name string) (registry.Dependency, error) {
	m.imported = append(m.imported, name)
	dep, ok := m.deps[name]
	if !ok {
		return nil, fmt.Errorf("no module named %q", name)
	}
	return dep, nil
}

func stringFunc(fn func(args []cty.Value) (cty.Value, error)) function.Function {
	return function.New(&function.Spec{
		VarParam: &function.Parameter{Name: "args", Type: cty.DynamicPseudoType},
		Type:     function.StaticReturnType(cty.DynamicPseudoType),
		Impl: func(args []cty.Value, _ cty.Type) (cty.Value, error) {
			return fn(args)
		},
	})
}

func execSource(t *testing.T, src string, imp Importer) (*Namespace, string, error) {
	t.Helper()
	return execSourceCtx(t, t.Context(), src, imp)
}

func execSourceCtx(t *testing.T, ctx context.Context, src string, imp Importer) (*Namespace, string, error) {
	t.Helper()
	mod, err := ParseSource("main", "main.hcl", []byte(src))
	require.NoError(t, err)
	var out bytes.Buffer
	ns, err := Exec(ctx, mod, imp, &registry.Env{Stdout: &out})
	return ns, out.String(), err
}

func TestExec_StatementsRunInOrder(t *testing.T) {
	imp := &mapImporter{deps: map[string]registry.Dependency{
		"greeter": &registry.Native{
			DepName: "greeter",
			Attrs:   map[string]cty.Value{"prefix": cty.StringVal("hello")},
			Funcs: map[string]function.Function{
				"greet": stringFunc(func(args []cty.Value) (cty.Value, error) {
					return cty.StringVal("hello " + args[0].AsString()), nil
				}),
			},
		},
	}}

	src := `
do "before" {
  msg = print("start")
}

import "greeter" { as = "g" }

function "shout" {
  params = [s]
  result = upper(g::greet(s))
}

let "name" {
  value = "world"
}

do "after" {
  a = print(g.prefix)
  b = print(shout(name))
  c = print(length([1, 2, 3]))
}
`
	ns, out, err := execSource(t, src, imp)
	require.NoError(t, err)
	require.Equal(t, "start\nhello\nHELLO WORLD\n3\n", out)
	require.Equal(t, []string{"greeter"}, imp.imported)

	name, ok := ns.Lookup("name")
	require.True(t, ok)
	require.Equal(t, cty.StringVal("world"), name)

	dep, ok := ns.Dependency("g")
	require.True(t, ok)
	require.Equal(t, "greeter", dep.Name())
}

func TestExec_CallBeforeImportIsAnError(t *testing.T) {
	imp := &mapImporter{deps: map[string]registry.Dependency{
		"greeter": &registry.Native{DepName: "greeter", Funcs: map[string]function.Function{
			"greet": stringFunc(func([]cty.Value) (cty.Value, error) { return cty.StringVal("hi"), nil }),
		}},
	}}
	src := `
do "early" {
  x = greeter::greet("a")
}
import "greeter" {}
`
	_, _, err := execSource(t, src, imp)
	var evalErr *EvalError
	require.ErrorAs(t, err, &evalErr)
	require.Equal(t, "main", evalErr.Module)
	require.Empty(t, imp.imported, "statements after the failure never run")
}

func TestExec_ImportFailure(t *testing.T) {
	_, out, err := execSource(t, `
import "missing" {}
do "never" {
  x = print("unreachable")
}
`, &mapImporter{})

	var importErr *ImportError
	require.ErrorAs(t, err, &importErr)
	require.Equal(t, "missing", importErr.Name)
	require.Empty(t, out)
}

func TestExec_FunctionErrorsUnwrap(t *testing.T) {
	sentinel := errors.New("disk on fire")
	imp := &mapImporter{deps: map[string]registry.Dependency{
		"disk": &registry.Native{DepName: "disk", Funcs: map[string]function.Function{
			"read": stringFunc(func([]cty.Value) (cty.Value, error) { return cty.NilVal, sentinel }),
		}},
	}}

	_, _, err := execSource(t, `
import "disk" {}
let "data" {
  value = disk::read("x")
}
`, imp)
	require.ErrorIs(t, err, sentinel)
}

type stopRun struct{ at string }

func (s *stopRun) Error() string { return "stopped at " + s.at }

func TestExec_CancelledRunStopsEvenInsideTry(t *testing.T) {
	ctx, cancel := context.WithCancelCause(t.Context())
	defer cancel(nil)

	imp := &mapImporter{deps: map[string]registry.Dependency{
		"trap": &registry.Native{DepName: "trap", Funcs: map[string]function.Function{
			"spring": stringFunc(func(args []cty.Value) (cty.Value, error) {
				sig := &stopRun{at: args[0].AsString()}
				cancel(sig)
				return cty.NilVal, sig
			}),
		}},
	}}

	_, out, err := execSourceCtx(t, ctx, `
import "trap" {}
do "guarded" {
  a = try(trap::spring("here"), "swallowed")
  b = print("after try")
}
do "later" {
  c = print("later")
}
`, imp)

	var sig *stopRun
	require.ErrorAs(t, err, &sig)
	require.Equal(t, "here", sig.at)
	require.Empty(t, out)
}

func TestExec_UnknownValuesPrintAsPlaceholder(t *testing.T) {
	imp := &mapImporter{deps: map[string]registry.Dependency{
		"ghost": &registry.Native{DepName: "ghost", Attrs: map[string]cty.Value{"anything": cty.DynamicVal}},
	}}
	_, out, err := execSource(t, `
import "ghost" {}
do "show" {
  a = print(ghost.anything, ghost.anything.deeper[3], "known")
}
`, imp)
	require.NoError(t, err)
	require.Equal(t, "<placeholder> <placeholder> known\n", out)
}

func TestRun_ReexportsImportedMembers(t *testing.T) {
	inner := &registry.Native{DepName: "numpy", Funcs: map[string]function.Function{
		"zeros": stringFunc(func(args []cty.Value) (cty.Value, error) { return cty.StringVal("zeros"), nil }),
	}}
	mod, err := ParseSource("helpers", "helpers.hcl", []byte(`
import "numpy" { as = "np" }
function "double" {
  params = [x]
  result = x * 2
}
let "ready" {
  value = true
}
`))
	require.NoError(t, err)

	dep, err := Run(t.Context(), mod, &mapImporter{deps: map[string]registry.Dependency{"numpy": inner}}, nil)
	require.NoError(t, err)
	require.Equal(t, "helpers", dep.Name())
	require.True(t, dep.Value().GetAttr("ready").True())

	zeros, ok := dep.Function("np::zeros")
	require.True(t, ok)
	v, err := zeros.Call([]cty.Value{cty.NumberIntVal(3)})
	require.NoError(t, err)
	require.Equal(t, cty.StringVal("zeros"), v)

	double, ok := dep.Function("double")
	require.True(t, ok)
	v, err = double.Call([]cty.Value{cty.NumberIntVal(4)})
	require.NoError(t, err)
	require.True(t, v.Equals(cty.NumberIntVal(8)).True())

	_, ok = dep.Function("np::ones")
	require.False(t, ok)
	_, ok = dep.Function("missing::zeros")
	require.False(t, ok)
}
