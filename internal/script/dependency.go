package script

import (
	"github.com/specialistvlad/resprobe/internal/exprscan"
	"github.com/specialistvlad/resprobe/internal/registry"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/function"
)

// scriptDependency exposes an executed module to the modules that import it.
type scriptDependency struct {
	name string
	ns   *Namespace
}

// NewDependency wraps an executed module's namespace as a dependency.
// Its value holds every name the module bound; its functions are the
// module's user functions plus the members of the dependencies it
// imported (`helpers::np::zeros` reaches numpy through helpers).
func NewDependency(name string, ns *Namespace) registry.Dependency {
	return &scriptDependency{name: name, ns: ns}
}

func (d *scriptDependency) Name() string {
	return d.name
}

func (d *scriptDependency) Value() cty.Value {
	return d.ns.Value()
}

func (d *scriptDependency) Function(member string) (function.Function, bool) {
	root, rest := exprscan.SplitFunctionName(member)
	if root == "" {
		fn, ok := d.ns.userFuncs[rest]
		return fn, ok
	}
	dep, ok := d.ns.deps[root]
	if !ok {
		return function.Function{}, false
	}
	return dep.Function(rest)
}
