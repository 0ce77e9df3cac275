package registry

import (
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/function"
)

// Dependency is a resolved module as seen by the script that imported it.
type Dependency interface {
	// Name is the import name the dependency was resolved under.
	Name() string

	// Value is bound to the import alias; `alias.attr` reads from it.
	Value() cty.Value

	// Function returns the callable for a member path relative to the
	// dependency, using "::" between segments (`alias::path::join` asks
	// for "path::join").
	Function(member string) (function.Function, bool)
}

// Native is a Dependency assembled from Go values and functions.
type Native struct {
	DepName string
	Attrs   map[string]cty.Value
	Funcs   map[string]function.Function
}

// Name implements Dependency.
func (n *Native) Name() string {
	return n.DepName
}

// Value implements Dependency.
func (n *Native) Value() cty.Value {
	if len(n.Attrs) == 0 {
		return cty.EmptyObjectVal
	}
	return cty.ObjectVal(n.Attrs)
}

// Function implements Dependency.
func (n *Native) Function(member string) (function.Function, bool) {
	fn, ok := n.Funcs[member]
	return fn, ok
}
