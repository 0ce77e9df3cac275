// Package script loads and executes module scripts.
//
// A module script is an HCL file (or a directory of them) whose top-level
// blocks run in source order when the module is imported:
//
//	import "hbp_nrp_cle.brainsim.simulator" { as = "sim" }
//	import "h5py" {}
//
//	function "scale" {
//	  params = [x]
//	  result = x * 2
//	}
//
//	let "population" {
//	  value = sim::Population(scale(10), sim::IF_cond_alpha())
//	}
//
//	do "load_weights" {
//	  weights = h5py::File("data/models/eye.h5", "r")
//	}
//
// Dependencies are called through HCL namespaced functions
// (`alias::member(...)`) and read through attributes (`alias.attr`).
// Resolution of every import is delegated to an Importer, which is where
// interception happens.
package script

import (
	"github.com/hashicorp/hcl/v2"
	"github.com/specialistvlad/resprobe/internal/exprscan"
)

// Kind identifies a top-level statement.
type Kind int

const (
	KindImport Kind = iota
	KindLet
	KindDo
)

// String returns the block type of the statement kind.
func (k Kind) String() string {
	switch k {
	case KindImport:
		return "import"
	case KindLet:
		return "let"
	case KindDo:
		return "do"
	default:
		return "unknown"
	}
}

// Statement is one executable top-level block.
type Statement struct {
	Kind Kind
	// Name is the module name for imports, the bound name for lets and the
	// label for do blocks.
	Name  string
	Alias string
	// Attrs holds the expressions to evaluate, in source order.
	Attrs []*hcl.Attribute
	Range hcl.Range
}

// Module is a parsed module script, ready to be executed any number of times.
type Module struct {
	Name       string
	Files      []string
	Statements []*Statement

	// bodies keeps the raw file bodies; user functions are decoded from
	// them per execution so each run gets its own evaluation context.
	bodies      []hcl.Body
	expressions *exprscan.Container
}

// Imports returns the names imported by the module, in order.
func (m *Module) Imports() []string {
	var names []string
	for _, s := range m.Statements {
		if s.Kind == KindImport {
			names = append(names, s.Name)
		}
	}
	return names
}

// CalledFunctions returns every function name called anywhere in the module.
func (m *Module) CalledFunctions() []string {
	return m.expressions.CalledFunctions()
}
