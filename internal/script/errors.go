package script

import (
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"
)

// EvalError reports diagnostics raised while evaluating a module's
// expressions. Errors returned by dependency functions are reachable
// through errors.Is and errors.As.
type EvalError struct {
	Module string
	Diags  hcl.Diagnostics
}

// Error implements the error interface.
func (e *EvalError) Error() string {
	return fmt.Sprintf("evaluating module %q: %s", e.Module, e.Diags.Error())
}

// Unwrap returns the errors that dependency functions returned, in
// diagnostic order.
func (e *EvalError) Unwrap() []error {
	var errs []error
	for _, diag := range e.Diags {
		extra, ok := hcl.DiagnosticExtra[hclsyntax.FunctionCallDiagExtra](diag)
		if !ok {
			continue
		}
		if err := extra.FunctionCallError(); err != nil {
			errs = append(errs, err)
		}
	}
	return errs
}

// ImportError reports a failed import statement.
type ImportError struct {
	Module string
	Name   string
	Range  hcl.Range
	Err    error
}

// Error implements the error interface.
func (e *ImportError) Error() string {
	return fmt.Sprintf("%s: module %q failed to import %q: %v", e.Range, e.Module, e.Name, e.Err)
}

// Unwrap returns the underlying resolution error.
func (e *ImportError) Unwrap() error {
	return e.Err
}
