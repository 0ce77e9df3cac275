package exprscan

import (
	"sort"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"
)

// NamespaceSeparator separates segments of a namespaced function call.
const NamespaceSeparator = "::"

// SplitFunctionName splits "np::linalg::norm" into the namespace root ("np")
// and the member path relative to it ("linalg::norm"). A plain name returns
// an empty root.
func SplitFunctionName(name string) (root, member string) {
	idx := strings.Index(name, NamespaceSeparator)
	if idx == -1 {
		return "", name
	}
	return name[:idx], name[idx+len(NamespaceSeparator):]
}

// extractRootsAndFunctions walks HCL expressions to find the unique root
// variable names and called function names. The returned slices are sorted
// to ensure a deterministic order.
func extractRootsAndFunctions(exprs ...hcl.Expression) ([]string, []string) {
	roots := make(map[string]struct{})
	functions := make(map[string]struct{})

	for _, expr := range exprs {
		if expr == nil {
			continue
		}

		for _, traversal := range expr.Variables() {
			roots[traversal.RootName()] = struct{}{}
		}

		// Variables() does not report function calls, so walk the syntax tree.
		if node, ok := expr.(hclsyntax.Node); ok {
			hclsyntax.VisitAll(node, func(n hclsyntax.Node) hcl.Diagnostics {
				if call, ok := n.(*hclsyntax.FunctionCallExpr); ok {
					functions[call.Name] = struct{}{}
				}
				return nil
			})
		}
	}

	return sortedKeys(roots), sortedKeys(functions)
}

func sortedKeys(m map[string]struct{}) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
