package exprscan_test

import (
	"testing"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/specialistvlad/resprobe/internal/exprscan"
	"github.com/stretchr/testify/require"
)

// parseExpr is a test helper to quickly get an hcl.Expression from a string.
func parseExpr(t *testing.T, exprStr string) hcl.Expression {
	t.Helper()
	expr, diags := hclsyntax.ParseExpression([]byte(exprStr), "test.hcl", hcl.Pos{Line: 1, Column: 1})
	require.False(t, diags.HasErrors(), "Expression parsing failed: %s", diags.Error())
	return expr
}

func TestContainer_AddAndExtract(t *testing.T) {
	c := exprscan.NewContainer()
	c.Add(
		parseExpr(t, `upper("hello")`),
		parseExpr(t, `sim.population.size`),
		parseExpr(t, `sim::Projection(np::zeros(layer.size), sim::AllToAllConnector())`),
		parseExpr(t, `[for x in items : lower(x)]`),
		nil,
	)

	require.Equal(t, []string{
		"lower",
		"np::zeros",
		"sim::AllToAllConnector",
		"sim::Projection",
		"upper",
	}, c.CalledFunctions())
	require.Equal(t, []string{"items", "layer", "sim"}, c.RootNames())
	require.Equal(t, []string{"np", "sim"}, c.Namespaces())
}

func TestContainer_AddAfterExtract(t *testing.T) {
	c := exprscan.NewContainer()
	c.Add(parseExpr(t, `first`))
	require.Equal(t, []string{"first"}, c.RootNames())

	c.Add(parseExpr(t, `h5py::File(second, "r")`))
	require.Equal(t, []string{"first", "second"}, c.RootNames())
	require.Equal(t, []string{"h5py::File"}, c.CalledFunctions())
}

func TestContainer_Empty(t *testing.T) {
	c := exprscan.NewContainer()
	require.Empty(t, c.RootNames())
	require.Empty(t, c.CalledFunctions())
	require.Empty(t, c.Namespaces())
}

func TestSplitFunctionName(t *testing.T) {
	cases := []struct {
		in, root, member string
	}{
		{"print", "", "print"},
		{"h5py::File", "h5py", "File"},
		{"np::linalg::norm", "np", "linalg::norm"},
	}
	for _, tc := range cases {
		root, member := exprscan.SplitFunctionName(tc.in)
		require.Equal(t, tc.root, root, tc.in)
		require.Equal(t, tc.member, member, tc.in)
	}
}
