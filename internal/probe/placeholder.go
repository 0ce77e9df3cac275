package probe

import (
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/function"
)

// placeholder is the inert dependency substituted for every import the
// probe does not allow. Its value is cty.DynamicVal, so any attribute or
// index access yields another placeholder value, and every member path is
// a function that accepts anything and returns a placeholder value.
type placeholder struct {
	name string
}

func (p *placeholder) Name() string {
	return p.name
}

func (p *placeholder) Value() cty.Value {
	return cty.DynamicVal
}

func (p *placeholder) Function(string) (function.Function, bool) {
	return inertFunc, true
}

var inertFunc = function.New(&function.Spec{
	Description: "Accepts any arguments and does nothing.",
	VarParam: &function.Parameter{
		Name:             "args",
		Type:             cty.DynamicPseudoType,
		AllowNull:        true,
		AllowUnknown:     true,
		AllowDynamicType: true,
		AllowMarked:      true,
	},
	Type: function.StaticReturnType(cty.DynamicPseudoType),
	Impl: func(args []cty.Value, retType cty.Type) (cty.Value, error) {
		return cty.DynamicVal, nil
	},
})
