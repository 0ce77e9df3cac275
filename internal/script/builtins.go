package script

import (
	"fmt"
	"io"
	"strings"

	"github.com/hashicorp/hcl/v2/ext/tryfunc"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/function"
	"github.com/zclconf/go-cty/cty/function/stdlib"
	ctyjson "github.com/zclconf/go-cty/cty/json"
)

// builtinFunctions are available to every module without an import.
func builtinFunctions(out io.Writer) map[string]function.Function {
	return map[string]function.Function{
		"print":      printFunc(out),
		"try":        tryfunc.TryFunc,
		"can":        tryfunc.CanFunc,
		"format":     stdlib.FormatFunc,
		"join":       stdlib.JoinFunc,
		"split":      stdlib.SplitFunc,
		"upper":      stdlib.UpperFunc,
		"lower":      stdlib.LowerFunc,
		"length":     stdlib.LengthFunc,
		"concat":     stdlib.ConcatFunc,
		"range":      stdlib.RangeFunc,
		"replace":    stdlib.ReplaceFunc,
		"jsonencode": stdlib.JSONEncodeFunc,
	}
}

// printFunc writes its arguments, space separated, to the module output
// stream. Values that are not wholly known (anything derived from a
// placeholder) print as "<placeholder>".
func printFunc(out io.Writer) function.Function {
	return function.New(&function.Spec{
		Description: "Writes its arguments to the module output stream.",
		VarParam: &function.Parameter{
			Name:             "values",
			Type:             cty.DynamicPseudoType,
			AllowNull:        true,
			AllowUnknown:     true,
			AllowDynamicType: true,
		},
		Type: function.StaticReturnType(cty.DynamicPseudoType),
		Impl: func(args []cty.Value, retType cty.Type) (cty.Value, error) {
			parts := make([]string, len(args))
			for i, arg := range args {
				parts[i] = render(arg)
			}
			if _, err := fmt.Fprintln(out, strings.Join(parts, " ")); err != nil {
				return cty.NilVal, err
			}
			return cty.NullVal(cty.DynamicPseudoType), nil
		},
	})
}

func render(v cty.Value) string {
	switch {
	case !v.IsWhollyKnown():
		return "<placeholder>"
	case v.IsNull():
		return "null"
	case v.Type().Equals(cty.String):
		return v.AsString()
	}
	raw, err := ctyjson.Marshal(v, v.Type())
	if err != nil {
		return v.GoString()
	}
	return string(raw)
}
