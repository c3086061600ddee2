package natives

import (
	"covenant/internal/types"
	"covenant/internal/value"
)

func registerLogic() {
	register(Meta{ID: And, Name: "and", Type: types.Variadic(types.Bool, types.Bool), Call: and})
	register(Meta{ID: Or, Name: "or", Type: types.Variadic(types.Bool, types.Bool), Call: or})
	register(Meta{
		ID:   Not,
		Name: "not",
		Type: types.Fixed(types.Bool, types.FunctionArg{Name: "x", Type: types.Bool}),
		Call: not,
	})
}

func boolArgs(name string, args []value.Value) ([]bool, error) {
	out := make([]bool, len(args))
	for i, a := range args {
		if a.Kind != value.KindBool {
			return nil, invalidf("%s: argument %d is %s, expected bool", name, i+1, a.Kind)
		}
		out[i] = a.Bool
	}
	return out, nil
}

func and(args []value.Value) (value.Value, error) {
	bs, err := boolArgs("and", args)
	if err != nil {
		return value.Value{}, err
	}
	for _, b := range bs {
		if !b {
			return value.Bool(false), nil
		}
	}
	return value.Bool(true), nil
}

func or(args []value.Value) (value.Value, error) {
	bs, err := boolArgs("or", args)
	if err != nil {
		return value.Value{}, err
	}
	for _, b := range bs {
		if b {
			return value.Bool(true), nil
		}
	}
	return value.Bool(false), nil
}

func not(args []value.Value) (value.Value, error) {
	bs, err := boolArgs("not", args)
	if err != nil {
		return value.Value{}, err
	}
	if len(bs) != 1 {
		return value.Value{}, invalidf("not: expects 1 argument, got %d", len(bs))
	}
	return value.Bool(!bs[0]), nil
}
