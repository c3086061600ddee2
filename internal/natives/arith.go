package natives

import (
	"math/big"

	"covenant/internal/types"
	"covenant/internal/value"
)

func intArgs(name string, args []value.Value) ([]*big.Int, error) {
	out := make([]*big.Int, len(args))
	for i, a := range args {
		if a.Kind != value.KindInt || a.Int == nil {
			return nil, invalidf("%s: argument %d is %s, expected int", name, i+1, a.Kind)
		}
		out[i] = a.Int
	}
	return out, nil
}

func checked(name string, n *big.Int) (value.Value, error) {
	if !value.InRange(n) {
		return value.Value{}, arithmeticf("%s: result overflows 128 bits", name)
	}
	return value.Value{Kind: value.KindInt, Int: n}, nil
}

func twoInts() []types.FunctionArg {
	return []types.FunctionArg{{Name: "a", Type: types.Int}, {Name: "b", Type: types.Int}}
}

func registerArithmetic() {
	register(Meta{ID: Add, Name: "+", Type: types.Variadic(types.Int, types.Int), Call: add})
	register(Meta{ID: Subtract, Name: "-", Type: types.Variadic(types.Int, types.Int), Call: subtract})
	register(Meta{ID: Multiply, Name: "*", Type: types.Variadic(types.Int, types.Int), Call: multiply})
	register(Meta{ID: Divide, Name: "/", Type: types.Variadic(types.Int, types.Int), Call: divide})
	register(Meta{ID: Modulo, Name: "mod", Type: types.Fixed(types.Int, twoInts()...), Call: modulo})
	register(Meta{ID: Power, Name: "pow", Type: types.Fixed(types.Int, twoInts()...), Call: power})
	register(Meta{ID: BitwiseXOR, Name: "xor", Type: types.Fixed(types.Int, twoInts()...), Call: xor})

	register(Meta{ID: CmpGeq, Name: ">=", Type: types.Fixed(types.Bool, twoInts()...), Call: compare(">=", func(c int) bool { return c >= 0 })})
	register(Meta{ID: CmpLeq, Name: "<=", Type: types.Fixed(types.Bool, twoInts()...), Call: compare("<=", func(c int) bool { return c <= 0 })})
	register(Meta{ID: CmpLess, Name: "<", Type: types.Fixed(types.Bool, twoInts()...), Call: compare("<", func(c int) bool { return c < 0 })})
	register(Meta{ID: CmpGreater, Name: ">", Type: types.Fixed(types.Bool, twoInts()...), Call: compare(">", func(c int) bool { return c > 0 })})
}

func add(args []value.Value) (value.Value, error) {
	ns, err := intArgs("+", args)
	if err != nil {
		return value.Value{}, err
	}
	sum := new(big.Int)
	for _, n := range ns {
		sum.Add(sum, n)
		if !value.InRange(sum) {
			return value.Value{}, arithmeticf("+: result overflows 128 bits")
		}
	}
	return checked("+", sum)
}

func subtract(args []value.Value) (value.Value, error) {
	ns, err := intArgs("-", args)
	if err != nil {
		return value.Value{}, err
	}
	if len(ns) == 0 {
		return value.Value{}, invalidf("-: expects at least one argument")
	}
	if len(ns) == 1 {
		return checked("-", new(big.Int).Neg(ns[0]))
	}
	diff := new(big.Int).Set(ns[0])
	for _, n := range ns[1:] {
		diff.Sub(diff, n)
		if !value.InRange(diff) {
			return value.Value{}, arithmeticf("-: result overflows 128 bits")
		}
	}
	return checked("-", diff)
}

func multiply(args []value.Value) (value.Value, error) {
	ns, err := intArgs("*", args)
	if err != nil {
		return value.Value{}, err
	}
	prod := big.NewInt(1)
	for _, n := range ns {
		prod.Mul(prod, n)
		if !value.InRange(prod) {
			return value.Value{}, arithmeticf("*: result overflows 128 bits")
		}
	}
	return checked("*", prod)
}

// divide truncates toward zero.
func divide(args []value.Value) (value.Value, error) {
	ns, err := intArgs("/", args)
	if err != nil {
		return value.Value{}, err
	}
	if len(ns) == 0 {
		return value.Value{}, invalidf("/: expects at least one argument")
	}
	quo := new(big.Int).Set(ns[0])
	for _, n := range ns[1:] {
		if n.Sign() == 0 {
			return value.Value{}, arithmeticf("/: division by zero")
		}
		quo.Quo(quo, n)
	}
	// min / -1 is the only quotient that leaves the range.
	return checked("/", quo)
}

// modulo takes the sign of the dividend.
func modulo(args []value.Value) (value.Value, error) {
	ns, err := intArgs("mod", args)
	if err != nil {
		return value.Value{}, err
	}
	if len(ns) != 2 {
		return value.Value{}, invalidf("mod: expects 2 arguments, got %d", len(ns))
	}
	if ns[1].Sign() == 0 {
		return value.Value{}, arithmeticf("mod: division by zero")
	}
	return checked("mod", new(big.Int).Rem(ns[0], ns[1]))
}

func power(args []value.Value) (value.Value, error) {
	ns, err := intArgs("pow", args)
	if err != nil {
		return value.Value{}, err
	}
	if len(ns) != 2 {
		return value.Value{}, invalidf("pow: expects 2 arguments, got %d", len(ns))
	}
	base, exp := ns[0], ns[1]
	if exp.Sign() < 0 {
		return value.Value{}, arithmeticf("pow: negative exponent %s", exp)
	}
	if base.CmpAbs(big.NewInt(1)) > 0 && exp.Cmp(big.NewInt(128)) > 0 {
		return value.Value{}, arithmeticf("pow: result overflows 128 bits")
	}
	return checked("pow", new(big.Int).Exp(base, exp, nil))
}

// xor operates on two's complement representations.
func xor(args []value.Value) (value.Value, error) {
	ns, err := intArgs("xor", args)
	if err != nil {
		return value.Value{}, err
	}
	if len(ns) != 2 {
		return value.Value{}, invalidf("xor: expects 2 arguments, got %d", len(ns))
	}
	return checked("xor", new(big.Int).Xor(ns[0], ns[1]))
}

func compare(name string, accept func(int) bool) func([]value.Value) (value.Value, error) {
	return func(args []value.Value) (value.Value, error) {
		ns, err := intArgs(name, args)
		if err != nil {
			return value.Value{}, err
		}
		if len(ns) != 2 {
			return value.Value{}, invalidf("%s: expects 2 arguments, got %d", name, len(ns))
		}
		return value.Bool(accept(ns[0].Cmp(ns[1]))), nil
	}
}
