package value

import (
	"encoding/hex"
	"fmt"
	"math/big"
	"strings"

	"covenant/internal/types"
)

// Kind is the type of a value at runtime.
type Kind int

const (
	KindVoid Kind = iota
	KindInt
	KindBool
	KindBuffer
	KindList
	KindTuple
	KindOptional
	KindResponse
)

func (k Kind) String() string {
	switch k {
	case KindVoid:
		return "void"
	case KindInt:
		return "int"
	case KindBool:
		return "bool"
	case KindBuffer:
		return "buffer"
	case KindList:
		return "list"
	case KindTuple:
		return "tuple"
	case KindOptional:
		return "optional"
	case KindResponse:
		return "response"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// ListValue is a homogeneous list together with its list type.
type ListValue struct {
	Items []Value
	Type  *types.List
}

// TupleField is one named field of a tuple value.
type TupleField struct {
	Name  string
	Value Value
}

// TupleValue keeps fields in declaration order.
type TupleValue struct {
	Fields []TupleField
	Type   *types.Tuple
}

// OptionalValue represents an optional value (some or none)
type OptionalValue struct {
	IsSome bool
	Value  Value // only valid if IsSome is true
}

// ResponseValue is the result of ok or err.
type ResponseValue struct {
	IsOk  bool
	Value Value
}

// Value is a universal value for the evaluator. Values are immutable once
// built; the Int pointer must never be mutated.
type Value struct {
	Kind     Kind
	Int      *big.Int
	Bool     bool
	Buffer   []byte
	List     *ListValue
	Tuple    *TupleValue
	Optional *OptionalValue
	Response *ResponseValue
}

var (
	minInt = new(big.Int).Neg(new(big.Int).Lsh(big.NewInt(1), 127))
	maxInt = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 127), big.NewInt(1))
)

// InRange reports whether n fits a signed 128-bit integer.
func InRange(n *big.Int) bool {
	return n.Cmp(minInt) >= 0 && n.Cmp(maxInt) <= 0
}

// Helpers

func Void() Value {
	return Value{Kind: KindVoid}
}

func Int(v int64) Value {
	return Value{Kind: KindInt, Int: big.NewInt(v)}
}

// BigInt wraps n, which must lie in the signed 128-bit range.
func BigInt(n *big.Int) (Value, error) {
	if !InRange(n) {
		return Value{}, fmt.Errorf("integer %s overflows 128 bits", n)
	}
	return Value{Kind: KindInt, Int: new(big.Int).Set(n)}, nil
}

func Bool(v bool) Value {
	return Value{Kind: KindBool, Bool: v}
}

func Buffer(b []byte) Value {
	return Value{Kind: KindBuffer, Buffer: b}
}

// List builds a list value, inferring its type from the items.
func List(items []Value) (Value, error) {
	elemTypes := make([]types.TypeSignature, len(items))
	for i, item := range items {
		elemTypes[i] = TypeOf(item)
	}
	lt, err := types.ParentListType(elemTypes)
	if err != nil {
		return Value{}, err
	}
	return Value{Kind: KindList, List: &ListValue{Items: items, Type: lt}}, nil
}

// TypedList builds a list value carrying the given list type.
func TypedList(lt *types.List, items []Value) Value {
	return Value{Kind: KindList, List: &ListValue{Items: items, Type: lt}}
}

// Tuple builds a tuple value from fields in declaration order.
func Tuple(fields []TupleField) (Value, error) {
	sigFields := make([]types.Field, len(fields))
	for i, f := range fields {
		sigFields[i] = types.Field{Name: f.Name, Type: TypeOf(f.Value)}
	}
	tt, err := types.NewTuple(sigFields)
	if err != nil {
		return Value{}, err
	}
	return Value{Kind: KindTuple, Tuple: &TupleValue{Fields: fields, Type: tt}}, nil
}

func Some(v Value) Value {
	return Value{
		Kind: KindOptional,
		Optional: &OptionalValue{
			IsSome: true,
			Value:  v,
		},
	}
}

func None() Value {
	return Value{
		Kind: KindOptional,
		Optional: &OptionalValue{
			IsSome: false,
		},
	}
}

func Okay(v Value) Value {
	return Value{Kind: KindResponse, Response: &ResponseValue{IsOk: true, Value: v}}
}

func Err(v Value) Value {
	return Value{Kind: KindResponse, Response: &ResponseValue{IsOk: false, Value: v}}
}

// Field returns the named field of a tuple value.
func (v Value) Field(name string) (Value, bool) {
	if v.Kind != KindTuple || v.Tuple == nil {
		return Value{}, false
	}
	for _, f := range v.Tuple.Fields {
		if f.Name == name {
			return f.Value, true
		}
	}
	return Value{}, false
}

// TypeOf returns the type signature of v. The missing side of an empty list,
// a none, or a response carries Any.
func TypeOf(v Value) types.TypeSignature {
	switch v.Kind {
	case KindInt:
		return types.Int
	case KindBool:
		return types.Bool
	case KindBuffer:
		return &types.Buffer{MaxLen: len(v.Buffer)}
	case KindList:
		return v.List.Type
	case KindTuple:
		return v.Tuple.Type
	case KindOptional:
		if v.Optional.IsSome {
			return types.NewOptional(TypeOf(v.Optional.Value))
		}
		return types.NewOptional(types.Any)
	case KindResponse:
		if v.Response.IsOk {
			return types.NewResponse(TypeOf(v.Response.Value), types.Any)
		}
		return types.NewResponse(types.Any, TypeOf(v.Response.Value))
	default:
		return types.Void
	}
}

// Equal compares values structurally. Tuple field order and list type
// bounds do not matter.
func Equal(a, b Value) bool {
	if a.Kind != b.Kind {
		return false
	}
	switch a.Kind {
	case KindVoid:
		return true
	case KindInt:
		return a.Int.Cmp(b.Int) == 0
	case KindBool:
		return a.Bool == b.Bool
	case KindBuffer:
		return string(a.Buffer) == string(b.Buffer)
	case KindList:
		if len(a.List.Items) != len(b.List.Items) {
			return false
		}
		for i := range a.List.Items {
			if !Equal(a.List.Items[i], b.List.Items[i]) {
				return false
			}
		}
		return true
	case KindTuple:
		if len(a.Tuple.Fields) != len(b.Tuple.Fields) {
			return false
		}
		for _, f := range a.Tuple.Fields {
			other, ok := b.Field(f.Name)
			if !ok || !Equal(f.Value, other) {
				return false
			}
		}
		return true
	case KindOptional:
		if a.Optional.IsSome != b.Optional.IsSome {
			return false
		}
		return !a.Optional.IsSome || Equal(a.Optional.Value, b.Optional.Value)
	case KindResponse:
		return a.Response.IsOk == b.Response.IsOk && Equal(a.Response.Value, b.Response.Value)
	}
	return false
}

func (v Value) String() string {
	var b strings.Builder
	writeValue(&b, v)
	return b.String()
}

func writeValue(b *strings.Builder, v Value) {
	switch v.Kind {
	case KindVoid:
		b.WriteString("void")
	case KindInt:
		b.WriteString(v.Int.String())
	case KindBool:
		if v.Bool {
			b.WriteString("true")
		} else {
			b.WriteString("false")
		}
	case KindBuffer:
		b.WriteString("0x")
		b.WriteString(hex.EncodeToString(v.Buffer))
	case KindList:
		b.WriteString("(list")
		for _, el := range v.List.Items {
			b.WriteByte(' ')
			writeValue(b, el)
		}
		b.WriteByte(')')
	case KindTuple:
		b.WriteString("(tuple")
		for _, f := range v.Tuple.Fields {
			b.WriteString(" (")
			b.WriteString(f.Name)
			b.WriteByte(' ')
			writeValue(b, f.Value)
			b.WriteByte(')')
		}
		b.WriteByte(')')
	case KindOptional:
		if v.Optional.IsSome {
			b.WriteString("(some ")
			writeValue(b, v.Optional.Value)
			b.WriteByte(')')
		} else {
			b.WriteString("none")
		}
	case KindResponse:
		if v.Response.IsOk {
			b.WriteString("(ok ")
		} else {
			b.WriteString("(err ")
		}
		writeValue(b, v.Response.Value)
		b.WriteByte(')')
	default:
		b.WriteString("<invalid>")
	}
}
