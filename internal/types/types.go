package types

import (
	"fmt"
	"strings"
)

// System bounds on composite types.
const (
	MaxBufferLength  = 1 << 20
	MaxListLength    = 1024
	MaxListDimension = 8
	MaxTupleFields   = 256
)

// TypeSignature describes the static type of an expression. The set of
// implementations is closed: *Basic, *Buffer, *List, *Tuple, *Optional and
// *Response.
type TypeSignature interface {
	String() string
	equal(TypeSignature) bool
}

// Basic types

type BasicKind int

const (
	BasicInt BasicKind = iota
	BasicBool
	BasicAny
	BasicVoid
	BasicNoType
)

type Basic struct {
	Kind BasicKind
	Name string
}

func (b *Basic) String() string { return b.Name }

func (b *Basic) equal(other TypeSignature) bool {
	o, ok := other.(*Basic)
	if !ok {
		return false
	}
	return b.Kind == o.Kind
}

var (
	Int  = &Basic{Kind: BasicInt, Name: "int"}
	Bool = &Basic{Kind: BasicBool, Name: "bool"}
	// Any is the checker-internal wildcard: the element type of an empty
	// list, the inner type of 'null.
	Any = &Basic{Kind: BasicAny, Name: "any"}
	// Void marks statement-position expressions such as set-entry!.
	Void = &Basic{Kind: BasicVoid, Name: "void"}
	// NoType marks name tokens (map names, field names, binding names).
	NoType = &Basic{Kind: BasicNoType, Name: "no-type"}
)

func IsAny(t TypeSignature) bool      { return isBasic(t, BasicAny) }
func IsVoid(t TypeSignature) bool     { return isBasic(t, BasicVoid) }
func IsNoType(t TypeSignature) bool   { return isBasic(t, BasicNoType) }
func isValueType(t TypeSignature) bool { return t != nil && !IsVoid(t) && !IsNoType(t) }

func isBasic(t TypeSignature, kind BasicKind) bool {
	if b, ok := t.(*Basic); ok {
		return b.Kind == kind
	}
	return false
}

// Buffer is a byte sequence of at most MaxLen bytes.
type Buffer struct {
	MaxLen int
}

func NewBuffer(maxLen int) (*Buffer, error) {
	if maxLen < 0 || maxLen > MaxBufferLength {
		return nil, newError(ValueTooLarge, "buffer length %d outside [0, %d]", maxLen, MaxBufferLength)
	}
	return &Buffer{MaxLen: maxLen}, nil
}

func (b *Buffer) String() string { return fmt.Sprintf("(buff %d)", b.MaxLen) }

func (b *Buffer) equal(other TypeSignature) bool {
	o, ok := other.(*Buffer)
	return ok && b.MaxLen == o.MaxLen
}

// List is a homogeneous list. Elem is the innermost, non-list element type;
// Dimension counts the list nesting and MaxLen bounds every level.
type List struct {
	Elem      TypeSignature
	MaxLen    int
	Dimension int
}

// NewList builds a list type. A list element type is folded into the
// dimension so that Elem is never itself a list.
func NewList(elem TypeSignature, maxLen, dimension int) (*List, error) {
	if inner, ok := elem.(*List); ok {
		if inner.MaxLen > maxLen {
			maxLen = inner.MaxLen
		}
		elem = inner.Elem
		dimension += inner.Dimension
	}
	if !isValueType(elem) {
		return nil, newError(BadTypeConstruction, "invalid list element type %s", typeName(elem))
	}
	if dimension < 1 {
		return nil, newError(BadTypeConstruction, "list dimension must be positive, got %d", dimension)
	}
	if maxLen < 0 || maxLen > MaxListLength {
		return nil, newError(ListTooLarge, "list length %d exceeds %d", maxLen, MaxListLength)
	}
	if dimension > MaxListDimension {
		return nil, newError(ListDimensionTooHigh, "list dimension %d exceeds %d", dimension, MaxListDimension)
	}
	return &List{Elem: elem, MaxLen: maxLen, Dimension: dimension}, nil
}

// ElementType is the type of one item of the list.
func (l *List) ElementType() TypeSignature {
	if l.Dimension > 1 {
		return &List{Elem: l.Elem, MaxLen: l.MaxLen, Dimension: l.Dimension - 1}
	}
	return l.Elem
}

func (l *List) String() string {
	return fmt.Sprintf("(list %s %d)", l.ElementType().String(), l.MaxLen)
}

func (l *List) equal(other TypeSignature) bool {
	o, ok := other.(*List)
	if !ok {
		return false
	}
	return l.MaxLen == o.MaxLen && l.Dimension == o.Dimension && l.Elem.equal(o.Elem)
}

// Tuple is a record of uniquely named fields. Field order is kept for
// display; comparison ignores it.
type Tuple struct {
	fields []Field
	index  map[string]int
}

type Field struct {
	Name string
	Type TypeSignature
}

func NewTuple(fields []Field) (*Tuple, error) {
	if len(fields) == 0 {
		return nil, newError(BadTypeConstruction, "tuple needs at least one field")
	}
	if len(fields) > MaxTupleFields {
		return nil, newError(BadTypeConstruction, "tuple has %d fields, more than %d", len(fields), MaxTupleFields)
	}
	t := &Tuple{
		fields: make([]Field, 0, len(fields)),
		index:  make(map[string]int, len(fields)),
	}
	for _, f := range fields {
		if f.Name == "" {
			return nil, newError(BadTypeConstruction, "tuple field without a name")
		}
		if _, dup := t.index[f.Name]; dup {
			return nil, newError(BadTypeConstruction, "duplicate tuple field %q", f.Name)
		}
		if !isValueType(f.Type) {
			return nil, newError(BadTypeConstruction, "tuple field %q has invalid type %s", f.Name, typeName(f.Type))
		}
		t.index[f.Name] = len(t.fields)
		t.fields = append(t.fields, f)
	}
	return t, nil
}

// Fields returns the fields in declaration order.
func (t *Tuple) Fields() []Field {
	return append([]Field(nil), t.fields...)
}

func (t *Tuple) Len() int { return len(t.fields) }

// FieldType looks a field up by name.
func (t *Tuple) FieldType(name string) (TypeSignature, error) {
	i, ok := t.index[name]
	if !ok {
		return nil, newError(NoSuchTupleField, "no such tuple field %q", name)
	}
	return t.fields[i].Type, nil
}

func (t *Tuple) String() string {
	var sb strings.Builder
	sb.WriteString("(tuple")
	for _, f := range t.fields {
		fmt.Fprintf(&sb, " (%s %s)", f.Name, f.Type.String())
	}
	sb.WriteString(")")
	return sb.String()
}

func (t *Tuple) equal(other TypeSignature) bool {
	o, ok := other.(*Tuple)
	if !ok || len(t.fields) != len(o.fields) {
		return false
	}
	for _, f := range t.fields {
		j, ok := o.index[f.Name]
		if !ok || !f.Type.equal(o.fields[j].Type) {
			return false
		}
	}
	return true
}

// Optional is either none or some value of Inner.
type Optional struct {
	Inner TypeSignature
}

func NewOptional(inner TypeSignature) *Optional {
	return &Optional{Inner: inner}
}

func (o *Optional) String() string { return "(optional " + o.Inner.String() + ")" }

func (o *Optional) equal(other TypeSignature) bool {
	oo, ok := other.(*Optional)
	return ok && o.Inner.equal(oo.Inner)
}

// Response is the result of ok/err: either an Ok value or an Err value.
type Response struct {
	Ok  TypeSignature
	Err TypeSignature
}

func NewResponse(ok, err TypeSignature) *Response {
	return &Response{Ok: ok, Err: err}
}

func (r *Response) String() string {
	return "(response " + r.Ok.String() + " " + r.Err.String() + ")"
}

func (r *Response) equal(other TypeSignature) bool {
	o, ok := other.(*Response)
	return ok && r.Ok.equal(o.Ok) && r.Err.equal(o.Err)
}

// Equal reports structural equality.
func Equal(a, b TypeSignature) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.equal(b)
}

func typeName(t TypeSignature) string {
	if t == nil {
		return "<nil>"
	}
	return t.String()
}
