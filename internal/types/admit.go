package types

// MostAdmissive returns the least type that both a and b satisfy.
//
// Lists take the larger length bound. Their dimensions must agree unless
// one side is an empty-list type, whose element type is Any. Buffers take
// the larger length bound.
func MostAdmissive(a, b TypeSignature) (TypeSignature, error) {
	if a == nil || b == nil {
		return nil, &MismatchError{A: a, B: b}
	}
	if IsAny(a) {
		return b, nil
	}
	if IsAny(b) {
		return a, nil
	}

	switch at := a.(type) {
	case *Basic:
		if at.equal(b) {
			return a, nil
		}
	case *Buffer:
		if bt, ok := b.(*Buffer); ok {
			return &Buffer{MaxLen: max(at.MaxLen, bt.MaxLen)}, nil
		}
	case *List:
		if bt, ok := b.(*List); ok {
			if l, ok := unifyLists(at, bt); ok {
				return l, nil
			}
		}
	case *Tuple:
		if bt, ok := b.(*Tuple); ok && at.Len() == bt.Len() {
			fields := make([]Field, 0, at.Len())
			for _, f := range at.fields {
				other, err := bt.FieldType(f.Name)
				if err != nil {
					return nil, &MismatchError{A: a, B: b}
				}
				unified, err := MostAdmissive(f.Type, other)
				if err != nil {
					return nil, &MismatchError{A: a, B: b}
				}
				fields = append(fields, Field{Name: f.Name, Type: unified})
			}
			return NewTuple(fields)
		}
	case *Optional:
		if bt, ok := b.(*Optional); ok {
			inner, err := MostAdmissive(at.Inner, bt.Inner)
			if err != nil {
				return nil, &MismatchError{A: a, B: b}
			}
			return NewOptional(inner), nil
		}
	case *Response:
		if bt, ok := b.(*Response); ok {
			okType, err := MostAdmissive(at.Ok, bt.Ok)
			if err != nil {
				return nil, &MismatchError{A: a, B: b}
			}
			errType, err := MostAdmissive(at.Err, bt.Err)
			if err != nil {
				return nil, &MismatchError{A: a, B: b}
			}
			return NewResponse(okType, errType), nil
		}
	}
	return nil, &MismatchError{A: a, B: b}
}

func unifyLists(a, b *List) (*List, bool) {
	maxLen := max(a.MaxLen, b.MaxLen)
	aEmpty, bEmpty := IsAny(a.Elem), IsAny(b.Elem)
	switch {
	case aEmpty && bEmpty:
		return &List{Elem: Any, MaxLen: maxLen, Dimension: max(a.Dimension, b.Dimension)}, true
	case aEmpty:
		if !emptyFits(a, b.Dimension) {
			return nil, false
		}
		return &List{Elem: b.Elem, MaxLen: maxLen, Dimension: b.Dimension}, true
	case bEmpty:
		if !emptyFits(b, a.Dimension) {
			return nil, false
		}
		return &List{Elem: a.Elem, MaxLen: maxLen, Dimension: a.Dimension}, true
	}
	if a.Dimension != b.Dimension {
		return nil, false
	}
	elem, err := MostAdmissive(a.Elem, b.Elem)
	if err != nil {
		return nil, false
	}
	return &List{Elem: elem, MaxLen: maxLen, Dimension: a.Dimension}, true
}

// emptyFits reports whether values of the empty-list type e also inhabit a
// list of the given dimension.
func emptyFits(e *List, dimension int) bool {
	return e.MaxLen == 0 || e.Dimension <= dimension
}

// Admits reports whether every value of actual is also a value of expected.
func Admits(expected, actual TypeSignature) bool {
	if expected == nil || actual == nil {
		return false
	}
	if IsAny(expected) {
		return isValueType(actual)
	}
	if IsAny(actual) {
		return true
	}

	switch et := expected.(type) {
	case *Basic:
		return et.equal(actual)
	case *Buffer:
		at, ok := actual.(*Buffer)
		return ok && at.MaxLen <= et.MaxLen
	case *List:
		at, ok := actual.(*List)
		if !ok || at.MaxLen > et.MaxLen {
			return false
		}
		if IsAny(at.Elem) {
			return emptyFits(at, et.Dimension)
		}
		return at.Dimension == et.Dimension && Admits(et.Elem, at.Elem)
	case *Tuple:
		at, ok := actual.(*Tuple)
		if !ok || at.Len() != et.Len() {
			return false
		}
		for _, f := range et.fields {
			other, err := at.FieldType(f.Name)
			if err != nil || !Admits(f.Type, other) {
				return false
			}
		}
		return true
	case *Optional:
		at, ok := actual.(*Optional)
		return ok && Admits(et.Inner, at.Inner)
	case *Response:
		at, ok := actual.(*Response)
		return ok && Admits(et.Ok, at.Ok) && Admits(et.Err, at.Err)
	}
	return false
}

// ParentListType infers the tightest list type holding elements of the
// given types.
func ParentListType(elems []TypeSignature) (*List, error) {
	if len(elems) == 0 {
		return &List{Elem: Any, MaxLen: 0, Dimension: 1}, nil
	}
	unified := elems[0]
	for _, t := range elems[1:] {
		next, err := MostAdmissive(unified, t)
		if err != nil {
			return nil, newError(BadTypeConstruction, "list elements %s and %s do not match", typeName(unified), typeName(t))
		}
		unified = next
	}
	if len(elems) > MaxListLength {
		return nil, newError(ListTooLarge, "list of %d elements exceeds %d", len(elems), MaxListLength)
	}
	return NewList(unified, len(elems), 1)
}
