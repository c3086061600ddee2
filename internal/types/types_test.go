package types_test

import (
	"errors"
	"testing"

	"covenant/internal/types"
)

func mustList(t *testing.T, elem types.TypeSignature, maxLen, dim int) *types.List {
	t.Helper()
	l, err := types.NewList(elem, maxLen, dim)
	if err != nil {
		t.Fatalf("NewList(%s, %d, %d): %v", elem, maxLen, dim, err)
	}
	return l
}

func mustTuple(t *testing.T, fields ...types.Field) *types.Tuple {
	t.Helper()
	tup, err := types.NewTuple(fields)
	if err != nil {
		t.Fatalf("NewTuple: %v", err)
	}
	return tup
}

func sampleTypes(t *testing.T) []types.TypeSignature {
	buf20, _ := types.NewBuffer(20)
	buf32, _ := types.NewBuffer(32)
	return []types.TypeSignature{
		types.Int,
		types.Bool,
		types.Void,
		buf20,
		buf32,
		mustList(t, types.Int, 3, 1),
		mustList(t, types.Int, 5, 1),
		mustList(t, types.Int, 5, 2),
		mustList(t, types.Bool, 5, 1),
		mustList(t, types.Any, 0, 1),
		mustTuple(t, types.Field{Name: "a", Type: types.Int}, types.Field{Name: "b", Type: types.Bool}),
		mustTuple(t, types.Field{Name: "b", Type: types.Bool}, types.Field{Name: "a", Type: types.Int}),
		mustTuple(t, types.Field{Name: "a", Type: types.Int}),
		types.NewOptional(types.Int),
		types.NewOptional(types.Any),
		types.NewOptional(types.Bool),
		types.NewResponse(types.Int, types.Any),
		types.NewResponse(types.Any, types.Bool),
	}
}

func TestMostAdmissive_Idempotent(t *testing.T) {
	for _, a := range sampleTypes(t) {
		got, err := types.MostAdmissive(a, a)
		if err != nil {
			t.Errorf("MostAdmissive(%s, %s): unexpected error %v", a, a, err)
			continue
		}
		if !types.Equal(got, a) {
			t.Errorf("MostAdmissive(%s, %s) = %s", a, a, got)
		}
	}
}

func TestMostAdmissive_Symmetric(t *testing.T) {
	samples := sampleTypes(t)
	for _, a := range samples {
		for _, b := range samples {
			ab, errAB := types.MostAdmissive(a, b)
			ba, errBA := types.MostAdmissive(b, a)
			if (errAB == nil) != (errBA == nil) {
				t.Errorf("MostAdmissive(%s, %s) and reverse disagree on success: %v / %v", a, b, errAB, errBA)
				continue
			}
			if errAB == nil && !types.Equal(ab, ba) {
				t.Errorf("MostAdmissive(%s, %s) = %s but reverse = %s", a, b, ab, ba)
			}
		}
	}
}

func TestMostAdmissive_ResultAdmitsBoth(t *testing.T) {
	samples := sampleTypes(t)
	for _, a := range samples {
		for _, b := range samples {
			u, err := types.MostAdmissive(a, b)
			if err != nil || types.IsVoid(u) {
				continue
			}
			if !types.Admits(u, a) || !types.Admits(u, b) {
				t.Errorf("MostAdmissive(%s, %s) = %s does not admit both", a, b, u)
			}
		}
	}
}

func TestMostAdmissive_Rules(t *testing.T) {
	tests := []struct {
		name string
		a, b types.TypeSignature
		want types.TypeSignature
	}{
		{"any left", types.Any, types.Int, types.Int},
		{"any right", types.Bool, types.Any, types.Bool},
		{"optional none", types.NewOptional(types.Any), types.NewOptional(types.Int), types.NewOptional(types.Int)},
		{"list widens length", mustList(t, types.Int, 3, 1), mustList(t, types.Int, 5, 1), mustList(t, types.Int, 5, 1)},
		{"empty list", mustList(t, types.Any, 0, 1), mustList(t, types.Int, 5, 2), mustList(t, types.Int, 5, 2)},
		{"response sides", types.NewResponse(types.Int, types.Any), types.NewResponse(types.Any, types.Bool), types.NewResponse(types.Int, types.Bool)},
	}
	for _, tt := range tests {
		got, err := types.MostAdmissive(tt.a, tt.b)
		if err != nil {
			t.Errorf("%s: unexpected error %v", tt.name, err)
			continue
		}
		if !types.Equal(got, tt.want) {
			t.Errorf("%s: got %s, want %s", tt.name, got, tt.want)
		}
	}
}

func TestMostAdmissive_Mismatch(t *testing.T) {
	tests := []struct {
		a, b types.TypeSignature
	}{
		{types.Int, types.Bool},
		{mustList(t, types.Int, 3, 1), mustList(t, types.Int, 3, 2)},
		{mustList(t, types.Int, 3, 1), mustList(t, types.Bool, 3, 1)},
		{types.NewOptional(types.Int), types.Int},
		{mustTuple(t, types.Field{Name: "a", Type: types.Int}), mustTuple(t, types.Field{Name: "b", Type: types.Int})},
	}
	for _, tt := range tests {
		_, err := types.MostAdmissive(tt.a, tt.b)
		var mm *types.MismatchError
		if !errors.As(err, &mm) {
			t.Errorf("MostAdmissive(%s, %s): expected MismatchError, got %v", tt.a, tt.b, err)
			continue
		}
		if !types.Equal(mm.A, tt.a) || !types.Equal(mm.B, tt.b) {
			t.Errorf("mismatch reports (%s, %s), want (%s, %s)", mm.A, mm.B, tt.a, tt.b)
		}
	}
}

func TestTuple_EqualityIgnoresOrder(t *testing.T) {
	ab := mustTuple(t, types.Field{Name: "a", Type: types.Int}, types.Field{Name: "b", Type: types.Bool})
	ba := mustTuple(t, types.Field{Name: "b", Type: types.Bool}, types.Field{Name: "a", Type: types.Int})
	if !types.Equal(ab, ba) {
		t.Fatalf("expected %s == %s", ab, ba)
	}
	if ab.Fields()[0].Name != "a" || ba.Fields()[0].Name != "b" {
		t.Fatalf("declaration order not preserved")
	}
}

func TestTuple_Construction(t *testing.T) {
	_, err := types.NewTuple([]types.Field{{Name: "a", Type: types.Int}, {Name: "a", Type: types.Bool}})
	if err == nil {
		t.Fatalf("expected duplicate field error")
	}
	_, err = types.NewTuple(nil)
	if err == nil {
		t.Fatalf("expected empty tuple error")
	}
	_, err = types.NewTuple([]types.Field{{Name: "a", Type: types.Void}})
	if err == nil {
		t.Fatalf("expected void field error")
	}
}

func TestTuple_FieldType(t *testing.T) {
	tup := mustTuple(t, types.Field{Name: "amount", Type: types.Int})
	ft, err := tup.FieldType("amount")
	if err != nil || !types.Equal(ft, types.Int) {
		t.Fatalf("FieldType(amount) = %v, %v", ft, err)
	}
	_, err = tup.FieldType("missing")
	var te *types.Error
	if !errors.As(err, &te) || te.Kind != types.NoSuchTupleField {
		t.Fatalf("expected NoSuchTupleField, got %v", err)
	}
}

func TestNewList_Bounds(t *testing.T) {
	tests := []struct {
		maxLen, dim int
		kind        types.ErrorKind
	}{
		{types.MaxListLength + 1, 1, types.ListTooLarge},
		{1, types.MaxListDimension + 1, types.ListDimensionTooHigh},
		{1, 0, types.BadTypeConstruction},
	}
	for _, tt := range tests {
		_, err := types.NewList(types.Int, tt.maxLen, tt.dim)
		var te *types.Error
		if !errors.As(err, &te) || te.Kind != tt.kind {
			t.Errorf("NewList(int, %d, %d): expected %s, got %v", tt.maxLen, tt.dim, tt.kind, err)
		}
	}
	if _, err := types.NewList(types.Void, 1, 1); err == nil {
		t.Errorf("expected void element to be rejected")
	}
}

func TestNewList_FoldsNestedLists(t *testing.T) {
	inner := mustList(t, types.Int, 5, 1)
	outer := mustList(t, inner, 3, 1)
	if outer.Dimension != 2 || outer.MaxLen != 5 || !types.Equal(outer.Elem, types.Int) {
		t.Fatalf("unexpected folded list %s (dim %d)", outer, outer.Dimension)
	}
	if !types.Equal(outer.ElementType(), inner) {
		t.Fatalf("ElementType() = %s, want %s", outer.ElementType(), inner)
	}
}

func TestParentListType(t *testing.T) {
	got, err := types.ParentListType([]types.TypeSignature{types.Int, types.Int, types.Int})
	if err != nil || !types.Equal(got, mustList(t, types.Int, 3, 1)) {
		t.Fatalf("ParentListType(int x3) = %v, %v", got, err)
	}

	nested, err := types.ParentListType([]types.TypeSignature{mustList(t, types.Int, 2, 1), mustList(t, types.Int, 1, 1)})
	if err != nil || !types.Equal(nested, mustList(t, types.Int, 2, 2)) {
		t.Fatalf("nested ParentListType = %v, %v", nested, err)
	}

	empty, err := types.ParentListType(nil)
	if err != nil || !types.IsAny(empty.Elem) || empty.MaxLen != 0 {
		t.Fatalf("empty ParentListType = %v, %v", empty, err)
	}

	_, err = types.ParentListType([]types.TypeSignature{types.Int, types.Bool})
	var te *types.Error
	if !errors.As(err, &te) || te.Kind != types.BadTypeConstruction {
		t.Fatalf("expected BadTypeConstruction, got %v", err)
	}

	deep := types.TypeSignature(types.Int)
	for i := 0; i < types.MaxListDimension; i++ {
		deep, err = types.ParentListType([]types.TypeSignature{deep})
		if err != nil {
			t.Fatalf("depth %d: %v", i+1, err)
		}
	}
	_, err = types.ParentListType([]types.TypeSignature{deep})
	if !errors.As(err, &te) || te.Kind != types.ListDimensionTooHigh {
		t.Fatalf("expected ListDimensionTooHigh, got %v", err)
	}
}

func TestAdmits(t *testing.T) {
	buf20, _ := types.NewBuffer(20)
	buf32, _ := types.NewBuffer(32)
	tests := []struct {
		expected, actual types.TypeSignature
		want             bool
	}{
		{types.Int, types.Int, true},
		{types.Int, types.Bool, false},
		{buf32, buf20, true},
		{buf20, buf32, false},
		{mustList(t, types.Int, 5, 1), mustList(t, types.Int, 3, 1), true},
		{mustList(t, types.Int, 5, 1), mustList(t, types.Int, 6, 1), false},
		{mustList(t, types.Int, 5, 1), mustList(t, types.Bool, 3, 1), false},
		{mustList(t, types.Int, 5, 1), mustList(t, types.Any, 0, 1), true},
		{types.NewOptional(types.Int), types.NewOptional(types.Any), true},
		{types.NewOptional(types.Int), types.Int, false},
		{types.Any, types.Int, true},
		{types.Any, types.Void, false},
	}
	for _, tt := range tests {
		if got := types.Admits(tt.expected, tt.actual); got != tt.want {
			t.Errorf("Admits(%s, %s) = %v, want %v", tt.expected, tt.actual, got, tt.want)
		}
	}
}
