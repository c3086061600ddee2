package natives

import (
	"fmt"

	"covenant/internal/types"
	"covenant/internal/value"
)

// ID is a native operator identifier. The set is closed: every operator of
// the language has exactly one ID.
type ID int

const (
	Add ID = iota
	Subtract
	Multiply
	Divide
	CmpGeq
	CmpLeq
	CmpLess
	CmpGreater
	Modulo
	Power
	BitwiseXOR
	And
	Or
	Not
	Equals
	If
	Let
	Map
	Filter
	Fold
	ListCons
	FetchEntry
	FetchContractEntry
	SetEntry
	InsertEntry
	DeleteEntry
	TupleCons
	TupleGet
	Begin
	Hash160
	Sha256
	Keccak256
	Print
	ContractCall
	AsContract
	GetBlockInfo
	ConsOkay
	ConsError
	DefaultTo
	Expects
	ExpectsErr
	IsOkay
	IsNone

	numNatives
)

// Meta describes one native operator.
//
// Simple natives carry a fixed FunctionType and a pure Call over already
// evaluated arguments. Special natives have neither: the checker and the
// evaluator each implement them over the raw argument expressions.
type Meta struct {
	ID   ID
	Name string
	Type types.FunctionType
	Call func(args []value.Value) (value.Value, error)
}

// IsSpecial reports whether the operator needs custom checking and
// evaluation.
func (m *Meta) IsSpecial() bool { return m.Type == nil }

var (
	byID   [numNatives]*Meta
	byName = make(map[string]*Meta, numNatives)
)

func register(m Meta) {
	if m.ID < 0 || m.ID >= numNatives {
		panic(fmt.Sprintf("native %s: ID %d out of range", m.Name, m.ID))
	}
	if byID[m.ID] != nil {
		panic(fmt.Sprintf("native ID %d (%s) is already registered", m.ID, m.Name))
	}
	if _, exists := byName[m.Name]; exists {
		panic(fmt.Sprintf("native name %q is already registered", m.Name))
	}
	if (m.Type == nil) != (m.Call == nil) {
		panic(fmt.Sprintf("native %s: Type and Call must be set together", m.Name))
	}
	entry := m
	byID[m.ID] = &entry
	byName[m.Name] = &entry
}

func special(id ID, name string) {
	register(Meta{ID: id, Name: name})
}

func init() {
	registerArithmetic()
	registerLogic()
	registerHashing()

	special(Equals, "eq?")
	special(If, "if")
	special(Let, "let")
	special(Map, "map")
	special(Filter, "filter")
	special(Fold, "fold")
	special(ListCons, "list")
	special(FetchEntry, "fetch-entry")
	special(FetchContractEntry, "fetch-contract-entry")
	special(SetEntry, "set-entry!")
	special(InsertEntry, "insert-entry!")
	special(DeleteEntry, "delete-entry!")
	special(TupleCons, "tuple")
	special(TupleGet, "get")
	special(Begin, "begin")
	special(Print, "print")
	special(ContractCall, "contract-call!")
	special(AsContract, "as-contract")
	special(GetBlockInfo, "get-block-info")
	special(ConsOkay, "ok")
	special(ConsError, "err")
	special(DefaultTo, "default-to")
	special(Expects, "expects!")
	special(ExpectsErr, "expects-err!")
	special(IsOkay, "is-ok?")
	special(IsNone, "is-none?")

	for id, m := range byID {
		if m == nil {
			panic(fmt.Sprintf("native ID %d has no registration", id))
		}
	}
}

// Lookup finds a native operator by its surface name.
func Lookup(name string) (*Meta, bool) {
	m, ok := byName[name]
	return m, ok
}

// ByID returns the metadata of a native operator.
func ByID(id ID) *Meta {
	if id < 0 || id >= numNatives {
		return nil
	}
	return byID[id]
}

// All returns every native operator in ID order.
func All() []*Meta {
	out := make([]*Meta, 0, numNatives)
	for _, m := range byID {
		out = append(out, m)
	}
	return out
}

// IsReserved reports whether name is taken by a native operator.
func IsReserved(name string) bool {
	_, ok := byName[name]
	return ok
}

func (id ID) String() string {
	if m := ByID(id); m != nil {
		return m.Name
	}
	return fmt.Sprintf("native(%d)", int(id))
}
