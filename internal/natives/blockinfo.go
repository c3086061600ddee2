package natives

import "covenant/internal/types"

// BlockInfoProperty is a property readable with get-block-info.
type BlockInfoProperty int

const (
	BlockTime BlockInfoProperty = iota
	BlockHeaderHash
	BurnchainHeaderHash
	VRFSeed
)

var blockInfoNames = map[string]BlockInfoProperty{
	"time":                  BlockTime,
	"header-hash":           BlockHeaderHash,
	"burnchain-header-hash": BurnchainHeaderHash,
	"vrf-seed":              VRFSeed,
}

// LookupBlockInfo resolves a property name.
func LookupBlockInfo(name string) (BlockInfoProperty, bool) {
	p, ok := blockInfoNames[name]
	return p, ok
}

// Type is the static result type of reading p.
func (p BlockInfoProperty) Type() types.TypeSignature {
	if p == BlockTime {
		return types.Int
	}
	return &types.Buffer{MaxLen: 32}
}

func (p BlockInfoProperty) String() string {
	for name, prop := range blockInfoNames {
		if prop == p {
			return name
		}
	}
	return "unknown"
}

// TxSender is the atom that evaluates to the current sender principal.
const TxSender = "tx-sender"

// MaxPrincipalLength bounds sender and contract names in bytes.
const MaxPrincipalLength = 128

// PrincipalType is the type of tx-sender.
var PrincipalType = &types.Buffer{MaxLen: MaxPrincipalLength}

// Top-level definition forms. They are not natives but their names are
// reserved all the same.
var definitionForms = map[string]bool{
	"define-map":       true,
	"define":           true,
	"define-public":    true,
	"define-read-only": true,
}

// IsReservedName reports whether name cannot be used for a function, map
// or binding.
func IsReservedName(name string) bool {
	return IsReserved(name) || name == TxSender || definitionForms[name] || isBoolName(name)
}

func isBoolName(name string) bool { return name == "true" || name == "false" }
