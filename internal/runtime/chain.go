package runtime

import (
	"crypto/sha256"
	"errors"
	"fmt"
	"math/big"

	"covenant/internal/natives"
	"covenant/internal/value"
)

// ErrNoSuchBlock is returned for heights beyond the chain tip or below
// zero.
var ErrNoSuchBlock = errors.New("no such block")

// BlockInfo answers get-block-info.
type BlockInfo interface {
	BlockInfo(prop natives.BlockInfoProperty, height *big.Int) (value.Value, error)
}

// SimulatedChain derives block properties deterministically from the
// height, so repeated evaluations observe identical blocks.
type SimulatedChain struct {
	GenesisTime   int64
	BlockInterval int64
	Height        int64
}

const (
	DefaultGenesisTime   = 1541030400
	DefaultBlockInterval = 600
)

func DefaultChain() *SimulatedChain {
	return &SimulatedChain{GenesisTime: DefaultGenesisTime, BlockInterval: DefaultBlockInterval}
}

func (c *SimulatedChain) BlockInfo(prop natives.BlockInfoProperty, height *big.Int) (value.Value, error) {
	if height.Sign() < 0 || !height.IsInt64() || height.Int64() > c.Height {
		return value.Value{}, fmt.Errorf("%w at height %s (tip is %d)", ErrNoSuchBlock, height, c.Height)
	}
	h := height.Int64()
	switch prop {
	case natives.BlockTime:
		return value.Int(c.GenesisTime + h*c.BlockInterval), nil
	case natives.BlockHeaderHash, natives.BurnchainHeaderHash, natives.VRFSeed:
		return value.Buffer(c.digest(prop, h)), nil
	}
	return value.Value{}, fmt.Errorf("unknown block info property %d", int(prop))
}

func (c *SimulatedChain) digest(prop natives.BlockInfoProperty, height int64) []byte {
	be := value.Int128Bytes(big.NewInt(height))
	h := sha256.New()
	h.Write([]byte(prop.String()))
	h.Write([]byte{0})
	h.Write(be[:])
	return h.Sum(nil)
}
