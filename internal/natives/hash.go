package natives

import (
	"crypto/sha256"
	"hash"

	"golang.org/x/crypto/ripemd160"
	"golang.org/x/crypto/sha3"

	"covenant/internal/types"
	"covenant/internal/value"
)

func registerHashing() {
	register(Meta{ID: Hash160, Name: "hash160", Type: hashType(20), Call: hashWith(hash160)})
	register(Meta{ID: Sha256, Name: "sha256", Type: hashType(32), Call: hashWith(sum(sha256.New))})
	register(Meta{ID: Keccak256, Name: "keccak256", Type: hashType(32), Call: hashWith(sum(sha3.NewLegacyKeccak256))})
}

func hashType(size int) types.FunctionType {
	return types.Fixed(&types.Buffer{MaxLen: size}, types.FunctionArg{Name: "x", Type: types.Any})
}

// HashInput returns the bytes a hashing native digests for v: the 16-byte
// little-endian two's complement form of an int, the raw bytes of a
// buffer, and the canonical encoding of anything else.
func HashInput(v value.Value) []byte {
	switch v.Kind {
	case value.KindInt:
		be := value.Int128Bytes(v.Int)
		le := make([]byte, len(be))
		for i := range be {
			le[i] = be[len(be)-1-i]
		}
		return le
	case value.KindBuffer:
		return v.Buffer
	default:
		return value.Encode(v)
	}
}

func sum(newHash func() hash.Hash) func([]byte) []byte {
	return func(data []byte) []byte {
		h := newHash()
		h.Write(data)
		return h.Sum(nil)
	}
}

func hash160(data []byte) []byte {
	first := sha256.Sum256(data)
	h := ripemd160.New()
	h.Write(first[:])
	return h.Sum(nil)
}

func hashWith(digest func([]byte) []byte) func([]value.Value) (value.Value, error) {
	return func(args []value.Value) (value.Value, error) {
		if len(args) != 1 {
			return value.Value{}, invalidf("hash: expects 1 argument, got %d", len(args))
		}
		return value.Buffer(digest(HashInput(args[0]))), nil
	}
}
