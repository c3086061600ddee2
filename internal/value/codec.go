package value

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math/big"
	"sort"

	"covenant/internal/types"
)

// Canonical encoding. Every value has exactly one encoding: integers are
// 16-byte big-endian two's complement and tuple fields are written in name
// order, so equal values always produce equal bytes.

const (
	tagVoid byte = iota
	tagInt
	tagBool
	tagBuffer
	tagList
	tagTuple
	tagOptional
	tagResponse
)

var two128 = new(big.Int).Lsh(big.NewInt(1), 128)

// ErrMalformed is returned when bytes do not decode into the expected type.
var ErrMalformed = errors.New("malformed value encoding")

// Int128Bytes returns the 16-byte big-endian two's complement form of n.
func Int128Bytes(n *big.Int) [16]byte {
	var out [16]byte
	x := n
	if n.Sign() < 0 {
		x = new(big.Int).Add(n, two128)
	}
	x.FillBytes(out[:])
	return out
}

func int128FromBytes(b []byte) *big.Int {
	n := new(big.Int).SetBytes(b)
	if b[0]&0x80 != 0 {
		n.Sub(n, two128)
	}
	return n
}

// Encode returns the canonical encoding of v.
func Encode(v Value) []byte {
	return appendValue(nil, v)
}

func appendValue(buf []byte, v Value) []byte {
	switch v.Kind {
	case KindVoid:
		return append(buf, tagVoid)
	case KindInt:
		b := Int128Bytes(v.Int)
		buf = append(buf, tagInt)
		return append(buf, b[:]...)
	case KindBool:
		if v.Bool {
			return append(buf, tagBool, 1)
		}
		return append(buf, tagBool, 0)
	case KindBuffer:
		buf = append(buf, tagBuffer)
		buf = binary.AppendUvarint(buf, uint64(len(v.Buffer)))
		return append(buf, v.Buffer...)
	case KindList:
		buf = append(buf, tagList)
		buf = binary.AppendUvarint(buf, uint64(len(v.List.Items)))
		for _, item := range v.List.Items {
			buf = appendValue(buf, item)
		}
		return buf
	case KindTuple:
		fields := append([]TupleField(nil), v.Tuple.Fields...)
		sort.Slice(fields, func(i, j int) bool { return fields[i].Name < fields[j].Name })
		buf = append(buf, tagTuple)
		buf = binary.AppendUvarint(buf, uint64(len(fields)))
		for _, f := range fields {
			buf = binary.AppendUvarint(buf, uint64(len(f.Name)))
			buf = append(buf, f.Name...)
			buf = appendValue(buf, f.Value)
		}
		return buf
	case KindOptional:
		if !v.Optional.IsSome {
			return append(buf, tagOptional, 0)
		}
		return appendValue(append(buf, tagOptional, 1), v.Optional.Value)
	case KindResponse:
		if v.Response.IsOk {
			return appendValue(append(buf, tagResponse, 1), v.Response.Value)
		}
		return appendValue(append(buf, tagResponse, 0), v.Response.Value)
	}
	panic(fmt.Sprintf("value: cannot encode kind %s", v.Kind))
}

// Decode parses data as a value of type t. Lists and tuples in the result
// carry the types found in t.
func Decode(data []byte, t types.TypeSignature) (Value, error) {
	d := &decoder{buf: data}
	v, err := d.readValue(t)
	if err != nil {
		return Value{}, err
	}
	if d.pos != len(d.buf) {
		return Value{}, fmt.Errorf("%w: %d trailing bytes", ErrMalformed, len(d.buf)-d.pos)
	}
	return v, nil
}

type decoder struct {
	buf []byte
	pos int
}

func (d *decoder) fail(format string, args ...interface{}) error {
	return fmt.Errorf("%w at offset %d: %s", ErrMalformed, d.pos, fmt.Sprintf(format, args...))
}

func (d *decoder) readByte() (byte, error) {
	if d.pos >= len(d.buf) {
		return 0, d.fail("unexpected end of input")
	}
	b := d.buf[d.pos]
	d.pos++
	return b, nil
}

func (d *decoder) readBytes(n uint64) ([]byte, error) {
	if n > uint64(len(d.buf)-d.pos) {
		return nil, d.fail("need %d bytes, have %d", n, len(d.buf)-d.pos)
	}
	b := d.buf[d.pos : d.pos+int(n)]
	d.pos += int(n)
	return b, nil
}

func (d *decoder) uvarint() (uint64, error) {
	n, size := binary.Uvarint(d.buf[d.pos:])
	if size <= 0 {
		return 0, d.fail("bad length prefix")
	}
	d.pos += size
	return n, nil
}

func (d *decoder) expectTag(want byte) error {
	tag, err := d.readByte()
	if err != nil {
		return err
	}
	if tag != want {
		return d.fail("tag %d, want %d", tag, want)
	}
	return nil
}

func (d *decoder) readValue(t types.TypeSignature) (Value, error) {
	switch tt := t.(type) {
	case *types.Basic:
		switch tt.Kind {
		case types.BasicVoid:
			return Void(), d.expectTag(tagVoid)
		case types.BasicInt:
			if err := d.expectTag(tagInt); err != nil {
				return Value{}, err
			}
			b, err := d.readBytes(16)
			if err != nil {
				return Value{}, err
			}
			return Value{Kind: KindInt, Int: int128FromBytes(b)}, nil
		case types.BasicBool:
			if err := d.expectTag(tagBool); err != nil {
				return Value{}, err
			}
			b, err := d.readByte()
			if err != nil {
				return Value{}, err
			}
			if b > 1 {
				return Value{}, d.fail("bad bool byte %d", b)
			}
			return Bool(b == 1), nil
		}
		return Value{}, d.fail("cannot decode into %s", tt)
	case *types.Buffer:
		if err := d.expectTag(tagBuffer); err != nil {
			return Value{}, err
		}
		n, err := d.uvarint()
		if err != nil {
			return Value{}, err
		}
		if n > uint64(tt.MaxLen) {
			return Value{}, d.fail("buffer of %d bytes exceeds %s", n, tt)
		}
		b, err := d.readBytes(n)
		if err != nil {
			return Value{}, err
		}
		return Buffer(append([]byte(nil), b...)), nil
	case *types.List:
		if err := d.expectTag(tagList); err != nil {
			return Value{}, err
		}
		n, err := d.uvarint()
		if err != nil {
			return Value{}, err
		}
		if n > uint64(tt.MaxLen) {
			return Value{}, d.fail("list of %d items exceeds %s", n, tt)
		}
		items := make([]Value, 0, n)
		elem := tt.ElementType()
		for i := uint64(0); i < n; i++ {
			item, err := d.readValue(elem)
			if err != nil {
				return Value{}, err
			}
			items = append(items, item)
		}
		return TypedList(tt, items), nil
	case *types.Tuple:
		if err := d.expectTag(tagTuple); err != nil {
			return Value{}, err
		}
		n, err := d.uvarint()
		if err != nil {
			return Value{}, err
		}
		if n != uint64(tt.Len()) {
			return Value{}, d.fail("tuple has %d fields, want %d", n, tt.Len())
		}
		decoded := make(map[string]Value, n)
		for i := uint64(0); i < n; i++ {
			nameLen, err := d.uvarint()
			if err != nil {
				return Value{}, err
			}
			name, err := d.readBytes(nameLen)
			if err != nil {
				return Value{}, err
			}
			ft, err := tt.FieldType(string(name))
			if err != nil {
				return Value{}, d.fail("unexpected field %q", name)
			}
			fv, err := d.readValue(ft)
			if err != nil {
				return Value{}, err
			}
			decoded[string(name)] = fv
		}
		fields := make([]TupleField, 0, n)
		for _, f := range tt.Fields() {
			fv, ok := decoded[f.Name]
			if !ok {
				return Value{}, d.fail("missing field %q", f.Name)
			}
			fields = append(fields, TupleField{Name: f.Name, Value: fv})
		}
		return Value{Kind: KindTuple, Tuple: &TupleValue{Fields: fields, Type: tt}}, nil
	case *types.Optional:
		if err := d.expectTag(tagOptional); err != nil {
			return Value{}, err
		}
		flag, err := d.readByte()
		if err != nil {
			return Value{}, err
		}
		switch flag {
		case 0:
			return None(), nil
		case 1:
			inner, err := d.readValue(tt.Inner)
			if err != nil {
				return Value{}, err
			}
			return Some(inner), nil
		}
		return Value{}, d.fail("bad optional flag %d", flag)
	case *types.Response:
		if err := d.expectTag(tagResponse); err != nil {
			return Value{}, err
		}
		flag, err := d.readByte()
		if err != nil {
			return Value{}, err
		}
		switch flag {
		case 0:
			inner, err := d.readValue(tt.Err)
			if err != nil {
				return Value{}, err
			}
			return Err(inner), nil
		case 1:
			inner, err := d.readValue(tt.Ok)
			if err != nil {
				return Value{}, err
			}
			return Okay(inner), nil
		}
		return Value{}, d.fail("bad response flag %d", flag)
	}
	return Value{}, d.fail("cannot decode into %v", t)
}
