package asm

import (
	"encoding/binary"
	"errors"
	"fmt"
)

// Label names a position in emitted code. Labels are resolved by the linker,
// never by the encoder.
type Label string

// Endianness selects the byte order used for multi-byte fields.
type Endianness uint8

const (
	LittleEndian Endianness = iota
	BigEndian
)

func (e Endianness) ByteOrder() binary.ByteOrder {
	if e == BigEndian {
		return binary.BigEndian
	}
	return binary.LittleEndian
}

func (e Endianness) String() string {
	switch e {
	case LittleEndian:
		return "little"
	case BigEndian:
		return "big"
	default:
		return fmt.Sprintf("Endianness(%d)", uint8(e))
	}
}

// ParseEndianness accepts "little"/"le" and "big"/"be".
func ParseEndianness(s string) (Endianness, error) {
	switch s {
	case "", "little", "le":
		return LittleEndian, nil
	case "big", "be":
		return BigEndian, nil
	}
	return 0, fmt.Errorf("unknown endianness %q", s)
}

// IntType describes the width and signedness of an encoded integer field.
//
// Signed types accept [-2^(n-1), 2^(n-1)-1], unsigned types accept
// [0, 2^n-1] and the "any" types accept the union of both ranges.
type IntType uint8

const (
	I8 IntType = iota
	U8
	A8
	I16
	U16
	A16
	I32
	U32
	A32
	I64
	U64
	A64
)

var intTypeNames = [...]string{"i8", "u8", "a8", "i16", "u16", "a16", "i32", "u32", "a32", "i64", "u64", "a64"}

func (t IntType) String() string {
	if int(t) < len(intTypeNames) {
		return intTypeNames[t]
	}
	return fmt.Sprintf("IntType(%d)", uint8(t))
}

// Bits returns the field width in bits.
func (t IntType) Bits() int {
	return 8 << (int(t) / 3)
}

// Size returns the field width in bytes.
func (t IntType) Size() int {
	return t.Bits() / 8
}

func (t IntType) signed() bool   { return int(t)%3 == 0 }
func (t IntType) unsigned() bool { return int(t)%3 == 1 }

// AnyInt returns the "any signedness" type of the given bit width.
func AnyInt(bits int) IntType {
	switch bits {
	case 8:
		return A8
	case 16:
		return A16
	case 32:
		return A32
	case 64:
		return A64
	}
	panic(fmt.Sprintf("asm.AnyInt: invalid width %d", bits))
}

// SignedInt returns the signed type of the given bit width.
func SignedInt(bits int) IntType {
	return AnyInt(bits) - 2
}

// UnsignedInt returns the unsigned type of the given bit width.
func UnsignedInt(bits int) IntType {
	return AnyInt(bits) - 1
}

// Fits reports whether v is representable in t.
func (t IntType) Fits(v int64) bool {
	bits := t.Bits()
	if bits == 64 {
		// int64 values always fit the 64-bit signed and any ranges.
		return !t.unsigned() || v >= 0
	}
	lo := -(int64(1) << (bits - 1))
	shi := int64(1)<<(bits-1) - 1
	uhi := int64(1)<<bits - 1
	switch {
	case t.signed():
		return v >= lo && v <= shi
	case t.unsigned():
		return v >= 0 && v <= uhi
	default:
		return v >= lo && v <= uhi
	}
}

// ErrRange is returned when a constant does not fit the requested field.
var ErrRange = errors.New("value out of range")

// RangeError reports the offending value and type.
type RangeError struct {
	Value int64
	Type  IntType
}

func (e *RangeError) Error() string {
	return fmt.Sprintf("%d does not fit %s", e.Value, e.Type)
}

func (e *RangeError) Unwrap() error { return ErrRange }

// putInt writes the low t.Size() bytes of v in the given order.
func putInt(dst []byte, t IntType, order Endianness, v int64) {
	bo := order.ByteOrder()
	switch t.Bits() {
	case 8:
		dst[0] = byte(v)
	case 16:
		bo.PutUint16(dst, uint16(v))
	case 32:
		bo.PutUint32(dst, uint32(v))
	case 64:
		bo.PutUint64(dst, uint64(v))
	}
}
