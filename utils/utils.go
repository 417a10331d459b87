package utils

import (
	"encoding/binary"
	"math/big"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
)

// FieldSize is the byte length of an encoded BN254 scalar field element.
const FieldSize = fr.Bytes

// FrFromBE interprets b as a big-endian unsigned integer and reduces it modulo r.
// The value may be greater than the modulus.
func FrFromBE(b []byte) fr.Element {
	var elem fr.Element
	elem.SetBytes(b)
	return elem
}

// FrFromLE interprets b as a little-endian unsigned integer and reduces it modulo r.
func FrFromLE(b []byte) fr.Element {
	return FrFromBE(reverse(b))
}

// IsCanonical reports whether b is the big-endian encoding of a value below r.
func IsCanonical(b []byte) bool {
	if len(b) != FieldSize {
		return false
	}
	var elem fr.Element
	return elem.SetBytesCanonical(b) == nil
}

func FrFromUint64(v uint64) fr.Element {
	var elem fr.Element
	elem.SetUint64(v)
	return elem
}

// FrToBytes returns the canonical big-endian encoding of e.
func FrToBytes(e *fr.Element) [FieldSize]byte {
	return e.Bytes()
}

func FrToBigInt(e *fr.Element) *big.Int {
	return e.BigInt(new(big.Int))
}

// ChangeEndianness reverses the byte order of every 32 byte word in b.
// A trailing partial word is reversed on its own.
func ChangeEndianness(b []byte) []byte {
	out := make([]byte, 0, len(b))
	for i := 0; i < len(b); i += FieldSize {
		end := i + FieldSize
		if end > len(b) {
			end = len(b)
		}
		out = append(out, reverse(b[i:end])...)
	}
	return out
}

// Uint64ToBytes32 left-pads v as a big-endian 32 byte word.
func Uint64ToBytes32(v uint64) [FieldSize]byte {
	var out [FieldSize]byte
	binary.BigEndian.PutUint64(out[FieldSize-8:], v)
	return out
}

func reverse(b []byte) []byte {
	out := make([]byte, len(b))
	for i := range b {
		out[len(b)-1-i] = b[i]
	}
	return out
}
