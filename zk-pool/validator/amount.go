package validator

import (
	"math"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/kysee/zkpool/utils"
)

// PublicAmount converts a signed external amount and a fee into the public
// amount field element of the circuit. It is the only place where the signed
// integer convention meets the field convention:
//
//	ext >= 0: ext - fee, which requires ext > fee
//	ext <  0: -(|ext| + fee), computed in the field
//
// MinInt64 has no absolute value and is rejected.
func PublicAmount(ext int64, fee uint64) (fr.Element, bool) {
	var out fr.Element
	if ext == math.MinInt64 {
		return out, false
	}
	feeFr := utils.FrFromUint64(fee)
	if ext >= 0 {
		if uint64(ext) <= fee {
			return out, false
		}
		extFr := utils.FrFromUint64(uint64(ext))
		out.Sub(&extFr, &feeFr)
		return out, true
	}
	absFr := utils.FrFromUint64(uint64(-ext))
	out.Add(&absFr, &feeFr)
	out.Neg(&out)
	return out, true
}

// CheckPublicAmount reports whether publicAmount, read big-endian modulo r,
// equals PublicAmount(ext, fee).
func CheckPublicAmount(ext int64, fee uint64, publicAmount [32]byte) bool {
	expected, ok := PublicAmount(ext, fee)
	if !ok {
		return false
	}
	provided := utils.FrFromBE(publicAmount[:])
	return expected.Equal(&provided)
}

// PublicAmountBytes is the big-endian public amount a client places in a proof.
func PublicAmountBytes(ext int64, fee uint64) ([32]byte, bool) {
	e, ok := PublicAmount(ext, fee)
	if !ok {
		return [32]byte{}, false
	}
	return e.Bytes(), true
}
