package verifier

import (
	"encoding/hex"
	"errors"
	"fmt"
	"sync"

	"github.com/consensys/gnark-crypto/ecc/bn254"
	"github.com/kysee/zkpool/utils"
	"github.com/kysee/zkpool/zk-pool/types"
	"github.com/rs/zerolog"
)

const (
	G1Size = 64
	G2Size = 128

	// NumPublicInputs is the length of the public input vector of the pool circuit.
	NumPublicInputs = 10

	mintAIndex = 4
	mintBIndex = 5
)

// flagMask covers the two most significant bits of an encoded point. They are
// always zero in the uncompressed layout, since the base field modulus is
// below 2^254.
const flagMask = 0xc0

var (
	errEncoding        = errors.New("invalid point encoding")
	errInputCount      = errors.New("wrong number of public inputs")
	errPairingMismatch = errors.New("pairing check failed")
)

type VerifyingKey struct {
	Alpha bn254.G1Affine
	Beta  bn254.G2Affine
	Gamma bn254.G2Affine
	Delta bn254.G2Affine
	// IC holds the constant term followed by one point per public input.
	IC []bn254.G1Affine
}

// NewVerifyingKey decodes a verifying key from uncompressed big-endian points.
func NewVerifyingKey(alpha, beta, gamma, delta []byte, ic [][]byte) (*VerifyingKey, error) {
	if len(ic) < 1 {
		return nil, errors.New("verifying key needs at least one IC point")
	}
	vk := &VerifyingKey{IC: make([]bn254.G1Affine, len(ic))}
	if err := decodeG1(&vk.Alpha, alpha); err != nil {
		return nil, fmt.Errorf("alpha: %w", err)
	}
	g2 := []struct {
		name string
		dst  *bn254.G2Affine
		src  []byte
	}{
		{"beta", &vk.Beta, beta},
		{"gamma", &vk.Gamma, gamma},
		{"delta", &vk.Delta, delta},
	}
	for _, p := range g2 {
		if err := decodeG2(p.dst, p.src); err != nil {
			return nil, fmt.Errorf("%s: %w", p.name, err)
		}
	}
	for i := range ic {
		if err := decodeG1(&vk.IC[i], ic[i]); err != nil {
			return nil, fmt.Errorf("ic[%d]: %w", i, err)
		}
	}
	return vk, nil
}

func (vk *VerifyingKey) NumPublicInputs() int {
	return len(vk.IC) - 1
}

var (
	defaultVKOnce sync.Once
	defaultVK     *VerifyingKey
)

// DefaultVerifyingKey returns the embedded verifying key of the pool circuit.
func DefaultVerifyingKey() *VerifyingKey {
	defaultVKOnce.Do(func() {
		ic := make([][]byte, len(defaultVKHex.ic))
		for i, h := range defaultVKHex.ic {
			ic[i] = mustHex(h)
		}
		vk, err := NewVerifyingKey(
			mustHex(defaultVKHex.alpha),
			mustHex(defaultVKHex.beta),
			mustHex(defaultVKHex.gamma),
			mustHex(defaultVKHex.delta),
			ic,
		)
		if err != nil {
			panic(fmt.Sprintf("embedded verifying key: %v", err))
		}
		defaultVK = vk
	})
	return defaultVK
}

func mustHex(s string) []byte {
	bz, err := hex.DecodeString(s)
	if err != nil {
		panic(err)
	}
	return bz
}

func decodeG1(p *bn254.G1Affine, bz []byte) error {
	if len(bz) != G1Size || bz[0]&flagMask != 0 {
		return errEncoding
	}
	if _, err := p.SetBytes(bz); err != nil {
		return fmt.Errorf("%w: %v", errEncoding, err)
	}
	return nil
}

func decodeG2(p *bn254.G2Affine, bz []byte) error {
	if len(bz) != G2Size || bz[0]&flagMask != 0 {
		return errEncoding
	}
	if _, err := p.SetBytes(bz); err != nil {
		return fmt.Errorf("%w: %v", errEncoding, err)
	}
	return nil
}

// Verify checks a Groth16 proof against vk. Every public input is reduced
// modulo r. Any failure yields false; the cause is never returned.
func Verify(vk *VerifyingKey, a, b, c []byte, inputs [][32]byte) bool {
	return verify(vk, a, b, c, inputs) == nil
}

func verify(vk *VerifyingKey, a, b, c []byte, inputs [][32]byte) error {
	if len(inputs) != vk.NumPublicInputs() {
		return errInputCount
	}

	var pa, pc bn254.G1Affine
	var pb bn254.G2Affine
	if err := decodeG1(&pa, a); err != nil {
		return fmt.Errorf("proof a: %w", err)
	}
	if err := decodeG2(&pb, b); err != nil {
		return fmt.Errorf("proof b: %w", err)
	}
	if err := decodeG1(&pc, c); err != nil {
		return fmt.Errorf("proof c: %w", err)
	}

	// e(-A, B) * e(alpha, beta) * e(vk_x, gamma) * e(C, delta) == 1
	var negA bn254.G1Affine
	negA.Neg(&pa)

	vkX := vk.IC[0]
	for i := range inputs {
		s := utils.FrFromBE(inputs[i][:])
		var term bn254.G1Affine
		term.ScalarMultiplication(&vk.IC[i+1], utils.FrToBigInt(&s))
		vkX.Add(&vkX, &term)
	}

	ok, err := bn254.PairingCheck(
		[]bn254.G1Affine{negA, vk.Alpha, vkX, pc},
		[]bn254.G2Affine{pb, vk.Beta, vk.Gamma, vk.Delta},
	)
	if err != nil {
		return fmt.Errorf("pairing: %w", err)
	}
	if !ok {
		return errPairingMismatch
	}
	return nil
}

// PublicInputs lays out the public input vector of the pool circuit:
// root, public_amount0, public_amount1, ext_data_hash, mint_a, mint_b,
// nullifier0, nullifier1, commitment0, commitment1.
func PublicInputs(proof *types.Proof, mintA, mintB types.Identity) [][32]byte {
	return [][32]byte{
		proof.Root,
		proof.PublicAmount0,
		proof.PublicAmount1,
		proof.ExtDataHash,
		mintA,
		mintB,
		proof.InputNullifiers[0],
		proof.InputNullifiers[1],
		proof.OutputCommitments[0],
		proof.OutputCommitments[1],
	}
}

// Groth16Verifier verifies pool proofs against a fixed verifying key.
type Groth16Verifier struct {
	vk  *VerifyingKey
	log zerolog.Logger
}

func NewGroth16Verifier(vk *VerifyingKey, log zerolog.Logger) *Groth16Verifier {
	if vk == nil {
		vk = DefaultVerifyingKey()
	}
	return &Groth16Verifier{vk: vk, log: log}
}

func (v *Groth16Verifier) VerifyingKey() *VerifyingKey {
	return v.vk
}

// VerifyProof verifies proof with the two mint identifiers taken from the
// transaction context. The mints may exceed the field modulus and are reduced;
// every other public input must be canonical, so that no two encodings of one
// nullifier or commitment are accepted.
func (v *Groth16Verifier) VerifyProof(proof *types.Proof, mintA, mintB types.Identity) bool {
	inputs := PublicInputs(proof, mintA, mintB)
	for i := range inputs {
		if i == mintAIndex || i == mintBIndex {
			continue
		}
		if !utils.IsCanonical(inputs[i][:]) {
			v.log.Debug().Int("input", i).Msg("proof rejected: non-canonical public input")
			return false
		}
	}
	if err := verify(v.vk, proof.A[:], proof.B[:], proof.C[:], inputs); err != nil {
		v.log.Debug().Err(err).Msg("proof rejected")
		return false
	}
	return true
}
