package prover

import (
	"fmt"
	"math/big"

	"github.com/consensys/gnark-crypto/ecc"
	"github.com/consensys/gnark-crypto/ecc/bn254"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/consensys/gnark/backend"
	"github.com/consensys/gnark/backend/groth16"
	groth16_bn254 "github.com/consensys/gnark/backend/groth16/bn254"
	"github.com/consensys/gnark/constraint"
	"github.com/consensys/gnark/constraint/solver"
	"github.com/consensys/gnark/frontend"
	"github.com/consensys/gnark/frontend/cs/r1cs"
	"github.com/kysee/zkpool/utils"
	"github.com/kysee/zkpool/zk-pool/types"
	"github.com/kysee/zkpool/zk-pool/verifier"
	"github.com/rs/zerolog"
)

// ReferenceSystem is a compiled PoolCircuit with its Groth16 keys.
type ReferenceSystem struct {
	ccs constraint.ConstraintSystem
	pk  groth16.ProvingKey
	vk  groth16.VerifyingKey
}

func Setup() (*ReferenceSystem, error) {
	var circuit PoolCircuit
	ccs, err := frontend.Compile(ecc.BN254.ScalarField(), r1cs.NewBuilder, &circuit)
	if err != nil {
		return nil, fmt.Errorf("compile: %w", err)
	}
	pk, vk, err := groth16.Setup(ccs)
	if err != nil {
		return nil, fmt.Errorf("setup: %w", err)
	}
	return &ReferenceSystem{ccs: ccs, pk: pk, vk: vk}, nil
}

// VerifyingKey converts the gnark verifying key into the pool verifier format.
func (rs *ReferenceSystem) VerifyingKey() (*verifier.VerifyingKey, error) {
	bvk, ok := rs.vk.(*groth16_bn254.VerifyingKey)
	if !ok {
		return nil, fmt.Errorf("unexpected verifying key type %T", rs.vk)
	}
	ic := make([][]byte, len(bvk.G1.K))
	for i := range bvk.G1.K {
		ic[i] = g1Bytes(&bvk.G1.K[i])
	}
	return verifier.NewVerifyingKey(
		g1Bytes(&bvk.G1.Alpha),
		g2Bytes(&bvk.G2.Beta),
		g2Bytes(&bvk.G2.Gamma),
		g2Bytes(&bvk.G2.Delta),
		ic,
	)
}

// GnarkVerifyingKey returns the native key, used to cross check proofs.
func (rs *ReferenceSystem) GnarkVerifyingKey() groth16.VerifyingKey {
	return rs.vk
}

// Prove builds a proof over the given public inputs. Inputs are reduced modulo r.
func (rs *ReferenceSystem) Prove(inputs [][32]byte) (a [64]byte, b [128]byte, c [64]byte, err error) {
	assignment, err := Assignment(inputs)
	if err != nil {
		return a, b, c, err
	}
	wtn, err := frontend.NewWitness(assignment, ecc.BN254.ScalarField())
	if err != nil {
		return a, b, c, err
	}
	proof, err := groth16.Prove(
		rs.ccs,
		rs.pk,
		wtn,
		backend.WithSolverOptions(
			solver.WithLogger(zerolog.Nop()),
		),
	)
	if err != nil {
		return a, b, c, err
	}
	bp, ok := proof.(*groth16_bn254.Proof)
	if !ok {
		return a, b, c, fmt.Errorf("unexpected proof type %T", proof)
	}
	copy(a[:], g1Bytes(&bp.Ar))
	copy(b[:], g2Bytes(&bp.Bs))
	copy(c[:], g1Bytes(&bp.Krs))
	return a, b, c, nil
}

// ProveTx fills the proof points of p for the given mint pair.
func (rs *ReferenceSystem) ProveTx(p *types.Proof, mintA, mintB types.Identity) error {
	a, b, c, err := rs.Prove(verifier.PublicInputs(p, mintA, mintB))
	if err != nil {
		return err
	}
	p.A, p.B, p.C = a, b, c
	return nil
}

// Assignment returns a full witness assignment for the given public inputs.
func Assignment(inputs [][32]byte) (*PoolCircuit, error) {
	if len(inputs) != verifier.NumPublicInputs {
		return nil, fmt.Errorf("expected %d public inputs, got %d", verifier.NumPublicInputs, len(inputs))
	}
	values := make([]*big.Int, len(inputs))
	var c PoolCircuit
	for i := range inputs {
		p := utils.FrFromBE(inputs[i][:])
		var one, q fr.Element
		one.SetOne()
		q.Add(&p, &one)
		q.Mul(&q, &p)
		values[i] = utils.FrToBigInt(&p)
		c.Bindings[i] = utils.FrToBigInt(&q)
	}
	c.Root = values[0]
	c.PublicAmount0 = values[1]
	c.PublicAmount1 = values[2]
	c.ExtDataHash = values[3]
	c.MintA = values[4]
	c.MintB = values[5]
	c.Nullifier0 = values[6]
	c.Nullifier1 = values[7]
	c.Commitment0 = values[8]
	c.Commitment1 = values[9]
	return &c, nil
}

func g1Bytes(p *bn254.G1Affine) []byte {
	if p.IsInfinity() {
		return make([]byte, verifier.G1Size)
	}
	raw := p.RawBytes()
	return raw[:]
}

func g2Bytes(p *bn254.G2Affine) []byte {
	if p.IsInfinity() {
		return make([]byte, verifier.G2Size)
	}
	raw := p.RawBytes()
	return raw[:]
}
