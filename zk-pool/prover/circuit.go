package prover

import (
	"github.com/consensys/gnark/frontend"
)

// PoolCircuit exposes the ten public inputs of the pool circuit in their fixed
// order and binds each of them to a private witness. It carries no pool
// semantics and only serves to produce proofs that the verifier must accept.
type PoolCircuit struct {
	Root          frontend.Variable `gnark:",public"`
	PublicAmount0 frontend.Variable `gnark:",public"`
	PublicAmount1 frontend.Variable `gnark:",public"`
	ExtDataHash   frontend.Variable `gnark:",public"`
	MintA         frontend.Variable `gnark:",public"`
	MintB         frontend.Variable `gnark:",public"`
	Nullifier0    frontend.Variable `gnark:",public"`
	Nullifier1    frontend.Variable `gnark:",public"`
	Commitment0   frontend.Variable `gnark:",public"`
	Commitment1   frontend.Variable `gnark:",public"`

	// Bindings[i] = (p_i + 1) * p_i for the i-th public input.
	Bindings [10]frontend.Variable
}

func (c *PoolCircuit) publics() []frontend.Variable {
	return []frontend.Variable{
		c.Root,
		c.PublicAmount0,
		c.PublicAmount1,
		c.ExtDataHash,
		c.MintA,
		c.MintB,
		c.Nullifier0,
		c.Nullifier1,
		c.Commitment0,
		c.Commitment1,
	}
}

func (c *PoolCircuit) Define(api frontend.API) error {
	for i, p := range c.publics() {
		api.AssertIsEqual(api.Mul(api.Add(p, 1), p), c.Bindings[i])
	}
	return nil
}
